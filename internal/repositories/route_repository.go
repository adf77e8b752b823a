package repositories

import (
	"context"

	"gorm.io/gorm"

	"transroute/internal/models"
)

type GormRouteRepository struct {
	db *gorm.DB
}

func NewRouteRepository(db *gorm.DB) *GormRouteRepository {
	return &GormRouteRepository{db: db}
}

func (r *GormRouteRepository) Create(ctx context.Context, route *models.Route) error {
	return translate("create route", r.db.WithContext(ctx).Create(route).Error)
}

func (r *GormRouteRepository) GetByID(ctx context.Context, id uint) (*models.Route, error) {
	var route models.Route
	if err := r.db.WithContext(ctx).First(&route, id).Error; err != nil {
		return nil, translate("get route", err)
	}
	return &route, nil
}

func (r *GormRouteRepository) List(ctx context.Context, companyID uint) ([]models.Route, error) {
	var routes []models.Route
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("name").Find(&routes).Error
	return routes, translate("list routes", err)
}

func (r *GormRouteRepository) Update(ctx context.Context, route *models.Route) error {
	return translate("update route", r.db.WithContext(ctx).Save(route).Error)
}

func (r *GormRouteRepository) Delete(ctx context.Context, id uint) error {
	return softDelete(ctx, r.db, "delete route", &models.Route{}, id)
}

type GormTemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *GormTemplateRepository {
	return &GormTemplateRepository{db: db}
}

func (r *GormTemplateRepository) Create(ctx context.Context, tpl *models.RouteTemplate) error {
	return translate("create route template", r.db.WithContext(ctx).Create(tpl).Error)
}

func (r *GormTemplateRepository) GetByID(ctx context.Context, id uint) (*models.RouteTemplate, error) {
	var tpl models.RouteTemplate
	if err := r.db.WithContext(ctx).First(&tpl, id).Error; err != nil {
		return nil, translate("get route template", err)
	}
	return &tpl, nil
}

func (r *GormTemplateRepository) ListByRoute(ctx context.Context, routeID uint) ([]models.RouteTemplate, error) {
	var tpls []models.RouteTemplate
	err := r.db.WithContext(ctx).Where("route_id = ?", routeID).Order("name").Find(&tpls).Error
	return tpls, translate("list route templates", err)
}

func (r *GormTemplateRepository) Update(ctx context.Context, tpl *models.RouteTemplate) error {
	return translate("update route template", r.db.WithContext(ctx).Save(tpl).Error)
}

func (r *GormTemplateRepository) Delete(ctx context.Context, id uint) error {
	return softDelete(ctx, r.db, "delete route template", &models.RouteTemplate{}, id)
}

func softDelete(ctx context.Context, db *gorm.DB, op string, model interface{}, id uint) error {
	res := db.WithContext(ctx).Delete(model, id)
	if res.Error == nil && res.RowsAffected == 0 {
		return translate(op, gorm.ErrRecordNotFound)
	}
	return translate(op, res.Error)
}

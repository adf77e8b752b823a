package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"transroute/internal/models"
)

type GormStopRepository struct {
	db *gorm.DB
}

func NewStopRepository(db *gorm.DB) *GormStopRepository {
	return &GormStopRepository{db: db}
}

func (r *GormStopRepository) Create(ctx context.Context, stop *models.Stop) error {
	return translate("create stop", r.db.WithContext(ctx).Create(stop).Error)
}

func (r *GormStopRepository) GetByID(ctx context.Context, id uint) (*models.Stop, error) {
	var stop models.Stop
	if err := r.db.WithContext(ctx).First(&stop, id).Error; err != nil {
		return nil, translate("get stop", err)
	}
	return &stop, nil
}

func (r *GormStopRepository) FindByIdentity(ctx context.Context, companyID uint, city, state, name string) (*models.Stop, error) {
	var stop models.Stop
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND city = ? AND state = ? AND name = ?", companyID, city, state, name).
		First(&stop).Error
	if err != nil {
		return nil, translate("find stop", err)
	}
	return &stop, nil
}

func (r *GormStopRepository) Search(ctx context.Context, companyID uint, query string, limit int) ([]models.Stop, error) {
	pattern := "%" + escapeLike(query) + "%"
	var stops []models.Stop
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Where("name ILIKE ? OR city ILIKE ? OR state ILIKE ? OR full_location ILIKE ?", pattern, pattern, pattern, pattern).
		Order("name").
		Limit(limit).
		Find(&stops).Error
	return stops, translate("search stops", err)
}

func (r *GormStopRepository) List(ctx context.Context, companyID uint) ([]models.Stop, error) {
	var stops []models.Stop
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("city, name").Find(&stops).Error
	return stops, translate("list stops", err)
}

func (r *GormStopRepository) Update(ctx context.Context, stop *models.Stop) error {
	return translate("update stop", r.db.WithContext(ctx).Save(stop).Error)
}

func (r *GormStopRepository) Delete(ctx context.Context, id uint) error {
	return softDelete(ctx, r.db, "delete stop", &models.Stop{}, id)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

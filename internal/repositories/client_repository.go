package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"transroute/internal/models"
)

type GormClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

func (r *GormClientRepository) Create(ctx context.Context, client *models.Client) error {
	return translate("create client", r.db.WithContext(ctx).Create(client).Error)
}

func (r *GormClientRepository) GetByID(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, translate("get client", err)
	}
	return &client, nil
}

func (r *GormClientRepository) FindByPhone(ctx context.Context, companyID uint, phone string) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).Where("company_id = ? AND phone = ?", companyID, phone).First(&client).Error
	if err != nil {
		return nil, translate("find client", err)
	}
	return &client, nil
}

// List matches query against name and phone; an empty query lists everything.
func (r *GormClientRepository) List(ctx context.Context, companyID uint, query string) ([]models.Client, error) {
	tx := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		tx = tx.Where("name ILIKE ? OR phone ILIKE ?", pattern, pattern)
	}
	var clients []models.Client
	err := tx.Order("name").Find(&clients).Error
	return clients, translate("list clients", err)
}

func (r *GormClientRepository) Update(ctx context.Context, client *models.Client) error {
	return translate("update client", r.db.WithContext(ctx).Save(client).Error)
}

func (r *GormClientRepository) Delete(ctx context.Context, id uint) error {
	return softDelete(ctx, r.db, "delete client", &models.Client{}, id)
}

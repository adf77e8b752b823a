package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"transroute/internal/models"
)

type GormTripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *GormTripRepository {
	return &GormTripRepository{db: db}
}

func (r *GormTripRepository) Create(ctx context.Context, trip *models.Trip) error {
	return translate("create trip", r.db.WithContext(ctx).Omit("Route", "Segments").Create(trip).Error)
}

func (r *GormTripRepository) GetByID(ctx context.Context, id uint) (*models.Trip, error) {
	var trip models.Trip
	if err := r.db.WithContext(ctx).Preload("Route").First(&trip, id).Error; err != nil {
		return nil, translate("get trip", err)
	}
	return &trip, nil
}

func (r *GormTripRepository) List(ctx context.Context, f TripFilter) ([]models.Trip, error) {
	q := r.db.WithContext(ctx).Model(&models.Trip{}).Preload("Route")
	if f.CompanyID != 0 {
		q = q.Where("company_id = ?", f.CompanyID)
	}
	if f.RouteID != 0 {
		q = q.Where("route_id = ?", f.RouteID)
	}
	if f.Visibility != "" {
		q = q.Where("visibility = ?", f.Visibility)
	}
	if !f.DateFrom.IsZero() {
		q = q.Where("departure_datetime >= ?", f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		q = q.Where("departure_datetime <= ?", f.DateTo)
	}

	var trips []models.Trip
	err := q.Order("departure_datetime").Find(&trips).Error
	return trips, translate("list trips", err)
}

func (r *GormTripRepository) UpdateVisibility(ctx context.Context, id uint, visibility string) error {
	res := r.db.WithContext(ctx).Model(&models.Trip{}).Where("id = ?", id).Update("visibility", visibility)
	if res.Error == nil && res.RowsAffected == 0 {
		return translate("update trip visibility", gorm.ErrRecordNotFound)
	}
	return translate("update trip visibility", res.Error)
}

func (r *GormTripRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("trip_id = ?", id).Delete(&models.TripSegment{}).Error; err != nil {
			return translate("delete trip segments", err)
		}
		return softDelete(ctx, tx, "delete trip", &models.Trip{}, id)
	})
}

type GormSegmentRepository struct {
	db *gorm.DB
}

func NewSegmentRepository(db *gorm.DB) *GormSegmentRepository {
	return &GormSegmentRepository{db: db}
}

// CreateBatch inserts all segments in a single statement.
func (r *GormSegmentRepository) CreateBatch(ctx context.Context, segments []models.TripSegment) error {
	if len(segments) == 0 {
		return nil
	}
	return translate("create trip segments", r.db.WithContext(ctx).Omit("Trip").Create(&segments).Error)
}

func (r *GormSegmentRepository) ListByTrip(ctx context.Context, tripID uint) ([]models.TripSegment, error) {
	var segs []models.TripSegment
	err := r.db.WithContext(ctx).Where("trip_id = ?", tripID).Order("departure_time, id").Find(&segs).Error
	return segs, translate("list trip segments", err)
}

func (r *GormSegmentRepository) Search(ctx context.Context, q SegmentQuery) ([]models.TripSegment, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.TripSegment{}).
		Preload("Trip").
		Joins("JOIN trips ON trips.id = trip_segments.trip_id").
		Where("trips.deleted_at IS NULL AND trips.visibility = ?", models.VisibilityPublished).
		Where("trip_segments.departure_time BETWEEN ? AND ?", q.DateFrom, q.DateTo).
		Where("trip_segments.available_seats > ?", q.MinSeats)

	if q.CompanyID != 0 {
		tx = tx.Where("trips.company_id = ?", q.CompanyID)
	}
	if q.OriginStopID != nil {
		tx = tx.Where("trip_segments.origin_stop_id = ?", *q.OriginStopID)
	}
	if q.DestinationStopID != nil {
		tx = tx.Where("trip_segments.destination_stop_id = ?", *q.DestinationStopID)
	}
	if q.MainTripOnly {
		tx = tx.Where("trip_segments.is_main_trip = ?", true)
	}

	var segs []models.TripSegment
	err := tx.Order("trip_segments.departure_time").Find(&segs).Error
	return segs, translate("search trip segments", err)
}

func (r *GormSegmentRepository) DistinctLocations(ctx context.Context, companyID uint, column string, since time.Time) ([]string, error) {
	if column != "origin" && column != "destination" {
		return nil, fmt.Errorf("distinct locations: unsupported column %q", column)
	}
	tx := r.db.WithContext(ctx).
		Model(&models.TripSegment{}).
		Joins("JOIN trips ON trips.id = trip_segments.trip_id").
		Where("trips.deleted_at IS NULL AND trips.visibility = ?", models.VisibilityPublished).
		Where("trip_segments.departure_time >= ?", since)
	if companyID != 0 {
		tx = tx.Where("trips.company_id = ?", companyID)
	}

	var out []string
	err := tx.Distinct("trip_segments."+column).Order("trip_segments."+column).Pluck("trip_segments."+column, &out).Error
	return out, translate("distinct "+column+"s", err)
}

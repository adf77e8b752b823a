package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"transroute/internal/models"
)

// GormReservationRepository reads reservations directly and delegates every
// seat or money mutation to the reservation stored procedures.
type GormReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

func (r *GormReservationRepository) CreateWithTransaction(ctx context.Context, p CreateReservationParams) (uint, error) {
	const fn = "create_reservation_with_transaction"
	var id uint
	err := r.db.WithContext(ctx).Raw(
		`SELECT create_reservation_with_transaction(
			p_company_id => ?, p_trip_segment_id => ?, p_client_id => ?, p_seats => ?,
			p_total_amount => ?, p_amount_paid => ?, p_payment_method => ?, p_notes => ?, p_created_by => ?)`,
		p.CompanyID, p.TripSegmentID, p.ClientID, p.Seats,
		p.TotalAmount, p.AmountPaid, p.PaymentMethod, p.Notes, p.CreatedBy,
	).Row().Scan(&id)
	if err != nil {
		return 0, rpcError(fn, err)
	}
	return id, nil
}

func (r *GormReservationRepository) CancelWithRefund(ctx context.Context, id, userID uint, refundAmount float64, reason string) error {
	const fn = "cancel_reservation_with_refund"
	err := r.db.WithContext(ctx).Exec(
		`SELECT cancel_reservation_with_refund(p_reservation_id => ?, p_user_id => ?, p_refund_amount => ?, p_reason => ?)`,
		id, userID, refundAmount, reason,
	).Error
	return rpcError(fn, err)
}

func (r *GormReservationRepository) AddPayment(ctx context.Context, id, userID uint, amount float64, method string) error {
	const fn = "add_payment_to_reservation"
	err := r.db.WithContext(ctx).Exec(
		`SELECT add_payment_to_reservation(p_reservation_id => ?, p_user_id => ?, p_amount => ?, p_payment_method => ?)`,
		id, userID, amount, method,
	).Error
	return rpcError(fn, err)
}

func (r *GormReservationRepository) ModifyTrip(ctx context.Context, id, newSegmentID, userID uint) error {
	const fn = "modify_reservation_trip"
	err := r.db.WithContext(ctx).Exec(
		`SELECT modify_reservation_trip(p_reservation_id => ?, p_new_trip_segment_id => ?, p_user_id => ?)`,
		id, newSegmentID, userID,
	).Error
	return rpcError(fn, err)
}

func (r *GormReservationRepository) CashBalance(ctx context.Context, userID, companyID uint) (float64, error) {
	const fn = "get_user_cash_balance"
	var balance float64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COALESCE(get_user_cash_balance(p_user_id => ?, p_company_id => ?), 0)`,
		userID, companyID,
	).Row().Scan(&balance)
	if err != nil {
		return 0, rpcError(fn, err)
	}
	return balance, nil
}

func (r *GormReservationRepository) GetByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var res models.Reservation
	err := r.db.WithContext(ctx).Preload("TripSegment").Preload("Client").First(&res, id).Error
	if err != nil {
		return nil, translate("get reservation", err)
	}
	return &res, nil
}

func (r *GormReservationRepository) List(ctx context.Context, f ReservationFilter) ([]models.Reservation, error) {
	q := r.db.WithContext(ctx).Model(&models.Reservation{}).Preload("TripSegment").Preload("Client")
	if f.CompanyID != 0 {
		q = q.Where("reservations.company_id = ?", f.CompanyID)
	}
	if f.TripID != 0 {
		q = q.Joins("JOIN trip_segments ON trip_segments.id = reservations.trip_segment_id").
			Where("trip_segments.trip_id = ?", f.TripID)
	}
	if f.ClientID != 0 {
		q = q.Where("reservations.client_id = ?", f.ClientID)
	}
	if f.Status != "" {
		q = q.Where("reservations.status = ?", f.Status)
	}

	var out []models.Reservation
	err := q.Order("reservations.created_at DESC").Find(&out).Error
	return out, translate("list reservations", err)
}

func (r *GormReservationRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Reservation{}).Where("id = ?", id).Updates(updates)
	if res.Error == nil && res.RowsAffected == 0 {
		return translate("update reservation", gorm.ErrRecordNotFound)
	}
	return translate("update reservation", res.Error)
}

// NoShowCandidates lists reservations never checked in whose segment left
// before departedBefore.
func (r *GormReservationRepository) NoShowCandidates(ctx context.Context, departedBefore time.Time) ([]models.Reservation, error) {
	var out []models.Reservation
	err := r.db.WithContext(ctx).
		Joins("JOIN trip_segments ON trip_segments.id = reservations.trip_segment_id").
		Where("reservations.check_in_at IS NULL").
		Where("reservations.is_no_show = ?", false).
		Where("reservations.status <> ?", models.ReservationCancelled).
		Where("trip_segments.departure_time < ?", departedBefore).
		Find(&out).Error
	return out, translate("no-show candidates", err)
}

type GormAuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

func (r *GormAuditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return translate("create audit log", r.db.WithContext(ctx).Create(entry).Error)
}

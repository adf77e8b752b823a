package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"transroute/internal/models"
	"transroute/internal/repositories"
)

type CreateReservationInput struct {
	TripSegmentID uint    `json:"trip_segment_id" binding:"required"`
	ClientID      uint    `json:"client_id" binding:"required"`
	Seats         int     `json:"seats" binding:"required,gte=1"`
	TotalAmount   float64 `json:"total_amount" binding:"gte=0"`
	AmountPaid    float64 `json:"amount_paid" binding:"gte=0"`
	PaymentMethod string  `json:"payment_method" binding:"omitempty,oneof=cash card transfer"`
	Notes         string  `json:"notes"`
}

type CancelInput struct {
	RefundAmount float64 `json:"refund_amount" binding:"gte=0"`
	Reason       string  `json:"reason"`
}

type PaymentInput struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Method string  `json:"method" binding:"required,oneof=cash card transfer"`
}

type ModifyTripInput struct {
	NewTripSegmentID uint `json:"new_trip_segment_id" binding:"required"`
}

type TransferInput struct {
	TargetCompanyID uint   `json:"target_company_id" binding:"required"`
	Notes           string `json:"notes"`
}

// ReservationService validates requests and hands the atomic work to the
// reservation stored procedures.
type ReservationService struct {
	reservations repositories.ReservationRepository
	audit        repositories.AuditLogRepository
	publisher    Publisher
	now          func() time.Time
}

func NewReservationService(
	reservations repositories.ReservationRepository,
	audit repositories.AuditLogRepository,
	publisher Publisher,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		audit:        audit,
		publisher:    orNop(publisher),
		now:          time.Now,
	}
}

func (s *ReservationService) Create(ctx context.Context, actor Actor, in CreateReservationInput) (*models.Reservation, error) {
	if in.Seats < 1 {
		return nil, invalid("seats", "must be at least 1")
	}
	if in.AmountPaid > in.TotalAmount {
		return nil, invalid("amount_paid", "must not exceed total_amount")
	}
	method := in.PaymentMethod
	if method == "" {
		method = "cash"
	}

	id, err := s.reservations.CreateWithTransaction(ctx, repositories.CreateReservationParams{
		CompanyID:     actor.CompanyID,
		TripSegmentID: in.TripSegmentID,
		ClientID:      in.ClientID,
		Seats:         in.Seats,
		TotalAmount:   in.TotalAmount,
		AmountPaid:    in.AmountPaid,
		PaymentMethod: method,
		Notes:         in.Notes,
		CreatedBy:     actor.UserID,
	})
	if err != nil {
		return nil, err
	}

	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(actor.CompanyID, EventReservationCreated, res)
	return res, nil
}

func (s *ReservationService) Get(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.CompanyID != actor.CompanyID {
		return nil, notFound("reservation", id)
	}
	return res, nil
}

func (s *ReservationService) List(ctx context.Context, filter repositories.ReservationFilter) ([]models.Reservation, error) {
	return s.reservations.List(ctx, filter)
}

func (s *ReservationService) Cancel(ctx context.Context, actor Actor, id uint, in CancelInput) (*models.Reservation, error) {
	res, err := s.active(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.RefundAmount < 0 || in.RefundAmount > res.AmountPaid {
		return nil, invalid("refund_amount", "must be between 0 and the amount paid (%.2f)", res.AmountPaid)
	}
	if err := s.reservations.CancelWithRefund(ctx, id, actor.UserID, in.RefundAmount, in.Reason); err != nil {
		return nil, err
	}
	return s.reload(ctx, actor, id, EventReservationCanceled)
}

func (s *ReservationService) AddPayment(ctx context.Context, actor Actor, id uint, in PaymentInput) (*models.Reservation, error) {
	if in.Amount <= 0 {
		return nil, invalid("amount", "must be greater than zero")
	}
	if _, err := s.active(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := s.reservations.AddPayment(ctx, id, actor.UserID, in.Amount, in.Method); err != nil {
		return nil, err
	}
	return s.reload(ctx, actor, id, EventReservationChanged)
}

func (s *ReservationService) ModifyTrip(ctx context.Context, actor Actor, id uint, in ModifyTripInput) (*models.Reservation, error) {
	res, err := s.active(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.NewTripSegmentID == res.TripSegmentID {
		return nil, invalid("new_trip_segment_id", "reservation already belongs to segment %d", res.TripSegmentID)
	}
	if err := s.reservations.ModifyTrip(ctx, id, in.NewTripSegmentID, actor.UserID); err != nil {
		return nil, err
	}
	return s.reload(ctx, actor, id, EventReservationChanged)
}

func (s *ReservationService) CheckIn(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	res, err := s.active(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if res.CheckInAt != nil {
		return nil, invalid("check_in_at", "reservation %d is already checked in", id)
	}
	now := s.now()
	err = s.reservations.Update(ctx, id, map[string]interface{}{
		"check_in_at":   now,
		"checked_in_by": actor.UserID,
		"is_no_show":    false,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, id, "check_in", datatypes.JSONMap{"checked_in_at": now})
	return s.reload(ctx, actor, id, EventReservationChanged)
}

func (s *ReservationService) Transfer(ctx context.Context, actor Actor, id uint, in TransferInput) (*models.Reservation, error) {
	res, err := s.active(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.TargetCompanyID == res.CompanyID {
		return nil, invalid("target_company_id", "must differ from the reservation's company")
	}
	updates := map[string]interface{}{"transferred_to_company_id": in.TargetCompanyID}
	if in.Notes != "" {
		updates["notes"] = in.Notes
	}
	if err := s.reservations.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.record(ctx, actor, id, "transfer", datatypes.JSONMap{
		"from_company_id": res.CompanyID,
		"to_company_id":   in.TargetCompanyID,
		"notes":           in.Notes,
	})
	return s.reload(ctx, actor, id, EventReservationChanged)
}

// MarkNoShow flags a reservation whose passenger never boarded.
func (s *ReservationService) MarkNoShow(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	res, err := s.active(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if res.CheckInAt != nil {
		return nil, invalid("is_no_show", "reservation %d is checked in", id)
	}
	if res.IsNoShow {
		return res, nil
	}
	if err := s.reservations.Update(ctx, id, map[string]interface{}{"is_no_show": true}); err != nil {
		return nil, err
	}
	s.record(ctx, actor, id, "no_show", nil)
	return s.reload(ctx, actor, id, EventReservationChanged)
}

// NoShowCandidates lists reservations eligible for automatic no-show marking.
func (s *ReservationService) NoShowCandidates(ctx context.Context, departedBefore time.Time) ([]models.Reservation, error) {
	return s.reservations.NoShowCandidates(ctx, departedBefore)
}

func (s *ReservationService) CashBalance(ctx context.Context, actor Actor) (float64, error) {
	return s.reservations.CashBalance(ctx, actor.UserID, actor.CompanyID)
}

func (s *ReservationService) active(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	res, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if res.Status == models.ReservationCancelled {
		return nil, invalid("status", "reservation %d is cancelled", id)
	}
	return res, nil
}

func (s *ReservationService) reload(ctx context.Context, actor Actor, id uint, event string) (*models.Reservation, error) {
	res, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(actor.CompanyID, event, res)
	return res, nil
}

// record writes the audit entry; the state change it describes is already stored.
func (s *ReservationService) record(ctx context.Context, actor Actor, id uint, action string, details datatypes.JSONMap) {
	entry := &models.AuditLog{
		CompanyID:  actor.CompanyID,
		UserID:     actor.UserID,
		EntityType: "reservation",
		EntityID:   id,
		Action:     action,
		Details:    details,
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"reservation_id": id,
			"action":         action,
		}).Warn("ReservationService: audit log insert failed")
	}
}

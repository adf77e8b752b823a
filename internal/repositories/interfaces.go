package repositories

import (
	"context"
	"time"

	"transroute/internal/models"
)

type StopRepository interface {
	Create(ctx context.Context, stop *models.Stop) error
	GetByID(ctx context.Context, id uint) (*models.Stop, error)
	// FindByIdentity matches a live stop, active or not, on its
	// (company, city, state, name) identity.
	FindByIdentity(ctx context.Context, companyID uint, city, state, name string) (*models.Stop, error)
	Search(ctx context.Context, companyID uint, query string, limit int) ([]models.Stop, error)
	List(ctx context.Context, companyID uint) ([]models.Stop, error)
	Update(ctx context.Context, stop *models.Stop) error
	Delete(ctx context.Context, id uint) error
}

type RouteRepository interface {
	Create(ctx context.Context, route *models.Route) error
	GetByID(ctx context.Context, id uint) (*models.Route, error)
	List(ctx context.Context, companyID uint) ([]models.Route, error)
	Update(ctx context.Context, route *models.Route) error
	Delete(ctx context.Context, id uint) error
}

type TemplateRepository interface {
	Create(ctx context.Context, tpl *models.RouteTemplate) error
	GetByID(ctx context.Context, id uint) (*models.RouteTemplate, error)
	ListByRoute(ctx context.Context, routeID uint) ([]models.RouteTemplate, error)
	Update(ctx context.Context, tpl *models.RouteTemplate) error
	Delete(ctx context.Context, id uint) error
}

// TripFilter narrows trip listings; zero values are ignored.
type TripFilter struct {
	CompanyID  uint
	RouteID    uint
	Visibility string
	DateFrom   time.Time
	DateTo     time.Time
}

type TripRepository interface {
	Create(ctx context.Context, trip *models.Trip) error
	GetByID(ctx context.Context, id uint) (*models.Trip, error)
	List(ctx context.Context, filter TripFilter) ([]models.Trip, error)
	UpdateVisibility(ctx context.Context, id uint, visibility string) error
	Delete(ctx context.Context, id uint) error
}

// SegmentQuery is the SQL side of a segment search. Legacy location
// strings are matched by the caller after normalization.
type SegmentQuery struct {
	CompanyID         uint
	OriginStopID      *uint
	DestinationStopID *uint
	MainTripOnly      bool
	DateFrom          time.Time
	DateTo            time.Time
	MinSeats          int
}

type SegmentRepository interface {
	CreateBatch(ctx context.Context, segments []models.TripSegment) error
	ListByTrip(ctx context.Context, tripID uint) ([]models.TripSegment, error)
	Search(ctx context.Context, q SegmentQuery) ([]models.TripSegment, error)
	// DistinctLocations lists distinct "origin" or "destination" values of
	// published segments departing after since.
	DistinctLocations(ctx context.Context, companyID uint, column string, since time.Time) ([]string, error)
}

type CreateReservationParams struct {
	CompanyID     uint
	TripSegmentID uint
	ClientID      uint
	Seats         int
	TotalAmount   float64
	AmountPaid    float64
	PaymentMethod string
	Notes         string
	CreatedBy     uint
}

type ReservationFilter struct {
	CompanyID uint
	TripID    uint
	ClientID  uint
	Status    string
}

type ReservationRepository interface {
	// Stored procedures.
	CreateWithTransaction(ctx context.Context, p CreateReservationParams) (uint, error)
	CancelWithRefund(ctx context.Context, id, userID uint, refundAmount float64, reason string) error
	AddPayment(ctx context.Context, id, userID uint, amount float64, method string) error
	ModifyTrip(ctx context.Context, id, newSegmentID, userID uint) error
	CashBalance(ctx context.Context, userID, companyID uint) (float64, error)

	GetByID(ctx context.Context, id uint) (*models.Reservation, error)
	List(ctx context.Context, filter ReservationFilter) ([]models.Reservation, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	NoShowCandidates(ctx context.Context, departedBefore time.Time) ([]models.Reservation, error)
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, id uint) (*models.Client, error)
	FindByPhone(ctx context.Context, companyID uint, phone string) (*models.Client, error)
	List(ctx context.Context, companyID uint, query string) ([]models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id uint) error
}

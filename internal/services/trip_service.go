package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"transroute/internal/models"
	"transroute/internal/repositories"
)

type TripInput struct {
	RouteID           uint       `json:"route_id"`
	RouteTemplateID   *uint      `json:"route_template_id"`
	DepartureDatetime time.Time  `json:"departure_datetime" binding:"required"`
	ArrivalDatetime   *time.Time `json:"arrival_datetime"`
	Capacity          int        `json:"capacity" binding:"required,gt=0"`
	VehicleID         *uint      `json:"vehicle_id"`
	DriverID          *uint      `json:"driver_id"`
	Visibility        string     `json:"visibility" binding:"omitempty,oneof=draft published cancelled"`
	BasePrice         *float64   `json:"base_price" binding:"omitempty,gte=0"`
	Notes             string     `json:"notes"`
}

type TripService struct {
	trips     repositories.TripRepository
	segments  repositories.SegmentRepository
	routes    *RouteService
	templates *TemplateService
	publisher Publisher

	defaultBasePrice float64
}

func NewTripService(
	trips repositories.TripRepository,
	segments repositories.SegmentRepository,
	routes *RouteService,
	templates *TemplateService,
	publisher Publisher,
	defaultBasePrice float64,
) *TripService {
	return &TripService{
		trips:            trips,
		segments:         segments,
		routes:           routes,
		templates:        templates,
		publisher:        orNop(publisher),
		defaultBasePrice: defaultBasePrice,
	}
}

// Create stores the trip and, when it follows a route, generates all of its
// segments in one batch. A failed batch leaves the trip without segments.
func (s *TripService) Create(ctx context.Context, companyID uint, in TripInput) (*models.Trip, []models.TripSegment, error) {
	if err := validateTripInput(in); err != nil {
		return nil, nil, err
	}

	var route *models.Route
	var tpl *models.RouteTemplate
	if in.RouteID != 0 {
		r, err := s.routes.Get(ctx, companyID, in.RouteID)
		if err != nil {
			return nil, nil, err
		}
		if len(r.AllStops()) < 2 {
			return nil, nil, invalid("route_id", "route %d has fewer than two stops", r.ID)
		}
		route = r
		if in.RouteTemplateID != nil {
			t, err := s.templates.Get(ctx, companyID, *in.RouteTemplateID)
			if err != nil {
				return nil, nil, err
			}
			if t.RouteID != route.ID {
				return nil, nil, invalid("route_template_id", "template %d belongs to another route", t.ID)
			}
			tpl = t
		}
	} else if in.RouteTemplateID != nil {
		return nil, nil, invalid("route_template_id", "requires route_id")
	}

	basePrice := s.defaultBasePrice
	if in.BasePrice != nil {
		basePrice = *in.BasePrice
	}
	visibility := in.Visibility
	if visibility == "" {
		visibility = models.VisibilityDraft
	}

	trip := &models.Trip{
		RouteID:           in.RouteID,
		RouteTemplateID:   in.RouteTemplateID,
		CompanyID:         companyID,
		DepartureDatetime: in.DepartureDatetime,
		ArrivalDatetime:   in.ArrivalDatetime,
		Capacity:          in.Capacity,
		VehicleID:         in.VehicleID,
		DriverID:          in.DriverID,
		Visibility:        visibility,
		BasePrice:         basePrice,
		Notes:             in.Notes,
	}
	if err := s.trips.Create(ctx, trip); err != nil {
		return nil, nil, err
	}

	if route == nil {
		s.publisher.Publish(companyID, EventTripCreated, trip)
		return trip, nil, nil
	}

	// Segment times come from the stored row, not the request.
	stored, err := s.trips.GetByID(ctx, trip.ID)
	if err != nil {
		return nil, nil, err
	}

	segments := BuildSegments(*stored, *route, tpl, basePrice)
	if err := s.segments.CreateBatch(ctx, segments); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"trip_id":  trip.ID,
			"route_id": route.ID,
			"segments": len(segments),
		}).Error("TripService.Create: segment batch insert failed, trip left without segments")
		return nil, nil, fmt.Errorf("trip %d: %w", trip.ID, ErrSegmentGeneration)
	}

	logrus.WithFields(logrus.Fields{
		"trip_id":  trip.ID,
		"segments": len(segments),
	}).Info("trip created")
	s.publisher.Publish(companyID, EventTripCreated, stored)
	return stored, segments, nil
}

func (s *TripService) Get(ctx context.Context, companyID, id uint) (*models.Trip, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.CompanyID != companyID {
		return nil, notFound("trip", id)
	}
	return trip, nil
}

func (s *TripService) List(ctx context.Context, filter repositories.TripFilter) ([]models.Trip, error) {
	if !filter.DateFrom.IsZero() && !filter.DateTo.IsZero() && filter.DateTo.Before(filter.DateFrom) {
		return nil, invalid("date_to", "must not be before date_from")
	}
	return s.trips.List(ctx, filter)
}

func (s *TripService) Segments(ctx context.Context, companyID, tripID uint) ([]models.TripSegment, error) {
	if _, err := s.Get(ctx, companyID, tripID); err != nil {
		return nil, err
	}
	return s.segments.ListByTrip(ctx, tripID)
}

// SetVisibility publishes, cancels or drafts a trip.
func (s *TripService) SetVisibility(ctx context.Context, companyID, id uint, visibility string) (*models.Trip, error) {
	switch visibility {
	case models.VisibilityDraft, models.VisibilityPublished, models.VisibilityCancelled:
	default:
		return nil, invalid("visibility", "must be one of draft, published, cancelled")
	}
	trip, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.trips.UpdateVisibility(ctx, id, visibility); err != nil {
		return nil, err
	}
	trip.Visibility = visibility
	s.publisher.Publish(companyID, EventTripVisibility, trip)
	return trip, nil
}

func (s *TripService) Delete(ctx context.Context, companyID, id uint) error {
	if _, err := s.Get(ctx, companyID, id); err != nil {
		return err
	}
	if err := s.trips.Delete(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish(companyID, EventTripDeleted, map[string]uint{"trip_id": id})
	return nil
}

func validateTripInput(in TripInput) error {
	if in.DepartureDatetime.IsZero() {
		return invalid("departure_datetime", "is required")
	}
	if in.ArrivalDatetime != nil && !in.ArrivalDatetime.After(in.DepartureDatetime) {
		return invalid("arrival_datetime", "must be after departure_datetime")
	}
	if in.Capacity <= 0 {
		return invalid("capacity", "must be greater than zero")
	}
	if in.BasePrice != nil && *in.BasePrice < 0 {
		return invalid("base_price", "must not be negative")
	}
	switch in.Visibility {
	case "", models.VisibilityDraft, models.VisibilityPublished, models.VisibilityCancelled:
	default:
		return invalid("visibility", "must be one of draft, published, cancelled")
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"strings"

	"transroute/internal/geo"
	"transroute/internal/location"
	"transroute/internal/models"
	"transroute/internal/repositories"
)

// RouteInput creates or fully replaces a route. Each location may be given
// as a legacy string, a stop id, or both; Stops and StopIDs are parallel.
type RouteInput struct {
	Name              string   `json:"name" binding:"required"`
	Origin            string   `json:"origin" binding:"omitempty,location"`
	OriginStopID      *uint    `json:"origin_stop_id"`
	Destination       string   `json:"destination" binding:"omitempty,location"`
	DestinationStopID *uint    `json:"destination_stop_id"`
	Stops             []string `json:"stops"`
	StopIDs           []uint   `json:"stop_ids"`

	DistanceKm               *float64 `json:"distance_km" binding:"omitempty,gte=0"`
	EstimatedDurationMinutes int      `json:"estimated_duration_minutes" binding:"gte=0"`
	Geometry                 string   `json:"geometry"`
	IsActive                 *bool    `json:"is_active"`
}

type RouteService struct {
	routes repositories.RouteRepository
	stops  *StopService
}

func NewRouteService(routes repositories.RouteRepository, stops *StopService) *RouteService {
	return &RouteService{routes: routes, stops: stops}
}

func (s *RouteService) Create(ctx context.Context, companyID uint, in RouteInput) (*models.Route, error) {
	route := &models.Route{CompanyID: companyID, IsActive: true}
	if err := s.apply(ctx, route, in); err != nil {
		return nil, err
	}
	if err := s.routes.Create(ctx, route); err != nil {
		return nil, err
	}
	return route, nil
}

func (s *RouteService) Update(ctx context.Context, companyID, id uint, in RouteInput) (*models.Route, error) {
	route, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, route, in); err != nil {
		return nil, err
	}
	if err := s.routes.Update(ctx, route); err != nil {
		return nil, err
	}
	return route, nil
}

func (s *RouteService) Get(ctx context.Context, companyID, id uint) (*models.Route, error) {
	route, err := s.routes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if route.CompanyID != companyID {
		return nil, notFound("route", id)
	}
	return route, nil
}

func (s *RouteService) List(ctx context.Context, companyID uint) ([]models.Route, error) {
	return s.routes.List(ctx, companyID)
}

func (s *RouteService) Delete(ctx context.Context, companyID, id uint) error {
	if _, err := s.Get(ctx, companyID, id); err != nil {
		return err
	}
	return s.routes.Delete(ctx, id)
}

// GenerateCombinations lists every stop-pair combination of a stored route.
func (s *RouteService) GenerateCombinations(ctx context.Context, companyID, routeID uint) ([]Combination, error) {
	route, err := s.Get(ctx, companyID, routeID)
	if err != nil {
		return nil, err
	}
	return GenerateCombinations(route.AllStops()), nil
}

func (s *RouteService) apply(ctx context.Context, route *models.Route, in RouteInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return invalid("name", "is required")
	}

	origin, originID, err := s.resolve(ctx, route.CompanyID, "origin", in.Origin, in.OriginStopID)
	if err != nil {
		return err
	}
	dest, destID, err := s.resolve(ctx, route.CompanyID, "destination", in.Destination, in.DestinationStopID)
	if err != nil {
		return err
	}

	n := len(in.Stops)
	if len(in.StopIDs) > n {
		n = len(in.StopIDs)
	}
	stops := make([]string, 0, n)
	stopIDs := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		var loc string
		var id *uint
		if i < len(in.Stops) {
			loc = in.Stops[i]
		}
		if i < len(in.StopIDs) && in.StopIDs[i] != 0 {
			v := in.StopIDs[i]
			id = &v
		}
		full, stopID, err := s.resolve(ctx, route.CompanyID, "stops", loc, id)
		if err != nil {
			return err
		}
		stops = append(stops, full)
		stopIDs = append(stopIDs, int64(*stopID))
	}

	wkb, line, err := geo.ParseLineString(in.Geometry)
	if err != nil {
		return invalid("geometry", "%v", err)
	}

	route.Name = name
	route.Origin, route.OriginStopID = origin, originID
	route.Destination, route.DestinationStopID = dest, destID
	route.Stops = stops
	route.StopIDs = stopIDs
	route.Geometry = wkb
	route.EstimatedDurationMinutes = in.EstimatedDurationMinutes
	switch {
	case in.DistanceKm != nil:
		route.DistanceKm = *in.DistanceKm
	case line != nil:
		route.DistanceKm = geo.LengthKm(line)
	default:
		route.DistanceKm = 0
	}
	if in.IsActive != nil {
		route.IsActive = *in.IsActive
	}
	return nil
}

// resolve keeps the legacy string and the stop id of one location consistent.
func (s *RouteService) resolve(ctx context.Context, companyID uint, field, loc string, id *uint) (string, *uint, error) {
	loc = strings.TrimSpace(loc)
	switch {
	case id == nil && loc == "":
		return "", nil, invalid(field, "a location or a stop id is required")

	case id == nil:
		stop, err := s.stops.FindOrCreate(ctx, loc, companyID)
		if err != nil {
			return "", nil, err
		}
		stopID := stop.ID
		return stop.FullLocation, &stopID, nil

	default:
		stop, err := s.stops.Get(ctx, companyID, *id)
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, invalid(field, "stop %d does not exist", *id)
		}
		if err != nil {
			return "", nil, err
		}
		if loc != "" && !location.Equal(location.Parse(loc).String(), stop.FullLocation) {
			return "", nil, invalid(field, "%q does not match stop %d (%s)", loc, *id, stop.FullLocation)
		}
		stopID := stop.ID
		return stop.FullLocation, &stopID, nil
	}
}

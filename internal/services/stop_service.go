package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"transroute/internal/location"
	"transroute/internal/models"
	"transroute/internal/repositories"
)

const stopSearchLimit = 20

// StopInput describes a stop created or edited explicitly by an operator.
type StopInput struct {
	Name     string `json:"name"`
	City     string `json:"city" binding:"required"`
	State    string `json:"state"`
	Country  string `json:"country"`
	StopType string `json:"stop_type"`
	IsActive *bool  `json:"is_active"`
}

type StopService struct {
	stops          repositories.StopRepository
	defaultCountry string
}

func NewStopService(stops repositories.StopRepository, defaultCountry string) *StopService {
	return &StopService{stops: stops, defaultCountry: defaultCountry}
}

// FindOrCreate resolves a legacy location string to a stop of the company,
// creating the stop on first use. A deactivated stop is reactivated, since
// the location is being referenced again.
func (s *StopService) FindOrCreate(ctx context.Context, fullLocation string, companyID uint) (*models.Stop, error) {
	loc := location.Parse(fullLocation)
	if !loc.Valid() {
		return nil, invalid("location", "%q is not a valid \"City, State|Name\" location", fullLocation)
	}

	stop, err := s.stops.FindByIdentity(ctx, companyID, loc.City, loc.State, loc.Name)
	if err == nil {
		return s.reactivate(ctx, stop)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	stop = &models.Stop{
		CompanyID:    companyID,
		Name:         loc.Name,
		City:         loc.City,
		State:        loc.State,
		Country:      s.defaultCountry,
		FullLocation: loc.String(),
		StopType:     models.StopTypeTerminal,
		IsActive:     true,
	}
	err = s.stops.Create(ctx, stop)
	if err == nil {
		return stop, nil
	}
	if !errors.Is(err, repositories.ErrConflict) {
		return nil, err
	}

	// Lost a creation race; the winner's row is the answer.
	logrus.WithField("location", loc.String()).Debug("FindOrCreate: stop created concurrently, re-fetching")
	existing, findErr := s.stops.FindByIdentity(ctx, companyID, loc.City, loc.State, loc.Name)
	if findErr != nil {
		return nil, err
	}
	return s.reactivate(ctx, existing)
}

func (s *StopService) reactivate(ctx context.Context, stop *models.Stop) (*models.Stop, error) {
	if stop.IsActive {
		return stop, nil
	}
	stop.IsActive = true
	if err := s.stops.Update(ctx, stop); err != nil {
		return nil, err
	}
	logrus.WithField("stop_id", stop.ID).Info("FindOrCreate: reactivated stop")
	return stop, nil
}

// Search matches name, city, state or full location case-insensitively.
func (s *StopService) Search(ctx context.Context, query string, companyID uint) ([]models.Stop, error) {
	return s.stops.Search(ctx, companyID, strings.TrimSpace(query), stopSearchLimit)
}

func (s *StopService) Create(ctx context.Context, companyID uint, in StopInput) (*models.Stop, error) {
	stop := &models.Stop{CompanyID: companyID, IsActive: true}
	if err := s.apply(stop, in); err != nil {
		return nil, err
	}
	if err := s.stops.Create(ctx, stop); err != nil {
		return nil, err
	}
	return stop, nil
}

func (s *StopService) Get(ctx context.Context, companyID, id uint) (*models.Stop, error) {
	stop, err := s.stops.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stop.CompanyID != companyID {
		return nil, notFound("stop", id)
	}
	return stop, nil
}

func (s *StopService) List(ctx context.Context, companyID uint) ([]models.Stop, error) {
	return s.stops.List(ctx, companyID)
}

func (s *StopService) Update(ctx context.Context, companyID, id uint, in StopInput) (*models.Stop, error) {
	stop, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(stop, in); err != nil {
		return nil, err
	}
	if err := s.stops.Update(ctx, stop); err != nil {
		return nil, err
	}
	return stop, nil
}

func (s *StopService) Delete(ctx context.Context, companyID, id uint) error {
	if _, err := s.Get(ctx, companyID, id); err != nil {
		return err
	}
	return s.stops.Delete(ctx, id)
}

func (s *StopService) apply(stop *models.Stop, in StopInput) error {
	loc := location.Location{
		City:  strings.TrimSpace(in.City),
		State: strings.TrimSpace(in.State),
		Name:  strings.TrimSpace(in.Name),
	}
	if loc.City == "" {
		return invalid("city", "is required")
	}
	if loc.Name == "" {
		loc.Name = loc.City
	}

	stop.City, stop.State, stop.Name = loc.City, loc.State, loc.Name
	stop.FullLocation = loc.String()
	stop.Country = strings.TrimSpace(in.Country)
	if stop.Country == "" {
		stop.Country = s.defaultCountry
	}
	stop.StopType = strings.TrimSpace(in.StopType)
	if stop.StopType == "" {
		stop.StopType = models.StopTypeTerminal
	}
	if in.IsActive != nil {
		stop.IsActive = *in.IsActive
	}
	return nil
}

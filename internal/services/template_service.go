package services

import (
	"context"
	"sort"
	"strings"

	"gorm.io/datatypes"

	"transroute/internal/location"
	"transroute/internal/models"
	"transroute/internal/repositories"
)

type TemplateInput struct {
	RouteID            uint                      `json:"route_id" binding:"required"`
	Name               string                    `json:"name" binding:"required"`
	TimeConfiguration  models.TimeConfiguration  `json:"time_configuration"`
	PriceConfiguration models.PriceConfiguration `json:"price_configuration"`
	IsActive           *bool                     `json:"is_active"`
}

// TemplateUpdate only touches the fields that are present.
type TemplateUpdate struct {
	Name               *string                    `json:"name"`
	TimeConfiguration  *models.TimeConfiguration  `json:"time_configuration"`
	PriceConfiguration *models.PriceConfiguration `json:"price_configuration"`
	IsActive           *bool                      `json:"is_active"`
}

type TemplateService struct {
	templates repositories.TemplateRepository
	routes    *RouteService
}

func NewTemplateService(templates repositories.TemplateRepository, routes *RouteService) *TemplateService {
	return &TemplateService{templates: templates, routes: routes}
}

func (s *TemplateService) Create(ctx context.Context, companyID uint, in TemplateInput) (*models.RouteTemplate, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	route, err := s.routes.Get(ctx, companyID, in.RouteID)
	if err != nil {
		return nil, err
	}
	if err := ValidateTemplateConfiguration(route.AllStops(), in.TimeConfiguration, in.PriceConfiguration); err != nil {
		return nil, err
	}

	tpl := &models.RouteTemplate{
		RouteID:            route.ID,
		CompanyID:          companyID,
		Name:               name,
		TimeConfiguration:  datatypes.NewJSONType(orEmptyTimes(in.TimeConfiguration)),
		PriceConfiguration: datatypes.NewJSONType(orEmptyPrices(in.PriceConfiguration)),
		IsActive:           true,
	}
	if in.IsActive != nil {
		tpl.IsActive = *in.IsActive
	}
	if err := s.templates.Create(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// Update re-reads the parent route whenever a configuration changes, since
// the intra-city rule depends on the route's current stops.
func (s *TemplateService) Update(ctx context.Context, companyID, id uint, in TemplateUpdate) (*models.RouteTemplate, error) {
	tpl, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if in.TimeConfiguration != nil || in.PriceConfiguration != nil {
		times := tpl.TimeConfiguration.Data()
		if in.TimeConfiguration != nil {
			times = *in.TimeConfiguration
		}
		prices := tpl.PriceConfiguration.Data()
		if in.PriceConfiguration != nil {
			prices = *in.PriceConfiguration
		}

		route, err := s.routes.Get(ctx, companyID, tpl.RouteID)
		if err != nil {
			return nil, err
		}
		if err := ValidateTemplateConfiguration(route.AllStops(), times, prices); err != nil {
			return nil, err
		}
		tpl.TimeConfiguration = datatypes.NewJSONType(orEmptyTimes(times))
		tpl.PriceConfiguration = datatypes.NewJSONType(orEmptyPrices(prices))
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalid("name", "is required")
		}
		tpl.Name = name
	}
	if in.IsActive != nil {
		tpl.IsActive = *in.IsActive
	}

	if err := s.templates.Update(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *TemplateService) Get(ctx context.Context, companyID, id uint) (*models.RouteTemplate, error) {
	tpl, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tpl.CompanyID != companyID {
		return nil, notFound("route template", id)
	}
	return tpl, nil
}

func (s *TemplateService) ListByRoute(ctx context.Context, companyID, routeID uint) ([]models.RouteTemplate, error) {
	if _, err := s.routes.Get(ctx, companyID, routeID); err != nil {
		return nil, err
	}
	return s.templates.ListByRoute(ctx, routeID)
}

func (s *TemplateService) Delete(ctx context.Context, companyID, id uint) error {
	if _, err := s.Get(ctx, companyID, id); err != nil {
		return err
	}
	return s.templates.Delete(ctx, id)
}

// ValidateTemplateConfiguration checks configuration keys against the stop
// sequence and rejects enabled prices between stops of the same city.
func ValidateTemplateConfiguration(stops []string, times models.TimeConfiguration, prices models.PriceConfiguration) error {
	n := len(stops)
	if n < 2 {
		return invalid("route", "needs at least two stops")
	}

	for _, key := range sortedKeys(times) {
		i, j, err := ParseCombinationKey(key, n)
		if err != nil {
			return invalid("time_configuration", "%v", err)
		}
		if j != i+1 {
			return invalid("time_configuration", "key %q must join consecutive stops", key)
		}
		t := times[key]
		if t.Hours < 0 || t.Minutes < 0 || t.Minutes >= 60 {
			return invalid("time_configuration", "key %q has an invalid duration", key)
		}
	}

	for _, key := range sortedKeys(prices) {
		i, j, err := ParseCombinationKey(key, n)
		if err != nil {
			return invalid("price_configuration", "%v", err)
		}
		p := prices[key]
		if p.Price < 0 {
			return invalid("price_configuration", "key %q has a negative price", key)
		}
		if p.Enabled && location.SameCity(stops[i], stops[j]) {
			return invalid("price_configuration",
				"combination %s (%s → %s) cannot be enabled: both stops are in %s",
				key, stops[i], stops[j], location.Parse(stops[i]).City)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orEmptyTimes(t models.TimeConfiguration) models.TimeConfiguration {
	if t == nil {
		return models.TimeConfiguration{}
	}
	return t
}

func orEmptyPrices(p models.PriceConfiguration) models.PriceConfiguration {
	if p == nil {
		return models.PriceConfiguration{}
	}
	return p
}

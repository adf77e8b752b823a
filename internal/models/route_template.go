package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TimeEntry is the travel time between two consecutive stops.
type TimeEntry struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// TotalMinutes returns the entry as a number of minutes.
func (t TimeEntry) TotalMinutes() int {
	return t.Hours*60 + t.Minutes
}

// PriceEntry is the fare of one stop-pair combination.
type PriceEntry struct {
	Price   float64 `json:"price"`
	Enabled bool    `json:"enabled"`
}

// Both configurations are keyed by "i-j", indexes into Route.AllStops.
type TimeConfiguration map[string]TimeEntry

type PriceConfiguration map[string]PriceEntry

// RouteTemplate is a reusable price/time configuration for a route.
type RouteTemplate struct {
	gorm.Model

	RouteID   uint   `json:"route_id" gorm:"index;not null"`
	CompanyID uint   `json:"company_id" gorm:"index;not null"`
	Name      string `json:"name"`

	TimeConfiguration  datatypes.JSONType[TimeConfiguration]  `json:"time_configuration" gorm:"type:jsonb"`
	PriceConfiguration datatypes.JSONType[PriceConfiguration] `json:"price_configuration" gorm:"type:jsonb"`

	IsActive bool `json:"is_active"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	VisibilityDraft     = "draft"
	VisibilityPublished = "published"
	VisibilityCancelled = "cancelled"
)

// Trip is one scheduled departure of a route.
type Trip struct {
	gorm.Model

	RouteID         uint  `json:"route_id" gorm:"index"`
	RouteTemplateID *uint `json:"route_template_id"`
	CompanyID       uint  `json:"company_id" gorm:"index;not null"`

	DepartureDatetime time.Time  `json:"departure_datetime" gorm:"index;not null"`
	ArrivalDatetime   *time.Time `json:"arrival_datetime"`

	Capacity   int     `json:"capacity"`
	VehicleID  *uint   `json:"vehicle_id"`
	DriverID   *uint   `json:"driver_id"`
	Visibility string  `json:"visibility" gorm:"default:draft;index"`
	BasePrice  float64 `json:"base_price"`
	Notes      string  `json:"notes"`

	Route    *Route        `gorm:"foreignKey:RouteID" json:"route,omitempty"`
	Segments []TripSegment `gorm:"foreignKey:TripID;constraint:OnDelete:CASCADE;" json:"segments,omitempty"`
}

// TripSegment is one bookable origin→destination leg of a trip.
type TripSegment struct {
	gorm.Model

	TripID            uint    `json:"trip_id" gorm:"index;not null"`
	Origin            string  `json:"origin"`
	Destination       string  `json:"destination"`
	OriginStopID      *uint   `json:"origin_stop_id" gorm:"index"`
	DestinationStopID *uint   `json:"destination_stop_id" gorm:"index"`
	Price             float64 `json:"price"`
	AvailableSeats    int     `json:"available_seats"`
	IsMainTrip        bool    `json:"is_main_trip" gorm:"index"`

	DepartureTime time.Time `json:"departure_time" gorm:"index"`
	ArrivalTime   time.Time `json:"arrival_time"`

	Trip *Trip `gorm:"foreignKey:TripID" json:"trip,omitempty"`
}

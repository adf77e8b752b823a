package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Route is an ordered sequence of stops operated by a company.
// Each location is stored twice: the legacy string and the stop id.
type Route struct {
	gorm.Model

	CompanyID   uint   `json:"company_id" gorm:"index;not null"`
	Name        string `json:"name"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`

	// Intermediate stops only, in travel order.
	Stops             pq.StringArray `json:"stops" gorm:"type:text[]"`
	OriginStopID      *uint          `json:"origin_stop_id"`
	DestinationStopID *uint          `json:"destination_stop_id"`
	StopIDs           pq.Int64Array  `json:"stop_ids" gorm:"type:bigint[]"`

	DistanceKm               float64 `json:"distance_km"`
	EstimatedDurationMinutes int     `json:"estimated_duration_minutes"`
	IsActive                 bool    `json:"is_active"`

	// LINESTRING (SRID 4326) as WKB; exposed as GeoJSON by the API.
	Geometry []byte `json:"-" gorm:"type:bytea"`

	Templates []RouteTemplate `gorm:"foreignKey:RouteID" json:"templates,omitempty"`
}

// AllStops returns [origin, ...stops, destination].
func (r Route) AllStops() []string {
	all := make([]string, 0, len(r.Stops)+2)
	all = append(all, r.Origin)
	all = append(all, r.Stops...)
	return append(all, r.Destination)
}

// AllStopIDs mirrors AllStops; entries are nil where the id is unknown.
func (r Route) AllStopIDs() []*uint {
	ids := make([]*uint, 0, len(r.Stops)+2)
	ids = append(ids, r.OriginStopID)
	for i := range r.Stops {
		if i < len(r.StopIDs) && r.StopIDs[i] > 0 {
			id := uint(r.StopIDs[i])
			ids = append(ids, &id)
			continue
		}
		ids = append(ids, nil)
	}
	return append(ids, r.DestinationStopID)
}

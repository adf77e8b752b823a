package services

import (
	"time"

	"transroute/internal/models"
)

// BuildSegments expands a trip over its route into one segment per stop
// pair (i, j), i < j.
//
// Without a template every segment inherits the trip's departure and
// arrival and is priced basePrice*(j-i). A template overrides the price of
// enabled combinations, zeroes the seats of disabled ones, and when it
// defines every consecutive leg the segment times are offset from the
// trip's departure.
func BuildSegments(trip models.Trip, route models.Route, tpl *models.RouteTemplate, basePrice float64) []models.TripSegment {
	stops := route.AllStops()
	ids := route.AllStopIDs()
	n := len(stops)
	if n < 2 {
		return nil
	}

	departure := trip.DepartureDatetime
	arrival := departure
	switch {
	case trip.ArrivalDatetime != nil:
		arrival = *trip.ArrivalDatetime
	case route.EstimatedDurationMinutes > 0:
		arrival = departure.Add(time.Duration(route.EstimatedDurationMinutes) * time.Minute)
	}

	var prices models.PriceConfiguration
	var offsets []time.Duration
	if tpl != nil {
		prices = tpl.PriceConfiguration.Data()
		offsets = legOffsets(tpl.TimeConfiguration.Data(), n)
	}

	segments := make([]models.TripSegment, 0, n*(n-1)/2)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			seg := models.TripSegment{
				TripID:            trip.ID,
				Origin:            stops[i],
				Destination:       stops[j],
				OriginStopID:      ids[i],
				DestinationStopID: ids[j],
				Price:             basePrice * float64(j-i),
				AvailableSeats:    trip.Capacity,
				IsMainTrip:        i == 0 && j == n-1,
				DepartureTime:     departure,
				ArrivalTime:       arrival,
			}
			if offsets != nil {
				seg.DepartureTime = departure.Add(offsets[i])
				seg.ArrivalTime = departure.Add(offsets[j])
			}
			if p, ok := prices[CombinationKey(i, j)]; ok {
				if p.Enabled {
					seg.Price = p.Price
				} else {
					seg.AvailableSeats = 0
				}
			}
			segments = append(segments, seg)
		}
	}
	return segments
}

// legOffsets returns the cumulative travel time from the first stop to each
// stop, or nil unless every consecutive leg is configured.
func legOffsets(times models.TimeConfiguration, n int) []time.Duration {
	if len(times) == 0 {
		return nil
	}
	offsets := make([]time.Duration, n)
	for k := 1; k < n; k++ {
		leg, ok := times[CombinationKey(k-1, k)]
		if !ok {
			return nil
		}
		offsets[k] = offsets[k-1] + time.Duration(leg.TotalMinutes())*time.Minute
	}
	return offsets
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"transroute/internal/models"
	"transroute/internal/repositories"
	"transroute/internal/repositories/memory"
)

type tripFixture struct {
	*routeFixture
	trips     *memory.Trips
	segments  *memory.Segments
	published *recordingPublisher
	tripSvc   *TripService
}

func newTripFixture() *tripFixture {
	rf := newRouteFixture()
	trips := memory.NewTrips()
	f := &tripFixture{
		routeFixture: rf,
		trips:        trips,
		segments:     memory.NewSegments(trips),
		published:    &recordingPublisher{},
	}
	f.tripSvc = NewTripService(f.trips, f.segments, rf.routeSvc, rf.tplSvc, f.published, 100)
	return f
}

var departure = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

func uintPtr(v uint) *uint { return &v }

func TestBuildSegmentsThreeStops(t *testing.T) {
	route := models.Route{
		Origin:            "A, X",
		Destination:       "C, X",
		Stops:             []string{"B, X"},
		OriginStopID:      uintPtr(1),
		StopIDs:           []int64{2},
		DestinationStopID: uintPtr(3),
	}
	trip := models.Trip{Model: gorm.Model{ID: 9}, DepartureDatetime: departure, Capacity: 40}

	segs := BuildSegments(trip, route, nil, 50)

	require.Len(t, segs, 3)
	pairs := [][2]string{}
	mains := 0
	for _, s := range segs {
		pairs = append(pairs, [2]string{s.Origin, s.Destination})
		assert.Equal(t, uint(9), s.TripID)
		assert.Equal(t, 40, s.AvailableSeats)
		assert.Equal(t, departure, s.DepartureTime)
		if s.IsMainTrip {
			mains++
			assert.Equal(t, "A, X", s.Origin)
			assert.Equal(t, "C, X", s.Destination)
			assert.Equal(t, 100.0, s.Price)
		}
	}
	assert.Equal(t, [][2]string{{"A, X", "B, X"}, {"A, X", "C, X"}, {"B, X", "C, X"}}, pairs)
	assert.Equal(t, 1, mains)
	assert.Equal(t, uint(2), *segs[0].DestinationStopID)
	assert.Equal(t, uint(3), *segs[2].DestinationStopID)
}

func TestBuildSegmentsCount(t *testing.T) {
	for l := 2; l <= 7; l++ {
		route := models.Route{Origin: "O", Destination: "D"}
		for k := 0; k < l-2; k++ {
			route.Stops = append(route.Stops, "S")
		}
		segs := BuildSegments(models.Trip{DepartureDatetime: departure, Capacity: 1}, route, nil, 1)
		assert.Len(t, segs, l*(l-1)/2, "stops=%d", l)
	}
}

func TestBuildSegmentsArrivalFallbacks(t *testing.T) {
	route := models.Route{Origin: "A", Destination: "B"}
	trip := models.Trip{DepartureDatetime: departure, Capacity: 1}

	segs := BuildSegments(trip, route, nil, 1)
	assert.Equal(t, departure, segs[0].ArrivalTime)

	route.EstimatedDurationMinutes = 90
	segs = BuildSegments(trip, route, nil, 1)
	assert.Equal(t, departure.Add(90*time.Minute), segs[0].ArrivalTime)

	arrival := departure.Add(5 * time.Hour)
	trip.ArrivalDatetime = &arrival
	segs = BuildSegments(trip, route, nil, 1)
	assert.Equal(t, arrival, segs[0].ArrivalTime)
}

func TestBuildSegmentsWithTemplate(t *testing.T) {
	route := models.Route{Origin: "A, X", Destination: "C, Z", Stops: []string{"B, Y"}}
	tpl := &models.RouteTemplate{
		TimeConfiguration: datatypes.NewJSONType(models.TimeConfiguration{
			"0-1": {Hours: 1},
			"1-2": {Hours: 2, Minutes: 30},
		}),
		PriceConfiguration: datatypes.NewJSONType(models.PriceConfiguration{
			"0-2": {Price: 420, Enabled: true},
			"0-1": {Price: 99, Enabled: false},
		}),
	}
	trip := models.Trip{DepartureDatetime: departure, Capacity: 30}

	segs := BuildSegments(trip, route, tpl, 100)
	require.Len(t, segs, 3)

	ab, ac, bc := segs[0], segs[1], segs[2]
	assert.Equal(t, 0, ab.AvailableSeats)
	assert.Equal(t, 100.0, ab.Price)
	assert.Equal(t, 420.0, ac.Price)
	assert.Equal(t, 30, ac.AvailableSeats)
	assert.Equal(t, 100.0, bc.Price)

	assert.Equal(t, departure.Add(time.Hour), ab.ArrivalTime)
	assert.Equal(t, departure.Add(3*time.Hour+30*time.Minute), ac.ArrivalTime)
	assert.Equal(t, departure.Add(time.Hour), bc.DepartureTime)
}

func TestBuildSegmentsPartialTimesIgnored(t *testing.T) {
	route := models.Route{Origin: "A", Destination: "C", Stops: []string{"B"}}
	tpl := &models.RouteTemplate{
		TimeConfiguration: datatypes.NewJSONType(models.TimeConfiguration{"0-1": {Hours: 1}}),
	}

	segs := BuildSegments(models.Trip{DepartureDatetime: departure, Capacity: 1}, route, tpl, 1)

	for _, s := range segs {
		assert.Equal(t, departure, s.DepartureTime)
	}
}

func TestTripCreateGeneratesSegments(t *testing.T) {
	f := newTripFixture()
	ctx := context.Background()
	route, err := f.routeSvc.Create(ctx, 1, RouteInput{
		Name:        "Acapulco - CDMX",
		Origin:      "Acapulco, Guerrero",
		Destination: "Ciudad de Mexico, CDMX",
		Stops:       []string{"Chilpancingo, Guerrero"},
	})
	require.NoError(t, err)

	trip, segs, err := f.tripSvc.Create(ctx, 1, TripInput{
		RouteID:           route.ID,
		DepartureDatetime: departure,
		Capacity:          40,
		Visibility:        models.VisibilityPublished,
	})
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityPublished, trip.Visibility)
	assert.Equal(t, 100.0, trip.BasePrice)
	require.Len(t, segs, 3)
	for _, s := range segs {
		assert.Equal(t, 40, s.AvailableSeats)
		assert.Equal(t, trip.ID, s.TripID)
		assert.NotNil(t, s.OriginStopID)
	}
	assert.True(t, segs[1].IsMainTrip)
	assert.Equal(t, "Acapulco, Guerrero|Acapulco", segs[1].Origin)
	assert.Equal(t, "Ciudad de Mexico, CDMX|Ciudad de Mexico", segs[1].Destination)
	assert.Equal(t, []string{EventTripCreated}, f.published.events)

	stored, err := f.tripSvc.Segments(ctx, 1, trip.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestTripCreateWithoutRoute(t *testing.T) {
	f := newTripFixture()

	trip, segs, err := f.tripSvc.Create(context.Background(), 1, TripInput{DepartureDatetime: departure, Capacity: 10})

	require.NoError(t, err)
	assert.Equal(t, models.VisibilityDraft, trip.Visibility)
	assert.Empty(t, segs)
	assert.Empty(t, f.segments.Rows)
}

func TestTripCreateSegmentFailure(t *testing.T) {
	f := newTripFixture()
	ctx := context.Background()
	route := createGuerreroRoute(t, f.routeFixture, 1)
	f.segments.FailBatch = errors.New("insert failed")

	_, _, err := f.tripSvc.Create(ctx, 1, TripInput{RouteID: route.ID, DepartureDatetime: departure, Capacity: 40})

	assert.True(t, errors.Is(err, ErrSegmentGeneration))
	assert.Len(t, f.trips.Rows, 1)
	assert.Empty(t, f.published.events)
}

func TestTripCreateValidation(t *testing.T) {
	f := newTripFixture()
	ctx := context.Background()
	route := createGuerreroRoute(t, f.routeFixture, 1)
	before := departure.Add(-time.Hour)
	negative := -5.0

	cases := map[string]TripInput{
		"no departure":      {RouteID: route.ID, Capacity: 1},
		"zero capacity":     {RouteID: route.ID, DepartureDatetime: departure},
		"arrival early":     {RouteID: route.ID, DepartureDatetime: departure, ArrivalDatetime: &before, Capacity: 1},
		"negative price":    {RouteID: route.ID, DepartureDatetime: departure, Capacity: 1, BasePrice: &negative},
		"bad visibility":    {RouteID: route.ID, DepartureDatetime: departure, Capacity: 1, Visibility: "hidden"},
		"template no route": {DepartureDatetime: departure, Capacity: 1, RouteTemplateID: uintPtr(1)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := f.tripSvc.Create(ctx, 1, in)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}

	_, _, err := f.tripSvc.Create(ctx, 2, TripInput{RouteID: route.ID, DepartureDatetime: departure, Capacity: 1})
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
}

func TestTripCreateRejectsTemplateOfOtherRoute(t *testing.T) {
	f := newTripFixture()
	ctx := context.Background()
	r1 := createGuerreroRoute(t, f.routeFixture, 1)
	r2 := createGuerreroRoute(t, f.routeFixture, 1)
	tpl, err := f.tplSvc.Create(ctx, 1, TemplateInput{RouteID: r1.ID, Name: "t"})
	require.NoError(t, err)

	_, _, err = f.tripSvc.Create(ctx, 1, TripInput{RouteID: r2.ID, RouteTemplateID: &tpl.ID, DepartureDatetime: departure, Capacity: 1})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "route_template_id", verr.Field)
}

func TestTripCreateAppliesTemplate(t *testing.T) {
	f := newTripFixture()
	ctx := context.Background()
	route := createGuerreroRoute(t, f.routeFixture, 1)
	tpl, err := f.tplSvc.Create(ctx, 1, TemplateInput{
		RouteID:            route.ID,
		Name:               "t",
		PriceConfiguration: models.PriceConfiguration{"0-3": {Price: 650, Enabled: true}, "0-1": {Price: 0}},
	})
	require.NoError(t, err)

	_, segs, err := f.tripSvc.Create(ctx, 1, TripInput{RouteID: route.ID, RouteTemplateID: &tpl.ID, DepartureDatetime: departure, Capacity: 40})
	require.NoError(t, err)
	require.Len(t, segs, 6)
	assert.Equal(t, 0, segs[0].AvailableSeats)
	assert.Equal(t, 650.0, segs[2].Price)
	assert.True(t, segs[2].IsMainTrip)
}

func TestTripVisibilityAndDelete(t *testing.T) {
	f := newTripFixture()
	ctx := context.Background()
	trip, _, err := f.tripSvc.Create(ctx, 1, TripInput{DepartureDatetime: departure, Capacity: 10})
	require.NoError(t, err)

	_, err = f.tripSvc.SetVisibility(ctx, 1, trip.ID, "hidden")
	assert.Error(t, err)

	updated, err := f.tripSvc.SetVisibility(ctx, 1, trip.ID, models.VisibilityPublished)
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityPublished, updated.Visibility)

	assert.True(t, errors.Is(f.tripSvc.Delete(ctx, 2, trip.ID), repositories.ErrNotFound))
	require.NoError(t, f.tripSvc.Delete(ctx, 1, trip.ID))
	_, err = f.tripSvc.Get(ctx, 1, trip.ID)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
	assert.Equal(t, []string{EventTripCreated, EventTripVisibility, EventTripDeleted}, f.published.events)
}

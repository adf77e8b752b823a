package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transroute/internal/models"
	"transroute/internal/repositories"
	"transroute/internal/repositories/memory"
)

func TestFindOrCreateCreatesOnce(t *testing.T) {
	repo := memory.NewStops()
	svc := NewStopService(repo, "Mexico")
	ctx := context.Background()

	first, err := svc.FindOrCreate(ctx, "Acapulco, Guerrero|Terminal Costera", 1)
	require.NoError(t, err)
	assert.Equal(t, "Acapulco", first.City)
	assert.Equal(t, "Guerrero", first.State)
	assert.Equal(t, "Terminal Costera", first.Name)
	assert.Equal(t, "Mexico", first.Country)
	assert.Equal(t, models.StopTypeTerminal, first.StopType)
	assert.True(t, first.IsActive)

	again, err := svc.FindOrCreate(ctx, "  Acapulco ,  Guerrero | Terminal Costera ", 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 1, repo.Creates)
}

func TestFindOrCreateIsScopedByCompany(t *testing.T) {
	svc := NewStopService(memory.NewStops(), "Mexico")
	ctx := context.Background()

	a, err := svc.FindOrCreate(ctx, "Chilpancingo, Guerrero", 1)
	require.NoError(t, err)
	b, err := svc.FindOrCreate(ctx, "Chilpancingo, Guerrero", 2)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "Chilpancingo", a.Name)
}

func TestFindOrCreateRefetchesAfterConflict(t *testing.T) {
	repo := memory.NewStops()
	repo.RaceOnCreate = true
	svc := NewStopService(repo, "Mexico")

	stop, err := svc.FindOrCreate(context.Background(), "Iguala, Guerrero|Centro", 3)
	require.NoError(t, err)
	assert.NotZero(t, stop.ID)
	assert.Len(t, repo.Rows, 1)
}

func TestFindOrCreateRejectsEmptyLocation(t *testing.T) {
	svc := NewStopService(memory.NewStops(), "Mexico")

	_, err := svc.FindOrCreate(context.Background(), " | ", 1)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestStopCRUDIsTenantScoped(t *testing.T) {
	svc := NewStopService(memory.NewStops(), "Mexico")
	ctx := context.Background()

	stop, err := svc.Create(ctx, 1, StopInput{City: "Taxco", State: "Guerrero"})
	require.NoError(t, err)
	assert.Equal(t, "Taxco", stop.Name)
	assert.Equal(t, "Taxco, Guerrero|Taxco", stop.FullLocation)

	_, err = svc.Get(ctx, 2, stop.ID)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	inactive := false
	updated, err := svc.Update(ctx, 1, stop.ID, StopInput{City: "Taxco", State: "Guerrero", Name: "Estrella de Oro", IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Taxco, Guerrero|Estrella de Oro", updated.FullLocation)
	assert.False(t, updated.IsActive)

	assert.True(t, errors.Is(svc.Delete(ctx, 2, stop.ID), repositories.ErrNotFound))
	assert.NoError(t, svc.Delete(ctx, 1, stop.ID))
}

func TestStopSearch(t *testing.T) {
	svc := NewStopService(memory.NewStops(), "Mexico")
	ctx := context.Background()
	for _, loc := range []string{"Acapulco, Guerrero|Costera", "Acapulco, Guerrero|Papagayo", "Toluca, Mexico"} {
		_, err := svc.FindOrCreate(ctx, loc, 1)
		require.NoError(t, err)
	}

	found, err := svc.Search(ctx, " acapulco ", 1)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	none, err := svc.Search(ctx, "acapulco", 2)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFindOrCreateReactivatesDeactivatedStop(t *testing.T) {
	repo := memory.NewStops()
	svc := NewStopService(repo, "Mexico")
	ctx := context.Background()

	stop, err := svc.FindOrCreate(ctx, "Iguala, Guerrero|Centro", 1)
	require.NoError(t, err)
	inactive := false
	_, err = svc.Update(ctx, 1, stop.ID, StopInput{City: "Iguala", State: "Guerrero", Name: "Centro", IsActive: &inactive})
	require.NoError(t, err)

	listed, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.False(t, listed[0].IsActive)

	again, err := svc.FindOrCreate(ctx, "Iguala, Guerrero|Centro", 1)
	require.NoError(t, err)
	assert.Equal(t, stop.ID, again.ID)
	assert.True(t, again.IsActive)
	assert.True(t, repo.Rows[stop.ID].IsActive)
	assert.Equal(t, 1, repo.Creates)
}

func TestRouteCreateWithDeactivatedStop(t *testing.T) {
	f := newRouteFixture()
	ctx := context.Background()
	stop, err := f.stopSvc.FindOrCreate(ctx, "Acapulco, Guerrero|Costera", 1)
	require.NoError(t, err)
	inactive := false
	_, err = f.stopSvc.Update(ctx, 1, stop.ID, StopInput{City: "Acapulco", State: "Guerrero", Name: "Costera", IsActive: &inactive})
	require.NoError(t, err)

	route, err := f.routeSvc.Create(ctx, 1, RouteInput{
		Name:        "Acapulco - Iguala",
		Origin:      "Acapulco, Guerrero|Costera",
		Destination: "Iguala, Guerrero",
	})

	require.NoError(t, err)
	require.NotNil(t, route.OriginStopID)
	assert.Equal(t, stop.ID, *route.OriginStopID)
}

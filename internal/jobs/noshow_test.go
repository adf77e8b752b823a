package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"transroute/internal/models"
	"transroute/internal/repositories/memory"
	"transroute/internal/services"
)

type fakeMarker struct {
	mu         sync.Mutex
	candidates []models.Reservation
	queryErr   error
	failIDs    map[uint]bool

	cutoff time.Time
	marked []uint
	actors []services.Actor
}

func (f *fakeMarker) NoShowCandidates(_ context.Context, departedBefore time.Time) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoff = departedBefore
	return f.candidates, f.queryErr
}

func (f *fakeMarker) MarkNoShow(_ context.Context, actor services.Actor, id uint) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[id] {
		return nil, errors.New("boom")
	}
	f.marked = append(f.marked, id)
	f.actors = append(f.actors, actor)
	return &models.Reservation{Model: gorm.Model{ID: id}, IsNoShow: true}, nil
}

func (f *fakeMarker) markedSnapshot() []uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint(nil), f.marked...)
}

func reservation(id, company uint) models.Reservation {
	return models.Reservation{Model: gorm.Model{ID: id}, CompanyID: company}
}

func TestRunOnceContinuesPastFailures(t *testing.T) {
	m := &fakeMarker{
		candidates: []models.Reservation{reservation(1, 10), reservation(2, 10), reservation(3, 20)},
		failIDs:    map[uint]bool{2: true},
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	job := NewNoShowJob(m, time.Hour, 5*time.Hour)
	job.now = func() time.Time { return now }

	marked, failed := job.RunOnce(context.Background())

	assert.Equal(t, 2, marked)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []uint{1, 3}, m.marked)
	assert.Equal(t, uint(20), m.actors[1].CompanyID)
	assert.Equal(t, now.Add(-5*time.Hour), m.cutoff)
}

func TestRunOnceQueryFailure(t *testing.T) {
	m := &fakeMarker{queryErr: errors.New("db down")}
	job := NewNoShowJob(m, time.Hour, 5*time.Hour)

	marked, failed := job.RunOnce(context.Background())

	assert.Zero(t, marked)
	assert.Zero(t, failed)
	assert.Empty(t, m.marked)
}

func TestStartStopsWithContext(t *testing.T) {
	m := &fakeMarker{candidates: []models.Reservation{reservation(7, 1)}}
	job := NewNoShowJob(m, 10*time.Millisecond, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	job.Start(ctx)
	assert.Eventually(t, func() bool { return len(m.markedSnapshot()) > 0 }, time.Second, 5*time.Millisecond)
	cancel()
}

func TestRunOnceAgainstReservationService(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	segments := memory.NewSegments(memory.NewTrips())
	require.NoError(t, segments.CreateBatch(ctx, []models.TripSegment{
		{TripID: 1, DepartureTime: now.Add(-8 * time.Hour)},
		{TripID: 2, DepartureTime: now.Add(-time.Hour)},
	}))
	repo := memory.NewReservations(segments)
	departed := repo.Add(models.Reservation{CompanyID: 1, TripSegmentID: 1})
	boarded := repo.Add(models.Reservation{CompanyID: 1, TripSegmentID: 1})
	checkIn := now.Add(-9 * time.Hour)
	boarded.CheckInAt = &checkIn
	repo.Rows[boarded.ID] = boarded
	repo.Add(models.Reservation{CompanyID: 1, TripSegmentID: 2})
	audit := &memory.AuditLogs{}

	job := NewNoShowJob(services.NewReservationService(repo, audit, nil), time.Hour, 5*time.Hour)
	job.now = func() time.Time { return now }

	marked, failed := job.RunOnce(ctx)

	assert.Equal(t, 1, marked)
	assert.Zero(t, failed)
	assert.True(t, repo.Rows[departed.ID].IsNoShow)
	require.Len(t, audit.Entries, 1)
	assert.Equal(t, "no_show", audit.Entries[0].Action)

	marked, _ = job.RunOnce(ctx)
	assert.Zero(t, marked)
}

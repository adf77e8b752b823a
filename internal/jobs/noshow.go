package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"transroute/internal/models"
	"transroute/internal/services"
)

// NoShowMarker is the slice of the reservation service the job needs.
type NoShowMarker interface {
	NoShowCandidates(ctx context.Context, departedBefore time.Time) ([]models.Reservation, error)
	MarkNoShow(ctx context.Context, actor services.Actor, id uint) (*models.Reservation, error)
}

// NoShowJob periodically flags reservations whose passengers never checked
// in once their segment departed more than Grace ago.
type NoShowJob struct {
	marker   NoShowMarker
	interval time.Duration
	grace    time.Duration
	now      func() time.Time
}

func NewNoShowJob(marker NoShowMarker, interval, grace time.Duration) *NoShowJob {
	return &NoShowJob{marker: marker, interval: interval, grace: grace, now: time.Now}
}

// Start runs the job on every tick until ctx is cancelled.
func (j *NoShowJob) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logrus.Info("no-show job stopped")
				return
			case <-ticker.C:
				j.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce processes every candidate independently and reports how many
// were marked and how many failed.
func (j *NoShowJob) RunOnce(ctx context.Context) (marked, failed int) {
	cutoff := j.now().Add(-j.grace)
	candidates, err := j.marker.NoShowCandidates(ctx, cutoff)
	if err != nil {
		logrus.WithError(err).Error("no-show job: candidate query failed, skipping run")
		return 0, 0
	}

	for _, res := range candidates {
		actor := services.Actor{CompanyID: res.CompanyID}
		if _, err := j.marker.MarkNoShow(ctx, actor, res.ID); err != nil {
			failed++
			logrus.WithError(err).WithField("reservation_id", res.ID).Warn("no-show job: could not mark reservation")
			continue
		}
		marked++
	}

	if len(candidates) > 0 {
		logrus.WithFields(logrus.Fields{
			"candidates": len(candidates),
			"marked":     marked,
			"failed":     failed,
		}).Info("no-show job finished")
	}
	return marked, failed
}

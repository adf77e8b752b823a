package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bluele/gcache"
	"github.com/sirupsen/logrus"

	"transroute/internal/location"
	"transroute/internal/models"
	"transroute/internal/repositories"
)

const (
	locationCacheSize = 512
	locationCacheTTL  = time.Minute
)

// SearchFilter selects bookable segments. Stop ids take precedence over
// the legacy location strings of the same side.
type SearchFilter struct {
	CompanyID         uint
	OriginStopID      *uint
	DestinationStopID *uint
	Origin            string
	Destination       string
	DateFrom          time.Time
	DateTo            time.Time
	MinSeats          int
}

func (f SearchFilter) hasOrigin() bool {
	return f.OriginStopID != nil || strings.TrimSpace(f.Origin) != ""
}

func (f SearchFilter) hasDestination() bool {
	return f.DestinationStopID != nil || strings.TrimSpace(f.Destination) != ""
}

type SearchService struct {
	segments repositories.SegmentRepository
	cache    gcache.Cache
	now      func() time.Time
}

func NewSearchService(segments repositories.SegmentRepository) *SearchService {
	return &SearchService{
		segments: segments,
		cache:    gcache.New(locationCacheSize).LRU().Expiration(locationCacheTTL).Build(),
		now:      time.Now,
	}
}

// Search returns published segments in the date window with more than
// MinSeats seats. Only full-route segments are returned unless an origin or
// destination is given.
func (s *SearchService) Search(ctx context.Context, f SearchFilter) ([]models.TripSegment, error) {
	if f.DateFrom.IsZero() || f.DateTo.IsZero() {
		return nil, invalid("date_from", "date_from and date_to are required")
	}
	if f.DateTo.Before(f.DateFrom) {
		return nil, invalid("date_to", "must not be before date_from")
	}
	if f.MinSeats < 0 {
		return nil, invalid("min_seats", "must not be negative")
	}

	q := repositories.SegmentQuery{
		CompanyID:         f.CompanyID,
		OriginStopID:      f.OriginStopID,
		DestinationStopID: f.DestinationStopID,
		MainTripOnly:      !f.hasOrigin() && !f.hasDestination(),
		DateFrom:          f.DateFrom,
		DateTo:            f.DateTo,
		MinSeats:          f.MinSeats,
	}
	segs, err := s.segments.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	origin, dest := "", ""
	if f.OriginStopID == nil {
		origin = strings.TrimSpace(f.Origin)
	}
	if f.DestinationStopID == nil {
		dest = strings.TrimSpace(f.Destination)
	}
	if origin == "" && dest == "" {
		return segs, nil
	}
	return FilterByLocation(segs, origin, dest), nil
}

// FilterByLocation keeps segments whose legacy origin/destination strings
// equal the given ones after normalization. Empty arguments match anything.
func FilterByLocation(segs []models.TripSegment, origin, destination string) []models.TripSegment {
	wantOrigin := location.Normalize(origin)
	wantDest := location.Normalize(destination)

	out := make([]models.TripSegment, 0, len(segs))
	for _, seg := range segs {
		if wantOrigin != "" && location.Normalize(seg.Origin) != wantOrigin {
			continue
		}
		if wantDest != "" && location.Normalize(seg.Destination) != wantDest {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// Origins lists the distinct origins of upcoming published segments.
func (s *SearchService) Origins(ctx context.Context, companyID uint) ([]string, error) {
	return s.distinct(ctx, companyID, "origin")
}

// Destinations lists the distinct destinations of upcoming published segments.
func (s *SearchService) Destinations(ctx context.Context, companyID uint) ([]string, error) {
	return s.distinct(ctx, companyID, "destination")
}

func (s *SearchService) distinct(ctx context.Context, companyID uint, column string) ([]string, error) {
	key := cacheKey(column, companyID)
	if v, err := s.cache.Get(key); err == nil {
		return v.([]string), nil
	}

	values, err := s.segments.DistinctLocations(ctx, companyID, column, s.now())
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}
	if err := s.cache.Set(key, values); err != nil {
		logrus.WithError(err).Warn("SearchService: could not cache locations")
	}
	return values, nil
}

// Publish drops cached location lists when a company's trips change.
func (s *SearchService) Publish(companyID uint, event string, _ interface{}) {
	if !strings.HasPrefix(event, "trip.") {
		return
	}
	s.cache.Remove(cacheKey("origin", companyID))
	s.cache.Remove(cacheKey("destination", companyID))
}

func cacheKey(column string, companyID uint) string {
	return fmt.Sprintf("%s:%d", column, companyID)
}

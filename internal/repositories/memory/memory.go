// Package memory implements the repository interfaces on plain maps. It
// backs the service and handler tests; stored procedures are simulated
// with their observable effects only.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"transroute/internal/models"
	"transroute/internal/repositories"
)

func missing(op string, id uint) error {
	return fmt.Errorf("%s %d: %w", op, id, repositories.ErrNotFound)
}

type Stops struct {
	mu     sync.Mutex
	nextID uint
	Rows   map[uint]*models.Stop
	// RaceOnCreate makes the next Create lose to a concurrent insert of
	// the same stop.
	RaceOnCreate bool
	Creates      int
}

func NewStops() *Stops {
	return &Stops{Rows: map[uint]*models.Stop{}}
}

func (m *Stops) insert(s *models.Stop) {
	m.nextID++
	s.ID = m.nextID
	cp := *s
	m.Rows[s.ID] = &cp
}

func (m *Stops) Create(_ context.Context, s *models.Stop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Creates++
	if m.RaceOnCreate {
		m.RaceOnCreate = false
		winner := *s
		m.insert(&winner)
		return fmt.Errorf("create stop: %w", repositories.ErrConflict)
	}
	for _, r := range m.Rows {
		if r.CompanyID == s.CompanyID && r.City == s.City && r.State == s.State && r.Name == s.Name {
			return fmt.Errorf("create stop: %w", repositories.ErrConflict)
		}
	}
	m.insert(s)
	return nil
}

func (m *Stops) GetByID(_ context.Context, id uint) (*models.Stop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Rows[id]
	if !ok {
		return nil, missing("stop", id)
	}
	cp := *r
	return &cp, nil
}

func (m *Stops) FindByIdentity(_ context.Context, companyID uint, city, state, name string) (*models.Stop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.Rows {
		if r.CompanyID == companyID && r.City == city && r.State == state && r.Name == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("find stop: %w", repositories.ErrNotFound)
}

func (m *Stops) Search(_ context.Context, companyID uint, query string, limit int) ([]models.Stop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(query)
	var out []models.Stop
	for _, r := range m.Rows {
		if r.CompanyID != companyID || !r.IsActive {
			continue
		}
		for _, f := range []string{r.Name, r.City, r.State, r.FullLocation} {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, *r)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// List includes inactive stops, like the SQL listing.
func (m *Stops) List(_ context.Context, companyID uint) ([]models.Stop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Stop
	for _, r := range m.Rows {
		if r.CompanyID == companyID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *Stops) Update(_ context.Context, s *models.Stop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.Rows[s.ID] = &cp
	return nil
}

func (m *Stops) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Rows[id]; !ok {
		return missing("stop", id)
	}
	delete(m.Rows, id)
	return nil
}

type Routes struct {
	mu     sync.Mutex
	nextID uint
	Rows   map[uint]models.Route
}

func NewRoutes() *Routes {
	return &Routes{Rows: map[uint]models.Route{}}
}

func (m *Routes) Create(_ context.Context, r *models.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	m.Rows[r.ID] = *r
	return nil
}

func (m *Routes) GetByID(_ context.Context, id uint) (*models.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Rows[id]
	if !ok {
		return nil, missing("route", id)
	}
	return &r, nil
}

func (m *Routes) List(_ context.Context, companyID uint) ([]models.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Route
	for _, r := range m.Rows {
		if r.CompanyID == companyID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Routes) Update(_ context.Context, r *models.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rows[r.ID] = *r
	return nil
}

func (m *Routes) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Rows[id]; !ok {
		return missing("route", id)
	}
	delete(m.Rows, id)
	return nil
}

type Templates struct {
	mu     sync.Mutex
	nextID uint
	Rows   map[uint]models.RouteTemplate
}

func NewTemplates() *Templates {
	return &Templates{Rows: map[uint]models.RouteTemplate{}}
}

func (m *Templates) Create(_ context.Context, t *models.RouteTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = m.nextID
	m.Rows[t.ID] = *t
	return nil
}

func (m *Templates) GetByID(_ context.Context, id uint) (*models.RouteTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Rows[id]
	if !ok {
		return nil, missing("route template", id)
	}
	return &t, nil
}

func (m *Templates) ListByRoute(_ context.Context, routeID uint) ([]models.RouteTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RouteTemplate
	for _, t := range m.Rows {
		if t.RouteID == routeID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Templates) Update(_ context.Context, t *models.RouteTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rows[t.ID] = *t
	return nil
}

func (m *Templates) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Rows[id]; !ok {
		return missing("route template", id)
	}
	delete(m.Rows, id)
	return nil
}

// Trips soft-deletes like gorm does.
type Trips struct {
	mu     sync.Mutex
	nextID uint
	Rows   map[uint]models.Trip
}

func NewTrips() *Trips {
	return &Trips{Rows: map[uint]models.Trip{}}
}

func (m *Trips) Create(_ context.Context, t *models.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = m.nextID
	// Postgres timestamps keep microseconds.
	t.DepartureDatetime = t.DepartureDatetime.Truncate(time.Microsecond)
	m.Rows[t.ID] = *t
	return nil
}

func (m *Trips) GetByID(_ context.Context, id uint) (*models.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live(id)
}

func (m *Trips) live(id uint) (*models.Trip, error) {
	t, ok := m.Rows[id]
	if !ok || t.DeletedAt.Valid {
		return nil, missing("trip", id)
	}
	return &t, nil
}

func (m *Trips) List(_ context.Context, f repositories.TripFilter) ([]models.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Trip
	for _, t := range m.Rows {
		switch {
		case t.DeletedAt.Valid:
		case f.CompanyID != 0 && t.CompanyID != f.CompanyID:
		case f.RouteID != 0 && t.RouteID != f.RouteID:
		case f.Visibility != "" && t.Visibility != f.Visibility:
		case !f.DateFrom.IsZero() && t.DepartureDatetime.Before(f.DateFrom):
		case !f.DateTo.IsZero() && t.DepartureDatetime.After(f.DateTo):
		default:
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartureDatetime.Before(out[j].DepartureDatetime) })
	return out, nil
}

func (m *Trips) UpdateVisibility(_ context.Context, id uint, visibility string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.live(id)
	if err != nil {
		return err
	}
	t.Visibility = visibility
	m.Rows[id] = *t
	return nil
}

func (m *Trips) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.live(id)
	if err != nil {
		return err
	}
	t.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	m.Rows[id] = *t
	return nil
}

func (m *Trips) snapshot(id uint) (models.Trip, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Rows[id]
	return t, ok
}

// Segments answers searches by joining against Trips.
type Segments struct {
	mu        sync.Mutex
	trips     *Trips
	nextID    uint
	Rows      []models.TripSegment
	FailBatch error
	Queries   []repositories.SegmentQuery
	Distincts int
}

func NewSegments(trips *Trips) *Segments {
	return &Segments{trips: trips}
}

func (m *Segments) CreateBatch(_ context.Context, segs []models.TripSegment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailBatch != nil {
		return m.FailBatch
	}
	for i := range segs {
		m.nextID++
		segs[i].ID = m.nextID
		m.Rows = append(m.Rows, segs[i])
	}
	return nil
}

func (m *Segments) ListByTrip(_ context.Context, tripID uint) ([]models.TripSegment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TripSegment
	for _, s := range m.Rows {
		if s.TripID == tripID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Segments) Search(_ context.Context, q repositories.SegmentQuery) ([]models.TripSegment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, q)
	var out []models.TripSegment
	for _, s := range m.Rows {
		trip, ok := m.trips.snapshot(s.TripID)
		switch {
		case !ok || trip.DeletedAt.Valid || trip.Visibility != models.VisibilityPublished:
		case q.CompanyID != 0 && trip.CompanyID != q.CompanyID:
		case s.DepartureTime.Before(q.DateFrom) || s.DepartureTime.After(q.DateTo):
		case s.AvailableSeats <= q.MinSeats:
		case q.OriginStopID != nil && (s.OriginStopID == nil || *s.OriginStopID != *q.OriginStopID):
		case q.DestinationStopID != nil && (s.DestinationStopID == nil || *s.DestinationStopID != *q.DestinationStopID):
		case q.MainTripOnly && !s.IsMainTrip:
		default:
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Segments) DistinctLocations(_ context.Context, companyID uint, column string, since time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Distincts++
	seen := map[string]bool{}
	var out []string
	for _, s := range m.Rows {
		trip, ok := m.trips.snapshot(s.TripID)
		if !ok || trip.DeletedAt.Valid || trip.CompanyID != companyID ||
			trip.Visibility != models.VisibilityPublished || s.DepartureTime.Before(since) {
			continue
		}
		v := s.Origin
		if column == "destination" {
			v = s.Destination
		}
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Segments) tripOf(id uint) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Rows {
		if s.ID == id {
			return s.TripID
		}
	}
	return 0
}

func (m *Segments) departure(id uint) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Rows {
		if s.ID == id {
			return s.DepartureTime, true
		}
	}
	return time.Time{}, false
}

// RPCCall records one stored-procedure invocation.
type RPCCall struct {
	Fn   string
	Args []interface{}
}

// Reservations records procedure calls and applies their visible effect.
// RPCErr makes every procedure fail.
type Reservations struct {
	mu       sync.Mutex
	segments *Segments
	nextID   uint
	Rows     map[uint]*models.Reservation
	Calls    []RPCCall
	RPCErr   error
	Balance  float64
}

// NewReservations uses segments, when given, to find no-show candidates
// by departure time.
func NewReservations(segments *Segments) *Reservations {
	return &Reservations{segments: segments, Rows: map[uint]*models.Reservation{}}
}

// Add stores a reservation directly, bypassing the procedures.
func (m *Reservations) Add(r models.Reservation) *models.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(r)
}

func (m *Reservations) add(r models.Reservation) *models.Reservation {
	m.nextID++
	r.ID = m.nextID
	if r.Status == "" {
		r.Status = models.ReservationConfirmed
	}
	m.Rows[r.ID] = &r
	return &r
}

func (m *Reservations) rpc(fn string, args ...interface{}) error {
	m.Calls = append(m.Calls, RPCCall{Fn: fn, Args: args})
	if m.RPCErr != nil {
		return fmt.Errorf("%w: %s: %v", repositories.ErrRPC, fn, m.RPCErr)
	}
	return nil
}

func (m *Reservations) row(fn string, id uint) (*models.Reservation, error) {
	r, ok := m.Rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s: reservation %d not found", repositories.ErrRPC, fn, id)
	}
	return r, nil
}

func (m *Reservations) CreateWithTransaction(_ context.Context, p repositories.CreateReservationParams) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.rpc("create_reservation_with_transaction", p); err != nil {
		return 0, err
	}
	r := m.add(models.Reservation{
		CompanyID:     p.CompanyID,
		TripSegmentID: p.TripSegmentID,
		ClientID:      p.ClientID,
		Seats:         p.Seats,
		TotalAmount:   p.TotalAmount,
		AmountPaid:    p.AmountPaid,
		Notes:         p.Notes,
		CreatedBy:     p.CreatedBy,
	})
	return r.ID, nil
}

func (m *Reservations) CancelWithRefund(_ context.Context, id, userID uint, refund float64, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.rpc("cancel_reservation_with_refund", id, userID, refund, reason); err != nil {
		return err
	}
	r, err := m.row("cancel_reservation_with_refund", id)
	if err != nil {
		return err
	}
	r.Status = models.ReservationCancelled
	r.AmountPaid -= refund
	return nil
}

func (m *Reservations) AddPayment(_ context.Context, id, userID uint, amount float64, method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.rpc("add_payment_to_reservation", id, userID, amount, method); err != nil {
		return err
	}
	r, err := m.row("add_payment_to_reservation", id)
	if err != nil {
		return err
	}
	r.AmountPaid += amount
	return nil
}

func (m *Reservations) ModifyTrip(_ context.Context, id, newSegmentID, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.rpc("modify_reservation_trip", id, newSegmentID, userID); err != nil {
		return err
	}
	r, err := m.row("modify_reservation_trip", id)
	if err != nil {
		return err
	}
	r.TripSegmentID = newSegmentID
	return nil
}

func (m *Reservations) CashBalance(_ context.Context, userID, companyID uint) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.rpc("get_user_cash_balance", userID, companyID); err != nil {
		return 0, err
	}
	return m.Balance, nil
}

func (m *Reservations) GetByID(_ context.Context, id uint) (*models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Rows[id]
	if !ok {
		return nil, missing("reservation", id)
	}
	cp := *r
	return &cp, nil
}

func (m *Reservations) List(_ context.Context, f repositories.ReservationFilter) ([]models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Reservation
	for _, r := range m.Rows {
		switch {
		case f.CompanyID != 0 && r.CompanyID != f.CompanyID:
		case f.ClientID != 0 && r.ClientID != f.ClientID:
		case f.Status != "" && r.Status != f.Status:
		case f.TripID != 0 && (m.segments == nil || m.segments.tripOf(r.TripSegmentID) != f.TripID):
		default:
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update understands the columns the reservation service writes.
func (m *Reservations) Update(_ context.Context, id uint, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Rows[id]
	if !ok {
		return missing("reservation", id)
	}
	for k, v := range updates {
		switch k {
		case "check_in_at":
			t := v.(time.Time)
			r.CheckInAt = &t
		case "checked_in_by":
			u := v.(uint)
			r.CheckedInBy = &u
		case "is_no_show":
			r.IsNoShow = v.(bool)
		case "transferred_to_company_id":
			c := v.(uint)
			r.TransferredToCompanyID = &c
		case "notes":
			r.Notes = v.(string)
		default:
			return fmt.Errorf("update reservation: unknown column %q", k)
		}
	}
	return nil
}

func (m *Reservations) NoShowCandidates(_ context.Context, departedBefore time.Time) ([]models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Reservation
	for _, r := range m.Rows {
		if r.CheckInAt != nil || r.IsNoShow || r.Status == models.ReservationCancelled {
			continue
		}
		if m.segments != nil {
			dep, ok := m.segments.departure(r.TripSegmentID)
			if !ok || !dep.Before(departedBefore) {
				continue
			}
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type AuditLogs struct {
	mu      sync.Mutex
	Entries []models.AuditLog
	Err     error
}

func (m *AuditLogs) Create(_ context.Context, e *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	e.ID = uint(len(m.Entries) + 1)
	m.Entries = append(m.Entries, *e)
	return nil
}

// Clients enforces the (company, phone) unique index.
type Clients struct {
	mu     sync.Mutex
	nextID uint
	Rows   map[uint]*models.Client
}

func NewClients() *Clients {
	return &Clients{Rows: map[uint]*models.Client{}}
}

func (m *Clients) Create(_ context.Context, c *models.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.Rows {
		if r.CompanyID == c.CompanyID && r.Phone == c.Phone {
			return fmt.Errorf("create client: %w", repositories.ErrConflict)
		}
	}
	m.nextID++
	c.ID = m.nextID
	cp := *c
	m.Rows[c.ID] = &cp
	return nil
}

func (m *Clients) GetByID(_ context.Context, id uint) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Rows[id]
	if !ok {
		return nil, missing("client", id)
	}
	cp := *r
	return &cp, nil
}

func (m *Clients) FindByPhone(_ context.Context, companyID uint, phone string) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.Rows {
		if r.CompanyID == companyID && r.Phone == phone {
			cp := *r
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("find client: %w", repositories.ErrNotFound)
}

func (m *Clients) List(_ context.Context, companyID uint, query string) ([]models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(query))
	var out []models.Client
	for _, r := range m.Rows {
		if r.CompanyID != companyID {
			continue
		}
		if q == "" || strings.Contains(strings.ToLower(r.Name), q) || strings.Contains(r.Phone, q) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Clients) Update(_ context.Context, c *models.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.Rows[c.ID] = &cp
	return nil
}

func (m *Clients) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Rows[id]; !ok {
		return missing("client", id)
	}
	delete(m.Rows, id)
	return nil
}

var (
	_ repositories.StopRepository        = (*Stops)(nil)
	_ repositories.RouteRepository       = (*Routes)(nil)
	_ repositories.TemplateRepository    = (*Templates)(nil)
	_ repositories.TripRepository        = (*Trips)(nil)
	_ repositories.SegmentRepository     = (*Segments)(nil)
	_ repositories.ReservationRepository = (*Reservations)(nil)
	_ repositories.AuditLogRepository    = (*AuditLogs)(nil)
	_ repositories.ClientRepository      = (*Clients)(nil)
)

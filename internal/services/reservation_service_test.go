package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transroute/internal/models"
	"transroute/internal/repositories"
	"transroute/internal/repositories/memory"
)

type reservationFixture struct {
	repo      *memory.Reservations
	audit     *memory.AuditLogs
	published *recordingPublisher
	svc       *ReservationService
	actor     Actor
}

func newReservationFixture() *reservationFixture {
	f := &reservationFixture{
		repo:      memory.NewReservations(nil),
		audit:     &memory.AuditLogs{},
		published: &recordingPublisher{},
		actor:     Actor{UserID: 7, CompanyID: 1},
	}
	f.svc = NewReservationService(f.repo, f.audit, f.published)
	f.svc.now = func() time.Time { return departure }
	return f
}

func TestReservationCreateDelegatesToProcedure(t *testing.T) {
	f := newReservationFixture()

	res, err := f.svc.Create(context.Background(), f.actor, CreateReservationInput{
		TripSegmentID: 3,
		ClientID:      4,
		Seats:         2,
		TotalAmount:   800,
		AmountPaid:    300,
	})

	require.NoError(t, err)
	assert.Equal(t, uint(1), res.CompanyID)
	require.Len(t, f.repo.Calls, 1)
	assert.Equal(t, "create_reservation_with_transaction", f.repo.Calls[0].Fn)
	params := f.repo.Calls[0].Args[0].(repositories.CreateReservationParams)
	assert.Equal(t, "cash", params.PaymentMethod)
	assert.Equal(t, uint(7), params.CreatedBy)
	assert.Equal(t, []string{EventReservationCreated}, f.published.events)
}

func TestReservationCreateValidation(t *testing.T) {
	f := newReservationFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.actor, CreateReservationInput{TripSegmentID: 1, ClientID: 1, Seats: 0})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.Create(ctx, f.actor, CreateReservationInput{TripSegmentID: 1, ClientID: 1, Seats: 1, TotalAmount: 10, AmountPaid: 20})
	assert.ErrorAs(t, err, &verr)
	assert.Empty(t, f.repo.Calls)
}

func TestReservationProcedureFailureSurfaces(t *testing.T) {
	f := newReservationFixture()
	f.repo.RPCErr = errors.New("not enough seats")

	_, err := f.svc.Create(context.Background(), f.actor, CreateReservationInput{TripSegmentID: 1, ClientID: 1, Seats: 50})

	assert.True(t, errors.Is(err, repositories.ErrRPC))
	assert.Contains(t, err.Error(), "not enough seats")
	assert.Empty(t, f.published.events)
}

func TestReservationCancel(t *testing.T) {
	f := newReservationFixture()
	ctx := context.Background()
	res := f.repo.Add(models.Reservation{CompanyID: 1, Seats: 1, TotalAmount: 400, AmountPaid: 200})

	_, err := f.svc.Cancel(ctx, f.actor, res.ID, CancelInput{RefundAmount: 250})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	cancelled, err := f.svc.Cancel(ctx, f.actor, res.ID, CancelInput{RefundAmount: 200, Reason: "sick"})
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, cancelled.Status)
	assert.Equal(t, []interface{}{res.ID, uint(7), 200.0, "sick"}, f.repo.Calls[0].Args)

	_, err = f.svc.Cancel(ctx, f.actor, res.ID, CancelInput{})
	assert.ErrorAs(t, err, &verr)
}

func TestReservationIsTenantScoped(t *testing.T) {
	f := newReservationFixture()
	res := f.repo.Add(models.Reservation{CompanyID: 2})

	_, err := f.svc.AddPayment(context.Background(), f.actor, res.ID, PaymentInput{Amount: 10, Method: "cash"})

	assert.True(t, errors.Is(err, repositories.ErrNotFound))
	assert.Empty(t, f.repo.Calls)
}

func TestReservationPaymentAndModify(t *testing.T) {
	f := newReservationFixture()
	ctx := context.Background()
	res := f.repo.Add(models.Reservation{CompanyID: 1, TripSegmentID: 5, TotalAmount: 400, AmountPaid: 100})

	paid, err := f.svc.AddPayment(ctx, f.actor, res.ID, PaymentInput{Amount: 150, Method: "card"})
	require.NoError(t, err)
	assert.Equal(t, 250.0, paid.AmountPaid)

	_, err = f.svc.ModifyTrip(ctx, f.actor, res.ID, ModifyTripInput{NewTripSegmentID: 5})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	moved, err := f.svc.ModifyTrip(ctx, f.actor, res.ID, ModifyTripInput{NewTripSegmentID: 6})
	require.NoError(t, err)
	assert.Equal(t, uint(6), moved.TripSegmentID)
	assert.Equal(t, "modify_reservation_trip", f.repo.Calls[1].Fn)
}

func TestReservationCheckInAndNoShow(t *testing.T) {
	f := newReservationFixture()
	ctx := context.Background()
	res := f.repo.Add(models.Reservation{CompanyID: 1})

	checked, err := f.svc.CheckIn(ctx, f.actor, res.ID)
	require.NoError(t, err)
	require.NotNil(t, checked.CheckInAt)
	assert.Equal(t, departure, *checked.CheckInAt)
	assert.Equal(t, uint(7), *checked.CheckedInBy)

	_, err = f.svc.CheckIn(ctx, f.actor, res.ID)
	assert.Error(t, err)
	_, err = f.svc.MarkNoShow(ctx, f.actor, res.ID)
	assert.Error(t, err)

	other := f.repo.Add(models.Reservation{CompanyID: 1})
	marked, err := f.svc.MarkNoShow(ctx, f.actor, other.ID)
	require.NoError(t, err)
	assert.True(t, marked.IsNoShow)

	again, err := f.svc.MarkNoShow(ctx, f.actor, other.ID)
	require.NoError(t, err)
	assert.True(t, again.IsNoShow)

	require.Len(t, f.audit.Entries, 2)
	assert.Equal(t, "check_in", f.audit.Entries[0].Action)
	assert.Equal(t, "no_show", f.audit.Entries[1].Action)
	assert.Equal(t, "reservation", f.audit.Entries[1].EntityType)
}

func TestReservationTransfer(t *testing.T) {
	f := newReservationFixture()
	ctx := context.Background()
	res := f.repo.Add(models.Reservation{CompanyID: 1})

	_, err := f.svc.Transfer(ctx, f.actor, res.ID, TransferInput{TargetCompanyID: 1})
	assert.Error(t, err)

	f.audit.Err = errors.New("audit table locked")
	moved, err := f.svc.Transfer(ctx, f.actor, res.ID, TransferInput{TargetCompanyID: 2, Notes: "partner bus"})
	require.NoError(t, err)
	require.NotNil(t, moved.TransferredToCompanyID)
	assert.Equal(t, uint(2), *moved.TransferredToCompanyID)
	assert.Equal(t, "partner bus", moved.Notes)
	assert.Empty(t, f.audit.Entries)
}

func TestCashBalance(t *testing.T) {
	f := newReservationFixture()
	f.repo.Balance = 1250.5

	balance, err := f.svc.CashBalance(context.Background(), f.actor)

	require.NoError(t, err)
	assert.Equal(t, 1250.5, balance)
	assert.Equal(t, []interface{}{uint(7), uint(1)}, f.repo.Calls[0].Args)
}

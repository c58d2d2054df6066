package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-floor/models"
)

func TestSessionWalkIn(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "A1", 4)

	session := f.walkIn(t, table.ID, 3)
	assert.Equal(t, models.SessionActive, session.Status)
	assert.Equal(t, 3, session.PartySize)
	assert.Nil(t, session.ReservationID)
	assert.Equal(t, f.staff.ID, session.OpenedByID)
	assert.Equal(t, models.TableOccupied, f.reloadTable(t, table.ID).Status)

	_, err := f.sessions.Start(f.ctx, StartSessionInput{TableID: table.ID, PartySize: 1}, f.staff)
	assert.True(t, IsKind(err, KindInvalidState), "%v", err)
}

func TestSessionCapacityBoundary(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "A1", 4)

	_, err := f.sessions.Start(f.ctx, StartSessionInput{TableID: table.ID, PartySize: 5}, f.staff)
	assert.True(t, IsKind(err, KindCapacity))
	assert.Equal(t, models.TableAvailable, f.reloadTable(t, table.ID).Status)

	session, err := f.sessions.Start(f.ctx, StartSessionInput{TableID: table.ID, PartySize: 4}, f.staff)
	require.NoError(t, err)
	assert.Equal(t, 4, session.PartySize)
}

func TestSessionStartValidation(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "A1", 4)

	_, err := f.sessions.Start(f.ctx, StartSessionInput{TableID: table.ID}, f.staff)
	assert.True(t, IsKind(err, KindValidation))

	_, err = f.sessions.Start(f.ctx, StartSessionInput{PartySize: 2}, f.staff)
	assert.True(t, IsKind(err, KindValidation))

	_, err = f.sessions.Start(f.ctx, StartSessionInput{TableID: table.ID, PartySize: 2}, Staff{})
	assert.True(t, IsKind(err, KindValidation))

	_, err = f.sessions.Start(f.ctx, StartSessionInput{TableID: 999, PartySize: 2}, f.staff)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestSessionOutOfServiceTable(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "A1", 4)
	_, err := f.tables.UpdateStatus(f.ctx, table.ID, models.TableOutOfService)
	require.NoError(t, err)

	_, err = f.sessions.Start(f.ctx, StartSessionInput{TableID: table.ID, PartySize: 2}, f.staff)
	assert.True(t, IsKind(err, KindInvalidState))
}

func TestSessionSeatsConfirmedReservation(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "A1", 4)
	r := f.reservation(t, 3, time.Now().Add(time.Hour))
	_, err := f.reservations.Confirm(f.ctx, r.ID, f.staff, nil)
	require.NoError(t, err)
	require.Equal(t, models.TableReserved, f.reloadTable(t, table.ID).Status)

	session, err := f.sessions.Start(f.ctx, StartSessionInput{TableID: table.ID, ReservationID: &r.ID}, f.staff)
	require.NoError(t, err)
	assert.Equal(t, 3, session.PartySize)
	assert.Equal(t, "Budi", session.PartyName)
	require.NotNil(t, session.ReservationID)
	assert.Equal(t, r.ID, *session.ReservationID)
	assert.Equal(t, models.TableOccupied, f.reloadTable(t, table.ID).Status)

	seated, err := f.reservations.Get(f.ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationSeated, seated.Status)

	// a seated reservation cannot be seated again
	_, err = f.sessions.Start(f.ctx, StartSessionInput{TableID: table.ID, ReservationID: &r.ID}, f.staff)
	assert.True(t, IsKind(err, KindInvalidState))
}

func TestSessionReservationRules(t *testing.T) {
	f := newFixture(t)
	assigned := f.table(t, "A1", 4)
	other := f.table(t, "A2", 4)

	pending := f.reservation(t, 2, time.Now().Add(time.Hour))
	_, err := f.sessions.Start(f.ctx, StartSessionInput{TableID: assigned.ID, ReservationID: &pending.ID}, f.staff)
	assert.True(t, IsKind(err, KindInvalidState), "pending reservation cannot be seated")

	_, err = f.reservations.Confirm(f.ctx, pending.ID, f.staff, &assigned.ID)
	require.NoError(t, err)

	_, err = f.sessions.Start(f.ctx, StartSessionInput{TableID: other.ID, ReservationID: &pending.ID}, f.staff)
	assert.True(t, IsKind(err, KindConflict), "seating at a different table")
	assert.Equal(t, models.TableAvailable, f.reloadTable(t, other.ID).Status)

	// walk-ins cannot take a RESERVED table
	_, err = f.sessions.Start(f.ctx, StartSessionInput{TableID: assigned.ID, PartySize: 2}, f.staff)
	assert.True(t, IsKind(err, KindInvalidState))
}

func TestSessionClosePreconditions(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "A1", 2)
	session := f.walkIn(t, table.ID, 2)

	_, err := f.sessions.Close(f.ctx, session.ID, f.staff)
	assert.True(t, IsKind(err, KindPrecondition), "active session")

	bill, err := f.billing.GenerateOrFetch(f.ctx, session.ID, f.staff)
	require.NoError(t, err)
	_, err = f.sessions.Close(f.ctx, session.ID, f.staff)
	assert.True(t, IsKind(err, KindPrecondition), "unpaid bill")

	_, err = f.billing.ConfirmPayment(f.ctx, bill.ID, PaymentDetails{Method: "cash"}, f.staff)
	require.NoError(t, err)

	closed, err := f.sessions.Get(f.ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionClosed, closed.Status)
	assert.NotNil(t, closed.EndTime)

	_, err = f.sessions.Close(f.ctx, session.ID, f.staff)
	assert.True(t, IsKind(err, KindPrecondition))

	// the table can be seated again once the session closed
	again := f.walkIn(t, table.ID, 1)
	assert.NotEqual(t, session.ID, again.ID)
}

func TestSessionList(t *testing.T) {
	f := newFixture(t)
	a := f.table(t, "A1", 2)
	b := f.table(t, "A2", 2)
	first := f.walkIn(t, a.ID, 2)
	f.walkIn(t, b.ID, 2)

	_, err := f.billing.GenerateOrFetch(f.ctx, first.ID, f.staff)
	require.NoError(t, err)

	all, err := f.sessions.List(f.ctx, SessionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	billed, err := f.sessions.List(f.ctx, SessionFilter{Statuses: []models.SessionStatus{models.SessionBilled}})
	require.NoError(t, err)
	require.Len(t, billed, 1)
	assert.Equal(t, first.ID, billed[0].ID)

	onB, err := f.sessions.List(f.ctx, SessionFilter{TableID: b.ID})
	require.NoError(t, err)
	require.Len(t, onB, 1)
	assert.Equal(t, b.ID, onB[0].TableID)
}

func TestSessionConcurrentSeatingHasOneWinner(t *testing.T) {
	f := newFixture(t)
	table := f.table(t, "A1", 4)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.sessions.Start(f.ctx, StartSessionInput{TableID: table.ID, PartySize: 2}, f.staff)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		assert.True(t, IsKind(err, KindInvalidState), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, winners)

	var open int64
	require.NoError(t, f.db.Model(&models.DiningSession{}).
		Where("table_id = ? AND status = ?", table.ID, models.SessionActive).Count(&open).Error)
	assert.EqualValues(t, 1, open)
	assert.Equal(t, models.TableOccupied, f.reloadTable(t, table.ID).Status)
}

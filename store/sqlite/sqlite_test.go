package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	st, err := sqlite.New(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func storedRequest(id leave.RequestID) *leave.Request {
	now := time.Date(2026, time.February, 2, 9, 0, 0, 0, time.UTC)
	return &leave.Request{
		ID:         id,
		EmployeeID: "e1",
		TeamID:     "eng",
		Type:       leave.TypeVacation,
		StartDate:  leave.NewDate(2026, time.March, 2),
		EndDate:    leave.NewDate(2026, time.March, 4),
		TotalDays:  decimal.NewFromInt(3),
		Reason:     "spring break",
		Status:     leave.StatusPending,
		Period:     leave.PeriodKey{Year: 2026, Half: 1},
		Category:   leave.CategoryStandard,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// =============================================================================
// LEDGER
// =============================================================================

func TestSQLiteLedger_ReserveReleaseRoundTrip(t *testing.T) {
	// GIVEN: A bucket with 6 allocated
	// WHEN: Reserving 3.5 and releasing 1
	// THEN: Used tracks exactly, with decimal precision intact

	st := newTestStore(t)
	ctx := context.Background()
	key := leave.LedgerKey{EmployeeID: "e1", Type: leave.TypeVacation, Year: 2026, Half: 1}

	require.NoError(t, st.Allocate(ctx, key, decimal.NewFromInt(6)))

	b, err := st.Reserve(ctx, key, decimal.NewFromFloat(3.5))
	require.NoError(t, err)
	assert.Equal(t, "3.5", b.Used.String())

	_, err = st.Reserve(ctx, key, decimal.NewFromInt(3))
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

	b, err = st.Release(ctx, key, decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Equal(t, "2.5", b.Used.String())
	assert.Equal(t, "3.5", b.Remaining().String())
}

func TestSQLiteLedger_MissingBucketsReadZero(t *testing.T) {
	st := newTestStore(t)

	b, err := st.BalanceForKey(context.Background(),
		leave.LedgerKey{EmployeeID: "nobody", Type: leave.TypeSick, Year: 2026})
	require.NoError(t, err)
	assert.True(t, b.Allocated.IsZero())
	assert.True(t, b.Used.IsZero())
}

func TestSQLiteLedger_WeekendQuotaSurvivesRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	key := leave.WeekendKey{EmployeeID: "e1", Year: 2026, Half: 1}

	require.NoError(t, st.ReserveWeekend(ctx, key, 2))
	require.NoError(t, st.ReserveWeekend(ctx, key, 2))
	assert.ErrorIs(t, st.ReserveWeekend(ctx, key, 2), leave.ErrWeekendQuotaExhausted)

	require.NoError(t, st.ReleaseWeekend(ctx, key))
	used, err := st.WeekendUsed(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, used)
}

// =============================================================================
// REQUEST STORE
// =============================================================================

func TestSQLiteRequests_CreateGetRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	want := storedRequest("req-1")
	require.NoError(t, st.Create(ctx, want))

	got, err := st.Get(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, want.EmployeeID, got.EmployeeID)
	assert.Equal(t, want.StartDate, got.StartDate)
	assert.Equal(t, want.EndDate, got.EndDate)
	assert.True(t, want.TotalDays.Equal(got.TotalDays))
	assert.Equal(t, leave.StatusPending, got.Status)
	assert.Equal(t, want.Period, got.Period)
	assert.Nil(t, got.ReviewedAt)

	_, err = st.Get(ctx, "nope")
	assert.ErrorIs(t, err, leave.ErrRequestNotFound)
}

func TestSQLiteRequests_TransitionIsConditional(t *testing.T) {
	// GIVEN: A pending request
	// WHEN: Approving it, then trying to cancel
	// THEN: The second transition loses and reports the approved status

	st := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.Create(ctx, storedRequest("req-1")))

	at := time.Date(2026, time.February, 3, 9, 0, 0, 0, time.UTC)
	got, err := st.Transition(ctx, "req-1", leave.StatusApproved, "mgr", "ok", at)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, got.Status)
	assert.Equal(t, leave.EmployeeID("mgr"), got.ReviewerID)
	assert.Equal(t, "ok", got.AdminNotes)
	require.NotNil(t, got.ReviewedAt)

	_, err = st.Transition(ctx, "req-1", leave.StatusCancelled, "", "", at)
	var itErr *leave.InvalidTransitionError
	require.ErrorAs(t, err, &itErr)
	assert.Equal(t, leave.StatusApproved, itErr.Current)
}

func TestSQLiteRequests_ListOverlapping(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Create(ctx, storedRequest("in-range")))

	later := storedRequest("later")
	later.StartDate = leave.NewDate(2026, time.April, 6)
	later.EndDate = leave.NewDate(2026, time.April, 8)
	require.NoError(t, st.Create(ctx, later))

	rng := leave.DateRange{Start: leave.NewDate(2026, time.March, 4), End: leave.NewDate(2026, time.March, 10)}
	got, err := st.ListOverlapping(ctx, "eng", rng,
		[]leave.RequestStatus{leave.StatusPending, leave.StatusApproved})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, leave.RequestID("in-range"), got[0].ID)
}

// =============================================================================
// DIRECTORY
// =============================================================================

func TestSQLiteDirectory_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.PutTeam(ctx, leave.Team{ID: "eng", Name: "Engineering",
		ManagerID: "mgr", Members: []leave.EmployeeID{"e1", "e2"}}))
	require.NoError(t, st.PutEmployee(ctx, leave.Employee{ID: "e1", Name: "Ada",
		Email: "ada@example.com", TeamID: "eng"}))

	emp, err := st.Employee(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", emp.Name)
	assert.Equal(t, leave.TeamID("eng"), emp.TeamID)

	team, err := st.TeamOf(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, leave.TeamID("eng"), team.ID)
	assert.Equal(t, 2, team.Size())

	_, err = st.Employee(ctx, "ghost")
	assert.ErrorIs(t, err, leave.ErrEmployeeNotFound)
	_, err = st.Team(ctx, "ghost-team")
	assert.ErrorIs(t, err, leave.ErrTeamNotFound)
}

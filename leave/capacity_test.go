package leave_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func fourPersonTeam() leave.Team {
	return leave.Team{
		ID:      "eng",
		Name:    "Engineering",
		Members: []leave.EmployeeID{"e1", "e2", "e3", "e4"},
	}
}

func overlappingReq(employee leave.EmployeeID, status leave.RequestStatus, start, end leave.Date) *leave.Request {
	return &leave.Request{
		ID:         leave.RequestID("req-" + string(employee)),
		EmployeeID: employee,
		Status:     status,
		StartDate:  start,
		EndDate:    end,
	}
}

// =============================================================================
// CAPACITY CHECK
// =============================================================================

func TestWouldExceedCapacity_UnderCeiling(t *testing.T) {
	// GIVEN: One of four teammates away on the candidate dates
	// WHEN: Checking capacity at a 0.49 ceiling
	// THEN: 1/4 = 0.25 does not exceed

	rng := leave.DateRange{Start: date(2026, time.March, 2), End: date(2026, time.March, 4)}
	overlapping := []*leave.Request{
		overlappingReq("e2", leave.StatusApproved, date(2026, time.March, 3), date(2026, time.March, 5)),
	}

	exceeded := leave.WouldExceedCapacity(fourPersonTeam(), rng, overlapping, "e1", decimal.NewFromFloat(0.49))
	assert.False(t, exceeded)
}

func TestWouldExceedCapacity_OverCeiling(t *testing.T) {
	// GIVEN: Two of four teammates away on the candidate dates
	// WHEN: Checking capacity at a 0.49 ceiling
	// THEN: 2/4 = 0.5 exceeds

	rng := leave.DateRange{Start: date(2026, time.March, 2), End: date(2026, time.March, 4)}
	overlapping := []*leave.Request{
		overlappingReq("e2", leave.StatusApproved, date(2026, time.March, 2), date(2026, time.March, 6)),
		overlappingReq("e3", leave.StatusPending, date(2026, time.March, 4), date(2026, time.March, 4)),
	}

	exceeded := leave.WouldExceedCapacity(fourPersonTeam(), rng, overlapping, "e1", decimal.NewFromFloat(0.49))
	assert.True(t, exceeded)
}

func TestWouldExceedCapacity_CeilingIsInclusive(t *testing.T) {
	// GIVEN: Exactly half the team away and a ceiling of exactly 0.5
	// WHEN: Checking capacity
	// THEN: Landing on the ceiling is allowed; only exceeding it fails

	rng := leave.DateRange{Start: date(2026, time.March, 2), End: date(2026, time.March, 4)}
	overlapping := []*leave.Request{
		overlappingReq("e2", leave.StatusApproved, date(2026, time.March, 2), date(2026, time.March, 6)),
		overlappingReq("e3", leave.StatusPending, date(2026, time.March, 4), date(2026, time.March, 4)),
	}

	exceeded := leave.WouldExceedCapacity(fourPersonTeam(), rng, overlapping, "e1", decimal.NewFromFloat(0.5))
	assert.False(t, exceeded)
}

func TestWouldExceedCapacity_CandidateOwnRequestsExcluded(t *testing.T) {
	// GIVEN: The candidate already has an overlapping pending request
	// WHEN: Checking capacity for their new request
	// THEN: Their own absence never counts against themselves

	rng := leave.DateRange{Start: date(2026, time.March, 2), End: date(2026, time.March, 4)}
	overlapping := []*leave.Request{
		overlappingReq("e1", leave.StatusPending, date(2026, time.March, 2), date(2026, time.March, 6)),
		overlappingReq("e2", leave.StatusApproved, date(2026, time.March, 2), date(2026, time.March, 6)),
	}

	exceeded := leave.WouldExceedCapacity(fourPersonTeam(), rng, overlapping, "e1", decimal.NewFromFloat(0.49))
	assert.False(t, exceeded, "only e2 should count: 1/4")
}

func TestWouldExceedCapacity_DistinctMembersNotRequests(t *testing.T) {
	// GIVEN: One teammate with two overlapping requests
	// WHEN: Checking capacity
	// THEN: The member counts once, not twice

	rng := leave.DateRange{Start: date(2026, time.March, 2), End: date(2026, time.March, 6)}
	overlapping := []*leave.Request{
		overlappingReq("e2", leave.StatusApproved, date(2026, time.March, 2), date(2026, time.March, 3)),
		{ID: "req-e2-b", EmployeeID: "e2", Status: leave.StatusPending,
			StartDate: date(2026, time.March, 5), EndDate: date(2026, time.March, 6)},
	}

	exceeded := leave.WouldExceedCapacity(fourPersonTeam(), rng, overlapping, "e1", decimal.NewFromFloat(0.49))
	assert.False(t, exceeded, "one distinct member away: 1/4")
}

func TestWouldExceedCapacity_IgnoresTerminalAndForeignRequests(t *testing.T) {
	// GIVEN: Overlapping requests that are rejected, cancelled, or from
	//        someone outside the roster
	// WHEN: Checking capacity
	// THEN: None of them count

	rng := leave.DateRange{Start: date(2026, time.March, 2), End: date(2026, time.March, 4)}
	overlapping := []*leave.Request{
		overlappingReq("e2", leave.StatusRejected, date(2026, time.March, 2), date(2026, time.March, 6)),
		overlappingReq("e3", leave.StatusCancelled, date(2026, time.March, 2), date(2026, time.March, 6)),
		overlappingReq("contractor-9", leave.StatusApproved, date(2026, time.March, 2), date(2026, time.March, 6)),
	}

	exceeded := leave.WouldExceedCapacity(fourPersonTeam(), rng, overlapping, "e1", decimal.NewFromFloat(0.49))
	assert.False(t, exceeded)
}

func TestWouldExceedCapacity_EmptyTeam(t *testing.T) {
	rng := leave.DateRange{Start: date(2026, time.March, 2), End: date(2026, time.March, 4)}
	exceeded := leave.WouldExceedCapacity(leave.Team{ID: "solo"}, rng, nil, "e1", decimal.NewFromFloat(0.49))
	assert.False(t, exceeded)
}

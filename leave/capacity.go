package leave

import "github.com/shopspring/decimal"

// =============================================================================
// TEAM CAPACITY - How much of a team can be away at once
// =============================================================================

// WouldExceedCapacity reports whether the team is already too thin to
// absorb the candidate's absence over the given date range.
//
// The numerator counts DISTINCT members with a pending or approved
// request overlapping the range; the candidate's own requests are
// excluded, so a request never fails the check against itself. The
// fraction is taken over the full team size. Ties are not exceeding:
// the ceiling is inclusive.
func WouldExceedCapacity(team Team, rng DateRange, overlapping []*Request, candidate EmployeeID, ceiling decimal.Decimal) bool {
	if team.Size() == 0 {
		return false
	}

	members := make(map[EmployeeID]bool, team.Size())
	for _, m := range team.Members {
		members[m] = true
	}

	away := make(map[EmployeeID]bool)
	for _, r := range overlapping {
		if r.EmployeeID == candidate {
			continue
		}
		if r.Status != StatusPending && r.Status != StatusApproved {
			continue
		}
		if !members[r.EmployeeID] {
			continue
		}
		if r.Range().Overlaps(rng) {
			away[r.EmployeeID] = true
		}
	}

	fraction := decimal.NewFromInt(int64(len(away))).
		Div(decimal.NewFromInt(int64(team.Size())))
	return fraction.GreaterThan(ceiling)
}

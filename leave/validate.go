/*
validate.go - The multi-rule request validator

PURPOSE:
  Decides whether a candidate request is submittable. Rules run
  independently - no short-circuiting - so the caller receives every
  violation at once instead of fixing them one at a time.

RULES (in reporting order):
  date_order            end date before start date
  no_working_days       zero working days in a full-day request
  max_span              full-day span exceeds the configured ceiling
  same_day              full-day request starting today
  half_day              half-day spanning multiple days, or missing period
  insufficient_balance  requested amount exceeds remaining entitlement
  weekend_quota         weekend-leave cap for the period already reached
  document_required     type mandates a document and none is attached
  team_capacity         too much of the team already away on those dates

  Mandatory-admin-approval types contribute NO violation here; routing to
  an admin reviewer is the lifecycle's concern, by design kept out of the
  validator (see TypePolicy.RequiresAdminApproval).

SIDE EFFECTS:
  None. Validation reads the supplied Context only, so a resubmission
  after a failure never double-reserves anything.

SEE ALSO:
  - capacity.go: the team capacity computation
  - lifecycle.go: assembles the Context and acts on the result
*/
package leave

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RULE CONFIG
// =============================================================================

type RuleConfig struct {
	// MaxConsecutiveDays caps the working-day count of a full-day request.
	MaxConsecutiveDays int

	// WeekendCapPerPeriod caps weekend leaves per half-year.
	WeekendCapPerPeriod int

	// TeamCapacityCeiling is the maximum fraction of a team simultaneously
	// on pending/approved leave. The ceiling is inclusive: exactly at the
	// ceiling is allowed.
	TeamCapacityCeiling decimal.Decimal
}

// DefaultRuleConfig returns the canonical rule constants.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		MaxConsecutiveDays:  5,
		WeekendCapPerPeriod: 2,
		TeamCapacityCeiling: decimal.NewFromFloat(0.49),
	}
}

// =============================================================================
// VIOLATIONS - Returned as data, never thrown
// =============================================================================

type ViolationCode string

const (
	ViolationDateOrder           ViolationCode = "date_order"
	ViolationNoWorkingDays       ViolationCode = "no_working_days"
	ViolationMaxSpan             ViolationCode = "max_span"
	ViolationSameDay             ViolationCode = "same_day"
	ViolationHalfDay             ViolationCode = "half_day"
	ViolationInsufficientBalance ViolationCode = "insufficient_balance"
	ViolationWeekendQuota        ViolationCode = "weekend_quota"
	ViolationDocumentRequired    ViolationCode = "document_required"
	ViolationTeamCapacity        ViolationCode = "team_capacity"
)

type Violation struct {
	Code    ViolationCode
	Message string
}

type ValidationResult struct {
	Violations []Violation
}

// OK reports acceptance: zero violations.
func (r ValidationResult) OK() bool { return len(r.Violations) == 0 }

func (r *ValidationResult) add(code ViolationCode, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

// =============================================================================
// CONTEXT - Everything the rules read
// =============================================================================

// Context bundles the state the validator consults. The lifecycle
// assembles it under the team lock so the capacity read and the
// subsequent write are serialized.
type Context struct {
	Today Date

	// Balance of the ledger bucket the request would debit.
	Balance Balance

	// WeekendUsed is the employee's weekend-leave count for the period.
	WeekendUsed int

	// Team roster and the team's pending/approved requests overlapping
	// the candidate range (the candidate itself not among them).
	Team        Team
	Overlapping []*Request
}

// =============================================================================
// VALIDATOR
// =============================================================================

type Validator struct {
	Calendar *Calculator
	Policies PolicySet
	Config   RuleConfig
}

func NewValidator(cal *Calculator, policies PolicySet, cfg RuleConfig) *Validator {
	return &Validator{Calendar: cal, Policies: policies, Config: cfg}
}

// Validate runs every rule against the candidate request. The request
// must already carry its derived fields (TotalDays, IsWeekendLeave,
// Period); the lifecycle computes them before calling.
func (v *Validator) Validate(req *Request, vctx Context) ValidationResult {
	policy, ok := v.Policies.Lookup(req.Type)
	if !ok {
		// Contract violation; the lifecycle rejects unknown types before
		// validation ever runs. Guard anyway so a direct caller fails loudly.
		panic(fmt.Sprintf("leave: no policy for type %q", req.Type))
	}

	var res ValidationResult

	// Date order
	if req.EndDate.Before(req.StartDate) {
		res.add(ViolationDateOrder, "end date %s is before start date %s", req.EndDate, req.StartDate)
	}

	// Working-day presence (full-day requests only)
	if !req.HalfDay && req.TotalDays.IsZero() && !req.EndDate.Before(req.StartDate) {
		res.add(ViolationNoWorkingDays, "range %s contains no working days", req.Range())
	}

	// Max consecutive span
	if !req.HalfDay && req.TotalDays.GreaterThan(WholeDays(v.Config.MaxConsecutiveDays)) {
		res.add(ViolationMaxSpan, "%s working days exceeds the maximum of %d consecutive days",
			req.TotalDays, v.Config.MaxConsecutiveDays)
	}

	// Same-day restriction: only half-day requests may start today.
	if !req.HalfDay && req.StartDate.Equal(vctx.Today) {
		res.add(ViolationSameDay, "full-day leave cannot start on the submission day")
	}

	// Half-day consistency
	if req.HalfDay {
		if !req.StartDate.Equal(req.EndDate) {
			res.add(ViolationHalfDay, "half-day leave must start and end on the same day")
		}
		if req.HalfDayPeriod != FirstHalf && req.HalfDayPeriod != SecondHalf {
			res.add(ViolationHalfDay, "half-day leave requires a half-day period")
		}
	}

	// Balance sufficiency
	if req.TotalDays.GreaterThan(vctx.Balance.Remaining()) {
		res.add(ViolationInsufficientBalance, "requested %s days but only %s remaining",
			req.TotalDays, vctx.Balance.Remaining())
	}

	// Weekend-leave quota
	if req.IsWeekendLeave && vctx.WeekendUsed >= v.Config.WeekendCapPerPeriod {
		res.add(ViolationWeekendQuota, "weekend leave cap of %d per half-year already reached",
			v.Config.WeekendCapPerPeriod)
	}

	// Document requirement
	if policy.RequiresDocument && req.DocumentRef == "" {
		res.add(ViolationDocumentRequired, "%s requires a supporting document", policy.Label)
	}

	// Team capacity
	if vctx.Team.Size() > 0 {
		exceeded := WouldExceedCapacity(vctx.Team, req.Range(), vctx.Overlapping,
			req.EmployeeID, v.Config.TeamCapacityCeiling)
		if exceeded {
			res.add(ViolationTeamCapacity, "team %s would exceed the %s leave capacity ceiling",
				vctx.Team.Name, v.Config.TeamCapacityCeiling)
		}
	}

	return res
}

/*
Package leave implements the leave entitlement and validation engine.

PURPOSE:
  This package contains the domain rules that every presentation surface
  (request forms, admin review screens, reporting) sits on top of:
  day counting, semi-annual quota scoping, the entitlement ledger, the
  multi-rule validator, the request lifecycle state machine, and the
  team capacity check.

KEY CONCEPTS IN THIS FILE (types.go):
  - Type: the enumerated leave kind (vacation, sick, ...)
  - TypePolicy / PolicySet: static per-type policy (allocation, scoping,
    document and admin-approval requirements)
  - Request: a leave request with its derived flags and review trail
  - Submission: the raw candidate supplied by the form layer

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for all day amounts (a half day is exactly 0.5)
  2. Returned-as-data: expected business outcomes are values, not panics
  3. Policy over special cases: per-type behavior lives in TypePolicy,
     never in string checks scattered through the rules

SEE ALSO:
  - calendar.go: working-day counting and the week policy
  - period.go: semi-annual period resolution
  - ledger.go: entitlement balances and the weekend sub-quota
  - validate.go: the rule validator
  - lifecycle.go: submit/approve/reject/cancel
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type TeamID string
type RequestID string

// =============================================================================
// LEAVE TYPE - Enumerated kind with a static policy
// =============================================================================

type Type string

const (
	TypeVacation    Type = "vacation"
	TypeSick        Type = "sick"
	TypePersonal    Type = "personal"
	TypeEmergency   Type = "emergency"
	TypeMaternity   Type = "maternity"
	TypePaternity   Type = "paternity"
	TypeBereavement Type = "bereavement"
	TypeOther       Type = "other"
)

// Category groups types for presentation purposes.
type Category string

const (
	CategoryStandard Category = "standard"
	CategorySpecial  Category = "special"
)

// TypePolicy is the static policy attached to a leave type.
//
// SemiAnnual types debit one of two six-month quota buckets per year
// (H1: Jan-Jun, H2: Jul-Dec); all other types debit a single annual bucket.
type TypePolicy struct {
	Label string

	// AnnualAllocation is the total days granted per calendar year.
	AnnualAllocation decimal.Decimal

	// SemiAnnual splits AnnualAllocation evenly across H1/H2.
	// Only vacation uses this.
	SemiAnnual bool

	// RequiresAdminApproval routes every request of this type to an admin
	// reviewer regardless of length or rule outcomes. Consulted by the
	// lifecycle router, never by the validator.
	RequiresAdminApproval bool

	// RequiresDocument makes a supporting-document reference mandatory.
	RequiresDocument bool

	Category Category
}

// PolicySet maps each leave type to its policy. Unknown types are a
// programming-contract violation, not a validation outcome.
type PolicySet map[Type]TypePolicy

// Lookup returns the policy for a type and whether it is known.
func (ps PolicySet) Lookup(t Type) (TypePolicy, bool) {
	p, ok := ps[t]
	return p, ok
}

// DefaultPolicySet returns the canonical policy table.
func DefaultPolicySet() PolicySet {
	return PolicySet{
		TypeVacation: {
			Label:            "Vacation",
			AnnualAllocation: decimal.NewFromInt(12),
			SemiAnnual:       true,
			Category:         CategoryStandard,
		},
		TypeSick: {
			Label:                 "Sick Leave",
			AnnualAllocation:      decimal.NewFromInt(10),
			RequiresAdminApproval: true,
			RequiresDocument:      true,
			Category:              CategoryStandard,
		},
		TypePersonal: {
			Label:            "Personal Leave",
			AnnualAllocation: decimal.NewFromInt(5),
			Category:         CategoryStandard,
		},
		TypeEmergency: {
			Label:                 "Emergency Leave",
			AnnualAllocation:      decimal.NewFromInt(5),
			RequiresAdminApproval: true,
			Category:              CategorySpecial,
		},
		TypeMaternity: {
			Label:                 "Maternity Leave",
			AnnualAllocation:      decimal.NewFromInt(90),
			RequiresAdminApproval: true,
			RequiresDocument:      true,
			Category:              CategorySpecial,
		},
		TypePaternity: {
			Label:                 "Paternity Leave",
			AnnualAllocation:      decimal.NewFromInt(10),
			RequiresAdminApproval: true,
			RequiresDocument:      true,
			Category:              CategorySpecial,
		},
		TypeBereavement: {
			Label:            "Bereavement Leave",
			AnnualAllocation: decimal.NewFromInt(3),
			Category:         CategorySpecial,
		},
		TypeOther: {
			Label:                 "Other",
			AnnualAllocation:      decimal.NewFromInt(3),
			RequiresAdminApproval: true,
			Category:              CategorySpecial,
		},
	}
}

// =============================================================================
// AMOUNTS - Day quantities
// =============================================================================

// HalfDay is the exact amount consumed by a half-day request.
var HalfDay = decimal.New(5, -1)

// WholeDays converts an integer day count to a decimal amount.
func WholeDays(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

// =============================================================================
// HALF DAY
// =============================================================================

type HalfDayPeriod string

const (
	FirstHalf  HalfDayPeriod = "first_half"
	SecondHalf HalfDayPeriod = "second_half"
)

// =============================================================================
// REQUEST STATUS - The state machine's vocabulary
// =============================================================================

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCancelled RequestStatus = "cancelled"
)

// Terminal reports whether no further transition is permitted.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// =============================================================================
// SUBMISSION - Raw candidate from the form layer
// =============================================================================

// Submission carries exactly what the presentation layer collects.
// Everything derived (total days, weekend flag, period) is computed by
// the engine at submit time.
type Submission struct {
	EmployeeID EmployeeID
	Type       Type
	StartDate  Date
	EndDate    Date

	HalfDay       bool
	HalfDayPeriod HalfDayPeriod // required when HalfDay

	Reason string

	EmergencyContactName  string
	EmergencyContactPhone string

	// DocumentRef is an opaque reference into the file storage
	// collaborator. The engine checks presence only.
	DocumentRef string
}

// =============================================================================
// REQUEST - The persisted entity
// =============================================================================

type Request struct {
	ID         RequestID
	EmployeeID EmployeeID
	TeamID     TeamID
	Type       Type

	StartDate Date
	EndDate   Date

	HalfDay       bool
	HalfDayPeriod HalfDayPeriod

	// TotalDays is 0.5 for half-day requests, otherwise the working-day
	// count of [StartDate, EndDate].
	TotalDays decimal.Decimal

	Reason                string
	EmergencyContactName  string
	EmergencyContactPhone string
	DocumentRef           string

	Status RequestStatus

	// Derived at submission time.
	IsWeekendLeave    bool
	Period            PeriodKey
	Category          Category
	TeamConflictCheck bool // capacity rule satisfied when submitted
	RequiresAdmin     bool

	AdminNotes string
	ReviewerID EmployeeID
	ReviewedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Range returns the inclusive date range of the request.
func (r *Request) Range() DateRange { return DateRange{Start: r.StartDate, End: r.EndDate} }

// =============================================================================
// TEAM - Supplied by the identity collaborator
// =============================================================================

type Team struct {
	ID        TeamID
	Name      string
	ManagerID EmployeeID
	Members   []EmployeeID
}

// Size returns the member count.
func (t Team) Size() int { return len(t.Members) }

type Employee struct {
	ID     EmployeeID
	Name   string
	Email  string
	TeamID TeamID
}

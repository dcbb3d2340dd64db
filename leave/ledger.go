/*
ledger.go - Entitlement ledger interface and balance math

PURPOSE:
  The ledger is the keyed store of allocated/used day amounts, per
  employee, per leave type, per scoping period. Semi-annual types
  (vacation) keep one bucket per half-year; everything else keeps a
  single annual bucket. A separate weekend sub-quota tracks the
  2-per-period cap on weekend-boundary leave.

RESERVATION DISCIPLINE:
  Reserve provisionally debits Used at submission time. Every Reserve is
  paired with exactly one of:
    - a permanent commit (approval; no further ledger change), or
    - a terminal Release (rejection or cancellation).
  The lifecycle service is the ONLY caller of Reserve/Release. Remaining
  is always derived (Allocated - Used), never stored or edited directly.

ATOMICITY:
  Reserve must be atomic per key: two concurrent reservations whose sum
  exceeds Remaining cannot both succeed. The in-memory store uses a
  per-key mutex; the sqlite store runs the read-check-write inside a
  single serialized transaction.

INCONSISTENT RELEASE:
  Release never pushes Used below zero. That path only runs when rolling
  back a previously successful Reserve, so an underflow indicates a
  pairing bug upstream: the store clamps to zero and logs, instead of
  failing the user's rollback.

SEE ALSO:
  - store/memory.go: in-memory implementation
  - store/sqlite/sqlite.go: persistent implementation
  - lifecycle.go: the only Reserve/Release caller
*/
package leave

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BALANCE - Allocated / used / derived remaining
// =============================================================================

type Balance struct {
	Allocated decimal.Decimal
	Used      decimal.Decimal
}

// Remaining is always derived, never stored.
func (b Balance) Remaining() decimal.Decimal { return b.Allocated.Sub(b.Used) }

// Add merges two balances (used when aggregating half-year buckets).
func (b Balance) Add(other Balance) Balance {
	return Balance{
		Allocated: b.Allocated.Add(other.Allocated),
		Used:      b.Used.Add(other.Used),
	}
}

// =============================================================================
// KEYS
// =============================================================================

// LedgerKey addresses one entitlement bucket. Half is 0 for annually
// scoped types, 1 or 2 for semi-annual types.
type LedgerKey struct {
	EmployeeID EmployeeID
	Type       Type
	Year       int
	Half       int
}

// KeyFor builds the ledger key a request debits, honoring the type's
// scoping policy.
func KeyFor(employeeID EmployeeID, t Type, policy TypePolicy, period PeriodKey) LedgerKey {
	key := LedgerKey{EmployeeID: employeeID, Type: t, Year: period.Year}
	if policy.SemiAnnual {
		key.Half = period.Half
	}
	return key
}

// WeekendKey addresses the weekend sub-quota bucket, always semi-annual.
type WeekendKey struct {
	EmployeeID EmployeeID
	Year       int
	Half       int
}

// =============================================================================
// LEDGER - Storage collaborator contract
// =============================================================================

// Ledger is the entitlement store. Implementations must make Reserve
// atomic with respect to its key.
type Ledger interface {
	// Balance aggregates the employee's buckets for a type and year:
	// both halves for semi-annual types, the single annual bucket
	// otherwise. Idempotent.
	Balance(ctx context.Context, employeeID EmployeeID, t Type, policy TypePolicy, year int) (Balance, error)

	// BalanceForKey returns one bucket. Missing buckets read as zero.
	BalanceForKey(ctx context.Context, key LedgerKey) (Balance, error)

	// Allocate sets the allocation for a bucket, creating it if needed.
	Allocate(ctx context.Context, key LedgerKey, amount decimal.Decimal) error

	// Reserve atomically increments Used by amount. Fails with
	// ErrInsufficientBalance (wrapped in InsufficientBalanceError) when
	// amount exceeds Remaining. Returns the updated balance on success.
	Reserve(ctx context.Context, key LedgerKey, amount decimal.Decimal) (Balance, error)

	// Release decrements Used by amount, clamping at zero. The clamp
	// path logs an inconsistency and still succeeds.
	Release(ctx context.Context, key LedgerKey, amount decimal.Decimal) (Balance, error)

	// WeekendUsed returns how many weekend leaves the employee has
	// reserved or committed in the period.
	WeekendUsed(ctx context.Context, key WeekendKey) (int, error)

	// ReserveWeekend increments the weekend count, failing with
	// ErrWeekendQuotaExhausted once the cap is reached.
	ReserveWeekend(ctx context.Context, key WeekendKey, cap int) error

	// ReleaseWeekend decrements the weekend count, clamping at zero.
	ReleaseWeekend(ctx context.Context, key WeekendKey) error
}

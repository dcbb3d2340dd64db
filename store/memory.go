/*
Package store provides in-memory implementations of the engine's storage
collaborators, used for tests and development.

The ledger guards every read-check-write under one mutex, which trivially
satisfies the reservation atomicity contract: two concurrent reservations
on the same key cannot both observe the same remaining balance. The
request store implements Transition as a compare-and-swap on the pending
status under the same discipline.

SEE ALSO:
  - store/sqlite: the persistent implementations
*/
package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// MEMORY LEDGER
// =============================================================================

type MemoryLedger struct {
	mu      sync.Mutex
	entries map[leave.LedgerKey]leave.Balance
	weekend map[leave.WeekendKey]int
	logger  *slog.Logger
}

func NewMemoryLedger(logger *slog.Logger) *MemoryLedger {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryLedger{
		entries: make(map[leave.LedgerKey]leave.Balance),
		weekend: make(map[leave.WeekendKey]int),
		logger:  logger,
	}
}

func (m *MemoryLedger) Balance(_ context.Context, employeeID leave.EmployeeID, t leave.Type, policy leave.TypePolicy, year int) (leave.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !policy.SemiAnnual {
		return m.entries[leave.LedgerKey{EmployeeID: employeeID, Type: t, Year: year}], nil
	}

	h1 := m.entries[leave.LedgerKey{EmployeeID: employeeID, Type: t, Year: year, Half: 1}]
	h2 := m.entries[leave.LedgerKey{EmployeeID: employeeID, Type: t, Year: year, Half: 2}]
	return h1.Add(h2), nil
}

func (m *MemoryLedger) BalanceForKey(_ context.Context, key leave.LedgerKey) (leave.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[key], nil
}

func (m *MemoryLedger) Allocate(_ context.Context, key leave.LedgerKey, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.entries[key]
	entry.Allocated = amount
	m.entries[key] = entry
	return nil
}

func (m *MemoryLedger) Reserve(_ context.Context, key leave.LedgerKey, amount decimal.Decimal) (leave.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.entries[key]
	if amount.GreaterThan(entry.Remaining()) {
		return entry, &leave.InsufficientBalanceError{
			Key:       key,
			Remaining: entry.Remaining().String(),
			Requested: amount.String(),
		}
	}

	entry.Used = entry.Used.Add(amount)
	m.entries[key] = entry
	return entry, nil
}

func (m *MemoryLedger) Release(_ context.Context, key leave.LedgerKey, amount decimal.Decimal) (leave.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.entries[key]
	if amount.GreaterThan(entry.Used) {
		// Rollback of a reserve that was never made: clamp and alert,
		// don't break the caller's request flow.
		m.logger.Warn("release exceeds used balance, clamping to zero",
			"employee", key.EmployeeID, "type", key.Type,
			"year", key.Year, "half", key.Half,
			"used", entry.Used.String(), "release", amount.String())
		entry.Used = decimal.Zero
	} else {
		entry.Used = entry.Used.Sub(amount)
	}
	m.entries[key] = entry
	return entry, nil
}

func (m *MemoryLedger) WeekendUsed(_ context.Context, key leave.WeekendKey) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.weekend[key], nil
}

func (m *MemoryLedger) ReserveWeekend(_ context.Context, key leave.WeekendKey, cap int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.weekend[key] >= cap {
		return leave.ErrWeekendQuotaExhausted
	}
	m.weekend[key]++
	return nil
}

func (m *MemoryLedger) ReleaseWeekend(_ context.Context, key leave.WeekendKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.weekend[key] == 0 {
		m.logger.Warn("weekend release with zero usage, clamping",
			"employee", key.EmployeeID, "year", key.Year, "half", key.Half)
		return nil
	}
	m.weekend[key]--
	return nil
}

var _ leave.Ledger = (*MemoryLedger)(nil)

// =============================================================================
// MEMORY REQUEST STORE
// =============================================================================

type MemoryRequestStore struct {
	mu       sync.Mutex
	requests map[leave.RequestID]*leave.Request
}

func NewMemoryRequestStore() *MemoryRequestStore {
	return &MemoryRequestStore{requests: make(map[leave.RequestID]*leave.Request)}
}

func (m *MemoryRequestStore) Create(_ context.Context, req *leave.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *req
	m.requests[req.ID] = &cp
	return nil
}

func (m *MemoryRequestStore) Get(_ context.Context, id leave.RequestID) (*leave.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[id]
	if !ok {
		return nil, leave.ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

func (m *MemoryRequestStore) Transition(_ context.Context, id leave.RequestID, to leave.RequestStatus, reviewerID leave.EmployeeID, notes string, at time.Time) (*leave.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[id]
	if !ok {
		return nil, leave.ErrRequestNotFound
	}
	if req.Status != leave.StatusPending {
		return nil, &leave.InvalidTransitionError{
			RequestID: id,
			Current:   req.Status,
			Attempted: to,
			Reason:    "request is no longer pending",
		}
	}

	req.Status = to
	req.UpdatedAt = at
	if reviewerID != "" {
		req.ReviewerID = reviewerID
		reviewedAt := at
		req.ReviewedAt = &reviewedAt
		req.AdminNotes = notes
	}

	cp := *req
	return &cp, nil
}

func (m *MemoryRequestStore) ListOverlapping(_ context.Context, teamID leave.TeamID, rng leave.DateRange, statuses []leave.RequestStatus) ([]*leave.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wanted := make(map[leave.RequestStatus]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}

	var out []*leave.Request
	for _, req := range m.requests {
		if req.TeamID != teamID || !wanted[req.Status] {
			continue
		}
		if req.Range().Overlaps(rng) {
			cp := *req
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryRequestStore) ListByEmployee(_ context.Context, employeeID leave.EmployeeID) ([]*leave.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*leave.Request
	for _, req := range m.requests {
		if req.EmployeeID == employeeID {
			cp := *req
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRequestStore) ListPending(_ context.Context) ([]*leave.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*leave.Request
	for _, req := range m.requests {
		if req.Status == leave.StatusPending {
			cp := *req
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

var _ leave.RequestStore = (*MemoryRequestStore)(nil)

// =============================================================================
// MEMORY DIRECTORY
// =============================================================================

type MemoryDirectory struct {
	mu        sync.RWMutex
	employees map[leave.EmployeeID]leave.Employee
	teams     map[leave.TeamID]leave.Team
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		employees: make(map[leave.EmployeeID]leave.Employee),
		teams:     make(map[leave.TeamID]leave.Team),
	}
}

func (m *MemoryDirectory) PutEmployee(_ context.Context, e leave.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

func (m *MemoryDirectory) PutTeam(_ context.Context, t leave.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams[t.ID] = t
	return nil
}

func (m *MemoryDirectory) Employee(_ context.Context, id leave.EmployeeID) (leave.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.employees[id]
	if !ok {
		return leave.Employee{}, leave.ErrEmployeeNotFound
	}
	return e, nil
}

func (m *MemoryDirectory) Team(_ context.Context, id leave.TeamID) (leave.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.teams[id]
	if !ok {
		return leave.Team{}, leave.ErrTeamNotFound
	}
	return t, nil
}

func (m *MemoryDirectory) TeamOf(_ context.Context, employeeID leave.EmployeeID) (leave.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.employees[employeeID]
	if !ok {
		return leave.Team{}, leave.ErrEmployeeNotFound
	}
	if e.TeamID == "" {
		return leave.Team{}, nil
	}
	t, ok := m.teams[e.TeamID]
	if !ok {
		return leave.Team{}, nil
	}
	return t, nil
}

var _ leave.Directory = (*MemoryDirectory)(nil)

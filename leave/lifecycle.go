/*
lifecycle.go - Request lifecycle state machine

PURPOSE:
  Owns the status of a request and the side effects of every transition:

    submit  -> validate, reserve ledger capacity, create pending request
    approve -> pending only; reservation becomes the permanent commit
    reject  -> pending only, notes mandatory; reservation released
    cancel  -> pending only, owner only; reservation released

  Any transition attempted from a terminal state fails with
  ErrInvalidTransition and performs no side effect.

CONCURRENCY:
  Two guarantees matter here:
  1. The capacity read and the pending-request write are serialized per
     team: Submit holds a per-team lock across validate+reserve+create,
     so two simultaneous submissions cannot both pass a capacity check
     they would jointly violate.
  2. approve/reject/cancel are mutually exclusive per request: the store's
     conditional Transition lets exactly one caller win; the loser gets
     ErrInvalidTransition with the actual status.
  Nothing slow (file or network I/O) runs inside the locked section; the
  collaborators here are storage contracts only.

RESERVATION PAIRING:
  Submit is the only Reserve caller; Reject and Cancel are the only
  Release callers, and each runs exactly once because it runs only after
  winning the conditional Transition. Approval changes nothing in the
  ledger - the reservation already counted against Used.

SEE ALSO:
  - validate.go: the rules Submit runs
  - ledger.go: reservation discipline
*/
package leave

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	Ledger    Ledger
	Requests  RequestStore
	Directory Directory
	Validator *Validator
	Logger    *slog.Logger

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time

	mu        sync.Mutex
	teamLocks map[string]*sync.Mutex
}

func NewService(ledger Ledger, requests RequestStore, directory Directory, validator *Validator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Ledger:    ledger,
		Requests:  requests,
		Directory: directory,
		Validator: validator,
		Logger:    logger,
		Now:       time.Now,
		teamLocks: make(map[string]*sync.Mutex),
	}
}

// lockFor serializes submissions per team. Employees without a team are
// serialized per employee instead.
func (s *Service) lockFor(teamID TeamID, employeeID EmployeeID) *sync.Mutex {
	key := "team:" + string(teamID)
	if teamID == "" {
		key = "emp:" + string(employeeID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.teamLocks[key]
	if !ok {
		l = &sync.Mutex{}
		s.teamLocks[key] = l
	}
	return l
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit validates a candidate and, on acceptance, reserves ledger
// capacity and creates the pending request. On rule violations it
// persists nothing and returns the full violation list as data; the
// error return is reserved for engine faults.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Request, ValidationResult, error) {
	policy, ok := s.Validator.Policies.Lookup(sub.Type)
	if !ok {
		return nil, ValidationResult{}, fmt.Errorf("%w: %q", ErrUnknownLeaveType, sub.Type)
	}

	if _, err := s.Directory.Employee(ctx, sub.EmployeeID); err != nil {
		return nil, ValidationResult{}, err
	}
	team, err := s.Directory.TeamOf(ctx, sub.EmployeeID)
	if err != nil {
		return nil, ValidationResult{}, err
	}

	now := s.Now().UTC()
	cal := s.Validator.Calendar
	period := ResolvePeriod(sub.StartDate)

	req := &Request{
		ID:                    RequestID(uuid.NewString()),
		EmployeeID:            sub.EmployeeID,
		TeamID:                team.ID,
		Type:                  sub.Type,
		StartDate:             sub.StartDate,
		EndDate:               sub.EndDate,
		HalfDay:               sub.HalfDay,
		HalfDayPeriod:         sub.HalfDayPeriod,
		TotalDays:             cal.TotalDays(sub.StartDate, sub.EndDate, sub.HalfDay),
		Reason:                sub.Reason,
		EmergencyContactName:  sub.EmergencyContactName,
		EmergencyContactPhone: sub.EmergencyContactPhone,
		DocumentRef:           sub.DocumentRef,
		Status:                StatusPending,
		IsWeekendLeave:        cal.IsWeekendLeave(sub.StartDate, sub.EndDate),
		Period:                period,
		Category:              policy.Category,
		RequiresAdmin:         policy.RequiresAdminApproval,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	// Serialize the capacity read and the pending write per team.
	lock := s.lockFor(team.ID, sub.EmployeeID)
	lock.Lock()
	defer lock.Unlock()

	vctx, err := s.buildContext(ctx, req, policy, team)
	if err != nil {
		return nil, ValidationResult{}, err
	}

	result := s.Validator.Validate(req, vctx)
	if !result.OK() {
		return nil, result, nil
	}
	req.TeamConflictCheck = true

	// Reserve entitlement. A concurrent reservation on another team can
	// still race us on the same ledger key, so a shortage here is folded
	// into the violation list rather than treated as a fault.
	key := KeyFor(req.EmployeeID, req.Type, policy, period)
	if _, err := s.Ledger.Reserve(ctx, key, req.TotalDays); err != nil {
		if IsClientError(err) {
			result.add(ViolationInsufficientBalance, "%s", err.Error())
			return nil, result, nil
		}
		return nil, ValidationResult{}, err
	}

	if req.IsWeekendLeave {
		wkey := WeekendKey{EmployeeID: req.EmployeeID, Year: period.Year, Half: period.Half}
		if err := s.Ledger.ReserveWeekend(ctx, wkey, s.Validator.Config.WeekendCapPerPeriod); err != nil {
			if _, relErr := s.Ledger.Release(ctx, key, req.TotalDays); relErr != nil {
				s.Logger.Error("failed to roll back reservation", "request", req.ID, "error", relErr)
			}
			if IsClientError(err) {
				result.add(ViolationWeekendQuota, "%s", err.Error())
				return nil, result, nil
			}
			return nil, ValidationResult{}, err
		}
	}

	if err := s.Requests.Create(ctx, req); err != nil {
		s.rollbackReservation(ctx, req, policy)
		return nil, ValidationResult{}, fmt.Errorf("failed to create request: %w", err)
	}

	return req, result, nil
}

func (s *Service) buildContext(ctx context.Context, req *Request, policy TypePolicy, team Team) (Context, error) {
	key := KeyFor(req.EmployeeID, req.Type, policy, req.Period)
	balance, err := s.Ledger.BalanceForKey(ctx, key)
	if err != nil {
		return Context{}, err
	}

	weekendUsed := 0
	if req.IsWeekendLeave {
		wkey := WeekendKey{EmployeeID: req.EmployeeID, Year: req.Period.Year, Half: req.Period.Half}
		weekendUsed, err = s.Ledger.WeekendUsed(ctx, wkey)
		if err != nil {
			return Context{}, err
		}
	}

	var overlapping []*Request
	if team.Size() > 0 {
		overlapping, err = s.Requests.ListOverlapping(ctx, team.ID, req.Range(),
			[]RequestStatus{StatusPending, StatusApproved})
		if err != nil {
			return Context{}, err
		}
	}

	return Context{
		Today:       DateOf(s.Now().UTC()),
		Balance:     balance,
		WeekendUsed: weekendUsed,
		Team:        team,
		Overlapping: overlapping,
	}, nil
}

func (s *Service) rollbackReservation(ctx context.Context, req *Request, policy TypePolicy) {
	key := KeyFor(req.EmployeeID, req.Type, policy, req.Period)
	if _, err := s.Ledger.Release(ctx, key, req.TotalDays); err != nil {
		s.Logger.Error("failed to release reservation", "request", req.ID, "error", err)
	}
	if req.IsWeekendLeave {
		wkey := WeekendKey{EmployeeID: req.EmployeeID, Year: req.Period.Year, Half: req.Period.Half}
		if err := s.Ledger.ReleaseWeekend(ctx, wkey); err != nil {
			s.Logger.Error("failed to release weekend reservation", "request", req.ID, "error", err)
		}
	}
}

// =============================================================================
// APPROVE / REJECT / CANCEL
// =============================================================================

// Approve moves a pending request to approved. The reservation made at
// submission becomes the permanent commit; the ledger is not touched.
func (s *Service) Approve(ctx context.Context, id RequestID, reviewerID EmployeeID, notes string) (*Request, error) {
	return s.Requests.Transition(ctx, id, StatusApproved, reviewerID, notes, s.Now().UTC())
}

// Reject moves a pending request to rejected and returns the reserved
// amount to the ledger. Notes are mandatory.
func (s *Service) Reject(ctx context.Context, id RequestID, reviewerID EmployeeID, notes string) (*Request, error) {
	if notes == "" {
		return nil, ErrNotesRequired
	}

	req, err := s.Requests.Transition(ctx, id, StatusRejected, reviewerID, notes, s.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.releaseFor(ctx, req)
	return req, nil
}

// Cancel moves a pending request to cancelled. Only the owning employee
// may cancel; anyone else gets ErrInvalidTransition.
func (s *Service) Cancel(ctx context.Context, id RequestID, actingEmployeeID EmployeeID) (*Request, error) {
	req, err := s.Requests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.EmployeeID != actingEmployeeID {
		return nil, &InvalidTransitionError{
			RequestID: id,
			Current:   req.Status,
			Attempted: StatusCancelled,
			Reason:    "only the owning employee may cancel",
		}
	}

	req, err = s.Requests.Transition(ctx, id, StatusCancelled, "", "", s.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.releaseFor(ctx, req)
	return req, nil
}

// releaseFor returns a terminal request's reservation to the ledger.
// Runs only after winning the conditional transition, so it runs exactly
// once per request.
func (s *Service) releaseFor(ctx context.Context, req *Request) {
	policy, ok := s.Validator.Policies.Lookup(req.Type)
	if !ok {
		s.Logger.Error("no policy for stored request type", "request", req.ID, "type", req.Type)
		return
	}
	key := KeyFor(req.EmployeeID, req.Type, policy, req.Period)
	if _, err := s.Ledger.Release(ctx, key, req.TotalDays); err != nil {
		s.Logger.Error("failed to release reservation", "request", req.ID, "error", err)
	}
	if req.IsWeekendLeave {
		wkey := WeekendKey{EmployeeID: req.EmployeeID, Year: req.Period.Year, Half: req.Period.Half}
		if err := s.Ledger.ReleaseWeekend(ctx, wkey); err != nil {
			s.Logger.Error("failed to release weekend reservation", "request", req.ID, "error", err)
		}
	}
}

// =============================================================================
// BALANCE VIEW - What the employee sees
// =============================================================================

// TypeBalance is one row of an employee's balance summary.
type TypeBalance struct {
	Type      Type
	Label     string
	Allocated string
	Used      string
	Remaining string
}

// BalanceSummary aggregates the employee's balances per leave type for a
// year, plus the weekend sub-quota usage of the current half-year.
// Repeated calls without intervening transitions return the same values.
func (s *Service) BalanceSummary(ctx context.Context, employeeID EmployeeID, year int) ([]TypeBalance, int, error) {
	if _, err := s.Directory.Employee(ctx, employeeID); err != nil {
		return nil, 0, err
	}

	var rows []TypeBalance
	for _, t := range []Type{TypeVacation, TypeSick, TypePersonal, TypeEmergency,
		TypeMaternity, TypePaternity, TypeBereavement, TypeOther} {
		policy, ok := s.Validator.Policies.Lookup(t)
		if !ok {
			continue
		}
		b, err := s.Ledger.Balance(ctx, employeeID, t, policy, year)
		if err != nil {
			return nil, 0, err
		}
		rows = append(rows, TypeBalance{
			Type:      t,
			Label:     policy.Label,
			Allocated: b.Allocated.String(),
			Used:      b.Used.String(),
			Remaining: b.Remaining().String(),
		})
	}

	period := ResolvePeriod(DateOf(s.Now().UTC()))
	weekendUsed, err := s.Ledger.WeekendUsed(ctx, WeekendKey{
		EmployeeID: employeeID, Year: year, Half: period.Half,
	})
	if err != nil {
		return nil, 0, err
	}

	return rows, weekendUsed, nil
}

// GrantDefaultAllocations seeds an employee's buckets for a year from the
// policy set: semi-annual types get an even split per half, everything
// else a single annual bucket.
func (s *Service) GrantDefaultAllocations(ctx context.Context, employeeID EmployeeID, year int) error {
	for t, policy := range s.Validator.Policies {
		if policy.SemiAnnual {
			half := policy.AnnualAllocation.Div(WholeDays(2))
			for _, h := range []int{1, 2} {
				key := LedgerKey{EmployeeID: employeeID, Type: t, Year: year, Half: h}
				if err := s.Ledger.Allocate(ctx, key, half); err != nil {
					return err
				}
			}
			continue
		}
		key := LedgerKey{EmployeeID: employeeID, Type: t, Year: year}
		if err := s.Ledger.Allocate(ctx, key, policy.AnnualAllocation); err != nil {
			return err
		}
	}
	return nil
}

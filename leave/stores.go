/*
stores.go - Storage and identity collaborator contracts

PURPOSE:
  The engine expresses persistence as logical read/write contracts and
  never issues SQL or file calls itself. Two collaborators are defined
  here; the Ledger contract lives in ledger.go.

  RequestStore: leave request persistence. Requests are never deleted;
  cancellation is a status transition. Transition is a conditional swap
  from pending so that exactly one concurrent transition can win.

  Directory: employee/team lookups supplied by an external identity
  system. The engine treats the ids as opaque keys.

IMPLEMENTATIONS:
  - store: in-memory, for tests and development
  - store/sqlite: persistent
*/
package leave

import (
	"context"
	"time"
)

// =============================================================================
// REQUEST STORE
// =============================================================================

type RequestStore interface {
	// Create persists a new request. The request carries its id.
	Create(ctx context.Context, req *Request) error

	// Get returns a request or ErrRequestNotFound.
	Get(ctx context.Context, id RequestID) (*Request, error)

	// Transition conditionally moves a request out of pending. If the
	// request is not pending, it fails with *InvalidTransitionError
	// carrying the actual current status, and changes nothing. Reviewer
	// attribution is recorded for approve/reject (reviewerID non-empty).
	Transition(ctx context.Context, id RequestID, to RequestStatus, reviewerID EmployeeID, notes string, at time.Time) (*Request, error)

	// ListOverlapping returns the team's requests in the given statuses
	// whose inclusive date range overlaps rng.
	ListOverlapping(ctx context.Context, teamID TeamID, rng DateRange, statuses []RequestStatus) ([]*Request, error)

	// ListByEmployee returns all requests owned by the employee,
	// newest first.
	ListByEmployee(ctx context.Context, employeeID EmployeeID) ([]*Request, error)

	// ListPending returns every pending request, oldest first.
	ListPending(ctx context.Context) ([]*Request, error)
}

// =============================================================================
// DIRECTORY - Identity collaborator
// =============================================================================

type Directory interface {
	// Employee returns the employee record or ErrEmployeeNotFound.
	Employee(ctx context.Context, id EmployeeID) (Employee, error)

	// Team returns the team record or ErrTeamNotFound.
	Team(ctx context.Context, id TeamID) (Team, error)

	// TeamOf returns the team an employee belongs to. Employees without
	// a team return a zero Team and no error; the capacity rule is then
	// skipped.
	TeamOf(ctx context.Context, employeeID EmployeeID) (Team, error)
}

/*
handlers.go - HTTP API handlers for the leave engine

PURPOSE:
  Exposes the leave engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates every decision to the domain service.

ENDPOINTS:
  Requests:
    POST   /api/employees/{id}/requests   Submit a leave request
    GET    /api/employees/{id}/requests   Request history, newest first
    GET    /api/requests/pending          Approval queue, oldest first
    POST   /api/requests/{id}/approve     Approve a pending request
    POST   /api/requests/{id}/reject      Reject (notes mandatory)
    POST   /api/requests/{id}/cancel      Cancel (owner only)

  Balances:
    GET    /api/employees/{id}/balance    Per-type balance summary

  Admin:
    POST   /api/admin/employees           Register employee, seed buckets
    POST   /api/admin/teams               Register team
    POST   /api/admin/allocations         Re-seed entitlement buckets
    GET    /api/employees/{id}            Employee details
    GET    /api/teams/{id}                Team details

ERROR HANDLING:
  - 400: Malformed JSON, bad dates, unknown leave type, missing notes
  - 404: Unknown employee, team, or request
  - 409: Transition attempted on a non-pending request; the response
         carries the request's actual current status
  - 422: Rule violations; the response lists every violated rule
  - 500: Engine faults

SECURITY NOTE:
  No authentication. Reviewer and acting-employee ids are taken from the
  request body and trusted.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// DirectoryAdmin is the write side of the directory, used only by the
// admin endpoints. Both store implementations satisfy it.
type DirectoryAdmin interface {
	PutEmployee(ctx context.Context, e leave.Employee) error
	PutTeam(ctx context.Context, t leave.Team) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *leave.Service
	Admin   DirectoryAdmin
}

// NewHandler creates a new handler around the domain service.
func NewHandler(service *leave.Service, admin DirectoryAdmin) *Handler {
	return &Handler{Service: service, Admin: admin}
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// SubmitRequest submits a leave request for the employee in the URL.
// POST /api/employees/{id}/requests
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	var body SubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := leave.ParseDate(body.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}
	end, err := leave.ParseDate(body.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date", err)
		return
	}

	sub := leave.Submission{
		EmployeeID:            leave.EmployeeID(employeeID),
		Type:                  leave.Type(body.Type),
		StartDate:             start,
		EndDate:               end,
		HalfDay:               body.HalfDay,
		HalfDayPeriod:         leave.HalfDayPeriod(body.HalfDayPeriod),
		Reason:                body.Reason,
		EmergencyContactName:  body.EmergencyContactName,
		EmergencyContactPhone: body.EmergencyContactPhone,
		DocumentRef:           body.DocumentRef,
	}

	req, result, err := h.Service.Submit(r.Context(), sub)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !result.OK() {
		writeJSON(w, http.StatusUnprocessableEntity, toViolationsResponse(result))
		return
	}

	writeJSON(w, http.StatusCreated, toRequestDTO(req))
}

// ListRequests returns an employee's request history, newest first.
// GET /api/employees/{id}/requests
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	employeeID := leave.EmployeeID(chi.URLParam(r, "id"))

	if _, err := h.Service.Directory.Employee(r.Context(), employeeID); err != nil {
		writeDomainError(w, err)
		return
	}

	reqs, err := h.Service.Requests.ListByEmployee(r.Context(), employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(reqs))
}

// ListPendingRequests returns the approval queue, oldest first.
// GET /api/requests/pending
func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Service.Requests.ListPending(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list pending requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(reqs))
}

// ApproveRequest approves a pending request.
// POST /api/requests/{id}/approve
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	id := leave.RequestID(chi.URLParam(r, "id"))

	var body ReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req, err := h.Service.Approve(r.Context(), id, leave.EmployeeID(body.ReviewerID), body.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// RejectRequest rejects a pending request. Notes are mandatory.
// POST /api/requests/{id}/reject
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	id := leave.RequestID(chi.URLParam(r, "id"))

	var body ReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req, err := h.Service.Reject(r.Context(), id, leave.EmployeeID(body.ReviewerID), body.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// CancelRequest cancels a pending request on behalf of its owner.
// POST /api/requests/{id}/cancel
func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	id := leave.RequestID(chi.URLParam(r, "id"))

	var body CancelRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req, err := h.Service.Cancel(r.Context(), id, leave.EmployeeID(body.EmployeeID))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

// GetBalance returns an employee's balance summary. The year defaults to
// the engine's current year and can be overridden with ?year=.
// GET /api/employees/{id}/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	employeeID := leave.EmployeeID(chi.URLParam(r, "id"))

	year := h.Service.Now().UTC().Year()
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}

	rows, weekendUsed, err := h.Service.BalanceSummary(r.Context(), employeeID, year)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dto := BalanceSummaryDTO{
		EmployeeID:  string(employeeID),
		Year:        year,
		Balances:    make([]TypeBalanceDTO, len(rows)),
		WeekendUsed: weekendUsed,
		WeekendCap:  h.Service.Validator.Config.WeekendCapPerPeriod,
	}
	for i, row := range rows {
		dto.Balances[i] = TypeBalanceDTO{
			Type:      string(row.Type),
			Label:     row.Label,
			Allocated: row.Allocated,
			Used:      row.Used,
			Remaining: row.Remaining,
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// CreateEmployee registers an employee and seeds their entitlement
// buckets for the current year.
// POST /api/admin/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var body CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.ID == "" || body.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	emp := leave.Employee{
		ID:     leave.EmployeeID(body.ID),
		Name:   body.Name,
		Email:  body.Email,
		TeamID: leave.TeamID(body.TeamID),
	}
	if err := h.Admin.PutEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}

	year := h.Service.Now().UTC().Year()
	if err := h.Service.GrantDefaultAllocations(r.Context(), emp.ID, year); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed allocations", err)
		return
	}

	writeJSON(w, http.StatusCreated, EmployeeDTO{
		ID: body.ID, Name: body.Name, Email: body.Email, TeamID: body.TeamID,
	})
}

// GetEmployee returns an employee record.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Service.Directory.Employee(r.Context(), leave.EmployeeID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EmployeeDTO{
		ID: string(emp.ID), Name: emp.Name, Email: emp.Email, TeamID: string(emp.TeamID),
	})
}

// CreateTeam registers a team with its member list.
// POST /api/admin/teams
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var body CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.ID == "" || body.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	team := leave.Team{
		ID:        leave.TeamID(body.ID),
		Name:      body.Name,
		ManagerID: leave.EmployeeID(body.ManagerID),
		Members:   make([]leave.EmployeeID, len(body.Members)),
	}
	for i, m := range body.Members {
		team.Members[i] = leave.EmployeeID(m)
	}
	if err := h.Admin.PutTeam(r.Context(), team); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create team", err)
		return
	}

	writeJSON(w, http.StatusCreated, toTeamDTO(team))
}

// GrantAllocations re-seeds an employee's entitlement buckets for a
// year, for onboarding mid-year hires or opening the next year.
// POST /api/admin/allocations
func (h *Handler) GrantAllocations(w http.ResponseWriter, r *http.Request) {
	var body GrantAllocationsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	employeeID := leave.EmployeeID(body.EmployeeID)
	if _, err := h.Service.Directory.Employee(r.Context(), employeeID); err != nil {
		writeDomainError(w, err)
		return
	}

	year := body.Year
	if year == 0 {
		year = h.Service.Now().UTC().Year()
	}
	if err := h.Service.GrantDefaultAllocations(r.Context(), employeeID, year); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed allocations", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employee_id": body.EmployeeID, "year": year})
}

// GetTeam returns a team record.
// GET /api/teams/{id}
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.Service.Directory.Team(r.Context(), leave.TeamID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeamDTO(team))
}

func toTeamDTO(team leave.Team) TeamDTO {
	dto := TeamDTO{
		ID:        string(team.ID),
		Name:      team.Name,
		ManagerID: string(team.ManagerID),
		Members:   make([]string, len(team.Members)),
		Size:      team.Size(),
	}
	for i, m := range team.Members {
		dto.Members[i] = string(m)
	}
	return dto
}

// =============================================================================
// ERROR MAPPING AND JSON HELPERS
// =============================================================================

// writeDomainError maps domain errors onto HTTP statuses. Invalid
// transitions become 409 with the request's actual status so a client
// that lost a race sees what it lost to.
func writeDomainError(w http.ResponseWriter, err error) {
	var transition *leave.InvalidTransitionError
	if errors.As(err, &transition) {
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: transition.Error(),
			Code:  "invalid_transition",
			Details: map[string]string{
				"request_id":     string(transition.RequestID),
				"current_status": string(transition.Current),
			},
		})
		return
	}

	switch {
	case leave.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, leave.ErrNotesRequired), errors.Is(err, leave.ErrUnknownLeaveType):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, leave.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Internal error: %v", err), nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

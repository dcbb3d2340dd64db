/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DATES AND AMOUNTS:
  Dates travel as "2006-01-02" strings, timestamps as RFC3339, and day
  amounts as decimal strings ("1.5", not 1.5) so the wire format carries
  exact values.

SEE ALSO:
  - handlers.go: Uses these types
  - server.go: Router setup
*/
package api

import (
	"time"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// SubmitRequestDTO is the request body for submitting a leave request.
type SubmitRequestDTO struct {
	Type                  string `json:"type"`
	StartDate             string `json:"start_date"`
	EndDate               string `json:"end_date"`
	HalfDay               bool   `json:"half_day,omitempty"`
	HalfDayPeriod         string `json:"half_day_period,omitempty"`
	Reason                string `json:"reason,omitempty"`
	EmergencyContactName  string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string `json:"emergency_contact_phone,omitempty"`
	DocumentRef           string `json:"document_ref,omitempty"`
}

// RequestDTO represents a leave request in API responses.
type RequestDTO struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	TeamID         string  `json:"team_id,omitempty"`
	Type           string  `json:"type"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	HalfDay        bool    `json:"half_day"`
	HalfDayPeriod  string  `json:"half_day_period,omitempty"`
	TotalDays      string  `json:"total_days"`
	Reason         string  `json:"reason,omitempty"`
	DocumentRef    string  `json:"document_ref,omitempty"`
	Status         string  `json:"status"`
	IsWeekendLeave bool    `json:"is_weekend_leave"`
	PeriodYear     int     `json:"period_year"`
	PeriodHalf     int     `json:"period_half"`
	Category       string  `json:"category"`
	RequiresAdmin  bool    `json:"requires_admin"`
	AdminNotes     string  `json:"admin_notes,omitempty"`
	ReviewerID     string  `json:"reviewer_id,omitempty"`
	ReviewedAt     *string `json:"reviewed_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// ViolationDTO is one rule violation from a rejected submission.
type ViolationDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ViolationsResponse is the 422 payload: every violated rule, not just
// the first.
type ViolationsResponse struct {
	Violations []ViolationDTO `json:"violations"`
}

// ReviewRequestDTO is the request body for approve/reject.
type ReviewRequestDTO struct {
	ReviewerID string `json:"reviewer_id"`
	Notes      string `json:"notes,omitempty"`
}

// CancelRequestDTO identifies the acting employee for a cancellation.
type CancelRequestDTO struct {
	EmployeeID string `json:"employee_id"`
}

// TypeBalanceDTO is one row of a balance summary.
type TypeBalanceDTO struct {
	Type      string `json:"type"`
	Label     string `json:"label"`
	Allocated string `json:"allocated"`
	Used      string `json:"used"`
	Remaining string `json:"remaining"`
}

// BalanceSummaryDTO is the full balance view for an employee.
type BalanceSummaryDTO struct {
	EmployeeID  string           `json:"employee_id"`
	Year        int              `json:"year"`
	Balances    []TypeBalanceDTO `json:"balances"`
	WeekendUsed int              `json:"weekend_used"`
	WeekendCap  int              `json:"weekend_cap"`
}

// CreateEmployeeRequest is the admin request to register an employee.
type CreateEmployeeRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	TeamID string `json:"team_id,omitempty"`
}

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	TeamID string `json:"team_id,omitempty"`
}

// CreateTeamRequest is the admin request to register a team.
type CreateTeamRequest struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ManagerID string   `json:"manager_id,omitempty"`
	Members   []string `json:"members"`
}

// TeamDTO represents a team in API responses.
type TeamDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ManagerID string   `json:"manager_id,omitempty"`
	Members   []string `json:"members"`
	Size      int      `json:"size"`
}

// GrantAllocationsRequest is the admin request to seed an employee's
// entitlement buckets for a year. Year 0 means the current year.
type GrantAllocationsRequest struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toRequestDTO(req *leave.Request) RequestDTO {
	dto := RequestDTO{
		ID:             string(req.ID),
		EmployeeID:     string(req.EmployeeID),
		TeamID:         string(req.TeamID),
		Type:           string(req.Type),
		StartDate:      req.StartDate.String(),
		EndDate:        req.EndDate.String(),
		HalfDay:        req.HalfDay,
		HalfDayPeriod:  string(req.HalfDayPeriod),
		TotalDays:      req.TotalDays.String(),
		Reason:         req.Reason,
		DocumentRef:    req.DocumentRef,
		Status:         string(req.Status),
		IsWeekendLeave: req.IsWeekendLeave,
		PeriodYear:     req.Period.Year,
		PeriodHalf:     req.Period.Half,
		Category:       string(req.Category),
		RequiresAdmin:  req.RequiresAdmin,
		AdminNotes:     req.AdminNotes,
		ReviewerID:     string(req.ReviewerID),
		CreatedAt:      req.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      req.UpdatedAt.Format(time.RFC3339),
	}
	if req.ReviewedAt != nil {
		s := req.ReviewedAt.Format(time.RFC3339)
		dto.ReviewedAt = &s
	}
	return dto
}

func toRequestDTOs(reqs []*leave.Request) []RequestDTO {
	dtos := make([]RequestDTO, len(reqs))
	for i, req := range reqs {
		dtos[i] = toRequestDTO(req)
	}
	return dtos
}

func toViolationsResponse(result leave.ValidationResult) ViolationsResponse {
	out := ViolationsResponse{Violations: make([]ViolationDTO, len(result.Violations))}
	for i, v := range result.Violations {
		out.Violations[i] = ViolationDTO{Code: string(v.Code), Message: v.Message}
	}
	return out
}

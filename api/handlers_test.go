package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/api"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// newTestServer wires the full HTTP surface over in-memory stores with a
// frozen clock (Monday 2026-02-02).
func newTestServer(t *testing.T) *httptest.Server {
	ledger := store.NewMemoryLedger(nil)
	reqs := store.NewMemoryRequestStore()
	dir := store.NewMemoryDirectory()

	validator := leave.NewValidator(leave.NewCalculator(nil), leave.DefaultPolicySet(), leave.DefaultRuleConfig())
	svc := leave.NewService(ledger, reqs, dir, validator, nil)
	svc.Now = func() time.Time { return time.Date(2026, time.February, 2, 9, 0, 0, 0, time.UTC) }

	srv := httptest.NewServer(api.NewRouter(api.NewHandler(svc, dir)))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func seedTeam(t *testing.T, base string) {
	resp, _ := doJSON(t, http.MethodPost, base+"/api/admin/teams", map[string]any{
		"id": "eng", "name": "Engineering", "manager_id": "mgr",
		"members": []string{"e1", "e2", "e3", "e4"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	for _, id := range []string{"e1", "e2", "e3", "e4", "mgr"} {
		resp, _ := doJSON(t, http.MethodPost, base+"/api/admin/employees", map[string]any{
			"id": id, "name": id, "email": id + "@example.com", "team_id": "eng",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
}

// =============================================================================
// SUBMIT / APPROVE JOURNEY
// =============================================================================

func TestAPI_SubmitApproveJourney(t *testing.T) {
	// GIVEN: A seeded team
	// WHEN: e1 submits a valid vacation and a manager approves it
	// THEN: 201 pending, 200 approved, and the balance reflects 3 used days

	srv := newTestServer(t)
	seedTeam(t, srv.URL)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/employees/e1/requests", map[string]any{
		"type": "vacation", "start_date": "2026-03-02", "end_date": "2026-03-04",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created api.RequestDTO
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "3", created.TotalDays)
	assert.Equal(t, 1, created.PeriodHalf)

	// The approval queue sees it
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/requests/pending", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pending []api.RequestDTO
	require.NoError(t, json.Unmarshal(body, &pending))
	require.Len(t, pending, 1)

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/requests/"+created.ID+"/approve",
		api.ReviewRequestDTO{ReviewerID: "mgr"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var approved api.RequestDTO
	require.NoError(t, json.Unmarshal(body, &approved))
	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, "mgr", approved.ReviewerID)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/employees/e1/balance?year=2026", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var balance api.BalanceSummaryDTO
	require.NoError(t, json.Unmarshal(body, &balance))
	assert.Equal(t, 2, balance.WeekendCap)
	for _, row := range balance.Balances {
		if row.Type == "vacation" {
			assert.Equal(t, "12", row.Allocated)
			assert.Equal(t, "3", row.Used)
			assert.Equal(t, "9", row.Remaining)
		}
	}
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestAPI_ViolationsReturn422(t *testing.T) {
	// GIVEN: A sick-leave submission that is too long and undocumented
	// WHEN: Submitting
	// THEN: 422 with every violated rule listed

	srv := newTestServer(t)
	seedTeam(t, srv.URL)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/employees/e1/requests", map[string]any{
		"type": "sick", "start_date": "2026-03-02", "end_date": "2026-03-09",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, string(body))

	var violations api.ViolationsResponse
	require.NoError(t, json.Unmarshal(body, &violations))
	codes := make([]string, len(violations.Violations))
	for i, v := range violations.Violations {
		codes[i] = v.Code
	}
	assert.Contains(t, codes, "max_span")
	assert.Contains(t, codes, "document_required")
}

func TestAPI_LostTransitionReturns409WithActualStatus(t *testing.T) {
	// GIVEN: An already-approved request
	// WHEN: Approving it again
	// THEN: 409 carrying the current status

	srv := newTestServer(t)
	seedTeam(t, srv.URL)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/employees/e1/requests", map[string]any{
		"type": "vacation", "start_date": "2026-03-02", "end_date": "2026-03-04",
	})
	var created api.RequestDTO
	require.NoError(t, json.Unmarshal(body, &created))

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/requests/"+created.ID+"/approve",
		api.ReviewRequestDTO{ReviewerID: "mgr"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/requests/"+created.ID+"/approve",
		api.ReviewRequestDTO{ReviewerID: "mgr"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var errResp api.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "invalid_transition", errResp.Code)
	details, ok := errResp.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "approved", details["current_status"])
}

func TestAPI_RejectWithoutNotesReturns400(t *testing.T) {
	srv := newTestServer(t)
	seedTeam(t, srv.URL)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/employees/e1/requests", map[string]any{
		"type": "vacation", "start_date": "2026-03-02", "end_date": "2026-03-04",
	})
	var created api.RequestDTO
	require.NoError(t, json.Unmarshal(body, &created))

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/requests/"+created.ID+"/reject",
		api.ReviewRequestDTO{ReviewerID: "mgr"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CancelByNonOwnerReturns409(t *testing.T) {
	srv := newTestServer(t)
	seedTeam(t, srv.URL)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/employees/e1/requests", map[string]any{
		"type": "vacation", "start_date": "2026-03-02", "end_date": "2026-03-04",
	})
	var created api.RequestDTO
	require.NoError(t, json.Unmarshal(body, &created))

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/requests/"+created.ID+"/cancel",
		api.CancelRequestDTO{EmployeeID: "e2"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/requests/"+created.ID+"/cancel",
		api.CancelRequestDTO{EmployeeID: "e1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_BadInputReturns400(t *testing.T) {
	srv := newTestServer(t)
	seedTeam(t, srv.URL)

	// Malformed date
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/employees/e1/requests", map[string]any{
		"type": "vacation", "start_date": "next tuesday", "end_date": "2026-03-04",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown leave type
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/employees/e1/requests", map[string]any{
		"type": "sabbatical", "start_date": "2026-03-02", "end_date": "2026-03-04",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_UnknownEmployeeReturns404(t *testing.T) {
	srv := newTestServer(t)
	seedTeam(t, srv.URL)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/employees/ghost/requests", map[string]any{
		"type": "vacation", "start_date": "2026-03-02", "end_date": "2026-03-04",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/employees/ghost/balance", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// HISTORY
// =============================================================================

func TestAPI_RequestHistory(t *testing.T) {
	srv := newTestServer(t)
	seedTeam(t, srv.URL)

	for _, window := range [][2]string{
		{"2026-03-02", "2026-03-03"},
		{"2026-04-06", "2026-04-07"},
	} {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/employees/e1/requests", map[string]any{
			"type": "vacation", "start_date": window[0], "end_date": window[1],
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	}

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/employees/e1/requests", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []api.RequestDTO
	require.NoError(t, json.Unmarshal(body, &history))
	assert.Len(t, history, 2)
}

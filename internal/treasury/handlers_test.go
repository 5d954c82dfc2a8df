package treasury

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengov-ph/treasury-backend/internal/ledger"
	"github.com/opengov-ph/treasury-backend/internal/utils"
)

// stubActors returns a canned actor per user id.
type stubActors map[string]Actor

func (s stubActors) ActorByID(ctx context.Context, id string) (Actor, error) {
	actor, ok := s[id]
	if !ok {
		return Actor{}, ErrNotFound
	}
	return actor, nil
}

// stubSessions satisfies middleware.SessionFetcher with always-valid sessions
// whose session id doubles as the user id.
type stubSessions struct{ actors stubActors }

func (s stubSessions) FindSessionByID(id string) (utils.SessionData, error) {
	if _, ok := s.actors[id]; !ok {
		return utils.SessionData{}, ErrNotFound
	}
	return utils.SessionData{UserID: id, ExpiresAt: neverExpires()}, nil
}

func (s stubSessions) FindRoleByUserID(id string) (string, bool, error) {
	actor, ok := s.actors[id]
	if !ok {
		return "", false, ErrNotFound
	}
	return actor.Role, actor.Active, nil
}

func neverExpires() time.Time { return time.Now().Add(time.Hour) }

func newTestServer(t *testing.T) (*httptest.Server, *Workflow) {
	t.Helper()

	store := newMemStore()
	engine := NewBalanceEngine(store)
	workflow := NewWorkflow(store, engine, ledger.Static{Ref: "0xabc", Committed: true}, nil)

	actors := stubActors{treasurer.ID: treasurer, chairman.ID: chairman}
	handler := NewHandler(workflow, engine, store, actors)
	sessions := stubSessions{actors: actors}

	srv := httptest.NewServer(SetupRoutes(handler, sessions, sessions))
	t.Cleanup(srv.Close)
	return srv, workflow
}

func doJSON(t *testing.T, srv *httptest.Server, userID, method, path, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.AddCookie(&http.Cookie{Name: "session_id", Value: userID})
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRoutes_RequireSession(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, srv, "", http.MethodGet, "/summary", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoutes_IncomeThenSummary(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, srv, treasurer.ID, http.MethodPost, "/income",
		`{"amount":"100000","category":"Local Taxes","document_ref":"or-2026-001"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created RecordResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.True(t, created.Anchored)
	assert.Equal(t, "0xabc", created.LedgerRef)

	resp = doJSON(t, srv, chairman.ID, http.MethodGet, "/summary", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary GeneralFundSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.True(t, summary.AvailableBalance.Equal(dec("100000")))
}

func TestRoutes_SubmissionRoleGate(t *testing.T) {
	srv, _ := newTestServer(t)

	// The chairman cannot submit records.
	resp := doJSON(t, srv, chairman.ID, http.MethodPost, "/allocations",
		`{"amount":"1000","category":"Education","purpose":"p","document_ref":"d"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRoutes_AdmissionDenialBody(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, srv, treasurer.ID, http.MethodPost, "/allocations",
		`{"amount":"1000","category":"Education","purpose":"p","document_ref":"d"}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "no income has been recorded")
}

func TestRoutes_ApproveFlow(t *testing.T) {
	srv, w := newTestServer(t)
	recordIncome(t, w, "100000")

	resp := doJSON(t, srv, treasurer.ID, http.MethodPost, "/allocations",
		`{"amount":"40000","category":"Education","purpose":"school supplies","document_ref":"d"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created RecordResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, StatusProposed, created.Status)

	// The treasurer cannot approve.
	resp = doJSON(t, srv, treasurer.ID, http.MethodPost, "/allocations/"+created.ID+"/approve", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, srv, chairman.ID, http.MethodPost, "/allocations/"+created.ID+"/approve", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var approved RecordResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&approved))
	assert.Equal(t, StatusApproved, approved.Status)
	assert.True(t, approved.Anchored)

	// Approving again conflicts.
	resp = doJSON(t, srv, chairman.ID, http.MethodPost, "/allocations/"+created.ID+"/approve", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRoutes_RejectFlow(t *testing.T) {
	srv, w := newTestServer(t)
	recordIncome(t, w, "100000")

	resp := doJSON(t, srv, treasurer.ID, http.MethodPost, "/expenditures",
		`{"amount":"5000","category":"Health","purpose":"medical mission","document_ref":"d"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created RecordResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	resp = doJSON(t, srv, chairman.ID, http.MethodPost, "/expenditures/"+created.ID+"/reject",
		`{"reason":"no canvass attached"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rejected RecordResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rejected))
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, "no canvass attached", rejected.RejectionReason)
}

func TestRoutes_UnknownRecord(t *testing.T) {
	srv, w := newTestServer(t)
	recordIncome(t, w, "100000")

	resp := doJSON(t, srv, chairman.ID, http.MethodPost, "/proposals/nope/approve", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

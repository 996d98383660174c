package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealthsim/advisor/internal/cache"
	"github.com/wealthsim/advisor/internal/config"
	"github.com/wealthsim/advisor/internal/domain"
	"github.com/wealthsim/advisor/internal/feasibility"
	"github.com/wealthsim/advisor/internal/metrics"
	"github.com/wealthsim/advisor/internal/planner"
	"github.com/wealthsim/advisor/internal/policy"
	"github.com/wealthsim/advisor/internal/simulation"
	"github.com/wealthsim/advisor/internal/store"
)

var apiNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, store.ProfileStore) {
	t.Helper()
	profiles := store.NewMemory()
	engine := feasibility.NewEngine(nil)
	handlers := NewHandlers(
		engine,
		planner.New(engine, planner.DefaultConfig()),
		simulation.New(func() time.Time { return apiNow }),
		profiles,
		cache.NewMemory(),
		metrics.New(),
		5*time.Minute,
		func() time.Time { return apiNow },
	)
	cfg := config.Default()
	return NewServer(cfg.Server, cfg.RateLimit, handlers), profiles
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	rec := doJSON(t, server.Router(), "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestScoreEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	profile := domain.SampleProfile(apiNow)

	rec := doJSON(t, server.Router(), "POST", "/v1/score", map[string]interface{}{"profile": profile})
	require.Equal(t, http.StatusOK, rec.Code)

	var result feasibility.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Rankings, 2)
	assert.Equal(t, "goal-emergency", result.Rankings[0].GoalID)
	assert.Equal(t, 0.59, result.Rankings[0].Score)

	// Second identical request is served from cache with the same body.
	again := doJSON(t, server.Router(), "POST", "/v1/score", map[string]interface{}{"profile": profile})
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, rec.Body.String(), again.Body.String())
}

func TestScoreEndpointBadBody(t *testing.T) {
	server, _ := newTestServer(t)
	req := httptest.NewRequest("POST", "/v1/score", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPrioritizeEndpointInlineProfile(t *testing.T) {
	server, _ := newTestServer(t)
	profile := domain.SampleProfile(apiNow)

	rec := doJSON(t, server.Router(), "POST", "/v1/prioritize", map[string]interface{}{"profile": profile})
	require.Equal(t, http.StatusOK, rec.Code)

	var result planner.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "goal-emergency", result.PriorityGoal.ID)
	require.Len(t, result.CapitalReallocations, 1)
	assert.Equal(t, 401.0, result.CapitalReallocations[0].Amount)
}

func TestPrioritizeEndpointByStoredID(t *testing.T) {
	server, profiles := newTestServer(t)
	profile := domain.SampleProfile(apiNow)
	require.NoError(t, profiles.Save(context.Background(), profile))

	rec := doJSON(t, server.Router(), "POST", "/v1/prioritize", map[string]interface{}{
		"profileId": profile.ID,
		"persist":   true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := profiles.Get(context.Background(), profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "goal-emergency", stored.PriorityGoalID)
}

func TestPrioritizeEndpointUnknownID(t *testing.T) {
	server, _ := newTestServer(t)
	rec := doJSON(t, server.Router(), "POST", "/v1/prioritize", map[string]interface{}{"profileId": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPrioritizeEndpointMissingProfile(t *testing.T) {
	server, _ := newTestServer(t)
	rec := doJSON(t, server.Router(), "POST", "/v1/prioritize", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecideEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server.Router(), "POST", "/v1/decide", map[string]interface{}{
		"guardrail": map[string]interface{}{
			"violated":          false,
			"canProceed":        true,
			"violations":        []string{},
			"complianceSummary": "All clear.",
		},
		"budgeting":    map[string]string{"recommendation": "approve"},
		"investment":   map[string]string{"recommendation": "approve_with_caution"},
		"finalSummary": "Looks workable overall.",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Decision            policy.Decision  `json:"decision"`
		Consensus           policy.Consensus `json:"consensus"`
		FinalRecommendation string           `json:"finalRecommendation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, policy.DecisionProceedWithCaution, resp.Decision)
	assert.Equal(t, policy.ConsensusUnanimous, resp.Consensus)
	assert.Equal(t, "Looks workable overall.\n\nFinal decision: proceed with caution.", resp.FinalRecommendation)
}

func TestDecideEndpointOverride(t *testing.T) {
	server, _ := newTestServer(t)
	profile := domain.SampleProfile(apiNow)

	rec := doJSON(t, server.Router(), "POST", "/v1/decide", map[string]interface{}{
		"preferences": profile.Preferences,
		"simulation": map[string]interface{}{
			"scenarioIfDo": map[string]interface{}{
				"accountsAfter": map[string]interface{}{"checking": 2900},
			},
		},
		"guardrail": map[string]interface{}{
			"violated":          true,
			"canProceed":        false,
			"violations":        []string{"checking below minimum"},
			"complianceSummary": "Blocked.",
		},
		"budgeting":  map[string]string{"recommendation": "approve"},
		"investment": map[string]string{"recommendation": "approve"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp policy.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, policy.DecisionProceed, resp.Decision)
	assert.True(t, resp.Guardrail.CanProceed)
	assert.Contains(t, resp.Guardrail.ComplianceSummary, "Deterministic override")
}

func TestDecideEndpointRejectsUnknownLabel(t *testing.T) {
	server, _ := newTestServer(t)
	rec := doJSON(t, server.Router(), "POST", "/v1/decide", map[string]interface{}{
		"guardrail":  map[string]interface{}{"canProceed": true},
		"budgeting":  map[string]string{"recommendation": "definitely"},
		"investment": map[string]string{"recommendation": "approve"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulateEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	profile := domain.SampleProfile(apiNow)

	rec := doJSON(t, server.Router(), "POST", "/v1/simulate", map[string]interface{}{
		"profile": profile,
		"action":  map[string]interface{}{"type": "save", "amount": 500, "goalId": "goal-emergency"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.SimulationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.InDelta(t, 5632.89, result.ScenarioIfDo.AccountsAfter.Checking, 0.001)
}

func TestSimulateEndpointUnknownAction(t *testing.T) {
	server, _ := newTestServer(t)
	rec := doJSON(t, server.Router(), "POST", "/v1/simulate", map[string]interface{}{
		"profile": domain.SampleProfile(apiNow),
		"action":  map[string]interface{}{"type": "gamble", "amount": 500},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileRoundTripOverAPI(t *testing.T) {
	server, _ := newTestServer(t)
	profile := domain.SampleProfile(apiNow)

	put := doJSON(t, server.Router(), "PUT", "/v1/profiles", profile)
	require.Equal(t, http.StatusOK, put.Code)

	get := doJSON(t, server.Router(), "GET", "/v1/profiles/"+profile.ID, nil)
	require.Equal(t, http.StatusOK, get.Code)

	var got domain.Profile
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &got))
	assert.Equal(t, profile.ID, got.ID)
	assert.Equal(t, profile.MonthlyIncome, got.MonthlyIncome)
}

func TestPutProfileRequiresID(t *testing.T) {
	server, _ := newTestServer(t)
	profile := domain.SampleProfile(apiNow)
	profile.ID = ""
	rec := doJSON(t, server.Router(), "PUT", "/v1/profiles", profile)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProfileNotFound(t *testing.T) {
	server, _ := newTestServer(t)
	rec := doJSON(t, server.Router(), "GET", "/v1/profiles/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	// Score once so the counters move.
	doJSON(t, server.Router(), "POST", "/v1/score", map[string]interface{}{"profile": domain.SampleProfile(apiNow)})

	rec := doJSON(t, server.Router(), "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "advisor_goals_scored_total 2")
}

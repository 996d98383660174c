package http

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wealthsim/advisor/internal/cache"
	"github.com/wealthsim/advisor/internal/domain"
	"github.com/wealthsim/advisor/internal/feasibility"
	"github.com/wealthsim/advisor/internal/metrics"
	"github.com/wealthsim/advisor/internal/planner"
	"github.com/wealthsim/advisor/internal/policy"
	"github.com/wealthsim/advisor/internal/simulation"
	"github.com/wealthsim/advisor/internal/store"
)

// Handlers exposes the policy core over JSON.
type Handlers struct {
	engine    *feasibility.Engine
	planner   *planner.Planner
	simulator *simulation.Engine
	profiles  store.ProfileStore
	cache     cache.Cache
	metrics   *metrics.Registry
	scoreTTL  time.Duration
	now       func() time.Time
}

// NewHandlers builds the handler set. The clock is injectable for tests;
// nil selects time.Now.
func NewHandlers(engine *feasibility.Engine, pl *planner.Planner, sim *simulation.Engine, profiles store.ProfileStore, c cache.Cache, m *metrics.Registry, scoreTTL time.Duration, now func() time.Time) *Handlers {
	if now == nil {
		now = time.Now
	}
	return &Handlers{
		engine:    engine,
		planner:   pl,
		simulator: sim,
		profiles:  profiles,
		cache:     c,
		metrics:   m,
		scoreTTL:  scoreTTL,
		now:       now,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type scoreRequest struct {
	Profile domain.Profile `json:"profile"`
}

// Score ranks the profile's goals by feasibility. Responses are cached per
// profile content hash.
func (h *Handlers) Score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	key := scoreCacheKey(req.Profile)
	if cached, ok := h.cache.Get(r.Context(), key); ok {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cached)
		return
	}

	start := time.Now()
	result, err := h.engine.ScoreGoals(req.Profile, h.now())
	h.metrics.ScoringDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	h.metrics.GoalsScored.Add(float64(len(result.Rankings)))

	body, err := json.Marshal(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.cache.Set(r.Context(), key, body, h.scoreTTL)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

type prioritizeRequest struct {
	// Profile is scored directly when present; otherwise ProfileID is
	// loaded from the store.
	Profile   *domain.Profile `json:"profile,omitempty"`
	ProfileID string          `json:"profileId,omitempty"`
	// Persist controls whether the updated profile is written back.
	Persist bool `json:"persist"`
}

// Prioritize selects the priority goal and proposes guarded reallocations.
func (h *Handlers) Prioritize(w http.ResponseWriter, r *http.Request) {
	var req prioritizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	var profile domain.Profile
	switch {
	case req.Profile != nil:
		profile = *req.Profile
	case req.ProfileID != "":
		var err error
		profile, err = h.profiles.Get(r.Context(), req.ProfileID)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
	default:
		writeError(w, http.StatusBadRequest, errors.New("profile or profileId required"))
		return
	}

	var persist planner.PersistFunc
	if req.Persist {
		persist = store.PersistFunc(r.Context(), h.profiles)
	}

	result, err := h.planner.Prioritize(profile, h.now(), persist)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	if len(result.CapitalReallocations) > 0 {
		h.metrics.AcceptedReallocations.Inc()
	} else {
		h.metrics.BlockedReallocations.Inc()
	}
	writeJSON(w, http.StatusOK, result)
}

type decideRequest struct {
	Preferences  domain.Preferences       `json:"preferences"`
	Simulation   domain.SimulationResult  `json:"simulation"`
	Guardrail    policy.GuardrailAnalysis `json:"guardrail"`
	Budgeting    policy.AgentAnalysis     `json:"budgeting"`
	Investment   policy.AgentAnalysis     `json:"investment"`
	FinalSummary string                   `json:"finalSummary,omitempty"`
}

type decideResponse struct {
	policy.Outcome
	FinalRecommendation string `json:"finalRecommendation,omitempty"`
}

// Decide combines guardrail and agent signals into a final decision.
func (h *Handlers) Decide(w http.ResponseWriter, r *http.Request) {
	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if !req.Budgeting.Recommendation.Valid() || !req.Investment.Recommendation.Valid() {
		writeError(w, http.StatusBadRequest, errors.New("unknown agent recommendation label"))
		return
	}

	outcome := policy.Evaluate(req.Preferences, req.Simulation, req.Guardrail, req.Budgeting, req.Investment)
	if !req.Guardrail.CanProceed && outcome.Guardrail.CanProceed {
		h.metrics.GuardrailOverrides.Inc()
	}
	h.metrics.Decisions.WithLabelValues(string(outcome.Decision)).Inc()
	h.metrics.Consensus.WithLabelValues(string(outcome.Consensus)).Inc()

	resp := decideResponse{Outcome: outcome}
	if req.FinalSummary != "" {
		resp.FinalRecommendation = policy.AppendDecisionLine(req.FinalSummary, outcome.Decision)
	}
	writeJSON(w, http.StatusOK, resp)
}

type simulateRequest struct {
	Profile domain.Profile `json:"profile"`
	Action  domain.Action  `json:"action"`
}

// Simulate projects one action's effect on the profile.
func (h *Handlers) Simulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	result, err := h.simulator.Simulate(req.Profile, req.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetProfile loads a stored profile.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	profile, err := h.profiles.Get(r.Context(), id)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// PutProfile stores a profile snapshot.
func (h *Handlers) PutProfile(w http.ResponseWriter, r *http.Request) {
	var profile domain.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if profile.ID == "" {
		writeError(w, http.StatusBadRequest, errors.New("profile id required"))
		return
	}
	if err := profile.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.profiles.Save(r.Context(), profile); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "id": profile.ID})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidProfile), errors.Is(err, domain.ErrNoGoals):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// scoreCacheKey hashes the profile content so any edit invalidates the
// cached rankings.
func scoreCacheKey(profile domain.Profile) string {
	raw, err := json.Marshal(profile)
	if err != nil {
		return "score:" + profile.ID
	}
	sum := sha256.Sum256(raw)
	return "score:" + hex.EncodeToString(sum[:8])
}

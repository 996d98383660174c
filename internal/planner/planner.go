package planner

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wealthsim/advisor/internal/domain"
	"github.com/wealthsim/advisor/internal/feasibility"
)

// Config contains the planner's hard thresholds.
type Config struct {
	// EmergencyLiquidityMin is the checking floor enforced regardless of
	// user-defined guardrails.
	EmergencyLiquidityMin float64 `yaml:"emergency_liquidity_min"`
	// MinReallocation is the smallest capital move worth recommending.
	MinReallocation float64 `yaml:"min_reallocation"`
	// TieWindow is the score distance within which goals are considered
	// near-tied for priority selection.
	TieWindow float64 `yaml:"tie_window"`
	// SurplusShare bounds a reallocation to this share of monthly surplus.
	SurplusShare float64 `yaml:"surplus_share"`
	// GapShare bounds a reallocation to this share of the goal's gap.
	GapShare float64 `yaml:"gap_share"`
}

// DefaultConfig returns production planner thresholds.
func DefaultConfig() Config {
	return Config{
		EmergencyLiquidityMin: 1000,
		MinReallocation:       50,
		TieWindow:             0.05,
		SurplusShare:          0.5,
		GapShare:              0.1,
	}
}

// ReallocationSource is the label used for moves funded from unallocated
// savings rather than a specific goal.
const ReallocationSource = "general_savings"

// Reallocation is one proposed capital move toward the priority goal.
type Reallocation struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

// PriorityGoal summarizes the selected goal.
type PriorityGoal struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	FeasibilityScore float64 `json:"feasibility_score"`
	Reason           string  `json:"reason"`
}

// RankedGoal is one row of the ranking table returned to callers.
type RankedGoal struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	Bottleneck string  `json:"bottleneck,omitempty"`
}

// Result is the full prioritization output. UpdatedProfile has exactly one
// goal flagged IsPriority and is what the persist callback received.
type Result struct {
	PriorityGoal         PriorityGoal   `json:"priority_goal"`
	GoalRankings         []RankedGoal   `json:"goal_rankings"`
	CapitalReallocations []Reallocation `json:"capital_reallocations"`
	Explanation          string         `json:"explanation"`
	UpdatedProfile       domain.Profile `json:"updatedUserProfile"`
}

// PersistFunc writes the updated profile. The planner invokes it at most
// once, synchronously, after all checks pass; errors propagate unchanged.
type PersistFunc func(domain.Profile) error

// Planner selects a priority goal and proposes guarded capital moves.
type Planner struct {
	engine *feasibility.Engine
	cfg    Config
}

// New creates a planner. A nil engine gets a default-weight scorer.
func New(engine *feasibility.Engine, cfg Config) *Planner {
	if engine == nil {
		engine = feasibility.NewEngine(nil)
	}
	return &Planner{engine: engine, cfg: cfg}
}

// Prioritize scores the profile's goals, picks the priority goal (favoring
// the incumbent among near-ties), proposes a bounded reallocation, enforces
// guardrails, and returns the updated profile. If persist is non-nil it is
// called with the updated profile before returning.
func (p *Planner) Prioritize(profile domain.Profile, now time.Time, persist PersistFunc) (Result, error) {
	if len(profile.Goals) == 0 {
		return Result{}, domain.ErrNoGoals
	}

	scored, err := p.engine.ScoreGoals(profile, now)
	if err != nil {
		return Result{}, fmt.Errorf("goal scoring failed: %w", err)
	}
	if len(scored.Rankings) == 0 {
		return Result{}, domain.ErrNoRankings
	}

	selected := p.selectPriority(scored.Rankings, profile.PriorityGoalID)

	reallocations := p.computeReallocations(profile, selected.GoalID, scored.Surplus)
	totalRealloc := 0.0
	for _, r := range reallocations {
		totalRealloc += r.Amount
	}

	// Guardrails are checked against current balances, not balances after
	// the proposed move. Preserved from the source behavior; see DESIGN.md.
	guardrails := p.checkGuardrails(profile, profile.Accounts.Checking, profile.Accounts.Savings)
	liquidityOK := profile.Accounts.Checking >= p.cfg.EmergencyLiquidityMin
	reallocOK := totalRealloc <= scored.Surplus &&
		totalRealloc <= profile.Accounts.Checking-p.cfg.EmergencyLiquidityMin

	// All-or-nothing: a failed condition discards the whole list rather
	// than scaling it down.
	accepted := reallocations
	blockedReasons := guardrails.Violations
	if !guardrails.Passed || !liquidityOK || !reallocOK {
		accepted = []Reallocation{}
		if guardrails.Passed && liquidityOK && !reallocOK && len(reallocations) > 0 {
			blockedReasons = append(blockedReasons, fmt.Sprintf(
				"Proposed move of $%.2f exceeds monthly surplus or checking above the $%.0f emergency floor",
				totalRealloc, p.cfg.EmergencyLiquidityMin))
		}
		log.Debug().
			Str("goal", selected.GoalID).
			Bool("guardrails_passed", guardrails.Passed).
			Bool("liquidity_ok", liquidityOK).
			Bool("realloc_ok", reallocOK).
			Msg("reallocations discarded by acceptance gate")
	}

	updated := profile.Clone()
	for i := range updated.Goals {
		updated.Goals[i].IsPriority = updated.Goals[i].ID == selected.GoalID
	}
	updated.PriorityGoalID = selected.GoalID
	updated.UpdatedAt = now

	if persist != nil {
		if err := persist(updated); err != nil {
			return Result{}, fmt.Errorf("persist updated profile: %w", err)
		}
	}

	return Result{
		PriorityGoal: PriorityGoal{
			ID:               selected.GoalID,
			Name:             selected.GoalName,
			FeasibilityScore: selected.Score,
			Reason:           priorityReason(selected),
		},
		GoalRankings:         rankedGoals(scored.Rankings),
		CapitalReallocations: accepted,
		Explanation:          buildExplanation(selected, scored.Rankings, accepted, blockedReasons),
		UpdatedProfile:       updated,
	}, nil
}

// selectPriority prefers the incumbent priority goal among near-ties so the
// recommendation does not flap between near-equal candidates.
func (p *Planner) selectPriority(rankings []feasibility.Score, incumbentID string) feasibility.Score {
	top := rankings[0]
	var nearTies []feasibility.Score
	for _, r := range rankings {
		if math.Abs(r.Score-top.Score) < p.cfg.TieWindow {
			nearTies = append(nearTies, r)
		}
	}
	if len(nearTies) <= 1 {
		return top
	}
	for _, r := range nearTies {
		if incumbentID != "" && r.GoalID == incumbentID {
			return r
		}
	}
	return top
}

// computeReallocations proposes at most one move toward the selected goal,
// bounded by half the surplus, a tenth of the gap, and the surplus itself.
func (p *Planner) computeReallocations(profile domain.Profile, goalID string, surplus float64) []Reallocation {
	if surplus <= 0 {
		return nil
	}
	var goal *domain.Goal
	for i := range profile.Goals {
		if profile.Goals[i].ID == goalID {
			goal = &profile.Goals[i]
			break
		}
	}
	if goal == nil {
		return nil
	}

	gap := math.Max(0, goal.TargetAmount-goal.CurrentAmount)
	amount := math.Min(math.Max(p.cfg.MinReallocation, math.Min(surplus*p.cfg.SurplusShare, gap*p.cfg.GapShare)), surplus)
	if amount < p.cfg.MinReallocation {
		return nil
	}
	return []Reallocation{{
		From:   ReallocationSource,
		To:     goalID,
		Amount: domain.RoundCents(amount),
		Reason: fmt.Sprintf("Increase progress toward priority goal %q", goal.Name),
	}}
}

func priorityReason(s feasibility.Score) string {
	if s.Bottleneck != "" {
		return fmt.Sprintf("Highest feasibility (%.2f). %s", s.Score, s.Bottleneck)
	}
	return fmt.Sprintf("Closest to completion with manageable monthly contribution ($%.0f/mo)", s.RequiredMonthlyContribution)
}

func rankedGoals(rankings []feasibility.Score) []RankedGoal {
	out := make([]RankedGoal, 0, len(rankings))
	for _, r := range rankings {
		out = append(out, RankedGoal{ID: r.GoalID, Name: r.GoalName, Score: r.Score, Bottleneck: r.Bottleneck})
	}
	return out
}

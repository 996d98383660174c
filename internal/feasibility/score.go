package feasibility

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/wealthsim/advisor/internal/domain"
)

const (
	// minMonths keeps every deadline at least one month out so required
	// contributions stay finite.
	minMonths = 1
	// maxContributionMonths caps the amortization window so far-future
	// deadlines cannot inflate affordability with near-zero contributions.
	maxContributionMonths = 120
	// maxSpendingUtilization caps overspend so one blown budget month
	// cannot dominate the headroom component.
	maxSpendingUtilization = 1.5
	// liquidMonthlyFraction is the share of liquid assets considered
	// sensible to commit per month.
	liquidMonthlyFraction = 0.1
)

// Components holds the six per-goal scoring inputs, each in [0,1].
type Components struct {
	ProgressRatio             float64 `json:"progressRatio"`
	TimePressure              float64 `json:"timePressure"`
	ContributionAffordability float64 `json:"contributionAffordability"`
	SpendingHeadroom          float64 `json:"spendingHeadroom"`
	LiquidityAlignment        float64 `json:"liquidityAlignment"`
	RiskAlignment             float64 `json:"riskAlignment"`
}

// Score is the feasibility assessment of a single goal.
type Score struct {
	GoalID                      string     `json:"goalId"`
	GoalName                    string     `json:"goalName"`
	Score                       float64    `json:"score"`
	Components                  Components `json:"components"`
	RequiredMonthlyContribution float64    `json:"requiredMonthlyContribution"`
	MonthsRemaining             int        `json:"monthsRemaining"`
	Bottleneck                  string     `json:"bottleneck,omitempty"`
}

// Result is the full scoring output: rankings sorted descending by score
// (stable, so input order breaks ties) plus the profile-level derivations.
type Result struct {
	Rankings    []Score `json:"rankings"`
	Surplus     float64 `json:"surplus"`
	TotalLiquid float64 `json:"totalLiquid"`
}

// Engine scores goals against a financial profile.
type Engine struct {
	weights Weights
}

// NewEngine creates a scoring engine. A nil weights pointer selects the
// default allocation.
func NewEngine(weights *Weights) *Engine {
	if weights == nil {
		w := DefaultWeights()
		return &Engine{weights: w}
	}
	return &Engine{weights: *weights}
}

// ScoreGoals scores every goal in the profile and ranks them descending by
// feasibility. An empty goal list yields empty rankings, not an error; a
// malformed profile yields domain.ErrInvalidProfile.
func (e *Engine) ScoreGoals(profile domain.Profile, now time.Time) (Result, error) {
	if err := profile.Validate(); err != nil {
		return Result{}, err
	}

	surplus := monthlySurplus(profile)
	liquid := totalLiquid(profile)
	utilization := spendingUtilization(profile)

	rankings := make([]Score, 0, len(profile.Goals))
	for _, goal := range profile.Goals {
		rankings = append(rankings, e.scoreGoal(goal, profile, now, surplus, liquid, utilization))
	}
	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].Score > rankings[j].Score
	})

	return Result{
		Rankings:    rankings,
		Surplus:     domain.RoundCents(surplus),
		TotalLiquid: liquid,
	}, nil
}

func (e *Engine) scoreGoal(goal domain.Goal, profile domain.Profile, now time.Time, surplus, liquid, utilization float64) Score {
	gap := math.Max(0, goal.TargetAmount-goal.CurrentAmount)
	monthsRemaining := monthsBetween(now, goal.Deadline)
	if monthsRemaining < minMonths {
		monthsRemaining = minMonths
	}

	requiredMonthly := 0.0
	if gap > 0 {
		requiredMonthly = gap / math.Min(float64(monthsRemaining), maxContributionMonths)
	}

	progressRatio := 1.0
	if goal.TargetAmount > 0 {
		progressRatio = math.Min(1, goal.CurrentAmount/goal.TargetAmount)
	}

	var timePressure float64
	switch {
	case monthsRemaining >= 24:
		timePressure = 1.0
	case monthsRemaining >= 12:
		timePressure = 0.8
	case monthsRemaining >= 6:
		timePressure = 0.6
	default:
		timePressure = 0.4
	}

	affordability := 0.0
	if surplus > 0 {
		// Zero required contribution counts as fully affordable.
		affordability = math.Min(1, surplus/math.Max(requiredMonthly, 1))
	}

	headroom := math.Max(0, 1-utilization)

	liquidityAlignment := 1.0
	if requiredMonthly > 0 {
		liquidityAlignment = math.Min(1, (liquid*liquidMonthlyFraction)/requiredMonthly)
	}

	riskAlignment := riskAlignmentFor(goal.TimeHorizon, profile.Preferences)

	w := e.weights
	raw := progressRatio*w.ProgressRatio +
		timePressure*w.TimePressure +
		affordability*w.ContributionAffordability +
		headroom*w.SpendingHeadroom +
		liquidityAlignment*w.LiquidityAlignment +
		riskAlignment*w.RiskAlignment

	return Score{
		GoalID:   goal.ID,
		GoalName: goal.Name,
		Score:    domain.RoundCents(math.Min(1, math.Max(0, raw))),
		Components: Components{
			ProgressRatio:             progressRatio,
			TimePressure:              timePressure,
			ContributionAffordability: affordability,
			SpendingHeadroom:          headroom,
			LiquidityAlignment:        liquidityAlignment,
			RiskAlignment:             riskAlignment,
		},
		RequiredMonthlyContribution: domain.RoundCents(requiredMonthly),
		MonthsRemaining:             monthsRemaining,
		Bottleneck:                  diagnoseBottleneck(affordability, requiredMonthly, progressRatio, gap, monthsRemaining, liquidityAlignment),
	}
}

// diagnoseBottleneck picks the single most likely blocker; first match wins.
func diagnoseBottleneck(affordability, requiredMonthly, progressRatio, gap float64, monthsRemaining int, liquidityAlignment float64) string {
	switch {
	case affordability < 0.5 && requiredMonthly > 0:
		return fmt.Sprintf("Required monthly ($%.0f) exceeds affordable surplus", math.Round(requiredMonthly))
	case progressRatio < 0.2 && gap > 0:
		return fmt.Sprintf("Far from target ($%.0f to go)", math.Round(gap))
	case monthsRemaining < 6 && gap > 0:
		return fmt.Sprintf("Short time horizon (%d months left)", monthsRemaining)
	case liquidityAlignment < 0.5:
		return "Liquidity constraints limit allocation"
	default:
		return ""
	}
}

func riskAlignmentFor(horizon domain.TimeHorizon, prefs domain.Preferences) float64 {
	risk := prefs.RiskTolerance
	if risk == "" {
		risk = domain.RiskModerate
	}
	liquidityPref := prefs.LiquidityPreference
	if liquidityPref == "" {
		liquidityPref = domain.LiquidityMedium
	}

	alignment := 0.7
	switch horizon {
	case domain.HorizonShort:
		switch risk {
		case domain.RiskConservative:
			alignment = 1.0
		case domain.RiskModerate:
			alignment = 0.85
		default:
			alignment = 0.7
		}
		if liquidityPref == domain.LiquidityHigh {
			alignment = math.Min(1, alignment+0.1)
		}
	case domain.HorizonLong:
		switch risk {
		case domain.RiskAggressive:
			alignment = 1.0
		case domain.RiskModerate:
			alignment = 0.85
		default:
			alignment = 0.7
		}
	}
	return alignment
}

// monthlySurplus is income minus normalized fixed expenses minus the sum of
// all category budgets, floored at zero.
func monthlySurplus(profile domain.Profile) float64 {
	fixed := 0.0
	for _, e := range profile.FixedExpenses {
		fixed += e.MonthlyAmount()
	}
	budgeted := 0.0
	for _, c := range profile.SpendingCategories {
		budgeted += c.MonthlyBudget
	}
	return math.Max(0, profile.MonthlyIncome-fixed-budgeted)
}

func totalLiquid(profile domain.Profile) float64 {
	return profile.Accounts.Checking + profile.Accounts.Savings
}

// spendingUtilization is spent/budget over real spending categories, capped
// at 1.5. Categories named "income" are bookkeeping rows, not spending.
func spendingUtilization(profile domain.Profile) float64 {
	totalBudget := 0.0
	totalSpent := 0.0
	for _, cat := range profile.SpendingCategories {
		if cat.MonthlyBudget > 0 && !strings.EqualFold(cat.Name, "income") {
			totalBudget += cat.MonthlyBudget
			totalSpent += cat.CurrentSpent
		}
	}
	if totalBudget <= 0 {
		return 0
	}
	return math.Min(maxSpendingUtilization, totalSpent/totalBudget)
}

// monthsBetween counts whole calendar months from now until deadline.
// Deadlines in the past yield negative values; callers clamp.
func monthsBetween(now, deadline time.Time) int {
	months := (deadline.Year()-now.Year())*12 + int(deadline.Month()) - int(now.Month())
	if deadline.Day() < now.Day() {
		months--
	}
	return months
}

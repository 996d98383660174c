package simulation

import (
	"fmt"
	"math"
	"time"

	"github.com/wealthsim/advisor/internal/domain"
)

// Assumed annual returns for projections. These feed narration and goal
// timelines only; the decision policy reads just the projected balances.
const (
	DefaultAnnualReturn = 0.07
	SavingsReturn       = 0.04
)

// maxProjectionMonths caps time-to-goal iteration.
const maxProjectionMonths = 1200

// Engine produces what-if projections for save, invest, and spend actions.
type Engine struct {
	now func() time.Time
}

// New creates a simulation engine. The clock is injectable for
// deterministic tests; nil selects time.Now.
func New(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Simulate dispatches on the action type.
func (e *Engine) Simulate(profile domain.Profile, action domain.Action) (domain.SimulationResult, error) {
	switch action.Type {
	case domain.ActionSave:
		return e.SimulateSave(profile, action.Amount, action.GoalID), nil
	case domain.ActionInvest:
		target := action.TargetAccountID
		if target == "" {
			target = domain.AccountTaxable
		}
		return e.SimulateInvest(profile, action.Amount, target, action.GoalID, 5), nil
	case domain.ActionSpend:
		category := action.Category
		if category == "" {
			category = "Miscellaneous"
		}
		return e.SimulateSpend(profile, action.Amount, category), nil
	default:
		return domain.SimulationResult{}, fmt.Errorf("unknown action type: %q", action.Type)
	}
}

// SimulateSave projects moving amount from checking into savings.
func (e *Engine) SimulateSave(profile domain.Profile, amount float64, goalID string) domain.SimulationResult {
	after := profile.Accounts
	after.Checking -= amount
	after.Savings += amount

	goal := findGoal(profile, goalID)
	var goalImpacts []domain.GoalImpact
	if goal != nil {
		goalImpacts = append(goalImpacts, e.goalImpact(*goal, amount, SavingsReturn))
	}

	budgetImpacts := currentBudgetImpacts(profile)
	liquidity := liquidityImpact(profile.Accounts.Checking, after.Checking, profile.Accounts.Savings, after.Savings)
	violations := constraintViolations(profile, after)

	var timeline []string
	for _, impact := range goalImpacts {
		if impact.TimeSaved > 0 {
			timeline = append(timeline, fmt.Sprintf("%s: Progress increased by %.1f%%", impact.GoalName, impact.ProgressChangePct))
		}
	}

	confidence := domain.ConfidenceHigh
	if len(violations) > 0 {
		confidence = domain.ConfidenceMedium
	}

	reasoning := fmt.Sprintf("Saving $%.2f increases emergency reserves. Funds remain liquid and FDIC insured.", amount)
	if goal != nil && len(goalImpacts) > 0 {
		reasoning = fmt.Sprintf("Saving $%.2f will increase %s progress by %.1f%%. Funds remain liquid and low-risk.",
			amount, goal.Name, goalImpacts[0].ProgressChangePct)
	}

	return domain.SimulationResult{
		Action: domain.Action{Type: domain.ActionSave, Amount: amount, TargetAccountID: domain.AccountSavings, GoalID: goalID},
		ScenarioIfDo: domain.Scenario{
			AccountsAfter:   after,
			GoalImpacts:     goalImpacts,
			BudgetImpacts:   budgetImpacts,
			LiquidityImpact: liquidity + ". Savings remain fully liquid.",
			RiskImpact:      "No change in risk. Savings are FDIC insured.",
			TimelineChanges: timeline,
		},
		ScenarioIfDont: domain.Scenario{
			AccountsAfter:   profile.Accounts,
			GoalImpacts:     zeroedImpacts(goalImpacts),
			BudgetImpacts:   budgetImpacts,
			LiquidityImpact: "No change to liquid assets.",
			RiskImpact:      "No change in risk exposure.",
			TimelineChanges: []string{},
		},
		Confidence: confidence,
		Reasoning:  reasoning,
		ValidationResult: domain.ValidationResult{
			Passed:               len(violations) == 0,
			ConstraintViolations: violations,
			Contradictions:       []string{},
			UncertaintySources:   []string{"Savings account return rate assumed at 4% APY"},
			OverallConfidence:    validationConfidence(violations, domain.ConfidenceHigh),
		},
	}
}

// SimulateInvest projects moving amount from checking into an investment
// account, with a future-value projection over horizonYears.
func (e *Engine) SimulateInvest(profile domain.Profile, amount float64, account domain.AccountID, goalID string, horizonYears int) domain.SimulationResult {
	after := profile.Accounts
	after.Checking -= amount
	switch account {
	case domain.AccountRothIRA:
		after.Investments.RothIRA += amount
	case domain.AccountTraditional401k:
		after.Investments.Traditional401k += amount
	default:
		after.Investments.Taxable += amount
	}

	goal := findGoal(profile, goalID)
	futureValue := FutureValue(amount, 0, DefaultAnnualReturn, float64(horizonYears))
	projectedGain := futureValue - amount

	var goalImpacts []domain.GoalImpact
	if goal != nil {
		goalImpacts = append(goalImpacts, e.goalImpact(*goal, amount, DefaultAnnualReturn))
	}

	budgetImpacts := currentBudgetImpacts(profile)
	violations := constraintViolations(profile, after)

	timeline := []string{fmt.Sprintf("Investment projected to grow to $%.2f in %d years", futureValue, horizonYears)}
	for _, impact := range goalImpacts {
		if impact.TimeSaved > 0 {
			timeline = append(timeline, fmt.Sprintf("%s: Progress increased by %.1f%%", impact.GoalName, impact.ProgressChangePct))
		}
	}

	confidence := domain.ConfidenceMedium
	if len(violations) > 0 {
		confidence = domain.ConfidenceLow
	}

	reasoning := fmt.Sprintf("Investing $%.2f in %s provides growth potential. Projected value: $%.2f in %d years.",
		amount, account, futureValue, horizonYears)
	if goal != nil {
		fit := "Aligns with your risk profile."
		if profile.Preferences.RiskTolerance == domain.RiskConservative {
			fit = "Consider your conservative risk tolerance."
		}
		reasoning = fmt.Sprintf("Investing $%.2f supports %s. Expected value in %d years: $%.2f (+%.1f%% gain). %s",
			amount, goal.Name, horizonYears, futureValue, projectedGain/amount*100, fit)
	}

	return domain.SimulationResult{
		Action: domain.Action{Type: domain.ActionInvest, Amount: amount, TargetAccountID: account, GoalID: goalID},
		ScenarioIfDo: domain.Scenario{
			AccountsAfter: after,
			GoalImpacts:   goalImpacts,
			BudgetImpacts: budgetImpacts,
			LiquidityImpact: fmt.Sprintf(
				"Moderate decrease in liquidity. Checking reduced by $%.2f. Investment can be sold but may lose short-term value.", amount),
			RiskImpact: fmt.Sprintf(
				"Moderate risk increase. $%.2f exposed to market volatility. Projected value in %d years: $%.2f (+$%.2f at 7%% annual return).",
				amount, horizonYears, futureValue, projectedGain),
			TimelineChanges: timeline,
		},
		ScenarioIfDont: domain.Scenario{
			AccountsAfter:   profile.Accounts,
			GoalImpacts:     zeroedImpacts(goalImpacts),
			BudgetImpacts:   budgetImpacts,
			LiquidityImpact: "No change to liquidity.",
			RiskImpact:      fmt.Sprintf("Opportunity cost: Potential $%.2f in gains not realized.", projectedGain),
			TimelineChanges: []string{},
		},
		Confidence: confidence,
		Reasoning:  reasoning,
		ValidationResult: domain.ValidationResult{
			Passed:               len(violations) == 0,
			ConstraintViolations: violations,
			Contradictions:       []string{},
			UncertaintySources: []string{
				"Market returns assumed at 7% historical average",
				"Does not account for market volatility or downturns",
				fmt.Sprintf("Projection is for %d year time horizon", horizonYears),
			},
			OverallConfidence: validationConfidence(violations, domain.ConfidenceMedium),
		},
	}
}

// SimulateSpend projects spending amount from checking against a category.
func (e *Engine) SimulateSpend(profile domain.Profile, amount float64, category string) domain.SimulationResult {
	after := profile.Accounts
	after.Checking -= amount

	var categoryImpact *domain.BudgetImpact
	budgetImpacts := make([]domain.BudgetImpact, 0, len(profile.SpendingCategories))
	for _, cat := range profile.SpendingCategories {
		spent := cat.CurrentSpent
		if cat.ID == category || cat.Name == category {
			spent += amount
		}
		impact := budgetImpact(cat, spent)
		budgetImpacts = append(budgetImpacts, impact)
		if cat.ID == category || cat.Name == category {
			categoryImpact = &impact
		}
	}

	// Top-priority goals appear with zeroed impacts: spending moves none of
	// them, but callers still want them on the ledger.
	var goalImpacts []domain.GoalImpact
	for _, g := range profile.Goals {
		if g.Priority <= 2 {
			goalImpacts = append(goalImpacts, domain.GoalImpact{
				GoalID:           g.ID,
				GoalName:         g.Name,
				TimeToGoalBefore: domain.TimeToGoalUnbounded,
				TimeToGoalAfter:  domain.TimeToGoalUnbounded,
			})
		}
	}

	violations := constraintViolations(profile, after)

	budgetWarning := ""
	contradictions := []string{}
	if categoryImpact != nil {
		switch categoryImpact.Status {
		case domain.BudgetOver:
			budgetWarning = fmt.Sprintf("Warning: This exceeds your %s budget by $%.2f",
				categoryImpact.CategoryName, math.Abs(categoryImpact.AmountRemaining))
			contradictions = append(contradictions, fmt.Sprintf("Spending exceeds %s budget", categoryImpact.CategoryName))
		case domain.BudgetWarning:
			budgetWarning = fmt.Sprintf("Caution: This uses %.1f%% of your %s budget",
				categoryImpact.PercentUsed, categoryImpact.CategoryName)
		}
	}

	timeline := []string{}
	if budgetWarning != "" {
		timeline = append(timeline, budgetWarning)
	}

	overallConfidence := domain.ConfidenceHigh
	if len(violations) > 0 || (categoryImpact != nil && categoryImpact.Status == domain.BudgetOver) {
		overallConfidence = domain.ConfidenceMedium
	}

	potentialGrowth := FutureValue(amount, 0, DefaultAnnualReturn, 5)
	reasoning := fmt.Sprintf("Spending $%.2f. Consider saving or investing for long-term goals instead.", amount)
	if categoryImpact != nil {
		note := budgetWarning
		if note == "" {
			note = fmt.Sprintf("Within budget (%.1f%% used).", categoryImpact.PercentUsed)
		}
		reasoning = fmt.Sprintf("Spending $%.2f on %s. %s Opportunity cost: Could grow to $%.2f if invested instead.",
			amount, categoryImpact.CategoryName, note, potentialGrowth)
	}

	return domain.SimulationResult{
		Action: domain.Action{Type: domain.ActionSpend, Amount: amount, Category: category},
		ScenarioIfDo: domain.Scenario{
			AccountsAfter:   after,
			GoalImpacts:     goalImpacts,
			BudgetImpacts:   budgetImpacts,
			LiquidityImpact: fmt.Sprintf("Checking balance reduced by $%.2f. Remaining: $%.2f.", amount, after.Checking),
			RiskImpact:      "No change in investment risk exposure.",
			TimelineChanges: timeline,
		},
		ScenarioIfDont: domain.Scenario{
			AccountsAfter:   profile.Accounts,
			GoalImpacts:     goalImpacts,
			BudgetImpacts:   currentBudgetImpacts(profile),
			LiquidityImpact: "No change to checking balance.",
			RiskImpact: fmt.Sprintf(
				"Opportunity: $%.2f could be saved or invested instead. If invested, potential value in 5 years: $%.2f.",
				amount, potentialGrowth),
			TimelineChanges: []string{},
		},
		Confidence: overallConfidence,
		Reasoning:  reasoning,
		ValidationResult: domain.ValidationResult{
			Passed:               len(violations) == 0,
			ConstraintViolations: violations,
			Contradictions:       contradictions,
			UncertaintySources:   []string{},
			OverallConfidence:    overallConfidence,
		},
	}
}

func findGoal(profile domain.Profile, goalID string) *domain.Goal {
	if goalID == "" {
		return nil
	}
	for i := range profile.Goals {
		if profile.Goals[i].ID == goalID {
			return &profile.Goals[i]
		}
	}
	return nil
}

func (e *Engine) goalImpact(goal domain.Goal, amountAdded, annualReturn float64) domain.GoalImpact {
	if goal.CurrentAmount >= goal.TargetAmount {
		return domain.GoalImpact{
			GoalID:      goal.ID,
			GoalName:    goal.Name,
			FutureValue: goal.CurrentAmount,
		}
	}
	if amountAdded == 0 {
		return domain.GoalImpact{
			GoalID:           goal.ID,
			GoalName:         goal.Name,
			TimeToGoalBefore: domain.TimeToGoalUnbounded,
			TimeToGoalAfter:  domain.TimeToGoalUnbounded,
		}
	}

	progressBefore := goal.CurrentAmount / goal.TargetAmount * 100
	progressAfter := (goal.CurrentAmount + amountAdded) / goal.TargetAmount * 100

	before := TimeToGoal(goal, 0, annualReturn)
	bumped := goal
	bumped.CurrentAmount += amountAdded
	after := TimeToGoal(bumped, 0, annualReturn)

	timeSaved := 0
	if before != domain.TimeToGoalUnbounded && after != domain.TimeToGoalUnbounded && before > after {
		timeSaved = before - after
	}

	futureValue := 0.0
	if annualReturn > 0 {
		years := goal.Deadline.Sub(e.now()).Hours() / (24 * 365)
		if years > 0 {
			futureValue = FutureValue(amountAdded, 0, annualReturn, years)
		}
	}

	return domain.GoalImpact{
		GoalID:            goal.ID,
		GoalName:          goal.Name,
		ProgressChangePct: math.Round((progressAfter-progressBefore)*10) / 10,
		TimeToGoalBefore:  before,
		TimeToGoalAfter:   after,
		TimeSaved:         timeSaved,
		FutureValue:       futureValue,
	}
}

// FutureValue compounds a principal plus monthly contributions at the given
// annual return over the given number of years.
func FutureValue(principal, monthlyContribution, annualReturn, years float64) float64 {
	monthlyRate := annualReturn / 12
	months := int(years * 12)
	value := principal
	for m := 0; m < months; m++ {
		value *= 1 + monthlyRate
		value += monthlyContribution
	}
	return domain.RoundCents(value)
}

// TimeToGoal returns whole months until the goal's target is reached at the
// given contribution rate and compounding return, or TimeToGoalUnbounded.
func TimeToGoal(goal domain.Goal, monthlyContribution, annualReturn float64) int {
	remaining := goal.TargetAmount - goal.CurrentAmount
	if remaining <= 0 {
		return 0
	}
	if monthlyContribution <= 0 && annualReturn <= 0 {
		return domain.TimeToGoalUnbounded
	}
	if annualReturn == 0 {
		return int(math.Ceil(remaining / monthlyContribution))
	}
	monthlyRate := annualReturn / 12
	balance := goal.CurrentAmount
	for months := 1; months <= maxProjectionMonths; months++ {
		balance = balance*(1+monthlyRate) + monthlyContribution
		if balance >= goal.TargetAmount {
			return months
		}
	}
	return domain.TimeToGoalUnbounded
}

func budgetImpact(cat domain.SpendingCategory, spent float64) domain.BudgetImpact {
	percentUsed := 0.0
	if cat.MonthlyBudget > 0 {
		percentUsed = spent / cat.MonthlyBudget * 100
	}
	return domain.BudgetImpact{
		CategoryID:      cat.ID,
		CategoryName:    cat.Name,
		PercentUsed:     percentUsed,
		AmountRemaining: cat.MonthlyBudget - spent,
		Status:          BudgetStatusFor(percentUsed),
	}
}

func currentBudgetImpacts(profile domain.Profile) []domain.BudgetImpact {
	out := make([]domain.BudgetImpact, 0, len(profile.SpendingCategories))
	for _, cat := range profile.SpendingCategories {
		out = append(out, budgetImpact(cat, cat.CurrentSpent))
	}
	return out
}

// BudgetStatusFor bands budget utilization: <50 under, <=80 good,
// <=100 warning, else over.
func BudgetStatusFor(percentUsed float64) domain.BudgetStatus {
	switch {
	case percentUsed < 50:
		return domain.BudgetUnder
	case percentUsed <= 80:
		return domain.BudgetGood
	case percentUsed <= 100:
		return domain.BudgetWarning
	default:
		return domain.BudgetOver
	}
}

func liquidityImpact(checkingBefore, checkingAfter, savingsBefore, savingsAfter float64) string {
	liquidBefore := checkingBefore + savingsBefore
	liquidAfter := checkingAfter + savingsAfter
	if liquidBefore == 0 {
		return "No significant change to liquid assets"
	}
	changePct := (liquidAfter - liquidBefore) / liquidBefore * 100
	switch {
	case changePct > 5:
		return fmt.Sprintf("High increase: Liquid assets increased by %.1f%%", changePct)
	case changePct < -10:
		return fmt.Sprintf("Significant decrease: Liquid assets decreased by %.1f%%", math.Abs(changePct))
	case changePct < -5:
		return fmt.Sprintf("Moderate decrease: Liquid assets decreased by %.1f%%", math.Abs(changePct))
	case changePct < 0:
		return fmt.Sprintf("Minor decrease: Liquid assets decreased by %.1f%%", math.Abs(changePct))
	default:
		return "No significant change to liquid assets"
	}
}

// constraintViolations checks the projected balances against every guardrail
// type the simulator understands.
func constraintViolations(profile domain.Profile, after domain.Accounts) []string {
	violations := []string{}
	for _, g := range profile.Preferences.Guardrails {
		switch g.Type {
		case domain.GuardrailMinBalance:
			if g.Threshold == nil {
				continue
			}
			switch g.AccountID {
			case domain.AccountChecking:
				if after.Checking < *g.Threshold {
					violations = append(violations, fmt.Sprintf(
						"%s - Checking balance would be $%.2f (minimum: $%.0f)", g.Rule, after.Checking, *g.Threshold))
				}
			case domain.AccountSavings:
				if after.Savings < *g.Threshold {
					violations = append(violations, fmt.Sprintf(
						"%s - Savings balance would be $%.2f (minimum: $%.0f)", g.Rule, after.Savings, *g.Threshold))
				}
			}
		case domain.GuardrailMaxInvestmentPct:
			if g.Threshold == nil {
				continue
			}
			total := after.Checking + after.Savings + after.TotalInvested()
			if total <= 0 {
				continue
			}
			pct := after.TotalInvested() / total
			if pct > *g.Threshold {
				violations = append(violations, fmt.Sprintf(
					"%s - Investment allocation would be %.1f%% (maximum: %.1f%%)", g.Rule, pct*100, *g.Threshold*100))
			}
		case domain.GuardrailProtectedAccount:
			if g.AccountID == domain.AccountSavings && after.Savings < profile.Accounts.Savings {
				violations = append(violations, fmt.Sprintf("%s - Cannot reduce savings balance", g.Rule))
			}
		}
	}
	return violations
}

func zeroedImpacts(impacts []domain.GoalImpact) []domain.GoalImpact {
	out := make([]domain.GoalImpact, len(impacts))
	for i, impact := range impacts {
		impact.ProgressChangePct = 0
		impact.TimeSaved = 0
		impact.FutureValue = 0
		out[i] = impact
	}
	return out
}

func validationConfidence(violations []string, clean domain.Confidence) domain.Confidence {
	if len(violations) > 0 {
		return domain.ConfidenceLow
	}
	return clean
}

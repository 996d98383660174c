package domain

import (
	"fmt"
	"math"
	"time"
)

// RiskTolerance is the user's investment risk appetite.
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "conservative"
	RiskModerate     RiskTolerance = "moderate"
	RiskAggressive   RiskTolerance = "aggressive"
)

// LiquidityPreference expresses how much the user values liquid assets.
type LiquidityPreference string

const (
	LiquidityLow    LiquidityPreference = "low"
	LiquidityMedium LiquidityPreference = "medium"
	LiquidityHigh   LiquidityPreference = "high"
)

// TimeHorizon classifies a goal's runway: short (<2yr), medium (2-5yr), long (5yr+).
type TimeHorizon string

const (
	HorizonShort  TimeHorizon = "short"
	HorizonMedium TimeHorizon = "medium"
	HorizonLong   TimeHorizon = "long"
)

// Frequency is how often a fixed expense recurs.
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyAnnual  Frequency = "annual"
)

// GuardrailType enumerates the supported guardrail rule kinds.
type GuardrailType string

const (
	GuardrailMinBalance       GuardrailType = "min_balance"
	GuardrailMaxInvestmentPct GuardrailType = "max_investment_pct"
	GuardrailProtectedAccount GuardrailType = "protected_account"
)

// AccountID identifies one of the five known account buckets.
type AccountID string

const (
	AccountChecking        AccountID = "checking"
	AccountSavings         AccountID = "savings"
	AccountTaxable         AccountID = "taxable"
	AccountRothIRA         AccountID = "rothIRA"
	AccountTraditional401k AccountID = "traditional401k"
)

// Profile is an immutable snapshot of a user's full financial state.
// All policy computations read a Profile and return fresh values; the only
// persisted mutation is the updated profile emitted by the planner.
type Profile struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	MonthlyIncome      float64            `json:"monthlyIncome"`
	Accounts           Accounts           `json:"accounts"`
	FixedExpenses      []FixedExpense     `json:"fixedExpenses"`
	SpendingCategories []SpendingCategory `json:"spendingCategories"`
	Goals              []Goal             `json:"goals"`
	Preferences        Preferences        `json:"preferences"`
	PriorityGoalID     string             `json:"priority_goal_id,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// Accounts holds the user's balances across account buckets.
type Accounts struct {
	Checking    float64            `json:"checking"`
	Savings     float64            `json:"savings"`
	Investments InvestmentAccounts `json:"investments"`
}

// InvestmentAccounts breaks down invested balances by account type.
type InvestmentAccounts struct {
	Taxable         float64 `json:"taxable"`
	RothIRA         float64 `json:"rothIRA"`
	Traditional401k float64 `json:"traditional401k"`
}

// Balance resolves a balance by account id. Unknown ids resolve to zero so
// that a malformed guardrail can never satisfy its own threshold by accident.
func (a Accounts) Balance(id AccountID) float64 {
	switch id {
	case AccountChecking:
		return a.Checking
	case AccountSavings:
		return a.Savings
	case AccountTaxable:
		return a.Investments.Taxable
	case AccountRothIRA:
		return a.Investments.RothIRA
	case AccountTraditional401k:
		return a.Investments.Traditional401k
	default:
		return 0
	}
}

// TotalInvested is the sum of all investment account balances.
func (a Accounts) TotalInvested() float64 {
	return a.Investments.Taxable + a.Investments.RothIRA + a.Investments.Traditional401k
}

// FixedExpense is a recurring non-discretionary expense.
type FixedExpense struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Frequency Frequency `json:"frequency"`
	DueDay    int       `json:"dueDay,omitempty"`
}

// MonthlyAmount normalizes the expense to a monthly equivalent.
func (e FixedExpense) MonthlyAmount() float64 {
	if e.Frequency == FrequencyAnnual {
		return e.Amount / 12
	}
	return e.Amount
}

// SpendingCategory is a discretionary budget bucket with spend tracking.
type SpendingCategory struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	MonthlyBudget float64 `json:"monthlyBudget"`
	CurrentSpent  float64 `json:"currentSpent"`
}

// Goal is a savings or investment target the user is working toward.
// CurrentAmount may exceed TargetAmount; the goal is then simply complete.
type Goal struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	TargetAmount  float64     `json:"targetAmount"`
	CurrentAmount float64     `json:"currentAmount"`
	Deadline      time.Time   `json:"deadline"`
	Priority      int         `json:"priority"`
	TimeHorizon   TimeHorizon `json:"timeHorizon"`
	IsPriority    bool        `json:"isPriority,omitempty"`
}

// Preferences holds the user's risk profile and safety rules.
type Preferences struct {
	RiskTolerance       RiskTolerance       `json:"riskTolerance"`
	LiquidityPreference LiquidityPreference `json:"liquidityPreference"`
	Guardrails          []Guardrail         `json:"guardrails"`
}

// Guardrail is a user-imposed safety rule. Only guardrails with both an
// account id and a numeric threshold are machine-checkable; the rest are
// advisory text carried along for display.
type Guardrail struct {
	ID        string        `json:"id"`
	Rule      string        `json:"rule"`
	Type      GuardrailType `json:"type"`
	AccountID AccountID     `json:"accountId,omitempty"`
	Threshold *float64      `json:"threshold,omitempty"`
}

// Checkable reports whether the guardrail can be evaluated mechanically.
func (g Guardrail) Checkable() bool {
	return g.Type == GuardrailMinBalance && g.AccountID != "" && g.Threshold != nil
}

// MinBalanceGuardrails returns the machine-checkable min_balance rules.
func (p Preferences) MinBalanceGuardrails() []Guardrail {
	var out []Guardrail
	for _, g := range p.Guardrails {
		if g.Checkable() {
			out = append(out, g)
		}
	}
	return out
}

// Clone returns a deep copy of the profile. Slices are copied so a caller
// holding the original snapshot never observes planner mutations.
func (p Profile) Clone() Profile {
	out := p
	out.FixedExpenses = append([]FixedExpense(nil), p.FixedExpenses...)
	out.SpendingCategories = append([]SpendingCategory(nil), p.SpendingCategories...)
	out.Goals = append([]Goal(nil), p.Goals...)
	out.Preferences.Guardrails = append([]Guardrail(nil), p.Preferences.Guardrails...)
	return out
}

// Validate checks the numeric fields every policy computation depends on.
// A failure wraps ErrInvalidProfile.
func (p Profile) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"monthlyIncome", p.MonthlyIncome},
		{"accounts.checking", p.Accounts.Checking},
		{"accounts.savings", p.Accounts.Savings},
		{"accounts.investments.taxable", p.Accounts.Investments.Taxable},
		{"accounts.investments.rothIRA", p.Accounts.Investments.RothIRA},
		{"accounts.investments.traditional401k", p.Accounts.Investments.Traditional401k},
	}
	for _, c := range checks {
		if !finite(c.value) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidProfile, c.name)
		}
	}
	for _, e := range p.FixedExpenses {
		if !finite(e.Amount) {
			return fmt.Errorf("%w: fixed expense %q amount is not a finite number", ErrInvalidProfile, e.Name)
		}
	}
	for _, c := range p.SpendingCategories {
		if !finite(c.MonthlyBudget) || !finite(c.CurrentSpent) {
			return fmt.Errorf("%w: spending category %q has a non-finite amount", ErrInvalidProfile, c.Name)
		}
	}
	for _, g := range p.Goals {
		if !finite(g.TargetAmount) || g.TargetAmount < 0 {
			return fmt.Errorf("%w: goal %q targetAmount must be a finite non-negative number", ErrInvalidProfile, g.Name)
		}
		if !finite(g.CurrentAmount) || g.CurrentAmount < 0 {
			return fmt.Errorf("%w: goal %q currentAmount must be a finite non-negative number", ErrInvalidProfile, g.Name)
		}
		if g.Deadline.IsZero() {
			return fmt.Errorf("%w: goal %q has no deadline", ErrInvalidProfile, g.Name)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// RoundCents rounds a money amount to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

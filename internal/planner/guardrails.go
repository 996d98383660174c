package planner

import (
	"fmt"

	"github.com/wealthsim/advisor/internal/domain"
)

// GuardrailCheck is the outcome of evaluating every machine-checkable rule
// plus the emergency liquidity floor.
type GuardrailCheck struct {
	Passed     bool     `json:"passed"`
	Violations []string `json:"violations"`
}

// checkGuardrails evaluates min_balance guardrails for checking and savings
// against the supplied balances. Guardrails on other accounts are advisory
// here; the decision policy handles them with simulated balances.
func (p *Planner) checkGuardrails(profile domain.Profile, checking, savings float64) GuardrailCheck {
	var violations []string
	for _, g := range profile.Preferences.MinBalanceGuardrails() {
		var balance float64
		switch g.AccountID {
		case domain.AccountChecking:
			balance = checking
		case domain.AccountSavings:
			balance = savings
		default:
			continue
		}
		if balance < *g.Threshold {
			violations = append(violations, fmt.Sprintf("%s (would be $%.0f)", g.Rule, balance))
		}
	}
	if checking < p.cfg.EmergencyLiquidityMin {
		violations = append(violations, fmt.Sprintf(
			"Emergency liquidity: checking would be $%.0f (min $%.0f)", checking, p.cfg.EmergencyLiquidityMin))
	}
	return GuardrailCheck{Passed: len(violations) == 0, Violations: violations}
}

package policy

import (
	"github.com/rs/zerolog/log"

	"github.com/wealthsim/advisor/internal/domain"
)

const overrideNote = " [Deterministic override: all min_balance thresholds met by simulation.]"

// ApplyGuardrailOverride corrects a guardrail false block using the
// simulated post-action balances. It is one-directional: a reported failure
// can become a pass when every machine-checkable min_balance threshold is
// met by the projected balance, but a reported pass is never revoked.
// Non-min_balance guardrail types are never inspected.
func ApplyGuardrailOverride(prefs domain.Preferences, sim domain.SimulationResult, guardrail GuardrailAnalysis) GuardrailAnalysis {
	rules := prefs.MinBalanceGuardrails()
	if len(rules) == 0 {
		return guardrail
	}

	for _, rule := range rules {
		projected := sim.ScenarioIfDo.AccountsAfter.Balance(rule.AccountID)
		if projected < *rule.Threshold {
			return guardrail
		}
	}

	if !guardrail.CanProceed {
		log.Info().
			Int("rules", len(rules)).
			Msg("guardrail verdict overridden: simulated balances meet all min_balance thresholds")
	}

	corrected := guardrail
	corrected.Violated = false
	corrected.CanProceed = true
	corrected.ComplianceSummary = guardrail.ComplianceSummary + overrideNote
	return corrected
}

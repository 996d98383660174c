package policy

import (
	"github.com/rs/zerolog/log"

	"github.com/wealthsim/advisor/internal/domain"
)

// Decision is the final call on whether the user should take the action.
type Decision string

const (
	DecisionBlocked            Decision = "blocked"
	DecisionDoNotProceed       Decision = "do_not_proceed"
	DecisionProceedWithCaution Decision = "proceed_with_caution"
	DecisionProceed            Decision = "proceed"
)

// Consensus classifies how the two domain agents relate to each other.
type Consensus string

const (
	ConsensusBlocked   Consensus = "blocked"
	ConsensusUnanimous Consensus = "unanimous"
	ConsensusDivided   Consensus = "divided"
)

// AgentAnalysis is one domain agent's stance plus its narrative.
type AgentAnalysis struct {
	Recommendation Recommendation `json:"recommendation"`
	Reasoning      string         `json:"reasoning,omitempty"`
	KeyPoints      []string       `json:"keyPoints,omitempty"`
}

// GuardrailAnalysis is the guardrail agent's verdict. The deterministic
// override may rewrite Violated, CanProceed, and ComplianceSummary, but
// never the Violations list.
type GuardrailAnalysis struct {
	Violated          bool     `json:"violated"`
	CanProceed        bool     `json:"canProceed"`
	Violations        []string `json:"violations"`
	ComplianceSummary string   `json:"complianceSummary"`
}

// Outcome is the combined result of the decision policy.
type Outcome struct {
	Decision  Decision          `json:"decision"`
	Consensus Consensus         `json:"consensus"`
	Guardrail GuardrailAnalysis `json:"guardrail"`
}

// Decide combines the (already overridden) guardrail verdict with the two
// agent stances. Pure and total over valid labels.
func Decide(guardrail GuardrailAnalysis, budgeting, investment Recommendation) Decision {
	switch {
	case !guardrail.CanProceed:
		return DecisionBlocked
	case opposes(budgeting) || opposes(investment):
		return DecisionDoNotProceed
	case cautionsOrOpposes(budgeting) || cautionsOrOpposes(investment):
		return DecisionProceedWithCaution
	case approves(budgeting) && approves(investment):
		return DecisionProceed
	default:
		return DecisionProceedWithCaution
	}
}

// ComputeConsensus classifies agent agreement, independently of Decide.
func ComputeConsensus(guardrail GuardrailAnalysis, budgeting, investment Recommendation) Consensus {
	switch {
	case !guardrail.CanProceed:
		return ConsensusBlocked
	case approvingForConsensus(budgeting) && approvingForConsensus(investment):
		return ConsensusUnanimous
	case opposingForConsensus(budgeting) && opposingForConsensus(investment):
		return ConsensusDivided
	case approvingForConsensus(budgeting) != approvingForConsensus(investment):
		return ConsensusDivided
	default:
		return ConsensusUnanimous
	}
}

// Evaluate applies the guardrail override, then computes the decision and
// consensus from the corrected verdict.
func Evaluate(prefs domain.Preferences, sim domain.SimulationResult, guardrail GuardrailAnalysis, budgeting, investment AgentAnalysis) Outcome {
	corrected := ApplyGuardrailOverride(prefs, sim, guardrail)

	decision := Decide(corrected, budgeting.Recommendation, investment.Recommendation)
	consensus := ComputeConsensus(corrected, budgeting.Recommendation, investment.Recommendation)

	log.Debug().
		Str("decision", string(decision)).
		Str("consensus", string(consensus)).
		Bool("guardrail_can_proceed", corrected.CanProceed).
		Str("budgeting", string(budgeting.Recommendation)).
		Str("investment", string(investment.Recommendation)).
		Msg("decision computed")

	return Outcome{Decision: decision, Consensus: consensus, Guardrail: corrected}
}

// AppendDecisionLine appends the fixed sentence for the decision to an
// externally produced summary. The narrative never feeds back into the
// decision itself.
func AppendDecisionLine(summary string, decision Decision) string {
	var line string
	switch decision {
	case DecisionBlocked:
		line = "Final decision: blocked by your guardrails."
	case DecisionDoNotProceed:
		line = "Final decision: do not proceed."
	case DecisionProceedWithCaution:
		line = "Final decision: proceed with caution."
	default:
		line = "Final decision: proceed."
	}
	if summary == "" {
		return line
	}
	return summary + "\n\n" + line
}

package planner

import (
	"fmt"
	"strings"

	"github.com/wealthsim/advisor/internal/feasibility"
)

// buildExplanation renders the deterministic multi-paragraph rationale:
// why the winner won, why the rest did not, what moves were accepted (or
// which condition blocked them), and the standing priority update.
func buildExplanation(selected feasibility.Score, rankings []feasibility.Score, accepted []Reallocation, violations []string) string {
	var paragraphs []string

	paragraphs = append(paragraphs, fmt.Sprintf(
		"**Why %q was chosen:** %s has the highest feasibility score (%.2f) right now—closest to completion with a manageable required monthly contribution ($%.0f/mo) and %d months left.",
		selected.GoalName, selected.GoalName, selected.Score, selected.RequiredMonthlyContribution, selected.MonthsRemaining))

	var others []string
	for _, r := range rankings {
		if r.GoalID == selected.GoalID {
			continue
		}
		line := fmt.Sprintf("%s (score %.2f)", r.GoalName, r.Score)
		if r.Bottleneck != "" {
			line += ": " + r.Bottleneck
		}
		others = append(others, line)
	}
	if len(others) > 0 {
		paragraphs = append(paragraphs, "**Why others were deprioritized:** "+strings.Join(others, ". "))
	}

	if len(accepted) > 0 {
		var moves []string
		for _, r := range accepted {
			moves = append(moves, fmt.Sprintf("$%.2f from %s to %s", r.Amount, r.From, r.To))
		}
		paragraphs = append(paragraphs, fmt.Sprintf(
			"**Capital reallocations:** %s. These are recommendations; apply them in the app if you want.",
			strings.Join(moves, "; ")))
	}

	if len(violations) > 0 {
		paragraphs = append(paragraphs, fmt.Sprintf(
			"**Guardrails:** No automatic reallocations were applied because: %s.",
			strings.Join(violations, "; ")))
	}

	paragraphs = append(paragraphs, fmt.Sprintf(
		"**What changed:** Your priority goal is now set to %q. Future suggestions and chat will favor this goal until you change it.",
		selected.GoalName))

	return strings.Join(paragraphs, "\n\n")
}

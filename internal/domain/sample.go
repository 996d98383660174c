package domain

import "time"

// SampleProfile returns the demo profile used by the CLI when no profile
// file is given and by tests that need a fully populated snapshot. Deadlines
// are anchored to the supplied time so scoring stays deterministic.
func SampleProfile(now time.Time) Profile {
	minChecking := 1000.0
	return Profile{
		ID:            "demo-user",
		Name:          "Demo User",
		MonthlyIncome: 6500,
		Accounts: Accounts{
			Checking: 6132.89,
			Savings:  4489.02,
			Investments: InvestmentAccounts{
				Taxable:         12404.65,
				RothIRA:         18654.12,
				Traditional401k: 45231.78,
			},
		},
		FixedExpenses: []FixedExpense{
			{ID: "exp-rent", Name: "Rent", Amount: 2800, Frequency: FrequencyMonthly, DueDay: 1},
			{ID: "exp-insurance", Name: "Insurance", Amount: 2400, Frequency: FrequencyAnnual},
		},
		SpendingCategories: []SpendingCategory{
			{ID: "cat-groceries", Name: "Groceries", MonthlyBudget: 900, CurrentSpent: 650},
			{ID: "cat-dining", Name: "Dining", MonthlyBudget: 500, CurrentSpent: 420},
			{ID: "cat-entertainment", Name: "Entertainment", MonthlyBudget: 298, CurrentSpent: 150},
			{ID: "cat-transport", Name: "Transport", MonthlyBudget: 1000, CurrentSpent: 800},
		},
		Goals: []Goal{
			{
				ID:            "goal-emergency",
				Name:          "Emergency Fund",
				TargetAmount:  15000,
				CurrentAmount: 4489.02,
				Deadline:      now.AddDate(0, 23, 0),
				Priority:      1,
				TimeHorizon:   HorizonMedium,
			},
			{
				ID:            "goal-house",
				Name:          "House Down Payment",
				TargetAmount:  60000,
				CurrentAmount: 8200,
				Deadline:      now.AddDate(0, 60, 0),
				Priority:      2,
				TimeHorizon:   HorizonLong,
			},
		},
		Preferences: Preferences{
			RiskTolerance:       RiskModerate,
			LiquidityPreference: LiquidityMedium,
			Guardrails: []Guardrail{
				{
					ID:        "guard-checking",
					Rule:      "Never let checking drop below $1,000",
					Type:      GuardrailMinBalance,
					AccountID: AccountChecking,
					Threshold: &minChecking,
				},
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

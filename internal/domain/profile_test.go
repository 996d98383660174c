package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestAccountsBalance(t *testing.T) {
	accounts := Accounts{
		Checking: 100,
		Savings:  200,
		Investments: InvestmentAccounts{
			Taxable:         300,
			RothIRA:         400,
			Traditional401k: 500,
		},
	}

	tests := []struct {
		id   AccountID
		want float64
	}{
		{AccountChecking, 100},
		{AccountSavings, 200},
		{AccountTaxable, 300},
		{AccountRothIRA, 400},
		{AccountTraditional401k, 500},
		{AccountID("brokerage"), 0},
		{AccountID(""), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, accounts.Balance(tt.id), "id=%q", tt.id)
	}
}

func TestFixedExpenseMonthlyAmount(t *testing.T) {
	monthly := FixedExpense{Amount: 2800, Frequency: FrequencyMonthly}
	assert.Equal(t, 2800.0, monthly.MonthlyAmount())

	annual := FixedExpense{Amount: 2400, Frequency: FrequencyAnnual}
	assert.Equal(t, 200.0, annual.MonthlyAmount())
}

func TestGuardrailCheckable(t *testing.T) {
	threshold := 1000.0
	full := Guardrail{Type: GuardrailMinBalance, AccountID: AccountChecking, Threshold: &threshold}
	assert.True(t, full.Checkable())

	assert.False(t, Guardrail{Type: GuardrailMinBalance, AccountID: AccountChecking}.Checkable())
	assert.False(t, Guardrail{Type: GuardrailMinBalance, Threshold: &threshold}.Checkable())
	assert.False(t, Guardrail{Type: GuardrailMaxInvestmentPct, AccountID: AccountChecking, Threshold: &threshold}.Checkable())
}

func TestMinBalanceGuardrails(t *testing.T) {
	threshold := 1000.0
	prefs := Preferences{Guardrails: []Guardrail{
		{ID: "g1", Type: GuardrailMinBalance, AccountID: AccountChecking, Threshold: &threshold},
		{ID: "g2", Type: GuardrailMinBalance},
		{ID: "g3", Type: GuardrailProtectedAccount, AccountID: AccountSavings},
	}}

	checkable := prefs.MinBalanceGuardrails()
	require.Len(t, checkable, 1)
	assert.Equal(t, "g1", checkable[0].ID)
}

func TestProfileCloneIndependence(t *testing.T) {
	original := SampleProfile(profileNow)
	clone := original.Clone()

	clone.Goals[0].IsPriority = true
	clone.SpendingCategories[0].CurrentSpent = 0
	clone.Preferences.Guardrails[0].Rule = "changed"
	clone.FixedExpenses[0].Amount = 1

	assert.False(t, original.Goals[0].IsPriority)
	assert.Equal(t, 650.0, original.SpendingCategories[0].CurrentSpent)
	assert.Equal(t, "Never let checking drop below $1,000", original.Preferences.Guardrails[0].Rule)
	assert.Equal(t, 2800.0, original.FixedExpenses[0].Amount)
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Profile)
	}{
		{"nan income", func(p *Profile) { p.MonthlyIncome = math.NaN() }},
		{"infinite checking", func(p *Profile) { p.Accounts.Checking = math.Inf(1) }},
		{"nan expense", func(p *Profile) { p.FixedExpenses[0].Amount = math.NaN() }},
		{"nan budget", func(p *Profile) { p.SpendingCategories[0].MonthlyBudget = math.NaN() }},
		{"negative target", func(p *Profile) { p.Goals[0].TargetAmount = -1 }},
		{"negative current", func(p *Profile) { p.Goals[0].CurrentAmount = -1 }},
		{"missing deadline", func(p *Profile) { p.Goals[0].Deadline = time.Time{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := SampleProfile(profileNow)
			tt.mutate(&profile)
			assert.ErrorIs(t, profile.Validate(), ErrInvalidProfile)
		})
	}

	assert.NoError(t, SampleProfile(profileNow).Validate())
}

func TestGoalOverTargetIsValid(t *testing.T) {
	profile := SampleProfile(profileNow)
	profile.Goals[0].CurrentAmount = profile.Goals[0].TargetAmount + 500
	assert.NoError(t, profile.Validate())
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 457.0, RoundCents(456.99913))
	assert.Equal(t, 0.59, RoundCents(0.5899467))
	assert.Equal(t, 100.0, RoundCents(100))
	assert.Equal(t, -2.34, RoundCents(-2.344))
}

func TestSampleProfileSurplusArithmetic(t *testing.T) {
	profile := SampleProfile(profileNow)

	fixed := 0.0
	for _, e := range profile.FixedExpenses {
		fixed += e.MonthlyAmount()
	}
	budgeted := 0.0
	for _, c := range profile.SpendingCategories {
		budgeted += c.MonthlyBudget
	}

	assert.Equal(t, 3000.0, fixed)
	assert.Equal(t, 2698.0, budgeted)
	assert.Equal(t, 802.0, profile.MonthlyIncome-fixed-budgeted)
}

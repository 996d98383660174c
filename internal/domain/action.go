package domain

// ActionType enumerates the money movements the simulator understands.
type ActionType string

const (
	ActionSave   ActionType = "save"
	ActionInvest ActionType = "invest"
	ActionSpend  ActionType = "spend"
)

// Action is a potential money movement under evaluation.
type Action struct {
	Type            ActionType `json:"type"`
	Amount          float64    `json:"amount"`
	TargetAccountID AccountID  `json:"targetAccountId,omitempty"`
	GoalID          string     `json:"goalId,omitempty"`
	Category        string     `json:"category,omitempty"`
}

// Confidence grades how much trust to place in a simulation or validation.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// BudgetStatus bands a category's budget utilization.
type BudgetStatus string

const (
	BudgetUnder   BudgetStatus = "under"
	BudgetGood    BudgetStatus = "good"
	BudgetWarning BudgetStatus = "warning"
	BudgetOver    BudgetStatus = "over"
)

// TimeToGoalUnbounded marks a goal that is never reached at the simulated
// contribution rate.
const TimeToGoalUnbounded = -1

// GoalImpact describes how an action moves a single goal.
type GoalImpact struct {
	GoalID            string  `json:"goalId"`
	GoalName          string  `json:"goalName"`
	ProgressChangePct float64 `json:"progressChangePct"`
	TimeToGoalBefore  int     `json:"timeToGoalBefore"`
	TimeToGoalAfter   int     `json:"timeToGoalAfter"`
	TimeSaved         int     `json:"timeSaved"`
	FutureValue       float64 `json:"futureValue,omitempty"`
}

// BudgetImpact describes how an action lands against one spending category.
type BudgetImpact struct {
	CategoryID      string       `json:"categoryId"`
	CategoryName    string       `json:"categoryName"`
	PercentUsed     float64      `json:"percentUsed"`
	AmountRemaining float64      `json:"amountRemaining"`
	Status          BudgetStatus `json:"status"`
}

// Scenario is one projected outcome branch (do, or don't).
type Scenario struct {
	AccountsAfter   Accounts       `json:"accountsAfter"`
	GoalImpacts     []GoalImpact   `json:"goalImpacts"`
	BudgetImpacts   []BudgetImpact `json:"budgetImpacts"`
	LiquidityImpact string         `json:"liquidityImpact"`
	RiskImpact      string         `json:"riskImpact"`
	TimelineChanges []string       `json:"timelineChanges"`
}

// ValidationResult captures constraint checks for a simulated action.
type ValidationResult struct {
	Passed               bool       `json:"passed"`
	ConstraintViolations []string   `json:"constraintViolations"`
	Contradictions       []string   `json:"contradictions"`
	UncertaintySources   []string   `json:"uncertaintySources"`
	OverallConfidence    Confidence `json:"overallConfidence"`
}

// SimulationResult is the full projected effect of one action. The decision
// policy reads only ScenarioIfDo.AccountsAfter; everything else is narration
// for the surrounding product.
type SimulationResult struct {
	Action           Action           `json:"action"`
	ScenarioIfDo     Scenario         `json:"scenarioIfDo"`
	ScenarioIfDont   Scenario         `json:"scenarioIfDont"`
	Confidence       Confidence       `json:"confidence"`
	Reasoning        string           `json:"reasoning"`
	ValidationResult ValidationResult `json:"validationResult"`
}

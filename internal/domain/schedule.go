package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoalContribution is one goal's share of a scheduled payment.
type GoalContribution struct {
	GoalID         uuid.UUID
	GoalName       string
	Amount         decimal.Decimal
	IsGoalStart    bool // first payment that funds this goal
	IsGoalComplete bool // payment that exhausts this goal's remaining amount
}

// ScheduledPayment is one future payment date with its per-goal contributions.
type ScheduledPayment struct {
	PaymentNumber    int
	Date             time.Time
	Contributions    []GoalContribution
	TotalAmount      decimal.Decimal
	CumulativeAmount decimal.Decimal
}

// SchedulePlan is the full output of fixed-budget schedule generation.
type SchedulePlan struct {
	Schedule        []ScheduledPayment
	IsLeveled       bool // budget covers the worst-case deadline constraint
	MinimumRequired decimal.Decimal
	GoalRemaining   map[uuid.UUID]decimal.Decimal // unfunded remainder after the schedule
	MonthlyBudget   decimal.Decimal
	Currency        string
}

// ScheduledGoalBlock summarizes a goal's contiguous funding run for timeline
// display.
type ScheduledGoalBlock struct {
	GoalID       uuid.UUID
	GoalName     string
	FirstPayment int
	LastPayment  int
	StartDate    time.Time
	EndDate      time.Time
	TotalAmount  decimal.Decimal
	PaymentCount int
}

// InfeasibleGoal describes a goal whose deadline cannot be met under a budget.
type InfeasibleGoal struct {
	GoalID            uuid.UUID
	GoalName          string
	RequiredPerPeriod decimal.Decimal
	Shortfall         decimal.Decimal
	MonthsRemaining   int
}

// FeasibilityResult reports whether a budget can satisfy every goal deadline,
// with quick-fix suggestions when it cannot.
type FeasibilityResult struct {
	IsFeasible      bool
	Budget          decimal.Decimal
	MinimumRequired decimal.Decimal
	InfeasibleGoals []InfeasibleGoal
	Suggestions     []Suggestion
}

// Suggestion is a closed set of quick fixes for an infeasible plan. Consumers
// switch over the concrete types; the marker method keeps the set closed.
type Suggestion interface {
	suggestion()
}

// ExtendDeadlineSuggestion proposes pushing a goal's deadline out.
type ExtendDeadlineSuggestion struct {
	GoalID uuid.UUID
	Months int
}

// ReduceTargetSuggestion proposes lowering a goal's target amount, expressed
// in the goal's native currency.
type ReduceTargetSuggestion struct {
	GoalID    uuid.UUID
	NewTarget decimal.Decimal
}

// EditGoalSuggestion is the generic "review this goal" fallback.
type EditGoalSuggestion struct {
	GoalID uuid.UUID
}

// IncreaseBudgetSuggestion proposes raising the budget to the feasible floor.
type IncreaseBudgetSuggestion struct {
	MinimumRequired decimal.Decimal
}

func (ExtendDeadlineSuggestion) suggestion() {}
func (ReduceTargetSuggestion) suggestion()   {}
func (EditGoalSuggestion) suggestion()       {}
func (IncreaseBudgetSuggestion) suggestion() {}

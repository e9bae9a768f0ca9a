package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequirementStatus classifies how a goal is tracking against its deadline
type RequirementStatus string

const (
	StatusCompleted RequirementStatus = "COMPLETED"
	StatusCritical  RequirementStatus = "CRITICAL"
	StatusAttention RequirementStatus = "ATTENTION"
	StatusOnTrack   RequirementStatus = "ON_TRACK"
)

// MonthlyRequirement is the computed per-payment-period amount needed to hit
// a goal's deadline. It is derived on every planning refresh and never
// persisted directly; it is the input to the plan synchronizer.
type MonthlyRequirement struct {
	GoalID          uuid.UUID
	GoalName        string
	Currency        string
	TargetAmount    decimal.Decimal
	CurrentTotal    decimal.Decimal
	RemainingAmount decimal.Decimal
	MonthsRemaining int
	RequiredMonthly decimal.Decimal
	Progress        decimal.Decimal // current/target, capped at 1
	Deadline        time.Time
	Status          RequirementStatus
}

// PlanState tracks whether a month's planning is still open for adjustment
type PlanState string

const (
	PlanDraft     PlanState = "DRAFT"
	PlanExecuting PlanState = "EXECUTING"
	PlanClosed    PlanState = "CLOSED"
)

// MonthlyGoalPlan is the persisted per-goal-per-month planning row.
// Computed fields are refreshed on every sync; the user override fields
// (CustomAmount, IsProtected, IsSkipped) survive recalculation.
type MonthlyGoalPlan struct {
	ID              uuid.UUID
	GoalID          uuid.UUID
	MonthLabel      string // "YYYY-MM"
	RequiredMonthly decimal.Decimal
	RemainingAmount decimal.Decimal
	MonthsRemaining int
	Currency        string
	Status          RequirementStatus
	State           PlanState
	CustomAmount    *decimal.Decimal // nullable user override
	IsProtected     bool
	IsSkipped       bool // mutually exclusive with IsProtected
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EffectiveAmount is the amount the user is expected to contribute this month:
// 0 when skipped, the custom override when set, else the computed requirement.
func (p *MonthlyGoalPlan) EffectiveAmount() decimal.Decimal {
	if p.IsSkipped {
		return decimal.Zero
	}
	if p.CustomAmount != nil {
		return *p.CustomAmount
	}
	return p.RequiredMonthly
}

package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RedistributionStrategy selects how a flex adjustment's net excess is
// distributed among eligible flexible goals
type RedistributionStrategy string

const (
	StrategyBalanced          RedistributionStrategy = "BALANCED"
	StrategyPrioritizeUrgent  RedistributionStrategy = "PRIORITIZE_URGENT"
	StrategyPrioritizeLargest RedistributionStrategy = "PRIORITIZE_LARGEST"
	StrategyMinimizeRisk      RedistributionStrategy = "MINIMIZE_RISK"
)

// RiskLevel grades the impact of an adjustment on a single goal
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// ImpactAnalysis describes what an adjustment does to one goal.
// EstimatedDelayMonths is only computed for net reductions.
type ImpactAnalysis struct {
	ChangeAmount         decimal.Decimal
	ChangePercentage     float64
	EstimatedDelayMonths int
	Risk                 RiskLevel
}

// AdjustedRequirement wraps a MonthlyRequirement with the outcome of a flex
// adjustment. It is a pure output of the adjustment engine and never
// persisted; only the custom amount derived from it is stored via the plan.
type AdjustedRequirement struct {
	Requirement          MonthlyRequirement
	AdjustedAmount       decimal.Decimal
	Reason               string
	IsProtected          bool
	IsSkipped            bool
	AdjustmentFactor     float64
	RedistributionAmount decimal.Decimal
	Impact               ImpactAnalysis
}

// FlexSimulation is the aggregate report over a whole adjustment run.
type FlexSimulation struct {
	TotalOriginal  decimal.Decimal
	TotalAdjusted  decimal.Decimal
	TotalSavings   decimal.Decimal
	RiskByGoal     map[uuid.UUID]RiskLevel
	DelayByGoal    map[uuid.UUID]int
	Redistribution RedistributionSummary
}

// RedistributionSummary totals the money moved by a redistribution pass.
type RedistributionSummary struct {
	TotalReduced       decimal.Decimal
	TotalRedistributed decimal.Decimal
	AffectedGoals      int
}

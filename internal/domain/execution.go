package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExecutionStatus is the lifecycle state of a tracked month
type ExecutionStatus string

const (
	ExecutionDraft     ExecutionStatus = "DRAFT"
	ExecutionExecuting ExecutionStatus = "EXECUTING"
	ExecutionClosed    ExecutionStatus = "CLOSED"
)

// UndoWindow is the grace period during which starting or completing an
// execution can be reversed.
const UndoWindow = 24 * time.Hour

// ExecutionRecord tracks one month's execution lifecycle. At most one record
// may be EXECUTING at a time.
type ExecutionRecord struct {
	ID                 uuid.UUID
	MonthLabel         string
	Status             ExecutionStatus
	StartedAtMillis    int64
	ClosedAtMillis     int64
	CanUndoUntilMillis int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CanUndoStart reports whether starting this execution can still be reversed.
func (r *ExecutionRecord) CanUndoStart(now time.Time) bool {
	return r.Status == ExecutionExecuting &&
		now.UnixMilli() < r.StartedAtMillis+UndoWindow.Milliseconds()
}

// CanUndoCompletion reports whether the completion can still be reversed.
func (r *ExecutionRecord) CanUndoCompletion(now time.Time) bool {
	return r.Status == ExecutionClosed && now.UnixMilli() < r.CanUndoUntilMillis
}

// GoalSnapshot freezes a goal's funding state at the moment execution starts.
type GoalSnapshot struct {
	ID             uuid.UUID
	RecordID       uuid.UUID
	GoalID         uuid.UUID
	GoalName       string
	Currency       string
	BaselineFunded decimal.Decimal
	PlannedAmount  decimal.Decimal
}

// GoalExecutionProgress compares a goal's live funded amount against the
// frozen snapshot taken at session start.
type GoalExecutionProgress struct {
	Snapshot      GoalSnapshot
	CurrentFunded decimal.Decimal
	Contributed   decimal.Decimal // current minus baseline, floored at 0
	IsFulfilled   bool
	ProgressPct   decimal.Decimal // 0-100, capped at 100
}

// ExecutionSession is the read-time view of a month in progress.
type ExecutionSession struct {
	Record           ExecutionRecord
	Entries          []GoalExecutionProgress
	TotalPlanned     decimal.Decimal
	TotalContributed decimal.Decimal
	ProgressPct      decimal.Decimal
}

// CompletedExecution is the frozen per-goal outcome written at completion.
// Each row carries its own undo deadline for audit; the record-level deadline
// is the one that gates the undo.
type CompletedExecution struct {
	ID                 uuid.UUID
	RecordID           uuid.UUID
	GoalID             uuid.UUID
	MonthLabel         string
	BaselineFunded     decimal.Decimal
	RequiredAmount     decimal.Decimal
	ActualFunded       decimal.Decimal
	CanUndoUntilMillis int64
}

// AllocationHistory is the audit entry written per goal at completion.
type AllocationHistory struct {
	ID               uuid.UUID
	RecordID         uuid.UUID
	GoalID           uuid.UUID
	MonthLabel       string
	Amount           decimal.Decimal
	RecordedAtMillis int64
}

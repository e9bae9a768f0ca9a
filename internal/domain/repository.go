package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoalRepository defines the interface for goal persistence operations
type GoalRepository interface {
	// GetByID retrieves a goal by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Goal, error)

	// Create creates a new goal
	Create(ctx context.Context, goal *Goal) error

	// Update persists changes to an existing goal
	Update(ctx context.Context, goal *Goal) error

	// List retrieves goals, optionally filtered by lifecycle status.
	// If statusFilter is empty, returns all goals.
	List(ctx context.Context, statusFilter LifecycleStatus) ([]*Goal, error)
}

// AssetRepository defines the interface for asset persistence operations
type AssetRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)
	Create(ctx context.Context, asset *Asset) error
	List(ctx context.Context) ([]*Asset, error)
}

// AssetTransactionRepository defines the interface for manual balance entries
type AssetTransactionRepository interface {
	Create(ctx context.Context, tx *AssetTransaction) error

	// SumByAsset returns the signed sum of all manual entries for an asset.
	SumByAsset(ctx context.Context, assetID uuid.UUID) (decimal.Decimal, error)
}

// AllocationRepository defines the interface for allocation persistence
type AllocationRepository interface {
	Create(ctx context.Context, alloc *Allocation) error
	Update(ctx context.Context, alloc *Allocation) error

	// ListByGoal retrieves all allocations funding a goal
	ListByGoal(ctx context.Context, goalID uuid.UUID) ([]Allocation, error)

	// ListByAsset retrieves all allocations drawing on an asset,
	// across every goal sharing it
	ListByAsset(ctx context.Context, assetID uuid.UUID) ([]Allocation, error)
}

// PlanRepository defines the interface for monthly goal plan persistence
type PlanRepository interface {
	// GetByGoalAndMonth retrieves the plan row for one goal in one month
	GetByGoalAndMonth(ctx context.Context, goalID uuid.UUID, monthLabel string) (*MonthlyGoalPlan, error)

	// ListByMonth retrieves all plan rows for a month label
	ListByMonth(ctx context.Context, monthLabel string) ([]*MonthlyGoalPlan, error)

	Create(ctx context.Context, plan *MonthlyGoalPlan) error
	Update(ctx context.Context, plan *MonthlyGoalPlan) error
}

// ExecutionRepository defines the interface for execution records, start
// snapshots, completion rows and audit history
type ExecutionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ExecutionRecord, error)

	// GetExecuting retrieves the single EXECUTING record, or ErrNotFound.
	GetExecuting(ctx context.Context) (*ExecutionRecord, error)

	// Create inserts the record together with its goal snapshots in a
	// single database transaction; a failure leaves no rows behind.
	Create(ctx context.Context, record *ExecutionRecord, snapshots []GoalSnapshot) error
	Update(ctx context.Context, record *ExecutionRecord) error

	// SaveCompletion closes the record and inserts its completion and
	// history rows in a single database transaction.
	SaveCompletion(ctx context.Context, record *ExecutionRecord, completed []CompletedExecution, history []AllocationHistory) error

	ListSnapshots(ctx context.Context, recordID uuid.UUID) ([]GoalSnapshot, error)
	DeleteSnapshots(ctx context.Context, recordID uuid.UUID) error

	ListCompleted(ctx context.Context, recordID uuid.UUID) ([]CompletedExecution, error)
	DeleteCompleted(ctx context.Context, recordID uuid.UUID) error

	DeleteHistory(ctx context.Context, recordID uuid.UUID) error
}

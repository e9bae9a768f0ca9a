package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/goalflow-backend/internal/domain"
)

// allocationRepository implements domain.AllocationRepository
type allocationRepository struct {
	db *DB
}

// NewAllocationRepository creates a new allocation repository
func NewAllocationRepository(db *DB) domain.AllocationRepository {
	return &allocationRepository{db: db}
}

// Create creates a new allocation
func (r *allocationRepository) Create(ctx context.Context, alloc *domain.Allocation) error {
	query := `
		INSERT INTO allocations (id, asset_id, goal_id, amount)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, alloc.ID, alloc.AssetID, alloc.GoalID, alloc.Amount.String())
	if err != nil {
		return fmt.Errorf("failed to create allocation: %w", err)
	}
	return nil
}

// Update persists changes to an existing allocation
func (r *allocationRepository) Update(ctx context.Context, alloc *domain.Allocation) error {
	query := `
		UPDATE allocations
		SET asset_id = $2, goal_id = $3, amount = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, alloc.ID, alloc.AssetID, alloc.GoalID, alloc.Amount.String())
	if err != nil {
		return fmt.Errorf("failed to update allocation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return fmt.Errorf("allocation %s: %w", alloc.ID, domain.ErrNotFound)
	}
	return nil
}

// ListByGoal retrieves all allocations funding a goal
func (r *allocationRepository) ListByGoal(ctx context.Context, goalID uuid.UUID) ([]domain.Allocation, error) {
	return r.list(ctx, `goal_id`, goalID)
}

// ListByAsset retrieves all allocations drawing on an asset
func (r *allocationRepository) ListByAsset(ctx context.Context, assetID uuid.UUID) ([]domain.Allocation, error) {
	return r.list(ctx, `asset_id`, assetID)
}

func (r *allocationRepository) list(ctx context.Context, column string, id uuid.UUID) ([]domain.Allocation, error) {
	query := fmt.Sprintf(`
		SELECT id, asset_id, goal_id, amount
		FROM allocations
		WHERE %s = $1
	`, column)

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations by %s: %w", column, err)
	}
	defer rows.Close()

	allocations := make([]domain.Allocation, 0)
	for rows.Next() {
		var alloc domain.Allocation
		var amountStr string
		if err := rows.Scan(&alloc.ID, &alloc.AssetID, &alloc.GoalID, &amountStr); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse allocation amount: %w", err)
		}
		alloc.Amount = amount
		allocations = append(allocations, alloc)
	}
	return allocations, rows.Err()
}

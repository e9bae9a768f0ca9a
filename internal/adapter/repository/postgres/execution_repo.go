package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/goalflow-backend/internal/domain"
)

// executionRepository implements domain.ExecutionRepository
type executionRepository struct {
	db *DB
}

// NewExecutionRepository creates a new execution repository
func NewExecutionRepository(db *DB) domain.ExecutionRepository {
	return &executionRepository{db: db}
}

const recordColumns = `id, month_label, status, started_at_millis, closed_at_millis,
	can_undo_until_millis, created_at, updated_at`

// GetByID retrieves an execution record by its ID
func (r *executionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExecutionRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM execution_records
		WHERE id = $1
	`
	return r.getRecord(ctx, query, id)
}

// GetExecuting retrieves the single EXECUTING record
func (r *executionRepository) GetExecuting(ctx context.Context) (*domain.ExecutionRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM execution_records
		WHERE status = $1
	`
	return r.getRecord(ctx, query, string(domain.ExecutionExecuting))
}

func (r *executionRepository) getRecord(ctx context.Context, query string, arg interface{}) (*domain.ExecutionRecord, error) {
	var record domain.ExecutionRecord
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&record.ID,
		&record.MonthLabel,
		&record.Status,
		&record.StartedAtMillis,
		&record.ClosedAtMillis,
		&record.CanUndoUntilMillis,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("execution record: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get execution record: %w", err)
	}
	return &record, nil
}

// Create creates a new execution record with its snapshots in a database transaction
func (r *executionRepository) Create(ctx context.Context, record *domain.ExecutionRecord, snapshots []domain.GoalSnapshot) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO execution_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = dbTx.ExecContext(ctx, query,
		record.ID,
		record.MonthLabel,
		string(record.Status),
		record.StartedAtMillis,
		record.ClosedAtMillis,
		record.CanUndoUntilMillis,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create execution record: %w", err)
	}

	if err := insertSnapshots(ctx, dbTx, snapshots); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Update persists changes to an existing execution record
func (r *executionRepository) Update(ctx context.Context, record *domain.ExecutionRecord) error {
	query := `
		UPDATE execution_records
		SET status = $2, started_at_millis = $3, closed_at_millis = $4,
		    can_undo_until_millis = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		record.ID,
		string(record.Status),
		record.StartedAtMillis,
		record.ClosedAtMillis,
		record.CanUndoUntilMillis,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update execution record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return fmt.Errorf("execution record %s: %w", record.ID, domain.ErrNotFound)
	}
	return nil
}

func insertSnapshots(ctx context.Context, dbTx *sql.Tx, snapshots []domain.GoalSnapshot) error {
	query := `
		INSERT INTO goal_snapshots (id, record_id, goal_id, goal_name, currency, baseline_funded, planned_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, snap := range snapshots {
		_, err := dbTx.ExecContext(ctx, query,
			snap.ID,
			snap.RecordID,
			snap.GoalID,
			snap.GoalName,
			snap.Currency,
			snap.BaselineFunded.String(),
			snap.PlannedAmount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot for goal %s: %w", snap.GoalID, err)
		}
	}
	return nil
}

// ListSnapshots retrieves the snapshots of an execution record
func (r *executionRepository) ListSnapshots(ctx context.Context, recordID uuid.UUID) ([]domain.GoalSnapshot, error) {
	query := `
		SELECT id, record_id, goal_id, goal_name, currency, baseline_funded, planned_amount
		FROM goal_snapshots
		WHERE record_id = $1
		ORDER BY goal_name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]domain.GoalSnapshot, 0)
	for rows.Next() {
		var snap domain.GoalSnapshot
		var baselineStr, plannedStr string
		if err := rows.Scan(&snap.ID, &snap.RecordID, &snap.GoalID, &snap.GoalName, &snap.Currency, &baselineStr, &plannedStr); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		baseline, err := decimal.NewFromString(baselineStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse baseline_funded: %w", err)
		}
		snap.BaselineFunded = baseline

		planned, err := decimal.NewFromString(plannedStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse planned_amount: %w", err)
		}
		snap.PlannedAmount = planned

		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// DeleteSnapshots discards the snapshots of an execution record
func (r *executionRepository) DeleteSnapshots(ctx context.Context, recordID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM goal_snapshots WHERE record_id = $1`, recordID)
	if err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}
	return nil
}

// SaveCompletion closes the record and writes its frozen per-goal outcomes and
// audit entries in a database transaction
func (r *executionRepository) SaveCompletion(
	ctx context.Context,
	record *domain.ExecutionRecord,
	completed []domain.CompletedExecution,
	history []domain.AllocationHistory,
) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	completedQuery := `
		INSERT INTO completed_executions (id, record_id, goal_id, month_label, baseline_funded,
			required_amount, actual_funded, can_undo_until_millis)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, row := range completed {
		_, err := dbTx.ExecContext(ctx, completedQuery,
			row.ID,
			row.RecordID,
			row.GoalID,
			row.MonthLabel,
			row.BaselineFunded.String(),
			row.RequiredAmount.String(),
			row.ActualFunded.String(),
			row.CanUndoUntilMillis,
		)
		if err != nil {
			return fmt.Errorf("failed to insert completed execution for goal %s: %w", row.GoalID, err)
		}
	}

	historyQuery := `
		INSERT INTO allocation_history (id, record_id, goal_id, month_label, amount, recorded_at_millis)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, row := range history {
		_, err := dbTx.ExecContext(ctx, historyQuery,
			row.ID,
			row.RecordID,
			row.GoalID,
			row.MonthLabel,
			row.Amount.String(),
			row.RecordedAtMillis,
		)
		if err != nil {
			return fmt.Errorf("failed to insert allocation history for goal %s: %w", row.GoalID, err)
		}
	}

	updateQuery := `
		UPDATE execution_records
		SET status = $2, started_at_millis = $3, closed_at_millis = $4,
		    can_undo_until_millis = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := dbTx.ExecContext(ctx, updateQuery,
		record.ID,
		string(record.Status),
		record.StartedAtMillis,
		record.ClosedAtMillis,
		record.CanUndoUntilMillis,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to close execution record: %w", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return fmt.Errorf("execution record %s: %w", record.ID, domain.ErrNotFound)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListCompleted retrieves the completion rows of an execution record
func (r *executionRepository) ListCompleted(ctx context.Context, recordID uuid.UUID) ([]domain.CompletedExecution, error) {
	query := `
		SELECT id, record_id, goal_id, month_label, baseline_funded, required_amount,
			actual_funded, can_undo_until_millis
		FROM completed_executions
		WHERE record_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed executions: %w", err)
	}
	defer rows.Close()

	completed := make([]domain.CompletedExecution, 0)
	for rows.Next() {
		var row domain.CompletedExecution
		var baselineStr, requiredStr, actualStr string
		if err := rows.Scan(&row.ID, &row.RecordID, &row.GoalID, &row.MonthLabel, &baselineStr, &requiredStr, &actualStr, &row.CanUndoUntilMillis); err != nil {
			return nil, fmt.Errorf("failed to scan completed execution: %w", err)
		}

		for _, p := range []struct {
			dst *decimal.Decimal
			src string
		}{
			{&row.BaselineFunded, baselineStr},
			{&row.RequiredAmount, requiredStr},
			{&row.ActualFunded, actualStr},
		} {
			v, err := decimal.NewFromString(p.src)
			if err != nil {
				return nil, fmt.Errorf("failed to parse completed execution amount: %w", err)
			}
			*p.dst = v
		}

		completed = append(completed, row)
	}
	return completed, rows.Err()
}

// DeleteCompleted removes the completion rows of an execution record
func (r *executionRepository) DeleteCompleted(ctx context.Context, recordID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM completed_executions WHERE record_id = $1`, recordID)
	if err != nil {
		return fmt.Errorf("failed to delete completed executions: %w", err)
	}
	return nil
}

// DeleteHistory removes the audit entries of an execution record
func (r *executionRepository) DeleteHistory(ctx context.Context, recordID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM allocation_history WHERE record_id = $1`, recordID)
	if err != nil {
		return fmt.Errorf("failed to delete allocation history: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/goalflow-backend/internal/domain"
)

// assetTransactionRepository implements domain.AssetTransactionRepository
type assetTransactionRepository struct {
	db *DB
}

// NewAssetTransactionRepository creates a new asset transaction repository
func NewAssetTransactionRepository(db *DB) domain.AssetTransactionRepository {
	return &assetTransactionRepository{db: db}
}

// Create creates a new manual balance entry
func (r *assetTransactionRepository) Create(ctx context.Context, tx *domain.AssetTransaction) error {
	query := `
		INSERT INTO asset_transactions (id, asset_id, amount, date, note)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.AssetID,
		tx.Amount.String(),
		tx.Date,
		tx.Note,
	)
	if err != nil {
		return fmt.Errorf("failed to create asset transaction: %w", err)
	}
	return nil
}

// SumByAsset returns the signed sum of all manual entries for an asset
func (r *assetTransactionRepository) SumByAsset(ctx context.Context, assetID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM asset_transactions
		WHERE asset_id = $1
	`

	var sumStr string
	if err := r.db.QueryRowContext(ctx, query, assetID).Scan(&sumStr); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum asset transactions: %w", err)
	}

	sum, err := decimal.NewFromString(sumStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse transaction sum: %w", err)
	}
	return sum, nil
}

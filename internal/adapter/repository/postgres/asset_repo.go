package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/goalflow-backend/internal/domain"
)

// assetRepository implements domain.AssetRepository
type assetRepository struct {
	db *DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *DB) domain.AssetRepository {
	return &assetRepository{db: db}
}

// GetByID retrieves an asset by its ID
func (r *assetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	query := `
		SELECT id, name, currency, chain_address, chain_id
		FROM assets
		WHERE id = $1
	`

	var asset domain.Asset
	var chainAddress, chainID sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&asset.ID,
		&asset.Name,
		&asset.Currency,
		&chainAddress,
		&chainID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get asset by ID: %w", err)
	}

	asset.ChainAddress = chainAddress.String
	asset.ChainID = chainID.String
	return &asset, nil
}

// Create creates a new asset
func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	query := `
		INSERT INTO assets (id, name, currency, chain_address, chain_id)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		asset.ID,
		asset.Name,
		asset.Currency,
		nullString(asset.ChainAddress),
		nullString(asset.ChainID),
	)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

// List retrieves all assets
func (r *assetRepository) List(ctx context.Context) ([]*domain.Asset, error) {
	query := `
		SELECT id, name, currency, chain_address, chain_id
		FROM assets
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	assets := make([]*domain.Asset, 0)
	for rows.Next() {
		var asset domain.Asset
		var chainAddress, chainID sql.NullString
		if err := rows.Scan(&asset.ID, &asset.Name, &asset.Currency, &chainAddress, &chainID); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		asset.ChainAddress = chainAddress.String
		asset.ChainID = chainID.String
		assets = append(assets, &asset)
	}
	return assets, rows.Err()
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Asset represents a funding source. Its balance is the sum of manual
// transaction entries, optionally plus an on-chain balance fetched from an
// external provider when ChainAddress is set.
type Asset struct {
	ID           uuid.UUID
	Name         string
	Currency     string
	ChainAddress string // empty for purely manual assets
	ChainID      string
}

// Validate ensures the asset adheres to domain rules
func (a *Asset) Validate() error {
	if a.Name == "" {
		return errors.New("asset name cannot be empty")
	}

	if a.Currency == "" {
		return errors.New("asset currency cannot be empty")
	}

	// A chain id without an address (or vice versa) is an incomplete on-chain reference
	if (a.ChainAddress == "") != (a.ChainID == "") {
		return errors.New("asset chain address and chain id must be set together")
	}

	return nil
}

// AssetTransaction is a manual balance entry against an asset.
// Amount is signed: deposits positive, withdrawals negative.
type AssetTransaction struct {
	ID      uuid.UUID
	AssetID uuid.UUID
	Amount  decimal.Decimal
	Date    time.Time
	Note    string
}

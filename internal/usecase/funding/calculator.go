package funding

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/goalflow-backend/internal/domain"
)

// Calculator resolves how much of a goal's target is actually backed by real
// asset balances. It implements domain.FundingCalculator and is shared by the
// requirement, scheduler and execution services so the funded-portion
// invariant is computed identically everywhere.
type Calculator struct {
	AssetRepo       domain.AssetRepository
	AllocationRepo  domain.AllocationRepository
	TransactionRepo domain.AssetTransactionRepository
	Chain           domain.ChainBalanceProvider // optional, may be nil
	Rates           domain.RateProvider
}

// NewCalculator creates a new Calculator instance.
// chain may be nil when no on-chain provider is configured.
func NewCalculator(
	assetRepo domain.AssetRepository,
	allocationRepo domain.AllocationRepository,
	transactionRepo domain.AssetTransactionRepository,
	chain domain.ChainBalanceProvider,
	rates domain.RateProvider,
) *Calculator {
	return &Calculator{
		AssetRepo:       assetRepo,
		AllocationRepo:  allocationRepo,
		TransactionRepo: transactionRepo,
		Chain:           chain,
		Rates:           rates,
	}
}

// AssetBalance computes an asset's balance: the signed sum of manual entries,
// plus the on-chain balance when the asset has a chain address and a provider
// is configured. A failed on-chain fetch contributes nothing so planning stays
// usable offline.
func (c *Calculator) AssetBalance(ctx context.Context, asset *domain.Asset) (decimal.Decimal, error) {
	balance, err := c.TransactionRepo.SumByAsset(ctx, asset.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions for asset %s: %w", asset.ID, err)
	}

	if asset.ChainAddress != "" && c.Chain != nil {
		onChain, err := c.Chain.Balance(ctx, asset)
		if err == nil {
			balance = balance.Add(onChain)
		}
	}

	return balance, nil
}

// FundedInGoalCurrency sums the funded portion of every allocation backing
// the goal, converted to the goal's currency.
//
// Each allocation's funded portion is capped proportionally across all
// allocations sharing the same asset. A failed currency conversion
// contributes 0 rather than an unconverted amount, so progress is never
// overstated.
func (c *Calculator) FundedInGoalCurrency(ctx context.Context, goal *domain.Goal) (decimal.Decimal, error) {
	allocations, err := c.AllocationRepo.ListByGoal(ctx, goal.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list allocations for goal %s: %w", goal.ID, err)
	}

	total := decimal.Zero
	for _, alloc := range allocations {
		asset, err := c.AssetRepo.GetByID(ctx, alloc.AssetID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to get asset %s: %w", alloc.AssetID, err)
		}

		balance, err := c.AssetBalance(ctx, asset)
		if err != nil {
			return decimal.Zero, err
		}

		// Cap against every allocation drawing on this asset, not just ours
		siblings, err := c.AllocationRepo.ListByAsset(ctx, asset.ID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to list allocations for asset %s: %w", asset.ID, err)
		}

		funded := domain.FundedPortions(balance, siblings)[alloc.ID]

		if asset.Currency == goal.Currency {
			total = total.Add(funded)
			continue
		}

		rate, err := c.Rates.Rate(ctx, asset.Currency, goal.Currency)
		if err != nil {
			// Unconvertible funding counts as 0
			continue
		}
		total = total.Add(funded.Mul(rate))
	}

	return total, nil
}

package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Allocation commits (part of) an asset's balance toward a goal.
type Allocation struct {
	ID      uuid.UUID
	AssetID uuid.UUID
	GoalID  uuid.UUID
	Amount  decimal.Decimal
}

// Validate ensures the allocation adheres to domain rules
func (a *Allocation) Validate() error {
	if a.AssetID == uuid.Nil {
		return errors.New("allocation must reference an asset")
	}

	if a.GoalID == uuid.Nil {
		return errors.New("allocation must reference a goal")
	}

	if a.Amount.LessThan(decimal.Zero) {
		return errors.New("allocation amount cannot be negative")
	}

	return nil
}

// FundedPortions computes, for every allocation drawing on the same asset, the
// portion actually backed by the asset's balance.
//
// Each allocation is first clamped to min(max(0, amount), balance). When the
// clamped amounts together exceed the balance the portions are scaled down
// proportionally, so the total funded from one asset never exceeds its balance.
//
// The result is keyed by allocation ID. This is the single funded-portion
// computation shared by requirement and execution calculations.
func FundedPortions(assetBalance decimal.Decimal, allocations []Allocation) map[uuid.UUID]decimal.Decimal {
	portions := make(map[uuid.UUID]decimal.Decimal, len(allocations))

	if assetBalance.LessThanOrEqual(decimal.Zero) {
		for _, alloc := range allocations {
			portions[alloc.ID] = decimal.Zero
		}
		return portions
	}

	clamped := make(map[uuid.UUID]decimal.Decimal, len(allocations))
	totalClamped := decimal.Zero
	for _, alloc := range allocations {
		c := alloc.Amount
		if c.LessThan(decimal.Zero) {
			c = decimal.Zero
		}
		if c.GreaterThan(assetBalance) {
			c = assetBalance
		}
		clamped[alloc.ID] = c
		totalClamped = totalClamped.Add(c)
	}

	if totalClamped.LessThanOrEqual(assetBalance) {
		return clamped
	}

	// Oversubscribed asset: apportion the balance proportionally
	for id, c := range clamped {
		portions[id] = c.Mul(assetBalance).Div(totalClamped)
	}
	return portions
}

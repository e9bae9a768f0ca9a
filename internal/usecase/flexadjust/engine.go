package flexadjust

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/goalflow-backend/internal/domain"
)

// Per-goal constraint band: an adjusted amount is kept between 10% and 150%
// of the base requirement.
var (
	minRatio = decimal.RequireFromString("0.10")
	maxRatio = decimal.RequireFromString("1.50")

	// Net excess at or below this is not worth redistributing.
	trivialExcess = decimal.NewFromInt(1)

	// amountEpsilon guards amount comparisons against flapping at boundaries.
	amountEpsilon = decimal.RequireFromString("0.01")

	one = decimal.NewFromInt(1)
)

// factorEpsilon is the tolerance for treating an adjustment factor as exactly 1.0.
const factorEpsilon = 1e-7

// IsNeutralFactor reports whether a factor is, within floating-point
// tolerance, the identity adjustment.
func IsNeutralFactor(factor float64) bool {
	return math.Abs(factor-1.0) < factorEpsilon
}

// ClampFactor forces an adjustment factor into the supported [0, 2] range.
func ClampFactor(factor float64) float64 {
	if factor < 0 {
		return 0
	}
	if factor > 2 {
		return 2
	}
	return factor
}

// flexItem is the working state for one flexible (non-protected, non-skipped)
// requirement during an adjustment pass.
type flexItem struct {
	req         domain.MonthlyRequirement
	base        decimal.Decimal
	minAmount   decimal.Decimal
	maxAmount   decimal.Decimal
	constrained decimal.Decimal
	added       decimal.Decimal // redistribution on top of constrained
}

func (it *flexItem) headroom() decimal.Decimal {
	return it.maxAmount.Sub(it.constrained).Sub(it.added)
}

// Apply scales every non-protected, non-skipped requirement by the factor,
// constrains each to its [10%, 150%] band, and redistributes the net excess
// produced by the constraints among the still-eligible goals per the
// selected strategy.
//
// Pure and deterministic: no I/O, no persistence. The result is sorted by
// goal name.
func Apply(
	requirements []domain.MonthlyRequirement,
	factor float64,
	protectedIDs map[uuid.UUID]bool,
	skippedIDs map[uuid.UUID]bool,
	strategy domain.RedistributionStrategy,
) []domain.AdjustedRequirement {
	factor = ClampFactor(factor)
	f := decimal.NewFromFloat(factor)

	results := make([]domain.AdjustedRequirement, 0, len(requirements))
	flexible := make([]*flexItem, 0, len(requirements))

	totalExcess := decimal.Zero
	totalDeficit := decimal.Zero

	for _, req := range requirements {
		switch {
		case skippedIDs[req.GoalID]:
			results = append(results, domain.AdjustedRequirement{
				Requirement:      req,
				AdjustedAmount:   decimal.Zero,
				Reason:           "skipped this month",
				IsSkipped:        true,
				AdjustmentFactor: factor,
				Impact:           analyzeImpact(req.RequiredMonthly, decimal.Zero, req.MonthsRemaining),
			})

		case protectedIDs[req.GoalID]:
			results = append(results, domain.AdjustedRequirement{
				Requirement:      req,
				AdjustedAmount:   req.RequiredMonthly,
				Reason:           "protected from adjustment",
				IsProtected:      true,
				AdjustmentFactor: factor,
				Impact:           analyzeImpact(req.RequiredMonthly, req.RequiredMonthly, req.MonthsRemaining),
			})

		default:
			base := req.RequiredMonthly
			raw := base.Mul(f)
			minAmount := base.Mul(minRatio)
			maxAmount := base.Mul(maxRatio)

			constrained := raw
			if raw.GreaterThan(maxAmount) {
				totalExcess = totalExcess.Add(raw.Sub(maxAmount))
				constrained = maxAmount
			} else if raw.LessThan(minAmount) {
				totalDeficit = totalDeficit.Add(minAmount.Sub(raw))
				constrained = minAmount
			}

			flexible = append(flexible, &flexItem{
				req:         req,
				base:        base,
				minAmount:   minAmount,
				maxAmount:   maxAmount,
				constrained: constrained,
			})
		}
	}

	netExcess := totalExcess.Sub(totalDeficit)
	if netExcess.GreaterThan(trivialExcess) {
		eligible := make([]*flexItem, 0, len(flexible))
		for _, it := range flexible {
			if it.headroom().GreaterThan(amountEpsilon) {
				eligible = append(eligible, it)
			}
		}
		distributeExcess(netExcess, eligible, strategy)
	}

	for _, it := range flexible {
		adjusted := it.constrained.Add(it.added)
		reason := fmt.Sprintf("scaled by factor %.2f", factor)
		if it.added.GreaterThan(decimal.Zero) {
			reason = fmt.Sprintf("scaled by factor %.2f with redistribution", factor)
		}
		results = append(results, domain.AdjustedRequirement{
			Requirement:          it.req,
			AdjustedAmount:       adjusted,
			Reason:               reason,
			AdjustmentFactor:     factor,
			RedistributionAmount: it.added,
			Impact:               analyzeImpact(it.base, adjusted, it.req.MonthsRemaining),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Requirement.GoalName < results[j].Requirement.GoalName
	})
	return results
}

// distributeExcess assigns netExcess to the eligible items in place,
// per strategy. No item ever exceeds its own 150% ceiling.
func distributeExcess(netExcess decimal.Decimal, eligible []*flexItem, strategy domain.RedistributionStrategy) {
	if len(eligible) == 0 {
		return
	}

	switch strategy {
	case domain.StrategyPrioritizeUrgent:
		distributeUrgent(netExcess, eligible)
	case domain.StrategyPrioritizeLargest:
		distributeLargest(netExcess, eligible)
	case domain.StrategyMinimizeRisk:
		distributeMinimizeRisk(netExcess, eligible)
	default:
		distributeBalanced(netExcess, eligible)
	}
}

// distributeBalanced splits the excess equally, each share capped by the
// receiving goal's own headroom.
func distributeBalanced(netExcess decimal.Decimal, eligible []*flexItem) {
	share := netExcess.Div(decimal.NewFromInt(int64(len(eligible))))
	for _, it := range eligible {
		it.added = decimal.Min(share, it.headroom())
	}
}

// distributeUrgent walks goals ordered by ascending months remaining, then
// ascending progress, greedily assigning up to 50% of each goal's base until
// the excess runs out.
func distributeUrgent(netExcess decimal.Decimal, eligible []*flexItem) {
	ordered := make([]*flexItem, len(eligible))
	copy(ordered, eligible)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].req.MonthsRemaining != ordered[j].req.MonthsRemaining {
			return ordered[i].req.MonthsRemaining < ordered[j].req.MonthsRemaining
		}
		return ordered[i].req.Progress.LessThan(ordered[j].req.Progress)
	})

	remaining := netExcess
	halfRatio := decimal.RequireFromString("0.50")
	for _, it := range ordered {
		if remaining.LessThanOrEqual(amountEpsilon) {
			break
		}
		take := decimal.Min(remaining, it.base.Mul(halfRatio), it.headroom())
		if take.LessThanOrEqual(decimal.Zero) {
			continue
		}
		it.added = it.added.Add(take)
		remaining = remaining.Sub(take)
	}
}

// distributeLargest spreads the excess proportionally to each goal's share of
// the total eligible base requirement.
func distributeLargest(netExcess decimal.Decimal, eligible []*flexItem) {
	totalBase := decimal.Zero
	for _, it := range eligible {
		totalBase = totalBase.Add(it.base)
	}
	if totalBase.LessThanOrEqual(decimal.Zero) {
		return
	}

	for _, it := range eligible {
		share := netExcess.Mul(it.base).Div(totalBase)
		it.added = decimal.Min(share, it.headroom())
	}
}

// distributeMinimizeRisk funds the riskiest goals first: up to 80% of base
// for HIGH-risk goals, up to 30% for the rest, until the excess runs out.
func distributeMinimizeRisk(netExcess decimal.Decimal, eligible []*flexItem) {
	rank := func(it *flexItem) int {
		switch reductionRisk(it) {
		case domain.RiskHigh:
			return 0
		case domain.RiskMedium:
			return 1
		default:
			return 2
		}
	}

	ordered := make([]*flexItem, len(eligible))
	copy(ordered, eligible)
	sort.SliceStable(ordered, func(i, j int) bool {
		if rank(ordered[i]) != rank(ordered[j]) {
			return rank(ordered[i]) < rank(ordered[j])
		}
		return ordered[i].req.MonthsRemaining < ordered[j].req.MonthsRemaining
	})

	highRatio := decimal.RequireFromString("0.80")
	lowRatio := decimal.RequireFromString("0.30")

	remaining := netExcess
	for _, it := range ordered {
		if remaining.LessThanOrEqual(amountEpsilon) {
			break
		}
		ratio := lowRatio
		if reductionRisk(it) == domain.RiskHigh {
			ratio = highRatio
		}
		take := decimal.Min(remaining, it.base.Mul(ratio), it.headroom())
		if take.LessThanOrEqual(decimal.Zero) {
			continue
		}
		it.added = it.added.Add(take)
		remaining = remaining.Sub(take)
	}
}

// reductionRisk grades how dangerous the constrained reduction already is for
// a goal, before redistribution.
func reductionRisk(it *flexItem) domain.RiskLevel {
	reductionPct := 0.0
	if it.base.GreaterThan(decimal.Zero) {
		reductionPct, _ = it.base.Sub(it.constrained).Div(it.base).Mul(decimal.NewFromInt(100)).Float64()
	}

	switch {
	case reductionPct > 50 || it.req.MonthsRemaining <= 2:
		return domain.RiskHigh
	case reductionPct > 25 || it.req.MonthsRemaining <= 4:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// analyzeImpact describes what the adjustment does to one goal. The delay
// estimate is only produced for net reductions.
func analyzeImpact(base, adjusted decimal.Decimal, monthsRemaining int) domain.ImpactAnalysis {
	change := adjusted.Sub(base)

	changePct := 0.0
	if base.GreaterThan(decimal.Zero) {
		changePct, _ = change.Div(base).Mul(decimal.NewFromInt(100)).Float64()
	}

	delay := 0
	if change.LessThan(decimal.Zero) {
		reduction := change.Neg()
		denom := decimal.Max(one, adjusted)
		months := decimal.NewFromInt(int64(monthsRemaining))
		delay = int(reduction.Div(denom).Mul(months).Ceil().IntPart())
	}

	risk := domain.RiskLow
	switch {
	case changePct < -50:
		risk = domain.RiskHigh
	case changePct < -25:
		risk = domain.RiskMedium
	}

	return domain.ImpactAnalysis{
		ChangeAmount:         change,
		ChangePercentage:     changePct,
		EstimatedDelayMonths: delay,
		Risk:                 risk,
	}
}

// Simulate runs Apply and aggregates the outcome into a single report.
func Simulate(
	requirements []domain.MonthlyRequirement,
	factor float64,
	protectedIDs map[uuid.UUID]bool,
	skippedIDs map[uuid.UUID]bool,
	strategy domain.RedistributionStrategy,
) domain.FlexSimulation {
	adjusted := Apply(requirements, factor, protectedIDs, skippedIDs, strategy)

	sim := domain.FlexSimulation{
		TotalOriginal: decimal.Zero,
		TotalAdjusted: decimal.Zero,
		RiskByGoal:    make(map[uuid.UUID]domain.RiskLevel, len(adjusted)),
		DelayByGoal:   make(map[uuid.UUID]int, len(adjusted)),
	}

	totalReduced := decimal.Zero
	totalRedistributed := decimal.Zero
	affected := 0

	for _, a := range adjusted {
		sim.TotalOriginal = sim.TotalOriginal.Add(a.Requirement.RequiredMonthly)
		sim.TotalAdjusted = sim.TotalAdjusted.Add(a.AdjustedAmount)
		sim.RiskByGoal[a.Requirement.GoalID] = a.Impact.Risk
		sim.DelayByGoal[a.Requirement.GoalID] = a.Impact.EstimatedDelayMonths

		if a.IsProtected || a.IsSkipped {
			continue
		}
		if reduction := a.Impact.ChangeAmount.Neg(); reduction.GreaterThan(decimal.Zero) {
			totalReduced = totalReduced.Add(reduction)
		}
		totalRedistributed = totalRedistributed.Add(a.RedistributionAmount)
		if a.Impact.ChangeAmount.Abs().GreaterThan(amountEpsilon) {
			affected++
		}
	}

	sim.TotalSavings = sim.TotalOriginal.Sub(sim.TotalAdjusted)
	sim.Redistribution = domain.RedistributionSummary{
		TotalReduced:       totalReduced,
		TotalRedistributed: totalRedistributed,
		AffectedGoals:      affected,
	}
	return sim
}

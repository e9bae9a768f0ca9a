package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simaogato/goalflow-backend/internal/domain"
	"github.com/simaogato/goalflow-backend/internal/usecase/flexadjust"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage the monthly contribution plan",
}

var planSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Recompute the month's plan from current requirements",
	RunE:  runPlanSync,
}

var planShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the month's plan",
	RunE:  runPlanShow,
}

var planProtectCmd = &cobra.Command{
	Use:   "protect <goal-id>",
	Short: "Toggle a goal's protection from flex adjustments",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanProtect,
}

var planSkipCmd = &cobra.Command{
	Use:   "skip <goal-id>",
	Short: "Toggle skipping a goal for the month",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanSkip,
}

var planCustomCmd = &cobra.Command{
	Use:   "custom <goal-id> <amount|clear>",
	Short: "Set or clear a goal's custom amount for the month",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlanCustom,
}

var (
	flagFlexFactor   float64
	flagFlexStrategy string
	flagFlexSimulate bool
)

var planFlexCmd = &cobra.Command{
	Use:   "flex",
	Short: "Scale the month's flexible contributions by a factor",
	RunE:  runPlanFlex,
}

func init() {
	planFlexCmd.Flags().Float64Var(&flagFlexFactor, "factor", 1.0, "Adjustment factor (clamped to [0,2])")
	planFlexCmd.Flags().StringVar(&flagFlexStrategy, "strategy", string(domain.StrategyBalanced), "Redistribution strategy")
	planFlexCmd.Flags().BoolVar(&flagFlexSimulate, "simulate", false, "Preview the adjustment without persisting")

	planCmd.AddCommand(planSyncCmd, planShowCmd, planProtectCmd, planSkipCmd, planCustomCmd, planFlexCmd)
	rootCmd.AddCommand(planCmd)
}

func runPlanSync(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	requirements, err := a.requirements.CalculateAll(ctx)
	if err != nil {
		return err
	}
	plans, err := a.planSync.SyncPlans(ctx, a.month(), requirements)
	if err != nil {
		return err
	}
	fmt.Printf("synced %d plans for %s\n", len(plans), a.month())
	return nil
}

func runPlanShow(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	plans, err := a.planRepo.ListByMonth(cmd.Context(), a.month())
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		fmt.Printf("no plans for %s; run `goalflow plan sync` first\n", a.month())
		return nil
	}

	total := decimal.Zero
	for _, p := range plans {
		marker := " "
		switch {
		case p.IsSkipped:
			marker = "S"
		case p.IsProtected:
			marker = "P"
		case p.CustomAmount != nil:
			marker = "C"
		}
		effective := p.EffectiveAmount()
		total = total.Add(effective)
		fmt.Printf("[%s] %-38s %10s %s  (%s, base %s)\n",
			marker, p.GoalID, effective.StringFixed(2), p.Currency, p.State, p.RequiredMonthly.StringFixed(2))
	}
	fmt.Printf("\neffective total: %s\n", total.StringFixed(2))
	return nil
}

func runPlanProtect(cmd *cobra.Command, args []string) error {
	return togglePlan(cmd, args[0], func(a *app, id uuid.UUID) (*domain.MonthlyGoalPlan, error) {
		return a.planSync.ToggleProtected(cmd.Context(), a.month(), id)
	})
}

func runPlanSkip(cmd *cobra.Command, args []string) error {
	return togglePlan(cmd, args[0], func(a *app, id uuid.UUID) (*domain.MonthlyGoalPlan, error) {
		return a.planSync.ToggleSkipped(cmd.Context(), a.month(), id)
	})
}

func togglePlan(cmd *cobra.Command, rawID string, apply func(*app, uuid.UUID) (*domain.MonthlyGoalPlan, error)) error {
	goalID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid goal id %q: %w", rawID, err)
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	plan, err := apply(a, goalID)
	if err != nil {
		return err
	}
	fmt.Printf("goal %s: protected=%v skipped=%v effective=%s\n",
		plan.GoalID, plan.IsProtected, plan.IsSkipped, plan.EffectiveAmount().StringFixed(2))
	return nil
}

func runPlanCustom(cmd *cobra.Command, args []string) error {
	goalID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid goal id %q: %w", args[0], err)
	}

	var amount *decimal.Decimal
	if args[1] != "clear" {
		parsed, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[1], err)
		}
		amount = &parsed
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	plan, err := a.planSync.SetCustomAmount(cmd.Context(), a.month(), goalID, amount)
	if err != nil {
		return err
	}
	fmt.Printf("goal %s: effective=%s\n", plan.GoalID, plan.EffectiveAmount().StringFixed(2))
	return nil
}

func runPlanFlex(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	strategy := domain.RedistributionStrategy(flagFlexStrategy)
	requirements, err := a.requirements.CalculateAll(ctx)
	if err != nil {
		return err
	}

	if flagFlexSimulate {
		plans, err := a.planRepo.ListByMonth(ctx, a.month())
		if err != nil {
			return err
		}
		protected := make(map[uuid.UUID]bool)
		skipped := make(map[uuid.UUID]bool)
		for _, p := range plans {
			if p.IsProtected {
				protected[p.GoalID] = true
			}
			if p.IsSkipped {
				skipped[p.GoalID] = true
			}
		}
		sim := flexadjust.Simulate(requirements, flagFlexFactor, protected, skipped, strategy)
		fmt.Printf("simulated factor %.2f: %s -> %s (%d goals affected, reduced %s, redistributed %s)\n",
			flexadjust.ClampFactor(flagFlexFactor),
			sim.TotalOriginal.StringFixed(2), sim.TotalAdjusted.StringFixed(2),
			sim.Redistribution.AffectedGoals,
			sim.Redistribution.TotalReduced.StringFixed(2),
			sim.Redistribution.TotalRedistributed.StringFixed(2))
		return nil
	}

	adjusted, err := a.planSync.ApplyFlexAdjustment(ctx, a.month(), flagFlexFactor, strategy, requirements)
	if err != nil {
		return err
	}
	for _, adj := range adjusted {
		fmt.Printf("%-24s %10s -> %10s  %s\n",
			adj.Requirement.GoalName,
			adj.Requirement.RequiredMonthly.StringFixed(2),
			adj.AdjustedAmount.StringFixed(2),
			adj.Reason)
	}
	return nil
}

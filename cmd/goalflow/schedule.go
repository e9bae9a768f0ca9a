package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simaogato/goalflow-backend/internal/domain"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Fixed-budget waterfall scheduling",
}

var flagScheduleBudget string

var scheduleGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the payment schedule under the configured budget",
	RunE:  runScheduleGenerate,
}

var scheduleMinimumCmd = &cobra.Command{
	Use:   "minimum",
	Short: "Show the minimum monthly budget that meets every deadline",
	RunE:  runScheduleMinimum,
}

var scheduleFeasibilityCmd = &cobra.Command{
	Use:   "feasibility",
	Short: "Check whether the budget can satisfy every goal deadline",
	RunE:  runScheduleFeasibility,
}

func init() {
	scheduleGenerateCmd.Flags().StringVar(&flagScheduleBudget, "budget", "", "Override the configured monthly budget")
	scheduleFeasibilityCmd.Flags().StringVar(&flagScheduleBudget, "budget", "", "Override the configured monthly budget")

	scheduleCmd.AddCommand(scheduleGenerateCmd, scheduleMinimumCmd, scheduleFeasibilityCmd)
	rootCmd.AddCommand(scheduleCmd)
}

// scheduleInputs resolves the active goals, budget and currency a schedule
// command operates on, honoring the --budget override.
func scheduleInputs(ctx context.Context, a *app) ([]*domain.Goal, decimal.Decimal, string, error) {
	goals, err := a.goalRepo.List(ctx, domain.GoalActive)
	if err != nil {
		return nil, decimal.Zero, "", err
	}

	budget, currency, err := a.settings.MonthlyBudget(ctx)
	if err != nil {
		return nil, decimal.Zero, "", err
	}
	if flagScheduleBudget != "" {
		budget, err = decimal.NewFromString(flagScheduleBudget)
		if err != nil {
			return nil, decimal.Zero, "", fmt.Errorf("invalid budget %q: %w", flagScheduleBudget, err)
		}
	}
	return goals, budget, currency, nil
}

func runScheduleGenerate(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	goals, budget, currency, err := scheduleInputs(ctx, a)
	if err != nil {
		return err
	}

	plan, err := a.scheduler.GenerateSchedule(ctx, goals, budget, currency)
	if err != nil {
		return err
	}

	fmt.Printf("budget %s %s (minimum %s, leveled=%v)\n\n",
		plan.MonthlyBudget.StringFixed(2), plan.Currency,
		plan.MinimumRequired.StringFixed(2), plan.IsLeveled)

	for _, payment := range plan.Schedule {
		fmt.Printf("#%-3d %s  total %s  cumulative %s\n",
			payment.PaymentNumber,
			payment.Date.Format("2006-01-02"),
			payment.TotalAmount.StringFixed(2),
			payment.CumulativeAmount.StringFixed(2))
		for _, c := range payment.Contributions {
			note := ""
			if c.IsGoalStart {
				note = " (start)"
			}
			if c.IsGoalComplete {
				note = " (complete)"
			}
			fmt.Printf("      %-24s %s%s\n", c.GoalName, c.Amount.StringFixed(2), note)
		}
	}

	for _, block := range a.scheduler.BuildTimelineBlocks(plan, goals) {
		fmt.Printf("\n%-24s payments %d-%d (%s to %s) total %s\n",
			block.GoalName, block.FirstPayment, block.LastPayment,
			block.StartDate.Format("2006-01-02"), block.EndDate.Format("2006-01-02"),
			block.TotalAmount.StringFixed(2))
	}
	return nil
}

func runScheduleMinimum(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	goals, _, currency, err := scheduleInputs(ctx, a)
	if err != nil {
		return err
	}

	minimum, err := a.scheduler.CalculateMinimumBudget(ctx, goals, currency)
	if err != nil {
		return err
	}
	fmt.Printf("minimum monthly budget: %s %s\n", minimum.StringFixed(2), currency)
	return nil
}

func runScheduleFeasibility(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	goals, budget, currency, err := scheduleInputs(ctx, a)
	if err != nil {
		return err
	}

	result, err := a.scheduler.CheckFeasibility(ctx, goals, budget, currency)
	if err != nil {
		return err
	}

	if result.IsFeasible {
		fmt.Printf("budget %s %s is feasible (minimum %s)\n",
			result.Budget.StringFixed(2), currency, result.MinimumRequired.StringFixed(2))
		return nil
	}

	fmt.Printf("budget %s %s is infeasible (minimum %s)\n\n",
		result.Budget.StringFixed(2), currency, result.MinimumRequired.StringFixed(2))
	for _, g := range result.InfeasibleGoals {
		fmt.Printf("%-24s needs %s per period (short %s, %d periods left)\n",
			g.GoalName, g.RequiredPerPeriod.StringFixed(2), g.Shortfall.StringFixed(2), g.MonthsRemaining)
	}

	fmt.Println("\nsuggestions:")
	for _, s := range result.Suggestions {
		switch fix := s.(type) {
		case domain.ExtendDeadlineSuggestion:
			fmt.Printf("  extend deadline of %s by %d months\n", fix.GoalID, fix.Months)
		case domain.ReduceTargetSuggestion:
			fmt.Printf("  reduce target of %s to %s\n", fix.GoalID, fix.NewTarget.StringFixed(2))
		case domain.EditGoalSuggestion:
			fmt.Printf("  review goal %s\n", fix.GoalID)
		case domain.IncreaseBudgetSuggestion:
			fmt.Printf("  increase budget to %s\n", fix.MinimumRequired.StringFixed(2))
		}
	}
	return nil
}

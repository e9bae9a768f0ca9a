package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simaogato/goalflow-backend/internal/domain"
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Manage savings goals",
}

var goalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals with their computed requirements",
	RunE:  runGoalsList,
}

var (
	flagGoalName     string
	flagGoalCurrency string
	flagGoalTarget   string
	flagGoalDeadline string
)

var goalsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a savings goal",
	RunE:  runGoalsAdd,
}

var goalsExtendCmd = &cobra.Command{
	Use:   "extend <goal-id> <months>",
	Short: "Push a goal's deadline out by some months",
	Args:  cobra.ExactArgs(2),
	RunE:  runGoalsExtend,
}

var goalsReduceCmd = &cobra.Command{
	Use:   "reduce <goal-id> <new-target>",
	Short: "Lower a goal's target amount",
	Args:  cobra.ExactArgs(2),
	RunE:  runGoalsReduce,
}

func init() {
	goalsAddCmd.Flags().StringVar(&flagGoalName, "name", "", "Goal name")
	goalsAddCmd.Flags().StringVar(&flagGoalCurrency, "currency", "EUR", "Goal currency")
	goalsAddCmd.Flags().StringVar(&flagGoalTarget, "target", "", "Target amount")
	goalsAddCmd.Flags().StringVar(&flagGoalDeadline, "deadline", "", "Deadline (YYYY-MM-DD)")

	goalsCmd.AddCommand(goalsListCmd, goalsAddCmd, goalsExtendCmd, goalsReduceCmd)
	rootCmd.AddCommand(goalsCmd)
}

func runGoalsList(cmd *cobra.Command, _ []string) error {
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

	display, err := a.settings.DisplayCurrency(ctx)
	if err != nil {
		return err
	}

	for _, req := range requirements {
		fmt.Printf("%-24s %8s  target %s  funded %s  remaining %s  %d periods  %s/month  [%s]\n",
			req.GoalName,
			req.Currency,
			req.TargetAmount.StringFixed(2),
			req.CurrentTotal.StringFixed(2),
			req.RemainingAmount.StringFixed(2),
			req.MonthsRemaining,
			req.RequiredMonthly.StringFixed(2),
			req.Status,
		)
	}

	total := a.requirements.CalculateTotalRequired(ctx, requirements, display)
	fmt.Printf("\ntotal required: %s %s/month\n", total.StringFixed(2), display)
	return nil
}

func runGoalsAdd(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	target, err := decimal.NewFromString(flagGoalTarget)
	if err != nil {
		return fmt.Errorf("invalid target amount %q: %w", flagGoalTarget, err)
	}
	deadline, err := time.Parse("2006-01-02", flagGoalDeadline)
	if err != nil {
		return fmt.Errorf("invalid deadline %q: %w", flagGoalDeadline, err)
	}

	goal := &domain.Goal{
		ID:           uuid.New(),
		Name:         flagGoalName,
		Currency:     flagGoalCurrency,
		TargetAmount: target,
		Deadline:     deadline,
		StartDate:    a.clock.Now(),
		Status:       domain.GoalActive,
	}
	if err := goal.Validate(); err != nil {
		return err
	}

	if err := a.goalRepo.Create(cmd.Context(), goal); err != nil {
		return err
	}
	fmt.Printf("created goal %s (%s)\n", goal.Name, goal.ID)
	return nil
}

func runGoalsExtend(cmd *cobra.Command, args []string) error {
	months, err := strconv.Atoi(args[1])
	if err != nil || months <= 0 {
		return fmt.Errorf("invalid month count %q", args[1])
	}
	return updateGoal(cmd, args[0], func(goal *domain.Goal) {
		goal.Deadline = goal.Deadline.AddDate(0, months, 0)
	})
}

func runGoalsReduce(cmd *cobra.Command, args []string) error {
	newTarget, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid target amount %q: %w", args[1], err)
	}
	return updateGoal(cmd, args[0], func(goal *domain.Goal) {
		goal.TargetAmount = newTarget
	})
}

func updateGoal(cmd *cobra.Command, rawID string, mutate func(*domain.Goal)) error {
	goalID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid goal id %q: %w", rawID, err)
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	goal, err := a.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return err
	}
	mutate(goal)
	if err := goal.Validate(); err != nil {
		return err
	}
	if err := a.goalRepo.Update(ctx, goal); err != nil {
		return err
	}
	fmt.Printf("updated goal %s: target %s, deadline %s\n",
		goal.Name, goal.TargetAmount.StringFixed(2), goal.Deadline.Format("2006-01-02"))
	return nil
}

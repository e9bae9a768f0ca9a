package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simaogato/goalflow-backend/internal/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change planning settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the current settings",
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting. Keys:
  payment-day       day of month payments are made (1-28)
  display-currency  currency totals are reported in
  flex-factor       default flex adjustment factor
  mode              PER_GOAL or FIXED_BUDGET
  budget            monthly budget as "<amount> <currency>"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsGet(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	day, err := a.settings.PaymentDay(ctx)
	if err != nil {
		return err
	}
	display, err := a.settings.DisplayCurrency(ctx)
	if err != nil {
		return err
	}
	factor, err := a.settings.FlexFactor(ctx)
	if err != nil {
		return err
	}
	mode, err := a.settings.Mode(ctx)
	if err != nil {
		return err
	}
	budget, budgetCurrency, err := a.settings.MonthlyBudget(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("payment-day:      %d\n", day)
	fmt.Printf("display-currency: %s\n", display)
	fmt.Printf("flex-factor:      %.2f\n", factor)
	fmt.Printf("mode:             %s\n", mode)
	fmt.Printf("budget:           %s %s\n", budget.StringFixed(2), budgetCurrency)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	key, value := args[0], args[1]

	switch key {
	case "payment-day":
		day, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid payment day %q: %w", value, err)
		}
		return a.settings.SetPaymentDay(ctx, domain.ClampPaymentDay(day))
	case "display-currency":
		return a.settings.SetDisplayCurrency(ctx, strings.ToUpper(value))
	case "flex-factor":
		factor, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid flex factor %q: %w", value, err)
		}
		return a.settings.SetFlexFactor(ctx, factor)
	case "mode":
		mode := domain.PlanningMode(strings.ToUpper(value))
		if mode != domain.ModePerGoal && mode != domain.ModeFixedBudget {
			return fmt.Errorf("unknown mode %q", value)
		}
		return a.settings.SetMode(ctx, mode)
	case "budget":
		if len(args) < 3 {
			return fmt.Errorf("budget requires an amount and a currency")
		}
		amount, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("invalid budget amount %q: %w", value, err)
		}
		return a.settings.SetMonthlyBudget(ctx, amount, strings.ToUpper(args[2]))
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantfold/fundflow/pkg/pipeline"
	"github.com/quantfold/fundflow/pkg/report"
)

// planCommand creates the plan command for running an allocation.
func (c *CLI) planCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		total   float64
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "plan [plan.toml]",
		Short: "Allocate a plan's total across its accounts",
		Long: `Allocate a plan's total across its accounts.

The plan command reads a TOML plan file declaring accounts, their limits,
optional shared-limit groups, and a priority tree. It solves the allocation
and prints the per-account amounts. Minimum limits are satisfied before
anything flows against maximums, and ordered branches fill earlier children
first.

Results are cached locally for faster subsequent runs. Allocation is
deterministic, so the cache is keyed by the plan's content.

Use 'visualize' to render the allocation as a diagram.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.PlanPath = args[0]
			opts.Refresh = refresh
			if cmd.Flags().Changed("total") {
				opts.Total = &total
			}
			return c.runPlan(cmd.Context(), opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the allocation report JSON to this path")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if a cached result exists")

	// Allocate flags
	cmd.Flags().Float64VarP(&total, "total", "t", 0, "override the plan's total")
	cmd.Flags().IntVar(&opts.MaxRounds, "max-rounds", 0, "cap on solver retry rounds")

	return cmd
}

// runPlan executes the pipeline and prints the allocation.
func (c *CLI) runPlan(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	opts.Formats = []string{pipeline.FormatJSON}

	spinner := newSpinnerWithContext(ctx, "Allocating...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Allocation failed")
		return fmt.Errorf("plan: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	printAllocation(result.Report)
	printStats(len(result.Report.Accounts), result.Report.Delivered, result.CacheInfo.ResultHit)

	if output != "" {
		if err := report.WriteFile(result.Report, output); err != nil {
			return fmt.Errorf("write output %s: %w", output, err)
		}
		printFile(output)
	}

	printNewline()
	printNextStep("Visualize", "fundflow visualize "+opts.PlanPath)

	return nil
}

// printAllocation prints the per-account allocation table.
func printAllocation(r *report.Report) {
	printSuccess("Allocated %.2f of %.2f", r.Delivered, r.Requested)
	if r.Delivered != r.Requested {
		printWarning("Plan limits absorbed only part of the total")
	}
	for _, a := range r.Accounts {
		printAccountLine(a.Name, a.Total)
		for _, p := range a.Schedule {
			printDetail("t=%.2f  %+.2f", p.Time, p.Amount)
		}
	}
}

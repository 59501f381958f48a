// Package cmd - schedule command
package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/cukaiku/tax-engine/engine"
	"github.com/cukaiku/tax-engine/factory"
	"github.com/cukaiku/tax-engine/render"
	"github.com/spf13/cobra"
)

func newScheduleCmd(opts *options) *cobra.Command {
	var validate string

	cmd := &cobra.Command{
		Use:   "schedule [year]",
		Short: "Show the brackets, caps and rebates for an assessment year",
		Long: `Show the tax schedule for an assessment year.

Without a year the configured or latest embedded year is shown.

Examples:
  cukai schedule
  cukai schedule 2025
  cukai schedule --validate ./ya2026.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if validate != "" {
				s, err := factory.NewScheduleFactory().ParseFile(validate)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: YA %d is valid (%d brackets, %d limits)\n",
					validate, s.Year, len(s.Brackets), len(s.Limits))
				return nil
			}

			year := 0
			if len(args) == 1 {
				y, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid year %q", args[0])
				}
				year = y
			}
			calc, err := opts.calculator(year)
			if err != nil {
				return err
			}
			return printSchedule(cmd.OutOrStdout(), calc.Schedule())
		},
	}

	cmd.Flags().StringVar(&validate, "validate", "", "validate a schedule YAML file instead of printing")
	return cmd
}

func printSchedule(w io.Writer, s *engine.Schedule) error {
	fmt.Fprintf(w, "━━━ Tax schedule · YA %d ━━━\n\n", s.Year)

	brackets := render.NewTable("Chargeable income (RM)", "Rate").SetAlign(1, render.AlignRight)
	for _, b := range s.Brackets {
		band := render.Amount(b.Min) + " and above"
		if !b.Unbounded() {
			band = render.Amount(b.Min) + " – " + render.Amount(b.Max.Decimal)
		}
		brackets.AddRow(band, render.Percent(b.Rate))
	}
	if err := brackets.Render(w); err != nil {
		return err
	}

	names := make([]string, 0, len(s.Limits))
	for name := range s.Limits {
		names = append(names, name)
	}
	sort.Strings(names)

	limits := render.NewTable("Limit", "Value").SetAlign(1, render.AlignRight)
	for _, name := range names {
		limits.AddRow(name, render.Amount(s.Limits[name]))
	}
	fmt.Fprintln(w)
	if err := limits.Render(w); err != nil {
		return err
	}

	housing := render.NewTable("Property price", "Interest cap").SetAlign(1, render.AlignRight)
	for _, t := range s.HousingTiers {
		limit := render.RM(t.Cap)
		if !t.Eligible {
			limit = "not eligible"
		}
		housing.AddRow(t.Code, limit)
	}
	fmt.Fprintln(w)
	if err := housing.Render(w); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nRebate: %s when chargeable income ≤ %s\n", render.RM(s.Rebate.Amount), render.RM(s.Rebate.Threshold))
	fmt.Fprintf(w, "Non-resident rate: %s\n", render.Percent(s.NonResidentRate))
	return nil
}

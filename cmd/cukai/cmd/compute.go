// Package cmd - compute command
package cmd

import (
	"errors"
	"fmt"

	"github.com/cukaiku/tax-engine/api"
	"github.com/cukaiku/tax-engine/engine"
	"github.com/cukaiku/tax-engine/logging"
	"github.com/cukaiku/tax-engine/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type computeOptions struct {
	answersFile string
	scenario    string
	year        int
	format      string
	pcb         string
	pageLines   int
}

func newComputeCmd(opts *options) *cobra.Command {
	co := &computeOptions{}

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute tax for a set of answers",
		Long: `Compute tax payable from questionnaire answers.

Answers are a JSON object keyed by question ID, for example
  {"formType": "BE", "employmentIncome": "60000", "pcbAmount": "2000"}

Examples:
  cukai compute --answers answers.json
  cukai compute --answers - --format table < answers.json
  cukai compute --scenario fresh-graduate --format guide
  cukai compute --answers answers.json --pcb 4500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(cmd, opts, co)
		},
	}

	cmd.Flags().StringVarP(&co.answersFile, "answers", "a", "", "answers JSON file (- for stdin)")
	cmd.Flags().StringVarP(&co.scenario, "scenario", "s", "", "use a sample profile instead of an answers file")
	cmd.Flags().IntVarP(&co.year, "year", "y", 0, "assessment year (default: configured or latest)")
	cmd.Flags().StringVarP(&co.format, "format", "f", "table", "output format (json, table, guide)")
	cmd.Flags().StringVar(&co.pcb, "pcb", "", "PCB already deducted, overrides the pcbAmount answer")
	cmd.Flags().IntVar(&co.pageLines, "page-lines", render.DefaultPageLines, "lines per guide page")
	return cmd
}

func runCompute(cmd *cobra.Command, opts *options, co *computeOptions) error {
	format, err := render.ParseFormat(co.format)
	if err != nil {
		return err
	}

	answers, err := co.answers(cmd)
	if err != nil {
		return err
	}
	if co.pcb != "" {
		answers["pcbAmount"] = co.pcb
	}

	calc, err := opts.calculator(co.year)
	if err != nil {
		return err
	}

	result := calc.Compute(answers)
	logging.Debug("computed",
		zap.Int("year", result.Year),
		zap.String("form", string(result.FormType)),
		zap.String("final_tax", result.FinalTax.String()))

	rep := render.NewReport(result, answers)
	if format == render.FormatGuide {
		return render.NewGuide(result, &rep.Settlement, co.pageLines).Render(cmd.OutOrStdout())
	}
	f, err := render.NewFormatter(format)
	if err != nil {
		return err
	}
	return f.Render(cmd.OutOrStdout(), rep)
}

func (co *computeOptions) answers(cmd *cobra.Command) (engine.Answers, error) {
	switch {
	case co.scenario != "" && co.answersFile != "":
		return nil, errors.New("use either --answers or --scenario, not both")
	case co.scenario != "":
		s, ok := api.ScenarioByID(co.scenario)
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q", co.scenario)
		}
		return s.Answers, nil
	case co.answersFile != "":
		return readAnswers(cmd, co.answersFile)
	}
	return nil, errors.New("--answers or --scenario is required")
}

// Package cmd provides the CLI commands for cukai.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/cukaiku/tax-engine/config"
	"github.com/cukaiku/tax-engine/engine"
	"github.com/cukaiku/tax-engine/factory"
	"github.com/cukaiku/tax-engine/logging"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every command.
type options struct {
	cfgFile string
	verbose bool
	cfg     *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "cukai",
		Short: "Estimate Malaysian personal income tax",
		Long: `cukai estimates Malaysian personal income tax from questionnaire answers.

It applies the year's progressive brackets, relief caps and rebates, shows
which reliefs are still unclaimed, and lays the result out line by line
for Form BE, B or M.

Examples:
  cukai compute --answers answers.json
  cukai compute --scenario young-family --format table
  cukai compute --answers answers.json --format guide --pcb 4500
  cukai schedule 2025
  cukai serve --config cukai.yaml`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init()
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default: built-in defaults and CUKAI_* env)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newComputeCmd(opts))
	root.AddCommand(newScheduleCmd(opts))
	root.AddCommand(newQuestionsCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *options) init() error {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if o.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
	o.cfg = cfg
	return nil
}

// calculator resolves the schedule: an explicit year wins, then the
// configured schedule file, then the configured year, then the latest
// embedded year.
func (o *options) calculator(year int) (*engine.Calculator, error) {
	if year == 0 && o.cfg.Tax.ScheduleFile != "" {
		s, err := factory.NewScheduleFactory().ParseFile(o.cfg.Tax.ScheduleFile)
		if err != nil {
			return nil, err
		}
		return engine.NewCalculator(s)
	}
	if year == 0 {
		year = o.cfg.Tax.Year
	}
	if year == 0 {
		year = factory.Latest()
	}
	return factory.Calculator(year)
}

// readAnswers loads a JSON object of answers. "-" reads stdin.
func readAnswers(cmd *cobra.Command, path string) (engine.Answers, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading answers: %w", err)
	}

	a := engine.Answers{}
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing answers %s: %w", path, err)
	}
	return a, nil
}

const version = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cukai version %s (YA %v)\n", version, factory.Years())
		},
	}
}

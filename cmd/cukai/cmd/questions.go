// Package cmd - questions command
package cmd

import (
	"fmt"

	"github.com/cukaiku/tax-engine/engine"
	"github.com/cukaiku/tax-engine/questions"
	"github.com/cukaiku/tax-engine/render"
	"github.com/spf13/cobra"
)

func newQuestionsCmd(opts *options) *cobra.Command {
	var answersFile string

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "List the questions shown for a set of answers",
		Long: `List the questionnaire steps that are visible for the given answers,
with the current answer of each. Without --answers the questions shown to
a new visitor are listed.

Examples:
  cukai questions
  cukai questions --answers answers.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			answers := engine.Answers{}
			if answersFile != "" {
				a, err := readAnswers(cmd, answersFile)
				if err != nil {
					return err
				}
				answers = questions.Prune(a)
			}

			visible := questions.Visible(answers)
			t := render.NewTable("#", "Section", "Question", "Answer").SetAlign(0, render.AlignRight)
			for i, q := range visible {
				t.AddRow(fmt.Sprint(i+1), q.Section, q.ID, answers[q.ID])
			}
			if err := t.Render(cmd.OutOrStdout()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d questions visible\n", len(visible), len(questions.Catalog))
			return nil
		},
	}

	cmd.Flags().StringVarP(&answersFile, "answers", "a", "", "answers JSON file (- for stdin)")
	return cmd
}

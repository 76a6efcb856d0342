package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the options offered for the next cascade step",
	Long:  "Prints the values offered for the first unanswered step given the --type, --product and --channel answers so far.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initForm(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		steps := env.Flow.Cascade().Steps()
		prior := choicesFromFlags(cmd, steps)
		if len(prior) >= len(steps) {
			return eris.New("options: every step already answered")
		}

		opts, err := env.Flow.Options(ctx, prior)
		if err != nil {
			return eris.Wrap(err, "options")
		}

		step := steps[len(prior)]
		fmt.Fprintf(os.Stdout, "%s (%s):\n", step.Field, step.Field.Column())
		for _, o := range opts {
			fmt.Fprintf(os.Stdout, "  %s\n", o)
		}
		return nil
	},
}

func init() {
	addChoiceFlags(optionsCmd)
	rootCmd.AddCommand(optionsCmd)
}

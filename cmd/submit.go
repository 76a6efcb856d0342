package main

import (
	"context"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/PippinModels/commercial-pricing-app/internal/cascade"
	"github.com/PippinModels/commercial-pricing-app/internal/form"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Record a price range selection in the audit worksheet",
	Long:  "Predicts ranges for the given choices, selects --option (a range code or display) or a --manual amount, and appends the selection to the audit worksheet.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		option, _ := cmd.Flags().GetString("option")
		manual, _ := cmd.Flags().GetString("manual")
		pick, err := pickFromFlags(option, manual)
		if err != nil {
			return err
		}

		env, err := initForm(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		choices := choicesFromFlags(cmd, env.Flow.Cascade().Steps())
		return runSubmit(ctx, os.Stdout, env.Flow, choices, pick)
	},
}

func pickFromFlags(option, manual string) (form.Pick, error) {
	switch {
	case option != "" && manual != "":
		return form.Pick{}, eris.New("submit: --option and --manual are mutually exclusive")
	case manual != "":
		return form.Pick{Option: form.ManualOption, Value: manual}, nil
	case option != "":
		return form.Pick{Option: option}, nil
	}
	return form.Pick{}, eris.New("submit: one of --option or --manual is required")
}

// runSubmit drives one session from predict to submit, printing the notice
// of the last transition.
func runSubmit(ctx context.Context, w io.Writer, flow *form.Flow, choices []cascade.Choice, pick form.Pick) error {
	s, err := flow.Predict(ctx, form.NewSession(uuid.NewString()), choices)
	if err != nil {
		formatNotice(w, s.Notice)
		return eris.Wrap(err, "submit: predict")
	}

	s, err = flow.Choose(s, pick)
	if err != nil {
		formatRanges(w, s)
		return eris.Wrap(err, "submit: choose")
	}

	s, err = flow.Submit(ctx, s)
	formatNotice(w, s.Notice)
	if err != nil {
		return eris.Wrap(err, "submit")
	}
	return nil
}

func init() {
	addChoiceFlags(submitCmd)
	submitCmd.Flags().String("option", "", "range code (e.g. A.) or display to select")
	submitCmd.Flags().String("manual", "", "manual amount to record instead of a derived range")
	rootCmd.AddCommand(submitCmd)
}

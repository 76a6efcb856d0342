package main

import (
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/PippinModels/commercial-pricing-app/internal/form"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Show the candidate price ranges for a type, product and channel",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initForm(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		choices := choicesFromFlags(cmd, env.Flow.Cascade().Steps())
		s, err := env.Flow.Predict(ctx, form.NewSession(uuid.NewString()), choices)
		formatRanges(os.Stdout, s)
		if err != nil {
			return eris.Wrap(err, "predict")
		}
		return nil
	},
}

func init() {
	addChoiceFlags(predictCmd)
	rootCmd.AddCommand(predictCmd)
}

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/PippinModels/commercial-pricing-app/internal/cascade"
	"github.com/PippinModels/commercial-pricing-app/internal/form"
)

// addChoiceFlags registers --<field> and --<field>-other for every lookup field.
func addChoiceFlags(cmd *cobra.Command) {
	for _, f := range []cascade.Field{cascade.FieldType, cascade.FieldProduct, cascade.FieldChannel} {
		cmd.Flags().String(string(f), "", fmt.Sprintf("%s (%s column)", f, f.Column()))
		cmd.Flags().String(string(f)+"-other", "", fmt.Sprintf("free-text %s used in place of an offered option", f))
	}
}

// choicesFromFlags collects choices in cascade step order, stopping at the
// first step with no answer.
func choicesFromFlags(cmd *cobra.Command, steps []cascade.Step) []cascade.Choice {
	var out []cascade.Choice
	for _, s := range steps {
		value, _ := cmd.Flags().GetString(string(s.Field))
		other, _ := cmd.Flags().GetString(string(s.Field) + "-other")
		switch {
		case strings.TrimSpace(other) != "":
			out = append(out, cascade.Choice{Value: other, Other: true})
		case strings.TrimSpace(value) != "":
			out = append(out, cascade.Choice{Value: value})
		default:
			return out
		}
	}
	return out
}

func formatRanges(w io.Writer, s form.Session) {
	if len(s.Ranges) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CODE\tPAIR\tRANGE")
		fmt.Fprintln(tw, "----\t----\t-----")
		for _, r := range s.Ranges {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Code, r.Label, r.Display)
		}
		tw.Flush() //nolint:errcheck
	}
	formatNotice(w, s.Notice)
}

func formatNotice(w io.Writer, n *form.Notice) {
	if n == nil {
		return
	}
	fmt.Fprintf(w, "[%s] %s\n", n.Level, n.Message)
}

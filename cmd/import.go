package main

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PippinModels/commercial-pricing-app/internal/rowstore"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a pricing workbook into the configured store",
	Long:  "Copies one sheet of an offline xlsx workbook produced by the pricing pipeline into the configured source, replacing the target worksheet.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		path, _ := cmd.Flags().GetString("xlsx")
		sheet, _ := cmd.Flags().GetString("sheet")
		target, _ := cmd.Flags().GetString("worksheet")
		if sheet == "" {
			sheet = cfg.Form.SummaryWorksheet
		}
		if target == "" {
			target = cfg.Form.SummaryWorksheet
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		rows, err := readWorkbook(ctx, path, sheet)
		if err != nil {
			return err
		}

		doc, err := rowstore.Connect(ctx, cfg.Source)
		if err != nil {
			return eris.Wrap(err, "import: connect source")
		}
		defer doc.Close() //nolint:errcheck

		if _, err := doc.Replace(ctx, target, rows); err != nil {
			return eris.Wrap(err, "import")
		}

		zap.L().Info("import complete",
			zap.String("xlsx", path),
			zap.String("sheet", sheet),
			zap.String("document", doc.ID()),
			zap.String("worksheet", target),
			zap.Int("rows", len(rows)),
		)
		return nil
	},
}

// readWorkbook returns the sheet's rows with numeric cells below the header
// converted to json.Number so remote stores keep them as numbers.
func readWorkbook(ctx context.Context, path, sheet string) ([][]any, error) {
	b, err := rowstore.NewXLSX(path, false)
	if err != nil {
		return nil, err
	}
	defer b.Close() //nolint:errcheck

	tbl, err := rowstore.NewDocument(path, b).Open(ctx, sheet)
	if err != nil {
		return nil, err
	}
	values, err := tbl.Values(ctx)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, eris.Errorf("import: sheet %q is empty", sheet)
	}

	out := make([][]any, len(values))
	for i, row := range values {
		out[i] = make([]any, len(row))
		for j, v := range row {
			if i == 0 {
				out[i][j] = v
				continue
			}
			out[i][j] = importCell(v)
		}
	}
	return out, nil
}

func importCell(v string) any {
	s := strings.TrimSpace(v)
	if s == "" {
		return ""
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return json.Number(d.String())
	}
	return v
}

func init() {
	importCmd.Flags().String("xlsx", "", "path to xlsx workbook (required)")
	importCmd.Flags().String("sheet", "", "sheet to read (default form.summary_worksheet)")
	importCmd.Flags().String("worksheet", "", "worksheet to replace (default form.summary_worksheet)")
	_ = importCmd.MarkFlagRequired("xlsx")
	rootCmd.AddCommand(importCmd)
}

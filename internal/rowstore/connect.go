package rowstore

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/PippinModels/commercial-pricing-app/internal/config"
	"github.com/PippinModels/commercial-pricing-app/pkg/sheets"
)

// Connect opens the document selected by cfg and verifies it is reachable.
// A missing document is reported as *NotFoundError.
func Connect(ctx context.Context, cfg config.SourceConfig) (*Document, error) {
	b, id, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	doc := NewDocument(id, b)
	if _, err := doc.Worksheets(ctx); err != nil {
		doc.Close() //nolint:errcheck
		return nil, err
	}

	zap.L().Debug("rowstore: connected",
		zap.String("driver", cfg.Driver),
		zap.String("document", id),
	)
	return doc, nil
}

func openBackend(ctx context.Context, cfg config.SourceConfig) (Backend, string, error) {
	switch cfg.Driver {
	case config.DriverSheets:
		client, err := sheetsClient(ctx, cfg)
		if err != nil {
			return nil, "", err
		}
		return NewSheetsBackend(client, cfg.SpreadsheetID), cfg.SpreadsheetID, nil
	case config.DriverXLSX:
		b, err := NewXLSX(cfg.Path, cfg.Create)
		return b, cfg.Path, err
	case config.DriverSQLite:
		b, err := NewSQLite(ctx, cfg.Path, cfg.Create)
		return b, cfg.Path, err
	default:
		return nil, "", eris.Errorf("rowstore: unsupported driver %q", cfg.Driver)
	}
}

func sheetsClient(ctx context.Context, cfg config.SourceConfig) (sheets.Client, error) {
	key := []byte(cfg.CredentialsJSON)
	if len(key) == 0 {
		if cfg.CredentialsFile == "" {
			return nil, eris.New("rowstore: sheets driver requires service account credentials")
		}
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, eris.Wrap(err, "rowstore: read credentials file")
		}
		key = b
	}

	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	hc, err := sheets.NewServiceAccountHTTPClient(ctx, key, timeout)
	if err != nil {
		return nil, err
	}

	opts := []sheets.Option{
		sheets.WithHTTPClient(hc),
		sheets.WithRateLimit(cfg.RateLimit),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, sheets.WithBaseURL(cfg.BaseURL))
	}
	return sheets.NewClient(opts...), nil
}

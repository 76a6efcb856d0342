package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSheets, cfg.Source.Driver)
	assert.Equal(t, "https://sheets.googleapis.com/v4", cfg.Source.BaseURL)
	assert.InDelta(t, 1.0, cfg.Source.RateLimit, 0.001)
	assert.Equal(t, 30, cfg.Source.TimeoutSecs)
	assert.False(t, cfg.Source.Create)
	assert.Equal(t, "Summary Sheet", cfg.Form.SummaryWorksheet)
	assert.Equal(t, "User Prediction Selections", cfg.Form.AuditWorksheet)
	assert.Equal(t, RoundingCeilStep, cfg.Form.Rounding)
	assert.Equal(t, 5, cfg.Form.RoundingStep)
	assert.Equal(t, "Local", cfg.Form.Timezone)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 60, cfg.Server.SessionTTLMins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
source:
  driver: xlsx
  path: /data/pricing.xlsx
form:
  rounding: cents
  audit_worksheet: Predictions Selections
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverXLSX, cfg.Source.Driver)
	assert.Equal(t, "/data/pricing.xlsx", cfg.Source.Path)
	assert.Equal(t, RoundingCents, cfg.Form.Rounding)
	assert.Equal(t, "Predictions Selections", cfg.Form.AuditWorksheet)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, "Summary Sheet", cfg.Form.SummaryWorksheet)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
source:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("PRICING_SOURCE_DRIVER", "sheets")
	t.Setenv("PRICING_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, DriverSheets, cfg.Source.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("PRICING_SERVER_PORT", "3000")
	t.Setenv("PRICING_SOURCE_SPREADSHEET_ID", "sheet-abc")
	t.Setenv("PRICING_FORM_ROUNDING_STEP", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "sheet-abc", cfg.Source.SpreadsheetID)
	assert.Equal(t, 10, cfg.Form.RoundingStep)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("source: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Source.Driver = DriverSheets
	cfg.Source.SpreadsheetID = "sheet-id"
	cfg.Source.CredentialsJSON = `{"type":"service_account"}`
	cfg.Form.SummaryWorksheet = "Summary Sheet"
	cfg.Form.AuditWorksheet = "User Prediction Selections"
	cfg.Form.Rounding = RoundingCeilStep
	cfg.Form.RoundingStep = 5
	return cfg
}

func TestValidate_AllPresent(t *testing.T) {
	assert.NoError(t, validDefaults().Validate())
}

func TestValidate_SheetsMissing(t *testing.T) {
	cfg := validDefaults()
	cfg.Source.SpreadsheetID = ""
	cfg.Source.CredentialsJSON = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source.spreadsheet_id")
	assert.Contains(t, err.Error(), "credentials")
}

func TestValidate_FileDriverNeedsPath(t *testing.T) {
	for _, driver := range []string{DriverXLSX, DriverSQLite} {
		cfg := validDefaults()
		cfg.Source.Driver = driver

		err := cfg.Validate()
		require.Error(t, err, driver)
		assert.Contains(t, err.Error(), "source.path")

		cfg.Source.Path = "pricing.db"
		assert.NoError(t, cfg.Validate(), driver)
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Source.Driver = "postgres"
	assert.Error(t, cfg.Validate())
}

func TestValidate_Rounding(t *testing.T) {
	cfg := validDefaults()
	cfg.Form.Rounding = "nearest"
	assert.Error(t, cfg.Validate())

	cfg = validDefaults()
	cfg.Form.RoundingStep = 0
	assert.Error(t, cfg.Validate())

	cfg = validDefaults()
	cfg.Form.Rounding = RoundingCents
	cfg.Form.RoundingStep = 0
	assert.NoError(t, cfg.Validate())
}

func TestRedacted(t *testing.T) {
	cfg := validDefaults()
	red := cfg.Redacted()

	assert.Equal(t, "<redacted>", red.Source.CredentialsJSON)
	assert.Equal(t, `{"type":"service_account"}`, cfg.Source.CredentialsJSON)
}

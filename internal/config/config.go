package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Source drivers.
const (
	DriverSheets = "sheets"
	DriverXLSX   = "xlsx"
	DriverSQLite = "sqlite"
)

// Rounding modes for derived price ranges.
const (
	RoundingCents    = "cents"
	RoundingCeilStep = "ceil_step"
)

// Config holds the full application configuration.
type Config struct {
	Source SourceConfig `yaml:"source" mapstructure:"source"`
	Form   FormConfig   `yaml:"form" mapstructure:"form"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// SourceConfig selects the tabular document holding the pricing and audit worksheets.
type SourceConfig struct {
	Driver          string  `yaml:"driver" mapstructure:"driver"`
	SpreadsheetID   string  `yaml:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	CredentialsFile string  `yaml:"credentials_file" mapstructure:"credentials_file"`
	CredentialsJSON string  `yaml:"credentials_json" mapstructure:"credentials_json"`
	BaseURL         string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit       float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Path            string  `yaml:"path" mapstructure:"path"`
	Create          bool    `yaml:"create" mapstructure:"create"`
}

// FormConfig configures the pricing form.
type FormConfig struct {
	SummaryWorksheet string `yaml:"summary_worksheet" mapstructure:"summary_worksheet"`
	AuditWorksheet   string `yaml:"audit_worksheet" mapstructure:"audit_worksheet"`
	Rounding         string `yaml:"rounding" mapstructure:"rounding"`
	RoundingStep     int    `yaml:"rounding_step" mapstructure:"rounding_step"`
	Definition       string `yaml:"definition" mapstructure:"definition"`
	Timezone         string `yaml:"timezone" mapstructure:"timezone"`
}

// ServerConfig configures the HTTP form server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	CORSOrigins    []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	SessionTTLMins int      `yaml:"session_ttl_mins" mapstructure:"session_ttl_mins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PRICING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source.driver", DriverSheets)
	v.SetDefault("source.spreadsheet_id", "")
	v.SetDefault("source.credentials_file", "")
	v.SetDefault("source.credentials_json", "")
	v.SetDefault("source.base_url", "https://sheets.googleapis.com/v4")
	v.SetDefault("source.rate_limit", 1.0)
	v.SetDefault("source.timeout_secs", 30)
	v.SetDefault("source.path", "")
	v.SetDefault("source.create", false)
	v.SetDefault("form.summary_worksheet", "Summary Sheet")
	v.SetDefault("form.audit_worksheet", "User Prediction Selections")
	v.SetDefault("form.rounding", RoundingCeilStep)
	v.SetDefault("form.rounding_step", 5)
	v.SetDefault("form.definition", "")
	v.SetDefault("form.timezone", "Local")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.session_ttl_mins", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings needed to open the source document and
// derive ranges are present.
func (c *Config) Validate() error {
	var missing []string

	switch c.Source.Driver {
	case DriverSheets:
		if c.Source.SpreadsheetID == "" {
			missing = append(missing, "source.spreadsheet_id (PRICING_SOURCE_SPREADSHEET_ID)")
		}
		if c.Source.CredentialsFile == "" && c.Source.CredentialsJSON == "" {
			missing = append(missing, "source.credentials_file or source.credentials_json (PRICING_SOURCE_CREDENTIALS_JSON)")
		}
	case DriverXLSX, DriverSQLite:
		if c.Source.Path == "" {
			missing = append(missing, "source.path (PRICING_SOURCE_PATH)")
		}
	default:
		return eris.Errorf("config: unsupported source driver %q", c.Source.Driver)
	}

	if c.Form.SummaryWorksheet == "" {
		missing = append(missing, "form.summary_worksheet")
	}
	if c.Form.AuditWorksheet == "" {
		missing = append(missing, "form.audit_worksheet")
	}
	if len(missing) > 0 {
		return eris.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}

	switch c.Form.Rounding {
	case RoundingCents:
	case RoundingCeilStep:
		if c.Form.RoundingStep <= 0 {
			return eris.Errorf("config: form.rounding_step must be positive, got %d", c.Form.RoundingStep)
		}
	default:
		return eris.Errorf("config: unsupported rounding mode %q", c.Form.Rounding)
	}

	return nil
}

// Redacted returns a copy with credentials masked, safe to print.
func (c Config) Redacted() Config {
	if c.Source.CredentialsJSON != "" {
		c.Source.CredentialsJSON = "<redacted>"
	}
	return c
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

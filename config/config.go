package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. NLK_LOG_LEVEL.
const EnvPrefix = "NLK"

// Config holds the settings shared by all tools.
type Config struct {
	LogLevel      string `mapstructure:"LOG_LEVEL" validate:"oneof=trace debug info warn error fatal disabled"`
	OutputDir     string `mapstructure:"OUTPUT_DIR" validate:"required"`
	Version       string `mapstructure:"VERSION" validate:"required"`
	Publisher     string `mapstructure:"PUBLISHER" validate:"required"`
	CanonicalBase string `mapstructure:"CANONICAL_BASE" validate:"required,url"`
	Encoding      string `mapstructure:"ENCODING" validate:"required"`
	DatabaseURL   string `mapstructure:"DATABASE_URL" validate:"omitempty,url"`
}

var defaults = map[string]string{
	"LOG_LEVEL":      "info",
	"OUTPUT_DIR":     "output",
	"VERSION":        "7280.77",
	"PUBLISHER":      "Direktoratet for e-helse",
	"CANONICAL_BASE": "http://hl7.no/fhir/ig/nlk-test",
	"ENCODING":       "utf-8",
	"DATABASE_URL":   "",
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"log-level":      "LOG_LEVEL",
	"output-dir":     "OUTPUT_DIR",
	"nlk-version":    "VERSION",
	"publisher":      "PUBLISHER",
	"canonical-base": "CANONICAL_BASE",
	"encoding":       "ENCODING",
	"database-url":   "DATABASE_URL",
}

var flagUsage = map[string]string{
	"log-level":      "log level (trace, debug, info, warn, error)",
	"output-dir":     "directory for generated files",
	"nlk-version":    "codebook version written into generated CodeSystems",
	"publisher":      "publisher written into generated CodeSystems",
	"canonical-base": "canonical base URL of generated CodeSystems",
	"encoding":       "preferred encoding of CSV input",
	"database-url":   "Postgres connection string",
}

var validate = validator.New()

// RegisterFlags adds the shared settings to flags, defaulting to the built-in
// values. Load only lets flags that were set override the environment.
func RegisterFlags(flags *pflag.FlagSet) {
	for name, key := range flagKeys {
		flags.String(name, defaults[key], flagUsage[name])
	}
}

// Load merges defaults, an optional .env file, NLK_* environment variables and
// any of the known flags present in flags. Flags that were not set on the
// command line do not override the environment.
func Load(flags *pflag.FlagSet) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads path into the environment when it exists.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading %s file: %w", path, err)
	}
	return nil
}

// NewLogger creates the console logger used by all tools. Logs go to stderr so
// that reports printed on stdout stay clean.
func NewLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).
		Level(lvl).
		With().
		Timestamp().
		Caller().
		Logger()
}

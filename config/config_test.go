package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "7280.77", cfg.Version)
	assert.Equal(t, "http://hl7.no/fhir/ig/nlk-test", cfg.CanonicalBase)
	assert.Equal(t, "utf-8", cfg.Encoding)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadEnvAndFlags(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("NLK_LOG_LEVEL", "DEBUG")
	t.Setenv("NLK_ENCODING", "latin1")
	t.Setenv("NLK_OUTPUT_DIR", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output-dir", "csv_output", "")
	flags.String("encoding", "utf-8", "")
	require.NoError(t, flags.Parse([]string{"--output-dir", "from-flag"}))

	cfg, err := Load(flags)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "from-flag", cfg.OutputDir)
	assert.Equal(t, "latin1", cfg.Encoding)
}

func TestLoadInvalid(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("NLK_LOG_LEVEL", "loud")

	_, err := Load(nil)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, NewLogger("warn").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, NewLogger("").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, NewLogger("nonsense").GetLevel())
}

func TestRegisterFlags(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("NLK_PUBLISHER", "From env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse([]string{"--nlk-version", "8000.1"}))

	cfg, err := Load(flags)
	require.NoError(t, err)
	assert.Equal(t, "8000.1", cfg.Version)
	assert.Equal(t, "From env", cfg.Publisher)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.NotNil(t, flags.Lookup("database-url"))
}

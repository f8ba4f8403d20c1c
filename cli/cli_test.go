package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommandLoadsConfig(t *testing.T) {
	chdir(t, t.TempDir())
	outDir := filepath.Join(t.TempDir(), "out")

	var got *Env
	var gotArgs []string
	cmd := NewCommand("tool <file>", "test tool", cobra.ExactArgs(1), func(cmd *cobra.Command, args []string, env *Env) error {
		got, gotArgs = env, args
		env.Printer.Println("hello")
		return nil
	})
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"input.csv", "--output-dir", outDir, "--nlk-version", "1.2", "--log-file"})

	require.NoError(t, cmd.Execute())
	require.NotNil(t, got)
	assert.Equal(t, []string{"input.csv"}, gotArgs)
	assert.Equal(t, outDir, got.Config.OutputDir)
	assert.Equal(t, "1.2", got.Config.Version)
	assert.Equal(t, outDir, got.Output.GetBaseDir())
	assert.Equal(t, "hello\n", stdout.String())
	assert.FileExists(t, filepath.Join(outDir, "logs", "app.log"))
}

func TestNewCommandTimestamped(t *testing.T) {
	chdir(t, t.TempDir())
	outDir := filepath.Join(t.TempDir(), "out")

	var dir string
	cmd := NewCommand("tool", "test tool", cobra.NoArgs, func(_ *cobra.Command, _ []string, env *Env) error {
		dir = env.Output.GetBaseDir()
		return nil
	})
	cmd.SetArgs([]string{"--output-dir", outDir, "--timestamped"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, outDir, filepath.Dir(dir))
	assert.DirExists(t, dir)
}

func TestRequireFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codes.csv")
	require.NoError(t, os.WriteFile(path, []byte("kode\n"), 0644))

	assert.NoError(t, RequireFiles(path))
	assert.ErrorContains(t, RequireFiles(path, filepath.Join(dir, "missing.csv")), "file not found")
	assert.Error(t, RequireFiles(dir))
}

func TestNewCommandArgs(t *testing.T) {
	chdir(t, t.TempDir())
	cmd := NewCommand("tool <file>", "test tool", cobra.ExactArgs(1), func(*cobra.Command, []string, *Env) error {
		return nil
	})
	cmd.SetArgs(nil)
	assert.Error(t, cmd.Execute())
}

func TestNewCommandInvalidConfig(t *testing.T) {
	chdir(t, t.TempDir())
	cmd := NewCommand("tool", "test tool", cobra.NoArgs, func(*cobra.Command, []string, *Env) error {
		t.Fatal("run must not be called")
		return nil
	})
	cmd.SetArgs([]string{"--log-level", "loud"})
	assert.Error(t, cmd.Execute())
	_, err := os.Stat("output")
	assert.True(t, os.IsNotExist(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 3, ExitCode(&ExitError{Code: 3}))
	assert.Equal(t, 1, ExitCode(errors.Join(errors.New("wrapped"), &ExitError{Code: 1})))
}

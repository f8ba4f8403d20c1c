// Package cli wires configuration, logging and output for the command-line
// tools.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/SanteonNL/nlk/config"
	"github.com/SanteonNL/nlk/output"
	"github.com/SanteonNL/nlk/util"
	"github.com/SanteonNL/nlk/ux"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// ExitError ends a run with a specific exit code, e.g. when a validation
// found errors. The message has already been reported.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Env is handed to every tool run.
type Env struct {
	Config  *config.Config
	Log     zerolog.Logger
	Output  *output.OutputManager
	Printer *ux.Printer
}

// RunFunc is the body of a tool.
type RunFunc func(cmd *cobra.Command, args []string, env *Env) error

// NewCommand creates a root command with the shared flags. run receives the
// loaded configuration, a logger and the output directory.
func NewCommand(use, short string, args cobra.PositionalArgs, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          args,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterFlags(cmd.PersistentFlags())
	cmd.PersistentFlags().Bool("log-file", false, "also write logs to <output-dir>/logs/app.log")
	cmd.PersistentFlags().Bool("timestamped", false, "write output to a timestamped subdirectory of <output-dir>")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		log := config.NewLogger(cfg.LogLevel)

		logFile, _ := cmd.Flags().GetBool("log-file")
		timestamped, _ := cmd.Flags().GetBool("timestamped")
		om, err := output.NewOutputManager(cfg.OutputDir, output.Options{LogFile: logFile, Timestamped: timestamped}, log)
		if err != nil {
			return err
		}
		defer om.Close()
		if timestamped {
			omLog := om.GetLogger()
			omLog.Info().Str("timestamp", om.GetTimestamp()).Str("dir", om.GetBaseDir()).Msg("Writing timestamped output")
		}

		return run(cmd, args, &Env{
			Config:  cfg,
			Log:     om.GetLogger().With().Str("tool", cmd.Name()).Logger(),
			Output:  om,
			Printer: ux.NewPrinter(cmd.OutOrStdout()),
		})
	}
	return cmd
}

// RequireFiles fails when one of paths is not an existing regular file.
func RequireFiles(paths ...string) error {
	for _, p := range paths {
		if !util.FileExists(p) {
			return fmt.Errorf("file not found: %s", p)
		}
	}
	return nil
}

// ExitCode maps the error returned by a command onto a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// Execute runs cmd and exits the process with its exit code.
func Execute(cmd *cobra.Command) {
	err := cmd.Execute()
	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
	os.Exit(ExitCode(err))
}

package main

import (
	"fmt"
	"os"

	"github.com/SanteonNL/nlk/cli"
	"github.com/SanteonNL/nlk/fsh"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	cmd := cli.NewCommand("fsh-fix <input.fsh> <output.fsh>", "Rewrite multi-line property assignments into single-line form", cobra.ExactArgs(2), run)
	cli.Execute(cmd)
}

func run(cmd *cobra.Command, args []string, env *cli.Env) error {
	if err := cli.RequireFiles(args[0]); err != nil {
		return err
	}
	in, out := args[0], args[1]

	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", in, err)
	}

	fixed, stats := fsh.FixPropertySyntax(string(data))
	env.Log.Info().Int("patterns", stats.Original).Str("file", in).Msg("Found multi-line property patterns")

	if err := os.WriteFile(out, []byte(fixed), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	env.Printer.Success(message.NewPrinter(language.English).Sprintf("Fixed file written to %s", out))
	stats.Print(env.Printer)
	return nil
}

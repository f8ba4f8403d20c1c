package main

import (
	"github.com/SanteonNL/nlk/cli"
	"github.com/SanteonNL/nlk/fsh"
	"github.com/spf13/cobra"
)

func main() {
	cmd := cli.NewCommand("fsh-validate <codesystem.fsh>", "Validate an FSH CodeSystem file", cobra.ExactArgs(1), run)
	cmd.Flags().String("report-file", "", "write the findings as JSON to this file")
	cli.Execute(cmd)
}

func run(cmd *cobra.Command, args []string, env *cli.Env) error {
	if err := cli.RequireFiles(args[0]); err != nil {
		return err
	}
	reportFile, _ := cmd.Flags().GetString("report-file")

	result, err := fsh.NewValidator(env.Log).ValidateFile(args[0])
	if err != nil {
		return err
	}
	result.Print(env.Printer)

	if reportFile != "" {
		if _, err := env.Output.WriteJSON(result, reportFile); err != nil {
			return err
		}
	}

	if !result.Passed() {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

package main

import (
	"github.com/SanteonNL/nlk/cli"
	"github.com/SanteonNL/nlk/codebook"
	"github.com/SanteonNL/nlk/fsh"
	"github.com/spf13/cobra"
)

func main() {
	cmd := cli.NewCommand("fsh-compare <codes.csv> <codesystem.fsh>", "Compare a codebook domain with the concepts of a CodeSystem", cobra.ExactArgs(2), run)
	cmd.Flags().String("domain", fsh.DefaultExtractOptions().Value, "primary or secondary domain to compare")
	cmd.Flags().Bool("strict", false, "exit with status 1 when differences are found")
	cmd.Flags().String("report-file", "", "write the differences as YAML to this file")
	cli.Execute(cmd)
}

func run(cmd *cobra.Command, args []string, env *cli.Env) error {
	if err := cli.RequireFiles(args[0], args[1]); err != nil {
		return err
	}
	domain, _ := cmd.Flags().GetString("domain")
	strict, _ := cmd.Flags().GetBool("strict")
	reportFile, _ := cmd.Flags().GetString("report-file")

	ds, err := codebook.LoadDataset(args[0], env.Config.Encoding, env.Log)
	if err != nil {
		return err
	}
	cs, err := fsh.NewParser(env.Log).ParseFile(args[1])
	if err != nil {
		return err
	}

	cmp := fsh.Compare(ds.Codes(), cs, domain)
	cmp.Print(env.Printer)

	if reportFile != "" {
		if _, err := env.Output.WriteYAML(cmp, reportFile); err != nil {
			return err
		}
	}
	if strict && !cmp.Perfect() {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

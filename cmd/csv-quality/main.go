package main

import (
	"fmt"

	"github.com/SanteonNL/nlk/cli"
	"github.com/SanteonNL/nlk/csvquality"
	"github.com/SanteonNL/nlk/table"
	"github.com/SanteonNL/nlk/util"
	"github.com/spf13/cobra"
)

func main() {
	cmd := cli.NewCommand("csv-quality <file.csv>", "Check a CSV file for data quality issues", cobra.ExactArgs(1), run)
	flags := cmd.Flags()
	flags.Bool("clean", false, "write a cleaned copy of the file to the output directory")
	flags.String("report-file", "", "write the report to this file")
	flags.String("format", "text", "report format: text, json or yaml")
	flags.Bool("quiet", false, "do not print the report")
	cli.Execute(cmd)
}

func run(cmd *cobra.Command, args []string, env *cli.Env) error {
	if err := cli.RequireFiles(args[0]); err != nil {
		return err
	}
	flags := cmd.Flags()
	clean, _ := flags.GetBool("clean")
	reportFile, _ := flags.GetString("report-file")
	format, _ := flags.GetString("format")
	quiet, _ := flags.GetBool("quiet")

	v := csvquality.NewValidator(args[0], env.Config.Encoding, env.Log)
	report, err := v.Run()
	if err != nil {
		return err
	}

	if !quiet {
		if format == "text" {
			env.Printer.Println(report.Text())
		} else {
			report.Print(env.Printer)
		}
	}

	if reportFile != "" {
		var path string
		switch format {
		case "json":
			path, err = env.Output.WriteJSON(report, reportFile)
		case "yaml":
			path, err = env.Output.WriteYAML(report, reportFile)
		case "text":
			path, err = env.Output.WriteText(report.Text()+"\n", reportFile)
		default:
			return fmt.Errorf("unsupported report format: %s", format)
		}
		if err != nil {
			return err
		}
		env.Log.Info().Str("file", path).Msg("Saved report")
	}

	if clean && v.Table() != nil {
		cleaned, err := v.Clean()
		if err != nil {
			return err
		}
		path := env.Output.GetOutputPath(util.FileStem(args[0]) + "_cleaned.csv")
		if err := cleaned.WriteFile(path, table.WriteOptions{}); err != nil {
			return err
		}
		env.Printer.Success(fmt.Sprintf("Cleaned data saved to %s (%d rows removed)", path, report.TotalRows-report.CleanedRows))
	}

	if code := report.ExitCode(); code != 0 {
		return &cli.ExitError{Code: code}
	}
	return nil
}

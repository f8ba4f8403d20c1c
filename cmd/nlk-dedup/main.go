package main

import (
	"fmt"

	"github.com/SanteonNL/nlk/cli"
	"github.com/SanteonNL/nlk/codebook"
	"github.com/SanteonNL/nlk/table"
	"github.com/SanteonNL/nlk/util"
	"github.com/spf13/cobra"
)

func main() {
	cmd := cli.NewCommand("nlk-dedup <codes.csv>", "Keep one version of every repeated code", cobra.ExactArgs(1), run)
	cmd.Flags().String("output", "", "output file name (default: <input>_deduplicated.csv)")
	cmd.Flags().Bool("bom", true, "write a UTF-8 byte order mark and quote all fields")
	cmd.Flags().String("report-file", "", "write the selected versions as JSON to this file")
	cli.Execute(cmd)
}

func run(cmd *cobra.Command, args []string, env *cli.Env) error {
	if err := cli.RequireFiles(args[0]); err != nil {
		return err
	}
	input := args[0]
	name, _ := cmd.Flags().GetString("output")
	bom, _ := cmd.Flags().GetBool("bom")
	reportFile, _ := cmd.Flags().GetString("report-file")
	if name == "" {
		name = util.FileStem(input) + "_deduplicated.csv"
	}

	tbl, enc, err := table.Load(input, env.Config.Encoding)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", input, err)
	}
	env.Log.Info().Str("file", input).Str("encoding", enc).Int("rows", tbl.Nrow()).Msg("Loaded codes")

	result, err := codebook.Deduplicate(tbl, env.Log)
	if err != nil {
		return err
	}

	path := env.Output.GetOutputPath(name)
	if err := result.Table.WriteFile(path, table.WriteOptions{QuoteAll: bom, BOM: bom}); err != nil {
		return err
	}
	if reportFile != "" {
		if _, err := env.Output.WriteJSON(result, reportFile); err != nil {
			return err
		}
	}

	p := env.Printer
	p.Success(fmt.Sprintf("Wrote %s", path))
	p.Println(fmt.Sprintf("Rows: %d -> %d (%d repeated codes, %d rows removed)",
		result.InputRows, result.OutputRows, result.DuplicateCodes, result.InputRows-result.OutputRows))
	return nil
}

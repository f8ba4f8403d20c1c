package main

import (
	"fmt"

	"github.com/SanteonNL/nlk/cli"
	"github.com/SanteonNL/nlk/convert"
	"github.com/SanteonNL/nlk/ux"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	cmd := cli.NewCommand("nlk-convert <workbook.xlsx>", "Convert the laboratory codebook workbook to CSV", cobra.ExactArgs(1), run)
	cmd.Flags().String("sheet", "", "sheet to read (default: first sheet)")
	cmd.Flags().String("url", "", "download the workbook from this URL first")
	cli.Execute(cmd)
}

func run(cmd *cobra.Command, args []string, env *cli.Env) error {
	workbook := args[0]
	sheet, _ := cmd.Flags().GetString("sheet")
	url, _ := cmd.Flags().GetString("url")

	if url != "" {
		if err := convert.NewDownloader(env.Log).DownloadFile(cmd.Context(), workbook, url); err != nil {
			return err
		}
	}
	if err := cli.RequireFiles(workbook); err != nil {
		return err
	}

	result, err := convert.NewConverter(env.Log).Convert(workbook, env.Output.GetBaseDir(), sheet)
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", workbook, err)
	}

	p := env.Printer
	mp := message.NewPrinter(language.English)
	p.Success("Conversion completed")
	p.Println(ux.Table([]string{"Output", "File"}, [][]string{
		{"Full CSV", result.OutputFiles.FullCSV},
		{"Processing CSV", result.OutputFiles.ProcessingCSV},
		{"Summary", result.OutputFiles.Summary},
	}))
	p.Println(mp.Sprintf("Records: %d, columns: %d", result.Statistics.Rows, result.Statistics.Columns))
	if result.Statistics.EmptyRows > 0 {
		p.Println(mp.Sprintf("Removed %d empty rows", result.Statistics.EmptyRows))
	}
	if result.Statistics.Duplicates > 0 {
		p.Warning(mp.Sprintf("%d duplicate rows", result.Statistics.Duplicates))
	}
	return nil
}

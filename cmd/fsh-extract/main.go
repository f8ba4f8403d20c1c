package main

import (
	"github.com/SanteonNL/nlk/cli"
	"github.com/SanteonNL/nlk/fsh"
	"github.com/spf13/cobra"
)

func main() {
	cmd := cli.NewCommand("fsh-extract <input.fsh> <output.fsh>", "Extract a subset of concepts into a smaller CodeSystem", cobra.ExactArgs(2), run)
	def := fsh.DefaultExtractOptions()
	flags := cmd.Flags()
	flags.StringSlice("property", def.Properties, "concept properties to select on, any of them may match")
	flags.String("value", def.Value, "property value to select")
	flags.String("name", def.Name, "CodeSystem name of the subset")
	flags.String("id", def.ID, "id of the subset, also used as last URL segment")
	flags.String("title", def.Title, "title of the subset")
	flags.String("description", def.Description, "description of the subset")
	cli.Execute(cmd)
}

func run(cmd *cobra.Command, args []string, env *cli.Env) error {
	if err := cli.RequireFiles(args[0]); err != nil {
		return err
	}
	flags := cmd.Flags()
	var opts fsh.ExtractOptions
	opts.Properties, _ = flags.GetStringSlice("property")
	opts.Value, _ = flags.GetString("value")
	opts.Name, _ = flags.GetString("name")
	opts.ID, _ = flags.GetString("id")
	opts.Title, _ = flags.GetString("title")
	opts.Description, _ = flags.GetString("description")

	result, err := fsh.NewExtractor(opts, env.Log).ExtractFile(args[0], args[1])
	if err != nil {
		return err
	}

	env.Printer.Success("Subset CodeSystem written to " + args[1])
	result.Print(env.Printer)
	return nil
}

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/SanteonNL/nlk/cli"
	"github.com/SanteonNL/nlk/codebook"
	"github.com/SanteonNL/nlk/fsh"
	"github.com/spf13/cobra"
)

func main() {
	cmd := cli.NewCommand("fsh-generate <codes.csv>", "Generate an FSH CodeSystem from the laboratory codebook", cobra.ExactArgs(1), run)
	var profiles []string
	for _, p := range fsh.Profiles {
		profiles = append(profiles, string(p))
	}
	cmd.Flags().String("profile", string(fsh.ProfileDetailed), "generation profile: "+strings.Join(profiles, ", "))
	cmd.Flags().String("output", "", "output file name (default: nlk.codesystem-<profile>.fsh)")
	cli.Execute(cmd)
}

func run(cmd *cobra.Command, args []string, env *cli.Env) error {
	if err := cli.RequireFiles(args[0]); err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("output")
	profileName, _ := cmd.Flags().GetString("profile")
	profile, err := fsh.ParseProfile(profileName)
	if err != nil {
		return fmt.Errorf("%w: %s", err, profileName)
	}
	if name == "" {
		name = "nlk.codesystem-" + string(profile) + ".fsh"
	}

	ds, err := codebook.LoadDataset(args[0], env.Config.Encoding, env.Log)
	if err != nil {
		return err
	}

	g, err := fsh.NewGenerator(fsh.Options{
		Profile:       profile,
		Version:       env.Config.Version,
		Publisher:     env.Config.Publisher,
		CanonicalBase: env.Config.CanonicalBase,
		Source:        filepath.Base(args[0]),
	}, env.Log)
	if err != nil {
		return err
	}

	result, err := g.GenerateFile(env.Output.GetOutputPath(name), ds.Codes())
	if err != nil {
		return err
	}

	env.Printer.Success("FSH CodeSystem written to " + result.Path)
	result.Print(env.Printer)
	if dups := codebook.DuplicateCodes(ds.Codes()); len(dups) > 0 && profile != fsh.ProfileBasic {
		env.Log.Warn().Int("codes", len(dups)).Strs("sample", dups[:min(len(dups), 10)]).Msg("Codes occur more than once")
		env.Printer.Warning(fmt.Sprintf("%d codes occur more than once; run nlk-dedup first for a valid CodeSystem", len(dups)))
	}
	return nil
}

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/SanteonNL/nlk/cli"
	"github.com/SanteonNL/nlk/codebook"
	"github.com/SanteonNL/nlk/models/nlk"
	"github.com/SanteonNL/nlk/util"
	"github.com/SanteonNL/nlk/ux"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var extensions = map[string]string{
	codebook.FormatCSV:   ".csv",
	codebook.FormatExcel: ".xlsx",
	codebook.FormatJSON:  ".json",
	codebook.FormatSQL:   ".sql",
}

func main() {
	cmd := cli.NewCommand("nlk-process <codes.csv>", "Filter, search and export the laboratory codebook", cobra.ExactArgs(1), run)
	flags := cmd.Flags()
	flags.Bool("active", false, "keep only codes that are currently active")
	flags.Bool("historical", false, "keep only codes that have expired")
	flags.String("domain", "", "keep codes whose primary or secondary domain contains this text")
	flags.String("search", "", "keep codes matching this text in the name, definition, component, system or property")
	flags.String("sort", "", "order the selection by this column")
	flags.Bool("unique", false, "keep only the first row of every code")
	flags.StringSlice("format", nil, "export formats: "+strings.Join(codebook.ExportFormats, ", "))
	flags.String("output", "", "export file name without extension (default: <input>_<selection>)")
	flags.Bool("stats", false, "print statistics per primary domain")
	flags.Bool("load-db", false, "load the selected codes into the database at --database-url")
	flags.Bool("replace", false, "empty the database table before loading")
	cli.Execute(cmd)
}

func run(cmd *cobra.Command, args []string, env *cli.Env) error {
	if err := cli.RequireFiles(args[0]); err != nil {
		return err
	}
	flags := cmd.Flags()
	active, _ := flags.GetBool("active")
	historical, _ := flags.GetBool("historical")
	domain, _ := flags.GetString("domain")
	search, _ := flags.GetString("search")
	sortBy, _ := flags.GetString("sort")
	unique, _ := flags.GetBool("unique")
	formats, _ := flags.GetStringSlice("format")
	name, _ := flags.GetString("output")
	stats, _ := flags.GetBool("stats")
	loadDB, _ := flags.GetBool("load-db")
	replace, _ := flags.GetBool("replace")

	ds, err := codebook.LoadDataset(args[0], env.Config.Encoding, env.Log)
	if err != nil {
		return err
	}

	now := time.Now()
	selection := []string{util.FileStem(args[0])}
	switch {
	case active:
		ds = ds.Active(now)
		selection = append(selection, "active")
	case historical:
		ds = ds.Historical(now)
		selection = append(selection, "historical")
	}
	if domain != "" {
		if ds, err = ds.ByDomain(domain); err != nil {
			return err
		}
		selection = append(selection, strings.ReplaceAll(strings.ToLower(domain), " ", "_"))
	}
	if search != "" {
		if ds, err = ds.Search(search); err != nil {
			return err
		}
		selection = append(selection, "search")
	}
	if unique {
		ds = ds.UniqueBy(nlk.ColCode)
		selection = append(selection, "unique")
	}
	if sortBy != "" {
		if ds, err = ds.SortBy(sortBy); err != nil {
			return err
		}
	}

	p := env.Printer
	mp := message.NewPrinter(language.English)
	p.Title("Norwegian Laboratory Codebook")
	p.Println(mp.Sprintf("Selected codes: %d", ds.Len()))

	if stats {
		domains, err := ds.DomainStatistics(now)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(domains))
		for _, s := range domains {
			rows = append(rows, []string{
				s.Domain,
				mp.Sprintf("%d", s.Total),
				mp.Sprintf("%d", s.Active),
				mp.Sprintf("%d", s.Historical),
				fmt.Sprintf("%.1f%%", s.Percentage),
			})
		}
		p.Println(ux.Table([]string{"Domain", "Total", "Active", "Historical", "Share"}, rows))
	}

	if name == "" {
		name = strings.Join(selection, "_")
	}
	for _, format := range formats {
		ext, ok := extensions[strings.ToLower(format)]
		if !ok {
			return fmt.Errorf("%w: %s", codebook.ErrUnsupportedFormat, format)
		}
		path, err := ds.Export(env.Output.GetOutputPath(name+ext), format)
		if err != nil {
			return fmt.Errorf("failed to export %s: %w", format, err)
		}
		p.Success("Exported " + path)
	}

	if loadDB {
		if env.Config.DatabaseURL == "" {
			return fmt.Errorf("--load-db requires --database-url or NLK_DATABASE_URL")
		}
		db, err := codebook.Connect(env.Config.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		store := codebook.NewStore(db, env.Log)
		if err := store.EnsureSchema(cmd.Context()); err != nil {
			return err
		}
		n, err := store.Load(cmd.Context(), ds.Codes(), replace)
		if err != nil {
			return err
		}
		p.Success(mp.Sprintf("Loaded %d codes into the database", n))
	}
	return nil
}

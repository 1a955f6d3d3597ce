package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/qm-fetch/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List cached conferences",
	Long: `Catalog prints the conferences recorded in <data-dir>/catalog.db.
With --rebuild the catalog is first regenerated from the QM<year>_data.json
files in the data directory.`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().Bool("rebuild", false, "rescan the data directory before listing")
	catalogCmd.Flags().String("format", "table", "output format: table, json, or yaml")

	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	dataDir := viper.GetString("data_dir")
	format, _ := cmd.Flags().GetString("format")
	if format != "table" && format != "json" && format != "yaml" {
		return fmt.Errorf("unknown format %q", format)
	}

	store, err := catalog.Open(filepath.Join(dataDir, catalog.DBFile))
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if rebuild, _ := cmd.Flags().GetBool("rebuild"); rebuild {
		n, err := store.Rebuild(ctx, dataDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "catalog rebuilt: %d conference(s)\n", n)
	}

	entries, err := store.List(ctx)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "yaml":
		data, err := yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		fmt.Fprint(out, string(data))
	default:
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "YEAR\tINDICO ID\tSTART\tTITLE\tDOWNLOADED")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Year, e.IndicoID, e.StartDate, e.Title, e.DownloadDate)
		}
		return tw.Flush()
	}
	return nil
}

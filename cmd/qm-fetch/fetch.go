package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/qm-fetch/internal/acquire"
	"github.com/pdiddy/qm-fetch/internal/catalog"
	"github.com/pdiddy/qm-fetch/internal/conflist"
	"github.com/pdiddy/qm-fetch/internal/indico"
	"github.com/pdiddy/qm-fetch/internal/secrets"
	"github.com/pdiddy/qm-fetch/pkg/types"
)

const (
	defaultTimeout  = 60 * time.Second
	defaultListFile = "qm_indico_ids.txt"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [list-file]",
	Short: "Download conference exports listed in a conference list",
	Long: `Fetch reads "<year> <indico_id>" pairs (or a YAML list of
{year, indico_id} records) and downloads each event export from Indico
into <data-dir>/QM<year>_data.json. Conferences whose file already exists
are skipped without contacting the server. A failed conference does not
stop the run; the command exits non-zero if any conference failed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("base-url", indico.DefaultBaseURL, "Indico server root URL")
	fetchCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	fetchCmd.Flags().Bool("catalog", true, "record fetched conferences in the catalog")

	viper.BindPFlag("base_url", fetchCmd.Flags().Lookup("base-url"))
	viper.BindPFlag("timeout", fetchCmd.Flags().Lookup("timeout"))
	viper.SetDefault("list_file", defaultListFile)

	rootCmd.AddCommand(fetchCmd)
}

func fetchConfig(args []string) types.FetchConfig {
	timeout := viper.GetDuration("timeout")
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	listFile := viper.GetString("list_file")
	if len(args) > 0 {
		listFile = args[0]
	}
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: "qm-fetch/" + version,
			BaseURL:   viper.GetString("base_url"),
			APIToken:  loadedSecrets.Get(secrets.IndicoToken),
		},
		DataDir:  viper.GetString("data_dir"),
		ListFile: listFile,
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := fetchConfig(args)

	confs, err := conflist.Read(cfg.ListFile)
	if err != nil {
		return err
	}

	client := indico.NewClient(&http.Client{Timeout: cfg.Timeout}, cfg.HTTPConfig)

	var rec acquire.Recorder
	if useCatalog, _ := cmd.Flags().GetBool("catalog"); useCatalog {
		store, err := catalog.Open(filepath.Join(cfg.DataDir, catalog.DBFile))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: catalog unavailable: %v\n", err)
		} else {
			defer store.Close()
			rec = store
		}
	}

	result, err := acquire.FetchBatch(cmd.Context(), client, confs, cfg, cmd.OutOrStdout(), rec)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d conference(s) failed", result.Failed)
	}
	return nil
}

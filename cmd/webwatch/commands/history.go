package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/aleister1102/webwatch/internal/config"
	"github.com/aleister1102/webwatch/internal/datastore"
	"github.com/spf13/cobra"
)

var historyOpts struct {
	site  string
	limit int
	out   string
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyOpts.site, "site", "", "Only entries of this site id.")
	historyCmd.PersistentFlags().IntVar(&historyOpts.limit, "limit", 0, "Maximum number of entries. 0 means all.")
	historyExportCmd.Flags().StringVarP(&historyOpts.out, "out", "o", "history.parquet", "Parquet file to write.")
	historyCmd.AddCommand(historyListCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspects the local check journal.",
}

func openHistory(cfg *config.GlobalConfig) (*datastore.HistoryStore, error) {
	if cfg.StorageConfig.HistoryDBPath == "" {
		return nil, fmt.Errorf("history is disabled: storage_config.history_db_path is empty")
	}
	return datastore.NewHistoryStore(cfg.StorageConfig.HistoryDBPath, cfg.StorageConfig.HistoryMaxContentBytes, quietLogger(cfg))
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints journal entries, oldest first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.Entries(cmd.Context(), historyOpts.site, historyOpts.limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CHECKED AT\tSITE\tKIND\tHTTP\tSIZE\tCHANGED\t+/-\tERROR")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%t\t+%d/-%d\t%s\n",
				e.CheckedAt.Format("2006-01-02 15:04:05"), e.SiteID, e.Kind, e.Status, e.Size,
				e.Changed, e.LinesAdded, e.LinesDeleted, e.Error)
		}
		return w.Flush()
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Writes journal entries to a Parquet file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.Entries(cmd.Context(), historyOpts.site, historyOpts.limit)
		if err != nil {
			return err
		}
		exporter := datastore.NewHistoryExporter(cfg.StorageConfig.CompressionCodec, quietLogger(cfg))
		result, err := exporter.Export(cmd.Context(), entries, historyOpts.out)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d entries to %s (%d bytes)\n", result.RecordsWritten, result.FilePath, result.FileSize)
		return err
	},
}

package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/oxwatch/balwatch/internal/core/config"
	"github.com/oxwatch/balwatch/internal/infra/storage/file"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last collected balance for every watched entity",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := file.OpenSnapshotStore(filepath.Join(cfg.DataDir, "snapshots.json"))
	if err != nil {
		slog.Error("Failed to open snapshot store", "error", err)
		os.Exit(1)
	}

	snaps := store.All()
	keys := make([]string, 0, len(snaps))
	for k := range snaps {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "ENTITY\tBALANCE\tUPDATED")

	for _, k := range keys {
		snap := snaps[k]
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", k, snap.Balance, snap.LastUpdated.Format("2006-01-02 15:04:05"))
	}
	_ = w.Flush()
}

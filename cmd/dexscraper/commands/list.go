package commands

import (
	"fmt"
	"time"

	"dexscraper/internal/db"
	"dexscraper/internal/scrapers/bulbapedia"
	"dexscraper/lib/textutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	listSearch *string
	listDb     *string
)

func init() {
	listSearch = listCmd.Flags().String("search", "", "Only show entries whose name resembles this.")
	listDb = listCmd.Flags().String("db", "", "Also write the listed entries to this sqlite database.")
	rootCmd.AddCommand(listCmd)
}

func filterEntries(entries []bulbapedia.Entry, query string) []bulbapedia.Entry {
	if query == "" {
		return entries
	}
	var out []bulbapedia.Entry
	for _, e := range entries {
		if textutil.MatchName(e.Name, query) {
			out = append(out, e)
		}
	}
	return out
}

var listCmd = &cobra.Command{
	Use:   "list [--search <name>] [--db <path/to/catalog.db>]",
	Short: "Prints the catalog without downloading anything.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := createClient()
		if err != nil {
			return err
		}

		entries, err := client.ListCatalog(cmd.Context())
		if err != nil {
			return err
		}
		entries = filterEntries(entries, *listSearch)

		t := newTable()
		t.AppendHeader(table.Row{"#", "Name", "Page"})
		for _, e := range entries {
			t.AppendRow(table.Row{fmt.Sprintf("%04d", e.Dex), e.Name, e.DetailURL})
		}
		t.AppendFooter(table.Row{"", "Total", len(entries)})
		t.Render()

		if *listDb == "" {
			return nil
		}

		database, err := db.Open(cmd.Context(), *listDb)
		if err != nil {
			return fmt.Errorf("open %s: %w", *listDb, err)
		}
		defer database.Close()

		err = db.ExportCatalog(cmd.Context(), db.NewMakeTx(database), entries, time.Now())
		if err != nil {
			return err
		}
		state.logger.Info("exported catalog", "path", *listDb, "entries", len(entries))
		return nil
	},
}

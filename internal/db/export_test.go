package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"dexscraper/internal/scrapers/bulbapedia"
	"dexscraper/lib/testutil"

	"github.com/stretchr/testify/require"
)

func TestExportCatalog(t *testing.T) {
	ctx := context.Background()
	database, err := Open(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer database.Close()

	makeTx := NewMakeTx(database)
	listedAt := time.Unix(1700000000, 0)

	first := []bulbapedia.Entry{
		{Dex: 1, Name: "Bulbasaur", DetailURL: "https://wiki/Bulbasaur"},
		{Dex: 2, Name: "Ivysaur", DetailURL: "https://wiki/Ivysaur"},
		{Dex: 1, Name: "Bulbasaur", DetailURL: "https://wiki/Bulbasaur"},
	}
	require.NoError(t, ExportCatalog(ctx, makeTx, first, listedAt))

	rows, err := New(database).ListCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, CatalogEntry{
		Position:  2,
		Dex:       1,
		Name:      "Bulbasaur",
		DetailUrl: "https://wiki/Bulbasaur",
		ListedAt:  1700000000,
	}, rows[2])

	// exporting again replaces the listing
	second := []bulbapedia.Entry{{Dex: 4, Name: "Charmander", DetailURL: "https://wiki/Charmander"}}
	require.NoError(t, ExportCatalog(ctx, makeTx, second, listedAt))

	rows, err = New(database).ListCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Charmander", rows[0].Name)
}

func TestListCatalogOrder(t *testing.T) {
	ctx := context.Background()
	qry := New(testutil.SetupDB(t, Schema))

	for _, position := range []int64{2, 0, 1} {
		err := qry.InsertCatalogEntry(ctx, CatalogEntry{
			Position: position,
			Dex:      position + 1,
			Name:     "entry",
		})
		require.NoError(t, err)
	}

	rows, err := qry.ListCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, row := range rows {
		require.Equal(t, int64(i), row.Position)
	}

	// positions are unique
	err = qry.InsertCatalogEntry(ctx, CatalogEntry{Position: 1, Dex: 9, Name: "again"})
	require.Error(t, err)

	require.NoError(t, qry.ClearCatalog(ctx))
	rows, err = qry.ListCatalog(ctx)
	require.NoError(t, err)
	require.Empty(t, rows)
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dexscraper/internal/scrapers/bulbapedia"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) a sqlite database at path with the schema applied.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = database.ExecContext(ctx, Schema)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return database, nil
}

// ExportCatalog replaces the stored listing with `entries`, keeping their
// order and any duplicates.
func ExportCatalog(ctx context.Context, makeTx MakeTx, entries []bulbapedia.Entry, listedAt time.Time) error {
	qry, discard, commit, err := makeTx(ctx)
	if err != nil {
		return err
	}
	defer discard()

	err = qry.ClearCatalog(ctx)
	if err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}
	for i, e := range entries {
		err = qry.InsertCatalogEntry(ctx, CatalogEntry{
			Position:  int64(i),
			Dex:       int64(e.Dex),
			Name:      e.Name,
			DetailUrl: e.DetailURL,
			ListedAt:  listedAt.Unix(),
		})
		if err != nil {
			return fmt.Errorf("insert #%04d %s: %w", e.Dex, e.Name, err)
		}
	}

	return commit()
}

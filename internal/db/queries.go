package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const clearCatalog = `delete from catalog_entry`

func (q *Queries) ClearCatalog(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, clearCatalog)
	return err
}

const insertCatalogEntry = `insert into catalog_entry(position, dex, name, detail_url, listed_at)
values (?, ?, ?, ?, ?)`

func (q *Queries) InsertCatalogEntry(ctx context.Context, arg CatalogEntry) error {
	_, err := q.db.ExecContext(
		ctx, insertCatalogEntry,
		arg.Position,
		arg.Dex,
		arg.Name,
		arg.DetailUrl,
		arg.ListedAt,
	)
	return err
}

const listCatalog = `select position, dex, name, detail_url, listed_at
from catalog_entry order by position`

func (q *Queries) ListCatalog(ctx context.Context) ([]CatalogEntry, error) {
	rows, err := q.db.QueryContext(ctx, listCatalog)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CatalogEntry
	for rows.Next() {
		var i CatalogEntry
		err := rows.Scan(
			&i.Position,
			&i.Dex,
			&i.Name,
			&i.DetailUrl,
			&i.ListedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

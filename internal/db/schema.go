package db

import _ "embed"

//go:embed schema.sql
var Schema string

type CatalogEntry struct {
	Position  int64
	Dex       int64
	Name      string
	DetailUrl string
	ListedAt  int64
}

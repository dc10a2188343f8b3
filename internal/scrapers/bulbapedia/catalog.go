package bulbapedia

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"dexscraper/lib/htmlutil"
	"dexscraper/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Entry is one row of the national dex listing.
type Entry struct {
	Dex       int
	Name      string
	DetailURL string
}

// the listing's table markup changes every so often, so this is a loose
// match on purpose
var catalogTableClass = regexp.MustCompile(`roundy|sortable`)

// ListCatalog fetches the catalog index and returns every entry it can make
// sense of in document order. Entries listed by more than one table are
// returned once per table.
//
// An empty result is not an error.
func (c *Client) ListCatalog(ctx context.Context) ([]Entry, error) {
	ctx, span := tracer.Start(ctx, "client:ListCatalog")
	defer span.End()

	doc, base, err := c.document(ctx, c.catalogURL.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch catalog")
		c.tel.ReportBroken(
			report_client_list_catalog,
			fmt.Errorf("fetch: %w", err),
		)
		return nil, err
	}

	tables := htmlutil.ClassMatches(doc.Find("table"), catalogTableClass)
	c.tel.ReportCount(report_client_catalog_tables, int64(tables.Length()))

	var entries []Entry
	for i := 0; i < tables.Length(); i++ {
		if i > 0 {
			err := c.chrono.Sleep(ctx, c.tableDelay)
			if err != nil {
				return nil, err
			}
		}
		entries = append(entries, parseCatalogTable(tables.Eq(i), base)...)
	}

	span.SetAttributes(attribute.Int("entries", len(entries)))
	c.tel.ReportCount(report_client_catalog_size, int64(len(entries)))
	if len(entries) == 0 {
		c.tel.ReportWarning(
			report_client_list_catalog,
			fmt.Errorf("no entries found in %d tables", tables.Length()),
		)
	}

	return entries, nil
}

func parseCatalogTable(table *goquery.Selection, base *url.URL) []Entry {
	var entries []Entry
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		entry, ok := parseCatalogRow(row, base)
		if ok {
			entries = append(entries, entry)
		}
	})
	return entries
}

// header and separator rows have less than 3 cells
func parseCatalogRow(row *goquery.Selection, base *url.URL) (Entry, bool) {
	cells := row.Find("td")
	if cells.Length() < 3 {
		return Entry{}, false
	}

	dex, ok := textutil.FirstInt(htmlutil.CleanText(cells.Nodes[0]))
	if !ok {
		return Entry{}, false
	}

	// the first link of a row is usually the sprite, which has no text
	var anchor htmlutil.Anchor
	found := false
	row.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		candidate, ok := htmlutil.GetAnchor(base, a)
		if !ok || strings.TrimSpace(candidate.Name) == "" {
			return true
		}
		anchor = candidate
		found = true
		return false
	})
	if !found {
		return Entry{}, false
	}

	return Entry{
		Dex:       dex,
		Name:      anchor.Name,
		DetailURL: anchor.Href.String(),
	}, true
}

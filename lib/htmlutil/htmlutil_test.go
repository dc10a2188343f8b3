package htmlutil

import (
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, markup string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestCleanText(t *testing.T) {
	doc := parse(t, "<p>  Mr.\n\t<b>Mime</b>  </p>")
	require.Equal(t, "Mr. Mime", CleanText(doc.Find("p").Nodes[0]))
}

func TestGetAnchor(t *testing.T) {
	base, err := url.Parse("https://example.com/wiki/List")
	require.NoError(t, err)

	doc := parse(t, `
		<a id="rel" href="/wiki/Bulbasaur">Bulbasaur</a>
		<a id="abs" href="https://other.org/x">Other</a>
		<a id="none">No link</a>
	`)

	anchor, ok := GetAnchor(base, doc.Find("#rel"))
	require.True(t, ok)
	require.Equal(t, "Bulbasaur", anchor.Name)
	require.Equal(t, "https://example.com/wiki/Bulbasaur", anchor.Href.String())

	anchor, ok = GetAnchor(base, doc.Find("#abs"))
	require.True(t, ok)
	require.Equal(t, "https://other.org/x", anchor.Href.String())

	_, ok = GetAnchor(base, doc.Find("#none"))
	require.False(t, ok)

	_, ok = GetAnchor(base, doc.Find("#missing"))
	require.False(t, ok)
}

func TestClassMatches(t *testing.T) {
	doc := parse(t, `
		<table id="a" class="roundy"></table>
		<table id="b" class="wikitable sortable"></table>
		<table id="c" class="Roundy"></table>
		<table id="d"></table>
	`)

	matched := ClassMatches(doc.Find("table"), regexp.MustCompile(`roundy|sortable`))
	var ids []string
	matched.Each(func(_ int, s *goquery.Selection) {
		ids = append(ids, s.AttrOr("id", ""))
	})
	require.Equal(t, []string{"a", "b"}, ids)
}

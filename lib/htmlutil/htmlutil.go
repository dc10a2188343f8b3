package htmlutil

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText trims the text of a node and collapses inner whitespace into a
// single space.
func CleanText(node *html.Node) string {
	text := removeNonPrintable(GetText(node))
	text = innerWhitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

type Anchor struct {
	Name string
	Href *url.URL
}

// GetAnchor reads the first node of the selection as an anchor, resolving
// its href against `base`. It returns false if the node has no href or the
// href cannot be parsed.
func GetAnchor(base *url.URL, sel *goquery.Selection) (Anchor, bool) {
	if sel.Length() == 0 {
		return Anchor{}, false
	}
	href, ok := sel.First().Attr("href")
	if !ok {
		return Anchor{}, false
	}
	link, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return Anchor{}, false
	}
	if base != nil {
		link = base.ResolveReference(link)
	}
	return Anchor{
		Name: CleanText(sel.Nodes[0]),
		Href: link,
	}, true
}

// ClassMatches keeps the elements whose class attribute matches `re`.
func ClassMatches(sel *goquery.Selection, re *regexp.Regexp) *goquery.Selection {
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, ok := s.Attr("class")
		return ok && re.MatchString(class)
	})
}

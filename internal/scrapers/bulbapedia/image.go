package bulbapedia

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"dexscraper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var infoboxTableClass = regexp.MustCompile(`infobox|roundy`)

// ResolveImage finds the representative image of a detail page, it is the
// first image inside the first infobox-like table. A page without one is
// common and reported as found == false rather than an error.
func (c *Client) ResolveImage(ctx context.Context, detailURL string) (string, bool, error) {
	ctx, span := tracer.Start(ctx, "client:ResolveImage")
	defer span.End()
	span.SetAttributes(attribute.String("url", detailURL))

	doc, base, err := c.document(ctx, detailURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch detail page")
		c.tel.ReportBroken(
			report_client_resolve_image,
			fmt.Errorf("fetch: %w", err),
			detailURL,
		)
		return "", false, err
	}

	src, ok := findInfoboxImage(doc, base)
	if ok {
		span.SetAttributes(attribute.String("image", src))
	}
	return src, ok, nil
}

func findInfoboxImage(doc *goquery.Document, base *url.URL) (string, bool) {
	infobox := htmlutil.ClassMatches(doc.Find("table"), infoboxTableClass).First()
	src, ok := infobox.Find("img").First().Attr("src")
	if !ok {
		return "", false
	}
	return normalizeImageSource(src, base)
}

func normalizeImageSource(src string, base *url.URL) (string, bool) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", false
	}
	if strings.HasPrefix(src, "//") {
		return "https:" + src, true
	}

	link, err := url.Parse(src)
	if err != nil {
		return "", false
	}
	if base != nil {
		link = base.ResolveReference(link)
	}
	return link.String(), true
}

// FetchImage downloads the image at imageURL.
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "client:FetchImage")
	defer span.End()
	span.SetAttributes(attribute.String("url", imageURL))

	res, err := c.get(ctx, imageURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch image")
		c.tel.ReportBroken(
			report_client_fetch_image,
			err,
			imageURL,
		)
		return nil, err
	}

	body := res.Body()
	span.SetAttributes(attribute.Int("size", len(body)))
	return body, nil
}

package pipeline

import (
	"context"
	"fmt"

	"dexscraper/internal/components/assert"
	"dexscraper/internal/components/telemetry"
	"dexscraper/internal/scrapers/bulbapedia"
	"dexscraper/internal/sink"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	report_pipeline_run      = "pipeline.run"
	report_pipeline_resolve  = "pipeline.resolve"
	report_pipeline_no_image = "pipeline.no-image"
	report_pipeline_store    = "pipeline.store"
	report_pipeline_saved    = "pipeline.saved"
)

var tracer = otel.Tracer("dexscraper/pipeline")

type Catalog interface {
	ListCatalog(ctx context.Context) ([]bulbapedia.Entry, error)
}

type Resolver interface {
	ResolveImage(ctx context.Context, detailURL string) (src string, found bool, err error)
}

type Downloader interface {
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
}

type Params struct {
	Catalog    Catalog
	Resolver   Resolver
	Downloader Downloader
	Sink       sink.Sink
	// KeyPrefix is prepended to every asset name, see DestinationKey.
	KeyPrefix string
}

type Pipeline struct {
	catalog    Catalog
	resolver   Resolver
	downloader Downloader
	sink       sink.Sink
	keyPrefix  string
	tel        telemetry.API
}

func New(params Params, tel telemetry.API) Pipeline {
	assert.NotNil(params.Catalog)
	assert.NotNil(params.Resolver)
	assert.NotNil(params.Downloader)
	assert.NotNil(params.Sink)
	assert.NotNil(tel)

	return Pipeline{
		catalog:    params.Catalog,
		resolver:   params.Resolver,
		downloader: params.Downloader,
		sink:       params.Sink,
		keyPrefix:  params.KeyPrefix,
		tel:        tel,
	}
}

type Options struct {
	// Limit caps how many entries are processed, 0 means all of them.
	Limit int
}

type Result struct {
	Processed int
	Saved     int
	Missing   int
	Failed    int
}

// Run walks the catalog once, in order. Failing to list the catalog or to
// download an image stops the run, every other per-entry problem is
// reported and skipped.
func (p Pipeline) Run(ctx context.Context, opts Options) (Result, error) {
	ctx, span := tracer.Start(ctx, "pipeline:Run")
	defer span.End()

	var result Result

	entries, err := p.catalog.ListCatalog(ctx)
	if err != nil {
		return result, fmt.Errorf("list catalog: %w", err)
	}
	if len(entries) == 0 {
		p.tel.ReportWarning(report_pipeline_run, "catalog is empty, nothing to do")
		return result, nil
	}

	for _, entry := range entries {
		if opts.Limit > 0 && result.Processed >= opts.Limit {
			break
		}
		err := ctx.Err()
		if err != nil {
			return result, err
		}

		result.Processed++
		err = p.process(ctx, entry, &result)
		if err != nil {
			return result, err
		}
	}

	span.SetAttributes(
		attribute.Int("processed", result.Processed),
		attribute.Int("saved", result.Saved),
	)
	p.tel.ReportCount(report_pipeline_saved, int64(result.Saved))
	return result, nil
}

func (p Pipeline) process(ctx context.Context, entry bulbapedia.Entry, result *Result) error {
	p.tel.ReportInfo(
		fmt.Sprintf("Processing #%04d %s", entry.Dex, entry.Name),
		"dex", entry.Dex,
		"name", entry.Name,
	)

	imageURL, found, err := p.resolver.ResolveImage(ctx, entry.DetailURL)
	if err != nil {
		p.tel.ReportBroken(report_pipeline_resolve, err, entry.Name)
		result.Failed++
		return nil
	}
	if !found {
		p.tel.ReportWarning(report_pipeline_no_image, fmt.Sprintf("No image for %s", entry.Name))
		result.Missing++
		return nil
	}

	data, err := p.downloader.FetchImage(ctx, imageURL)
	if err != nil {
		return fmt.Errorf("download image of #%04d %s: %w", entry.Dex, entry.Name, err)
	}

	key := DestinationKey(p.keyPrefix, entry.Dex, entry.Name, imageURL)
	err = p.sink.Store(ctx, key, data)
	if err != nil {
		p.tel.ReportWarning(report_pipeline_store, err, key)
		result.Failed++
		return nil
	}

	result.Saved++
	p.tel.ReportInfo(
		fmt.Sprintf("Saved %s", p.sink.Describe(key)),
		"dex", entry.Dex,
		"key", key,
	)
	return nil
}

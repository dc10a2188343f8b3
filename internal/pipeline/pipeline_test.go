package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"dexscraper/internal/components/chrono"
	"dexscraper/internal/components/telemetry"
	"dexscraper/internal/scrapers/bulbapedia"
	"dexscraper/internal/sink"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	entries []bulbapedia.Entry
	err     error
}

func (f fakeCatalog) ListCatalog(ctx context.Context) ([]bulbapedia.Entry, error) {
	return f.entries, f.err
}

type fakeResolver struct {
	images map[string]string
	broken map[string]bool
}

func (f fakeResolver) ResolveImage(ctx context.Context, detailURL string) (string, bool, error) {
	if f.broken[detailURL] {
		return "", false, &bulbapedia.NetworkError{URL: detailURL, Status: http.StatusBadGateway}
	}
	src, ok := f.images[detailURL]
	return src, ok, nil
}

type fakeDownloader struct {
	broken map[string]bool
}

func (f fakeDownloader) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	if f.broken[imageURL] {
		return nil, &bulbapedia.NetworkError{URL: imageURL, Err: errors.New("connection refused")}
	}
	return []byte("bytes of " + imageURL), nil
}

type memorySink struct {
	stored map[string]string
	reject map[string]bool
	keys   []string
}

func newMemorySink() *memorySink {
	return &memorySink{stored: map[string]string{}, reject: map[string]bool{}}
}

func (m *memorySink) Store(ctx context.Context, key string, data []byte) error {
	if m.reject[key] {
		return fmt.Errorf("%w: %s", sink.ErrStoreFailed, key)
	}
	m.keys = append(m.keys, key)
	m.stored[key] = string(data)
	return nil
}

func (m *memorySink) Describe(key string) string {
	return "memory:" + key
}

func entry(dex int, name string) bulbapedia.Entry {
	return bulbapedia.Entry{Dex: dex, Name: name, DetailURL: "https://wiki/" + name}
}

func TestRun(t *testing.T) {
	catalog := fakeCatalog{entries: []bulbapedia.Entry{
		entry(1, "Bulbasaur"),
		entry(2, "Ivysaur"),
		entry(3, "Venusaur"),
		entry(4, "Charmander"),
		entry(5, "Charmeleon"),
	}}
	resolver := fakeResolver{
		images: map[string]string{
			"https://wiki/Bulbasaur":  "https://img/1.png",
			"https://wiki/Venusaur":   "https://img/3.jpg",
			"https://wiki/Charmeleon": "https://img/5",
		},
		broken: map[string]bool{"https://wiki/Charmander": true},
	}
	out := newMemorySink()
	out.reject["images/0003-Venusaur.jpg"] = true
	tel := telemetry.NewRecordingAPI()

	p := New(Params{
		Catalog:    catalog,
		Resolver:   resolver,
		Downloader: fakeDownloader{},
		Sink:       out,
		KeyPrefix:  "images",
	}, tel)

	result, err := p.Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Equal(t, Result{Processed: 5, Saved: 2, Missing: 1, Failed: 2}, result)

	require.Equal(t, []string{"images/0001-Bulbasaur.png", "images/0005-Charmeleon.png"}, out.keys)
	require.Equal(t, "bytes of https://img/1.png", out.stored["images/0001-Bulbasaur.png"])

	var warnings []string
	for _, e := range tel.Events(telemetry.EventWarning) {
		warnings = append(warnings, e.ID)
	}
	require.Equal(t, []string{report_pipeline_no_image, report_pipeline_store}, warnings)
	require.Len(t, tel.Events(telemetry.EventBroken), 1)

	var progress []string
	for _, e := range tel.Events(telemetry.EventInfo) {
		progress = append(progress, e.ID)
	}
	expected := []string{
		"Processing #0001 Bulbasaur",
		"Saved memory:images/0001-Bulbasaur.png",
		"Processing #0002 Ivysaur",
		"Processing #0003 Venusaur",
		"Processing #0004 Charmander",
		"Processing #0005 Charmeleon",
		"Saved memory:images/0005-Charmeleon.png",
	}
	if diff := cmp.Diff(expected, progress); diff != "" {
		t.Fatalf("unexpected progress (-want +got):\n%s", diff)
	}
}

func TestRunLimit(t *testing.T) {
	catalog := fakeCatalog{entries: []bulbapedia.Entry{
		entry(1, "Bulbasaur"),
		entry(2, "Ivysaur"),
		entry(3, "Venusaur"),
	}}
	resolver := fakeResolver{images: map[string]string{
		"https://wiki/Bulbasaur": "https://img/1.png",
		"https://wiki/Ivysaur":   "https://img/2.png",
		"https://wiki/Venusaur":  "https://img/3.png",
	}}
	out := newMemorySink()

	p := New(Params{
		Catalog:    catalog,
		Resolver:   resolver,
		Downloader: fakeDownloader{},
		Sink:       out,
	}, telemetry.NewRecordingAPI())

	result, err := p.Run(context.Background(), Options{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 2, result.Processed)
	require.Equal(t, []string{"0001-Bulbasaur.png", "0002-Ivysaur.png"}, out.keys)
}

func TestRunEmptyCatalog(t *testing.T) {
	tel := telemetry.NewRecordingAPI()
	p := New(Params{
		Catalog:    fakeCatalog{},
		Resolver:   fakeResolver{},
		Downloader: fakeDownloader{},
		Sink:       newMemorySink(),
	}, tel)

	result, err := p.Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Equal(t, Result{}, result)
	require.Len(t, tel.Events(telemetry.EventWarning), 1)
}

func TestRunListFailure(t *testing.T) {
	listErr := &bulbapedia.NetworkError{URL: "https://wiki/List", Status: http.StatusInternalServerError}
	tel := telemetry.NewRecordingAPI()
	out := newMemorySink()
	p := New(Params{
		Catalog:    fakeCatalog{err: listErr},
		Resolver:   fakeResolver{},
		Downloader: fakeDownloader{},
		Sink:       out,
	}, tel)

	_, err := p.Run(context.Background(), Options{})
	require.ErrorIs(t, err, listErr)
	require.Empty(t, tel.Events(telemetry.EventInfo))
	require.Empty(t, out.keys)
}

func TestRunDownloadFailureIsFatal(t *testing.T) {
	catalog := fakeCatalog{entries: []bulbapedia.Entry{
		entry(1, "Bulbasaur"),
		entry(2, "Ivysaur"),
	}}
	resolver := fakeResolver{images: map[string]string{
		"https://wiki/Bulbasaur": "https://img/1.png",
		"https://wiki/Ivysaur":   "https://img/2.png",
	}}
	out := newMemorySink()
	p := New(Params{
		Catalog:    catalog,
		Resolver:   resolver,
		Downloader: fakeDownloader{broken: map[string]bool{"https://img/1.png": true}},
		Sink:       out,
	}, telemetry.NewRecordingAPI())

	result, err := p.Run(context.Background(), Options{})
	var netErr *bulbapedia.NetworkError
	require.ErrorAs(t, err, &netErr)
	require.Equal(t, 1, result.Processed)
	require.Empty(t, out.keys)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(Params{
		Catalog:    fakeCatalog{entries: []bulbapedia.Entry{entry(1, "Bulbasaur")}},
		Resolver:   fakeResolver{},
		Downloader: fakeDownloader{},
		Sink:       newMemorySink(),
	}, telemetry.NewRecordingAPI())

	result, err := p.Run(ctx, Options{})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, result.Processed)
}

// end to end: a catalog with two rows, only the first has an image
func TestRunEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/wiki/List", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><table class="sortable">
			<tr><th>#</th><th></th><th>Name</th></tr>
			<tr><td>#0001</td><td></td><td><a href="/wiki/A">A</a></td></tr>
			<tr><td>#0002</td><td></td><td><a href="/wiki/B">B</a></td></tr>
		</table></body></html>`)
	})
	mux.HandleFunc("/wiki/A", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><table class="infobox"><tr><td><img src="/media/a.png"></td></tr></table></body></html>`)
	})
	mux.HandleFunc("/wiki/B", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><table class="infobox"><tr><td>no artwork</td></tr></table></body></html>`)
	})
	mux.HandleFunc("/media/a.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("image A"))
	})

	tel := telemetry.NewRecordingAPI()
	client, err := bulbapedia.NewClient(bulbapedia.ClientOptions{
		CatalogURL: server.URL + "/wiki/List",
		Chrono:     chrono.NewFakeImpl(chrono.StandardImpl{}.Now()),
	}, tel)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), sink.DefaultOutputDir)
	out, err := sink.NewFilesystem(dir)
	require.NoError(t, err)

	p := New(Params{
		Catalog:    client,
		Resolver:   client,
		Downloader: client,
		Sink:       out,
	}, tel)

	result, err := p.Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Equal(t, Result{Processed: 2, Saved: 1, Missing: 1}, result)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "0001-A.png", files[0].Name())

	contents, err := os.ReadFile(filepath.Join(dir, "0001-A.png"))
	require.NoError(t, err)
	require.Equal(t, "image A", string(contents))

	warnings := tel.Events(telemetry.EventWarning)
	require.Len(t, warnings, 1)
	require.Equal(t, report_pipeline_no_image, warnings[0].ID)
}

func TestRunEndToEndIndexUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	tel := telemetry.NewRecordingAPI()
	client, err := bulbapedia.NewClient(bulbapedia.ClientOptions{
		CatalogURL: server.URL + "/wiki/List",
	}, tel)
	require.NoError(t, err)

	out := newMemorySink()
	p := New(Params{
		Catalog:    client,
		Resolver:   client,
		Downloader: client,
		Sink:       out,
	}, tel)

	_, err = p.Run(context.Background(), Options{})
	var netErr *bulbapedia.NetworkError
	require.ErrorAs(t, err, &netErr)
	require.Empty(t, tel.Events(telemetry.EventInfo))
	require.Empty(t, out.keys)
}

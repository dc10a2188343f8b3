package commands

import (
	"dexscraper/internal/scrapers/bulbapedia"
	"dexscraper/lib/restyutil"
)

func createClient() (*bulbapedia.Client, error) {
	cfg := state.config

	opts := bulbapedia.ClientOptions{
		CatalogURL:        cfg.CatalogURL,
		TableDelay:        cfg.TableDelay(),
		Timeout:           cfg.Timeout(),
		UserAgent:         cfg.UserAgent,
		RequestsPerSecond: cfg.RequestsPerSecond,
		CloudflareBypass:  cfg.CloudflareBypass,
	}

	if cfg.Debug.Verbose && cfg.Debug.HttpDumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(
			cfg.Debug.HttpDumpDir,
			func(id string, err error) {
				state.logger.Warn("failed to dump http message", "id", id, "err", err)
			},
		)
		if err != nil {
			return nil, err
		}
		opts.HttpDump = output
	}

	return bulbapedia.NewClient(opts, state.tel)
}

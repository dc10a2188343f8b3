package commands

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"dexscraper/internal/scrapers/bulbapedia"
	"dexscraper/internal/sink"
	"dexscraper/lib/configutil"
)

const configFile = "dexscraper.json5"

type ObjectStoreConfig struct {
	Endpoint string `json:"endpoint"`
	Region   string `json:"region"`
	Insecure *bool  `json:"insecure"`

	// Bucket and Prefix are the defaults of the remote command's flags.
	Bucket string `json:"bucket"`
	Prefix string `json:"prefix"`

	// AllowedBucket and RequiredPrefix are the write policy, every object
	// must land in AllowedBucket under RequiredPrefix.
	AllowedBucket  string `json:"allowed_bucket"`
	RequiredPrefix string `json:"required_prefix"`
	ContentType    string `json:"content_type"`
}

type DebugConfig struct {
	Verbose     bool   `json:"verbose"`
	HttpDumpDir string `json:"http_dump_dir"`
}

type Config struct {
	CatalogURL        string            `json:"catalog_url"`
	// pointers so that an explicit 0 survives merging over the defaults
	TableDelaySeconds *float64          `json:"table_delay_seconds"`
	TimeoutSeconds    *float64          `json:"timeout_seconds"`
	UserAgent         string            `json:"user_agent"`
	RequestsPerSecond float64           `json:"requests_per_second"`
	CloudflareBypass  bool              `json:"cloudflare_bypass"`
	OutputDir         string            `json:"output_dir"`
	ObjectStore       ObjectStoreConfig `json:"object_store"`
	Debug             DebugConfig       `json:"debug"`
}

func DefaultConfig() Config {
	return Config{
		CatalogURL: bulbapedia.DefaultCatalogURL,
		OutputDir:  sink.DefaultOutputDir,
		ObjectStore: ObjectStoreConfig{
			Endpoint:       "s3.amazonaws.com",
			Bucket:         "dex-images",
			Prefix:         "images",
			AllowedBucket:  "dex-images",
			RequiredPrefix: "images/",
			ContentType:    sink.DefaultContentType,
		},
	}
}

// LoadConfig reads dexscraper.json5 (and dexscraper.local.json5) from the
// working directory over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadWithDefaults(path, DefaultConfig())
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) TableDelay() time.Duration {
	if c.TableDelaySeconds == nil {
		return time.Second
	}
	return time.Duration(*c.TableDelaySeconds * float64(time.Second))
}

func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds == nil {
		return 0
	}
	return time.Duration(*c.TimeoutSeconds * float64(time.Second))
}

func (c Config) Secure() bool {
	return c.ObjectStore.Insecure == nil || !*c.ObjectStore.Insecure
}

func (c Config) Policy() sink.Policy {
	return sink.Policy{
		AllowedBucket:  c.ObjectStore.AllowedBucket,
		RequiredPrefix: c.ObjectStore.RequiredPrefix,
	}
}

func (c Config) Validate() error {
	var errs []error

	link, err := url.Parse(c.CatalogURL)
	if err != nil || !link.IsAbs() {
		errs = append(errs, fmt.Errorf("catalog_url must be an absolute url: %q", c.CatalogURL))
	}
	if c.TableDelay() < 0 {
		errs = append(errs, errors.New("table_delay_seconds must not be negative"))
	}
	if c.Timeout() < 0 {
		errs = append(errs, errors.New("timeout_seconds must not be negative"))
	}
	if c.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("requests_per_second must not be negative"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir is required"))
	}
	err = c.Policy().Validate()
	if err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

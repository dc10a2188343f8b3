package commands

import (
	"errors"
	"strings"

	"dexscraper/internal/pipeline"
	"dexscraper/internal/sink"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func init() {
	remoteCmd.Flags().String("bucket", "", "The bucket to upload images to, defaults to object_store.bucket.")
	remoteCmd.Flags().String("prefix", "", "The key segment images are uploaded under, defaults to object_store.prefix.")
	remoteCmd.Flags().Int("limit", 0, "Process at most this many entries, 0 means all of them.")
	rootCmd.AddCommand(remoteCmd)
}

type remoteTarget struct {
	Bucket string
	Prefix string
	Limit  int
}

// resolveRemoteTarget applies the flags that were actually given over the
// object store config.
func resolveRemoteTarget(cfg ObjectStoreConfig, flags *pflag.FlagSet) (remoteTarget, error) {
	target := remoteTarget{
		Bucket: cfg.Bucket,
		Prefix: cfg.Prefix,
	}

	var err error
	if flags.Changed("bucket") {
		target.Bucket, err = flags.GetString("bucket")
		if err != nil {
			return remoteTarget{}, err
		}
	}
	if flags.Changed("prefix") {
		target.Prefix, err = flags.GetString("prefix")
		if err != nil {
			return remoteTarget{}, err
		}
	}
	target.Limit, err = flags.GetInt("limit")
	if err != nil {
		return remoteTarget{}, err
	}

	if strings.TrimSpace(target.Bucket) == "" {
		return remoteTarget{}, errors.New("--bucket must not be empty")
	}
	if target.Limit < 0 {
		return remoteTarget{}, errors.New("--limit must not be negative")
	}
	return target, nil
}

var remoteCmd = &cobra.Command{
	Use:   "remote [--bucket <name>] [--prefix <segment>] [--limit <n>]",
	Short: "Uploads every image into an object store bucket.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := state.config

		target, err := resolveRemoteTarget(cfg.ObjectStore, cmd.Flags())
		if err != nil {
			return err
		}

		client, err := createClient()
		if err != nil {
			return err
		}

		minioClient, err := sink.NewMinioClient(sink.MinioOptions{
			Endpoint: cfg.ObjectStore.Endpoint,
			Region:   cfg.ObjectStore.Region,
			Secure:   cfg.Secure(),
		})
		if err != nil {
			return err
		}
		out, err := sink.NewObjectStore(minioClient, sink.ObjectStoreOptions{
			Bucket:      target.Bucket,
			Policy:      cfg.Policy(),
			ContentType: cfg.ObjectStore.ContentType,
		}, state.tel)
		if err != nil {
			return err
		}

		p := pipeline.New(pipeline.Params{
			Catalog:    client,
			Resolver:   client,
			Downloader: client,
			Sink:       out,
			KeyPrefix:  target.Prefix,
		}, state.tel)

		_, err = p.Run(cmd.Context(), pipeline.Options{Limit: target.Limit})
		return err
	},
}

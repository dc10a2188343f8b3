package commands

import (
	"dexscraper/internal/pipeline"
	"dexscraper/internal/sink"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(localCmd)
}

var localCmd = &cobra.Command{
	Use:   "local",
	Short: "Downloads every image into the output directory (downloads/ by default).",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := createClient()
		if err != nil {
			return err
		}
		out, err := sink.NewFilesystem(state.config.OutputDir)
		if err != nil {
			return err
		}

		p := pipeline.New(pipeline.Params{
			Catalog:    client,
			Resolver:   client,
			Downloader: client,
			Sink:       out,
		}, state.tel)

		_, err = p.Run(cmd.Context(), pipeline.Options{})
		return err
	},
}

// Command gallery-shuffle randomizes the order of images within every manifest category.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/northgate-sc/clubweb/internal/gallery"
	"github.com/northgate-sc/clubweb/internal/manifestdoc"
	"github.com/northgate-sc/clubweb/internal/observability"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr, gallery.DefaultIntN).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer, intn gallery.IntN) *cobra.Command {
	var (
		manifest string
		verbose  bool
	)
	cmd := &cobra.Command{
		Use:   "gallery-shuffle",
		Short: "Shuffle each gallery category in place",
		Long: `Shuffle each gallery category of the manifest independently and write it back.

Category order is kept. Visitors with an existing session keep their current order;
new sessions start from the shuffled document.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.NewCLILogger(stderr, verbose)
			doc := manifestdoc.Open(manifest)
			doc.CreateIfMissing = false

			listing, err := doc.Shuffle(intn)
			if err != nil {
				return err
			}
			logger.Debug("manifest shuffled",
				zap.String("path", doc.Path),
				zap.Int("categories", len(listing.Categories)),
				zap.Int("images", listing.Total),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Shuffled %d images in %s\n", listing.Total, doc.Path)
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().StringVarP(&manifest, "manifest", "m", manifestdoc.DefaultPath, "path to the manifest document")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	return cmd
}

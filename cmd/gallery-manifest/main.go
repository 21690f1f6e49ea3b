// Command gallery-manifest adds, removes and lists images in the gallery manifest.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/northgate-sc/clubweb/internal/gallery"
	"github.com/northgate-sc/clubweb/internal/manifestdoc"
	"github.com/northgate-sc/clubweb/internal/observability"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	manifest string
	verbose  bool
	logger   *zap.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "gallery-manifest",
		Short: "Maintain the gallery manifest",
		Long: `Maintain the gallery manifest that maps each category to its image files.

Categories: Community, Match, Players, Team, Training (case-insensitive).
Every change rewrites the whole document atomically; no-ops leave it untouched.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = observability.NewCLILogger(stderr, opts.verbose)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&opts.manifest, "manifest", "m", manifestdoc.DefaultPath, "path to the manifest document")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(newAddCmd(opts), newRemoveCmd(opts), newListCmd(opts))
	return root
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "add <category> <filename>",
		Short:   "Add an image to a category",
		Example: "  gallery-manifest add Match 2024-cup-final.jpg",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := manifestdoc.Open(opts.manifest)
			res, err := doc.Add(args[0], args[1])
			if err != nil {
				return err
			}
			category := canonical(args[0])
			filename := strings.TrimSpace(args[1])
			opts.logger.Debug("manifest updated",
				zap.String("path", doc.Path),
				zap.String("category", category),
				zap.String("filename", filename),
				zap.Stringer("result", res),
			)
			if res == manifestdoc.AlreadyExists {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists in %s\n", filename, category)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", filename, category)
			return nil
		},
	}
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <category> <filename>",
		Aliases: []string{"rm"},
		Short:   "Remove an image from a category",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := manifestdoc.Open(opts.manifest)
			doc.CreateIfMissing = false
			res, err := doc.Remove(args[0], args[1])
			if err != nil {
				return err
			}
			category := canonical(args[0])
			filename := strings.TrimSpace(args[1])
			opts.logger.Debug("manifest checked",
				zap.String("path", doc.Path),
				zap.String("category", category),
				zap.String("filename", filename),
				zap.Stringer("result", res),
			)
			if res == manifestdoc.NotFound {
				fmt.Fprintf(cmd.OutOrStdout(), "%s not found in %s\n", filename, category)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", filename, category)
			return nil
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show image counts per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// A missing document lists as empty; nothing is written.
			listing, err := manifestdoc.Open(opts.manifest).List()
			if err != nil {
				return err
			}
			return writeListing(cmd.OutOrStdout(), listing)
		},
	}
}

func writeListing(w io.Writer, listing manifestdoc.Listing) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range listing.Categories {
		fmt.Fprintf(tw, "%s\t%d\n", c.Category, c.Count)
	}
	fmt.Fprintf(tw, "Total\t%d\n", listing.Total)
	return tw.Flush()
}

func canonical(name string) string {
	if c, ok := gallery.ParseCategory(name); ok {
		return string(c)
	}
	return name
}

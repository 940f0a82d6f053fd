package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelist/internal/tmdb"
)

func newImageURLCommand(ctx *commandContext) *cobra.Command {
	var size string
	cmd := &cobra.Command{
		Use:   "image-url <path>",
		Short: "Print the full URL for a catalog image path",
		Long: "Print the full URL for a poster or backdrop path such as /abc.jpg.\n" +
			"Unknown sizes fall back to original. Known sizes: " + knownSizeList(),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := strings.TrimSpace(args[0])
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}
			fmt.Fprintln(cmd.OutOrStdout(), tmdb.BuildImageURL(cfg.TMDB.ImageBaseURL, path, tmdb.ImageSize(size)))
			return nil
		},
	}
	cmd.Flags().StringVar(&size, "size", string(tmdb.SizeW500), "Image rendition")
	return cmd
}

func knownSizeList() string {
	sizes := tmdb.ImageSizes()
	names := make([]string, 0, len(sizes))
	for _, size := range sizes {
		names = append(names, string(size))
	}
	return strings.Join(names, ", ")
}

package main

import (
	"context"
	"favicon/internal/config"
	"favicon/pkg/logger"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// fetchCommand constructs the 'fetch' subcommand that resolves the favicon of
// a single URL and writes the image to a file, or to stdout when no file is given.
func fetchCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetches the favicon of a website",
		Run: func(cmd *cobra.Command, args []string) {
			target, _ := cmd.Flags().GetString("url")
			out, _ := cmd.Flags().GetString("out")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx = logger.WithFields(ctx, zap.String("target", target))

			img, err := getResolver(ctx, cfg, nil).Resolve(ctx, target)
			if err != nil {
				logger.Fatal(ctx, "could not fetch favicon", zap.Error(err))
			}

			if out == "" {
				if _, err := os.Stdout.Write(img.Data); err != nil {
					logger.Fatal(ctx, "could not write favicon", zap.Error(err))
				}

				return
			}

			if err := os.WriteFile(out, img.Data, 0o644); err != nil { //nolint: gosec
				logger.Fatal(ctx, "could not write favicon", zap.Error(err), zap.String("file", out))
			}

			logger.Info(ctx, "favicon saved",
				zap.String("file", out),
				zap.String("source", img.SourceURL),
				zap.String("contentType", img.ContentType),
				zap.Int("size", len(img.Data)),
			)
		},
	}

	cmd.Flags().String("url", "", "Website URL or hostname (e.g., github.com)")
	cmd.Flags().StringP("out", "o", "", "Output file, stdout when empty")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

package favicon

import (
	"context"
	"favicon/pkg/fetcher"
	"favicon/pkg/logger"
	"iter"

	"go.uber.org/zap"
)

// ProbePaths are the conventional favicon locations tried, in order, below the
// site root.
var ProbePaths = []string{ //nolint: gochecknoglobals
	"/favicon.ico",
	"/favicon.png",
	"/favicon.svg",
	"/apple-touch-icon.png",
	"/apple-touch-icon-precomposed.png",
	"/images/favicon.ico",
	"/images/favicon.png",
	"/assets/favicon.ico",
	"/assets/favicon.png",
	"/static/favicon.ico",
	"/static/favicon.png",
}

// Strategy produces candidate favicon URLs for a site. Candidates are lazy: the
// resolver stops pulling as soon as one of them yields a valid image, so work a
// strategy does inside the sequence is only paid for when it is reached.
type Strategy interface {
	// Name identifies the strategy in logs and metrics.
	Name() string
	// Candidates yields absolute URLs to probe, in priority order.
	Candidates(ctx context.Context, base BaseURL) iter.Seq[string]
}

// CommonPaths yields ProbePaths appended to the base URL.
type CommonPaths struct{}

// Ensure CommonPaths conforms to the Strategy interface at compile time.
var _ Strategy = CommonPaths{}

// Name implements Strategy.
func (CommonPaths) Name() string { return "common_paths" }

// Candidates implements Strategy.
func (CommonPaths) Candidates(_ context.Context, base BaseURL) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, path := range ProbePaths {
			if !yield(base.String() + path) {
				return
			}
		}
	}
}

// LinkScrape fetches the site's root document and yields the icons it declares
// through <link> elements. Failing to fetch or parse the document yields no
// candidates.
type LinkScrape struct {
	Fetcher fetcher.Fetcher
}

// Ensure LinkScrape conforms to the Strategy interface at compile time.
var _ Strategy = LinkScrape{}

// Name implements Strategy.
func (LinkScrape) Name() string { return "link_scrape" }

// Candidates implements Strategy. The root document is only fetched once the
// sequence is iterated.
func (l LinkScrape) Candidates(ctx context.Context, base BaseURL) iter.Seq[string] {
	return func(yield func(string) bool) {
		page, err := l.Fetcher.Fetch(ctx, base.String())
		if err != nil {
			logger.Debug(ctx, "could not fetch root document", zap.Error(err))

			return
		}

		urls, err := IconURLs(page, base)
		if err != nil {
			logger.Debug(ctx, "could not extract icon links", zap.Error(err))

			return
		}

		logger.Debug(ctx, "found icon links", zap.Int("count", len(urls)))
		for _, u := range urls {
			if !yield(u) {
				return
			}
		}
	}
}

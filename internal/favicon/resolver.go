package favicon

import (
	"context"
	"favicon/internal/config"
	"favicon/pkg/fetcher"
	"favicon/pkg/logger"
	"favicon/pkg/metrics"
	"favicon/pkg/serrors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

// Image is a favicon found for a site.
type Image struct {
	// Data holds the raw bytes exactly as served; it is never empty and always
	// passes IsValidImage.
	Data []byte
	// ContentType is derived from Data, see ContentType.
	ContentType string
	// SourceURL is the candidate URL that served the image.
	SourceURL string
}

// SkipReason explains why a candidate URL did not produce an image.
type SkipReason string

const (
	SkipFetchFailed  SkipReason = "fetch_failed"
	SkipTimeout      SkipReason = "timeout"
	SkipEmptyBody    SkipReason = "empty_body"
	SkipInvalidImage SkipReason = "invalid_image"
)

// ProbeResult is the outcome of probing a single candidate: either an Image,
// or a SkipReason and the error behind it, if any.
type ProbeResult struct {
	Image *Image
	Skip  SkipReason
	Err   error
}

// Ok reports whether the probe produced an image.
func (p ProbeResult) Ok() bool { return p.Image != nil }

func (p ProbeResult) label() string {
	if p.Ok() {
		return "found"
	}

	return string(p.Skip)
}

// Probe fetches URL and checks that the body is an image. It never returns an
// error; every failure is a skip.
func Probe(ctx context.Context, f fetcher.Fetcher, URL string) ProbeResult {
	data, err := f.Fetch(ctx, URL)
	switch {
	case err != nil && fetcher.IsTimeout(err):
		return ProbeResult{Skip: SkipTimeout, Err: err}
	case err != nil:
		return ProbeResult{Skip: SkipFetchFailed, Err: err}
	case len(data) == 0:
		return ProbeResult{Skip: SkipEmptyBody}
	case !IsValidImage(data):
		return ProbeResult{Skip: SkipInvalidImage}
	}

	return ProbeResult{Image: &Image{
		Data:        data,
		ContentType: ContentType(data),
		SourceURL:   URL,
	}}
}

// NewFetcherOptions derives outbound request settings from the application config.
func NewFetcherOptions(cfg *config.Config) fetcher.Options {
	return fetcher.Options{
		Timeout:              cfg.Resolver.FetchTimeout,
		MaxBodySize:          cfg.Resolver.MaxBodySize,
		MaxRedirects:         cfg.Resolver.MaxRedirects,
		UserAgent:            cfg.Resolver.UserAgent,
		BlockPrivateNetworks: !cfg.Resolver.AllowPrivateNetworks,
	}
}

// Options configure a Resolver.
type Options struct {
	// Strategies are tried in order. Empty means DefaultStrategies.
	Strategies []Strategy
	// MeterProvider receives lookup metrics. Nil disables them.
	MeterProvider metric.MeterProvider
}

// DefaultStrategies probes the conventional paths first and falls back to the
// icons declared by the root document.
func DefaultStrategies(f fetcher.Fetcher) []Strategy {
	return []Strategy{
		CommonPaths{},
		LinkScrape{Fetcher: f},
	}
}

// resolver is the concrete implementation of the Resolver interface.
type resolver struct {
	fetcher    fetcher.Fetcher
	strategies []Strategy

	resolutions metric.Int64Counter
	probes      metric.Int64Counter
	duration    metric.Float64Histogram
}

// Resolve implements Resolver. Candidates are fetched one at a time, in
// strategy order, and the first valid image wins.
func (r *resolver) Resolve(ctx context.Context, input string) (*Image, error) {
	start := time.Now()
	img, err := r.resolve(ctx, input)

	attrs := metric.WithAttributes(attribute.String("outcome", outcome(err)))
	r.resolutions.Add(ctx, 1, attrs)
	r.duration.Record(ctx, time.Since(start).Seconds(), attrs)

	return img, err
}

func (r *resolver) resolve(ctx context.Context, input string) (*Image, error) {
	base, err := NormalizeBaseURL(input)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithFields(ctx, zap.String("site", base.String()))

	for _, strategy := range r.strategies {
		for candidate := range strategy.Candidates(ctx, base) {
			if err := ctx.Err(); err != nil {
				return nil, serrors.Wrap(serrors.ErrTimeout, err, "favicon lookup interrupted")
			}

			res := Probe(ctx, r.fetcher, candidate)
			r.probes.Add(ctx, 1, metric.WithAttributes(
				attribute.String("strategy", strategy.Name()),
				attribute.String("result", res.label()),
			))

			if res.Ok() {
				logger.Info(ctx, "favicon found",
					zap.String("strategy", strategy.Name()),
					zap.String("source", res.Image.SourceURL),
					zap.String("contentType", res.Image.ContentType),
					zap.Int("size", len(res.Image.Data)),
				)

				return res.Image, nil
			}

			logger.Debug(ctx, "skipping favicon candidate",
				zap.String("strategy", strategy.Name()),
				zap.String("candidate", candidate),
				zap.String("reason", string(res.Skip)),
				zap.Error(res.Err),
			)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, serrors.Wrap(serrors.ErrTimeout, err, "favicon lookup interrupted")
	}

	logger.Info(ctx, "favicon not found")

	return nil, serrors.With(serrors.ErrNotFound, "favicon not found")
}

func outcome(err error) string {
	if err == nil {
		return "found"
	}

	switch serrors.KindOf(err) {
	case ErrInvalidURL:
		return "invalid_url"
	case serrors.ErrNotFound:
		return "not_found"
	case serrors.ErrTimeout:
		return "timeout"
	default:
		return "error"
	}
}

// New creates a Resolver that fetches candidates through f.
func New(f fetcher.Fetcher, opts Options) (Resolver, error) {
	strategies := opts.Strategies
	if len(strategies) == 0 {
		strategies = DefaultStrategies(f)
	}

	mp := opts.MeterProvider
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	meter := metrics.Meter(mp)

	resolutions, err := meter.Int64Counter("favicon.resolutions",
		metric.WithDescription("Favicon lookups by outcome"))
	if err != nil {
		return nil, fmt.Errorf("could not create resolutions counter: %w", err)
	}

	probes, err := meter.Int64Counter("favicon.probes",
		metric.WithDescription("Candidate URLs probed by strategy and result"))
	if err != nil {
		return nil, fmt.Errorf("could not create probes counter: %w", err)
	}

	duration, err := meter.Float64Histogram("favicon.resolve.duration",
		metric.WithDescription("Duration of favicon lookups"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(metrics.DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create duration histogram: %w", err)
	}

	return &resolver{
		fetcher:     f,
		strategies:  strategies,
		resolutions: resolutions,
		probes:      probes,
		duration:    duration,
	}, nil
}

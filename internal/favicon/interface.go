// Package favicon finds the favicon of a website. A lookup normalizes the
// input to a scheme and host, probes a fixed list of conventional paths and
// then the icons the root document declares, and returns the first response
// that carries a recognized image signature.
package favicon

import "context"

//go:generate mockgen -package mockfavicon -source=interface.go -destination=mock/mockfavicon.go *
type Resolver interface {
	// Resolve looks up the favicon of input, a URL or a bare hostname. Errors
	// are of kind ErrInvalidURL, serrors.ErrNotFound or serrors.ErrTimeout.
	Resolve(ctx context.Context, input string) (*Image, error)
}

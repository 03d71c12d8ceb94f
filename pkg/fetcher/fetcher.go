// Package fetcher performs the outbound HTTP GET requests made while looking
// for favicons. Every request carries a desktop browser User-Agent, its own
// timeout and a response size limit, and may be barred from dialing private
// network addresses.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

const (
	// DefaultTimeout bounds a single fetch, including reading the body.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxBodySize is the largest response body accepted, in bytes.
	DefaultMaxBodySize = int64(5 << 20)
	// DefaultMaxRedirects is how many redirects a single fetch follows.
	DefaultMaxRedirects = 5
	// DefaultUserAgent is sent with every request so sites serve their regular assets.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

var (
	// ErrBlockedAddress is returned when the target resolves to an address that
	// private network blocking forbids.
	ErrBlockedAddress = errors.New("address is not publicly routable")
	// ErrBodyTooLarge is returned when a response body exceeds MaxBodySize.
	ErrBodyTooLarge = errors.New("response body too large")
	// ErrTooManyRedirects is returned when a fetch exceeds MaxRedirects.
	ErrTooManyRedirects = errors.New("too many redirects")
)

// StatusError reports a response with a non-2xx status code.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Fetcher downloads the body of a URL.
//
//go:generate mockgen -package mockfetcher -source=fetcher.go -destination=mock/mockfetcher.go *
type Fetcher interface {
	// Fetch issues a GET request and returns the body of a 2xx response.
	Fetch(ctx context.Context, URL string) ([]byte, error)
}

// Options configure a Client. Zero values fall back to the package defaults,
// except BlockPrivateNetworks which is opt-in.
type Options struct {
	// Timeout bounds each request, from dialing to reading the last body byte.
	Timeout time.Duration
	// MaxBodySize is the largest accepted response body, in bytes.
	MaxBodySize int64
	// MaxRedirects is the number of redirects followed per request.
	MaxRedirects int
	// UserAgent overrides DefaultUserAgent.
	UserAgent string
	// BlockPrivateNetworks refuses connections to loopback, private, link-local,
	// multicast and unspecified addresses.
	BlockPrivateNetworks bool
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxBodySize <= 0 {
		o.MaxBodySize = DefaultMaxBodySize
	}
	if o.MaxRedirects <= 0 {
		o.MaxRedirects = DefaultMaxRedirects
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}

	return o
}

// Client is the net/http backed Fetcher. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	opts       Options
}

// Ensure Client conforms to the Fetcher interface at compile time.
var _ Fetcher = (*Client)(nil)

// New constructs a Client with its own transport. When BlockPrivateNetworks is
// set, the dialer checks every resolved address, so redirects and DNS answers
// pointing into private ranges are refused too.
func New(opts Options) *Client {
	opts = opts.withDefaults()

	dialer := &net.Dialer{
		Timeout:   opts.Timeout,
		KeepAlive: 30 * time.Second,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint: forcetypeassert
	if opts.BlockPrivateNetworks {
		dialer.Control = denyPrivate
		// a proxy would dial on our behalf and bypass the check
		transport.Proxy = nil
	}
	transport.DialContext = dialer.DialContext

	return NewWithHTTPClient(&http.Client{Transport: transport}, opts)
}

// NewWithHTTPClient constructs a Client around an existing http.Client. The
// client's CheckRedirect is replaced to enforce MaxRedirects.
func NewWithHTTPClient(httpClient *http.Client, opts Options) *Client {
	opts = opts.withDefaults()

	httpClient.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if len(via) > opts.MaxRedirects {
			return ErrTooManyRedirects
		}

		return nil
	}

	return &Client{
		httpClient: httpClient,
		opts:       opts,
	}
}

// Fetch issues a GET request for URL and returns the response body. Non-2xx
// responses yield a *StatusError.
func (c *Client) Fetch(ctx context.Context, URL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, URL, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: URL, StatusCode: resp.StatusCode}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	if int64(len(b)) > c.opts.MaxBodySize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, c.opts.MaxBodySize)
	}

	return b, nil
}

// IsTimeout reports whether err was caused by a request deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsPublicAddr reports whether addr may be dialed with private network blocking on.
func IsPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()

	return addr.IsValid() &&
		!addr.IsLoopback() &&
		!addr.IsPrivate() &&
		!addr.IsLinkLocalUnicast() &&
		!addr.IsLinkLocalMulticast() &&
		!addr.IsInterfaceLocalMulticast() &&
		!addr.IsMulticast() &&
		!addr.IsUnspecified()
}

// denyPrivate is a net.Dialer Control hook; address is always a resolved ip:port.
func denyPrivate(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("could not split address %q: %w", address, err)
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("could not parse address %q: %w", host, err)
	}

	if !IsPublicAddr(addr) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, addr)
	}

	return nil
}

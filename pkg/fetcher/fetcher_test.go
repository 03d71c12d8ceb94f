package fetcher_test

import (
	"context"
	"errors"
	"favicon/pkg/fetcher"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// rtFunc allows using a function as an http.RoundTripper.
type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestClient(fn rtFunc, opts fetcher.Options) *fetcher.Client {
	return fetcher.NewWithHTTPClient(&http.Client{Transport: fn}, opts)
}

func TestClient_Fetch_success(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "example.com", r.URL.Host)
		require.Equal(t, "/favicon.ico", r.URL.Path)
		require.Equal(t, fetcher.DefaultUserAgent, r.Header.Get("User-Agent"))

		_, hasDeadline := r.Context().Deadline()
		require.True(t, hasDeadline, "every fetch should carry its own deadline")

		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("icon-bytes"))}, nil
	}, fetcher.Options{})

	b, err := c.Fetch(context.Background(), "https://example.com/favicon.ico")
	require.NoError(t, err)
	require.Equal(t, []byte("icon-bytes"), b)
}

func TestClient_Fetch_customUserAgent(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, "test-agent", r.Header.Get("User-Agent"))

		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("x"))}, nil
	}, fetcher.Options{UserAgent: "test-agent"})

	_, err := c.Fetch(context.Background(), "https://example.com/")
	require.NoError(t, err)
}

func TestClient_Fetch_non2xx(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader("nope"))}, nil
	}, fetcher.Options{})

	b, err := c.Fetch(context.Background(), "https://example.com/favicon.png")
	require.Error(t, err)
	require.Nil(t, b)

	var statusErr *fetcher.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.Equal(t, "https://example.com/favicon.png", statusErr.URL)
}

func TestClient_Fetch_transportError(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection reset")
	}, fetcher.Options{})

	_, err := c.Fetch(context.Background(), "https://example.com/")
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection reset")
}

func TestClient_Fetch_bodyTooLarge(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("0123456789"))}, nil
	}, fetcher.Options{MaxBodySize: 4})

	_, err := c.Fetch(context.Background(), "https://example.com/")
	require.ErrorIs(t, err, fetcher.ErrBodyTooLarge)
}

func TestClient_Fetch_bodyAtLimit(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("0123"))}, nil
	}, fetcher.Options{MaxBodySize: 4})

	b, err := c.Fetch(context.Background(), "https://example.com/")
	require.NoError(t, err)
	require.Len(t, b, 4)
}

func TestClient_Fetch_timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := fetcher.New(fetcher.Options{Timeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := c.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	require.True(t, fetcher.IsTimeout(err), "expected a timeout error, got %v", err)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestClient_Fetch_redirectLimit(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer srv.Close()

	c := fetcher.New(fetcher.Options{MaxRedirects: 2})

	_, err := c.Fetch(context.Background(), srv.URL+"/")
	require.ErrorIs(t, err, fetcher.ErrTooManyRedirects)
}

func TestClient_Fetch_blocksPrivateNetworks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("should not be reached"))
	}))
	defer srv.Close()

	blocked := fetcher.New(fetcher.Options{BlockPrivateNetworks: true})
	_, err := blocked.Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, fetcher.ErrBlockedAddress)

	open := fetcher.New(fetcher.Options{})
	b, err := open.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "should not be reached", string(b))
}

func TestIsPublicAddr(t *testing.T) {
	cases := []struct {
		addr string
		want bool
	}{
		{addr: "93.184.216.34", want: true},
		{addr: "2606:2800:220:1:248:1893:25c8:1946", want: true},
		{addr: "127.0.0.1", want: false},
		{addr: "10.1.2.3", want: false},
		{addr: "172.16.0.1", want: false},
		{addr: "192.168.1.1", want: false},
		{addr: "169.254.169.254", want: false},
		{addr: "0.0.0.0", want: false},
		{addr: "::1", want: false},
		{addr: "fe80::1", want: false},
		{addr: "fc00::1", want: false},
		{addr: "::ffff:127.0.0.1", want: false},
		{addr: "224.0.0.1", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.addr, func(t *testing.T) {
			require.Equal(t, tc.want, fetcher.IsPublicAddr(netip.MustParseAddr(tc.addr)))
		})
	}
}

func TestIsTimeout(t *testing.T) {
	require.True(t, fetcher.IsTimeout(context.DeadlineExceeded))
	require.False(t, fetcher.IsTimeout(errors.New("boom")))
	require.False(t, fetcher.IsTimeout(nil))
}

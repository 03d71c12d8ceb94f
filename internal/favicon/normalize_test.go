package favicon_test

import (
	"favicon/internal/favicon"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeBaseURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  string
		ok   bool
	}{
		{
			name: "bare hostname gets https",
			in:   "example.com",
			out:  "https://example.com",
			ok:   true,
		},
		{
			name: "http scheme is kept",
			in:   "http://example.com",
			out:  "http://example.com",
			ok:   true,
		},
		{
			name: "lowercase scheme and host; drop port, path and query",
			in:   "HTTP://Example.COM:8080/a/b?c=d#e",
			out:  "http://example.com",
			ok:   true,
		},
		{
			name: "bare hostname with path",
			in:   "github.com/user/repo",
			out:  "https://github.com",
			ok:   true,
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "  example.org\n",
			out:  "https://example.org",
			ok:   true,
		},
		{
			name: "internationalized host converted to punycode",
			in:   "bücher.de",
			out:  "https://xn--bcher-kva.de",
			ok:   true,
		},
		{
			name: "ipv4 literal",
			in:   "http://93.184.216.34:8080/",
			out:  "http://93.184.216.34",
			ok:   true,
		},
		{
			name: "ipv6 literal keeps brackets",
			in:   "[2001:db8::1]:8080",
			out:  "https://[2001:db8::1]",
			ok:   true,
		},
		{
			name: "empty input",
			in:   "",
			ok:   false,
		},
		{
			name: "scheme without host",
			in:   "https://",
			ok:   false,
		},
		{
			name: "space in host",
			in:   "https://exa mple.com",
			ok:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := favicon.NormalizeBaseURL(tc.in)
			if !tc.ok {
				require.Error(t, err)
				require.ErrorIs(t, err, favicon.ErrInvalidURL)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.out, got.String())
		})
	}
}

func TestBaseURL_String(t *testing.T) {
	b := favicon.BaseURL{Scheme: "https", Host: "example.com"}
	require.Equal(t, "https://example.com", b.String())
}

package favicon

import (
	"net/netip"
	"net/url"
	"strings"

	"favicon/pkg/serrors"

	"golang.org/x/net/idna"
)

// ErrInvalidURL is the kind of every error returned by NormalizeBaseURL.
var ErrInvalidURL = serrors.NewKind("INVALID_URL") //nolint: gochecknoglobals

// hostProfile maps hostnames the way browsers do for lookups, but tolerates
// underscores and other non-STD3 characters that real DNS names carry.
var hostProfile = idna.New( //nolint: gochecknoglobals
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.StrictDomainName(false),
)

// BaseURL is the scheme and host a favicon lookup is rooted at.
// Scheme is always "http" or "https" and Host is never empty.
type BaseURL struct {
	Scheme string
	Host   string
}

// String returns the base as "scheme://host", without a trailing slash.
func (b BaseURL) String() string {
	return b.Scheme + "://" + b.Host
}

// NormalizeBaseURL turns user input (a URL or a bare hostname) into a BaseURL.
//
// The rules are:
//   - Surrounding whitespace is trimmed
//   - Input without an http:// or https:// prefix gets https:// prepended
//   - Scheme and host are lower-cased; internationalized hosts are converted to
//     their ASCII (punycode) form
//   - Port, path, query and fragment are discarded, favicons are always probed
//     from the host root
//
// Unparsable input, or input without a host, yields an ErrInvalidURL error.
func NormalizeBaseURL(input string) (BaseURL, error) {
	raw := strings.TrimSpace(input)

	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return BaseURL{}, serrors.Wrap(ErrInvalidURL, err, "could not parse URL")
	}

	hostname := u.Hostname()
	if hostname == "" {
		return BaseURL{}, serrors.With(ErrInvalidURL, "URL %q has no host", input)
	}

	host, err := normalizeHost(hostname)
	if err != nil {
		return BaseURL{}, serrors.Wrap(ErrInvalidURL, err, "invalid host %q", hostname)
	}

	return BaseURL{
		Scheme: strings.ToLower(u.Scheme),
		Host:   host,
	}, nil
}

// normalizeHost lower-cases and IDNA-maps a hostname. IP literals skip IDNA
// and IPv6 addresses get their brackets back.
func normalizeHost(hostname string) (string, error) {
	if addr, err := netip.ParseAddr(hostname); err == nil {
		if addr.Is6() {
			return "[" + addr.String() + "]", nil
		}

		return addr.String(), nil
	}

	host, err := hostProfile.ToASCII(strings.ToLower(hostname))
	if err != nil {
		return "", err //nolint: wrapcheck
	}

	return host, nil
}

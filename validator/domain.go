package validator

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// Domain returns the normalized host name of rawURL. Scheme and port are
// dropped, the host is lowercased, a trailing dot is removed and
// internationalized names are converted to punycode.
func Domain(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err == nil && u.Host == "" && !strings.Contains(rawURL, "://") {
		u, err = url.Parse("//" + rawURL)
	}
	if err != nil {
		return "", fmt.Errorf("parsing %q: %w", rawURL, err)
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return "", fmt.Errorf("%q has no host", rawURL)
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		// Hosts the lookup profile rejects, such as those with underscores,
		// compare lowercased.
		return host, nil
	}
	return ascii, nil
}

// SameDomain reports whether every URL has the same Domain.
func SameDomain(urls ...string) (bool, error) {
	var first string
	for i, u := range urls {
		d, err := Domain(u)
		if err != nil {
			return false, err
		}
		if i == 0 {
			first = d
			continue
		}
		if d != first {
			return false, nil
		}
	}
	return true, nil
}

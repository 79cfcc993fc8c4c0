// Package audience canonicalizes audience origins.
//
// The canonical form "scheme://host[:port]" is what gets embedded in session
// tokens and used as the storage tenant identifier, so two spellings of the
// same origin (with or without an explicit default port, mixed case) must
// normalize to one string.
package audience

import (
	"net/url"
	"strings"
)

var standardPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Normalize parses raw as an origin and returns its canonical form.
//
// The scheme defaults to https when absent, scheme and host are lowercased,
// and the port is kept only if it differs from the scheme's standard port.
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		// A bare "host[:port]" has no scheme, which makes url.Parse put the
		// host in the path (or treat it as an opaque URL). Reparse with the
		// default scheme.
		if u2, err2 := url.Parse("https://" + raw); err2 == nil && u2.Host != "" {
			u = u2
		} else if err != nil {
			return strings.ToLower(raw)
		}
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		scheme = "https"
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		// Last resort: first path segment stands in for the hostname.
		host = strings.ToLower(strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)[0])
	}

	if port := u.Port(); port != "" && port != standardPorts[scheme] {
		return scheme + "://" + host + ":" + port
	}
	return scheme + "://" + host
}

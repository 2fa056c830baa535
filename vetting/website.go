package vetting

import (
	"errors"
	"net/url"
	"strings"
)

var errNoHost = errors.New("url has no host")

// target is a parsed candidate URL as seen by the heuristics.
type target struct {
	raw      string
	hostname string // lower-cased, no port
	domain   string // registrable domain
	path     string
}

// hasWebScheme reports whether raw is a non-empty http(s) URL.
func hasWebScheme(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

func parseTarget(raw string) (*target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	hostname := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if hostname == "" {
		return nil, errNoHost
	}
	return &target{
		raw:      raw,
		hostname: hostname,
		domain:   RegistrableDomain(hostname),
		path:     rawPath(raw),
	}, nil
}

// rawPath returns the path of raw exactly as written: everything after the
// authority up to the first '?' or '#'.
func rawPath(raw string) string {
	rest := raw
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	i := strings.IndexAny(rest, "/?#")
	if i < 0 || rest[i] != '/' {
		return ""
	}
	rest = rest[i:]
	if j := strings.IndexAny(rest, "?#"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

// stripWWW drops a single leading "www." label.
func stripWWW(hostname string) string {
	return strings.TrimPrefix(hostname, "www.")
}

// RegistrableDomain returns the last two labels of hostname after stripping a
// leading "www.". A single-label host is returned unchanged.
func RegistrableDomain(hostname string) string {
	host := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(hostname)), ".")
	host = stripWWW(host)

	parts := strings.Split(host, ".")
	if len(parts) <= 2 {
		return host
	}
	return strings.Join(parts[len(parts)-2:], ".")
}

// NormalizeDomain lower-cases a trusted-domain entry and removes any scheme,
// leading "www." and trailing slash or dot.
func NormalizeDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	domain = strings.ToLower(domain)

	// Remove protocol if present
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "www.")

	domain = strings.TrimSuffix(domain, "/")
	domain = strings.TrimSuffix(domain, ".")

	return domain
}

// normalizeTrusted cleans an allow-list entry like NormalizeDomain but keeps a
// leading "www.", so "www.example.com" never covers other subdomains.
func normalizeTrusted(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimSuffix(domain, "/")
	return strings.TrimSuffix(domain, ".")
}

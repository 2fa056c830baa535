package vetting

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	whois "github.com/likexian/whois"
	parser "github.com/likexian/whois-parser"
)

// ErrWhoisUnavailable is returned when no registration date could be found.
var ErrWhoisUnavailable = errors.New("whois: registration date unavailable")

var whoisDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
}

// WhoisInfo is informational domain registration data. It is reported next
// to a verdict and never changes the score.
type WhoisInfo struct {
	Domain    string `json:"domain"`
	AgeDays   int    `json:"age_days"`
	CreatedOn string `json:"created_on"`
	UpdatedOn string `json:"updated_on,omitempty"`
	ExpiresOn string `json:"expires_on,omitempty"`
}

// WhoisClient looks up registration data for registrable domains.
type WhoisClient struct {
	lookup func(domain string) (string, error)
	now    func() time.Time
}

// NewWhoisClient returns a client backed by the public WHOIS servers.
func NewWhoisClient() *WhoisClient {
	return &WhoisClient{
		lookup: func(domain string) (string, error) { return whois.Whois(domain) },
		now:    time.Now,
	}
}

// Age fetches and parses WHOIS data for domain. When the record for a
// subdomain cannot be parsed, the parent domain is tried.
func (w *WhoisClient) Age(domain string) (WhoisInfo, error) {
	domain = NormalizeDomain(domain)
	if domain == "" {
		return WhoisInfo{}, ErrWhoisUnavailable
	}

	raw, err := w.lookup(domain)
	if err != nil {
		return WhoisInfo{}, fmt.Errorf("whois %s: %w", domain, err)
	}

	p, err := parser.Parse(raw)
	if err != nil || p.Domain == nil {
		// For subdomains, try parent domain (e.g., e.example.com -> example.com)
		parts := strings.Split(domain, ".")
		if len(parts) > 2 {
			return w.Age(strings.Join(parts[1:], "."))
		}
		return WhoisInfo{}, ErrWhoisUnavailable
	}

	created := parseWhoisDate(p.Domain.CreatedDate)
	if created.IsZero() {
		log.Printf("[WHOIS] Unparseable creation date for %s: %q", domain, p.Domain.CreatedDate)
		return WhoisInfo{}, ErrWhoisUnavailable
	}

	return WhoisInfo{
		Domain:    domain,
		AgeDays:   int(w.now().Sub(created).Hours() / 24),
		CreatedOn: created.Format("02/01/2006"),
		UpdatedOn: formatWhoisDate(parseWhoisDate(p.Domain.UpdatedDate)),
		ExpiresOn: formatWhoisDate(parseWhoisDate(p.Domain.ExpirationDate)),
	}, nil
}

// parseWhoisDate tries each known registrar layout and returns the zero time
// when none fits.
func parseWhoisDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, l := range whoisDateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func formatWhoisDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

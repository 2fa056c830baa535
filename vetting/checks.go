package vetting

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	deltaTrusted    = 0.3
	deltaRawIP      = -0.5
	deltaTLD        = -0.4
	deltaShortener  = -0.35
	deltaSubdomains = -0.25
	deltaTyposquat  = -0.4
	deltaBlocklist  = -0.5
	deltaObfuscated = -0.2
)

const (
	maxHostLabels      = 4
	longURLChars       = 200
	obfuscatedHexRatio = 0.6
)

var ipv4HostPattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// finding is one heuristic's contribution. A zero finding means nothing fired.
type finding struct {
	delta  float64
	reason string
}

func none() finding { return finding{} }

// heuristic is a single independent signal check.
type heuristic struct {
	name string
	run  func(ctx context.Context, t *target) finding
}

func (c *Checker) heuristics() []heuristic {
	return []heuristic{
		{"trusted_domain", c.checkTrusted},
		{"raw_ip", c.checkRawIP},
		{"suspicious_tld", c.checkTLD},
		{"url_shortener", c.checkShortener},
		{"excessive_subdomains", c.checkSubdomains},
		{"typosquatting", c.checkTyposquat},
		{"dns_blocklist", c.checkBlocklist},
		{"obfuscated_url", c.checkObfuscated},
	}
}

// runHeuristic converts a panic inside h into "no finding".
func (c *Checker) runHeuristic(ctx context.Context, h heuristic, t *target) (f finding) {
	defer func() {
		if r := recover(); r != nil {
			if c.debug {
				log.Printf("[URLSafety] heuristic %s failed on %s: %v", h.name, t.hostname, r)
			}
			f = none()
		}
	}()
	return h.run(ctx, t)
}

//
// HOST SHAPE CHECKS
//

func (c *Checker) checkTrusted(_ context.Context, t *target) finding {
	if _, ok := c.trusted[t.domain]; ok {
		return finding{deltaTrusted, "trusted domain: " + t.domain}
	}
	if _, ok := c.trusted[t.hostname]; ok {
		return finding{deltaTrusted, "trusted domain: " + t.hostname}
	}
	for _, td := range c.trustedOrder {
		if strings.HasSuffix(t.hostname, "."+td) {
			return finding{deltaTrusted, "trusted domain: " + td}
		}
	}
	return none()
}

func (c *Checker) checkRawIP(_ context.Context, t *target) finding {
	if ipv4HostPattern.MatchString(t.hostname) {
		return finding{deltaRawIP, "raw IP address URL: " + t.hostname}
	}
	return none()
}

func (c *Checker) checkTLD(_ context.Context, t *target) finding {
	for _, tld := range SuspiciousTLDs {
		if strings.HasSuffix(t.hostname, tld) {
			return finding{deltaTLD, "suspicious TLD: " + tld}
		}
	}
	return none()
}

func (c *Checker) checkShortener(_ context.Context, t *target) finding {
	for _, s := range ShortenerDomains {
		if t.domain == s {
			return finding{deltaShortener, "URL shortener: " + t.domain}
		}
	}
	return none()
}

func (c *Checker) checkSubdomains(_ context.Context, t *target) finding {
	labels := strings.Split(stripWWW(t.hostname), ".")
	if len(labels) > maxHostLabels {
		return finding{deltaSubdomains, fmt.Sprintf("excessive subdomains (%d levels): %s", len(labels)-1, t.hostname)}
	}
	return none()
}

func (c *Checker) checkTyposquat(_ context.Context, t *target) finding {
	for _, p := range c.typosquat {
		if p.re.MatchString(t.domain) {
			return finding{deltaTyposquat, fmt.Sprintf("possible typosquatting: matched '%s'", p.source)}
		}
	}
	return none()
}

//
// DNS BLOCKLIST
//

func (c *Checker) checkBlocklist(ctx context.Context, t *target) finding {
	if c.resolver == nil || t.domain == "" {
		return none()
	}

	if listed, ok := c.cache.Get(t.domain); ok {
		c.metrics.IncrementCacheLookup("hit")
		if listed {
			return finding{deltaBlocklist, "DNS blocklist listed: " + t.domain}
		}
		return none()
	}
	c.metrics.IncrementCacheLookup("miss")

	zone, listed, definitive := c.queryBlocklists(ctx, t.domain)
	if !definitive {
		return none()
	}
	c.cache.Put(t.domain, listed)
	if listed {
		return finding{deltaBlocklist, fmt.Sprintf("DNS blocklist listed (%s): %s", zone, t.domain)}
	}
	return none()
}

// queryBlocklists asks each zone in order under one shared deadline. It stops at
// the first listing. definitive is false unless a zone listed the domain or
// every zone answered NXDOMAIN.
func (c *Checker) queryBlocklists(ctx context.Context, domain string) (zone string, listed bool, definitive bool) {
	ctx, cancel := context.WithTimeout(ctx, c.lookupTimeout)
	defer cancel()

	clean := 0
	for _, z := range c.zones {
		query := domain + "." + z
		ips, err := c.resolver.LookupA(ctx, query)
		switch {
		case err == nil && len(ips) > 0:
			log.Printf("[DNSBL] Domain LISTED on %s: %s (response: %v)", z, query, ips)
			c.metrics.IncrementBlocklistLookup(z, "listed")
			return z, true, true
		case errors.Is(err, ErrNXDomain):
			c.metrics.IncrementBlocklistLookup(z, "clean")
			clean++
		default:
			if c.debug {
				log.Printf("[DNSBL] Inconclusive lookup %s: %v", query, err)
			}
			c.metrics.IncrementBlocklistLookup(z, "inconclusive")
		}
	}
	return "", false, clean == len(c.zones)
}

//
// URL SHAPE
//

func (c *Checker) checkObfuscated(_ context.Context, t *target) finding {
	length := utf8.RuneCountInString(t.raw)
	if length <= longURLChars {
		return none()
	}
	ratio := hexRatio(t.path)
	if ratio > obfuscatedHexRatio {
		return finding{deltaObfuscated, fmt.Sprintf("obfuscated/long URL (%d chars, %.0f%% hex)", length, ratio*100)}
	}
	return none()
}

// hexRatio is the share of path characters in [0-9a-fA-F_-].
func hexRatio(path string) float64 {
	total := utf8.RuneCountInString(path)
	if total == 0 {
		return 0
	}
	hex := 0
	for _, r := range path {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F', r == '-', r == '_':
			hex++
		}
	}
	return float64(hex) / float64(total)
}

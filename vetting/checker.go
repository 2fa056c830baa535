package vetting

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/acekapila/nexus-sub001/metrics"
)

const defaultLookupTimeout = 2 * time.Second

// Config holds the collaborators of a Checker. Only TrustedDomains is commonly
// set; everything else has a usable zero value.
type Config struct {
	// TrustedDomains is the caller's allow-list. Empty uses FallbackTrustedDomains.
	TrustedDomains []string
	// Resolver enables the DNS blocklist check. Nil disables it.
	Resolver Resolver
	// Cache is shared blocklist state. Nil gives the checker a private cache.
	Cache *BlocklistCache
	// Zones overrides DefaultBlocklistZones.
	Zones []string
	// LookupTimeout bounds all blocklist queries for one domain.
	LookupTimeout time.Duration
	// Thresholds overrides the classification bands. Nil keeps the standard
	// ones: safe at 0.7 and above, medium from 0.4.
	Thresholds *ScoringThresholds
	// Metrics records verdicts and lookups. Nil disables recording.
	Metrics *metrics.Metrics
	// Debug logs heuristics that fail internally.
	Debug bool
}

type compiledPattern struct {
	source string
	re     *regexp.Regexp
}

// Checker scores URLs against a fixed battery of independent heuristics.
// It is safe for concurrent use.
type Checker struct {
	trusted       map[string]struct{}
	trustedOrder  []string
	typosquat     []compiledPattern
	resolver      Resolver
	cache         *BlocklistCache
	zones         []string
	lookupTimeout time.Duration
	thresholds    ScoringThresholds
	metrics       *metrics.Metrics
	debug         bool
}

// NewChecker compiles the typosquat patterns and wires cfg.
func NewChecker(cfg Config) (*Checker, error) {
	c := &Checker{
		trusted:       make(map[string]struct{}),
		resolver:      cfg.Resolver,
		cache:         cfg.Cache,
		zones:         cfg.Zones,
		lookupTimeout: cfg.LookupTimeout,
		thresholds:    DefaultScoringThresholds(),
		metrics:       cfg.Metrics,
		debug:         cfg.Debug,
	}

	for _, d := range cfg.TrustedDomains {
		c.addTrusted(d)
	}
	if len(c.trustedOrder) == 0 {
		for _, d := range FallbackTrustedDomains {
			c.addTrusted(d)
		}
	}

	for _, p := range TyposquatPatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile typosquat pattern %q: %w", p, err)
		}
		c.typosquat = append(c.typosquat, compiledPattern{source: p, re: re})
	}

	if c.cache == nil {
		c.cache = NewBlocklistCache()
	}
	if len(c.zones) == 0 {
		c.zones = DefaultBlocklistZones
	}
	if c.lookupTimeout <= 0 {
		c.lookupTimeout = defaultLookupTimeout
	}
	if cfg.Thresholds != nil {
		c.thresholds = *cfg.Thresholds
	}

	return c, nil
}

func (c *Checker) addTrusted(domain string) {
	d := normalizeTrusted(domain)
	if d == "" {
		return
	}
	if _, ok := c.trusted[d]; ok {
		return
	}
	c.trusted[d] = struct{}{}
	c.trustedOrder = append(c.trustedOrder, d)
}

// DNSEnabled reports whether the blocklist check can run.
func (c *Checker) DNSEnabled() bool {
	return c.resolver != nil
}

// Cache returns the blocklist cache used by this checker.
func (c *Checker) Cache() *BlocklistCache {
	return c.cache
}

// TrustedDomains returns the effective allow-list in insertion order.
func (c *Checker) TrustedDomains() []string {
	out := make([]string, len(c.trustedOrder))
	copy(out, c.trustedOrder)
	return out
}

// Check evaluates rawURL. It never fails: malformed input yields a high-risk
// verdict, and a heuristic that breaks internally contributes nothing.
func (c *Checker) Check(ctx context.Context, rawURL string) Verdict {
	start := time.Now()
	v := c.evaluate(ctx, rawURL)
	c.metrics.ObserveCheckLatency(time.Since(start))
	c.metrics.IncrementVerdict(string(v.RiskLevel))
	return v
}

func (c *Checker) evaluate(ctx context.Context, rawURL string) Verdict {
	if rawURL == "" || !hasWebScheme(rawURL) {
		return rejectVerdict("invalid or empty URL")
	}

	t, err := parseTarget(rawURL)
	if err != nil {
		if c.debug {
			log.Printf("[URLSafety] parse %q: %v", rawURL, err)
		}
		return rejectVerdict("URL parse error")
	}

	score := baseScore
	var reasons []string

	for _, h := range c.heuristics() {
		f := c.runHeuristic(ctx, h, t)
		if f.reason == "" {
			continue
		}
		score += f.delta
		reasons = append(reasons, f.reason)
		c.metrics.IncrementHeuristic(h.name)
	}

	return finalizeScore(score, reasons, c.thresholds)
}

package vetting

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResolver answers from fixed tables; unknown names get fallback or NXDOMAIN.
type fakeResolver struct {
	mu       sync.Mutex
	answers  map[string][]net.IP
	errs     map[string]error
	fallback error
	queries  []string
}

func (f *fakeResolver) LookupA(_ context.Context, name string) ([]net.IP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, name)
	if ips, ok := f.answers[name]; ok {
		return ips, nil
	}
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	if f.fallback != nil {
		return nil, f.fallback
	}
	return nil, fmt.Errorf("query %s: %w", name, ErrNXDomain)
}

func (f *fakeResolver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func newTestChecker(t *testing.T, cfg Config) *Checker {
	t.Helper()
	c, err := NewChecker(cfg)
	require.NoError(t, err)
	return c
}

func hasReasonPrefix(reasons []string, prefix string) bool {
	for _, r := range reasons {
		if strings.HasPrefix(r, prefix) {
			return true
		}
	}
	return false
}

func TestCheckMalformedInput(t *testing.T) {
	c := newTestChecker(t, Config{})

	for _, raw := range []string{"", "ftp://x.com", "not a url", "HTTP://upper.com"} {
		t.Run(raw, func(t *testing.T) {
			v := c.Check(context.Background(), raw)
			assert.False(t, v.Safe)
			assert.Equal(t, RiskHigh, v.RiskLevel)
			assert.Equal(t, 0.0, v.Score)
			assert.Equal(t, []string{"invalid or empty URL"}, v.Reasons)
		})
	}
}

func TestCheckParseError(t *testing.T) {
	c := newTestChecker(t, Config{})

	for _, raw := range []string{"http://exa mple.com/%zz", "https://", "http://:8080/path"} {
		t.Run(raw, func(t *testing.T) {
			v := c.Check(context.Background(), raw)
			assert.False(t, v.Safe)
			assert.Equal(t, RiskHigh, v.RiskLevel)
			assert.Equal(t, 0.0, v.Score)
			assert.Equal(t, []string{"URL parse error"}, v.Reasons)
		})
	}
}

func TestCheckConcreteScenarios(t *testing.T) {
	c := newTestChecker(t, Config{})
	ctx := context.Background()

	tests := []struct {
		name   string
		url    string
		reason string
	}{
		{"trusted fallback", "https://thehackernews.com/2026/02/x.html", "trusted domain: thehackernews.com"},
		{"raw ip", "http://91.92.242.30/malware.exe", "raw IP address URL: 91.92.242.30"},
		{"suspicious tld", "https://cdn-fake-news.xyz/article/ai-scam", "suspicious TLD: .xyz"},
		{"shortener", "https://bit.ly/3xYzAbC", "URL shortener: bit.ly"},
		{"typosquat", "https://g00gle.com/redirect", "possible typosquatting: matched"},
		{"subdomains", "https://sub.sub.sub.sub.evil.example.com/page", "excessive subdomains (6 levels): sub.sub.sub.sub.evil.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := c.Check(ctx, tt.url)
			assert.True(t, hasReasonPrefix(v.Reasons, tt.reason), "reasons %v missing %q", v.Reasons, tt.reason)
		})
	}

	assert.True(t, c.Check(ctx, "https://thehackernews.com/2026/02/x.html").Safe)
	assert.False(t, c.Check(ctx, "http://91.92.242.30/malware.exe").Safe)
}

func TestCheckScores(t *testing.T) {
	c := newTestChecker(t, Config{})
	ctx := context.Background()

	tests := []struct {
		url   string
		score float64
		level RiskLevel
	}{
		{"https://example.org/", 1.0, RiskLow},
		{"https://thehackernews.com/a", 1.3, RiskLow},
		{"https://www.github.com/acme/repo", 1.3, RiskLow},
		{"http://91.92.242.30/malware.exe", 0.5, RiskMedium},
		{"https://cdn-fake-news.xyz/article", 0.6, RiskMedium},
		{"https://bit.ly/3xYzAbC", 0.65, RiskMedium},
		{"https://g00gle.com/redirect", 0.6, RiskMedium},
		{"https://g00gle.xyz/redirect", 0.2, RiskHigh},
		{"https://a.b.c.d.example.com/", 0.75, RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			v := c.Check(ctx, tt.url)
			assert.InDelta(t, tt.score, v.Score, 1e-9)
			assert.Equal(t, tt.level, v.RiskLevel)
			assert.Equal(t, tt.level == RiskLow, v.Safe)
		})
	}
}

func TestCheckCleanURLHasEmptyReasons(t *testing.T) {
	c := newTestChecker(t, Config{})

	v := c.Check(context.Background(), "https://example.org/docs")
	require.NotNil(t, v.Reasons)
	assert.Empty(t, v.Reasons)
	assert.True(t, v.Safe)
}

func TestTrustedDomainAppliedOnce(t *testing.T) {
	c := newTestChecker(t, Config{TrustedDomains: []string{"example.com", "docs.example.com"}})
	ctx := context.Background()

	for _, raw := range []string{
		"https://example.com/",
		"https://docs.example.com/",
		"https://a.docs.example.com/",
		"https://www.example.com/",
	} {
		v := c.Check(ctx, raw)
		trusted := 0
		for _, r := range v.Reasons {
			if strings.HasPrefix(r, "trusted domain: ") {
				trusted++
			}
		}
		assert.Equal(t, 1, trusted, raw)
		assert.InDelta(t, 1.3, v.Score, 1e-9, raw)
	}
}

func TestTrustedDomainReplacesFallback(t *testing.T) {
	c := newTestChecker(t, Config{TrustedDomains: []string{"Example.COM"}})

	v := c.Check(context.Background(), "https://thehackernews.com/x")
	assert.False(t, hasReasonPrefix(v.Reasons, "trusted domain"))
	assert.Equal(t, []string{"example.com"}, c.TrustedDomains())
}

func TestTrustedWWWEntryDoesNotCoverSiblings(t *testing.T) {
	c := newTestChecker(t, Config{TrustedDomains: []string{"www.example.com", "https://Docs.Example.org/"}})
	ctx := context.Background()

	v := c.Check(ctx, "https://evil.example.com/")
	assert.False(t, hasReasonPrefix(v.Reasons, "trusted domain"), v.Reasons)
	assert.InDelta(t, 1.0, v.Score, 1e-9)

	v = c.Check(ctx, "https://example.com/")
	assert.False(t, hasReasonPrefix(v.Reasons, "trusted domain"), v.Reasons)

	v = c.Check(ctx, "https://www.example.com/")
	assert.Equal(t, []string{"trusted domain: www.example.com"}, v.Reasons)

	v = c.Check(ctx, "https://cdn.www.example.com/")
	assert.Equal(t, []string{"trusted domain: www.example.com"}, v.Reasons)

	assert.Equal(t, []string{"www.example.com", "docs.example.org"}, c.TrustedDomains())
}

func TestTrailingDotHost(t *testing.T) {
	c := newTestChecker(t, Config{})

	v := c.Check(context.Background(), "https://evil.xyz./login")
	assert.Equal(t, []string{"suspicious TLD: .xyz"}, v.Reasons)
	assert.InDelta(t, 0.6, v.Score, 1e-9)
}

func TestTrustedDomainIsAdditive(t *testing.T) {
	// A trusted host on a suspicious TLD keeps both deltas.
	c := newTestChecker(t, Config{TrustedDomains: []string{"news.xyz"}})

	v := c.Check(context.Background(), "https://cdn.news.xyz/a")
	assert.Equal(t, []string{"trusted domain: news.xyz", "suspicious TLD: .xyz"}, v.Reasons)
	assert.InDelta(t, 0.9, v.Score, 1e-9)
	assert.True(t, v.Safe)
}

func TestRawIPHost(t *testing.T) {
	c := newTestChecker(t, Config{})

	v := c.Check(context.Background(), "http://91.92.242.30:8080/x")
	assert.Contains(t, v.Reasons, "raw IP address URL: 91.92.242.30")
	assert.False(t, hasReasonPrefix(v.Reasons, "suspicious TLD"))
	assert.False(t, hasReasonPrefix(v.Reasons, "URL shortener"))
	assert.False(t, hasReasonPrefix(v.Reasons, "excessive subdomains"))
}

func TestTyposquatDoesNotMatchGenuineBrands(t *testing.T) {
	c := newTestChecker(t, Config{TrustedDomains: []string{"unrelated.org"}})
	ctx := context.Background()

	for _, raw := range []string{
		"https://google.com/", "https://microsoft.com/", "https://paypal.com/",
		"https://amazon.com/", "https://facebook.com/", "https://linkedin.com/",
		"https://github.com/", "https://apple.com/",
	} {
		v := c.Check(ctx, raw)
		assert.False(t, hasReasonPrefix(v.Reasons, "possible typosquatting"), raw)
	}

	for _, raw := range []string{
		"https://G00GLE.com/", "https://micr0soft.com/", "https://paypa1.com/",
		"https://arnazon.com/", "https://faceb00k.com/", "https://linkedln.com/",
		"https://g1thub.com/", "https://app1e.com/",
	} {
		v := c.Check(ctx, raw)
		assert.True(t, hasReasonPrefix(v.Reasons, "possible typosquatting: matched '"), raw)
	}
}

func TestObfuscatedLongURL(t *testing.T) {
	c := newTestChecker(t, Config{})

	path := "/" + strings.Repeat("deadbeef-0123_", 16)
	long := "https://example.org" + path
	require.Greater(t, len(long), 200)

	v := c.Check(context.Background(), long)
	require.Len(t, v.Reasons, 1)
	assert.True(t, strings.HasPrefix(v.Reasons[0], fmt.Sprintf("obfuscated/long URL (%d chars, ", len(long))))
	assert.True(t, strings.HasSuffix(v.Reasons[0], "% hex)"))
	assert.InDelta(t, 0.8, v.Score, 1e-9)

	// Long but readable
	readable := "https://example.org/" + strings.Repeat("news/story/", 20)
	v = c.Check(context.Background(), readable)
	assert.Empty(t, v.Reasons)
}

func TestObfuscatedMeasuresPathAsWritten(t *testing.T) {
	c := newTestChecker(t, Config{})
	ctx := context.Background()

	// Non-ASCII path characters count once, not as their percent-encoding
	accented := "https://example.org/" + strings.Repeat("é", 200)
	v := c.Check(ctx, accented)
	assert.Empty(t, v.Reasons)
	assert.InDelta(t, 1.0, v.Score, 1e-9)

	encoded := "https://example.org/" + strings.Repeat("%2F", 80)
	v = c.Check(ctx, encoded)
	assert.Equal(t, []string{"obfuscated/long URL (260 chars, 66% hex)"}, v.Reasons)
	assert.InDelta(t, 0.8, v.Score, 1e-9)
}

func TestRawPath(t *testing.T) {
	tests := map[string]string{
		"https://example.org":               "",
		"https://example.org/":              "/",
		"https://example.org/a/b?q=1#frag":  "/a/b",
		"https://example.org?q=/x":          "",
		"https://example.org:8443/%2Fé#x/y": "/%2Fé",
		"http://user@example.org/p#":        "/p",
	}
	for in, want := range tests {
		assert.Equal(t, want, rawPath(in), in)
	}
}

func TestHexRatio(t *testing.T) {
	assert.Equal(t, 0.0, hexRatio(""))
	assert.Equal(t, 1.0, hexRatio("abcdef0123-_"))
	assert.InDelta(t, 0.5, hexRatio("zzab"), 1e-9)
}

func TestScoreClampedToZero(t *testing.T) {
	// IP host, suspicious TLD, shortener, typosquat and DNS listing cannot all
	// hit one real URL, so the clamp is exercised on the summed score directly
	// and on the worst reachable combination.
	v := finalizeScore(1.0-0.5-0.4-0.35-0.4-0.5, []string{"a", "b", "c", "d", "e"}, DefaultScoringThresholds())
	assert.Equal(t, 0.0, v.Score)
	assert.Equal(t, RiskHigh, v.RiskLevel)

	res := &fakeResolver{answers: map[string][]net.IP{
		"faceb00k.tk.multi.surbl.org": {net.ParseIP("127.0.0.2")},
	}}
	c := newTestChecker(t, Config{Resolver: res})
	long := "https://a.b.c.d.faceb00k.tk/" + strings.Repeat("c0ffee", 40)

	v = c.Check(context.Background(), long)
	assert.Len(t, v.Reasons, 5)
	assert.Equal(t, 0.0, v.Score)
	assert.False(t, v.Safe)
	assert.Equal(t, RiskHigh, v.RiskLevel)
}

func TestScoreClampedToMax(t *testing.T) {
	v := finalizeScore(1.9, nil, DefaultScoringThresholds())
	assert.Equal(t, 1.3, v.Score)
	assert.NotNil(t, v.Reasons)
}

func TestScoreRounding(t *testing.T) {
	v := finalizeScore(1.0-0.35-0.25, []string{"x", "y"}, DefaultScoringThresholds())
	assert.Equal(t, 0.4, v.Score)
	assert.Equal(t, RiskMedium, v.RiskLevel)
}

func TestCheckIdempotent(t *testing.T) {
	res := &fakeResolver{}
	c := newTestChecker(t, Config{Resolver: res})
	ctx := context.Background()

	for _, raw := range []string{
		"https://thehackernews.com/2026/02/x.html",
		"https://g00gle.xyz/a",
		"https://sub.sub.sub.sub.evil.example.com/page",
	} {
		first := c.Check(ctx, raw)
		second := c.Check(ctx, raw)
		assert.Equal(t, first, second, raw)
	}
}

func TestHeuristicPanicIsSwallowed(t *testing.T) {
	c := newTestChecker(t, Config{Debug: true})
	tgt, err := parseTarget("https://example.org/")
	require.NoError(t, err)

	f := c.runHeuristic(context.Background(), heuristic{
		name: "boom",
		run:  func(context.Context, *target) finding { panic("boom") },
	}, tgt)
	assert.Equal(t, finding{}, f)
}

func TestRegistrableDomain(t *testing.T) {
	tests := map[string]string{
		"sub.example.com":     "example.com",
		"www.example.com":     "example.com",
		"a.b.c.example.co.uk": "co.uk",
		"localhost":           "localhost",
		"www.localhost":       "localhost",
		"Example.COM":         "example.com",
		"91.92.242.30":        "242.30",
	}
	for in, want := range tests {
		assert.Equal(t, want, RegistrableDomain(in), in)
	}
}

func TestNewCheckerDefaults(t *testing.T) {
	c := newTestChecker(t, Config{})
	assert.False(t, c.DNSEnabled())
	assert.NotNil(t, c.Cache())
	assert.Equal(t, DefaultBlocklistZones, c.zones)
	assert.Equal(t, defaultLookupTimeout, c.lookupTimeout)
	assert.Len(t, c.typosquat, len(TyposquatPatterns))
	assert.Contains(t, c.TrustedDomains(), "thehackernews.com")
}

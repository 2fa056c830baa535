package vetting

// DNS blocklist zones queried as <domain>.<zone>
var DefaultBlocklistZones = []string{
	"multi.surbl.org",  // SURBL
	"dbl.spamhaus.org", // Spamhaus DBL
}

// FallbackTrustedDomains is used when the caller supplies no allow-list.
var FallbackTrustedDomains = []string{
	"thehackernews.com",
	"bleepingcomputer.com",
	"krebsonsecurity.com",
	"arstechnica.com",
	"wired.com",
	"theverge.com",
	"techcrunch.com",
	"reuters.com",
	"apnews.com",
	"bbc.com",
	"nytimes.com",
	"nature.com",
	"arxiv.org",
	"wikipedia.org",
	"github.com",
	"stackoverflow.com",
	"microsoft.com",
	"google.com",
	"mozilla.org",
	"python.org",
	"cisa.gov",
}

// Low-reputation TLDs. First match in list order is reported.
var SuspiciousTLDs = []string{
	".xyz",
	".tk",
	".top",
	".click",
	".loan",
	".ml",
	".ga",
	".cf",
	".gq",
	".work",
	".date",
	".racing",
	".win",
	".bid",
	".stream",
	".download",
	".review",
	".party",
	".trade",
	".accountant",
	".zip",
}

// Known URL shortener domains, matched against the registrable domain.
var ShortenerDomains = []string{
	"bit.ly",
	"tinyurl.com",
	"goo.gl",
	"t.co",
	"ow.ly",
	"is.gd",
	"buff.ly",
	"adf.ly",
	"bit.do",
	"cutt.ly",
	"shorturl.at",
	"rb.gy",
	"tiny.cc",
	"lnkd.in",
	"rebrand.ly",
	"short.io",
	"bl.ink",
	"soo.gd",
	"s.id",
}

// Brand misspelling fragments, compiled case-insensitively against the
// registrable domain. None of them may match the genuine brand domain.
var TyposquatPatterns = []string{
	`g(?:00|0o|o0)g[l1]e`,
	`goog1e`,
	`go{3,}gle`,
	`micr0s[o0]ft`,
	`micros0ft`,
	`rnicrosoft`,
	`paypa[1i]`,
	`amaz0n`,
	`arnazon`,
	`faceb(?:00|0o|o0)k`,
	`linked[1l]n`,
	`1inkedin`,
	`g[1l]thub`,
	`githuh`,
	`app1e`,
}

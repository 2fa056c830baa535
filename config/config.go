package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config captures service and checker settings.
type Config struct {
	Addr           string
	TrustedDomains []string
	Zones          []string
	DNSBLEnabled   bool
	Nameserver     string
	Resolver       string // "dns" (direct queries) or "system"
	DNSTimeout     time.Duration
	Workers        int
	Debug          bool
}

// trustedFile is the YAML layout of URLSAFETY_TRUSTED_FILE.
type trustedFile struct {
	TrustedDomains []string `yaml:"trusted_domains"`
	DNSBLZones     []string `yaml:"dnsbl_zones"`
}

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:         ":8080",
		DNSBLEnabled: true,
		DNSTimeout:   2 * time.Second,
		Workers:      8,
		Resolver:     "dns",
	}

	// PORT is set by most cloud runtimes
	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	if addr := os.Getenv("URLSAFETY_ADDR"); addr != "" {
		cfg.Addr = addr
	}

	if path := os.Getenv("URLSAFETY_TRUSTED_FILE"); path != "" {
		f, err := loadTrustedFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg.TrustedDomains = append(cfg.TrustedDomains, f.TrustedDomains...)
		cfg.Zones = f.DNSBLZones
	}
	cfg.TrustedDomains = append(cfg.TrustedDomains, splitList(os.Getenv("URLSAFETY_TRUSTED_DOMAINS"))...)

	if v := os.Getenv("URLSAFETY_DNSBL"); v != "" {
		switch strings.ToLower(v) {
		case "off", "false", "0", "no":
			cfg.DNSBLEnabled = false
		case "on", "true", "1", "yes":
			cfg.DNSBLEnabled = true
		default:
			return Config{}, fmt.Errorf("URLSAFETY_DNSBL: unknown value %q", v)
		}
	}

	cfg.Nameserver = os.Getenv("URLSAFETY_NAMESERVER")

	if v := os.Getenv("URLSAFETY_RESOLVER"); v != "" {
		switch v {
		case "dns", "system":
			cfg.Resolver = v
		default:
			return Config{}, fmt.Errorf("URLSAFETY_RESOLVER: unknown resolver %q", v)
		}
	}

	if v := os.Getenv("URLSAFETY_DNS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("URLSAFETY_DNS_TIMEOUT: invalid duration %q", v)
		}
		cfg.DNSTimeout = d
	}

	if v := os.Getenv("URLSAFETY_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("URLSAFETY_WORKERS: invalid worker count %q", v)
		}
		cfg.Workers = n
	}

	cfg.Debug = os.Getenv("URLSAFETY_DEBUG") == "true"

	return cfg, nil
}

func loadTrustedFile(path string) (trustedFile, error) {
	var f trustedFile
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read trusted file: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse trusted file %s: %w", path, err)
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

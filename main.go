package main

import (
	"fmt"
	"os"

	"github.com/acekapila/nexus-sub001/config"
	"github.com/acekapila/nexus-sub001/metrics"
	"github.com/acekapila/nexus-sub001/vetting"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "nexus-urlsafety",
		Short:         "Heuristic URL safety scoring for research pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCheckCmd())
	return cmd
}

// buildChecker wires a Checker from cfg. reg may be nil to skip metrics.
func buildChecker(cfg config.Config, reg prometheus.Registerer) (*vetting.Checker, error) {
	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}

	var resolver vetting.Resolver
	if cfg.DNSBLEnabled {
		switch cfg.Resolver {
		case "system":
			resolver = vetting.NewSystemResolver(cfg.Nameserver, cfg.DNSTimeout)
		default:
			resolver = vetting.NewDNSResolver(cfg.Nameserver, cfg.DNSTimeout)
		}
	}

	return vetting.NewChecker(vetting.Config{
		TrustedDomains: cfg.TrustedDomains,
		Resolver:       resolver,
		Zones:          cfg.Zones,
		LookupTimeout:  cfg.DNSTimeout,
		Metrics:        m,
		Debug:          cfg.Debug,
	})
}

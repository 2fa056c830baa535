package main

import (
	"encoding/json"
	"fmt"

	"github.com/acekapila/nexus-sub001/config"
	"github.com/acekapila/nexus-sub001/vetting"

	"github.com/spf13/cobra"
)

type checkFlags struct {
	noDNS   bool
	whois   bool
	trusted []string
	strict  bool
}

func newCheckCmd() *cobra.Command {
	var f checkFlags
	cmd := &cobra.Command{
		Use:   "check <url>...",
		Short: "Score one or more URLs and print JSON verdicts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if f.noDNS {
				cfg.DNSBLEnabled = false
			}
			cfg.TrustedDomains = append(cfg.TrustedDomains, f.trusted...)

			checker, err := buildChecker(cfg, nil)
			if err != nil {
				return err
			}

			var whois vetting.AgeLooker
			if f.whois {
				whois = vetting.NewWhoisClient()
			}
			h := vetting.NewHandler(checker, whois, nil, cfg.Workers)

			enc := json.NewEncoder(cmd.OutOrStdout())
			flagged := 0
			for _, raw := range args {
				resp := h.Inspect(cmd.Context(), raw, f.whois)
				if !resp.Verdict.Safe {
					flagged++
				}
				if err := enc.Encode(resp); err != nil {
					return fmt.Errorf("write verdict: %w", err)
				}
			}
			if f.strict && flagged > 0 {
				return fmt.Errorf("%d of %d URLs flagged unsafe", flagged, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&f.noDNS, "no-dns", false, "skip the DNS blocklist check")
	cmd.Flags().BoolVar(&f.whois, "whois", false, "attach WHOIS domain age")
	cmd.Flags().StringSliceVar(&f.trusted, "trusted", nil, "additional trusted domains")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "exit non-zero when any URL is unsafe")
	return cmd
}

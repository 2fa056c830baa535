package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/acekapila/nexus-sub001/config"
	"github.com/acekapila/nexus-sub001/vetting"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the URL safety HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides PORT / URLSAFETY_ADDR)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	reg := prometheus.NewRegistry()
	checker, err := buildChecker(cfg, reg)
	if err != nil {
		return err
	}

	h := vetting.NewHandler(checker, vetting.NewWhoisClient(), reg, cfg.Workers)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("✅ urlsafety service listening on %s (dnsbl: %v, trusted: %d)", cfg.Addr, checker.DNSEnabled(), len(checker.TrustedDomains()))
	log.Println("📍 Endpoints:")
	log.Println("   POST /v1/check        - Single URL verdict")
	log.Println("   POST /v1/check/batch  - Batch verdicts")
	log.Println("   GET  /healthz         - Health and cache stats")
	log.Println("   GET  /metrics         - Prometheus metrics")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

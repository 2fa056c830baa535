package vetting

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBatchURLs = 500

type CheckRequest struct {
	URL   string `json:"url"`
	Whois bool   `json:"whois,omitempty"`
}

type CheckResponse struct {
	URL       string     `json:"url"`
	Verdict   Verdict    `json:"verdict"`
	Whois     *WhoisInfo `json:"whois,omitempty"`
	Timestamp string     `json:"timestamp"`
}

type BatchRequest struct {
	URLs []string `json:"urls"`
}

type BatchResponse struct {
	Results   []CheckResponse `json:"results"`
	Cache     CacheStats      `json:"cache"`
	Timestamp string          `json:"timestamp"`
}

// AgeLooker reports WHOIS age for a domain.
type AgeLooker interface {
	Age(domain string) (WhoisInfo, error)
}

// Handler exposes a Checker over HTTP.
type Handler struct {
	checker  *Checker
	whois    AgeLooker
	gatherer prometheus.Gatherer
	workers  int
}

// NewHandler wires the HTTP surface. whois and gatherer may be nil.
func NewHandler(checker *Checker, whois AgeLooker, gatherer prometheus.Gatherer, workers int) *Handler {
	return &Handler{
		checker:  checker,
		whois:    whois,
		gatherer: gatherer,
		workers:  workers,
	}
}

// Router returns the service routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", h.Health)
	r.Post("/v1/check", h.Check)
	r.Post("/v1/check/batch", h.CheckBatch)
	if h.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"dns_enabled": h.checker.DNSEnabled(),
		"cache":       h.checker.Cache().Stats(),
	})
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	resp := h.Inspect(r.Context(), req.URL, req.Whois)
	writeJSON(w, http.StatusOK, resp)

	log.Printf("[HTTP] Checked %s: %s (%.3f)", req.URL, resp.Verdict.RiskLevel, resp.Verdict.Score)
}

func (h *Handler) CheckBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if len(req.URLs) == 0 {
		http.Error(w, "urls required", http.StatusBadRequest)
		return
	}
	if len(req.URLs) > maxBatchURLs {
		http.Error(w, "too many urls", http.StatusRequestEntityTooLarge)
		return
	}

	now := time.Now().Format(time.RFC3339)
	verdicts := h.checker.CheckAll(r.Context(), req.URLs, h.workers)
	results := make([]CheckResponse, len(verdicts))
	for i, v := range verdicts {
		results[i] = CheckResponse{URL: req.URLs[i], Verdict: v, Timestamp: now}
	}

	writeJSON(w, http.StatusOK, BatchResponse{
		Results:   results,
		Cache:     h.checker.Cache().Stats(),
		Timestamp: now,
	})

	log.Printf("[HTTP] Batch checked %d URLs", len(results))
}

// Inspect checks rawURL and, when asked, attaches WHOIS age for its domain.
func (h *Handler) Inspect(ctx context.Context, rawURL string, withWhois bool) CheckResponse {
	resp := CheckResponse{
		URL:       rawURL,
		Verdict:   h.checker.Check(ctx, rawURL),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if withWhois && h.whois != nil && hasWebScheme(rawURL) {
		if t, err := parseTarget(rawURL); err == nil {
			if info, err := h.whois.Age(t.domain); err == nil {
				resp.Whois = &info
			} else {
				log.Printf("[WHOIS] Lookup failed for %s: %v", t.domain, err)
			}
		}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

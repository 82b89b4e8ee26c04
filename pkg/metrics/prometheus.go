package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dbehnke/pocsag-nexus/pkg/logger"
)

// PrometheusConfig holds Prometheus server configuration
type PrometheusConfig struct {
	Enabled bool
	Host    string
	Port    int
	Path    string
}

// PrometheusHandler handles Prometheus metrics HTTP requests
type PrometheusHandler struct {
	collector *Collector
}

// NewPrometheusHandler creates a new Prometheus handler
func NewPrometheusHandler(collector *Collector) *PrometheusHandler {
	return &PrometheusHandler{
		collector: collector,
	}
}

// ServeHTTP handles HTTP requests for metrics
func (h *PrometheusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	var output strings.Builder

	// Page metrics
	output.WriteString("# HELP pocsag_pages_total Total pages encoded and transmitted\n")
	output.WriteString("# TYPE pocsag_pages_total counter\n")
	output.WriteString(fmt.Sprintf("pocsag_pages_total %d\n", h.collector.GetPagesEncoded()))

	output.WriteString("# HELP pocsag_pages_rejected_total Total pages rejected before encoding\n")
	output.WriteString("# TYPE pocsag_pages_rejected_total counter\n")
	output.WriteString(fmt.Sprintf("pocsag_pages_rejected_total %d\n", h.collector.GetPagesRejected()))

	// Encoder metrics
	output.WriteString("# HELP pocsag_codewords_total Total 32-bit codewords encoded\n")
	output.WriteString("# TYPE pocsag_codewords_total counter\n")
	output.WriteString(fmt.Sprintf("pocsag_codewords_total %d\n", h.collector.GetCodewordsEncoded()))

	// Output metrics
	output.WriteString("# HELP pocsag_pcm_bytes_total Total PCM bytes written for pages\n")
	output.WriteString("# TYPE pocsag_pcm_bytes_total counter\n")
	output.WriteString(fmt.Sprintf("pocsag_pcm_bytes_total %d\n", h.collector.GetPCMBytes()))

	output.WriteString("# HELP pocsag_silence_bytes_total Total silence bytes written between pages\n")
	output.WriteString("# TYPE pocsag_silence_bytes_total counter\n")
	output.WriteString(fmt.Sprintf("pocsag_silence_bytes_total %d\n", h.collector.GetSilenceBytes()))

	// Queue metrics
	output.WriteString("# HELP pocsag_queue_depth Number of pages waiting in the transmit queue\n")
	output.WriteString("# TYPE pocsag_queue_depth gauge\n")
	output.WriteString(fmt.Sprintf("pocsag_queue_depth %d\n", h.collector.GetQueueDepth()))

	// Per-source metrics
	bySource := h.collector.GetPagesBySource()
	sources := make([]string, 0, len(bySource))
	for source := range bySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	output.WriteString("# HELP pocsag_pages_source_total Pages encoded per intake source\n")
	output.WriteString("# TYPE pocsag_pages_source_total counter\n")
	for _, source := range sources {
		output.WriteString(fmt.Sprintf("pocsag_pages_source_total{source=%q} %d\n", source, bySource[source]))
	}

	w.Write([]byte(output.String()))
}

// PrometheusServer is an HTTP server for Prometheus metrics
type PrometheusServer struct {
	config    PrometheusConfig
	collector *Collector
	log       *logger.Logger
	server    *http.Server
}

// NewPrometheusServer creates a new Prometheus metrics server
func NewPrometheusServer(config PrometheusConfig, collector *Collector, log *logger.Logger) *PrometheusServer {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}

	return &PrometheusServer{
		config:    config,
		collector: collector,
		log:       log.WithComponent("metrics"),
	}
}

// Start starts the Prometheus metrics server
func (s *PrometheusServer) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.log.Info("Prometheus metrics server disabled")
		return nil
	}

	handler := NewPrometheusHandler(s.collector)
	mux := http.NewServeMux()
	mux.Handle(s.config.Path, handler)

	// Use a listener to get the actual port (useful for testing with port 0)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	actualPort := listener.Addr().(*net.TCPAddr).Port

	s.server = &http.Server{
		Handler: mux,
	}

	s.log.Info("Starting Prometheus metrics server",
		logger.Int("port", actualPort),
		logger.String("path", s.config.Path))

	// Start server
	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.log.Info("Shutting down Prometheus metrics server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown error: %w", err)
		}
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

// Stop stops the Prometheus metrics server
func (s *PrometheusServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}
}

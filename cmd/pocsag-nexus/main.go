package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dbehnke/pocsag-nexus/pkg/audio"
	"github.com/dbehnke/pocsag-nexus/pkg/config"
	"github.com/dbehnke/pocsag-nexus/pkg/database"
	"github.com/dbehnke/pocsag-nexus/pkg/directory"
	"github.com/dbehnke/pocsag-nexus/pkg/logger"
	"github.com/dbehnke/pocsag-nexus/pkg/metrics"
	"github.com/dbehnke/pocsag-nexus/pkg/network"
	"github.com/dbehnke/pocsag-nexus/pkg/pcm"
	"github.com/dbehnke/pocsag-nexus/pkg/pocsag"
	"github.com/dbehnke/pocsag-nexus/pkg/transmit"
	"github.com/dbehnke/pocsag-nexus/pkg/web"
)

var (
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

func main() {
	// Parse command line flags
	configFile := flag.String("config", "", "Path to configuration file")
	logLevel := flag.String("log-level", "", "Override configured log level")
	showVersion := flag.Bool("version", false, "Show version information")
	validate := flag.Bool("validate", false, "Validate configuration and exit")
	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Printf("POCSAG-Nexus %s\n", version)
		fmt.Printf("Git Commit: %s\n", gitCommit)
		fmt.Printf("Built: %s\n", buildTime)
		os.Exit(0)
	}

	// Initialize basic logger for startup
	log := logger.New(logger.Config{
		Level:  "info",
		Format: "text",
	})

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error("Failed to load configuration", logger.Error(err))
		os.Exit(1)
	}

	// Validate only mode
	if *validate {
		log.Info("Configuration is valid")
		os.Exit(0)
	}

	// Reinitialize logger with config settings
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	log = logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	log.Info("Starting POCSAG-Nexus",
		logger.String("version", version),
		logger.String("commit", gitCommit),
		logger.String("build_time", buildTime))

	web.SetVersionInfo(version, gitCommit, buildTime)

	// The transmitter is the only stdout writer in stdout mode, so all
	// logging goes to stderr (the logger default).
	acl, err := transmit.ParseACL(cfg.Transmit.AddressACL)
	if err != nil {
		log.Error("Failed to parse address ACL", logger.Error(err))
		os.Exit(1)
	}

	renderer := pcm.Renderer{
		SampleRate: cfg.Transmit.SampleRate,
		BaudRate:   cfg.Transmit.BaudRate,
		Inverted:   cfg.Transmit.Inverted,
	}

	sink, err := buildSink(cfg.Output, renderer.EffectiveSampleRate())
	if err != nil {
		log.Error("Failed to open audio output", logger.Error(err))
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize wait group for goroutines
	var wg sync.WaitGroup

	// Initialize metrics collector
	collector := metrics.NewCollector()

	// Start Prometheus metrics server if enabled
	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		metricsServer := metrics.NewPrometheusServer(
			metrics.PrometheusConfig{
				Enabled: cfg.Metrics.Prometheus.Enabled,
				Host:    cfg.Metrics.Prometheus.Host,
				Port:    cfg.Metrics.Prometheus.Port,
				Path:    cfg.Metrics.Prometheus.Path,
			},
			collector,
			log.WithComponent("metrics"),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := metricsServer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Prometheus metrics server error", logger.Error(err))
			}
		}()
		log.Info("Prometheus metrics server started",
			logger.Int("port", cfg.Metrics.Prometheus.Port),
			logger.String("path", cfg.Metrics.Prometheus.Path))
	}

	// Initialize page history database if enabled
	var (
		pageRepo *database.PageRepository
		subRepo  *database.SubscriberRepository
	)
	if cfg.Database.Enabled {
		db, err := database.NewDB(database.Config{
			Path: cfg.Database.Path,
		}, log.WithComponent("database"))
		if err != nil {
			log.Error("Failed to initialize database", logger.Error(err))
			os.Exit(1)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close database", logger.Error(err))
			}
		}()

		pageRepo = database.NewPageRepository(db.GetDB())
		subRepo = database.NewSubscriberRepository(db.GetDB())
		log.Info("Database initialized",
			logger.String("path", cfg.Database.Path))
	}

	// Start subscriber directory syncer if enabled
	var lookup transmit.NameLookup
	if cfg.Directory.Enabled && subRepo != nil {
		syncer := directory.NewSyncer(directory.Config{
			File:     cfg.Directory.File,
			URL:      cfg.Directory.URL,
			Interval: time.Duration(cfg.Directory.SyncInterval) * time.Hour,
		}, subRepo, log.WithComponent("directory"))
		lookup = syncer

		wg.Add(1)
		go func() {
			defer wg.Done()
			syncer.Start(ctx)
		}()
		log.Info("Subscriber directory syncer started")
	}

	// Build the transmit pipeline
	queue := transmit.NewQueue(cfg.Transmit.QueueSize)

	var silence *transmit.SilenceGenerator
	if cfg.Transmit.MinDelay > 0 || cfg.Transmit.MaxDelay > 0 {
		silence = transmit.NewSilenceGenerator(nil,
			renderer.EffectiveSampleRate(),
			cfg.Transmit.MinDelay,
			cfg.Transmit.MaxDelay)
	}

	transmitter := transmit.NewTransmitter(queue, renderer, sink, silence, log)
	transmitter.SetCollector(collector)
	if pageRepo != nil {
		transmitter.SetPageLogger(transmit.NewPageLogger(pageRepo, lookup, log.WithComponent("history")))
	}

	// Start web dashboard if enabled
	if cfg.Web.Enabled {
		webServer := web.NewServer(cfg.Web, web.Deps{
			Queue:       queue,
			ACL:         acl,
			Renderer:    renderer,
			Pages:       pageRepo,
			Subscribers: subRepo,
			Collector:   collector,
		}, log.WithComponent("web"))

		hub := webServer.GetHub()
		transmitter.SetOnPage(func(r transmit.PageResult) {
			hub.BroadcastPageSent(r.Message.Address, int(r.Message.Function), r.Words, r.Duration, r.Source)
		})

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := webServer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Web server error", logger.Error(err))
			}
		}()
		log.Info("Web server started",
			logger.String("host", cfg.Web.Host),
			logger.Int("port", cfg.Web.Port))
	}

	// Start TCP intake if enabled
	if cfg.Intake.Enabled {
		intake := network.NewServer(cfg.Intake, queue, log)
		intake.SetACL(acl)
		intake.SetCollector(collector)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := intake.Start(ctx); err != nil && err != context.Canceled {
				log.Error("TCP intake error", logger.Error(err))
			}
		}()
		log.Info("TCP intake started",
			logger.String("host", cfg.Intake.Host),
			logger.Int("port", cfg.Intake.Port))
	}

	// Start the transmitter
	txDone := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		txDone <- transmitter.Run(ctx)
	}()

	// Start the stdin feeder if enabled
	stdinDone := make(chan error, 1)
	if cfg.Stdin.Enabled {
		go func() {
			stdinDone <- feedStdin(ctx, queue, acl, collector, log.WithComponent("stdin"))
		}()
	}

	log.Info("POCSAG-Nexus initialized",
		logger.String("server_name", cfg.Server.Name),
		logger.Int("baud_rate", renderer.EffectiveBaudRate()),
		logger.Int("sample_rate", renderer.EffectiveSampleRate()),
		logger.String("output", cfg.Output.Target))

	// With stdin as the only source, EOF means the work is done: finish
	// the backlog and exit like a batch encoder. With network sources
	// active the process keeps serving until a signal arrives.
	onlyStdin := cfg.Stdin.Enabled && !cfg.Intake.Enabled && !cfg.Web.Enabled

	exitCode := 0
loop:
	for {
		select {
		case sig := <-sigChan:
			log.Info("Received shutdown signal",
				logger.String("signal", sig.String()))
			break loop

		case err := <-stdinDone:
			if err != nil {
				log.Error("Stdin intake error", logger.Error(err))
				exitCode = 1
				break loop
			}
			if onlyStdin {
				log.Info("Input drained, finishing queued pages")
				queue.Close()
				continue
			}
			log.Info("Stdin closed, still serving network intake")

		case err := <-txDone:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Transmitter error", logger.Error(err))
				exitCode = 1
			}
			break loop
		}
	}

	// Cancel context to trigger graceful shutdown
	cancel()
	queue.Close()

	// Wait for goroutines to finish with timeout
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("Clean shutdown completed")
	case <-time.After(5 * time.Second):
		log.Warn("Shutdown timeout, forcing exit")
	}

	if err := sink.Close(); err != nil {
		log.Error("Failed to close audio output", logger.Error(err))
	}

	log.Info("POCSAG-Nexus stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// buildSink opens the configured audio output. A file path ending in
// .wav gets a RIFF header; anything else is raw PCM.
func buildSink(cfg config.OutputConfig, sampleRate int) (audio.Sink, error) {
	switch cfg.Target {
	case "stdout", "":
		return audio.NewStreamSink(os.Stdout), nil
	case "file":
		if strings.EqualFold(filepath.Ext(cfg.Path), ".wav") {
			return audio.NewWAVSink(cfg.Path, sampleRate)
		}
		return audio.NewFileSink(cfg.Path)
	case "playback":
		return audio.NewPlayer(sampleRate)
	default:
		return nil, fmt.Errorf("unknown output target %q", cfg.Target)
	}
}

// feedStdin reads ADDRESS:FUNCTION:MESSAGE lines from standard input
// and queues them for transmission. A malformed line is fatal so shell
// pipelines fail loudly instead of paging garbage.
func feedStdin(ctx context.Context, queue *transmit.Queue, acl *transmit.ACL, collector *metrics.Collector, log *logger.Logger) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		msg, err := pocsag.ParseLine(line)
		if err != nil {
			return fmt.Errorf("invalid input line %q: %w", line, err)
		}
		if err := msg.Validate(); err != nil {
			return fmt.Errorf("invalid input line %q: %w", line, err)
		}

		if acl != nil && !acl.Check(msg.Address) {
			log.Warn("Page rejected by address ACL",
				logger.Uint32("address", msg.Address))
			collector.PageRejected("stdin")
			continue
		}

		if err := queue.EnqueueWait(ctx, transmit.Page{Message: msg, Source: "stdin"}); err != nil {
			if errors.Is(err, transmit.ErrQueueClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		collector.SetQueueDepth(queue.Depth())

		log.Debug("Page queued",
			logger.Uint32("address", msg.Address),
			logger.Int("function", int(msg.Function)))
	}
	return scanner.Err()
}

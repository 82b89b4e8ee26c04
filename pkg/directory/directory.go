// Package directory syncs the subscriber directory from a CSV source.
//
// The directory maps pager addresses to human-readable names for the
// dashboard and page history. The CSV source is either a local file or
// an HTTP URL, re-read on a fixed interval.
package directory

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/dbehnke/pocsag-nexus/pkg/database"
	"github.com/dbehnke/pocsag-nexus/pkg/logger"
	"github.com/dbehnke/pocsag-nexus/pkg/pocsag"
)

const (
	// DefaultSyncInterval is how often to re-read the source (24 hours)
	DefaultSyncInterval = 24 * time.Hour
	// BatchSize for database upserts
	BatchSize = 1000
)

// Config holds the directory source configuration
type Config struct {
	File     string        // local CSV path
	URL      string        // or HTTP CSV source
	Interval time.Duration // zero means DefaultSyncInterval
}

// Syncer handles syncing the subscriber directory
type Syncer struct {
	config Config
	repo   *database.SubscriberRepository
	logger *logger.Logger
	client *http.Client
}

// NewSyncer creates a new directory syncer
func NewSyncer(config Config, repo *database.SubscriberRepository, log *logger.Logger) *Syncer {
	if config.Interval <= 0 {
		config.Interval = DefaultSyncInterval
	}

	return &Syncer{
		config: config,
		repo:   repo,
		logger: log,
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// Start begins the periodic sync process
func (s *Syncer) Start(ctx context.Context) {
	// Sync immediately on startup
	s.logger.Info("Starting subscriber directory sync")
	if err := s.Sync(ctx); err != nil {
		s.logger.Error("Failed to sync subscriber directory on startup", logger.Error(err))
	}

	// Set up periodic sync
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Directory syncer stopped")
			return
		case <-ticker.C:
			s.logger.Info("Starting periodic subscriber directory sync")
			if err := s.Sync(ctx); err != nil {
				s.logger.Error("Failed to sync subscriber directory", logger.Error(err))
			}
		}
	}
}

// Sync reads the CSV source and updates the subscriber table
func (s *Syncer) Sync(ctx context.Context) error {
	start := time.Now()

	var source io.ReadCloser
	var err error
	switch {
	case s.config.File != "":
		s.logger.Info("Reading subscriber directory", logger.String("file", s.config.File))
		source, err = os.Open(s.config.File)
		if err != nil {
			return fmt.Errorf("failed to open directory file: %w", err)
		}
	case s.config.URL != "":
		s.logger.Info("Downloading subscriber directory", logger.String("url", s.config.URL))
		source, err = s.fetch(ctx)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("no directory source configured")
	}
	defer func() {
		if err := source.Close(); err != nil {
			s.logger.Warn("Failed to close directory source", logger.Error(err))
		}
	}()

	// Parse CSV
	subs, err := s.parseCSV(source)
	if err != nil {
		return fmt.Errorf("failed to parse CSV: %w", err)
	}

	s.logger.Info("Parsed subscriber directory",
		logger.Int("subscribers", len(subs)))

	// Upsert subscribers in batches
	if err := s.repo.UpsertBatch(subs, BatchSize); err != nil {
		return fmt.Errorf("failed to save subscribers: %w", err)
	}

	// Get final count
	count, _ := s.repo.Count()

	duration := time.Since(start)
	s.logger.Info("Subscriber directory sync complete",
		logger.Int64("total_subscribers", count),
		logger.String("duration", duration.String()))

	return nil
}

// Lookup resolves a pager address to its directory name
func (s *Syncer) Lookup(address uint32) (string, bool) {
	sub, err := s.repo.GetByAddress(address)
	if err != nil || sub.Name == "" {
		return "", false
	}
	return sub.Name, true
}

// fetch downloads the CSV source over HTTP
func (s *Syncer) fetch(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download directory: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// parseCSV parses the subscriber directory CSV format
// Expected format: ADDRESS,NAME[,NOTES]
func (s *Syncer) parseCSV(r io.Reader) ([]database.Subscriber, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1 // notes column is optional

	// Skip header row
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	subs := make([]database.Subscriber, 0, 256)
	lineNum := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.logger.Warn("Error reading CSV line",
				logger.Int("line", lineNum),
				logger.Error(err))
			lineNum++
			continue
		}
		lineNum++

		// Need at least 2 columns: ADDRESS,NAME
		if len(record) < 2 {
			continue
		}

		// Parse pager address
		address, err := strconv.ParseUint(record[0], 10, 32)
		if err != nil || address > pocsag.MaxAddress {
			continue // Skip invalid addresses
		}

		sub := database.Subscriber{
			Address:   uint32(address),
			Name:      record[1],
			UpdatedAt: time.Now(),
		}
		if len(record) >= 3 {
			sub.Notes = record[2]
		}

		subs = append(subs, sub)
	}

	return subs, nil
}

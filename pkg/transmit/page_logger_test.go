package transmit

import (
	"os"
	"testing"
	"time"

	"github.com/dbehnke/pocsag-nexus/pkg/database"
	"github.com/dbehnke/pocsag-nexus/pkg/logger"
	"github.com/dbehnke/pocsag-nexus/pkg/pocsag"
)

// fixedLookup is a directory stub for logger tests
type fixedLookup struct {
	name string
}

func (f fixedLookup) Lookup(address uint32) (string, bool) {
	if f.name == "" {
		return "", false
	}
	return f.name, true
}

func TestPageLogger_LogPage(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	dbPath := "/tmp/test_page_logger.db"
	defer os.Remove(dbPath)

	db, err := database.NewDB(database.Config{Path: dbPath}, log)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	repo := database.NewPageRepository(db.GetDB())
	pageLog := NewPageLogger(repo, fixedLookup{name: "Night Dispatch"}, log)

	sentAt := time.Now()
	pageLog.LogPage(PageResult{
		Message:  pocsag.Message{Address: 1234567, Function: pocsag.FuncAlpha, Text: "HI"},
		Source:   "stdin",
		Words:    52,
		PCMBytes: 143324,
		Duration: 3250 * time.Millisecond,
		SentAt:   sentAt,
	})

	pages, err := repo.GetRecent(1)
	if err != nil {
		t.Fatalf("Failed to read pages back: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("Expected 1 page record, got %d", len(pages))
	}

	page := pages[0]
	if page.Address != 1234567 {
		t.Errorf("Expected address 1234567, got %d", page.Address)
	}
	if page.Function != 3 {
		t.Errorf("Expected function 3, got %d", page.Function)
	}
	if page.Text != "HI" {
		t.Errorf("Expected text HI, got %q", page.Text)
	}
	if page.Words != 52 {
		t.Errorf("Expected 52 words, got %d", page.Words)
	}
	if page.PCMBytes != 143324 {
		t.Errorf("Expected 143324 PCM bytes, got %d", page.PCMBytes)
	}
	if page.Duration != 3.25 {
		t.Errorf("Expected duration 3.25, got %v", page.Duration)
	}
	if page.Source != "stdin" {
		t.Errorf("Expected source stdin, got %s", page.Source)
	}
}

func TestPageLogger_NilDirectory(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	dbPath := "/tmp/test_page_logger_nodir.db"
	defer os.Remove(dbPath)

	db, err := database.NewDB(database.Config{Path: dbPath}, log)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	repo := database.NewPageRepository(db.GetDB())
	pageLog := NewPageLogger(repo, nil, log)

	pageLog.LogPage(PageResult{
		Message: pocsag.Message{Address: 42, Function: pocsag.FuncTone0},
		Source:  "tcp",
		Words:   34,
		SentAt:  time.Now(),
	})

	pages, err := repo.GetRecent(1)
	if err != nil {
		t.Fatalf("Failed to read pages back: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("Expected 1 page record, got %d", len(pages))
	}
}

package transmit

import (
	"github.com/dbehnke/pocsag-nexus/pkg/database"
	"github.com/dbehnke/pocsag-nexus/pkg/logger"
)

// NameLookup resolves a pager address to a directory name
type NameLookup interface {
	Lookup(address uint32) (string, bool)
}

// PageLogger persists transmitted pages to the database
type PageLogger struct {
	repo      *database.PageRepository
	directory NameLookup // optional
	logger    *logger.Logger
}

// NewPageLogger creates a new page logger. The directory may be nil
// when no subscriber directory is configured.
func NewPageLogger(repo *database.PageRepository, dir NameLookup, log *logger.Logger) *PageLogger {
	return &PageLogger{
		repo:      repo,
		directory: dir,
		logger:    log,
	}
}

// LogPage saves a completed page transmission
func (pl *PageLogger) LogPage(result PageResult) {
	record := &database.Page{
		Address:  result.Message.Address,
		Function: int(result.Message.Function),
		Text:     result.Message.Text,
		Words:    result.Words,
		PCMBytes: result.PCMBytes,
		Duration: result.Duration.Seconds(),
		Source:   result.Source,
		SentAt:   result.SentAt,
	}

	if err := pl.repo.Create(record); err != nil {
		pl.logger.Error("Failed to save page",
			logger.Error(err),
			logger.Uint32("address", result.Message.Address))
		return
	}

	fields := []logger.Field{
		logger.Uint32("address", result.Message.Address),
		logger.Int("words", result.Words),
		logger.String("source", result.Source),
	}
	if pl.directory != nil {
		if name, ok := pl.directory.Lookup(result.Message.Address); ok {
			fields = append(fields, logger.String("subscriber", name))
		}
	}
	pl.logger.Debug("Saved page", fields...)
}

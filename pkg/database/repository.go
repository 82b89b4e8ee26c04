package database

import (
	"time"

	"gorm.io/gorm"
)

// PageRepository handles page database operations
type PageRepository struct {
	db *gorm.DB
}

// NewPageRepository creates a new page repository
func NewPageRepository(db *gorm.DB) *PageRepository {
	return &PageRepository{db: db}
}

// Create adds a new page record
func (r *PageRepository) Create(page *Page) error {
	return r.db.Create(page).Error
}

// GetRecent retrieves the most recent N pages
func (r *PageRepository) GetRecent(limit int) ([]Page, error) {
	var pages []Page
	err := r.db.Order("sent_at DESC").Limit(limit).Find(&pages).Error
	return pages, err
}

// GetRecentPaginated retrieves pages with pagination
func (r *PageRepository) GetRecentPaginated(page, perPage int) ([]Page, int64, error) {
	var pages []Page
	var total int64

	// Count total records
	if err := r.db.Model(&Page{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Get paginated results
	offset := (page - 1) * perPage
	err := r.db.Order("sent_at DESC").
		Offset(offset).
		Limit(perPage).
		Find(&pages).Error

	return pages, total, err
}

// GetByAddress retrieves pages sent to a specific pager address
func (r *PageRepository) GetByAddress(address uint32, limit int) ([]Page, error) {
	var pages []Page
	err := r.db.Where("address = ?", address).
		Order("sent_at DESC").
		Limit(limit).
		Find(&pages).Error
	return pages, err
}

// GetByTimeRange retrieves pages sent within a time range
func (r *PageRepository) GetByTimeRange(start, end time.Time, limit int) ([]Page, error) {
	var pages []Page
	err := r.db.Where("sent_at BETWEEN ? AND ?", start, end).
		Order("sent_at DESC").
		Limit(limit).
		Find(&pages).Error
	return pages, err
}

// DeleteOlderThan deletes pages older than the specified time
func (r *PageRepository) DeleteOlderThan(before time.Time) (int64, error) {
	result := r.db.Where("sent_at < ?", before).Delete(&Page{})
	return result.RowsAffected, result.Error
}

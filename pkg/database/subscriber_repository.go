package database

import (
	"gorm.io/gorm"
)

// SubscriberRepository handles subscriber database operations
type SubscriberRepository struct {
	db *gorm.DB
}

// NewSubscriberRepository creates a new subscriber repository
func NewSubscriberRepository(db *gorm.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

// Upsert creates or updates a subscriber record
func (r *SubscriberRepository) Upsert(sub *Subscriber) error {
	// Use GORM's Save which will update if exists (based on primary key) or create if not
	return r.db.Save(sub).Error
}

// UpsertBatch efficiently upserts multiple subscribers in a transaction
func (r *SubscriberRepository) UpsertBatch(subs []Subscriber, batchSize int) error {
	if len(subs) == 0 {
		return nil
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < len(subs); i += batchSize {
			end := i + batchSize
			if end > len(subs) {
				end = len(subs)
			}
			batch := subs[i:end]

			if err := tx.Save(&batch).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByAddress retrieves a subscriber by their pager address
func (r *SubscriberRepository) GetByAddress(address uint32) (*Subscriber, error) {
	var sub Subscriber
	err := r.db.Where("address = ?", address).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByName retrieves a subscriber by their directory name
func (r *SubscriberRepository) GetByName(name string) (*Subscriber, error) {
	var sub Subscriber
	err := r.db.Where("name = ?", name).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetAll retrieves all subscribers ordered by address
func (r *SubscriberRepository) GetAll() ([]Subscriber, error) {
	var subs []Subscriber
	err := r.db.Order("address ASC").Find(&subs).Error
	return subs, err
}

// Count returns the total number of subscribers in the database
func (r *SubscriberRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&Subscriber{}).Count(&count).Error
	return count, err
}

// DeleteAll removes all subscribers from the database
func (r *SubscriberRepository) DeleteAll() error {
	return r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Subscriber{}).Error
}

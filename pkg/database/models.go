package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Page represents a transmitted page record
type Page struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Address   uint32    `gorm:"index;not null" json:"address"`
	Function  int       `gorm:"not null" json:"function"`
	Text      string    `gorm:"size:1024" json:"text"`
	Words     int       `gorm:"default:0" json:"words"`     // encoded codewords including preamble
	PCMBytes  int       `gorm:"default:0" json:"pcm_bytes"` // rendered audio size
	Duration  float64   `gorm:"not null" json:"duration"`   // on-air duration in seconds
	Source    string    `gorm:"size:32" json:"source"`      // stdin, tcp, or http
	SentAt    time.Time `gorm:"index;not null" json:"sent_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Page
func (Page) TableName() string {
	return "pages"
}

// BeforeCreate hook to ensure timestamps are set
func (p *Page) BeforeCreate(tx *gorm.DB) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.SentAt.IsZero() {
		p.SentAt = time.Now()
	}
	return nil
}

// Subscriber represents a known pager address from the directory
type Subscriber struct {
	Address   uint32    `gorm:"primarykey;not null" json:"address"`
	Name      string    `gorm:"index;size:100" json:"name"`
	Notes     string    `gorm:"size:255" json:"notes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Subscriber
func (Subscriber) TableName() string {
	return "subscribers"
}

// Display returns the subscriber name, falling back to the address
func (s *Subscriber) Display() string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("pager-%d", s.Address)
}

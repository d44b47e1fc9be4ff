package model

import (
	"time"
)

// Link is one archived share link. Hash identifies the server configuration
// regardless of its name, so re-running a conversion does not duplicate rows.
type Link struct {
	ID        uint   `gorm:"primaryKey"`
	Hash      string `gorm:"uniqueIndex"`
	Kind      string `gorm:"index"`
	Name      string
	URI       string
	Source    string `gorm:"index"`
	CreatedAt time.Time

	// Connection Details (Entry Point)
	Address string
	Port    int

	Country string // ISO code when geoip tagging was enabled
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PlatformYouTube = "youtube"
	PlatformTikTok  = "tiktok"
)

// SocialConnection is the singleton per-platform OAuth credential plus the
// latest fetched stats snapshot.
type SocialConnection struct {
	Platform      string         `gorm:"size:32;primaryKey" json:"platform"`
	AccessToken   string         `gorm:"type:text;not null" json:"-"`
	RefreshToken  string         `gorm:"type:text" json:"-"`
	ExpiresAt     time.Time      `json:"expires_at"`
	DisplayName   string         `gorm:"size:255" json:"display_name"`
	Stats         datatypes.JSON `json:"stats"`
	StatsSyncedAt *time.Time     `json:"stats_synced_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

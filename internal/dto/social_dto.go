package dto

import "time"

type SocialAuthURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

type SocialConnectionResponse struct {
	Platform      string         `json:"platform"`
	Connected     bool           `json:"connected"`
	DisplayName   string         `json:"display_name,omitempty"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
	Stats         map[string]any `json:"stats,omitempty"`
	StatsSyncedAt *time.Time     `json:"stats_synced_at,omitempty"`
}

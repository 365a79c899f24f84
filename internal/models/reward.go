package models

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RewardStatusPending = "pending"
	RewardStatusShipped = "shipped"
)

// Reward is a redeemed catalog tier. The (user_id, tier_id) unique index is
// what makes a redemption at-most-once per tier per user; Title snapshots the
// tier title at redemption time so later catalog edits don't rewrite history.
type Reward struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_rewards_user_tier" json:"user_id"`
	TierID          string         `gorm:"size:64;not null;uniqueIndex:idx_rewards_user_tier" json:"tier_id"`
	Title           string         `gorm:"size:255" json:"title"`
	Status          string         `gorm:"size:20;not null;default:'pending'" json:"status"`
	TrackingCode    *string        `gorm:"size:120" json:"tracking_code,omitempty"`
	ShippingAddress datatypes.JSON `json:"shipping_address"`
	RedeemedAt      time.Time      `gorm:"not null;index" json:"redeemed_at"`
	ShippedAt       *time.Time     `json:"shipped_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (r *Reward) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ShippingAddress is captured once at redemption and never mutated.
type ShippingAddress struct {
	FullName string `json:"full_name"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
}

// Validate enforces the structural contract: required fields non-empty and a
// phone number with at least 10 digits.
func (a ShippingAddress) Validate() error {
	required := map[string]string{
		"full_name": a.FullName,
		"line1":     a.Line1,
		"city":      a.City,
		"state":     a.State,
		"zip":       a.Zip,
		"country":   a.Country,
	}
	for field, val := range required {
		if strings.TrimSpace(val) == "" {
			return errors.New("shipping address is missing " + field)
		}
	}

	digits := 0
	for _, r := range a.Phone {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits < 10 {
		return errors.New("phone number must contain at least 10 digits")
	}
	return nil
}

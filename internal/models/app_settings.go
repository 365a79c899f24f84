package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// RewardTier is a catalog entry. requiredPoints gates eligibility; redemption
// never debits points.
type RewardTier struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Reward         string  `json:"reward"`
	RequiredPoints int     `json:"required_points"`
	Price          float64 `json:"price"`
	Image          string  `json:"image"`
	Alt            string  `json:"alt"`
}

// ReferralTier is display-only gamification metadata keyed by referral count.
type ReferralTier struct {
	Title        string `json:"title"`
	MinReferrals int    `json:"min_referrals"`
	Perk         string `json:"perk"`
}

// AppSettings is the single global configuration row. Version increases on
// every update; callers load it through services.SettingsService per
// operation rather than holding it as ambient state.
type AppSettings struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Version       int            `gorm:"not null;default:1" json:"version"`
	VipTotalSpots int            `gorm:"not null;default:100" json:"vip_total_spots"`
	ReferralTiers datatypes.JSON `json:"referral_tiers"`
	RewardTiers   datatypes.JSON `json:"reward_tiers"`
	EmailHeader   string         `gorm:"type:text" json:"email_header"`
	EmailFooter   string         `gorm:"type:text" json:"email_footer"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (s *AppSettings) DecodeRewardTiers() ([]RewardTier, error) {
	if len(s.RewardTiers) == 0 {
		return nil, nil
	}
	var tiers []RewardTier
	if err := json.Unmarshal(s.RewardTiers, &tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

func (s *AppSettings) DecodeReferralTiers() ([]ReferralTier, error) {
	if len(s.ReferralTiers) == 0 {
		return nil, nil
	}
	var tiers []ReferralTier
	if err := json.Unmarshal(s.ReferralTiers, &tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

package dto

import (
	"time"

	"github.com/pawme/pawme-backend/internal/models"
)

type RedeemRequest struct {
	TierID          string                 `json:"tier_id"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
}

type MarkShippedRequest struct {
	UserID       string    `json:"user_id"`
	TierID       string    `json:"tier_id"`
	RedeemedAt   time.Time `json:"redeemed_at"`
	TrackingCode string    `json:"tracking_code"`
}

type CatalogResponse struct {
	Tiers []models.RewardTier `json:"tiers"`
}

type ReferralStatsResponse struct {
	ReferralCode  string               `json:"referral_code"`
	ReferralCount int                  `json:"referral_count"`
	Points        int                  `json:"points"`
	IsVip         bool                 `json:"is_vip"`
	CurrentTier   *models.ReferralTier `json:"current_tier,omitempty"`
	NextTier      *models.ReferralTier `json:"next_tier,omitempty"`
}

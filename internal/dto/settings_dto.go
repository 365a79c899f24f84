package dto

import "github.com/pawme/pawme-backend/internal/models"

type UpdateSettingsRequest struct {
	VipTotalSpots *int                  `json:"vip_total_spots,omitempty"`
	ReferralTiers []models.ReferralTier `json:"referral_tiers,omitempty"`
	RewardTiers   []models.RewardTier   `json:"reward_tiers,omitempty"`
	EmailHeader   *string               `json:"email_header,omitempty"`
	EmailFooter   *string               `json:"email_footer,omitempty"`
}

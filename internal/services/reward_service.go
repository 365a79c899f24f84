package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pawme/pawme-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTierNotFound       = errors.New("reward tier not found")
	ErrInsufficientPoints = errors.New("not enough points to redeem this reward")
	ErrAlreadyRedeemed    = errors.New("this reward has already been redeemed")
	ErrRewardNotFound     = errors.New("reward record not found")
	ErrAlreadyShipped     = errors.New("reward has already been shipped")
	ErrEmptyTrackingCode  = errors.New("tracking code is required")
)

// RewardService exposes the catalog read model and the redemption lifecycle.
// Redemption is a threshold-gated unlock, not a debit: points are never
// decremented.
type RewardService struct {
	db       *gorm.DB
	settings *SettingsService
	email    *EmailService
	metrics  *MetricsService
}

func NewRewardService(db *gorm.DB, settings *SettingsService, email *EmailService, metrics *MetricsService) *RewardService {
	return &RewardService{db: db, settings: settings, email: email, metrics: metrics}
}

// Catalog returns the configured tiers, or the built-in fallback list when
// the admin has not configured any. Catalogs are small; no pagination.
func (s *RewardService) Catalog() ([]models.RewardTier, error) {
	settings, err := s.settings.Get()
	if err != nil {
		return DefaultRewardTiers, nil
	}
	tiers, err := settings.DecodeRewardTiers()
	if err != nil || len(tiers) == 0 {
		return DefaultRewardTiers, nil
	}
	return tiers, nil
}

func (s *RewardService) findTier(tierID string) (*models.RewardTier, error) {
	tiers, err := s.Catalog()
	if err != nil {
		return nil, err
	}
	for i := range tiers {
		if tiers[i].ID == tierID {
			return &tiers[i], nil
		}
	}
	return nil, ErrTierNotFound
}

// Redeem validates eligibility and appends a pending Reward. The
// (user_id, tier_id) unique index plus a conditional insert make duplicate
// redemption impossible even under concurrent requests.
func (s *RewardService) Redeem(userID uuid.UUID, tierID string, addr models.ShippingAddress) (*models.Reward, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}

	tier, err := s.findTier(tierID)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if user.Points < tier.RequiredPoints {
		return nil, ErrInsufficientPoints
	}

	addrJSON, err := json.Marshal(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to encode shipping address: %w", err)
	}

	reward := models.Reward{
		ID:              uuid.New(),
		UserID:          userID,
		TierID:          tier.ID,
		Title:           tier.Title,
		Status:          models.RewardStatusPending,
		ShippingAddress: datatypes.JSON(addrJSON),
		RedeemedAt:      time.Now().UTC(),
	}

	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "tier_id"}},
		DoNothing: true,
	}).Create(&reward)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to record redemption: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyRedeemed
	}

	if err := s.metrics.Bump(MetricRedemptions); err != nil {
		slog.Error("redemption metric bump failed", "error", err)
	}

	return &reward, nil
}

// ListUserRewards returns the user's redemption history, newest first.
func (s *RewardService) ListUserRewards(userID uuid.UUID) ([]models.Reward, error) {
	var rewards []models.Reward
	if err := s.db.Where("user_id = ?", userID).
		Order("redeemed_at desc").Find(&rewards).Error; err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	return rewards, nil
}

// ListPending returns all unshipped redemptions for the admin queue.
func (s *RewardService) ListPending() ([]models.Reward, error) {
	var rewards []models.Reward
	if err := s.db.Preload("User").
		Where("status = ?", models.RewardStatusPending).
		Order("redeemed_at asc").Find(&rewards).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending rewards: %w", err)
	}
	return rewards, nil
}

// MarkShipped transitions one reward pending -> shipped, exactly once. The
// record is located by the (tier_id, redeemed_at) composite the admin UI
// displays. A shipping notification with the tracking code goes to the user.
func (s *RewardService) MarkShipped(ctx context.Context, userID uuid.UUID, tierID string, redeemedAt time.Time, trackingCode string) error {
	if trackingCode == "" {
		return ErrEmptyTrackingCode
	}

	var reward models.Reward
	err := s.db.Where("user_id = ? AND tier_id = ? AND redeemed_at = ?", userID, tierID, redeemedAt).
		First(&reward).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRewardNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to locate reward: %w", err)
	}
	if reward.Status == models.RewardStatusShipped {
		return ErrAlreadyShipped
	}

	now := time.Now().UTC()
	// Guard the transition in the WHERE clause so a concurrent double-submit
	// flips the status exactly once.
	res := s.db.Model(&models.Reward{}).
		Where("id = ? AND status = ?", reward.ID, models.RewardStatusPending).
		Updates(map[string]interface{}{
			"status":        models.RewardStatusShipped,
			"tracking_code": trackingCode,
			"shipped_at":    &now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark reward shipped: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyShipped
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err == nil {
		if err := s.email.SendTemplate(ctx, user.Email, "shipping-notice", map[string]string{
			"name":          user.Name,
			"reward_title":  reward.Title,
			"tracking_code": trackingCode,
		}); err != nil {
			slog.Error("shipping-notice email failed", "user_id", userID.String(), "error", err)
		}
	}

	return nil
}

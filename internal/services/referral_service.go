package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pawme/pawme-backend/internal/dto"
	"github.com/pawme/pawme-backend/internal/models"
	"github.com/pawme/pawme-backend/internal/referral"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// ReferralService is the referral ledger: it owns every mutation of points
// and referral_count. All increments are single-statement atomic updates;
// there is no read-modify-write anywhere on these counters.
type ReferralService struct {
	db       *gorm.DB
	settings *SettingsService
	metrics  *MetricsService
}

func NewReferralService(db *gorm.DB, settings *SettingsService, metrics *MetricsService) *ReferralService {
	return &ReferralService{db: db, settings: settings, metrics: metrics}
}

// Resolve looks up the profile owning a referral code. An unknown or empty
// code resolves to nil without error; invalid codes are never surfaced to the
// person signing up.
func (s *ReferralService) Resolve(code string) (*models.User, error) {
	if code == "" {
		return nil, nil
	}

	var referrer models.User
	err := s.db.Where("referral_code = ?", code).First(&referrer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve referral code: %w", err)
	}
	return &referrer, nil
}

// Credit applies one completed referral to the referrer: +1 referral_count
// and the referral bonus, VIP-boosted if the referrer is VIP at this moment.
// Past referrals are never repriced when someone later becomes VIP. The
// passed struct is updated in place with the new totals.
func (s *ReferralService) Credit(referrer *models.User) error {
	bonus := referral.BonusFor(referrer.IsVip)
	if err := s.db.Model(&models.User{}).
		Where("id = ?", referrer.ID).
		UpdateColumns(map[string]interface{}{
			"points":         gorm.Expr("points + ?", bonus),
			"referral_count": gorm.Expr("referral_count + 1"),
		}).Error; err != nil {
		return fmt.Errorf("failed to credit referrer: %w", err)
	}

	if err := s.metrics.Bump(MetricReferrals); err != nil {
		slog.Error("referral metric bump failed", "error", err)
	}

	referrer.Points += bonus
	referrer.ReferralCount++
	return nil
}

// AddPoints is the admin manual-adjustment primitive. Negative deltas are
// clamped so points never go below zero.
func (s *ReferralService) AddPoints(userID uuid.UUID, delta int) error {
	if delta >= 0 {
		res := s.db.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("points", gorm.Expr("points + ?", delta))
		if res.Error != nil {
			return fmt.Errorf("failed to adjust points: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	}

	res := s.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("points", gorm.Expr("CASE WHEN points + ? < 0 THEN 0 ELSE points + ? END", delta, delta))
	if res.Error != nil {
		return fmt.Errorf("failed to adjust points: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Stats builds the user-facing referral summary, including the current and
// next gamification tier from settings.
func (s *ReferralService) Stats(userID uuid.UUID) (*dto.ReferralStatsResponse, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	resp := &dto.ReferralStatsResponse{
		ReferralCode:  user.ReferralCode,
		ReferralCount: user.ReferralCount,
		Points:        user.Points,
		IsVip:         user.IsVip,
	}

	settings, err := s.settings.Get()
	if err != nil {
		return resp, nil
	}
	tiers, err := settings.DecodeReferralTiers()
	if err != nil || len(tiers) == 0 {
		return resp, nil
	}

	for i := range tiers {
		if user.ReferralCount >= tiers[i].MinReferrals {
			resp.CurrentTier = &tiers[i]
		} else if resp.NextTier == nil {
			resp.NextTier = &tiers[i]
		}
	}
	return resp, nil
}

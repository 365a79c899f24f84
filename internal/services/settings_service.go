package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pawme/pawme-backend/internal/dto"
	"github.com/pawme/pawme-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// settingsRowID pins the settings table to a single row.
const settingsRowID = 1

// SettingsService is the injected accessor for the global AppSettings row.
// Operations load settings through Get per call; nothing holds them as
// ambient state. Version increases on every update.
type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Get returns the settings row, seeding defaults on first access.
func (s *SettingsService) Get() (*models.AppSettings, error) {
	var settings models.AppSettings
	err := s.db.First(&settings, "id = ?", settingsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.seed()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &settings, nil
}

func (s *SettingsService) seed() (*models.AppSettings, error) {
	referralTiers, _ := json.Marshal(DefaultReferralTiers)
	rewardTiers, _ := json.Marshal(DefaultRewardTiers)

	settings := models.AppSettings{
		ID:            settingsRowID,
		Version:       1,
		VipTotalSpots: 100,
		ReferralTiers: datatypes.JSON(referralTiers),
		RewardTiers:   datatypes.JSON(rewardTiers),
	}
	if err := s.db.Create(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to seed settings: %w", err)
	}
	return &settings, nil
}

// Update applies the supplied fields and bumps the version.
func (s *SettingsService) Update(req *dto.UpdateSettingsRequest) (*models.AppSettings, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}

	if req.VipTotalSpots != nil {
		settings.VipTotalSpots = *req.VipTotalSpots
	}
	if req.ReferralTiers != nil {
		b, err := json.Marshal(req.ReferralTiers)
		if err != nil {
			return nil, fmt.Errorf("invalid referral tiers: %w", err)
		}
		settings.ReferralTiers = datatypes.JSON(b)
	}
	if req.RewardTiers != nil {
		b, err := json.Marshal(req.RewardTiers)
		if err != nil {
			return nil, fmt.Errorf("invalid reward tiers: %w", err)
		}
		settings.RewardTiers = datatypes.JSON(b)
	}
	if req.EmailHeader != nil {
		settings.EmailHeader = *req.EmailHeader
	}
	if req.EmailFooter != nil {
		settings.EmailFooter = *req.EmailFooter
	}

	settings.Version++
	if err := s.db.Save(settings).Error; err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return settings, nil
}

// DefaultReferralTiers is the fallback gamification ladder.
var DefaultReferralTiers = []models.ReferralTier{
	{Title: "Scout", MinReferrals: 0, Perk: "Early access updates"},
	{Title: "Pack Leader", MinReferrals: 3, Perk: "Exclusive wallpapers"},
	{Title: "Top Dog", MinReferrals: 10, Perk: "Launch-day priority"},
	{Title: "Legend", MinReferrals: 25, Perk: "Lifetime discount"},
}

// DefaultRewardTiers is served when the admin has not configured a catalog.
var DefaultRewardTiers = []models.RewardTier{
	{ID: "sticker-pack", Title: "PawMe Sticker Pack", Reward: "A sheet of PawMe stickers", RequiredPoints: 150, Price: 0, Image: "/rewards/stickers.png", Alt: "PawMe stickers"},
	{ID: "bandana", Title: "PawMe Bandana", Reward: "A bandana for your best friend", RequiredPoints: 300, Price: 0, Image: "/rewards/bandana.png", Alt: "Dog bandana"},
	{ID: "tote", Title: "PawMe Tote Bag", Reward: "Canvas tote with the PawMe logo", RequiredPoints: 500, Price: 0, Image: "/rewards/tote.png", Alt: "Tote bag"},
	{ID: "hoodie", Title: "PawMe Hoodie", Reward: "Limited-run launch hoodie", RequiredPoints: 1000, Price: 0, Image: "/rewards/hoodie.png", Alt: "Hoodie"},
}

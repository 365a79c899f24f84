package services

import (
	"testing"

	"github.com/pawme/pawme-backend/internal/dto"
	"github.com/pawme/pawme-backend/internal/models"
)

func TestSettingsSeededOnFirstAccess(t *testing.T) {
	ts := newTestStack(t)

	settings, err := ts.settings.Get()
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if settings.Version != 1 {
		t.Errorf("version = %d, want 1", settings.Version)
	}
	if settings.VipTotalSpots != 100 {
		t.Errorf("vip_total_spots = %d, want 100", settings.VipTotalSpots)
	}

	tiers, err := settings.DecodeRewardTiers()
	if err != nil {
		t.Fatalf("DecodeRewardTiers error: %v", err)
	}
	if len(tiers) != len(DefaultRewardTiers) {
		t.Errorf("seeded reward tiers = %d, want %d", len(tiers), len(DefaultRewardTiers))
	}

	// A second Get must return the same row, not seed again.
	again, err := ts.settings.Get()
	if err != nil {
		t.Fatalf("second Get error: %v", err)
	}
	if again.ID != settings.ID || again.Version != 1 {
		t.Errorf("second Get = %+v", again)
	}

	var count int64
	ts.db.Model(&models.AppSettings{}).Count(&count)
	if count != 1 {
		t.Errorf("settings rows = %d, want 1", count)
	}
}

func TestSettingsUpdateBumpsVersion(t *testing.T) {
	ts := newTestStack(t)

	spots := 50
	updated, err := ts.settings.Update(&dto.UpdateSettingsRequest{VipTotalSpots: &spots})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Version != 2 {
		t.Errorf("version = %d, want 2", updated.Version)
	}
	if updated.VipTotalSpots != 50 {
		t.Errorf("vip_total_spots = %d, want 50", updated.VipTotalSpots)
	}

	header := "<h>brand</h>"
	updated, err = ts.settings.Update(&dto.UpdateSettingsRequest{EmailHeader: &header})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Version != 3 {
		t.Errorf("version = %d, want 3", updated.Version)
	}
	// Fields not in the request are preserved.
	if updated.VipTotalSpots != 50 {
		t.Errorf("vip_total_spots reset to %d", updated.VipTotalSpots)
	}
	if updated.EmailHeader != header {
		t.Errorf("email_header = %q", updated.EmailHeader)
	}
}

func TestSettingsUpdateCatalog(t *testing.T) {
	ts := newTestStack(t)

	custom := []models.RewardTier{{ID: "leash", Title: "PawMe Leash", RequiredPoints: 250}}
	if _, err := ts.settings.Update(&dto.UpdateSettingsRequest{RewardTiers: custom}); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	tiers, err := ts.rewards.Catalog()
	if err != nil {
		t.Fatalf("Catalog error: %v", err)
	}
	if len(tiers) != 1 || tiers[0].ID != "leash" {
		t.Errorf("catalog = %+v, want configured leash tier", tiers)
	}
}

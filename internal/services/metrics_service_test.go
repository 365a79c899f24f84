package services

import (
	"testing"

	"github.com/pawme/pawme-backend/internal/models"
)

func TestBumpCreatesRowOnce(t *testing.T) {
	ts := newTestStack(t)

	if err := ts.metrics.Bump(MetricSignups); err != nil {
		t.Fatalf("Bump error: %v", err)
	}
	if err := ts.metrics.Bump(MetricSignups); err != nil {
		t.Fatalf("Bump error: %v", err)
	}
	if err := ts.metrics.Bump(MetricReferrals); err != nil {
		t.Fatalf("Bump error: %v", err)
	}

	var rows []models.DailyMetric
	if err := ts.db.Find(&rows).Error; err != nil {
		t.Fatalf("find error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("metric rows = %d, want 1 per day", len(rows))
	}
	if rows[0].Date != Today() {
		t.Errorf("date = %q, want %q", rows[0].Date, Today())
	}
	if rows[0].Signups != 2 || rows[0].Referrals != 1 {
		t.Errorf("signups/referrals = %d/%d, want 2/1", rows[0].Signups, rows[0].Referrals)
	}
}

func TestBumpByDelta(t *testing.T) {
	ts := newTestStack(t)

	if err := ts.metrics.BumpBy(MetricEmailsSent, 7); err != nil {
		t.Fatalf("BumpBy error: %v", err)
	}
	if err := ts.metrics.BumpBy(MetricEmailsSent, 0); err != nil {
		t.Fatalf("BumpBy(0) error: %v", err)
	}

	rows, err := ts.metrics.Range(Today(), Today())
	if err != nil {
		t.Fatalf("Range error: %v", err)
	}
	if len(rows) != 1 || rows[0].EmailsSent != 7 {
		t.Errorf("rows = %+v, want one row with emails_sent=7", rows)
	}
}

func TestBumpRejectsUnknownColumn(t *testing.T) {
	ts := newTestStack(t)

	if err := ts.metrics.Bump("points; DROP TABLE users"); err == nil {
		t.Error("Bump accepted an unknown column")
	}
}

func TestRangeFiltersDates(t *testing.T) {
	ts := newTestStack(t)

	ts.db.Create(&models.DailyMetric{Date: "2026-08-01", Signups: 3})
	ts.db.Create(&models.DailyMetric{Date: "2026-08-02", Signups: 4})
	ts.db.Create(&models.DailyMetric{Date: "2026-08-05", Signups: 5})

	rows, err := ts.metrics.Range("2026-08-01", "2026-08-02")
	if err != nil {
		t.Fatalf("Range error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Date != "2026-08-01" || rows[1].Date != "2026-08-02" {
		t.Errorf("rows out of order: %+v", rows)
	}
}

func TestSignupAndRedemptionBumpMetrics(t *testing.T) {
	ts := newTestStack(t)

	user := ts.register(t, "metric@pawme.app", "Metric", "")
	ts.referral.AddPoints(user.ID, 400)
	if _, err := ts.rewards.Redeem(user.ID, "sticker-pack", testAddress()); err != nil {
		t.Fatalf("Redeem error: %v", err)
	}

	rows, err := ts.metrics.Range(Today(), Today())
	if err != nil {
		t.Fatalf("Range error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Signups != 1 {
		t.Errorf("signups = %d, want 1", rows[0].Signups)
	}
	if rows[0].Redemptions != 1 {
		t.Errorf("redemptions = %d, want 1", rows[0].Redemptions)
	}
}

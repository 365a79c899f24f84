package services

import (
	"context"
	"testing"

	"github.com/pawme/pawme-backend/internal/dto"
)

func TestSpotsRemaining(t *testing.T) {
	ts := newTestStack(t)

	remaining, total, err := ts.vip.SpotsRemaining()
	if err != nil {
		t.Fatalf("SpotsRemaining error: %v", err)
	}
	if total != 100 || remaining != 100 {
		t.Errorf("remaining/total = %d/%d, want 100/100", remaining, total)
	}

	user := ts.register(t, "spot@pawme.app", "Spot", "")
	ts.db.Model(user).Update("is_vip", true)

	remaining, _, err = ts.vip.SpotsRemaining()
	if err != nil {
		t.Fatalf("SpotsRemaining error: %v", err)
	}
	if remaining != 99 {
		t.Errorf("remaining = %d, want 99", remaining)
	}
}

func TestSpotsRemainingNeverNegative(t *testing.T) {
	ts := newTestStack(t)

	one := 1
	if _, err := ts.settings.Update(&dto.UpdateSettingsRequest{VipTotalSpots: &one}); err != nil {
		t.Fatalf("settings update error: %v", err)
	}
	for _, email := range []string{"v1@pawme.app", "v2@pawme.app"} {
		user := ts.register(t, email, "V", "")
		ts.db.Model(user).Update("is_vip", true)
	}

	remaining, _, err := ts.vip.SpotsRemaining()
	if err != nil {
		t.Fatalf("SpotsRemaining error: %v", err)
	}
	if remaining != 0 {
		t.Errorf("remaining = %d, want 0 (clamped)", remaining)
	}
}

func TestJoinVipIdempotent(t *testing.T) {
	ts := newTestStack(t)
	ctx := context.Background()
	user := ts.register(t, "join@pawme.app", "Join", "")

	if err := ts.vip.JoinVip(ctx, user.ID); err != nil {
		t.Fatalf("JoinVip error: %v", err)
	}
	fresh := ts.reload(t, user)
	if !fresh.IsVip {
		t.Fatal("is_vip not set")
	}
	if fresh.VipPaidAt == nil {
		t.Error("vip_paid_at not set")
	}
	paidAt := *fresh.VipPaidAt

	// Webhook re-delivery is a no-op.
	if err := ts.vip.JoinVip(ctx, user.ID); err != nil {
		t.Fatalf("second JoinVip error: %v", err)
	}
	fresh = ts.reload(t, user)
	if fresh.VipPaidAt == nil || !fresh.VipPaidAt.Equal(paidAt) {
		t.Errorf("vip_paid_at changed on replay: %v -> %v", paidAt, fresh.VipPaidAt)
	}
}

func TestJoinVipBoostsFutureReferralsOnly(t *testing.T) {
	ts := newTestStack(t)
	ctx := context.Background()
	referrer := ts.register(t, "before@pawme.app", "Before", "")

	// One referral before VIP: plain bonus.
	ts.register(t, "f1@pawme.app", "F1", referrer.ReferralCode)
	fresh := ts.reload(t, referrer)
	if fresh.Points != 200 {
		t.Fatalf("pre-VIP points = %d, want 200", fresh.Points)
	}

	if err := ts.vip.JoinVip(ctx, referrer.ID); err != nil {
		t.Fatalf("JoinVip error: %v", err)
	}

	// One referral after: boosted, and the earlier one is not repriced.
	ts.register(t, "f2@pawme.app", "F2", referrer.ReferralCode)
	fresh = ts.reload(t, referrer)
	if fresh.Points != 350 {
		t.Errorf("post-VIP points = %d, want 350 (200 + 150 boosted)", fresh.Points)
	}
}

func TestConfirmDepositValidation(t *testing.T) {
	ts := newTestStack(t)
	ctx := context.Background()
	user := ts.register(t, "dep@pawme.app", "Dep", "")

	// Wrong amount is rejected before any state change.
	if err := ts.vip.ConfirmDeposit(ctx, user.ID.String(), 500); err == nil {
		t.Error("ConfirmDeposit accepted an unexpected amount")
	}
	if fresh := ts.reload(t, user); fresh.IsVip {
		t.Error("rejected deposit still set is_vip")
	}

	if err := ts.vip.ConfirmDeposit(ctx, "not-a-uuid", 100); err == nil {
		t.Error("ConfirmDeposit accepted malformed metadata")
	}

	if err := ts.vip.ConfirmDeposit(ctx, user.ID.String(), 100); err != nil {
		t.Fatalf("ConfirmDeposit error: %v", err)
	}
	if fresh := ts.reload(t, user); !fresh.IsVip {
		t.Error("confirmed deposit did not set is_vip")
	}
}

package services

import (
	"testing"

	"github.com/google/uuid"
)

func TestResolveEmptyCode(t *testing.T) {
	ts := newTestStack(t)

	referrer, err := ts.referral.Resolve("")
	if err != nil {
		t.Fatalf("Resolve(\"\") error: %v", err)
	}
	if referrer != nil {
		t.Error("Resolve(\"\") returned a referrer")
	}
}

func TestResolveUnknownCodeIsNotAnError(t *testing.T) {
	ts := newTestStack(t)

	referrer, err := ts.referral.Resolve("NOSUCHCD")
	if err != nil {
		t.Fatalf("Resolve(unknown) error: %v", err)
	}
	if referrer != nil {
		t.Error("Resolve(unknown) returned a referrer")
	}
}

func TestResolveFindsOwner(t *testing.T) {
	ts := newTestStack(t)
	owner := ts.register(t, "owner@pawme.app", "Owner", "")

	referrer, err := ts.referral.Resolve(owner.ReferralCode)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if referrer == nil || referrer.ID != owner.ID {
		t.Errorf("Resolve(%s) = %v, want owner", owner.ReferralCode, referrer)
	}
}

func TestCreditAppliesBonusAndCount(t *testing.T) {
	ts := newTestStack(t)
	referrer := ts.register(t, "ref@pawme.app", "Ref", "")
	before := referrer.Points

	if err := ts.referral.Credit(referrer); err != nil {
		t.Fatalf("Credit error: %v", err)
	}

	// Struct updated in place.
	if referrer.Points != before+100 {
		t.Errorf("in-place points = %d, want %d", referrer.Points, before+100)
	}
	if referrer.ReferralCount != 1 {
		t.Errorf("in-place referral_count = %d, want 1", referrer.ReferralCount)
	}

	fresh := ts.reload(t, referrer)
	if fresh.Points != before+100 || fresh.ReferralCount != 1 {
		t.Errorf("stored points/count = %d/%d, want %d/1", fresh.Points, fresh.ReferralCount, before+100)
	}
}

func TestCreditVipBoost(t *testing.T) {
	ts := newTestStack(t)
	referrer := ts.register(t, "vip@pawme.app", "Vip", "")
	ts.db.Model(referrer).Update("is_vip", true)
	referrer = ts.reload(t, referrer)
	before := referrer.Points

	if err := ts.referral.Credit(referrer); err != nil {
		t.Fatalf("Credit error: %v", err)
	}

	fresh := ts.reload(t, referrer)
	if fresh.Points != before+150 {
		t.Errorf("VIP referral credited %d points, want 150", fresh.Points-before)
	}
}

func TestAddPointsPositive(t *testing.T) {
	ts := newTestStack(t)
	user := ts.register(t, "adj@pawme.app", "Adj", "")
	before := user.Points

	if err := ts.referral.AddPoints(user.ID, 40); err != nil {
		t.Fatalf("AddPoints error: %v", err)
	}
	if fresh := ts.reload(t, user); fresh.Points != before+40 {
		t.Errorf("points = %d, want %d", fresh.Points, before+40)
	}
}

func TestAddPointsClampsAtZero(t *testing.T) {
	ts := newTestStack(t)
	user := ts.register(t, "clamp@pawme.app", "Clamp", "")

	if err := ts.referral.AddPoints(user.ID, -(user.Points + 500)); err != nil {
		t.Fatalf("AddPoints error: %v", err)
	}
	if fresh := ts.reload(t, user); fresh.Points != 0 {
		t.Errorf("points = %d, want 0 after over-deduction", fresh.Points)
	}
}

func TestAddPointsUnknownUser(t *testing.T) {
	ts := newTestStack(t)

	if err := ts.referral.AddPoints(uuid.New(), 10); err != ErrUserNotFound {
		t.Errorf("AddPoints(unknown) = %v, want ErrUserNotFound", err)
	}
}

func TestStatsTiers(t *testing.T) {
	ts := newTestStack(t)
	user := ts.register(t, "stats@pawme.app", "Stats", "")
	ts.db.Model(user).Update("referral_count", 5)

	stats, err := ts.referral.Stats(user.ID)
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats.ReferralCode != user.ReferralCode {
		t.Errorf("stats code = %q, want %q", stats.ReferralCode, user.ReferralCode)
	}
	if stats.CurrentTier == nil || stats.CurrentTier.Title != "Pack Leader" {
		t.Errorf("current tier = %+v, want Pack Leader at 5 referrals", stats.CurrentTier)
	}
	if stats.NextTier == nil || stats.NextTier.Title != "Top Dog" {
		t.Errorf("next tier = %+v, want Top Dog", stats.NextTier)
	}
}

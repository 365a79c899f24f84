// Package referral holds the point-accounting rules of the referral ledger.
// Everything here is pure arithmetic and validation; persistence lives in
// internal/services.
package referral

import (
	"crypto/rand"
	"fmt"
	"math"
	"strings"
)

const (
	// SignupBonus is credited to every new profile, referred or not.
	SignupBonus = 100

	// ReferralBonus is credited to the referrer per completed referral.
	// The legacy product used 50 in one flow and 100 in another; 100 is the
	// single canonical value here.
	ReferralBonus = 100

	// VipMultiplier boosts referral bonuses earned while the referrer is VIP.
	VipMultiplier = 1.5
)

// BonusFor returns the points credited to a referrer for one completed
// referral. The multiplier applies only to referrals completed while the
// referrer is already VIP; past referrals are never repriced.
func BonusFor(referrerIsVip bool) int {
	if referrerIsVip {
		return int(math.Round(ReferralBonus * VipMultiplier))
	}
	return ReferralBonus
}

// codeAlphabet omits easily confused characters (0/O, 1/I/L).
const codeAlphabet = "ABCDEFGHJKMNPQRSTVWXYZ23456789"

const codeLength = 8

// NewCode generates a referral code. Uniqueness is enforced by the DB index;
// callers retry on collision.
func NewCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate referral code: %w", err)
	}
	var sb strings.Builder
	for _, b := range buf {
		sb.WriteByte(codeAlphabet[int(b)%len(codeAlphabet)])
	}
	return sb.String(), nil
}

// disposableDomains is the signup denylist. Matches are rejected before any
// profile is written.
var disposableDomains = map[string]struct{}{
	"mailinator.com":    {},
	"guerrillamail.com": {},
	"10minutemail.com":  {},
	"tempmail.com":      {},
	"temp-mail.org":     {},
	"throwawaymail.com": {},
	"yopmail.com":       {},
	"sharklasers.com":   {},
	"getnada.com":       {},
	"trashmail.com":     {},
	"maildrop.cc":       {},
	"dispostable.com":   {},
	"fakeinbox.com":     {},
	"mintemail.com":     {},
	"mailnesia.com":     {},
}

// IsDisposableEmail reports whether the address belongs to a known
// throwaway-email provider.
func IsDisposableEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	_, found := disposableDomains[domain]
	return found
}

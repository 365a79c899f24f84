package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Role           string     `json:"role"`
	ReferralCode   string     `json:"referral_code"`
	ReferredBy     *string    `json:"referred_by,omitempty"`
	Points         int        `json:"points"`
	ReferralCount  int        `json:"referral_count"`
	IsVip          bool       `json:"is_vip"`
	VipPaidAt      *time.Time `json:"vip_paid_at,omitempty"`
	MarketingOptIn bool       `json:"marketing_opt_in"`
	Theme          string     `json:"theme"`
}

type UpdateProfileRequest struct {
	Name           *string `json:"name,omitempty"`
	Theme          *string `json:"theme,omitempty"`
	MarketingOptIn *bool   `json:"marketing_opt_in,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type VerifyEmailRequest struct {
	Code string `json:"code"`
}

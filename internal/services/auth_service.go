package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pawme/pawme-backend/internal/config"
	"github.com/pawme/pawme-backend/internal/dto"
	"github.com/pawme/pawme-backend/internal/models"
	"github.com/pawme/pawme-backend/internal/referral"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrDisposableEmail    = errors.New("disposable email addresses are not allowed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrInvalidCode        = errors.New("invalid or expired verification code")
)

type AuthService struct {
	db        *gorm.DB
	cfg       *config.Config
	cache     Cache
	referrals *ReferralService
	email     *EmailService
	metrics   *MetricsService
}

func NewAuthService(db *gorm.DB, cfg *config.Config, cache Cache, referrals *ReferralService, email *EmailService, metrics *MetricsService) *AuthService {
	return &AuthService{
		db:        db,
		cfg:       cfg,
		cache:     cache,
		referrals: referrals,
		email:     email,
		metrics:   metrics,
	}
}

// Register completes a signup: validates the email against the disposable
// denylist, creates the profile with the signup bonus, attributes the
// referral (if any), and fires the welcome and referral-success emails.
// Validation failures happen before any write.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.Name) == "" {
		return nil, errors.New("email and name are required")
	}
	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	if referral.IsDisposableEmail(email) {
		return nil, ErrDisposableEmail
	}

	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := s.uniqueReferralCode()
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:             uuid.New(),
		Email:          email,
		Name:           strings.TrimSpace(req.Name),
		Password:       string(hash),
		Role:           models.RoleUser,
		ReferralCode:   code,
		Points:         referral.SignupBonus,
		MarketingOptIn: true,
	}

	// referred_by is resolved once, at signup, and never mutated afterward.
	referrer, err := s.referrals.Resolve(strings.TrimSpace(req.ReferralCode))
	if err != nil {
		return nil, err
	}
	if referrer != nil {
		user.ReferredBy = &referrer.ReferralCode
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Credit only after the referred profile exists.
	if referrer != nil {
		if err := s.referrals.Credit(referrer); err != nil {
			return nil, err
		}
	}

	if err := s.metrics.Bump(MetricSignups); err != nil {
		slog.Error("signup metric bump failed", "error", err)
	}

	// Notification emails are outside the transactional boundary.
	if err := s.email.SendTemplate(ctx, user.Email, "welcome", map[string]string{
		"name":          user.Name,
		"referral_code": user.ReferralCode,
	}); err != nil {
		slog.Error("welcome email failed", "user_id", user.ID.String(), "error", err)
	}
	if referrer != nil {
		if err := s.email.SendTemplate(ctx, referrer.Email, "referral-success", map[string]string{
			"name":           referrer.Name,
			"referral_count": fmt.Sprintf("%d", referrer.ReferralCount),
			"points":         fmt.Sprintf("%d", referrer.Points),
		}); err != nil {
			slog.Error("referral-success email failed", "user_id", referrer.ID.String(), "error", err)
		}
	}

	if err := s.SendVerificationCode(ctx, &user); err != nil {
		slog.Error("verification email failed", "user_id", user.ID.String(), "error", err)
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) uniqueReferralCode() (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := referral.NewCode()
		if err != nil {
			return "", err
		}
		var count int64
		if err := s.db.Model(&models.User{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check referral code: %w", err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errors.New("failed to allocate a unique referral code")
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Refresh(req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ? AND revoked = ?", tokenHash, false).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if time.Now().After(stored.ExpiresAt) {
		s.db.Model(&stored).Update("revoked", true)
		return nil, ErrInvalidToken
	}

	// Rotation: a refresh token is single-use.
	s.db.Model(&stored).Update("revoked", true)

	var user models.User
	if err := s.db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Logout(req *dto.LogoutRequest) error {
	tokenHash := hashToken(req.RefreshToken)
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}

func (s *AuthService) GetUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// UpdateProfile mutates the user-controlled fields only. Ledger fields
// (points, referral_count, is_vip, referred_by) are not reachable here.
func (s *AuthService) UpdateProfile(userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Theme != nil {
		updates["theme"] = *req.Theme
	}
	if req.MarketingOptIn != nil {
		updates["marketing_opt_in"] = *req.MarketingOptIn
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// --- email verification ---

func (s *AuthService) SendVerificationCode(ctx context.Context, user *models.User) error {
	code, err := numericCode(6)
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, "verify:"+user.Email, code, 5*time.Minute); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	return s.email.SendTemplate(ctx, user.Email, "verification", map[string]string{
		"name": user.Name,
		"code": code,
	})
}

func (s *AuthService) VerifyEmail(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}

	var stored string
	if err := s.cache.Get(ctx, "verify:"+user.Email, &stored); err != nil {
		return ErrInvalidCode
	}
	if stored != code {
		return ErrInvalidCode
	}

	_ = s.cache.Delete(ctx, "verify:"+user.Email)
	now := time.Now()
	return s.db.Model(user).Update("email_verified_at", &now).Error
}

// --- password reset ---

// RequestPasswordReset is intentionally silent about unknown emails.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := base64.URLEncoding.EncodeToString(raw)

	if err := s.cache.Set(ctx, "pwreset:"+hashToken(token), user.ID.String(), 30*time.Minute); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	return s.email.SendTemplate(ctx, user.Email, "password-reset", map[string]string{
		"name":  user.Name,
		"token": token,
	})
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	key := "pwreset:" + hashToken(token)
	var userIDStr string
	if err := s.cache.Get(ctx, key, &userIDStr); err != nil {
		return ErrInvalidResetToken
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("password", string(hash)).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	_ = s.cache.Delete(ctx, key)

	// Revoke all sessions after a reset.
	return s.db.Model(&models.RefreshToken{}).
		Where("user_id = ?", userID).
		Update("revoked", true).Error
}

// --- tokens ---

func (s *AuthService) generateTokenPair(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         ToUserResponse(user),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}

func numericCode(digits int) (string, error) {
	buf := make([]byte, digits)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	out := make([]byte, digits)
	for i, b := range buf {
		out[i] = '0' + b%10
	}
	return string(out), nil
}

// ToUserResponse maps a profile to its public shape.
func ToUserResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		Role:           user.Role,
		ReferralCode:   user.ReferralCode,
		ReferredBy:     user.ReferredBy,
		Points:         user.Points,
		ReferralCount:  user.ReferralCount,
		IsVip:          user.IsVip,
		VipPaidAt:      user.VipPaidAt,
		MarketingOptIn: user.MarketingOptIn,
		Theme:          user.Theme,
	}
}

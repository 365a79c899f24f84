package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pawme/pawme-backend/internal/config"
	"github.com/pawme/pawme-backend/internal/models"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"gorm.io/gorm"
)

var ErrNoVipSpots = errors.New("no VIP spots remaining")

// VipService owns the NotVip -> Vip state machine. The only transition is
// forward, triggered by a processor-confirmed $1 deposit; is_vip is never
// reset.
type VipService struct {
	db       *gorm.DB
	cfg      *config.Config
	settings *SettingsService
	email    *EmailService
}

func NewVipService(db *gorm.DB, cfg *config.Config, settings *SettingsService, email *EmailService) *VipService {
	stripe.Key = cfg.StripeSecretKey
	return &VipService{db: db, cfg: cfg, settings: settings, email: email}
}

// SpotsRemaining computes configured spots minus current VIP count.
func (s *VipService) SpotsRemaining() (remaining, total int, err error) {
	settings, err := s.settings.Get()
	if err != nil {
		return 0, 0, err
	}

	var vipCount int64
	if err := s.db.Model(&models.User{}).Where("is_vip = ?", true).Count(&vipCount).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count VIPs: %w", err)
	}

	remaining = settings.VipTotalSpots - int(vipCount)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, settings.VipTotalSpots, nil
}

// CreateDepositIntent creates the fixed-amount PaymentIntent for the VIP
// deposit and returns its client secret for client-side confirmation.
func (s *VipService) CreateDepositIntent(userID uuid.UUID) (string, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return "", err
	}
	if user.IsVip {
		return "", errors.New("already a VIP member")
	}

	remaining, _, err := s.SpotsRemaining()
	if err != nil {
		return "", err
	}
	if remaining <= 0 {
		return "", ErrNoVipSpots
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(s.cfg.VipDepositCents),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("user_id", userID.String())
	params.AddMetadata("purpose", "vip_deposit")

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create payment intent: %w", err)
	}
	return pi.ClientSecret, nil
}

// JoinVip flips is_vip after a confirmed deposit. Idempotent: an already-VIP
// profile is a no-op, so webhook re-delivery double-applies nothing.
func (s *VipService) JoinVip(ctx context.Context, userID uuid.UUID) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if user.IsVip {
		return nil
	}

	now := time.Now().UTC()
	res := s.db.Model(&models.User{}).
		Where("id = ? AND is_vip = ?", userID, false).
		Updates(map[string]interface{}{
			"is_vip":      true,
			"vip_paid_at": &now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to set VIP: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost the race to another confirmation; already VIP.
		return nil
	}

	if err := s.email.SendTemplate(ctx, user.Email, "vip-receipt", map[string]string{
		"name": user.Name,
	}); err != nil {
		slog.Error("vip-receipt email failed", "user_id", userID.String(), "error", err)
	}
	return nil
}

// ConfirmDeposit handles a processor-confirmed success signal. The amount is
// checked against the fixed deposit before anything is applied.
func (s *VipService) ConfirmDeposit(ctx context.Context, userIDStr string, amountCents int64) error {
	if amountCents != s.cfg.VipDepositCents {
		return fmt.Errorf("unexpected deposit amount %d, want %d", amountCents, s.cfg.VipDepositCents)
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return fmt.Errorf("invalid user_id in payment metadata: %w", err)
	}
	return s.JoinVip(ctx, userID)
}

func (s *VipService) GetUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

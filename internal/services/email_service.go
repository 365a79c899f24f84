package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pawme/pawme-backend/internal/mail"
	"github.com/pawme/pawme-backend/internal/models"
	"github.com/pawme/pawme-backend/internal/templating"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTemplateNotFound  = errors.New("email template not found")
	ErrProtectedTemplate = errors.New("default templates cannot be deleted")
)

// Default template ids shipped with the product. They may be edited but
// never deleted.
var DefaultTemplateIDs = map[string]struct{}{
	"welcome":          {},
	"verification":     {},
	"password-reset":   {},
	"referral-success": {},
	"shipping-notice":  {},
	"vip-receipt":      {},
	"header":           {},
	"footer":           {},
}

// Transactional template ids are exempt from the marketing opt-in filter.
var transactionalTemplateIDs = map[string]struct{}{
	"verification":     {},
	"password-reset":   {},
	"shipping-notice":  {},
	"vip-receipt":      {},
}

// unbrandedTemplateIDs bypass the global header/footer wrapper (raw OTP-style
// sends).
var unbrandedTemplateIDs = map[string]struct{}{
	"verification":   {},
	"password-reset": {},
}

// EmailService renders templates and hands them to the Mailer. Every send is
// best-effort and independent: a failure is logged and reported, never
// allowed to abort sibling sends.
type EmailService struct {
	db       *gorm.DB
	mailer   mail.Mailer
	settings *SettingsService
	metrics  *MetricsService
}

func NewEmailService(db *gorm.DB, mailer mail.Mailer, settings *SettingsService, metrics *MetricsService) *EmailService {
	return &EmailService{db: db, mailer: mailer, settings: settings, metrics: metrics}
}

// --- template CRUD (admin) ---

func (s *EmailService) ListTemplates() ([]models.EmailTemplate, error) {
	var templates []models.EmailTemplate
	if err := s.db.Order("id asc").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

func (s *EmailService) GetTemplate(id string) (*models.EmailTemplate, error) {
	var tmpl models.EmailTemplate
	err := s.db.First(&tmpl, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return &tmpl, nil
}

func (s *EmailService) UpsertTemplate(id, name, subject, html string, variables []string) (*models.EmailTemplate, error) {
	if id == "" || subject == "" || html == "" {
		return nil, errors.New("template id, subject and html are required")
	}

	varsJSON, err := json.Marshal(variables)
	if err != nil {
		return nil, fmt.Errorf("invalid variables list: %w", err)
	}

	tmpl := models.EmailTemplate{
		ID:        id,
		Name:      name,
		Subject:   subject,
		HTML:      html,
		Variables: datatypes.JSON(varsJSON),
	}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&tmpl).Error; err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}
	return &tmpl, nil
}

func (s *EmailService) DeleteTemplate(id string) error {
	if _, protected := DefaultTemplateIDs[id]; protected {
		return ErrProtectedTemplate
	}
	res := s.db.Delete(&models.EmailTemplate{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete template: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// --- rendering ---

// RenderTemplate produces the final subject and HTML for a stored template.
// Branded sends are wrapped in the global header/footer from settings.
func (s *EmailService) RenderTemplate(id string, vars map[string]string) (subject, html string, err error) {
	tmpl, err := s.GetTemplate(id)
	if err != nil {
		return "", "", err
	}

	subject = templating.Render(tmpl.Subject, vars)
	body := templating.Render(tmpl.HTML, vars)

	if _, unbranded := unbrandedTemplateIDs[id]; unbranded {
		return subject, body, nil
	}

	settings, err := s.settings.Get()
	if err != nil {
		// Branding is cosmetic; send the bare body rather than fail.
		slog.Error("failed to load branding settings", "error", err)
		return subject, body, nil
	}
	return subject, templating.Wrap(settings.EmailHeader, body, settings.EmailFooter), nil
}

// --- delivery ---

// SendTemplate renders a stored template and delivers it to one recipient.
func (s *EmailService) SendTemplate(ctx context.Context, to, templateID string, vars map[string]string) error {
	subject, html, err := s.RenderTemplate(templateID, vars)
	if err != nil {
		return err
	}
	return s.send(ctx, to, subject, html)
}

// SendRaw delivers an ad hoc subject and HTML after variable substitution.
func (s *EmailService) SendRaw(ctx context.Context, to, subject, html string, vars map[string]string) error {
	return s.send(ctx, to, templating.Render(subject, vars), templating.Render(html, vars))
}

func (s *EmailService) send(ctx context.Context, to, subject, html string) error {
	if err := s.mailer.Send(ctx, to, subject, html); err != nil {
		switch {
		case errors.Is(err, mail.ErrMissingAPIKey):
			slog.Error("email not sent: provider API key missing", "to", to)
		case errors.Is(err, mail.ErrDomainNotVerified):
			slog.Error("email not sent: sender domain not verified", "to", to)
		default:
			slog.Error("email delivery failed", "to", to, "error", err)
		}
		return err
	}
	if err := s.metrics.Bump(MetricEmailsSent); err != nil {
		slog.Error("email metric bump failed", "error", err)
	}
	return nil
}

// Broadcast renders and sends to every eligible profile. Promotional
// broadcasts (and promotional stored templates) exclude recipients without
// marketing opt-in; transactional template ids are always exempt. Each send
// is independent; failures are counted, not fatal.
func (s *EmailService) Broadcast(ctx context.Context, templateID, subject, html string, vars map[string]string, promotional bool) (sent, failed int, err error) {
	if templateID != "" {
		if _, err := s.GetTemplate(templateID); err != nil {
			return 0, 0, err
		}
		if _, transactional := transactionalTemplateIDs[templateID]; transactional {
			promotional = false
		}
	}

	query := s.db.Model(&models.User{})
	if promotional {
		query = query.Where("marketing_opt_in = ?", true)
	}

	var recipients []models.User
	if err := query.Find(&recipients).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to load recipients: %w", err)
	}

	for _, user := range recipients {
		perUser := map[string]string{
			"name":          user.Name,
			"email":         user.Email,
			"referral_code": user.ReferralCode,
		}
		for k, v := range vars {
			perUser[k] = v
		}

		var sendErr error
		if templateID != "" {
			sendErr = s.SendTemplate(ctx, user.Email, templateID, perUser)
		} else {
			sendErr = s.SendRaw(ctx, user.Email, subject, html, perUser)
		}
		if sendErr != nil {
			failed++
			continue
		}
		sent++
	}
	return sent, failed, nil
}

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pawme/pawme-backend/internal/dto"
	"github.com/pawme/pawme-backend/internal/services"
)

// AdminHandler serves the dashboard: broadcasts, template CRUD, shipment
// marking, catalog/settings edits, metrics, and manual point adjustments.
type AdminHandler struct {
	emailService    *services.EmailService
	rewardService   *services.RewardService
	referralService *services.ReferralService
	settingsService *services.SettingsService
	metricsService  *services.MetricsService
	uploadService   *services.UploadService
}

func NewAdminHandler(
	emailService *services.EmailService,
	rewardService *services.RewardService,
	referralService *services.ReferralService,
	settingsService *services.SettingsService,
	metricsService *services.MetricsService,
	uploadService *services.UploadService,
) *AdminHandler {
	return &AdminHandler{
		emailService:    emailService,
		rewardService:   rewardService,
		referralService: referralService,
		settingsService: settingsService,
		metricsService:  metricsService,
		uploadService:   uploadService,
	}
}

// --- broadcast ---

func (h *AdminHandler) Broadcast(c *fiber.Ctx) error {
	var req dto.BroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.TemplateID == "" && (req.Subject == "" || req.HTML == "") {
		return badRequest(c, "Either template_id or subject+html is required")
	}

	sent, failed, err := h.emailService.Broadcast(c.Context(), req.TemplateID, req.Subject, req.HTML, req.Variables, req.Promotional)
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			return notFound(c, err.Error())
		}
		return internalError(c)
	}

	return c.JSON(dto.BroadcastResponse{Success: true, Sent: sent, Failed: failed})
}

// --- templates ---

func (h *AdminHandler) ListTemplates(c *fiber.Ctx) error {
	templates, err := h.emailService.ListTemplates()
	if err != nil {
		return internalError(c)
	}
	return c.JSON(fiber.Map{"templates": templates})
}

func (h *AdminHandler) GetTemplate(c *fiber.Ctx) error {
	tmpl, err := h.emailService.GetTemplate(c.Params("id"))
	if err != nil {
		return notFound(c, "Email template not found")
	}
	return c.JSON(tmpl)
}

func (h *AdminHandler) UpsertTemplate(c *fiber.Ctx) error {
	var req dto.UpsertTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	tmpl, err := h.emailService.UpsertTemplate(c.Params("id"), req.Name, req.Subject, req.HTML, req.Variables)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(tmpl)
}

func (h *AdminHandler) DeleteTemplate(c *fiber.Ctx) error {
	err := h.emailService.DeleteTemplate(c.Params("id"))
	switch {
	case err == nil:
		return c.JSON(dto.Result{Success: true})
	case errors.Is(err, services.ErrProtectedTemplate):
		return badRequest(c, err.Error())
	case errors.Is(err, services.ErrTemplateNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c)
	}
}

func (h *AdminHandler) PreviewTemplate(c *fiber.Ctx) error {
	var req dto.PreviewTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	subject, html, err := h.emailService.RenderTemplate(req.TemplateID, req.Variables)
	if err != nil {
		return notFound(c, "Email template not found")
	}
	return c.JSON(dto.PreviewTemplateResponse{Subject: subject, HTML: html})
}

// --- shipments ---

func (h *AdminHandler) PendingRewards(c *fiber.Ctx) error {
	rewards, err := h.rewardService.ListPending()
	if err != nil {
		return internalError(c)
	}
	return c.JSON(fiber.Map{"rewards": rewards})
}

func (h *AdminHandler) MarkShipped(c *fiber.Ctx) error {
	var req dto.MarkShippedRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return badRequest(c, "Invalid user_id")
	}

	err = h.rewardService.MarkShipped(c.Context(), userID, req.TierID, req.RedeemedAt, req.TrackingCode)
	switch {
	case err == nil:
		return c.JSON(dto.Result{Success: true, Message: "Reward marked as shipped"})
	case errors.Is(err, services.ErrEmptyTrackingCode),
		errors.Is(err, services.ErrAlreadyShipped):
		return badRequest(c, err.Error())
	case errors.Is(err, services.ErrRewardNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c)
	}
}

// --- points adjustment ---

func (h *AdminHandler) AdjustPoints(c *fiber.Ctx) error {
	var req struct {
		UserID string `json:"user_id"`
		Delta  int    `json:"delta"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return badRequest(c, "Invalid user_id")
	}

	if err := h.referralService.AddPoints(userID, req.Delta); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return notFound(c, err.Error())
		}
		return internalError(c)
	}
	return c.JSON(dto.Result{Success: true})
}

// --- settings ---

func (h *AdminHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.settingsService.Get()
	if err != nil {
		return internalError(c)
	}
	return c.JSON(settings)
}

func (h *AdminHandler) UpdateSettings(c *fiber.Ctx) error {
	var req dto.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	settings, err := h.settingsService.Update(&req)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(settings)
}

// --- tier image upload ---

func (h *AdminHandler) UploadTierImage(c *fiber.Ctx) error {
	if h.uploadService == nil {
		return badRequest(c, "Image uploads are not configured")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "Image file is required")
	}
	if fileHeader.Size > 10*1024*1024 {
		return badRequest(c, "Image size must be less than 10MB")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return internalError(c)
	}
	defer file.Close()

	url, err := h.uploadService.UploadImage(c.Context(), file, "reward-tiers")
	if err != nil {
		return internalError(c)
	}
	return c.JSON(fiber.Map{"url": url})
}

// --- metrics ---

func (h *AdminHandler) Metrics(c *fiber.Ctx) error {
	from := c.Query("from")
	to := c.Query("to", services.Today())
	if from == "" {
		return badRequest(c, "from query parameter is required (YYYY-MM-DD)")
	}

	rows, err := h.metricsService.Range(from, to)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(fiber.Map{"metrics": rows})
}

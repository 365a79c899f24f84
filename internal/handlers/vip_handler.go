package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/pawme/pawme-backend/internal/config"
	"github.com/pawme/pawme-backend/internal/dto"
	"github.com/pawme/pawme-backend/internal/middleware"
	"github.com/pawme/pawme-backend/internal/services"
)

type VipHandler struct {
	vipService *services.VipService
	cfg        *config.Config
}

func NewVipHandler(vipService *services.VipService, cfg *config.Config) *VipHandler {
	return &VipHandler{vipService: vipService, cfg: cfg}
}

// Status reports the caller's VIP flag and the remaining spot count.
func (h *VipHandler) Status(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	user, err := h.vipService.GetUser(userID)
	if err != nil {
		return notFound(c, "User not found")
	}

	remaining, total, err := h.vipService.SpotsRemaining()
	if err != nil {
		return internalError(c)
	}

	return c.JSON(dto.VipStatusResponse{
		IsVip:          user.IsVip,
		SpotsRemaining: remaining,
		TotalSpots:     total,
		AmountCents:    h.cfg.VipDepositCents,
	})
}

// CreateDepositIntent starts the deposit flow and hands back the client
// secret the frontend confirms against.
func (h *VipHandler) CreateDepositIntent(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	clientSecret, err := h.vipService.CreateDepositIntent(userID)
	if err != nil {
		if errors.Is(err, services.ErrNoVipSpots) {
			return conflict(c, err.Error())
		}
		if errors.Is(err, services.ErrUserNotFound) {
			return notFound(c, err.Error())
		}
		return badRequest(c, err.Error())
	}

	remaining, _, err := h.vipService.SpotsRemaining()
	if err != nil {
		return internalError(c)
	}

	return c.JSON(dto.DepositIntentResponse{
		ClientSecret:   clientSecret,
		AmountCents:    h.cfg.VipDepositCents,
		SpotsRemaining: remaining,
	})
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pawme/pawme-backend/internal/middleware"
	"github.com/pawme/pawme-backend/internal/services"
)

type ReferralHandler struct {
	referralService *services.ReferralService
}

func NewReferralHandler(referralService *services.ReferralService) *ReferralHandler {
	return &ReferralHandler{referralService: referralService}
}

// Stats handles GET /referrals/stats - the signed-in user's referral summary.
func (h *ReferralHandler) Stats(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	stats, err := h.referralService.Stats(userID)
	if err != nil {
		return notFound(c, "User not found")
	}
	return c.JSON(stats)
}

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/pawme/pawme-backend/internal/dto"
	"github.com/pawme/pawme-backend/internal/middleware"
	"github.com/pawme/pawme-backend/internal/services"
)

type RewardHandler struct {
	rewardService *services.RewardService
}

func NewRewardHandler(rewardService *services.RewardService) *RewardHandler {
	return &RewardHandler{rewardService: rewardService}
}

// Catalog handles GET /rewards/catalog - public read model of tiers.
func (h *RewardHandler) Catalog(c *fiber.Ctx) error {
	tiers, err := h.rewardService.Catalog()
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.CatalogResponse{Tiers: tiers})
}

// Redeem handles POST /rewards/redeem.
func (h *RewardHandler) Redeem(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.RedeemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	reward, err := h.rewardService.Redeem(userID, req.TierID, req.ShippingAddress)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTierNotFound):
			return notFound(c, err.Error())
		case errors.Is(err, services.ErrInsufficientPoints),
			errors.Is(err, services.ErrAlreadyRedeemed):
			return badRequest(c, err.Error())
		default:
			return badRequest(c, err.Error())
		}
	}

	return c.Status(fiber.StatusCreated).JSON(reward)
}

// MyRewards handles GET /rewards - the user's redemption history.
func (h *RewardHandler) MyRewards(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	rewards, err := h.rewardService.ListUserRewards(userID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(fiber.Map{"rewards": rewards})
}

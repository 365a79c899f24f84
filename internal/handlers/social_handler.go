package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/pawme/pawme-backend/internal/dto"
	"github.com/pawme/pawme-backend/internal/models"
	"github.com/pawme/pawme-backend/internal/services"
)

type SocialHandler struct {
	socialService *services.SocialService
}

func NewSocialHandler(socialService *services.SocialService) *SocialHandler {
	return &SocialHandler{socialService: socialService}
}

// AuthURL returns the provider consent URL for the requested platform.
func (h *SocialHandler) AuthURL(c *fiber.Ctx) error {
	platform := c.Params("platform")

	url, state, err := h.socialService.AuthURL(c.Context(), platform)
	if err != nil {
		if errors.Is(err, services.ErrUnknownPlatform) {
			return badRequest(c, err.Error())
		}
		return internalError(c)
	}
	return c.JSON(dto.SocialAuthURLResponse{URL: url, State: state})
}

// Callback completes the OAuth exchange: validates state, swaps the code
// for tokens, and stores the connection with an initial stats fetch.
func (h *SocialHandler) Callback(c *fiber.Ctx) error {
	platform := c.Params("platform")
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return badRequest(c, "code and state query parameters are required")
	}

	conn, err := h.socialService.HandleCallback(c.Context(), platform, code, state)
	switch {
	case err == nil:
		return c.JSON(toConnectionResponse(conn))
	case errors.Is(err, services.ErrUnknownPlatform), errors.Is(err, services.ErrInvalidState):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// Connections lists the connection state of every supported platform,
// connected or not, so the dashboard can render both cards.
func (h *SocialHandler) Connections(c *fiber.Ctx) error {
	out := make([]dto.SocialConnectionResponse, 0, 2)
	for _, platform := range []string{models.PlatformYouTube, models.PlatformTikTok} {
		conn, err := h.socialService.Get(platform)
		if err != nil {
			if errors.Is(err, services.ErrNotConnected) {
				out = append(out, dto.SocialConnectionResponse{Platform: platform})
				continue
			}
			return internalError(c)
		}
		out = append(out, toConnectionResponse(conn))
	}
	return c.JSON(fiber.Map{"connections": out})
}

// RefreshStats re-fetches platform stats, refreshing the token first if it
// is near expiry.
func (h *SocialHandler) RefreshStats(c *fiber.Ctx) error {
	platform := c.Params("platform")

	conn, err := h.socialService.RefreshStats(c.Context(), platform)
	switch {
	case err == nil:
		return c.JSON(toConnectionResponse(conn))
	case errors.Is(err, services.ErrUnknownPlatform):
		return badRequest(c, err.Error())
	case errors.Is(err, services.ErrNotConnected):
		return notFound(c, err.Error())
	default:
		return internalError(c)
	}
}

func (h *SocialHandler) Disconnect(c *fiber.Ctx) error {
	platform := c.Params("platform")

	err := h.socialService.Disconnect(platform)
	switch {
	case err == nil:
		return c.JSON(dto.Result{Success: true})
	case errors.Is(err, services.ErrUnknownPlatform):
		return badRequest(c, err.Error())
	case errors.Is(err, services.ErrNotConnected):
		return notFound(c, err.Error())
	default:
		return internalError(c)
	}
}

func toConnectionResponse(conn *models.SocialConnection) dto.SocialConnectionResponse {
	resp := dto.SocialConnectionResponse{
		Platform:      conn.Platform,
		Connected:     true,
		DisplayName:   conn.DisplayName,
		StatsSyncedAt: conn.StatsSyncedAt,
	}
	if !conn.ExpiresAt.IsZero() {
		t := conn.ExpiresAt
		resp.ExpiresAt = &t
	}
	if len(conn.Stats) > 0 {
		var stats map[string]any
		if err := json.Unmarshal(conn.Stats, &stats); err == nil {
			resp.Stats = stats
		}
	}
	return resp
}

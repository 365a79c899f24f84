package handlers

import (
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/pawme/pawme-backend/internal/config"
	"github.com/pawme/pawme-backend/internal/services"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// WebhookHandler receives Stripe events. Signature verification happens
// before any payload field is trusted; a bad signature is a 400 so Stripe
// retries are not suppressed for transient clock issues.
type WebhookHandler struct {
	vipService *services.VipService
	cfg        *config.Config
}

func NewWebhookHandler(vipService *services.VipService, cfg *config.Config) *WebhookHandler {
	return &WebhookHandler{vipService: vipService, cfg: cfg}
}

func (h *WebhookHandler) Stripe(c *fiber.Ctx) error {
	event, err := webhook.ConstructEvent(c.Body(), c.Get("Stripe-Signature"), h.cfg.StripeWebhookSecret)
	if err != nil {
		slog.Warn("stripe webhook signature verification failed", "error", err)
		return badRequest(c, "Invalid signature")
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			slog.Error("stripe webhook payload unmarshal failed", "event", string(event.Type), "error", err)
			return badRequest(c, "Malformed event payload")
		}
		if pi.Metadata["purpose"] != "vip_deposit" {
			break
		}
		if err := h.vipService.ConfirmDeposit(c.Context(), pi.Metadata["user_id"], pi.Amount); err != nil {
			slog.Error("vip deposit confirmation failed",
				"payment_intent", pi.ID,
				"user_id", pi.Metadata["user_id"],
				"error", err)
			// 200 anyway: retrying the same event cannot fix a bad
			// amount or missing metadata.
		} else {
			slog.Info("vip deposit confirmed", "payment_intent", pi.ID, "user_id", pi.Metadata["user_id"])
		}

	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			slog.Error("stripe webhook payload unmarshal failed", "event", string(event.Type), "error", err)
			return badRequest(c, "Malformed event payload")
		}
		if session.Metadata["purpose"] != "vip_deposit" {
			break
		}
		if err := h.vipService.ConfirmDeposit(c.Context(), session.Metadata["user_id"], session.AmountTotal); err != nil {
			slog.Error("vip deposit confirmation failed",
				"checkout_session", session.ID,
				"user_id", session.Metadata["user_id"],
				"error", err)
		}

	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return badRequest(c, "Malformed event payload")
		}
		slog.Warn("vip deposit payment failed",
			"payment_intent", pi.ID,
			"user_id", pi.Metadata["user_id"])

	default:
		slog.Debug("unhandled stripe event", "type", string(event.Type))
	}

	return c.JSON(fiber.Map{"received": true})
}

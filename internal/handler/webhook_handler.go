package handler

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	svix "github.com/svix/svix-webhooks/go"
	"go.uber.org/zap"

	"github.com/stayloop/service-booking/internal/application"
	"github.com/stayloop/service-booking/pkg/response"
)

// identityEvent is the envelope the identity provider posts to the webhook.
type identityEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// identityUserPayload mirrors the provider's user object shape.
type identityUserPayload struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	ImageURL       string `json:"image_url"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

// WebhookHandler receives identity provider webhooks and keeps local user
// records in sync.
type WebhookHandler struct {
	service *application.UserService
	wh      *svix.Webhook
	logger  *zap.Logger
}

// NewWebhookHandler creates a WebhookHandler verifying signatures with the
// given signing secret.
func NewWebhookHandler(service *application.UserService, signingSecret string, logger *zap.Logger) (*WebhookHandler, error) {
	wh, err := svix.NewWebhook(signingSecret)
	if err != nil {
		return nil, err
	}
	return &WebhookHandler{service: service, wh: wh, logger: logger}, nil
}

// RegisterRoutes registers the webhook route. No auth middleware; the svix
// signature is the authentication.
func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/api/v1/webhooks/identity", h.HandleIdentityEvent)
}

// HandleIdentityEvent handles POST /api/v1/webhooks/identity.
func (h *WebhookHandler) HandleIdentityEvent(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "failed to read request body")
		return
	}

	if err := h.wh.Verify(payload, c.Request.Header); err != nil {
		h.logger.Warn("rejected webhook with bad signature", zap.Error(err))
		c.AbortWithStatus(401)
		return
	}

	var event identityEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		response.BadRequest(c, "malformed event payload")
		return
	}

	var user identityUserPayload
	if err := json.Unmarshal(event.Data, &user); err != nil {
		response.BadRequest(c, "malformed user payload")
		return
	}
	if user.ID == "" {
		response.BadRequest(c, "event is missing a user ID")
		return
	}

	switch event.Type {
	case "user.created", "user.updated":
		email := ""
		if len(user.EmailAddresses) > 0 {
			email = user.EmailAddresses[0].EmailAddress
		}
		name := strings.TrimSpace(user.FirstName + " " + user.LastName)

		if _, err := h.service.SyncFromIdentityProvider(c.Request.Context(), application.IdentityProfile{
			ExternalID: user.ID,
			Name:       name,
			Email:      email,
			Avatar:     user.ImageURL,
		}); err != nil {
			h.logger.Error("failed to sync user from webhook",
				zap.String("event_type", event.Type),
				zap.String("external_id", user.ID),
				zap.Error(err),
			)
			response.Error(c, err)
			return
		}

	case "user.deleted":
		if err := h.service.RemoveByExternalID(c.Request.Context(), user.ID); err != nil {
			h.logger.Error("failed to remove user from webhook",
				zap.String("external_id", user.ID),
				zap.Error(err),
			)
			response.Error(c, err)
			return
		}

	default:
		// Unhandled event types are acknowledged so the provider stops
		// retrying them.
		h.logger.Debug("ignoring webhook event", zap.String("event_type", event.Type))
	}

	response.Success(c, gin.H{"received": true})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stayloop/service-booking/internal/application"
	"github.com/stayloop/service-booking/pkg/auth"
	"github.com/stayloop/service-booking/pkg/middleware"
	"github.com/stayloop/service-booking/pkg/response"
)

// EnsureUserRequest is the body for first-login provisioning.
type EnsureUserRequest struct {
	ExternalID string `json:"external_id" binding:"required"`
	Name       string `json:"name"`
	Email      string `json:"email" binding:"required,email"`
	Avatar     string `json:"avatar"`
}

// UserHandler handles HTTP requests for user profiles and token purchases.
type UserHandler struct {
	service *application.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *application.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes registers all user routes on the given router group.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	v1 := r.Group("/api/v1")
	{
		// Called by the auth gateway right after a first successful login,
		// before the user has a local record.
		v1.POST("/users/ensure", h.EnsureUser)

		v1.GET("/me", authMW, h.GetMe)
		v1.POST("/tokens/purchase", authMW, h.PurchaseTokens)
	}
}

// EnsureUser handles POST /api/v1/users/ensure.
func (h *UserHandler) EnsureUser(c *gin.Context) {
	var req EnsureUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.EnsureUser(c.Request.Context(), application.IdentityProfile{
		ExternalID: req.ExternalID,
		Name:       req.Name,
		Email:      req.Email,
		Avatar:     req.Avatar,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetMe handles GET /api/v1/me.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetMe(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// PurchaseTokens handles POST /api/v1/tokens/purchase.
func (h *UserHandler) PurchaseTokens(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.PurchaseTokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.PurchaseTokens(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stayloop/service-booking/internal/application"
	"github.com/stayloop/service-booking/pkg/auth"
	"github.com/stayloop/service-booking/pkg/middleware"
	"github.com/stayloop/service-booking/pkg/response"
)

// AvailabilityHandler handles HTTP requests for availability periods.
type AvailabilityHandler struct {
	service *application.AvailabilityService
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(service *application.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// RegisterRoutes registers all availability routes on the given router group.
// Listing a calendar is public; managing it requires the host.
func (h *AvailabilityHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	listings := r.Group("/api/v1/listings/:id/availability")
	{
		listings.GET("", h.ListPeriods)
		listings.POST("", authMW, h.AddPeriod)
	}

	periods := r.Group("/api/v1/availability")
	periods.Use(authMW)
	{
		periods.DELETE("/:id", h.RemovePeriod)
	}
}

// ListPeriods handles GET /api/v1/listings/:id/availability.
func (h *AvailabilityHandler) ListPeriods(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid listing ID")
		return
	}

	result, err := h.service.ListPeriods(c.Request.Context(), listingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AddPeriod handles POST /api/v1/listings/:id/availability (host only).
func (h *AvailabilityHandler) AddPeriod(c *gin.Context) {
	hostID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid listing ID")
		return
	}

	var req application.AddPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AddPeriod(c.Request.Context(), hostID, listingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// RemovePeriod handles DELETE /api/v1/availability/:id (host only).
func (h *AvailabilityHandler) RemovePeriod(c *gin.Context) {
	hostID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid period ID")
		return
	}

	if err := h.service.RemovePeriod(c.Request.Context(), hostID, periodID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

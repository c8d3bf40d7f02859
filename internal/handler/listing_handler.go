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

// ListingHandler handles HTTP requests for the listing directory.
type ListingHandler struct {
	service *application.ListingService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(service *application.ListingService) *ListingHandler {
	return &ListingHandler{service: service}
}

// RegisterRoutes registers all listing routes on the given router group.
// Browsing the directory is public; mutations require authentication.
func (h *ListingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	listings := r.Group("/api/v1/listings")
	{
		listings.GET("", h.ListListings)
		listings.GET("/:id", h.GetListing)
		listings.POST("", authMW, h.CreateListing)
		listings.PUT("/:id", authMW, h.UpdateListing)
	}

	host := r.Group("/api/v1/host")
	host.Use(authMW)
	{
		host.GET("/listings", h.ListHostListings)
	}
}

// ListListings handles GET /api/v1/listings.
func (h *ListingHandler) ListListings(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListListings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetListing handles GET /api/v1/listings/:id.
func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid listing ID")
		return
	}

	result, err := h.service.GetListing(c.Request.Context(), listingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateListing handles POST /api/v1/listings.
func (h *ListingHandler) CreateListing(c *gin.Context) {
	hostID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateListing(c.Request.Context(), hostID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateListing handles PUT /api/v1/listings/:id (host only).
func (h *ListingHandler) UpdateListing(c *gin.Context) {
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

	var req application.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateListing(c.Request.Context(), hostID, listingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListHostListings handles GET /api/v1/host/listings.
func (h *ListingHandler) ListHostListings(c *gin.Context) {
	hostID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetHostListings(c.Request.Context(), hostID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

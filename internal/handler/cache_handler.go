package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/amble-mobility/offline-engine/internal/application"
	tileDomain "github.com/amble-mobility/offline-engine/internal/domain/tile"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxTileBytes bounds a single tile upload.
const maxTileBytes = 4 << 20

// CacheHandler handles HTTP requests for the offline route/place/tile cache.
type CacheHandler struct {
	service *application.CacheService
}

// NewCacheHandler creates a new CacheHandler.
func NewCacheHandler(service *application.CacheService) *CacheHandler {
	return &CacheHandler{service: service}
}

// RegisterRoutes registers all cache routes on the given router group.
func (h *CacheHandler) RegisterRoutes(r *gin.RouterGroup) {
	routes := r.Group("/api/v1/routes")
	{
		routes.POST("", h.SaveRoute)
		routes.GET("", h.ListRoutes)
		routes.GET("/:id", h.GetRoute)
		routes.DELETE("/:id", h.DeleteRoute)
	}

	places := r.Group("/api/v1/places")
	{
		places.POST("", h.SavePlace)
		places.GET("", h.ListPlaces)
		places.GET("/:id", h.GetPlace)
		places.DELETE("/:id", h.DeletePlace)
	}

	tiles := r.Group("/api/v1/tiles")
	{
		tiles.PUT("/*key", h.SaveTile)
		tiles.GET("/*key", h.GetTile)
		tiles.DELETE("/*key", h.DeleteTile)
	}

	r.GET("/api/v1/storage", h.StorageUsage)
}

// SaveRoute handles POST /api/v1/routes.
func (h *CacheHandler) SaveRoute(c *gin.Context) {
	var req application.SaveRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := h.service.SaveRoute(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, result)
}

// ListRoutes handles GET /api/v1/routes.
func (h *CacheHandler) ListRoutes(c *gin.Context) {
	result, err := h.service.ListRoutes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// GetRoute handles GET /api/v1/routes/:id.
func (h *CacheHandler) GetRoute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid route ID")
		return
	}

	result, err := h.service.GetRoute(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// DeleteRoute handles DELETE /api/v1/routes/:id.
func (h *CacheHandler) DeleteRoute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid route ID")
		return
	}

	if err := h.service.DeleteRoute(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SavePlace handles POST /api/v1/places.
func (h *CacheHandler) SavePlace(c *gin.Context) {
	var req application.SavePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := h.service.SavePlace(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, result)
}

// ListPlaces handles GET /api/v1/places.
func (h *CacheHandler) ListPlaces(c *gin.Context) {
	result, err := h.service.ListPlaces(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// GetPlace handles GET /api/v1/places/:id.
func (h *CacheHandler) GetPlace(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid place ID")
		return
	}

	result, err := h.service.GetPlace(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// DeletePlace handles DELETE /api/v1/places/:id.
func (h *CacheHandler) DeletePlace(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid place ID")
		return
	}

	if err := h.service.DeletePlace(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SaveTile handles PUT /api/v1/tiles/*key with an opaque binary body.
// Payloads over maxTileBytes are rejected outright rather than truncated.
func (h *CacheHandler) SaveTile(c *gin.Context) {
	key, err := tileDomain.ParseKey(strings.TrimPrefix(c.Param("key"), "/"))
	if err != nil {
		respondError(c, err)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxTileBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "tile payload too large"})
			return
		}
		respondBadRequest(c, "failed to read tile payload")
		return
	}

	if err := h.service.SaveTile(c.Request.Context(), key, payload); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetTile handles GET /api/v1/tiles/*key.
func (h *CacheHandler) GetTile(c *gin.Context) {
	key, err := tileDomain.ParseKey(strings.TrimPrefix(c.Param("key"), "/"))
	if err != nil {
		respondError(c, err)
		return
	}

	payload, err := h.service.GetTile(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", payload)
}

// DeleteTile handles DELETE /api/v1/tiles/*key.
func (h *CacheHandler) DeleteTile(c *gin.Context) {
	key, err := tileDomain.ParseKey(strings.TrimPrefix(c.Param("key"), "/"))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.service.DeleteTile(c.Request.Context(), key); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StorageUsage handles GET /api/v1/storage.
func (h *CacheHandler) StorageUsage(c *gin.Context) {
	respondOK(c, h.service.StorageUsage(c.Request.Context()))
}

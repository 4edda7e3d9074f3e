package handler

import (
	"strconv"

	"github.com/amble-mobility/offline-engine/internal/application"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHandler handles HTTP requests for pending tracking sessions.
type SessionHandler struct {
	service *application.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(service *application.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// RegisterRoutes registers all session routes on the given router group.
func (h *SessionHandler) RegisterRoutes(r *gin.RouterGroup) {
	sessions := r.Group("/api/v1/sessions")
	{
		sessions.POST("", h.RecordSession)
		sessions.GET("", h.ListSessions)
		sessions.GET("/:id", h.GetSession)
	}
}

// RecordSession handles POST /api/v1/sessions.
func (h *SessionHandler) RecordSession(c *gin.Context) {
	var req application.RecordSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := h.service.RecordSession(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, result)
}

// ListSessions handles GET /api/v1/sessions with an optional ?synced= filter.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	var synced *bool
	if raw := c.Query("synced"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondBadRequest(c, "invalid synced filter")
			return
		}
		synced = &v
	}

	result, err := h.service.ListSessions(c.Request.Context(), synced)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// GetSession handles GET /api/v1/sessions/:id.
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid session ID")
		return
	}

	result, err := h.service.GetSession(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

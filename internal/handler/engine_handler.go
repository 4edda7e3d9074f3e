package handler

import (
	"net/http"

	"github.com/amble-mobility/offline-engine/internal/application"
	"github.com/amble-mobility/offline-engine/internal/connectivity"
	"github.com/gin-gonic/gin"
)

// ConnectivityRequest carries the host OS connectivity signal.
type ConnectivityRequest struct {
	Online *bool `json:"online" binding:"required"`
}

// EngineHandler exposes the engine's control surface: manual sync trigger,
// on-demand retention sweep, connectivity signal injection and health.
type EngineHandler struct {
	sync      *application.SyncService
	retention *application.RetentionService
	monitor   *connectivity.Monitor
}

// NewEngineHandler creates a new EngineHandler.
func NewEngineHandler(
	sync *application.SyncService,
	retention *application.RetentionService,
	monitor *connectivity.Monitor,
) *EngineHandler {
	return &EngineHandler{sync: sync, retention: retention, monitor: monitor}
}

// RegisterRoutes registers the control routes on the given router group.
func (h *EngineHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/api/v1/sync", h.TriggerSync)
	r.POST("/api/v1/retention/sweep", h.TriggerRetention)
	r.POST("/api/v1/connectivity", h.SetConnectivity)
	r.GET("/api/v1/connectivity", h.GetConnectivity)
	r.GET("/healthz", h.Health)
}

// TriggerSync handles POST /api/v1/sync. Responds 409 when a sweep is
// already in flight.
func (h *EngineHandler) TriggerSync(c *gin.Context) {
	report, err := h.sync.Sweep(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, report)
}

// TriggerRetention handles POST /api/v1/retention/sweep. Partial failures
// are reported in the body, not as an HTTP error: the surviving collections
// were still swept.
func (h *EngineHandler) TriggerRetention(c *gin.Context) {
	report, _ := h.retention.Sweep(c.Request.Context())
	respondOK(c, report)
}

// SetConnectivity handles POST /api/v1/connectivity, feeding the host OS
// signal into the monitor.
func (h *EngineHandler) SetConnectivity(c *gin.Context) {
	var req ConnectivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	h.monitor.Set(*req.Online)
	respondOK(c, gin.H{"online": h.monitor.Online()})
}

// GetConnectivity handles GET /api/v1/connectivity.
func (h *EngineHandler) GetConnectivity(c *gin.Context) {
	respondOK(c, gin.H{"online": h.monitor.Online()})
}

// Health handles GET /healthz.
func (h *EngineHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

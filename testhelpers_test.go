package main_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/amble-mobility/offline-engine/internal/application"
	"github.com/amble-mobility/offline-engine/internal/connectivity"
	"github.com/amble-mobility/offline-engine/internal/handler"
	"github.com/amble-mobility/offline-engine/internal/remote"
	"github.com/amble-mobility/offline-engine/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// rewardsBackend is a scriptable stand-in for the remote sync endpoint. It
// acknowledges every session except the IDs listed in stalled, which hang
// past the client timeout.
type rewardsBackend struct {
	mu       sync.Mutex
	stalled  map[uuid.UUID]bool
	received []uuid.UUID
	server   *httptest.Server
}

func newRewardsBackend(t *testing.T) *rewardsBackend {
	t.Helper()
	b := &rewardsBackend{stalled: make(map[uuid.UUID]bool)}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			ID uuid.UUID `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		b.mu.Lock()
		stall := b.stalled[payload.ID]
		if !stall {
			b.received = append(b.received, payload.ID)
		}
		b.mu.Unlock()

		if stall {
			time.Sleep(500 * time.Millisecond)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(b.server.Close)
	return b
}

// Stall makes submissions for id hang past the sync timeout until released.
func (b *rewardsBackend) Stall(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stalled[id] = true
}

// Release restores normal acknowledgment for id.
func (b *rewardsBackend) Release(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.stalled, id)
}

// Received returns the IDs the backend has acknowledged, in order.
func (b *rewardsBackend) Received() []uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]uuid.UUID, len(b.received))
	copy(out, b.received)
	return out
}

// engineStack is the fully wired engine under test.
type engineStack struct {
	Router  *gin.Engine
	Monitor *connectivity.Monitor
}

// setupEngine wires the complete engine over a throwaway sqlite file, with
// sessions synced against the given backend.
func setupEngine(t *testing.T, backend *rewardsBackend) *engineStack {
	t.Helper()

	store := repository.NewStore(filepath.Join(t.TempDir(), "engine.db"))
	db, err := store.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	log := zap.NewNop()
	routeRepo := repository.NewGormRouteRepository(db)
	placeRepo := repository.NewGormPlaceRepository(db)
	sessionRepo := repository.NewGormSessionRepository(db)
	tileRepo := repository.NewGormTileRepository(db)

	cacheService := application.NewCacheService(routeRepo, placeRepo, tileRepo, store, log)
	sessionService := application.NewSessionService(sessionRepo, log)
	syncService := application.NewSyncService(sessionRepo,
		remote.NewClient(backend.server.URL), 150*time.Millisecond, log)
	retentionService := application.NewRetentionService(routeRepo, placeRepo, tileRepo, sessionRepo,
		30*24*time.Hour, 0, log)

	monitor := connectivity.NewMonitor(false, log)
	monitor.OnOnline(syncService.SweepOnConnectivity)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.NewCacheHandler(cacheService).RegisterRoutes(&router.RouterGroup)
	handler.NewSessionHandler(sessionService).RegisterRoutes(&router.RouterGroup)
	handler.NewEngineHandler(syncService, retentionService, monitor).RegisterRoutes(&router.RouterGroup)

	return &engineStack{Router: router, Monitor: monitor}
}

// do issues one request against the engine's router.
func (s *engineStack) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

// recordSession records one finished session with the given client ID.
func (s *engineStack) recordSession(t *testing.T, id uuid.UUID, distance float64) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/sessions", gin.H{
		"id":            id,
		"started_at":    time.Now().Add(-time.Hour).Format(time.RFC3339),
		"ended_at":      time.Now().Format(time.RFC3339),
		"distance_m":    distance,
		"reward_points": int64(distance / 10),
		"path": []gin.H{
			{"lat": 3.139, "lng": 101.6869},
			{"lat": 3.141, "lng": 101.689},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

// sessionSynced fetches one session and reports its synced flag.
func (s *engineStack) sessionSynced(t *testing.T, id uuid.UUID) bool {
	t.Helper()
	w := s.do(t, http.MethodGet, "/api/v1/sessions/"+id.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Synced bool `json:"synced"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.Synced
}

package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sessionDomain "github.com/amble-mobility/offline-engine/internal/domain/session"
	"github.com/amble-mobility/offline-engine/internal/domain/shared"
	"github.com/amble-mobility/offline-engine/internal/remote"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(t *testing.T) *sessionDomain.PendingSession {
	t.Helper()
	s, err := sessionDomain.NewPendingSession(
		uuid.New(),
		time.Now().Add(-time.Hour),
		time.Now(),
		500,
		25,
		[]shared.Coordinate{{Latitude: 3.139, Longitude: 101.6869}, {Latitude: 3.14, Longitude: 101.687}},
	)
	require.NoError(t, err)
	return s
}

func TestSubmitSession_AcknowledgedOn2xx(t *testing.T) {
	sess := testSession(t)

	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := remote.NewClient(srv.URL)
	require.NoError(t, client.SubmitSession(context.Background(), sess))

	assert.Equal(t, sess.ID().String(), received["id"])
	assert.Equal(t, float64(500), received["distance_m"])
}

func TestSubmitSession_Non2xxIsDeliveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := remote.NewClient(srv.URL)
	err := client.SubmitSession(context.Background(), testSession(t))

	var delivery *shared.SyncDeliveryError
	require.ErrorAs(t, err, &delivery)
	assert.Equal(t, http.StatusInternalServerError, delivery.StatusCode)
}

func TestSubmitSession_TransportErrorIsDeliveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := remote.NewClient(srv.URL)
	err := client.SubmitSession(context.Background(), testSession(t))

	var delivery *shared.SyncDeliveryError
	require.ErrorAs(t, err, &delivery)
	assert.Zero(t, delivery.StatusCode)
}

func TestSubmitSession_TimeoutIsDeliveryFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() { close(release); srv.Close() }()

	client := remote.NewClient(srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.SubmitSession(ctx, testSession(t))

	var delivery *shared.SyncDeliveryError
	require.ErrorAs(t, err, &delivery)
}

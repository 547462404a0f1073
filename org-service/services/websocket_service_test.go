package services

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduadmin-backend/shared/database/models/notification"
)

func TestChangeHub_BroadcastsDirectoryChanges(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewChangeHub(nil, nil)
	go hub.Run(ctx)

	router := gin.New()
	router.GET("/ws/organizations", hub.HandleWebSocketConnection)
	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/organizations"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var welcome notification.WebSocketMessage
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, "connection", welcome.Type)
	assert.Equal(t, 1, hub.Clients())

	id := oid(7)
	hub.Publish(notification.NewDirectoryChange(notification.ActionDeleted, id))

	var change notification.WebSocketMessage
	require.NoError(t, conn.ReadJSON(&change))
	assert.Equal(t, "directory_changed", change.Type)
	assert.Equal(t, notification.ActionDeleted, change.Action)
	require.NotNil(t, change.EntityID)
	assert.Equal(t, id, *change.EntityID)
}

func TestChangeHub_RejectsForeignOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewChangeHub([]string{"http://admin.example"}, nil)

	router := gin.New()
	router.GET("/ws/organizations", hub.HandleWebSocketConnection)
	srv := httptest.NewServer(router)
	defer srv.Close()

	header := map[string][]string{"Origin": {"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/organizations", header)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestChangeHub_LeaveDoesNotBlockAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewChangeHub(nil, nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 3*cap(hub.unregister); i++ {
			hub.leave(&ClientConnection{ID: fmt.Sprintf("late-%d", i)})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("unregistering after shutdown blocked")
	}
}

package handlers

import (
	"net/http"

	"eduadmin-backend/org-service/services"

	"github.com/gin-gonic/gin"
)

// WebSocketHandler exposes the directory change stream
type WebSocketHandler struct {
	hub *services.ChangeHub
}

func NewWebSocketHandler(hub *services.ChangeHub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// RegisterRoutes mounts the websocket endpoints on r
func (h *WebSocketHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws/organizations", h.HandleWebSocket)
	r.GET("/ws/organizations/stats", h.GetStats)
}

// HandleWebSocket handles WebSocket connection requests
// @Summary Directory change stream
// @Description Pushes a directory_changed message after every committed create, update or delete
// @Tags websocket
// @Router /ws/organizations [get]
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	h.hub.HandleWebSocketConnection(c)
}

// GetStats reports how many directory views are connected
// @Summary WebSocket stats
// @Tags websocket
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /ws/organizations/stats [get]
func (h *WebSocketHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"clients": h.hub.Clients(),
		},
	})
}

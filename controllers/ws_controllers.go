package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/restaurant-pos/events"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Sesuaikan dengan kebutuhan keamanan
	},
}

// WSController mendaftarkan observer (staff terminal, kitchen display,
// tablet customer) ke Hub. Hub-nya di-inject, bukan diambil dari registry
// global.
type WSController struct {
	Hub *events.Hub
}

func NewWSController(hub *events.Hub) *WSController {
	return &WSController{Hub: hub}
}

// Handle -> endpoint WebSocket
func (wc *WSController) Handle(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	role := roleInterface.(string)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	wc.Hub.Register(ws, role)

	// Baca pesan hanya untuk mendeteksi disconnect
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	wc.Hub.Unregister(ws)
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// allowedOrigins is the browser origin allowlist, shared by the CORS
// middleware and the websocket upgrade check: CORS does not cover
// websocket upgrades, so the upgrader screens origins itself.
var allowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// No Origin header means a non-browser client; those authenticate
	// via the query token alone.
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowed := range allowedOrigins {
			if origin == allowed {
				return true
			}
		}
		return false
	},
}

// handleWizardWatch streams process data changes to the client: one JSON
// message per store mutation, starting with a snapshot of the current
// record. Browser clients cannot set headers, so the token rides in the
// query string.
func (s *Server) handleWizardWatch(c *gin.Context) {
	if s.cfg.APIToken != "" && c.Query("token") != s.cfg.APIToken {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	processID := c.Param("process")
	if _, ok := s.engine.Flow(processID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown process"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := s.engine.Store().Watch(processID)
	defer cancel()

	// Snapshot first so the client renders without waiting for a change.
	snapshot := map[string]any{
		"processId": processID,
		"data":      s.engine.Store().Data(processID),
	}
	if err := conn.WriteJSON(snapshot); err != nil {
		return
	}

	// Drain reads so close frames are processed; the feed is one-way.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browser origin policy is handled by the CORS config; the websocket
	// endpoint accepts any origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

const writeWait = 5 * time.Second

// wsConn adapts a gorilla connection to hub.Conn. Gorilla allows only one
// concurrent writer, so sends are serialized with a mutex.
type wsConn struct {
	mu sync.Mutex
	c  *websocket.Conn
}

func (w *wsConn) SendText(payload []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(writeWait))
	return w.c.WriteMessage(websocket.TextMessage, payload)
}

// handleTelemetryWS upgrades the request, attaches the viewer to the hub, and
// then blocks reading until the peer goes away. Viewers are receive-only;
// inbound frames are drained and ignored.
func (s *Server) handleTelemetryWS(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := &wsConn{c: c}
	s.hub.Attach(conn)
	s.log.Info("viewer connected", zap.String("remote", c.RemoteAddr().String()))

	defer func() {
		s.hub.Detach(conn)
		_ = c.Close()
		s.log.Info("viewer disconnected", zap.String("remote", c.RemoteAddr().String()))
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

// README: Websocket streams of booking document and patient booking list updates.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"nursecare/internal/modules/booking"
	"nursecare/internal/types"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type watcher struct {
	booking  *booking.Service
	upgrader websocket.Upgrader
}

func newWatcher(svc *booking.Service) *watcher {
	return &watcher{
		booking:  svc,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// serve authorises before upgrading so errors still get a JSON status.
// Every change is sent as the full booking document; the socket closes
// after a terminal status.
func (w *watcher) serve(c *gin.Context, id, uid types.ID) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	updates, err := w.booking.Watch(ctx, id, uid)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	stream(ctx, cancel, w.upgrader, c, updates, func(b *booking.Booking) string {
		if b.Terminal() {
			return string(b.Status)
		}
		return ""
	})
}

// servePatient streams the caller's booking list. It runs until the client
// goes away.
func (w *watcher) servePatient(c *gin.Context, uid types.ID) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	updates, err := w.booking.WatchPatient(ctx, uid, uid)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	stream(ctx, cancel, w.upgrader, c, updates, func([]*booking.Booking) string { return "" })
}

// stream upgrades the request and writes every update as JSON. A non-empty
// closeReason from done closes the socket after that update.
func stream[T any](ctx context.Context, cancel context.CancelFunc, upgrader websocket.Upgrader, c *gin.Context, updates <-chan T, done func(T) string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	go readLoop(conn, cancel)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(v); err != nil {
				return
			}
			if reason := done(v); reason != "" {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason), time.Now().Add(writeWait))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so pongs and close frames are processed.
func readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	eventsWriteWait  = 10 * time.Second
	eventsPingPeriod = 30 * time.Second
)

var eventsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleEvents streams a store snapshot on every change so screens can
// re-render without polling. The first message is the current snapshot.
func (vs *ViewServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := eventsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		vs.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	updates := vs.store.Subscribe()
	defer vs.store.Unsubscribe(updates)

	// reader goroutine notices the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(v interface{}) error {
		conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
		return conn.WriteJSON(v)
	}

	if err := write(vs.store.Snapshot()); err != nil {
		return
	}

	ticker := time.NewTicker(eventsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				// dropped for falling behind
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too slow"),
					time.Now().Add(eventsWriteWait))
				return
			}
			if err := write(snap); err != nil {
				vs.logger.WithError(err).Debug("Events client write failed")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(eventsWriteWait)); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

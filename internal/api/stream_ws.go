package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

const streamWriteTimeout = 10 * time.Second

// StreamHandler handles GET /api/optimize/stream?solve_id=X over WebSocket.
// The client subscribes before submitting the solve carrying the same id and
// receives "progress" events for each improved incumbent, then one "done".
func (s *Server) StreamHandler(w http.ResponseWriter, r *http.Request) {
	solveID := r.URL.Query().Get("solve_id")
	if solveID == "" {
		writeProblem(w, http.StatusBadRequest, "missing solve_id", "query parameter solve_id is required", r.URL.Path)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := s.Broker.Subscribe(solveID)
	defer s.Broker.Unsubscribe(solveID, ch)

	// Reader goroutine only to detect client close.
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
		case evt, ok := <-ch:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
			if evt.Type == "done" {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

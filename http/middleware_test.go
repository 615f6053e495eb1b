package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rumahcerdas/monitoring"
)

// chainedHandler mirrors the middleware stack NewServer builds.
func chainedHandler(mux *http.ServeMux) http.Handler {
	chain := Chain(
		RecoveryMiddleware,
		LoggerMiddleware,
		SecurityHeadersMiddleware,
		CORSMiddleware([]string{"*"}),
		TimeoutMiddleware(30*time.Second),
		GzipMiddleware,
	)
	return chain(mux)
}

func TestDashboardWebsocketThroughMiddleware(t *testing.T) {
	dashboard := monitoring.NewHub(zap.NewNop())
	defer dashboard.Close()
	SetDashboardHub(dashboard)
	t.Cleanup(func() { SetDashboardHub(nil) })

	mux := http.NewServeMux()
	RegisterHandlers(mux)
	srv := httptest.NewServer(chainedHandler(mux))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/dashboard"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("websocket dial failed with status %d: %v", status, err)
	}
	defer conn.Close()

	received := make(chan []byte, 1)
	go func() {
		_, message, err := conn.ReadMessage()
		if err == nil {
			received <- message
		}
	}()

	// The client registers with the hub just after the handshake, so
	// broadcast until the listener sees an event.
	deadline := time.After(3 * time.Second)
	for {
		dashboard.Broadcast(monitoring.EventPrediction, map[string]string{"confidence": "model"})
		select {
		case message := <-received:
			var event monitoring.Event
			if err := json.Unmarshal(message, &event); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if event.Type != monitoring.EventPrediction {
				t.Fatalf("unexpected event type: %s", event.Type)
			}
			return
		case <-deadline:
			t.Fatal("no dashboard event received over the websocket")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestResponseWriterSupportsHijack(t *testing.T) {
	var _ http.Hijacker = &responseWriter{}
	var _ http.Flusher = &responseWriter{}

	// A plain recorder cannot be hijacked; the wrapper must say so
	// instead of panicking.
	w := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	if _, _, err := w.Hijack(); err == nil {
		t.Fatal("expected hijack error over a non-hijackable writer")
	}
}

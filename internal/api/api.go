// Package api exposes reload outcomes to external observers: a
// websocket stream of reload messages for editor or overlay clients,
// and a plaintext metrics dump.
package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"shaderpark/internal/event"
	"shaderpark/internal/logging"
	"shaderpark/internal/metrics"
	"shaderpark/internal/reload"
)

const (
	wsReadBufferSize  = 1024
	wsWriteBufferSize = 1024
	wsWriteTimeout    = 10 * time.Second
)

// RegisterRoutes attaches the reload-stream and metrics endpoints.
func RegisterRoutes(mux *http.ServeMux, bus *event.Bus[reload.Message], registry *metrics.Registry, logger *logging.Logger, allowedOrigins []string) {
	mux.Handle("/v1/messages", &MessagesHandler{
		Bus:            bus,
		Logger:         logger,
		AllowedOrigins: allowedOrigins,
	})
	mux.Handle("/metrics", &MetricsHandler{Registry: registry})
}

// MessagesHandler streams reload messages to websocket clients as JSON.
type MessagesHandler struct {
	Bus            *event.Bus[reload.Message]
	Logger         *logging.Logger
	AllowedOrigins []string
}

type messagePayload struct {
	Kind      string    `json:"kind"`
	Stage     string    `json:"stage"`
	Path      string    `json:"path"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *MessagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Bus == nil {
		http.Error(w, "message bus unavailable", http.StatusInternalServerError)
		return
	}

	conn, err := upgradeWebSocket(w, r, h.AllowedOrigins)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", map[string]string{
			"remote": r.RemoteAddr,
			"error":  err.Error(),
		})
		return
	}
	defer conn.Close()

	messages, cancel := h.Bus.Subscribe()
	defer cancel()

	// Reads only serve to notice the client going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for message := range messages {
		payload := messagePayload{
			Kind:      string(message.Kind),
			Stage:     message.Stage.String(),
			Path:      message.Path,
			Timestamp: message.Timestamp,
		}
		if message.Err != nil {
			payload.Error = message.Err.Error()
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(payload); err != nil {
			return
		}
	}
}

// MetricsHandler dumps the registry in Prometheus text format.
type MetricsHandler struct {
	Registry *metrics.Registry
}

func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = h.Registry.WritePrometheus(w)
}

func upgradeWebSocket(w http.ResponseWriter, r *http.Request, allowedOrigins []string) (*websocket.Conn, error) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  wsReadBufferSize,
		WriteBufferSize: wsWriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return isOriginAllowed(r, allowedOrigins)
		},
	}
	return upgrader.Upgrade(w, r, nil)
}

func isOriginAllowed(r *http.Request, allowedOrigins []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if len(allowedOrigins) == 0 {
		return strings.EqualFold(parsed.Host, r.Host)
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(parsed.Host, allowed) || allowed == "*" {
			return true
		}
	}
	return false
}

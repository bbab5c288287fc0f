// Package ws upgrades HTTP connections into room-bound WebSocket sessions
// and feeds inbound messages to the relay.
package ws

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/fr-yash/CoBuilderr/internal/auth"
	"github.com/fr-yash/CoBuilderr/internal/ident"
	"github.com/fr-yash/CoBuilderr/internal/metrics"
	"github.com/fr-yash/CoBuilderr/internal/models"
	"github.com/fr-yash/CoBuilderr/internal/relay"
	"github.com/fr-yash/CoBuilderr/internal/store"
)

// MessageEvent is the single shared channel name for chat in both
// directions; AI replies travel on it too.
const MessageEvent = "project-message"

const (
	maxMessageSize = 64 * 1024
	writeTimeout   = 10 * time.Second
)

// frame is the wire unit: an event name plus an envelope.
type frame struct {
	Event string                 `json:"event"`
	Data  models.MessageEnvelope `json:"data"`
}

// makeUpgrader creates a WebSocket upgrader with origin checking.
func makeUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowAll := len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*")
	originSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = true
	}

	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if allowAll {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true // non-browser clients
			}
			return originSet[origin]
		},
	}
}

// Gateway authenticates handshakes, resolves the target room and wires
// accepted connections into the registry and relay.
type Gateway struct {
	registry *relay.Registry
	relay    *relay.Relay
	verifier *auth.Verifier
	projects store.DataStore
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewGateway creates a gateway.
func NewGateway(registry *relay.Registry, rl *relay.Relay, verifier *auth.Verifier, projects store.DataStore, allowedOrigins []string, logger zerolog.Logger) *Gateway {
	return &Gateway{
		registry: registry,
		relay:    rl,
		verifier: verifier,
		projects: projects,
		upgrader: makeUpgrader(allowedOrigins),
		logger:   logger.With().Str("component", "gateway").Logger(),
	}
}

// Handle serves GET /ws?projectId=...&token=... The token may also arrive
// as an Authorization bearer header. Handshake failures reject the request
// before the upgrade, so a refused connection never registers anywhere.
func (g *Gateway) Handle(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.URL.Query().Get("projectId"))
	if err != nil {
		http.Error(w, `{"error":"invalid projectId"}`, http.StatusBadRequest)
		return
	}

	project, err := g.projects.GetProject(r.Context(), projectID)
	if err != nil {
		http.Error(w, `{"error":"project lookup failed"}`, http.StatusInternalServerError)
		return
	}
	if project == nil {
		http.Error(w, `{"error":"project not found"}`, http.StatusNotFound)
		return
	}

	claims, err := g.verifier.Verify(r.Context(), tokenFromRequest(r))
	if err != nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sess := &session{
		subject: claims.UserID,
		email:   claims.Email,
		roomID:  project.ID.String(),
		conn:    conn,
	}

	g.registry.Join(sess.roomID, sess)
	metrics.ActiveConnections.Inc()
	g.logger.Info().
		Str("room", sess.roomID).
		Str("user", claims.Email).
		Msg("client connected")

	defer func() {
		g.registry.Leave(sess.roomID, sess)
		metrics.ActiveConnections.Dec()
		_ = conn.Close()
		g.logger.Info().
			Str("room", sess.roomID).
			Str("user", claims.Email).
			Msg("client disconnected")
	}()

	g.readLoop(sess)
}

// tokenFromRequest pulls the auth token from the bearer header or, for
// browser clients that cannot set headers on a WebSocket dial, the query.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if parts := strings.SplitN(h, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	return r.URL.Query().Get("token")
}

// readLoop consumes inbound frames until the connection drops. Everything
// after the read is handed to the relay, which never blocks on the
// generation backend, so one slow AI turn cannot stall this loop.
func (g *Gateway) readLoop(sess *session) {
	sess.conn.SetReadLimit(maxMessageSize)

	for {
		var f frame
		if err := sess.conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				g.logger.Debug().Err(err).Str("room", sess.roomID).Msg("read error")
			}
			return
		}
		if f.Event != MessageEvent {
			continue
		}

		env := f.Data
		if env.ID == "" {
			env.ID = ident.NewMessageID()
		}
		if env.Sender == "" {
			env.Sender = sess.email
		}
		if env.Timestamp == "" {
			env.Timestamp = ident.Stamp(time.Now())
		}

		g.relay.HandleMessage(sess.roomID, env)
	}
}

package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fr-yash/CoBuilderr/internal/models"
)

// session is one live transport link bound to a room for its lifetime.
// gorilla/websocket does not support concurrent writes, so all sends
// serialize through the mutex.
type session struct {
	subject uuid.UUID
	email   string
	roomID  string

	mu   sync.Mutex
	conn *websocket.Conn
}

// Send delivers one envelope to the client on the shared message event.
func (s *session) Send(env models.MessageEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(frame{Event: MessageEvent, Data: env})
}

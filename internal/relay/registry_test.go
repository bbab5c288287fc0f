package relay

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/fr-yash/CoBuilderr/internal/models"
)

// fakeConn records delivered envelopes; optionally fails every Send.
type fakeConn struct {
	mu   sync.Mutex
	got  []models.MessageEnvelope
	fail bool
}

func (c *fakeConn) Send(env models.MessageEnvelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("dead transport")
	}
	c.got = append(c.got, env)
	return nil
}

func (c *fakeConn) received() []models.MessageEnvelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.MessageEnvelope, len(c.got))
	copy(out, c.got)
	return out
}

func newTestRegistry() *Registry {
	return NewRegistry(zerolog.Nop())
}

func TestBroadcastReachesAllMembers(t *testing.T) {
	reg := newTestRegistry()
	a, b := &fakeConn{}, &fakeConn{}
	reg.Join("room-1", a)
	reg.Join("room-1", b)

	reg.Broadcast("room-1", models.MessageEnvelope{ID: "m1", Text: "hi"})

	assert.Len(t, a.received(), 1)
	assert.Len(t, b.received(), 1)
}

func TestBroadcastDoesNotLeakAcrossRooms(t *testing.T) {
	reg := newTestRegistry()
	a, b := &fakeConn{}, &fakeConn{}
	reg.Join("room-a", a)
	reg.Join("room-b", b)

	reg.Broadcast("room-a", models.MessageEnvelope{ID: "m1"})

	assert.Len(t, a.received(), 1)
	assert.Empty(t, b.received())
}

func TestJoinIsIdempotent(t *testing.T) {
	reg := newTestRegistry()
	c := &fakeConn{}
	reg.Join("room-1", c)
	reg.Join("room-1", c)

	assert.Equal(t, 1, reg.Members("room-1"))

	reg.Broadcast("room-1", models.MessageEnvelope{ID: "m1"})
	assert.Len(t, c.received(), 1, "double join must not cause double delivery")
}

func TestLeaveEvictsEmptyRoom(t *testing.T) {
	reg := newTestRegistry()
	c := &fakeConn{}
	reg.Join("room-1", c)
	reg.Leave("room-1", c)

	assert.Equal(t, 0, reg.Members("room-1"))
	reg.mu.RLock()
	_, exists := reg.rooms["room-1"]
	reg.mu.RUnlock()
	assert.False(t, exists)

	// Leaving again, or leaving an unknown room, is a no-op.
	reg.Leave("room-1", c)
	reg.Leave("never-existed", c)
}

func TestBroadcastSurvivesDeadMember(t *testing.T) {
	reg := newTestRegistry()
	dead := &fakeConn{fail: true}
	alive := &fakeConn{}
	reg.Join("room-1", dead)
	reg.Join("room-1", alive)

	reg.Broadcast("room-1", models.MessageEnvelope{ID: "m1"})

	assert.Len(t, alive.received(), 1, "one dead transport must not block the others")
}

func TestBroadcastToUnknownRoomIsNoop(t *testing.T) {
	reg := newTestRegistry()
	reg.Broadcast("ghost", models.MessageEnvelope{ID: "m1"})
}

func TestConcurrentMembershipChurn(t *testing.T) {
	reg := newTestRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := &fakeConn{}
			for j := 0; j < 100; j++ {
				reg.Join("room-1", c)
				reg.Broadcast("room-1", models.MessageEnvelope{ID: "m"})
				reg.Leave("room-1", c)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, reg.Members("room-1"))
}

package socket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type presenceEvent struct {
	userID uint
	online bool
}

func newTestClient(id string) *Client {
	return &Client{id: id, send: make(chan Event, 8)}
}

func TestRegistryBindUnbind(t *testing.T) {
	var events []presenceEvent
	r := NewRegistry(func(userID uint, online bool) {
		events = append(events, presenceEvent{userID, online})
	})

	c1 := newTestClient("c1")
	c2 := newTestClient("c2")

	assert.False(t, r.IsOnline(7))
	assert.Empty(t, r.ConnectionsFor(7))

	r.Bind(c1, 7)
	assert.True(t, r.IsOnline(7))
	assert.Equal(t, 1, r.ConnectionCount(7))

	// Second device: no additional online transition
	r.Bind(c2, 7)
	assert.Equal(t, 2, r.ConnectionCount(7))
	require.Len(t, events, 1)
	assert.Equal(t, presenceEvent{7, true}, events[0])

	// Dropping one connection keeps the user online
	r.Unbind("c1")
	assert.True(t, r.IsOnline(7))
	require.Len(t, events, 1)

	// Dropping the last one goes offline with exactly one event
	r.Unbind("c2")
	assert.False(t, r.IsOnline(7))
	require.Len(t, events, 2)
	assert.Equal(t, presenceEvent{7, false}, events[1])
}

func TestRegistryPresenceInvariant(t *testing.T) {
	r := NewRegistry(nil)
	c := newTestClient("c1")

	r.Bind(c, 3)
	assert.Equal(t, r.IsOnline(3), len(r.ConnectionsFor(3)) > 0)

	r.Unbind("c1")
	assert.Equal(t, r.IsOnline(3), len(r.ConnectionsFor(3)) > 0)
	assert.False(t, r.IsOnline(3))
}

func TestRegistryUnbindUnknownConnection(t *testing.T) {
	var events []presenceEvent
	r := NewRegistry(func(userID uint, online bool) {
		events = append(events, presenceEvent{userID, online})
	})

	assert.False(t, r.Unbind("missing"))
	assert.Empty(t, events)
}

func TestRegistryRebindMovesConnection(t *testing.T) {
	var events []presenceEvent
	r := NewRegistry(func(userID uint, online bool) {
		events = append(events, presenceEvent{userID, online})
	})

	c := newTestClient("c1")
	r.Bind(c, 1)
	r.Bind(c, 2)

	// The connection belongs to exactly one user at a time
	assert.False(t, r.IsOnline(1))
	assert.True(t, r.IsOnline(2))
	assert.Equal(t, []presenceEvent{{1, true}, {1, false}, {2, true}}, events)
}

func TestRegistryOnlineUsers(t *testing.T) {
	r := NewRegistry(nil)
	r.Bind(newTestClient("a"), 1)
	r.Bind(newTestClient("b"), 2)

	assert.ElementsMatch(t, []uint{1, 2}, r.OnlineUsers())
}

package sockio

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAdapter struct {
	mu      sync.Mutex
	packets []*Packet
	rooms   []string
}

func (a *recordingAdapter) Add(socketID, room string)            {}
func (a *recordingAdapter) Remove(socketID, room string)         {}
func (a *recordingAdapter) RemoveAll(socketID string)            {}
func (a *recordingAdapter) Sockets(room string) []string         { return nil }
func (a *recordingAdapter) SocketRooms(socketID string) []string { return nil }
func (a *recordingAdapter) Close() error                         { return nil }

func (a *recordingAdapter) Broadcast(packet *Packet, rooms []string, except []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.packets = append(a.packets, packet)
	a.rooms = append(a.rooms, rooms...)
	return nil
}

func TestServer_Of(t *testing.T) {
	server := NewServer(nil)

	root := server.Of("/")
	assert.Same(t, root, server.Of(""))
	assert.Same(t, root, server.Of("/"))

	admin := server.Of("/admin")
	assert.NotSame(t, root, admin)
	assert.Equal(t, "/admin", admin.Name())
	assert.Same(t, admin, server.Of("/admin"))
}

func TestServer_Emit_Broadcasts(t *testing.T) {
	server := NewServer(nil)
	adapter := &recordingAdapter{}
	server.Of("/").SetAdapter(adapter)

	require.NoError(t, server.Emit("news", "hello"))

	require.Len(t, adapter.packets, 1)
	p := adapter.packets[0]
	assert.Equal(t, PacketTypeEvent, p.Type)
	assert.Equal(t, "/", p.Namespace)
	assert.Equal(t, []interface{}{"news", "hello"}, p.Data)
}

func TestBroadcastOperator_RoomsAndExcept(t *testing.T) {
	server := NewServer(nil)
	adapter := &recordingAdapter{}
	server.Of("/").SetAdapter(adapter)

	require.NoError(t, server.To("room1").To("room2").Emit("news", 1))

	require.Len(t, adapter.packets, 1)
	assert.Equal(t, []string{"room1", "room2"}, adapter.rooms)
}

func TestServer_ServeHTTP_RejectsOtherPaths(t *testing.T) {
	server := NewServer(nil)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest("GET", "/other", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Correct path but non-websocket transport is rejected downstream.
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest("GET", "/socket.io/?EIO=4&transport=polling", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMemoryAdapter_Rooms(t *testing.T) {
	ns := NewNamespace("/", NewServer(nil))
	adapter := NewMemoryAdapter(ns)

	adapter.Add("s1", "room1")
	adapter.Add("s2", "room1")
	adapter.Add("s1", "room2")

	assert.ElementsMatch(t, []string{"s1", "s2"}, adapter.Sockets("room1"))
	assert.ElementsMatch(t, []string{"room1", "room2"}, adapter.SocketRooms("s1"))

	adapter.Remove("s1", "room1")
	assert.ElementsMatch(t, []string{"s2"}, adapter.Sockets("room1"))

	adapter.RemoveAll("s2")
	assert.Empty(t, adapter.Sockets("room1"))
	assert.Empty(t, adapter.SocketRooms("s2"))
}

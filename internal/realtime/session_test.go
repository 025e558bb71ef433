package realtime

import (
	"testing"

	"github.com/kushal45/OMS-sub001/internal/auth"
	"github.com/kushal45/OMS-sub001/internal/common/cnst"

	"github.com/stretchr/testify/assert"
)

func TestNewSession_AutoJoinsIdentityRooms(t *testing.T) {
	s := NewSession("s1", auth.Principal{UserID: "u-1", Role: "admin"}, 4)
	assert.True(t, s.InRoom(cnst.RoomUserPrefix+"u-1"))
	assert.True(t, s.InRoom(cnst.RoomRolePrefix+"admin"))
	assert.ElementsMatch(t, []string{"user:u-1", "role:admin"}, s.Rooms())
}

func TestNewSession_NoRoleRoomWithoutRole(t *testing.T) {
	s := NewSession("s1", auth.Principal{UserID: "u-1"}, 4)
	assert.Equal(t, []string{"user:u-1"}, s.Rooms())
}

func TestSession_JoinLeave(t *testing.T) {
	s := NewSession("s1", auth.Principal{UserID: "u-1"}, 4)

	assert.True(t, s.Join(cnst.RoomOrderUpdates))
	assert.False(t, s.Join(cnst.RoomOrderUpdates), "second join is a no-op")
	assert.True(t, s.InRoom(cnst.RoomOrderUpdates))

	assert.True(t, s.Leave(cnst.RoomOrderUpdates))
	assert.False(t, s.Leave(cnst.RoomOrderUpdates), "second leave is a no-op")
	assert.False(t, s.InRoom(cnst.RoomOrderUpdates))
}

func TestSession_SendDropsWhenFull(t *testing.T) {
	s := NewSession("s1", auth.Principal{UserID: "u-1"}, 1)

	assert.NoError(t, s.Send(NewEnvelope(cnst.EventPong, nil)))
	assert.ErrorIs(t, s.Send(NewEnvelope(cnst.EventPong, nil)), ErrQueueFull)

	// draining frees a slot again
	<-s.Queue()
	assert.NoError(t, s.Send(NewEnvelope(cnst.EventPong, nil)))
}

func TestSession_SendAfterClose(t *testing.T) {
	s := NewSession("s1", auth.Principal{UserID: "u-1"}, 4)
	s.Close()
	s.Close() // idempotent

	assert.ErrorIs(t, s.Send(NewEnvelope(cnst.EventPong, nil)), ErrSessionClosed)

	select {
	case <-s.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}

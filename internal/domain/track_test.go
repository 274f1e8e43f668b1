package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSink struct {
	closes int
}

func (s *countingSink) Close() error {
	s.closes++
	return nil
}

func TestTrackHandleDetachOnce(t *testing.T) {
	sink := &countingSink{}
	h := NewRemoteHandle(TrackKindAudio, "agent", "tr-1", sink)

	require.True(t, h.Attached())
	require.NoError(t, h.Detach())
	require.NoError(t, h.Detach())
	require.NoError(t, h.Detach())

	assert.Equal(t, 1, sink.closes)
	assert.False(t, h.Attached())
}

func TestTrackHandleWithoutSink(t *testing.T) {
	h := NewLocalHandle(TrackKindAudio, "user-42", "mic-1", nil)
	assert.False(t, h.Attached())
	assert.NoError(t, h.Detach())
}

func TestSessionStateTransitionsGuards(t *testing.T) {
	assert.True(t, StateIdle.CanConnect())
	assert.True(t, StateDisconnected.CanConnect())
	assert.True(t, StateFailed.CanConnect())

	for _, s := range []SessionState{StateRequesting, StateConnecting, StatePublishing, StateConnected} {
		assert.False(t, s.CanConnect(), "state %s", s)
		assert.False(t, s.Terminal(), "state %s", s)
	}

	assert.True(t, StateDisconnected.Terminal())
	assert.True(t, StateFailed.Terminal())
}

func TestCredentialComplete(t *testing.T) {
	c := &Credential{Identity: "user-42", RoomName: "test-room", Token: "tok", URL: "wss://x"}
	assert.True(t, c.Complete())

	assert.False(t, (&Credential{Identity: "user-42", RoomName: "test-room", Token: "tok"}).Complete())
	assert.False(t, (*Credential)(nil).Complete())
}

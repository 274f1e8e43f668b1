package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avoline/intervu/internal/domain"
)

func TestRelayFansOutToAllHandlers(t *testing.T) {
	r := NewRelay()

	var states []domain.SessionState
	var also []domain.SessionState
	r.OnStateChange(func(s domain.SessionState) { states = append(states, s) })
	r.OnStateChange(func(s domain.SessionState) { also = append(also, s) })

	r.relayState(domain.StateRequesting)
	r.relayState(domain.StateConnecting)

	assert.Equal(t, []domain.SessionState{domain.StateRequesting, domain.StateConnecting}, states)
	assert.Equal(t, states, also)
}

func TestRelayErrors(t *testing.T) {
	r := NewRelay()

	var got []error
	r.OnError(func(err error) { got = append(got, err) })

	want := errors.New("boom")
	r.relayError(want)

	assert.Equal(t, []error{want}, got)
}

func TestRelayWithoutHandlersIsSafe(t *testing.T) {
	r := NewRelay()
	r.relayState(domain.StateFailed)
	r.relayError(errors.New("unobserved"))
}

package session

import (
	"sync"

	"github.com/avoline/intervu/internal/domain"
)

// Relay is the narrow observer surface the controller notifies on every
// state transition and failure. Delivery is synchronous from the run loop:
// a slow handler delays subsequent transitions, and handlers must not call
// back into the controller's blocking API.
type Relay struct {
	mu            sync.RWMutex
	stateHandlers []func(domain.SessionState)
	errorHandlers []func(error)
}

func NewRelay() *Relay {
	return &Relay{}
}

// OnStateChange registers a handler for session state transitions.
func (r *Relay) OnStateChange(fn func(domain.SessionState)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stateHandlers = append(r.stateHandlers, fn)
}

// OnError registers a handler for relayed failures.
func (r *Relay) OnError(fn func(error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorHandlers = append(r.errorHandlers, fn)
}

func (r *Relay) relayState(s domain.SessionState) {
	r.mu.RLock()
	handlers := r.stateHandlers
	r.mu.RUnlock()
	for _, fn := range handlers {
		fn(s)
	}
}

func (r *Relay) relayError(err error) {
	r.mu.RLock()
	handlers := r.errorHandlers
	r.mu.RUnlock()
	for _, fn := range handlers {
		fn(err)
	}
}

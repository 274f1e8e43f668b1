// Package domain contains session entities without transport logic, just state and meta-data.
package domain

type SessionState string

const (
	StateIdle         SessionState = "idle"
	StateRequesting   SessionState = "requesting"
	StateConnecting   SessionState = "connecting"
	StatePublishing   SessionState = "publishing"
	StateConnected    SessionState = "connected"
	StateDisconnected SessionState = "disconnected"
	StateFailed       SessionState = "failed"
)

// Terminal reports whether the session has ended and will not transition
// again until a fresh connect.
func (s SessionState) Terminal() bool {
	return s == StateDisconnected || s == StateFailed
}

// CanConnect reports whether a new connect attempt may start from this state.
func (s SessionState) CanConnect() bool {
	return s == StateIdle || s.Terminal()
}

// TrackKey identifies one remote track within a session.
type TrackKey struct {
	Participant string
	TrackID     string
}

// Session is the single live call owned by one controller instance.
// All fields are mutated only on the controller's run loop.
type Session struct {
	State      SessionState
	Credential *Credential
	Local      *TrackHandle
	Remote     map[TrackKey]*TrackHandle
}

func NewSession() *Session {
	return &Session{
		State:  StateIdle,
		Remote: make(map[TrackKey]*TrackHandle),
	}
}

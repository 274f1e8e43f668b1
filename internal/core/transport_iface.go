package core

import "context"

type TransportEventKind string

const (
	EventTrackSubscribed   TransportEventKind = "track_subscribed"
	EventTrackUnsubscribed TransportEventKind = "track_unsubscribed"
	EventDisconnected      TransportEventKind = "disconnected"
	EventMediaDeviceError  TransportEventKind = "media_device_error"
)

// TransportEvent is the tagged event the transport emits towards the session
// controller. Which fields are set depends on Kind:
//
//	EventTrackSubscribed:   Track, Participant, TrackID
//	EventTrackUnsubscribed: Participant, TrackID
//	EventDisconnected:      Err (nil for a graceful disconnect)
//	EventMediaDeviceError:  Err
type TransportEvent struct {
	Kind        TransportEventKind
	Track       RemoteTrack
	Participant string
	TrackID     string
	Err         error
}

// Transport is one media session with the real-time engine. Events are
// emitted in arrival order on a single channel; the channel is closed when
// the transport shuts down. Close is idempotent.
type Transport interface {
	// Connect opens the session against url using the opaque token.
	Connect(ctx context.Context, url, token string) error
	// Publish attaches one local outbound track to the session.
	Publish(ctx context.Context, track LocalTrack) error
	Events() <-chan TransportEvent
	Close() error
}

// TransportDialer constructs a fresh Transport per connect attempt.
// A Transport is never reused across attempts.
type TransportDialer interface {
	NewTransport() (Transport, error)
}

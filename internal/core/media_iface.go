package core

import (
	"context"
	"time"

	"github.com/avoline/intervu/internal/domain"
)

// LocalTrack is an open capture source. NextSample blocks until the next
// media frame is available; it returns io.EOF when the source ends.
// Close releases the capture device.
type LocalTrack interface {
	ID() string
	Kind() domain.TrackKind
	NextSample() (data []byte, duration time.Duration, err error)
	Close() error
}

// RemoteTrack is an inbound track view. ReadPayload blocks until the next
// media payload arrives; it returns an error once the track is torn down.
type RemoteTrack interface {
	ID() string
	Kind() domain.TrackKind
	Participant() string
	ReadPayload() ([]byte, error)
}

// CaptureDevice acquires the local microphone. Failures are reported as
// DeviceError with reason permission_denied or no_device.
type CaptureDevice interface {
	OpenMicrophone(ctx context.Context) (LocalTrack, error)
}

// SinkFactory creates a playable sink for a remote track and starts
// rendering it. The returned sink is owned by the track handle that
// attaches it.
type SinkFactory interface {
	NewSink(track RemoteTrack) (domain.Sink, error)
}

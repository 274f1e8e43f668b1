package domain

type TrackKind string

const (
	TrackKindAudio TrackKind = "audio"
	TrackKindVideo TrackKind = "video"
)

type TrackOrigin string

const (
	TrackOriginLocal  TrackOrigin = "local"
	TrackOriginRemote TrackOrigin = "remote"
)

// Sink is the rendering resource a track handle owns. Closing it releases
// the underlying playback or capture resource.
type Sink interface {
	Close() error
}

// TrackHandle references one published or subscribed track plus its
// rendering resource. Detach is applied at most once; the handle is
// mutated only on the controller's run loop.
type TrackHandle struct {
	Kind        TrackKind
	Origin      TrackOrigin
	Participant string
	TrackID     string

	sink     Sink
	detached bool
}

func NewLocalHandle(kind TrackKind, participant, trackID string, sink Sink) *TrackHandle {
	return &TrackHandle{
		Kind:        kind,
		Origin:      TrackOriginLocal,
		Participant: participant,
		TrackID:     trackID,
		sink:        sink,
	}
}

func NewRemoteHandle(kind TrackKind, participant, trackID string, sink Sink) *TrackHandle {
	return &TrackHandle{
		Kind:        kind,
		Origin:      TrackOriginRemote,
		Participant: participant,
		TrackID:     trackID,
		sink:        sink,
	}
}

func (h *TrackHandle) Key() TrackKey {
	return TrackKey{Participant: h.Participant, TrackID: h.TrackID}
}

// Attached reports whether the handle still owns its sink.
func (h *TrackHandle) Attached() bool {
	return h.sink != nil && !h.detached
}

// Detach releases the sink exactly once. Further calls are no-ops.
func (h *TrackHandle) Detach() error {
	if h.detached || h.sink == nil {
		return nil
	}
	h.detached = true
	return h.sink.Close()
}

package session

import (
	"github.com/rs/zerolog/log"

	"github.com/avoline/intervu/internal/core"
	"github.com/avoline/intervu/internal/domain"
)

// Subscriber reacts to inbound track events: it attaches a playable sink
// per remote audio track and guarantees every attached sink is detached
// exactly once, on unsubscribe or on session teardown.
type Subscriber struct {
	sinks core.SinkFactory
	relay *Relay
}

func NewSubscriber(sinks core.SinkFactory, relay *Relay) *Subscriber {
	return &Subscriber{sinks: sinks, relay: relay}
}

// HandleSubscribed attaches a sink for a remote audio track and stores the
// handle in the session's remote set. Non-audio tracks and duplicate
// subscribe signals are ignored.
func (s *Subscriber) HandleSubscribed(sess *domain.Session, track core.RemoteTrack) {
	if track == nil || track.Kind() != domain.TrackKindAudio {
		return
	}
	key := domain.TrackKey{Participant: track.Participant(), TrackID: track.ID()}
	if _, ok := sess.Remote[key]; ok {
		log.Warn().
			Str("module", "session.subscriber").
			Str("participant", key.Participant).
			Str("track_id", key.TrackID).
			Msg("duplicate subscribe signal, keeping existing sink")
		return
	}

	sink, err := s.sinks.NewSink(track)
	if err != nil {
		s.relay.relayError(&core.DeviceError{
			Reason: core.DeviceMediaFailure,
			Op:     "subscriber.attach",
			Err:    err,
		})
		return
	}

	sess.Remote[key] = domain.NewRemoteHandle(domain.TrackKindAudio, key.Participant, key.TrackID, sink)
	log.Info().
		Str("module", "session.subscriber").
		Str("participant", key.Participant).
		Str("track_id", key.TrackID).
		Msg("remote audio sink attached")
}

// HandleUnsubscribed detaches the matching sink and removes the handle.
// Unknown or duplicate unsubscribe signals are a no-op.
func (s *Subscriber) HandleUnsubscribed(sess *domain.Session, participant, trackID string) {
	key := domain.TrackKey{Participant: participant, TrackID: trackID}
	h, ok := sess.Remote[key]
	if !ok {
		return
	}
	if err := h.Detach(); err != nil {
		log.Error().Err(err).
			Str("module", "session.subscriber").
			Str("participant", participant).
			Str("track_id", trackID).
			Msg("sink detach error")
	}
	delete(sess.Remote, key)
}

// HandleDeviceError relays a runtime media device failure without touching
// session state; the remote track may still be usable.
func (s *Subscriber) HandleDeviceError(err error) {
	s.relay.relayError(&core.DeviceError{
		Reason: core.DeviceMediaFailure,
		Op:     "subscriber.device",
		Err:    err,
	})
}

// ReleaseAll detaches every outstanding remote sink. Handles already
// detached by an earlier unsubscribe are skipped by the handle itself.
func (s *Subscriber) ReleaseAll(sess *domain.Session) {
	for key, h := range sess.Remote {
		if err := h.Detach(); err != nil {
			log.Error().Err(err).
				Str("module", "session.subscriber").
				Str("participant", key.Participant).
				Str("track_id", key.TrackID).
				Msg("sink release error")
		}
		delete(sess.Remote, key)
	}
}

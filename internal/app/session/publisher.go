package session

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/avoline/intervu/internal/core"
	"github.com/avoline/intervu/internal/domain"
)

var ErrAlreadyPublished = errors.New("local audio track already published")

// Publisher acquires the microphone and publishes exactly one outbound
// audio track per session.
type Publisher struct {
	capture core.CaptureDevice
}

func NewPublisher(capture core.CaptureDevice) *Publisher {
	return &Publisher{capture: capture}
}

// PublishLocalAudio opens the microphone and attaches it to the transport.
// current is the session's existing local handle; a second publish on the
// same session is rejected. The returned handle owns the capture track.
func (p *Publisher) PublishLocalAudio(
	ctx context.Context,
	t core.Transport,
	current *domain.TrackHandle,
	identity domain.Identity,
) (*domain.TrackHandle, error) {
	if current != nil {
		return nil, ErrAlreadyPublished
	}

	track, err := p.capture.OpenMicrophone(ctx)
	if err != nil {
		return nil, err
	}

	if err := t.Publish(ctx, track); err != nil {
		_ = track.Close()
		return nil, err
	}

	log.Info().
		Str("module", "session.publisher").
		Str("track_id", track.ID()).
		Str("identity", string(identity)).
		Msg("local audio published")

	return domain.NewLocalHandle(domain.TrackKindAudio, string(identity), track.ID(), track), nil
}

package media

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/avoline/intervu/internal/core"
	"github.com/avoline/intervu/internal/domain"
)

// OpenWriterFunc opens the playback destination for one remote track.
type OpenWriterFunc func(track core.RemoteTrack) (io.WriteCloser, error)

// DeviceWriter plays every track into a single playback device path.
func DeviceWriter(path string) OpenWriterFunc {
	return func(core.RemoteTrack) (io.WriteCloser, error) {
		return os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	}
}

// SinkFactory creates writer-backed sinks and starts their render pump.
type SinkFactory struct {
	open OpenWriterFunc
}

func NewSinkFactory(open OpenWriterFunc) *SinkFactory {
	return &SinkFactory{open: open}
}

func (f *SinkFactory) NewSink(track core.RemoteTrack) (domain.Sink, error) {
	w, err := f.open(track)
	if err != nil {
		return nil, err
	}
	s := &writerSink{w: w}
	go s.pump(track)
	return s, nil
}

// writerSink copies track payloads into its writer until the track ends or
// the sink is closed. Close releases the writer exactly once.
type writerSink struct {
	w io.WriteCloser

	mu     sync.Mutex
	closed bool
}

func (s *writerSink) pump(track core.RemoteTrack) {
	for {
		payload, err := track.ReadPayload()
		if err != nil {
			log.Debug().Err(err).
				Str("module", "media").
				Str("track_id", track.ID()).
				Msg("render pump finished")
			return
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		_, werr := s.w.Write(payload)
		s.mu.Unlock()
		if werr != nil {
			log.Error().Err(werr).Str("module", "media").Str("track_id", track.ID()).Msg("playback write error")
			return
		}
	}
}

func (s *writerSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.w.Close()
}

// Package media provides the PCMU capture device and playback sinks the
// console client uses; both sides speak G.711 µ-law at 8 kHz in 20 ms
// frames.
package media

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/avoline/intervu/internal/core"
	"github.com/avoline/intervu/internal/domain"
)

const (
	// SampleRate is the number of audio samples per second.
	SampleRate = 8000 // Hz

	// SampleDuration is the duration of each audio frame.
	SampleDuration = 20 * time.Millisecond

	// SampleSize is the frame size in bytes: 8000 Hz * 0.020 s * 1 byte/sample.
	SampleSize = 160 // bytes
)

// Capture opens a PCMU byte stream from a device path. The device paces
// reads; a frame becomes available every SampleDuration.
type Capture struct {
	path string
}

func NewCapture(path string) *Capture {
	return &Capture{path: path}
}

func (c *Capture) OpenMicrophone(ctx context.Context) (core.LocalTrack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(c.path)
	if err != nil {
		reason := core.DeviceNoDevice
		if errors.Is(err, fs.ErrPermission) {
			reason = core.DevicePermissionDenied
		}
		return nil, &core.DeviceError{Reason: reason, Op: "media.capture", Err: err}
	}

	log.Info().Str("module", "media").Str("device", c.path).Msg("microphone opened")
	return newPCMUTrack(f), nil
}

// ReaderCapture serves any PCMU byte source as a microphone; used for
// piped input and in tests.
type ReaderCapture struct {
	Source io.ReadCloser
}

func (c *ReaderCapture) OpenMicrophone(ctx context.Context) (core.LocalTrack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Source == nil {
		return nil, &core.DeviceError{Reason: core.DeviceNoDevice, Op: "media.capture"}
	}
	return newPCMUTrack(c.Source), nil
}

type pcmuTrack struct {
	id  string
	src io.ReadCloser
}

func newPCMUTrack(src io.ReadCloser) *pcmuTrack {
	return &pcmuTrack{id: uuid.NewString(), src: src}
}

func (t *pcmuTrack) ID() string             { return t.id }
func (t *pcmuTrack) Kind() domain.TrackKind { return domain.TrackKindAudio }

// NextSample blocks until one full frame is read. A short trailing frame is
// returned as-is before io.EOF surfaces on the following call.
func (t *pcmuTrack) NextSample() ([]byte, time.Duration, error) {
	buf := make([]byte, SampleSize)
	n, err := io.ReadFull(t.src, buf)
	if n > 0 {
		return buf[:n], SampleDuration, nil
	}
	if err == nil || errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return nil, 0, err
}

func (t *pcmuTrack) Close() error {
	return t.src.Close()
}

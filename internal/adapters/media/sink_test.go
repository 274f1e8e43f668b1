package media

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoline/intervu/internal/core"
	"github.com/avoline/intervu/internal/domain"
)

// queueTrack feeds a fixed payload sequence and then blocks until closed.
type queueTrack struct {
	payloads [][]byte
	done     chan struct{}

	mu  sync.Mutex
	pos int
}

func newQueueTrack(payloads ...[]byte) *queueTrack {
	return &queueTrack{payloads: payloads, done: make(chan struct{})}
}

func (t *queueTrack) ID() string             { return "tr-1" }
func (t *queueTrack) Kind() domain.TrackKind { return domain.TrackKindAudio }
func (t *queueTrack) Participant() string    { return "agent" }

func (t *queueTrack) ReadPayload() ([]byte, error) {
	t.mu.Lock()
	if t.pos < len(t.payloads) {
		p := t.payloads[t.pos]
		t.pos++
		t.mu.Unlock()
		return p, nil
	}
	t.mu.Unlock()
	<-t.done
	return nil, io.EOF
}

func (t *queueTrack) finish() { close(t.done) }

// memWriter records writes and close calls.
type memWriter struct {
	mu     sync.Mutex
	data   []byte
	closes int
	wrote  chan struct{}
}

func newMemWriter(expected int) *memWriter {
	return &memWriter{wrote: make(chan struct{}, expected)}
}

func (w *memWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	w.data = append(w.data, p...)
	w.mu.Unlock()
	w.wrote <- struct{}{}
	return len(p), nil
}

func (w *memWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closes++
	return nil
}

func (w *memWriter) bytes() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]byte(nil), w.data...)
}

func (w *memWriter) closeCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closes
}

func waitWrites(t *testing.T, w *memWriter, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-w.wrote:
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for write %d of %d", i+1, n)
		}
	}
}

func TestSinkPumpsPayloadsToWriter(t *testing.T) {
	track := newQueueTrack([]byte{1, 2, 3}, []byte{4, 5})
	defer track.finish()
	w := newMemWriter(2)

	f := NewSinkFactory(func(core.RemoteTrack) (io.WriteCloser, error) { return w, nil })
	sink, err := f.NewSink(track)
	require.NoError(t, err)
	defer sink.Close()

	waitWrites(t, w, 2)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, w.bytes())
}

func TestSinkCloseIdempotent(t *testing.T) {
	track := newQueueTrack()
	defer track.finish()
	w := newMemWriter(0)

	f := NewSinkFactory(func(core.RemoteTrack) (io.WriteCloser, error) { return w, nil })
	sink, err := f.NewSink(track)
	require.NoError(t, err)

	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())
	assert.Equal(t, 1, w.closeCount())
}

func TestSinkFactoryOpenFailure(t *testing.T) {
	openErr := errors.New("speaker busy")
	f := NewSinkFactory(func(core.RemoteTrack) (io.WriteCloser, error) { return nil, openErr })

	track := newQueueTrack()
	defer track.finish()

	_, err := f.NewSink(track)
	assert.ErrorIs(t, err, openErr)
}

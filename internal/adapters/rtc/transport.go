// Package rtc drives the real-time media engine: one pion PeerConnection
// plus its signaling socket per session attempt, surfaced to the session
// controller as a tagged transport event stream.
package rtc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/avoline/intervu/internal/core"
	"github.com/avoline/intervu/internal/domain"
)

const (
	sampleClockRate = 8000
	rtpOutboundMTU  = 1200
	eventBuffer     = 32
)

type Config struct {
	STUNURLs    []string
	DialTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		STUNURLs:    []string{"stun:stun.l.google.com:19302"},
		DialTimeout: 15 * time.Second,
	}
}

// Dialer builds one Transport per connect attempt.
type Dialer struct {
	cfg Config
}

func NewDialer(cfg Config) *Dialer {
	if len(cfg.STUNURLs) == 0 {
		cfg.STUNURLs = DefaultConfig().STUNURLs
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultConfig().DialTimeout
	}
	return &Dialer{cfg: cfg}
}

func (d *Dialer) NewTransport() (core.Transport, error) {
	return &Transport{
		cfg:     d.cfg,
		events:  make(chan core.TransportEvent, eventBuffer),
		answers: make(chan webrtc.SessionDescription, 1),
		ready:   make(chan struct{}),
	}, nil
}

// Transport is a single media session. Events are emitted in arrival order
// and dropped (with a log line) rather than blocking when the consumer
// falls behind. Close is idempotent and closes the event channel.
type Transport struct {
	cfg Config

	pc      *webrtc.PeerConnection
	audioTx *webrtc.RTPTransceiver
	sig     *signalConn

	events    chan core.TransportEvent
	answers   chan webrtc.SessionDescription
	ready     chan struct{}
	readyOnce sync.Once

	mu     sync.Mutex
	closed bool
}

func (t *Transport) Events() <-chan core.TransportEvent { return t.events }

func (t *Transport) Connect(ctx context.Context, rawURL, token string) error {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.DialTimeout)
	defer cancel()

	sig, err := dialSignal(ctx, rawURL, token)
	if err != nil {
		return err
	}
	t.sig = sig

	pc, err := webrtc.NewPeerConnection(t.webrtcConfig())
	if err != nil {
		sig.close()
		return err
	}
	t.pc = pc

	tx, err := pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio, webrtc.RTPTransceiverInit{
		Direction: webrtc.RTPTransceiverDirectionSendrecv,
	})
	if err != nil {
		t.Close()
		return err
	}
	t.audioTx = tx

	pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand == nil {
			return
		}
		if err := t.sig.send(candidateMessage(cand.ToJSON())); err != nil {
			log.Error().Err(err).Str("module", "rtc").Msg("send candidate")
		}
	})

	pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		log.Info().Str("module", "rtc").Str("ice_state", s.String()).Msg("ICE state")
	})

	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "rtc").Str("peer_state", s.String()).Msg("peer state")
		switch s {
		case webrtc.PeerConnectionStateConnected:
			t.readyOnce.Do(func() { close(t.ready) })
		case webrtc.PeerConnectionStateFailed:
			t.emit(core.TransportEvent{
				Kind: core.EventDisconnected,
				Err:  errors.New("peer connection failed"),
			})
		}
	})

	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		rt := &remoteTrack{tr: track}
		log.Info().
			Str("module", "rtc").
			Str("kind", string(rt.Kind())).
			Str("track_id", rt.ID()).
			Str("participant", rt.Participant()).
			Msg("remote track")
		t.emit(core.TransportEvent{
			Kind:        core.EventTrackSubscribed,
			Track:       rt,
			Participant: rt.Participant(),
			TrackID:     rt.ID(),
		})
	})

	go t.readLoop()

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		t.Close()
		return err
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		t.Close()
		return err
	}
	if err := sig.send(message{Type: "offer", SDP: offer.SDP}); err != nil {
		t.Close()
		return err
	}

	select {
	case answer := <-t.answers:
		if err := pc.SetRemoteDescription(answer); err != nil {
			t.Close()
			return err
		}
	case <-ctx.Done():
		t.Close()
		return fmt.Errorf("waiting for answer: %w", ctx.Err())
	}

	select {
	case <-t.ready:
		return nil
	case <-ctx.Done():
		t.Close()
		return fmt.Errorf("waiting for media: %w", ctx.Err())
	}
}

// Publish binds the capture track to the negotiated audio sender and pumps
// its samples as PCMU RTP until the track ends or the transport closes.
func (t *Transport) Publish(_ context.Context, local core.LocalTrack) error {
	if t.audioTx == nil {
		return errors.New("transport not connected")
	}

	out, err := webrtc.NewTrackLocalStaticRTP(webrtc.RTPCodecCapability{
		MimeType:  webrtc.MimeTypePCMU,
		ClockRate: sampleClockRate,
		Channels:  1,
	}, local.ID(), "microphone")
	if err != nil {
		return err
	}
	if err := t.audioTx.Sender().ReplaceTrack(out); err != nil {
		return err
	}

	// SSRC and payload type are rewritten per track binding on write; the
	// packetizer values are placeholders.
	packetizer := rtp.NewPacketizer(
		rtpOutboundMTU,
		0,
		rand.Uint32(),
		&codecs.G711Payloader{},
		rtp.NewRandomSequencer(),
		sampleClockRate,
	)

	go t.pumpLocal(local, out, packetizer)
	return nil
}

func (t *Transport) pumpLocal(local core.LocalTrack, out *webrtc.TrackLocalStaticRTP, packetizer rtp.Packetizer) {
	for {
		data, duration, err := local.NextSample()
		if err != nil {
			if !errors.Is(err, io.EOF) && !t.isClosed() {
				t.emit(core.TransportEvent{Kind: core.EventMediaDeviceError, Err: err})
			}
			return
		}
		samples := uint32(duration.Seconds() * sampleClockRate)
		for _, pkt := range packetizer.Packetize(data, samples) {
			if err := out.WriteRTP(pkt); err != nil {
				log.Error().Err(err).Str("module", "rtc").Msg("write RTP, stopping pump")
				return
			}
		}
	}
}

func (t *Transport) readLoop() {
	for {
		m, err := t.sig.read()
		if err != nil {
			if !t.isClosed() {
				t.emit(core.TransportEvent{Kind: core.EventDisconnected, Err: err})
			}
			return
		}

		switch m.Type {
		case "answer":
			select {
			case t.answers <- webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: m.SDP}:
			default:
			}
		case "candidate":
			if err := t.pc.AddICECandidate(m.candidateInit()); err != nil {
				log.Error().Err(err).Str("module", "rtc").Msg("add ice candidate")
			}
		case "track_unsubscribed":
			t.emit(core.TransportEvent{
				Kind:        core.EventTrackUnsubscribed,
				Participant: m.Participant,
				TrackID:     m.TrackID,
			})
		case "media_error":
			t.emit(core.TransportEvent{
				Kind: core.EventMediaDeviceError,
				Err:  errors.New(m.Error),
			})
		case "bye":
			t.emit(core.TransportEvent{Kind: core.EventDisconnected})
			return
		default:
			log.Warn().Str("module", "rtc").Str("type", m.Type).Msg("unknown signal")
		}
	}
}

// emit delivers one event unless the transport is closed; a consumer that
// stopped draining loses events instead of wedging the media callbacks.
func (t *Transport) emit(ev core.TransportEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	select {
	case t.events <- ev:
	default:
		log.Warn().Str("module", "rtc").Str("kind", string(ev.Kind)).Msg("event buffer full, dropping")
	}
}

func (t *Transport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	close(t.events)
	t.mu.Unlock()

	if t.sig != nil {
		t.sig.close()
	}
	if t.pc != nil {
		if err := t.pc.Close(); err != nil {
			log.Error().Err(err).Str("module", "rtc").Msg("peer connection close")
			return err
		}
	}
	log.Info().Str("module", "rtc").Msg("transport closed")
	return nil
}

func (t *Transport) webrtcConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: t.cfg.STUNURLs}},
	}
}

// remoteTrack adapts a pion remote track to the core view. The stream ID
// carries the publishing participant's identity.
type remoteTrack struct {
	tr *webrtc.TrackRemote
}

func (r *remoteTrack) ID() string          { return r.tr.ID() }
func (r *remoteTrack) Participant() string { return r.tr.StreamID() }

func (r *remoteTrack) Kind() domain.TrackKind {
	if r.tr.Kind() == webrtc.RTPCodecTypeAudio {
		return domain.TrackKindAudio
	}
	return domain.TrackKindVideo
}

func (r *remoteTrack) ReadPayload() ([]byte, error) {
	pkt, _, err := r.tr.ReadRTP()
	if err != nil {
		return nil, err
	}
	return pkt.Payload, nil
}

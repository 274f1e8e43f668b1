package session

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/avoline/intervu/internal/core"
	"github.com/avoline/intervu/internal/domain"
)

var (
	ErrSessionActive    = errors.New("session already connecting or connected")
	ErrControllerClosed = errors.New("session controller closed")
)

type eventKind int

const (
	evConnect eventKind = iota
	evDisconnect
	evShutdown
	evCredential
	evTransportUp
	evPublished
	evTransport
)

// loopEvent is the tagged event consumed by the controller run loop. Which
// fields are set depends on kind; gen stamps async results so stale ones
// from a superseded connect attempt are discarded.
type loopEvent struct {
	kind eventKind
	gen  uint64

	req       core.CredentialRequest
	cred      *domain.Credential
	transport core.Transport
	handle    *domain.TrackHandle
	tev       core.TransportEvent
	err       error

	reply chan error
}

// Controller owns one active session's state machine. All session state is
// confined to a single run-loop goroutine; the public API posts events to
// the loop and transport callbacks are pumped into the same channel, so
// transitions are applied strictly in order and without locks.
type Controller struct {
	tokens     core.TokenClient
	dialer     core.TransportDialer
	publisher  *Publisher
	subscriber *Subscriber
	relay      *Relay

	baseCtx context.Context
	events  chan loopEvent
	done    chan struct{}
	state   atomic.Value // domain.SessionState

	// run-loop confined from here on
	sess      *domain.Session
	gen       uint64
	genCtx    context.Context
	cancelGen context.CancelFunc
	transport core.Transport
}

func NewController(
	ctx context.Context,
	tokens core.TokenClient,
	dialer core.TransportDialer,
	publisher *Publisher,
	subscriber *Subscriber,
	relay *Relay,
) *Controller {
	c := &Controller{
		tokens:     tokens,
		dialer:     dialer,
		publisher:  publisher,
		subscriber: subscriber,
		relay:      relay,
		baseCtx:    ctx,
		events:     make(chan loopEvent, 16),
		done:       make(chan struct{}),
		sess:       domain.NewSession(),
	}
	c.state.Store(domain.StateIdle)
	go c.loop(ctx)
	return c
}

// State returns the last published session state. Safe from any goroutine.
func (c *Controller) State() domain.SessionState {
	return c.state.Load().(domain.SessionState)
}

// Connect starts a new session attempt. It is rejected while a session is
// connecting or connected; a terminal session is replaced by a fresh one.
func (c *Controller) Connect(req core.CredentialRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	ev := loopEvent{kind: evConnect, req: req, reply: make(chan error, 1)}
	select {
	case c.events <- ev:
	case <-c.done:
		return ErrControllerClosed
	}
	select {
	case err := <-ev.reply:
		return err
	case <-c.done:
		return ErrControllerClosed
	}
}

// Disconnect tears the session down. It is idempotent: calling it from
// Idle or a terminal state is a no-op. A disconnect issued while a connect
// is in flight supersedes that attempt; its pending results are discarded.
func (c *Controller) Disconnect() {
	ev := loopEvent{kind: evDisconnect, reply: make(chan error, 1)}
	select {
	case c.events <- ev:
	case <-c.done:
		return
	}
	select {
	case <-ev.reply:
	case <-c.done:
	}
}

// Close disconnects and stops the run loop. The controller is unusable
// afterwards.
func (c *Controller) Close() {
	c.Disconnect()
	select {
	case c.events <- loopEvent{kind: evShutdown}:
	case <-c.done:
	}
	<-c.done
}

func (c *Controller) post(ev loopEvent) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *Controller) loop(ctx context.Context) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			c.teardown()
			return
		case ev := <-c.events:
			if c.handle(ev) {
				return
			}
		}
	}
}

// handle applies one loop event; it returns true when the loop should exit.
func (c *Controller) handle(ev loopEvent) bool {
	switch ev.kind {
	case evConnect:
		c.onConnect(ev)
	case evDisconnect:
		c.onDisconnect(ev)
	case evShutdown:
		c.teardown()
		return true
	case evCredential:
		c.onCredential(ev)
	case evTransportUp:
		c.onTransportUp(ev)
	case evPublished:
		c.onPublished(ev)
	case evTransport:
		c.onTransportEvent(ev)
	}
	return false
}

func (c *Controller) onConnect(ev loopEvent) {
	if !c.sess.State.CanConnect() {
		ev.reply <- ErrSessionActive
		return
	}

	c.gen++
	gen := c.gen
	c.genCtx, c.cancelGen = context.WithCancel(c.baseCtx)
	c.sess = domain.NewSession()
	c.setState(domain.StateRequesting)
	ev.reply <- nil

	ctx, req := c.genCtx, ev.req
	go func() {
		cred, err := c.tokens.RequestCredential(ctx, req)
		c.post(loopEvent{kind: evCredential, gen: gen, cred: cred, err: err})
	}()
}

func (c *Controller) onDisconnect(ev loopEvent) {
	defer func() { ev.reply <- nil }()
	if c.sess.State == domain.StateIdle || c.sess.State.Terminal() {
		return
	}
	c.gen++ // supersede any in-flight attempt
	c.teardown()
	c.setState(domain.StateDisconnected)
}

func (c *Controller) onCredential(ev loopEvent) {
	if ev.gen != c.gen {
		return
	}
	if ev.err != nil {
		c.fail(ev.err)
		return
	}
	if !ev.cred.Complete() {
		c.fail(&core.AuthError{Reason: core.AuthMalformedBody, Op: "session.credential"})
		return
	}

	c.sess.Credential = ev.cred
	c.setState(domain.StateConnecting)

	gen, ctx, cred := ev.gen, c.genCtx, ev.cred
	go func() {
		t, err := c.dialer.NewTransport()
		if err == nil {
			if err = t.Connect(ctx, cred.URL, cred.Token); err != nil {
				_ = t.Close()
				t = nil
			}
		}
		c.post(loopEvent{kind: evTransportUp, gen: gen, transport: t, err: err})
	}()
}

func (c *Controller) onTransportUp(ev loopEvent) {
	if ev.gen != c.gen {
		// A superseded attempt may still have opened a transport; close it
		// so no session leaks past its generation.
		if ev.transport != nil {
			_ = ev.transport.Close()
		}
		return
	}
	if ev.err != nil {
		c.fail(wrapTransport(core.TransportConnectFailed, "session.connect", ev.err))
		return
	}

	c.transport = ev.transport
	go c.pump(ev.gen, ev.transport.Events())
	c.setState(domain.StatePublishing)

	gen, ctx := ev.gen, c.genCtx
	t, current, identity := c.transport, c.sess.Local, c.sess.Credential.Identity
	go func() {
		h, err := c.publisher.PublishLocalAudio(ctx, t, current, identity)
		c.post(loopEvent{kind: evPublished, gen: gen, handle: h, err: err})
	}()
}

func (c *Controller) onPublished(ev loopEvent) {
	if ev.gen != c.gen {
		if ev.handle != nil {
			_ = ev.handle.Detach()
		}
		return
	}
	if ev.err != nil {
		// Publish-stage policy: tear the transport down even though it
		// connected; a session without a local track is not usable here.
		if core.IsDeviceError(ev.err) {
			c.fail(ev.err)
		} else {
			c.fail(wrapTransport(core.TransportConnectFailed, "session.publish", ev.err))
		}
		return
	}

	c.sess.Local = ev.handle
	c.setState(domain.StateConnected)
}

func (c *Controller) onTransportEvent(ev loopEvent) {
	if ev.gen != c.gen {
		return
	}
	switch ev.tev.Kind {
	case core.EventTrackSubscribed:
		c.subscriber.HandleSubscribed(c.sess, ev.tev.Track)
	case core.EventTrackUnsubscribed:
		c.subscriber.HandleUnsubscribed(c.sess, ev.tev.Participant, ev.tev.TrackID)
	case core.EventDisconnected:
		if ev.tev.Err != nil {
			c.fail(wrapTransport(core.TransportDisconnected, "session.signal", ev.tev.Err))
			return
		}
		c.gen++
		c.teardown()
		c.setState(domain.StateDisconnected)
	case core.EventMediaDeviceError:
		c.subscriber.HandleDeviceError(ev.tev.Err)
	}
}

// pump forwards transport events into the run loop, preserving arrival
// order. It exits when the transport closes its event channel.
func (c *Controller) pump(gen uint64, events <-chan core.TransportEvent) {
	for tev := range events {
		c.post(loopEvent{kind: evTransport, gen: gen, tev: tev})
	}
}

func (c *Controller) setState(s domain.SessionState) {
	c.sess.State = s
	c.state.Store(s)
	log.Info().Str("module", "session.controller").Str("state", string(s)).Msg("state change")
	c.relay.relayState(s)
}

// fail moves the session to Failed, releases its resources and relays the
// error exactly once.
func (c *Controller) fail(err error) {
	c.gen++
	c.teardown()
	c.setState(domain.StateFailed)
	log.Error().Err(err).Str("module", "session.controller").Msg("session failed")
	c.relay.relayError(err)
}

// teardown releases every outstanding track handle and the transport,
// regardless of which state triggered it.
func (c *Controller) teardown() {
	if c.cancelGen != nil {
		c.cancelGen()
		c.cancelGen = nil
	}
	c.subscriber.ReleaseAll(c.sess)
	if c.sess.Local != nil {
		_ = c.sess.Local.Detach()
		c.sess.Local = nil
	}
	if c.transport != nil {
		if err := c.transport.Close(); err != nil {
			log.Error().Err(err).Str("module", "session.controller").Msg("transport close error")
		}
		c.transport = nil
	}
}

func wrapTransport(reason core.TransportReason, op string, err error) error {
	if core.IsTransportError(err) {
		return err
	}
	return &core.TransportError{Reason: reason, Op: op, Err: err}
}

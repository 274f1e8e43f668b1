package rtc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
)

const writeWait = 5 * time.Second

// message is the JSON envelope exchanged with the signaling endpoint.
type message struct {
	Type          string  `json:"type"`
	SDP           string  `json:"sdp,omitempty"`
	Candidate     string  `json:"candidate,omitempty"`
	SDPMid        *string `json:"sdpMid,omitempty"`
	SDPMLineIndex *uint16 `json:"sdpMLineIndex,omitempty"`
	Participant   string  `json:"participant,omitempty"`
	TrackID       string  `json:"track_id,omitempty"`
	Error         string  `json:"error,omitempty"`
}

func candidateMessage(ci webrtc.ICECandidateInit) message {
	return message{
		Type:          "candidate",
		Candidate:     ci.Candidate,
		SDPMid:        ci.SDPMid,
		SDPMLineIndex: ci.SDPMLineIndex,
	}
}

func (m message) candidateInit() webrtc.ICECandidateInit {
	return webrtc.ICECandidateInit{
		Candidate:     m.Candidate,
		SDPMid:        m.SDPMid,
		SDPMLineIndex: m.SDPMLineIndex,
	}
}

// signalConn is the websocket leg towards the media engine. Writes are
// serialized; reads happen from the transport's read loop only.
type signalConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// dialSignal opens the signaling socket, presenting the credential token as
// a bearer header. http(s) URLs are rewritten to their ws(s) counterparts.
func dialSignal(ctx context.Context, rawURL, token string) (*signalConn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("signal url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("signal url: unsupported scheme %q", u.Scheme)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("signal dial: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("signal dial: %w", err)
	}
	return &signalConn{conn: conn}, nil
}

func (s *signalConn) send(m message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(m)
}

func (s *signalConn) read() (message, error) {
	var m message
	err := s.conn.ReadJSON(&m)
	return m, err
}

func (s *signalConn) close() {
	_ = s.conn.Close()
}

// Package token implements the HTTP client for the token service, which
// maps a room/identity or role payload to a signed credential plus
// connection URL.
package token

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avoline/intervu/internal/core"
	"github.com/avoline/intervu/internal/domain"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	httpc   *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
}

// NewClientWith allows callers to supply their own http.Client (proxies,
// custom timeouts, test doubles).
func NewClientWith(baseURL string, httpc *http.Client) *Client {
	return &Client{baseURL: baseURL, httpc: httpc}
}

type sessionRequest struct {
	Room     string `json:"room"`
	Identity string `json:"identity"`
}

type interviewRequest struct {
	Role   string   `json:"role"`
	JD     string   `json:"jd"`
	Skills []string `json:"skills"`
}

type credentialResponse struct {
	Token    string `json:"token"`
	URL      string `json:"url"`
	Room     string `json:"room,omitempty"`
	Identity string `json:"identity,omitempty"`
}

// RequestCredential performs a single attempt against the token service;
// the caller decides whether to retry. Non-2xx responses and network
// failures yield AuthError non_2xx, undecodable or partially populated
// bodies yield AuthError malformed_body — never a partial credential.
func (c *Client) RequestCredential(ctx context.Context, req core.CredentialRequest) (*domain.Credential, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		op   string
		body any
	)
	if req.ByRoom() {
		op = "token.session"
		body = sessionRequest{Room: req.Room, Identity: req.Identity}
	} else {
		op = "token.start_interview"
		body = interviewRequest{Role: req.Role, JD: req.JD, Skills: req.Skills}
	}

	resp, err := c.do(ctx, op, body)
	if err != nil {
		return nil, err
	}

	cred := &domain.Credential{
		Identity: domain.Identity(resp.Identity),
		RoomName: domain.RoomName(resp.Room),
		Token:    resp.Token,
		URL:      resp.URL,
	}
	if req.ByRoom() {
		// The /session endpoint echoes nothing back; the pair comes from
		// the request itself.
		cred.Identity = domain.Identity(req.Identity)
		cred.RoomName = domain.RoomName(req.Room)
	}
	if !cred.Complete() {
		return nil, &core.AuthError{
			Reason: core.AuthMalformedBody,
			Op:     op,
			Err:    fmt.Errorf("credential fields missing in response"),
		}
	}

	log.Info().
		Str("module", "token").
		Str("room", string(cred.RoomName)).
		Str("identity", string(cred.Identity)).
		Msg("credential obtained")
	return cred, nil
}

func (c *Client) do(ctx context.Context, op string, body any) (*credentialResponse, error) {
	path := "/session"
	if op == "token.start_interview" {
		path = "/start_interview"
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &core.AuthError{Reason: core.AuthMalformedBody, Op: op, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, &core.AuthError{Reason: core.AuthNon2xx, Op: op, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, &core.AuthError{Reason: core.AuthNon2xx, Op: op, Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &core.AuthError{
			Reason: core.AuthNon2xx,
			Op:     op,
			Err:    fmt.Errorf("token service returned %d", httpResp.StatusCode),
		}
	}

	var resp credentialResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, &core.AuthError{Reason: core.AuthMalformedBody, Op: op, Err: err}
	}
	return &resp, nil
}

package core

import (
	"context"
	"errors"

	"github.com/avoline/intervu/internal/domain"
)

var ErrEmptyRequest = errors.New("credential request needs a room/identity pair or a role")

// CredentialRequest is one of two payload shapes: an explicit room/identity
// pair, or a role plus job description for which the token service allocates
// an interview room.
type CredentialRequest struct {
	Room     string
	Identity string

	Role   string
	JD     string
	Skills []string
}

// ByRoom reports whether the request addresses an existing room directly.
func (r CredentialRequest) ByRoom() bool { return r.Room != "" }

func (r CredentialRequest) Validate() error {
	if r.Room == "" && r.Role == "" {
		return ErrEmptyRequest
	}
	return nil
}

// TokenClient maps a credential request to a signed credential plus
// connection URL. A single attempt, no retries; callers decide whether to
// retry a failed request.
type TokenClient interface {
	RequestCredential(ctx context.Context, req CredentialRequest) (*domain.Credential, error)
}

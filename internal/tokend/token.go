// Package tokend implements the token service: it maps a room/identity or
// role payload to a signed room-join credential for the media engine.
package tokend

import (
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// videoGrant is the room-join claim the media engine checks.
type videoGrant struct {
	RoomJoin bool   `json:"roomJoin"`
	Room     string `json:"room"`
}

type accessClaims struct {
	Video    videoGrant `json:"video"`
	Metadata string     `json:"metadata,omitempty"`
	jwt.RegisteredClaims
}

// InterviewMeta travels inside the token so the interviewer agent knows
// what to ask about.
type InterviewMeta struct {
	Role   string   `json:"role"`
	JD     string   `json:"jd"`
	Skills []string `json:"skills"`
}

// Issuer mints HS256 room-join tokens scoped to one identity and room.
type Issuer struct {
	apiKey    string
	apiSecret string
	ttl       time.Duration
}

func NewIssuer(apiKey, apiSecret string, ttl time.Duration) *Issuer {
	return &Issuer{apiKey: apiKey, apiSecret: apiSecret, ttl: ttl}
}

func (i *Issuer) Mint(identity, room string, meta *InterviewMeta) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Video: videoGrant{RoomJoin: true, Room: room},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.apiKey,
			Subject:   identity,
			ID:        uuid.NewString(),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	if meta != nil {
		b, err := json.Marshal(meta)
		if err != nil {
			return "", err
		}
		claims.Metadata = string(b)
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(i.apiSecret))
}

package domain

type (
	RoomName string
	Identity string
)

// Credential is a single-use grant issued by the token service.
// It is immutable once obtained and consumed by exactly one transport connect.
type Credential struct {
	Identity Identity
	RoomName RoomName
	Token    string // opaque signed token, never inspected by the client
	URL      string
}

// Complete reports whether every field the transport needs is present.
func (c *Credential) Complete() bool {
	return c != nil && c.Identity != "" && c.RoomName != "" && c.Token != "" && c.URL != ""
}

package tokend

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	issuer *Issuer
	url    string // advertised media engine URL handed back with every token
}

func NewHandler(issuer *Issuer, url string) *Handler {
	return &Handler{issuer: issuer, url: url}
}

type sessionRequest struct {
	Room     string `json:"room" binding:"required"`
	Identity string `json:"identity" binding:"required"`
}

type sessionResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// handleSession issues a credential for an explicit room/identity pair.
func (h *Handler) handleSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing room or identity"})
		return
	}

	token, err := h.issuer.Mint(req.Identity, req.Room, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "tokend").Msg("mint session token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token signing failed"})
		return
	}

	log.Info().Str("module", "tokend").Str("room", req.Room).Str("identity", req.Identity).Msg("session token issued")
	c.JSON(http.StatusOK, sessionResponse{Token: token, URL: h.url})
}

type interviewRequest struct {
	Role   string   `json:"role" binding:"required"`
	JD     string   `json:"jd"`
	Skills []string `json:"skills"`
}

type interviewResponse struct {
	Token    string `json:"token"`
	URL      string `json:"url"`
	Room     string `json:"room"`
	Identity string `json:"identity"`
}

// handleStartInterview allocates a fresh interview room plus candidate
// identity and embeds the role metadata for agent dispatch.
func (h *Handler) handleStartInterview(c *gin.Context) {
	var req interviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing role"})
		return
	}

	room := fmt.Sprintf("interview-%s", uuid.NewString()[:8])
	identity := fmt.Sprintf("candidate-%s", uuid.NewString()[:8])
	meta := &InterviewMeta{Role: req.Role, JD: req.JD, Skills: req.Skills}

	token, err := h.issuer.Mint(identity, room, meta)
	if err != nil {
		log.Error().Err(err).Str("module", "tokend").Msg("mint interview token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token signing failed"})
		return
	}

	log.Info().Str("module", "tokend").Str("room", room).Str("role", req.Role).Msg("interview started")
	c.JSON(http.StatusOK, interviewResponse{Token: token, URL: h.url, Room: room, Identity: identity})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ukydev/pantry-finder/internal/middleware"
)

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	Topic     string `json:"location_topic,omitempty"`
}

// CreateSession handles POST /api/sessions
func (h *PantryHandler) CreateSession(c *gin.Context) {
	sess, err := h.registry.Create()
	if err != nil {
		h.log.WithError(err).Error("Failed to create session")
		h.fail(c, err)
		return
	}

	token, err := h.authService.GenerateToken(sess.ID)
	if err != nil {
		h.log.WithError(err).Error("Failed to generate token")
		_ = h.registry.Remove(sess.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	resp := SessionResponse{
		SessionID: sess.ID,
		Token:     token,
		ExpiresIn: int64(h.authService.Expiry().Seconds()),
	}
	if h.registry.cfg.Relay != nil {
		resp.Topic = h.registry.Topic(sess.ID)
	}
	c.JSON(http.StatusCreated, resp)
}

// DeleteSession handles DELETE /api/sessions
func (h *PantryHandler) DeleteSession(c *gin.Context) {
	claims, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session context not found"})
		return
	}
	if err := h.registry.Remove(claims.SessionID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

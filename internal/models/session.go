package models

// SessionClaims represents the JWT claims identifying one presentation session.
type SessionClaims struct {
	SessionID string `json:"session_id"`
	Exp       int64  `json:"exp"`
}

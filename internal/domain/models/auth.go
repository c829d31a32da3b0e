package models

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the JWT claims carried by authenticated requests.
// The subject is the numeric user id issued at login.
type SessionClaims struct {
	Username string `json:"username,omitempty"`
	Admin    bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim as a user id.
func (c *SessionClaims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

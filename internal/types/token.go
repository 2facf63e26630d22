package types

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var errMissingUserID = errors.New("token has no user id")

// TokenClaims are the claims carried by an access token. The registered
// claims supply exp/iat/sub; UserID is the account the token was issued to.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

// Validate is called by the jwt parser after the registered claims pass
func (c *TokenClaims) Validate() error {
	if c.UserID == uuid.Nil {
		return errMissingUserID
	}
	return nil
}

package helpers

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload: the user id and email plus the registered
// claims (exp, iat, iss, sub).
type Claims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// resolveUserID falls back to the subject claim for tokens minted by an
// external issuer that only sets sub.
func (c *Claims) resolveUserID() bool {
	if c.UserID > 0 {
		return true
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return false
	}
	c.UserID = id
	return true
}

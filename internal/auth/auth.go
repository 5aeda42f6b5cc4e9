package auth

import "errors"

// ErrInvalidToken is returned by token verification for a bad signature,
// wrong token kind or expiry.
var ErrInvalidToken = errors.New("invalid or expired token")

// UserContextKey is the key used to store the authenticated user in the Gin context.
const UserContextKey = "user"

// ClaimsContextKey is the key used to store verified token claims in the Gin context.
const ClaimsContextKey = "claims"

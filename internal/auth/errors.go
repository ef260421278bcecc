package auth

import "errors"

// ErrInvalidToken is returned for tokens that fail validation.
var ErrInvalidToken = errors.New("auth: invalid token")

package auth

import "errors"

var (
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

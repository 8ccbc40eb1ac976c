package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid login id or password")
	ErrUnknownRole        = errors.New("unknown role")
)

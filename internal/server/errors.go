package server

import "errors"

// Server-specific errors
var (
	ErrServerClosed    = errors.New("server is closed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidPlayer   = errors.New("player index out of range")
	ErrRateLimited     = errors.New("tick rate limit exceeded")
	ErrInvalidMessage  = errors.New("invalid message")
	ErrTreeUnavailable = errors.New("behaviour tree unavailable")
)

package core

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidAddress   = errors.New("invalid wallet address")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidChallenge = errors.New("invalid or expired challenge")
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrRateLimited      = errors.New("rate limited")
	ErrUpstreamFailed   = errors.New("upstream unavailable")
	ErrStoreFailed      = errors.New("store operation failed")
)

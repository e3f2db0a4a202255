package client

import "errors"

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrDecode       = errors.New("malformed response")
	ErrUnauthorized = errors.New("unauthorized")
)

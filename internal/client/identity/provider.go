// Package identity wraps the external identity provider: interactive sign-in
// yielding a credential, and the provider-side state of a known user.
package identity

import (
	"context"
	"errors"
)

type CredentialState int

const (
	NotFound CredentialState = iota
	Authorized
	Revoked
)

func (s CredentialState) String() string {
	switch s {
	case Authorized:
		return "authorized"
	case Revoked:
		return "revoked"
	default:
		return "not found"
	}
}

// Credential is the result of a successful interactive sign-in.
type Credential struct {
	UserID            string
	Email             *string
	AuthorizationCode []byte
	IdentityToken     []byte
}

var ErrCanceled = errors.New("sign-in canceled")

type Provider interface {
	// SignIn runs the interactive flow. It blocks until the user is done.
	SignIn(ctx context.Context) (Credential, error)
	CredentialState(ctx context.Context, userID string) (CredentialState, error)
}

package client

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/aln/internal/client/models"
)

type Client interface {
	Login(ctx context.Context, cred LoginCredential) (LoginResponse, error)
	CheckSession(ctx context.Context, userID string) (CheckSessionResponse, error)
	Logout(ctx context.Context) (StatusResponse, error)

	GetFeederStatus(ctx context.Context, feederID int64) (models.FeederState, error)
	SetFeederName(ctx context.Context, feederID int64, name string) (StatusResponse, error)
	SetFeederDefaultAmount(ctx context.Context, feederID int64, amount models.Amount) (StatusResponse, error)
	FeedNow(ctx context.Context, feederID int64, amount models.Amount) (StatusResponse, error)
	GetFeederPlan(ctx context.Context, feederID int64) (*models.ScheduledFeedingPlan, error)
	SetFeederPlan(ctx context.Context, feederID int64, plan *models.ScheduledFeedingPlan) (StatusResponse, error)

	// RestoreSessionCookie puts a persisted session cookie back into the transport.
	RestoreSessionCookie(s models.Session)
	// SessionCookie returns the backend session cookie currently held, if any.
	SessionCookie() (models.Session, bool)
	// ClearCookies drops every transport cookie.
	ClearCookies()

	Ping(ctx context.Context) error
}

// LoginCredential is what the identity provider hands over after an
// interactive sign-in.
type LoginCredential struct {
	AppleID           string  `json:"appleId"`
	Email             *string `json:"email,omitempty"`
	AuthorizationCode []byte  `json:"authorizationCode,omitempty"`
	IdentityToken     []byte  `json:"identityToken,omitempty"`
}

type StatusResponse struct {
	Success bool `json:"success"`
}

func (r StatusResponse) accepted() bool { return r.Success }

type LoginResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user,omitempty"`
	Token   string       `json:"token,omitempty"`
}

func (r LoginResponse) accepted() bool { return r.Success }

type CheckSessionResponse struct {
	LoggedIn bool         `json:"logged_in"`
	User     *models.User `json:"user,omitempty"`
	Token    string       `json:"token,omitempty"`
}

func (r CheckSessionResponse) accepted() bool { return r.LoggedIn }

// UnmarshalJSON accepts loggedIn as well as logged_in.
func (r *CheckSessionResponse) UnmarshalJSON(b []byte) error {
	type plain CheckSessionResponse
	var w struct {
		plain
		LoggedInCamel *bool `json:"loggedIn"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = CheckSessionResponse(w.plain)
	if w.LoggedInCamel != nil {
		r.LoggedIn = *w.LoggedInCamel
	}
	return nil
}

package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/aln/internal/client/client"
	"github.com/dmitrijs2005/aln/internal/client/credentials"
	"github.com/dmitrijs2005/aln/internal/client/identity"
	"github.com/dmitrijs2005/aln/internal/client/metrics"
	"github.com/dmitrijs2005/aln/internal/client/models"
	"github.com/dmitrijs2005/aln/internal/logging"
)

type Phase int

const (
	Loading Phase = iota
	NoConnectivity
	NotAuthenticated
	Authenticated
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case NoConnectivity:
		return "no_connectivity"
	case NotAuthenticated:
		return "not_authenticated"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State is the published authentication state. User is set only when
// Phase is Authenticated.
type State struct {
	Phase Phase
	User  *models.User
}

func (s State) String() string { return s.Phase.String() }

// Auth is the authentication state machine.
type Auth struct {
	client   client.Client
	tokens   *client.TokenHolder
	store    credentials.Store
	provider identity.Provider
	metrics  metrics.Recorder
	log      logging.Logger

	events chan func(ctx context.Context)
	done   chan struct{}

	mu        sync.RWMutex
	state     State
	observers map[int]func(State)
	nextObs   int

	signingIn atomic.Bool
}

func NewAuth(c client.Client, tokens *client.TokenHolder, store credentials.Store, provider identity.Provider, rec metrics.Recorder, log logging.Logger) *Auth {
	return &Auth{
		client:    c,
		tokens:    tokens,
		store:     store,
		provider:  provider,
		metrics:   rec,
		log:       log.With("component", "auth"),
		events:    make(chan func(ctx context.Context), 64),
		done:      make(chan struct{}),
		state:     State{Phase: Loading},
		observers: make(map[int]func(State)),
	}
}

// Run drives the state machine until ctx is done. It must be called exactly once.
func (a *Auth) Run(ctx context.Context) {
	defer close(a.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-a.events:
			fn(ctx)
		}
	}
}

// post queues fn for the loop. It is dropped once the loop has stopped.
func (a *Auth) post(fn func(ctx context.Context)) {
	select {
	case a.events <- fn:
	case <-a.done:
	}
}

// State returns the current state. Safe from any goroutine.
func (a *Auth) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Subscribe registers fn to be called on the loop after every transition.
// The returned function unregisters it.
func (a *Auth) Subscribe(fn func(State)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextObs
	a.nextObs++
	a.observers[id] = fn
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.observers, id)
	}
}

// setState must only be called on the loop.
func (a *Auth) setState(ctx context.Context, s State) {
	a.mu.Lock()
	prev := a.state
	a.state = s
	obs := make([]func(State), 0, len(a.observers))
	for _, fn := range a.observers {
		obs = append(obs, fn)
	}
	a.mu.Unlock()

	if prev.Phase != s.Phase {
		a.log.Info(ctx, "auth state changed", "from", prev.Phase, "to", s.Phase)
	}
	a.metrics.RecordStateChange(s.Phase.String())
	for _, fn := range obs {
		fn(s)
	}
}

// SetReachable feeds the connectivity signal. Losing connectivity moves
// Loading and NotAuthenticated to NoConnectivity; an authenticated session is
// kept. Regaining it from NoConnectivity re-attempts the restore.
func (a *Auth) SetReachable(online bool) {
	a.post(func(ctx context.Context) {
		phase := a.State().Phase
		switch {
		case !online && (phase == Loading || phase == NotAuthenticated):
			a.setState(ctx, State{Phase: NoConnectivity})
		case online && phase == NoConnectivity:
			a.setState(ctx, State{Phase: Loading})
			go a.restore(ctx)
		}
	})
}

// RestoreSession tries to resume the previous session silently. It does
// nothing while there is no connectivity; the restore is retried when it
// comes back.
func (a *Auth) RestoreSession() {
	a.post(func(ctx context.Context) {
		if a.State().Phase == NoConnectivity {
			a.log.Debug(ctx, "restore deferred until connectivity returns")
			return
		}
		go a.restore(ctx)
	})
}

func (a *Auth) restore(ctx context.Context) {
	id, ok, err := a.store.LoadUserIdentifier(ctx)
	if err != nil {
		a.log.Error(ctx, "load user identifier", "error", err)
	}
	if !ok {
		a.log.Info(ctx, "no stored user identifier")
		a.post(func(ctx context.Context) {
			a.setState(ctx, State{Phase: NotAuthenticated})
		})
		return
	}

	st, err := a.provider.CredentialState(ctx, id)
	if err != nil {
		a.log.Warn(ctx, "credential state", "error", err)
	}
	if err != nil || st != identity.Authorized {
		a.log.Info(ctx, "stored identity no longer authorized", "state", st)
		a.forget(ctx)
		a.post(func(ctx context.Context) {
			a.tokens.Clear()
			a.setState(ctx, State{Phase: NotAuthenticated})
		})
		return
	}

	sess, ok, err := a.store.LoadSession(ctx)
	if err != nil {
		a.log.Warn(ctx, "load session cookie", "error", err)
	}
	if ok {
		a.client.RestoreSessionCookie(sess)
	}

	resp, err := a.client.CheckSession(ctx, id)
	if err == nil && resp.LoggedIn && resp.User != nil && resp.Token != "" {
		a.post(func(ctx context.Context) {
			a.tokens.Set(resp.Token)
			a.setState(ctx, State{Phase: Authenticated, User: resp.User})
		})
		return
	}

	a.log.Info(ctx, "server session expired, signing in again", "error", err)
	if err := a.store.ClearSession(ctx); err != nil {
		a.log.Warn(ctx, "clear session cookie", "error", err)
	}
	a.client.ClearCookies()
	a.post(func(ctx context.Context) {
		a.tokens.Clear()
		a.startSignIn(ctx, nil)
	})
}

// SignIn starts the interactive identity-provider flow and logs in with its
// result. A sign-in already in progress makes this a no-op.
func (a *Auth) SignIn(onError func()) {
	a.post(func(ctx context.Context) {
		a.startSignIn(ctx, onError)
	})
}

func (a *Auth) startSignIn(ctx context.Context, onError func()) {
	if !a.signingIn.CompareAndSwap(false, true) {
		return
	}
	go func() {
		cred, err := a.provider.SignIn(ctx)
		a.signingIn.Store(false)
		if err != nil {
			a.log.Warn(ctx, "interactive sign-in failed", "error", err)
			a.post(func(ctx context.Context) {
				a.setState(ctx, State{Phase: NotAuthenticated})
				if onError != nil {
					onError()
				}
			})
			return
		}
		a.login(ctx, cred, onError)
	}()
}

// AttemptLogin logs in with a credential obtained from the identity
// provider. onError, if set, runs on the loop when the login fails.
func (a *Auth) AttemptLogin(cred identity.Credential, onError func()) {
	a.post(func(ctx context.Context) {
		go a.login(ctx, cred, onError)
	})
}

func (a *Auth) login(ctx context.Context, cred identity.Credential, onError func()) {
	a.log.Debug(ctx, "logging in", "user_id", cred.UserID)

	resp, err := a.client.Login(ctx, client.LoginCredential{
		AppleID:           cred.UserID,
		Email:             cred.Email,
		AuthorizationCode: cred.AuthorizationCode,
		IdentityToken:     cred.IdentityToken,
	})
	if err != nil || !resp.Success || resp.User == nil || resp.Token == "" {
		a.log.Info(ctx, "could not log in", "error", err)
		a.post(func(ctx context.Context) {
			a.setState(ctx, State{Phase: NotAuthenticated})
			if onError != nil {
				onError()
			}
		})
		return
	}

	if err := a.store.SaveUserIdentifier(ctx, cred.UserID); err != nil {
		a.log.Error(ctx, "save user identifier", "error", err)
	}
	if sess, ok := a.client.SessionCookie(); ok {
		if err := a.store.SaveSession(ctx, sess); err != nil {
			a.log.Error(ctx, "save session cookie", "error", err)
		}
	}

	a.log.Info(ctx, "logged in", "email", resp.User.DisplayEmail())
	a.post(func(ctx context.Context) {
		a.tokens.Set(resp.Token)
		a.setState(ctx, State{Phase: Authenticated, User: resp.User})
	})
}

// Logout tells the backend (best effort) and then forgets every credential.
func (a *Auth) Logout() {
	a.post(func(ctx context.Context) {
		go func() {
			if _, err := a.client.Logout(ctx); err != nil {
				a.log.Warn(ctx, "remote logout", "error", err)
			}
			a.forget(ctx)
			a.post(func(ctx context.Context) {
				a.tokens.Clear()
				a.setState(ctx, State{Phase: NotAuthenticated})
			})
		}()
	})
}

// forget clears the durable identifier, the stored session cookie and the
// transport cookies.
func (a *Auth) forget(ctx context.Context) {
	if err := a.store.ClearUserIdentifier(ctx); err != nil {
		a.log.Warn(ctx, "clear user identifier", "error", err)
	}
	if err := a.store.ClearSession(ctx); err != nil {
		a.log.Warn(ctx, "clear session cookie", "error", err)
	}
	a.client.ClearCookies()
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/aln/internal/client/services"
	"github.com/dmitrijs2005/aln/internal/common"
)

// getPassword is swapped in tests.
var getPassword = GetPassword

const maxUnlockAttempts = 3

var (
	errOffline     = errors.New("no internet connection")
	errNotSignedIn = errors.New("sign-in did not complete")
)

// unlock asks for the passphrase of the local credential store. On a fresh
// database the first passphrase entered becomes the passphrase.
func (a *App) unlock(ctx context.Context) error {
	initialized, err := a.vault.Initialized(ctx)
	if err != nil {
		return err
	}
	prompt := "Passphrase"
	if !initialized {
		fmt.Fprintln(a.out, "Choose a passphrase to protect the saved sign-in")
		prompt = "New passphrase"
	}

	for attempt := 0; attempt < maxUnlockAttempts; attempt++ {
		pw, err := a.readSecret(ctx, prompt)
		if err != nil {
			return err
		}
		if len(pw) == 0 {
			fmt.Fprintln(a.out, "Passphrase must not be empty")
			continue
		}

		err = a.vault.Unlock(ctx, pw)
		common.WipeByteArray(pw)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, common.ErrorUnauthorized):
			fmt.Fprintln(a.out, "Wrong passphrase")
		default:
			return err
		}
	}
	return common.ErrorUnauthorized
}

func (a *App) readSecret(ctx context.Context, prompt string) ([]byte, error) {
	if a.terminal {
		return getPassword(a.out, prompt)
	}
	a.console.start()
	fmt.Fprint(a.out, prompt+": ")
	line, ok := a.console.ReadLine(ctx)
	if !ok {
		return nil, io.EOF
	}
	return []byte(line), nil
}

// onAuthState runs on the auth loop for every transition.
func (a *App) onAuthState(s services.State) {
	switch s.Phase {
	case services.Authenticated:
		fmt.Fprintf(a.out, "Signed in as %s\n", s.User.DisplayEmail())
	case services.NoConnectivity:
		fmt.Fprintln(a.out, "No internet connection")
	case services.NotAuthenticated:
		fmt.Fprintln(a.out, "Not signed in (type 'login')")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if s.Phase != services.Authenticated {
		a.deselectLocked()
	}
	a.generation++
	close(a.changed)
	a.changed = make(chan struct{})
}

// waitFor blocks until cond holds, answering prompts from background flows
// meanwhile. It reports false if ctx ended first.
func (a *App) waitFor(ctx context.Context, cond func() bool) bool {
	for {
		a.mu.Lock()
		changed := a.changed
		a.mu.Unlock()
		if cond() {
			return true
		}

		wake := make(chan struct{})
		go func() {
			defer close(wake)
			select {
			case <-changed:
			case <-ctx.Done():
			}
		}()
		a.console.Wait(ctx, wake)
		if ctx.Err() != nil {
			return false
		}
	}
}

func (a *App) currentGeneration() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generation
}

// Login runs the interactive sign-in and waits for its outcome.
func (a *App) Login(ctx context.Context) error {
	switch a.auth.State().Phase {
	case services.Authenticated:
		fmt.Fprintln(a.out, "Already signed in")
		return nil
	case services.NoConnectivity:
		return errOffline
	}

	gen := a.currentGeneration()
	a.auth.SignIn(nil)
	a.waitFor(ctx, func() bool { return a.currentGeneration() != gen })

	if !a.isLoggedIn() {
		return errNotSignedIn
	}
	return nil
}

// Logout signs out and forgets the saved sign-in.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout()
	a.waitFor(ctx, func() bool { return !a.isLoggedIn() })
	return nil
}

// Account prints the signed-in user.
func (a *App) Account(context.Context) error {
	u := a.auth.State().User
	if u == nil {
		return errNotSignedIn
	}
	fmt.Fprintf(a.out, "Email:      %s\n", u.DisplayEmail())
	if u.RegisteredAt != nil {
		fmt.Fprintf(a.out, "Registered: %s\n", u.RegisteredAt.Local().Format("2006-01-02 15:04"))
	}
	if u.LastLogin != nil {
		fmt.Fprintf(a.out, "Last login: %s\n", u.LastLogin.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(a.out, "Feeders:    %d\n", len(u.Feeders))
	return nil
}

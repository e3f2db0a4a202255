package identity

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/aln/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/term"
)

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// PromptFunc shows text and returns one line of user input.
type PromptFunc func(ctx context.Context, text string) (string, error)

// TerminalProvider signs in by asking for an identity token (a JWT issued by
// the identity provider). The token signature is not checked here; the
// backend verifies it.
type TerminalProvider struct {
	prompt PromptFunc
	now    func() time.Time

	mu      sync.Mutex
	expires map[string]time.Time
}

// NewPromptProvider asks for tokens through prompt.
func NewPromptProvider(prompt PromptFunc) *TerminalProvider {
	return &TerminalProvider{prompt: prompt, now: time.Now, expires: make(map[string]time.Time)}
}

// NewTerminalProvider reads tokens from in, hiding input when in is a
// terminal. A *bufio.Reader is used as is so it can be shared with other
// readers of the same input.
func NewTerminalProvider(in io.Reader, out io.Writer) *TerminalProvider {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return NewPromptProvider(func(_ context.Context, text string) (string, error) {
			fmt.Fprint(out, text)
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(out)
			return string(b), err
		})
	}

	r, ok := in.(*bufio.Reader)
	if !ok {
		r = bufio.NewReader(in)
	}
	return NewPromptProvider(func(_ context.Context, text string) (string, error) {
		fmt.Fprint(out, text)
		line, err := r.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", err
		}
		return line, nil
	})
}

func (p *TerminalProvider) SignIn(ctx context.Context) (Credential, error) {
	if err := ctx.Err(); err != nil {
		return Credential{}, err
	}

	raw, err := p.prompt(ctx, "Identity token (empty to cancel): ")
	if err != nil {
		return Credential{}, fmt.Errorf("read identity token: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Credential{}, ErrCanceled
	}

	return p.credentialFromToken(raw)
}

func (p *TerminalProvider) credentialFromToken(raw string) (Credential, error) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return Credential{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Credential{}, fmt.Errorf("%w: missing subject", common.ErrInvalidToken)
	}

	if claims.ExpiresAt != nil {
		p.mu.Lock()
		p.expires[claims.Subject] = claims.ExpiresAt.Time
		p.mu.Unlock()

		if !claims.ExpiresAt.After(p.now()) {
			return Credential{}, fmt.Errorf("%w: expired", common.ErrInvalidToken)
		}
	}

	cred := Credential{UserID: claims.Subject, IdentityToken: []byte(raw)}
	if claims.Email != "" {
		email := claims.Email
		cred.Email = &email
	}
	return cred, nil
}

// CredentialState reports Revoked when the last token seen for userID has
// expired, NotFound for an empty id, and Authorized otherwise.
func (p *TerminalProvider) CredentialState(ctx context.Context, userID string) (CredentialState, error) {
	if err := ctx.Err(); err != nil {
		return NotFound, err
	}
	if userID == "" {
		return NotFound, nil
	}

	p.mu.Lock()
	exp, ok := p.expires[userID]
	p.mu.Unlock()

	if ok && !exp.After(p.now()) {
		return Revoked, nil
	}
	return Authorized, nil
}

package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/aln/internal/client/models"
	"github.com/dmitrijs2005/aln/internal/client/services"
	"github.com/dmitrijs2005/aln/internal/common"
	"github.com/dmitrijs2005/aln/internal/logging"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	mu        sync.Mutex
	state     services.State
	observers []func(services.State)
	signIns   int
	logouts   int
	restores  int

	// onSignIn runs in its own goroutine for every SignIn.
	onSignIn func()
}

func (s *stubAuth) Run(ctx context.Context) { <-ctx.Done() }

func (s *stubAuth) State() services.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *stubAuth) Subscribe(fn func(services.State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
	return func() {}
}

func (s *stubAuth) set(st services.State) {
	s.mu.Lock()
	s.state = st
	obs := append([]func(services.State){}, s.observers...)
	s.mu.Unlock()
	for _, fn := range obs {
		fn(st)
	}
}

func (s *stubAuth) RestoreSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restores++
}

func (s *stubAuth) SignIn(func()) {
	s.mu.Lock()
	s.signIns++
	fn := s.onSignIn
	s.mu.Unlock()
	if fn != nil {
		go fn()
	}
}

func (s *stubAuth) Logout() {
	s.mu.Lock()
	s.logouts++
	s.mu.Unlock()
	go s.set(services.State{Phase: services.NotAuthenticated})
}

type stubFeeders struct {
	status models.FeederState

	feedOK bool
	fed    []int

	plan    *models.ScheduledFeedingPlan
	planErr error
	loads   int

	saveOK bool
	saves  int
	saved  *models.SettingsDraft
}

func (s *stubFeeders) CheckStatus(context.Context, *models.Feeder) models.FeederState {
	return s.status
}

func (s *stubFeeders) FeedNow(_ context.Context, _ *models.Feeder, grams int) (bool, error) {
	if _, err := models.NewAmount(grams); err != nil {
		return false, err
	}
	s.fed = append(s.fed, grams)
	return s.feedOK, nil
}

func (s *stubFeeders) LoadPlan(_ context.Context, _ *models.Feeder, d *models.SettingsDraft) {
	s.loads++
	if s.planErr != nil {
		d.PlanFailed(s.planErr)
		return
	}
	d.PlanLoaded(s.plan.Clone())
}

func (s *stubFeeders) SaveSettings(_ context.Context, _ *models.Feeder, d *models.SettingsDraft) bool {
	s.saves++
	s.saved = d
	return s.saveOK
}

type stubVault struct {
	initialized bool
	want        string
	attempts    []string
	locked      bool
}

func (v *stubVault) Initialized(context.Context) (bool, error) { return v.initialized, nil }
func (v *stubVault) Lock()                                     { v.locked = true }

func (v *stubVault) Unlock(_ context.Context, pw []byte) error {
	v.attempts = append(v.attempts, string(pw))
	if v.initialized && string(pw) != v.want {
		return common.ErrorUnauthorized
	}
	v.initialized = true
	v.want = string(pw)
	return nil
}

// syncBuffer is written from observer goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestApp(t *testing.T, input string, auth *stubAuth, feeders *stubFeeders) (*App, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	a := &App{
		log:     logging.Nop{},
		out:     out,
		console: newConsole(strings.NewReader(input), io.Discard),
		auth:    auth,
		feeders: feeders,
		changed: make(chan struct{}),
	}
	auth.Subscribe(a.onAuthState)
	return a, out
}

func testUser(t *testing.T) *models.User {
	t.Helper()
	email := "owner@example.com"
	amount, err := models.NewAmount(20)
	require.NoError(t, err)
	return &models.User{
		ID:    1,
		Email: &email,
		Feeders: []*models.Feeder{
			models.NewFeeder(1, "Newton", &amount),
			models.NewFeeder(2, "", nil),
		},
	}
}

func signedIn(t *testing.T) *stubAuth {
	t.Helper()
	return &stubAuth{state: services.State{Phase: services.Authenticated, User: testUser(t)}}
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/aln/internal/client/client"
	"github.com/dmitrijs2005/aln/internal/client/identity"
	"github.com/dmitrijs2005/aln/internal/client/models"
	"github.com/stretchr/testify/require"
)

var errTransport = errors.New("connection refused")

// fakeClient implements client.Client. Network calls are recorded by name.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	loginResp client.LoginResponse
	loginErr  error
	lastLogin client.LoginCredential

	checkResp client.CheckSessionResponse
	checkErr  error
	checkedID string

	logoutErr error

	status    models.FeederState
	statusErr error

	nameResp, amountResp, feedResp, planSetResp client.StatusResponse
	nameErr, amountErr, feedErr, planSetErr     error
	lastName                                    string
	lastAmount                                  models.Amount
	lastPlan                                    *models.ScheduledFeedingPlan

	plan    *models.ScheduledFeedingPlan
	planErr error

	held           *models.Session
	restored       *models.Session
	cookiesCleared int

	// hook runs inside each network call, outside the lock.
	hook func(op string)
}

func (f *fakeClient) record(op string) {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	hook := f.hook
	f.mu.Unlock()
	if hook != nil {
		hook(op)
	}
}

func (f *fakeClient) networkCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeClient) Login(_ context.Context, cred client.LoginCredential) (client.LoginResponse, error) {
	f.record("login")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLogin = cred
	return f.loginResp, f.loginErr
}

func (f *fakeClient) CheckSession(_ context.Context, id string) (client.CheckSessionResponse, error) {
	f.record("check_session")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkedID = id
	return f.checkResp, f.checkErr
}

func (f *fakeClient) Logout(context.Context) (client.StatusResponse, error) {
	f.record("logout")
	return client.StatusResponse{Success: f.logoutErr == nil}, f.logoutErr
}

func (f *fakeClient) GetFeederStatus(context.Context, int64) (models.FeederState, error) {
	f.record("status")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.statusErr
}

func (f *fakeClient) SetFeederName(_ context.Context, _ int64, name string) (client.StatusResponse, error) {
	f.record("name")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastName = name
	return f.nameResp, f.nameErr
}

func (f *fakeClient) SetFeederDefaultAmount(_ context.Context, _ int64, a models.Amount) (client.StatusResponse, error) {
	f.record("amount")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAmount = a
	return f.amountResp, f.amountErr
}

func (f *fakeClient) FeedNow(_ context.Context, _ int64, a models.Amount) (client.StatusResponse, error) {
	f.record("feed")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAmount = a
	return f.feedResp, f.feedErr
}

func (f *fakeClient) GetFeederPlan(context.Context, int64) (*models.ScheduledFeedingPlan, error) {
	f.record("plan_get")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.plan, f.planErr
}

func (f *fakeClient) SetFeederPlan(_ context.Context, _ int64, p *models.ScheduledFeedingPlan) (client.StatusResponse, error) {
	f.record("plan_set")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPlan = p
	return f.planSetResp, f.planSetErr
}

func (f *fakeClient) RestoreSessionCookie(s models.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restored = &s
	f.held = &s
}

func (f *fakeClient) SessionCookie() (models.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held == nil {
		return models.Session{}, false
	}
	return *f.held, true
}

func (f *fakeClient) ClearCookies() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.held = nil
	f.cookiesCleared++
}

func (f *fakeClient) Ping(context.Context) error { return nil }

func (f *fakeClient) cleared() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cookiesCleared
}

// memStore implements credentials.Store in memory.
type memStore struct {
	mu      sync.Mutex
	id      string
	session *models.Session
}

func (m *memStore) LoadUserIdentifier(context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, m.id != "", nil
}

func (m *memStore) SaveUserIdentifier(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = id
	return nil
}

func (m *memStore) ClearUserIdentifier(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = ""
	return nil
}

func (m *memStore) LoadSession(context.Context) (models.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return models.Session{}, false, nil
	}
	return *m.session, true, nil
}

func (m *memStore) SaveSession(_ context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = &s
	return nil
}

func (m *memStore) ClearSession(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

func (m *memStore) snapshot() (string, *models.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, m.session
}

// fakeProvider implements identity.Provider.
type fakeProvider struct {
	mu          sync.Mutex
	state       identity.CredentialState
	stateCalls  int
	signIns     int
	signInCred  identity.Credential
	signInErr   error
	signInStart chan struct{}
}

func (p *fakeProvider) SignIn(context.Context) (identity.Credential, error) {
	p.mu.Lock()
	p.signIns++
	start := p.signInStart
	p.signInStart = nil
	cred, err := p.signInCred, p.signInErr
	p.mu.Unlock()
	if start != nil {
		close(start)
	}
	return cred, err
}

func (p *fakeProvider) CredentialState(context.Context, string) (identity.CredentialState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stateCalls++
	return p.state, nil
}

func (p *fakeProvider) counts() (stateCalls, signIns int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateCalls, p.signIns
}

func user(id int64, email string) *models.User {
	return &models.User{ID: id, Email: &email, Feeders: []*models.Feeder{models.NewFeeder(1, "Newton", nil)}}
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond, msg)
}

package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/aln/internal/client/client"
	"github.com/dmitrijs2005/aln/internal/client/config"
	"github.com/dmitrijs2005/aln/internal/client/connectivity"
	"github.com/dmitrijs2005/aln/internal/client/credentials"
	"github.com/dmitrijs2005/aln/internal/client/identity"
	"github.com/dmitrijs2005/aln/internal/client/metrics"
	"github.com/dmitrijs2005/aln/internal/client/models"
	"github.com/dmitrijs2005/aln/internal/client/services"
	"github.com/dmitrijs2005/aln/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"
	"golang.org/x/time/rate"
)

// authService is the part of services.Auth the REPL drives.
type authService interface {
	Run(ctx context.Context)
	State() services.State
	Subscribe(fn func(services.State)) func()
	RestoreSession()
	SignIn(onError func())
	Logout()
}

// feederService is the part of services.Feeders the REPL drives.
type feederService interface {
	CheckStatus(ctx context.Context, f *models.Feeder) models.FeederState
	FeedNow(ctx context.Context, f *models.Feeder, grams int) (bool, error)
	LoadPlan(ctx context.Context, f *models.Feeder, d *models.SettingsDraft)
	SaveSettings(ctx context.Context, f *models.Feeder, d *models.SettingsDraft) bool
}

type vault interface {
	Initialized(ctx context.Context) (bool, error)
	Unlock(ctx context.Context, passphrase []byte) error
	Lock()
}

type App struct {
	config   *config.Config
	log      logging.Logger
	out      io.Writer
	console  *console
	terminal bool

	auth     authService
	feeders  feederService
	vault    vault
	watcher  *connectivity.Watcher
	poller   *services.StatusPoller
	registry *prometheus.Registry
	db       *sql.DB

	mu          sync.Mutex
	changed     chan struct{}
	generation  uint64
	current     *models.Feeder
	status      models.FeederState
	draft       *models.SettingsDraft
	stopPolling context.CancelFunc
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := credentials.OpenDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	store := credentials.NewSQLiteStore(db)

	registry := prometheus.NewRegistry()
	recorder := metrics.NewCollector(registry)

	opts := []client.Option{
		client.WithTimeout(c.RequestTimeout),
		client.WithRecorder(recorder),
		client.WithLogger(log.With("component", "http")),
	}
	if c.RequestRate > 0 {
		opts = append(opts, client.WithRateLimit(rate.Limit(c.RequestRate), max(c.RequestBurst, 1)))
	}

	tokens := &client.TokenHolder{}
	api, err := client.NewHTTPClient(c.ServerBaseURL, tokens, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	con := newConsole(os.Stdin, os.Stdout)
	auth := services.NewAuth(api, tokens, store, identity.NewPromptProvider(con.Prompt), recorder, log)
	feeders := services.NewFeeders(api, log)

	a := &App{
		config:   c,
		log:      log,
		out:      os.Stdout,
		console:  con,
		terminal: term.IsTerminal(int(os.Stdin.Fd())),
		auth:     auth,
		feeders:  feeders,
		vault:    store,
		poller:   services.NewStatusPoller(feeders, c.StatusPollInterval),
		registry: registry,
		db:       db,
		changed:  make(chan struct{}),
	}
	a.watcher = connectivity.NewWatcher(api, c.OnlineCheckInterval, auth.SetReachable, log)
	return a, nil
}

// Run unlocks the credential store, restores the session and runs the REPL
// until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	fmt.Fprintln(a.out, "Welcome to aln (type 'help' for commands)")

	if err := a.unlock(ctx); err != nil {
		return err
	}
	a.console.start()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := a.auth.Subscribe(a.onAuthState)
	defer unsubscribe()
	go a.auth.Run(ctx)

	if a.watcher != nil {
		a.watcher.Check(ctx)
		go a.watcher.Run(ctx)
	}
	if a.config.MetricsAddr != "" {
		a.serveMetrics(ctx)
	}

	a.auth.RestoreSession()
	a.waitFor(ctx, func() bool { return a.auth.State().Phase != services.Loading })

	runREPL(ctx, a, a.getStatus, a.console.ReadLine, a.out)
	return nil
}

func (a *App) close() {
	a.mu.Lock()
	if a.stopPolling != nil {
		a.stopPolling()
	}
	a.mu.Unlock()
	if a.vault != nil {
		a.vault.Lock()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) serveMetrics(ctx context.Context) {
	srv := &http.Server{
		Addr:              a.config.MetricsAddr,
		Handler:           metrics.Handler(a.registry),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.log.Info(ctx, "serving metrics", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error(ctx, "metrics server", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

// getStatus renders the prompt suffix.
func (a *App) getStatus() string {
	st := a.auth.State()
	s := st.Phase.String()
	if st.Phase == services.Authenticated && st.User != nil {
		s = st.User.DisplayEmail()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != nil {
		s += " " + a.current.DisplayName()
		if a.draft != nil && a.draftChanged() {
			s += "*"
		}
	}
	return s
}

func (a *App) isLoggedIn() bool {
	return a.auth.State().Phase == services.Authenticated
}

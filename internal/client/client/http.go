package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dmitrijs2005/aln/internal/client/metrics"
	"github.com/dmitrijs2005/aln/internal/client/models"
	"github.com/dmitrijs2005/aln/internal/logging"
	"github.com/dmitrijs2005/aln/internal/netx"
	"golang.org/x/time/rate"
)

// HTTPClient is the JSON REST implementation of Client.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	jar     *sessionJar
	tokens  *TokenHolder
	limiter *rate.Limiter
	timeout time.Duration
	metrics metrics.Recorder
	log     logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying HTTP client. Its Jar is replaced by
// the session jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		cp := *hc
		c.http = &cp
	}
}

// WithTimeout bounds every request. It holds whatever the option order
// relative to WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *HTTPClient) { c.limiter = rate.NewLimiter(r, burst) }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(c *HTTPClient) { c.metrics = r }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient creates a client for the backend at baseURL. The token is
// read from tokens on every request.
func NewHTTPClient(baseURL string, tokens *TokenHolder, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q: scheme and host required", baseURL)
	}

	c := &HTTPClient{
		baseURL: u,
		http:    &http.Client{},
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Inf, 1),
		metrics: metrics.Nop{},
		log:     logging.Nop{},
	}
	for _, o := range opts {
		o(c)
	}
	if c.timeout > 0 {
		c.http.Timeout = c.timeout
	}
	c.jar = newSessionJar(u)
	c.http.Jar = c.jar

	return c, nil
}

type acceptance interface {
	accepted() bool
}

func (c *HTTPClient) do(ctx context.Context, op, method, path string, body, out any, noCache bool) (err error) {
	start := time.Now()
	outcome := metrics.OutcomeOK
	defer func() {
		c.metrics.RecordRequest(op, outcome, time.Since(start))
		if err != nil {
			c.log.Warn(ctx, "request failed", "op", op, "method", method, "path", path, "error", err)
		}
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		outcome = metrics.OutcomeTransport
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}

	req, err := newRequest(ctx, method, c.baseURL.JoinPath(path).String(), c.tokens.Get(), body)
	if err != nil {
		outcome = metrics.OutcomeTransport
		return err
	}
	if noCache {
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
	}

	c.log.Debug(ctx, "request", "op", op, "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		outcome = metrics.OutcomeTransport
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		_, _ = io.Copy(io.Discard, resp.Body)
		outcome = metrics.OutcomeTransport
		return fmt.Errorf("%w: %s %s: %s", ErrUnavailable, method, path, resp.Status)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		outcome = metrics.OutcomeDecode
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%w: %s %s: %s", ErrUnauthorized, method, path, resp.Status)
		}
		return fmt.Errorf("%w: %s %s: %w", ErrDecode, method, path, err)
	}

	if a, ok := out.(acceptance); ok && !a.accepted() {
		outcome = metrics.OutcomeRejected
	}
	return nil
}

func feederPath(id int64, rest ...string) string {
	p := "api/feeder/" + strconv.FormatInt(id, 10)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

type quantityBody struct {
	Quantity models.Amount `json:"quantity"`
}

func (c *HTTPClient) Login(ctx context.Context, cred LoginCredential) (LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, "login", http.MethodPost, "api/user/login", cred, &resp, false)
	return resp, err
}

func (c *HTTPClient) CheckSession(ctx context.Context, userID string) (CheckSessionResponse, error) {
	body := struct {
		AppleID string `json:"appleId"`
	}{userID}

	var resp CheckSessionResponse
	err := c.do(ctx, "check_session", http.MethodPost, "api/user/check", body, &resp, false)
	return resp, err
}

func (c *HTTPClient) Logout(ctx context.Context) (StatusResponse, error) {
	var resp StatusResponse
	err := c.do(ctx, "logout", http.MethodPost, "api/user/logout", nil, &resp, false)
	return resp, err
}

// GetFeederStatus always bypasses caches: device status goes stale quickly.
func (c *HTTPClient) GetFeederStatus(ctx context.Context, feederID int64) (models.FeederState, error) {
	var st models.FeederState
	if err := c.do(ctx, "feeder_status", http.MethodGet, feederPath(feederID), nil, &st, true); err != nil {
		return models.FeederState{}, err
	}
	return st, nil
}

func (c *HTTPClient) SetFeederName(ctx context.Context, feederID int64, name string) (StatusResponse, error) {
	body := struct {
		Name string `json:"name"`
	}{name}

	var resp StatusResponse
	err := c.do(ctx, "feeder_name", http.MethodPut, feederPath(feederID), body, &resp, false)
	return resp, err
}

func (c *HTTPClient) SetFeederDefaultAmount(ctx context.Context, feederID int64, amount models.Amount) (StatusResponse, error) {
	var resp StatusResponse
	err := c.do(ctx, "feeder_quantity", http.MethodPut, feederPath(feederID, "quantity"), quantityBody{amount}, &resp, false)
	return resp, err
}

func (c *HTTPClient) FeedNow(ctx context.Context, feederID int64, amount models.Amount) (StatusResponse, error) {
	var resp StatusResponse
	err := c.do(ctx, "feed", http.MethodPost, feederPath(feederID, "feed"), quantityBody{amount}, &resp, false)
	return resp, err
}

func (c *HTTPClient) GetFeederPlan(ctx context.Context, feederID int64) (*models.ScheduledFeedingPlan, error) {
	var plan models.ScheduledFeedingPlan
	if err := c.do(ctx, "plan_get", http.MethodGet, feederPath(feederID, "planning"), nil, &plan, false); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *HTTPClient) SetFeederPlan(ctx context.Context, feederID int64, plan *models.ScheduledFeedingPlan) (StatusResponse, error) {
	if plan == nil {
		return StatusResponse{}, errors.New("nil plan")
	}
	var resp StatusResponse
	err := c.do(ctx, "plan_set", http.MethodPut, feederPath(feederID, "planning"), plan, &resp, false)
	return resp, err
}

func (c *HTTPClient) RestoreSessionCookie(s models.Session) { c.jar.restore(s) }

func (c *HTTPClient) SessionCookie() (models.Session, bool) { return c.jar.session() }

func (c *HTTPClient) ClearCookies() { c.jar.clear() }

// Ping reports whether the backend host answers at all.
func (c *HTTPClient) Ping(ctx context.Context) error {
	start := time.Now()
	_, err := netx.Probe(ctx, c.http, c.baseURL.String())
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeTransport
		err = fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	c.metrics.RecordRequest("ping", outcome, time.Since(start))
	return err
}

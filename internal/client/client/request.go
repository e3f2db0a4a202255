package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/aln/internal/common"
)

// TokenHolder keeps the anti-forgery token handed out by the backend at login.
type TokenHolder struct {
	mu    sync.RWMutex
	token string
}

func (h *TokenHolder) Get() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *TokenHolder) Set(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

func (h *TokenHolder) Clear() { h.Set("") }

// newRequest builds a JSON request. token is attached to every non-GET
// request when non-empty; a missing token is left for the server to judge.
func newRequest(ctx context.Context, method, url, token string, body any) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, url, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if method != http.MethodGet && token != "" {
		req.Header.Set(common.CSRFTokenHeaderName, token)
	}
	return req, nil
}

package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Probe sends a HEAD request to url and reports whether anything answered.
// Any HTTP status counts as reachable; only transport failures are errors.
func Probe(ctx context.Context, client *http.Client, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

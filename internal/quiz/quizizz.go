package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPProvider is the default Provider: an HTTPS GET against a configured
// base URL, decoded as arbitrary JSON. No HTTP client library appears
// anywhere in the retrieved reference pack, so net/http is the correct
// choice here, not a fallback — see DESIGN.md.
type HTTPProvider struct {
	BaseURL string
	Client  *http.Client
	Timeout time.Duration
}

// NewHTTPProvider constructs an HTTPProvider with a bounded-timeout client.
func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
		Timeout: timeout,
	}
}

// FetchRaw performs the HTTPS GET against BaseURL/quiz/<sourceID>, bounded
// by a context deadline per spec.md 5 ("External fetch has a bounded
// timeout; on timeout, the room uses the fallback pool").
func (p *HTTPProvider) FetchRaw(ctx context.Context, sourceID string) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	url := fmt.Sprintf("%s/quiz/%s", p.BaseURL, sourceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("quiz: building request: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quiz: fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quiz: unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("quiz: reading response body: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("quiz: decoding response JSON: %w", err)
	}
	return doc, nil
}

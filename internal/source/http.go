package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/normalize"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/pkg/httpretry"
)

// maxExportBytes caps an HTTP export body.
const maxExportBytes = 64 << 20

// HTTPLoader GETs a JSON export from an HTTP endpoint, for instance the
// web app's conversations API.
type HTTPLoader struct {
	client httpretry.HTTPDoer
	url    string
	token  string
}

// NewHTTPLoader creates an HTTPLoader. A non-empty token is sent as a
// bearer token.
func NewHTTPLoader(client httpretry.HTTPDoer, rawURL, token string) *HTTPLoader {
	return &HTTPLoader{client: client, url: rawURL, token: token}
}

// Name omits the query string and user info so tokens never reach logs.
func (l *HTTPLoader) Name() string {
	u, err := url.Parse(l.url)
	if err != nil {
		return "http:invalid"
	}
	return u.Scheme + "://" + u.Host + u.Path
}

// Load fetches and decodes the export. Any non-2xx status is an error.
func (l *HTTPLoader) Load(ctx context.Context) ([]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", l.Name(), err)
	}
	req.Header.Set("Accept", "application/json")
	if l.token != "" {
		req.Header.Set("Authorization", "Bearer "+l.token)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", l.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetching %s: unexpected status %d", l.Name(), resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxExportBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", l.Name(), err)
	}
	if len(data) > maxExportBytes {
		return nil, fmt.Errorf("reading %s: export exceeds %d bytes", l.Name(), maxExportBytes)
	}
	return normalize.DecodePayload(data)
}

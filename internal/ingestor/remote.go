package ingestor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"
)

// Default timeout for HTTP requests
const defaultHTTPTimeout = 30 * time.Second

// DefaultMaxRemoteBytes caps the size of a fetched document
const DefaultMaxRemoteBytes = 10 << 20

// isRemote reports whether source is an http or https URL
func isRemote(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (i *Ingestor) httpClient() *http.Client {
	if i.opts.HTTPClient != nil {
		return i.opts.HTTPClient
	}
	return &http.Client{
		Timeout: defaultHTTPTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}

// fetch downloads a single document. The format hint comes from the URL
// path extension.
func (i *Ingestor) fetch(ctx context.Context, source string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json,application/yaml,application/toml,application/xml,text/plain")
	req.Header.Set("User-Agent", "shapeshift/1.0")

	resp, err := i.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request failed with status: %s", resp.Status)
	}

	limit := i.opts.MaxRemoteBytes
	if limit <= 0 {
		limit = DefaultMaxRemoteBytes
	}
	content, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(content)) > limit {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrInvalidSource, limit)
	}

	modTime := time.Now()
	if lm, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		modTime = lm
	}
	u, _ := url.Parse(source)
	return &Document{
		Path:    source,
		Format:  FormatForPath(path.Base(u.Path)),
		Size:    int64(len(content)),
		ModTime: modTime,
		Content: string(content),
	}, nil
}

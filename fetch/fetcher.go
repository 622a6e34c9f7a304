package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Config configures the origin fetcher.
type Config struct {
	// ConnectTimeout bounds establishing a connection (TCP dial and
	// TLS handshake). Default: 10s.
	ConnectTimeout time.Duration

	// ReadTimeout bounds waiting for the origin's response headers.
	// Default: 10s.
	ReadTimeout time.Duration

	// RequestTimeout bounds the whole request including the body read.
	// Default: 30s.
	RequestTimeout time.Duration

	// MaxRedirects caps redirect hops before the fetch fails with
	// ErrRedirectLimit. Default: 3.
	MaxRedirects int

	// MaxResponseBytes caps the body size before the fetch fails with
	// ErrTooLarge. Default: 32 MiB.
	MaxResponseBytes int64

	// DisconnectOnEveryCall disables connection reuse between fetches.
	DisconnectOnEveryCall bool

	// Authorization, if set, decorates every request with credentials.
	Authorization Authorization

	// UserAgent, if set, replaces the default Go user agent.
	UserAgent string
}

// Fetcher retrieves encoded image bytes over HTTP.
type Fetcher struct {
	config Config
	client *http.Client
}

// New creates an origin fetcher with the configured deadlines.
func New(config Config) *Fetcher {
	// Apply defaults
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = 10 * time.Second
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = 10 * time.Second
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 30 * time.Second
	}
	if config.MaxRedirects <= 0 {
		config.MaxRedirects = 3
	}
	if config.MaxResponseBytes <= 0 {
		config.MaxResponseBytes = 32 << 20
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: config.ConnectTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   config.ConnectTimeout,
		ResponseHeaderTimeout: config.ReadTimeout,
		DisableKeepAlives:     config.DisconnectOnEveryCall,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   config.RequestTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > config.MaxRedirects {
				return ErrRedirectLimit
			}
			return nil
		},
	}

	return &Fetcher{config: config, client: client}
}

// Fetch retrieves the encoded bytes behind rawurl.
//
// A 404 maps to ErrNotFound, other non-2xx answers to ErrStatus, and
// exhausted deadlines to ErrTimeout. Context cancellation passes
// through untouched.
func (f *Fetcher) Fetch(ctx context.Context, rawurl string) ([]byte, error) {
	if rawurl == "" {
		return nil, ErrMissingURL
	}
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if f.config.UserAgent != "" {
		req.Header.Set("User-Agent", f.config.UserAgent)
	}
	if f.config.Authorization != nil {
		if err := f.config.Authorization.Apply(req); err != nil {
			return nil, fmt.Errorf("fetch: authorize %s: %w", rawurl, err)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.classify(rawurl, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rawurl)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: %d from %s", ErrStatus, resp.StatusCode, rawurl)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxResponseBytes+1))
	if err != nil {
		return nil, f.classify(rawurl, err)
	}
	if int64(len(data)) > f.config.MaxResponseBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, rawurl, f.config.MaxResponseBytes)
	}
	return data, nil
}

// Close releases idle origin connections.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}

// classify maps transport failures onto the package's sentinels.
func (f *Fetcher) classify(rawurl string, err error) error {
	if errors.Is(err, ErrRedirectLimit) {
		return fmt.Errorf("%w: %s", ErrRedirectLimit, rawurl)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var netErr net.Error
	timedOut := errors.As(err, &netErr) && netErr.Timeout()
	if timedOut || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, rawurl)
	}
	return fmt.Errorf("fetch: %s: %w", rawurl, err)
}

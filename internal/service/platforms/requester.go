package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxBodyBytes     = 4 << 20
)

// Option configures an adapter's HTTP behaviour.
type Option func(*requester)

// WithBaseURL points the adapter at another host (tests, mirrors).
func WithBaseURL(u string) Option {
	return func(r *requester) {
		r.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout bounds each outbound call, including waiting on the limiter.
func WithTimeout(d time.Duration) Option {
	return func(r *requester) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLimiter throttles outbound calls. Sharing one limiter between adapters
// of the same host is allowed.
func WithLimiter(l *rate.Limiter) Option {
	return func(r *requester) {
		r.limiter = l
	}
}

// WithUserAgent overrides the browser-like User-Agent sent to every source.
func WithUserAgent(ua string) Option {
	return func(r *requester) {
		if ua != "" {
			r.userAgent = ua
		}
	}
}

// requester holds the HTTP plumbing shared by all adapters.
type requester struct {
	client    *http.Client
	baseURL   string
	userAgent string
	timeout   time.Duration
	limiter   *rate.Limiter
}

func newRequester(client *http.Client, baseURL string, opts []Option) requester {
	if client == nil {
		client = http.DefaultClient
	}
	r := requester{
		client:    client,
		baseURL:   baseURL,
		userAgent: defaultUserAgent,
		timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

type response struct {
	status      int
	contentType string
	body        []byte
}

// send performs one request. Only transport-level problems become a Failure;
// status handling is left to the caller.
func (r *requester) send(ctx context.Context, method, path string, body []byte, header http.Header) (*response, *Failure) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, unavailable("throttled: %v", err)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return nil, unavailable("building request: %v", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, unavailable("request timed out after %s", r.timeout)
		}
		return nil, unavailable("request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, unavailable("reading response: %v", err)
	}
	return &response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        data,
	}, nil
}

// statusFailure maps a non-2xx status to a Failure, or returns nil.
func statusFailure(status int) *Failure {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return &Failure{Kind: SourceUnavailable, Reason: "profile not found (HTTP 404)", Status: status}
	case status == http.StatusTooManyRequests:
		return &Failure{Kind: SourceUnavailable, Reason: "rate limited by source (HTTP 429)", Status: status}
	default:
		return &Failure{Kind: SourceUnavailable, Reason: fmt.Sprintf("unexpected HTTP status %d", status), Status: status}
	}
}

// page fetches an HTML profile page and returns its text.
func (r *requester) page(ctx context.Context, path string) (string, *Failure) {
	h := http.Header{}
	h.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	resp, f := r.send(ctx, http.MethodGet, path, nil, h)
	if f != nil {
		return "", f
	}
	if f := statusFailure(resp.status); f != nil {
		return "", f
	}
	if !isTextual(resp.contentType) {
		return "", &Failure{
			Kind:   SourceUnavailable,
			Reason: fmt.Sprintf("unexpected content type %q", resp.contentType),
			Status: resp.status,
		}
	}
	return string(resp.body), nil
}

// getJSON decodes a JSON body into target. Non-2xx responses are still decoded
// when they carry JSON, because some APIs explain failures in the body; the
// returned status lets the caller decide.
func (r *requester) getJSON(ctx context.Context, path string, target any) (int, *Failure) {
	h := http.Header{}
	h.Set("Accept", "application/json")
	resp, f := r.send(ctx, http.MethodGet, path, nil, h)
	if f != nil {
		return 0, f
	}
	return resp.status, decodeJSON(resp, target)
}

// postJSON sends payload as JSON and decodes the JSON reply into target.
func (r *requester) postJSON(ctx context.Context, path string, payload, target any, extra http.Header) *Failure {
	body, err := json.Marshal(payload)
	if err != nil {
		return unavailable("encoding request: %v", err)
	}
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("Content-Type", "application/json")
	for k, vs := range extra {
		h[k] = vs
	}
	resp, f := r.send(ctx, http.MethodPost, path, body, h)
	if f != nil {
		return f
	}
	if f := statusFailure(resp.status); f != nil {
		return f
	}
	return decodeJSON(resp, target)
}

func decodeJSON(resp *response, target any) *Failure {
	if err := json.Unmarshal(resp.body, target); err != nil {
		if f := statusFailure(resp.status); f != nil {
			return f
		}
		return &Failure{Kind: SourceUnavailable, Reason: "malformed JSON response", Status: resp.status}
	}
	return nil
}

// isTextual accepts text/* and XHTML. A missing Content-Type is tolerated.
func isTextual(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt, "text/") || mt == "application/xhtml+xml"
}

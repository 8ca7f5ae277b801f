// Package httpclient is the transport adapter between the YouVersion client
// and net/http. It owns the connection pool, attaches authentication, logs
// every round trip and turns transport failures and the statuses that mean
// the same thing on every endpoint into typed errors.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	stdhttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PandaWhoCodes/youversion/pkg/apierr"
)

const (
	// DefaultBaseURL is the production API root.
	DefaultBaseURL = "https://api.youversion.com"
	// DefaultTimeout bounds connect plus read for one request.
	DefaultTimeout = 30 * time.Second
	// AppKeyHeader carries the access token.
	AppKeyHeader = "X-YVP-App-Key"

	defaultUserAgent = "youversion-go"
	defaultMaxBody   = 32 << 20
)

// Request describes one API call relative to the base URL.
type Request struct {
	Method string
	// Path is already escaped, e.g. "/v1/bibles/111/passages/GEN.1.1-3".
	Path  string
	Query url.Values
	// Body, when non-nil, is encoded as JSON.
	Body   any
	Header stdhttp.Header
}

// Response is a fully read HTTP response that the adapter did not classify.
type Response struct {
	StatusCode int
	Header     stdhttp.Header
	Body       []byte
}

// Client wraps http.Client with authentication, logging and status classification.
type Client struct {
	hc          *stdhttp.Client
	log         *slog.Logger
	baseURL     string
	token       string
	userAgent   string
	headers     map[string]string
	urlRedactor func(*url.URL) string
	maxBody     int64

	closed    atomic.Bool
	closeOnce sync.Once
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API root. A trailing slash is ignored.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout sets request timeout.
func WithTimeout(t time.Duration) Option {
	return func(c *Client) {
		if t > 0 {
			c.hc.Timeout = t
		}
	}
}

// WithLogger sets logger used by client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithHeaders adds default headers to each request.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) {
		for k, v := range h {
			if c.headers == nil {
				c.headers = make(map[string]string)
			}
			c.headers[k] = v
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithURLRedactor sets URL redactor for logs.
func WithURLRedactor(f func(*url.URL) string) Option {
	return func(c *Client) { c.urlRedactor = f }
}

// WithTransport sets custom transport.
func WithTransport(rt stdhttp.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.hc.Transport = rt
		}
	}
}

// WithMaxBodySize limits how many response bytes are read (0 disables limit).
func WithMaxBodySize(n int64) Option {
	return func(c *Client) { c.maxBody = n }
}

// New creates configured Client authenticated with token.
func New(token string, opts ...Option) (*Client, error) {
	tr := stdhttp.DefaultTransport.(*stdhttp.Transport).Clone()
	tr.MaxIdleConns = 100
	tr.MaxConnsPerHost = 100
	tr.MaxIdleConnsPerHost = 100
	tr.IdleConnTimeout = 90 * time.Second
	tr.TLSHandshakeTimeout = 10 * time.Second
	tr.ExpectContinueTimeout = 1 * time.Second

	c := &Client{
		hc: &stdhttp.Client{
			Timeout:   DefaultTimeout,
			Transport: tr,
		},
		log:       slog.Default(),
		baseURL:   DefaultBaseURL,
		token:     token,
		userAgent: defaultUserAgent,
		maxBody:   defaultMaxBody,
	}
	for _, o := range opts {
		o(c)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", c.baseURL)
	}
	return c, nil
}

// BaseURL returns the API root requests are resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// Close releases pooled connections. It is safe to call more than once;
// every Do after the first Close fails with apierr.ErrClosed.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.hc.CloseIdleConnections()
		c.log.Debug("http client closed", slog.String("base_url", c.baseURL))
	})
	return nil
}

// redactURL returns redacted URL string.
func (c *Client) redactURL(u *url.URL) string {
	if c.urlRedactor != nil {
		return c.urlRedactor(u)
	}
	return u.Redacted()
}

// Do performs exactly one round trip.
//
// Transport failures come back as *apierr.ConnectionError, 401 as
// *apierr.AuthError, 429 as *apierr.RateLimitError and 5xx as
// *apierr.ServerError. Cancellation of ctx is returned as ctx.Err()
// unchanged. Any other status is returned for the caller to interpret.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.closed.Load() {
		return nil, apierr.ErrClosed
	}

	u, err := url.Parse(c.baseURL + req.Path)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	method := req.Method
	if method == "" {
		method = stdhttp.MethodGet
	}
	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}
	r, err := stdhttp.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	for k, v := range c.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	r.Header.Set(AppKeyHeader, c.token)
	r.Header.Set("Accept", "application/json")
	if r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", c.userAgent)
	}

	redacted := c.redactURL(u)
	st := time.Now()
	resp, err := c.hc.Do(r)
	dur := time.Since(st)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.log.Debug("http request canceled", slog.String("method", method), slog.String("url", redacted), slog.Any("error", ctxErr))
			return nil, ctxErr
		}
		c.log.Warn("http request error", slog.String("method", method), slog.String("url", redacted), slog.Duration("dur", dur), slog.Any("error", err))
		return nil, &apierr.ConnectionError{Method: method, URL: redacted, Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	respBody, err := c.readBody(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, ErrBodyTooLarge) {
			return nil, fmt.Errorf("%s %s: %w", method, redacted, err)
		}
		c.log.Warn("http response read error", slog.String("method", method), slog.String("url", redacted), slog.Int("status", resp.StatusCode), slog.Any("error", err))
		return nil, &apierr.ConnectionError{Method: method, URL: redacted, Err: err}
	}

	if err := classify(resp.StatusCode, resp.Header, respBody); err != nil {
		c.log.Warn("http request status", slog.String("method", method), slog.String("url", redacted), slog.Int("status", resp.StatusCode), slog.Duration("dur", dur), slog.Any("error", err))
		return nil, err
	}

	c.log.Debug("http request", slog.String("method", method), slog.String("url", redacted), slog.Int("status", resp.StatusCode), slog.Duration("dur", dur), slog.Int("bytes", len(respBody)))
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: respBody}, nil
}

// ErrBodyTooLarge indicates the response exceeded the configured body limit.
var ErrBodyTooLarge = errors.New("http: response body too large")

func (c *Client) readBody(b io.Reader) ([]byte, error) {
	if c.maxBody <= 0 {
		return io.ReadAll(b)
	}
	body, err := io.ReadAll(io.LimitReader(b, c.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.maxBody {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}

// classify maps the statuses with a uniform meaning across endpoints.
func classify(status int, h stdhttp.Header, body []byte) error {
	switch {
	case status == stdhttp.StatusUnauthorized:
		return &apierr.AuthError{Message: apierr.MessageFromBody(body)}
	case status == stdhttp.StatusTooManyRequests:
		return &apierr.RateLimitError{
			RetryAfter: retryAfter(h.Get("Retry-After"), time.Now()),
			Message:    apierr.MessageFromBody(body),
		}
	case status >= 500:
		return &apierr.ServerError{StatusCode: status, Message: apierr.MessageFromBody(body)}
	default:
		return nil
	}
}

// retryAfter parses Retry-After header value as seconds. Both the
// delta-seconds and HTTP-date forms are accepted; anything else yields nil.
func retryAfter(h string, now time.Time) *float64 {
	h = strings.TrimSpace(h)
	if h == "" {
		return nil
	}
	if secs, err := strconv.ParseFloat(h, 64); err == nil {
		if secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
			return nil
		}
		return &secs
	}
	if t, err := stdhttp.ParseTime(h); err == nil {
		secs := t.Sub(now).Seconds()
		if secs < 0 {
			secs = 0
		}
		return &secs
	}
	return nil
}

// unwrapURLError strips the *url.Error layer, whose message repeats the
// method and URL that ConnectionError already carries.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		if ue.Timeout() {
			return timeoutError{err: ue.Err}
		}
		return ue.Err
	}
	return err
}

// timeoutError keeps the net.Error timeout signal of a client timeout whose
// inner error does not carry it.
type timeoutError struct{ err error }

func (e timeoutError) Error() string   { return e.err.Error() }
func (e timeoutError) Unwrap() error   { return e.err }
func (e timeoutError) Timeout() bool   { return true }
func (e timeoutError) Temporary() bool { return true }

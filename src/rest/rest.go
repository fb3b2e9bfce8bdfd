package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/TTRSQ/gdax/domains/exchange"
	"github.com/TTRSQ/gdax/domains/page"
	"github.com/TTRSQ/gdax/src/auth"
	"github.com/go-resty/resty/v2"
)

const (
	userAgent      = "gdax-go-client"
	defaultTimeout = 10 * time.Second
	// rate limited trade stream windows are retried after this wait
	rateLimitWait = 900 * time.Millisecond
)

// APIError is a non-2xx answer of the exchange.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gdax api error [code: %d][message: %s]", e.StatusCode, e.Message)
}

// IsRateLimited reports an HTTP 429.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func newAPIError(resp *resty.Response) *APIError {
	body := resp.Body()
	msg := struct {
		Message string `json:"message"`
	}{}
	if err := json.Unmarshal(body, &msg); err != nil || msg.Message == "" {
		msg.Message = strings.TrimSpace(string(body))
		if msg.Message == "" {
			msg.Message = http.StatusText(resp.StatusCode())
		}
	}
	return &APIError{StatusCode: resp.StatusCode(), Message: msg.Message, Body: body}
}

type options struct {
	timeout   time.Duration
	logger    *slog.Logger
	signer    auth.Signer
	clock     func() time.Time
	retryWait time.Duration
}

// Option configures a client.
type Option func(*options)

// WithTimeout sets the per request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSigner replaces the HMAC signer of a private client.
func WithSigner(s auth.Signer) Option {
	return func(o *options) { o.signer = s }
}

// WithClock sets the timestamp source of the default HMAC signer.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// WithRateLimitWait sets how long the trade stream waits after a 429.
func WithRateLimitWait(d time.Duration) Option {
	return func(o *options) { o.retryWait = d }
}

func buildOptions(opts []Option) options {
	o := options{
		timeout:   defaultTimeout,
		logger:    slog.Default(),
		clock:     time.Now,
		retryWait: rateLimitWait,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// restyLogger routes resty's own diagnostics to slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}

type transport struct {
	name      string
	client    *resty.Client
	logger    *slog.Logger
	retryWait time.Duration
}

func newTransport(apiURI string, o options) *transport {
	if apiURI == "" {
		apiURI = exchange.DefaultAPI()
	}
	logger := o.logger.With("exchange", exchange.Name)
	client := resty.New().
		SetBaseURL(strings.TrimRight(apiURI, "/")).
		SetTimeout(o.timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{logger: logger})
	return &transport{
		name:      exchange.Name,
		client:    client,
		logger:    logger,
		retryWait: o.retryWait,
	}
}

// request sends one call and decodes the body into out. A nil signer sends
// the call unauthenticated.
func (t *transport) request(ctx context.Context, signer auth.Signer, method, path string, query url.Values, body, out interface{}) (page.Cursor, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return page.Cursor{}, fmt.Errorf("[rest][%s %s] encode body: %w", method, path, err)
		}
		payload = b
	}

	requestPath := path
	if len(query) > 0 {
		requestPath += "?" + query.Encode()
	}

	req := t.client.R().SetContext(ctx)
	if payload != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(payload)
	}
	if signer != nil {
		headers, err := signer.Headers(method, requestPath, payload)
		if err != nil {
			return page.Cursor{}, fmt.Errorf("[rest][%s %s] sign: %w", method, path, err)
		}
		req.SetHeaders(headers)
	}

	resp, err := req.Execute(method, requestPath)
	if err != nil {
		return page.Cursor{}, fmt.Errorf("[rest][%s %s] %w", method, path, err)
	}
	if resp.IsError() {
		apiErr := newAPIError(resp)
		t.logger.Debug("request rejected", "method", method, "path", path, "status", apiErr.StatusCode, "message", apiErr.Message)
		return page.Cursor{}, fmt.Errorf("[rest][%s %s] %w", method, path, apiErr)
	}

	if out != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return page.Cursor{}, fmt.Errorf("[rest][%s %s] decode response: %w [raw_body: %s]", method, path, err, string(resp.Body()))
		}
	}

	return page.Cursor{
		Before: resp.Header().Get("CB-BEFORE"),
		After:  resp.Header().Get("CB-AFTER"),
	}, nil
}

func productPath(productID, suffix string) string {
	return "/products/" + url.PathEscape(productID) + suffix
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/mehmet-raif33/ulasfleet/internal/common"
	"github.com/mehmet-raif33/ulasfleet/internal/logging"
)

const (
	// DefaultTimeout bounds a single attempt.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the number of additional attempts after the
	// first failure.
	DefaultMaxRetries = 3

	// defaultBackoffBase is the first retry delay; it doubles each attempt.
	defaultBackoffBase = time.Second
)

// RequestDescriptor describes one call. It is built once and never mutated;
// zero Timeout/MaxRetries pick up the defaults.
type RequestDescriptor struct {
	Endpoint   string
	Method     string
	Headers    map[string]string
	Body       any
	Timeout    time.Duration
	MaxRetries int
}

func (d RequestDescriptor) withDefaults(timeout time.Duration, maxRetries int) RequestDescriptor {
	if d.Timeout <= 0 {
		d.Timeout = timeout
	}
	if d.MaxRetries < 0 {
		d.MaxRetries = 0
	} else if d.MaxRetries == 0 {
		d.MaxRetries = maxRetries
	}
	if d.Method == "" {
		d.Method = http.MethodGet
	}
	return d
}

// Doer is the transport seam; *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource supplies the current credential for authenticated calls.
// The token manager satisfies it.
type TokenSource interface {
	IsAuthenticated() bool
	AccessToken() string
}

// ExpiryNotifier announces a server-side credential rejection to the rest of
// the system. The broadcast bus adapter satisfies it; the client itself
// never mutates credentials.
type ExpiryNotifier interface {
	NotifyTokenExpired(ctx context.Context)
}

// Options configures a Client. Zero values fall back to sane defaults.
type Options struct {
	Doer        Doer
	Tokens      TokenSource
	Notifier    ExpiryNotifier
	Log         logging.Logger
	Timeout     time.Duration
	MaxRetries  int
	BackoffBase time.Duration
}

// Client issues HTTP calls against the data service with per-attempt
// timeouts and exponential-backoff retry. All failures come back as *Error.
type Client struct {
	baseURL     string
	http        Doer
	tokens      TokenSource
	notify      ExpiryNotifier
	log         logging.Logger
	timeout     time.Duration
	maxRetries  int
	backoffBase time.Duration
}

func NewClient(baseURL string, opts Options) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        opts.Doer,
		tokens:      opts.Tokens,
		notify:      opts.Notifier,
		log:         opts.Log,
		timeout:     opts.Timeout,
		maxRetries:  opts.MaxRetries,
		backoffBase: opts.BackoffBase,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.log == nil {
		c.log = logging.Nop()
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.maxRetries <= 0 {
		c.maxRetries = DefaultMaxRetries
	}
	if c.backoffBase <= 0 {
		c.backoffBase = defaultBackoffBase
	}
	return c
}

// Do executes the described request. Retryable failures (timeouts and the
// 408/429/5xx class) are re-attempted with delays doubling from the backoff
// base, up to MaxRetries additional calls; everything else surfaces after a
// single attempt. Exhausted retries surface the last classified failure.
func (c *Client) Do(ctx context.Context, d RequestDescriptor) (*Envelope, error) {
	d = d.withDefaults(c.timeout, c.maxRetries)

	backoff := retry.WithMaxRetries(uint64(d.MaxRetries), retry.NewExponential(c.backoffBase))

	var env *Envelope
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		e, attemptErr := c.attempt(ctx, d)
		if attemptErr != nil {
			var apiErr *Error
			if errors.As(attemptErr, &apiErr) && apiErr.retryable() {
				c.log.Debug(ctx, "retrying request",
					"method", d.Method, "endpoint", d.Endpoint,
					"kind", apiErr.Kind, "status", apiErr.StatusCode)
				return retry.RetryableError(attemptErr)
			}
			return attemptErr
		}
		env = e
		return nil
	})
	if err != nil {
		return nil, c.finalError(ctx, d, err)
	}
	return env, nil
}

// DoAuthed wraps Do, injecting the bearer header from the token source.
// It fails fast with KindTokenExpired when no valid credential is present,
// avoiding a guaranteed-401 round trip.
func (c *Client) DoAuthed(ctx context.Context, d RequestDescriptor) (*Envelope, error) {
	if c.tokens == nil || !c.tokens.IsAuthenticated() {
		return nil, &Error{Kind: KindTokenExpired, Message: "no valid credential"}
	}

	headers := make(map[string]string, len(d.Headers)+1)
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers[common.AuthorizationHeader] = common.BearerPrefix + c.tokens.AccessToken()
	d.Headers = headers

	return c.Do(ctx, d)
}

// attempt performs exactly one transport call bounded by the descriptor
// timeout and classifies its outcome.
func (c *Client) attempt(ctx context.Context, d RequestDescriptor) (*Envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	var body io.Reader
	if d.Body != nil && d.Method != http.MethodGet {
		buf, err := json.Marshal(d.Body)
		if err != nil {
			return nil, &Error{Kind: KindUnknown, Message: "encode request body: " + err.Error()}
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, d.Method, c.baseURL+d.Endpoint, body)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Message: "build request: " + err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range d.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err, d.Timeout)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(err, d.Timeout)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// The single point where the request layer touches auth state:
		// announce the condition, do not mutate credentials.
		if c.notify != nil {
			c.notify.NotifyTokenExpired(context.WithoutCancel(ctx))
		}
		return nil, &Error{
			Kind:       KindTokenExpired,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw, "token expired"),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Kind:       KindRequestFailed,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw, resp.Status),
		}
	}

	env := &Envelope{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, env); err != nil {
			return nil, &Error{Kind: KindUnknown, Message: "decode response: " + err.Error()}
		}
	}
	env.Success = true
	env.raw = raw
	return env, nil
}

// finalError folds whatever came out of the retry loop into a classified
// *Error; callers never see an unclassified failure.
func (c *Client) finalError(ctx context.Context, d RequestDescriptor, err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		c.log.Debug(ctx, "request failed",
			"method", d.Method, "endpoint", d.Endpoint,
			"kind", apiErr.Kind, "status", apiErr.StatusCode)
		return apiErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "no response within " + d.Timeout.String()}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindUnknown, Message: "request canceled"}
	}
	return &Error{Kind: KindUnknown, Message: err.Error()}
}

// classifyTransport maps a transport-level fault. Deadline hits are
// timeouts; everything else that never produced a response is a network
// error.
func classifyTransport(err error, timeout time.Duration) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "no response within " + timeout.String()}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindUnknown, Message: "request canceled"}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return &Error{Kind: KindTimeout, Message: "no response within " + timeout.String()}
		}
		return &Error{Kind: KindNetwork, Message: urlErr.Err.Error()}
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: "no response within " + timeout.String()}
	}

	return &Error{Kind: KindNetwork, Message: err.Error()}
}

// errorMessage digs the structured message out of an error body, falling
// back to the given default.
func errorMessage(raw []byte, fallback string) string {
	if len(raw) == 0 {
		return fallback
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return fallback
	}
	if body.Message != "" {
		return body.Message
	}
	if body.Error != "" {
		return body.Error
	}
	return fallback
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sidereal-app/sidereal/internal/logging"
)

const (
	// DefaultTimeout is the per-request timeout unless overridden.
	DefaultTimeout = 15 * time.Second

	// maxResponseSize caps response bodies to keep a misbehaving server from
	// exhausting memory on a phone-class device.
	maxResponseSize = 1 * 1024 * 1024
)

// TokenProvider yields the current bearer credential, or "" when there is
// none. The provider is consulted once per request, at build time: a token
// swap mid-flight never affects requests already sent. The provider is a
// read-through view; the auth state machine remains the source of truth.
type TokenProvider interface {
	CurrentToken() string
}

// TokenProviderFunc adapts a plain function to TokenProvider.
type TokenProviderFunc func() string

func (f TokenProviderFunc) CurrentToken() string { return f() }

// TokenExpiryHandler receives a signal each time the backend rejects the
// current credential as expired — at most once per failing request. The
// signal is delivered asynchronously and never blocks the failing call.
type TokenExpiryHandler interface {
	TokenExpired()
}

// Client executes JSON requests against the Sidereal backend. Every request
// carries the anonymous device identifier and, when the provider yields one,
// a bearer credential.
//
// Client never mutates authentication state itself: classified errors are
// returned to the caller, and expiry is reported through the handler
// registered at construction.
type Client struct {
	baseURL    string
	httpClient *http.Client
	deviceID   string
	tokens     TokenProvider
	onExpired  TokenExpiryHandler
	logger     logging.Logger
}

// New constructs a Client. tokens and onExpired are registered here, at
// construction, so there is no window where a request can run unwired.
func New(baseURL, deviceID string, tokens TokenProvider, onExpired TokenExpiryHandler, logger logging.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		deviceID:   deviceID,
		tokens:     tokens,
		onExpired:  onExpired,
		logger:     logger.With("component", "api"),
	}
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithHTTPClient replaces the underlying HTTP client (tests, custom TLS).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// do executes one request using the provider's current token snapshot.
// When out is non-nil the 2xx body is decoded into it; an empty body is then
// ErrNoData. When out is nil the body is ignored.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.doWithToken(ctx, method, path, c.tokens.CurrentToken(), body, out)
}

// doWithToken is the variant with an explicit credential. The sign-out flow
// uses it to notify the server with the credential that was just discarded.
func (c *Client) doWithToken(ctx context.Context, method, path, token string, body, out any) error {
	requestURL, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidURL, path)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: body serialization: %v", ErrInvalidRequest, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", c.deviceID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		classified := classifyTransport(err)
		c.logger.Debug(ctx, "request failed before response", "method", method, "path", path, "err", classified.Error())
		return classified
	}
	defer resp.Body.Close()

	// Status and duration only; never headers or bodies.
	c.logger.Debug(ctx, "request completed", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return classifyTransport(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		if out == nil {
			return nil
		}
		if len(payload) == 0 {
			return ErrNoData
		}
		if err := json.Unmarshal(payload, out); err != nil {
			return ErrDecoding
		}
		return nil
	}

	return c.classifyStatus(resp.StatusCode, payload)
}

// classifyStatus maps a non-2xx response to the error taxonomy. A 401 whose
// message mentions expiry becomes ErrTokenExpired and triggers the expiry
// handler exactly once for this request; every other 401 is an
// AuthenticationError. Remaining 4xx/5xx become ServerError.
func (c *Client) classifyStatus(status int, payload []byte) error {
	message := errorMessage(payload)

	if status == http.StatusUnauthorized {
		if strings.Contains(strings.ToLower(message), "expired") {
			if c.onExpired != nil {
				go c.onExpired.TokenExpired()
			}
			return ErrTokenExpired
		}
		return &AuthenticationError{Message: message}
	}

	return &ServerError{Code: status, Message: message}
}

// errorMessage extracts the server's error text from a JSON body, checking
// the keys "message", "error", and "detail" in that order. The first present
// non-empty string wins; anything else yields "".
func errorMessage(payload []byte) string {
	if len(payload) == 0 {
		return ""
	}
	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error", "detail"} {
		if v, ok := body[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// classifyTransport maps network-level failures: timeouts to ErrTimeout,
// clear no-connectivity conditions to ErrOffline, everything else to
// TransportError.
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrOffline
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		// Dial-stage failures (refused, unreachable) mean we have no usable
		// connectivity; failures after the dial are generic transport faults.
		if opErr.Op == "dial" {
			return ErrOffline
		}
	}

	return &TransportError{Cause: err}
}

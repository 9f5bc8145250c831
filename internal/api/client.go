// Package api is the HTTP boundary of the storefront client. It builds
// requests against the configured REST API, injects bearer credentials,
// enforces per-request timeouts and normalizes every failure (offline,
// timeout, HTTP error, parse error) into a single error channel.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bincshop/storefront-client/internal/alert"
)

// TokenProvider supplies the credentials of the current session. An empty
// access token means the caller is anonymous.
type TokenProvider interface {
	AccessToken() string
	RefreshToken() string
}

// SessionRefresher is consulted on a 401 response when a refresh token is
// held. RefreshAccess exchanges the refresh token for a new access token;
// Clear drops the local session when the refresh fails.
type SessionRefresher interface {
	RefreshAccess(ctx context.Context) (string, error)
	Clear()
}

// ConnectivityChecker reports whether the network is believed reachable.
// When it reports false the client fails immediately without attempting the
// call.
type ConnectivityChecker interface {
	Online() bool
}

type alwaysOnline struct{}

func (alwaysOnline) Online() bool { return true }

type anonymousTokens struct{}

func (anonymousTokens) AccessToken() string  { return "" }
func (anonymousTokens) RefreshToken() string { return "" }

type Client struct {
	base      *url.URL
	http      *http.Client
	timeout   time.Duration
	tokens    TokenProvider
	refresher SessionRefresher
	online    ConnectivityChecker
	notify    alert.Notifier
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTokenProvider(p TokenProvider) Option {
	return func(c *Client) { c.tokens = p }
}

func WithConnectivity(cc ConnectivityChecker) Option {
	return func(c *Client) { c.online = cc }
}

func WithNotifier(n alert.Notifier) Option {
	return func(c *Client) { c.notify = n }
}

func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse API base URL: %w", err)
	}

	c := &Client{
		base:    u,
		http:    http.DefaultClient,
		timeout: timeout,
		tokens:  anonymousTokens{},
		online:  alwaysOnline{},
		notify:  alert.LogNotifier{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetRefresher installs the 401 refresh handler. The identity service both
// depends on the client and implements this interface, so it is attached
// after construction.
func (c *Client) SetRefresher(r SessionRefresher) {
	c.refresher = r
}

type requestOptions struct {
	withAuth bool
	query    url.Values
	header   http.Header
}

type RequestOption func(*requestOptions)

// WithoutAuth suppresses bearer token injection for public endpoints.
func WithoutAuth() RequestOption {
	return func(o *requestOptions) { o.withAuth = false }
}

func WithQuery(q url.Values) RequestOption {
	return func(o *requestOptions) { o.query = q }
}

func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.header == nil {
			o.header = http.Header{}
		}
		o.header.Set(key, value)
	}
}

func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out, opts)
}

func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	payload, err := encodeJSON(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, payload, "application/json", out, opts)
}

func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	payload, err := encodeJSON(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, payload, "application/json", out, opts)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	payload, err := encodeJSON(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, path, payload, "application/json", out, opts)
}

func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", out, opts)
}

// PostForm submits a multipart payload. The form's own content type carries
// the boundary, so no Content-Type override is applied.
func (c *Client) PostForm(ctx context.Context, path string, form *Form, out any, opts ...RequestOption) error {
	return c.doForm(ctx, http.MethodPost, path, form, out, opts)
}

func (c *Client) PatchForm(ctx context.Context, path string, form *Form, out any, opts ...RequestOption) error {
	return c.doForm(ctx, http.MethodPatch, path, form, out, opts)
}

func (c *Client) doForm(ctx context.Context, method, path string, form *Form, out any, opts []RequestOption) error {
	r, err := form.Reader()
	if err != nil {
		return fmt.Errorf("finalize form payload: %w", err)
	}
	payload, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read form payload: %w", err)
	}
	return c.do(ctx, method, path, payload, form.ContentType(), out, opts)
}

func encodeJSON(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return payload, nil
}

// do performs a single request, with at most one replay after a successful
// token refresh on 401. The payload is held as bytes so the replay can
// rebuild the body reader.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, contentType string, out any, opts []RequestOption) error {
	o := requestOptions{withAuth: true}
	for _, opt := range opts {
		opt(&o)
	}

	if !c.online.Online() {
		c.notify.Notify(alert.LevelError, ErrOffline.Error())
		return fmt.Errorf("%s %s: %w", method, path, ErrOffline)
	}

	refreshed := false
	for {
		status, statusText, body, respContentType, err := c.attempt(ctx, method, path, payload, contentType, o)
		if err != nil {
			return err
		}

		if status >= 200 && status < 300 {
			return c.decode(body, respContentType, out)
		}

		apiErr := newError(status, statusText, body)

		if status == http.StatusUnauthorized && o.withAuth {
			// Without a refresh token the caller is already anonymous:
			// nothing to clear, nothing to redirect to.
			if c.tokens.RefreshToken() == "" || c.refresher == nil {
				c.notify.Notify(alert.LevelError, apiErr.Message)
				return apiErr
			}

			if !refreshed {
				refreshed = true
				_, rerr := c.refresher.RefreshAccess(ctx)
				if rerr == nil {
					log.Debug().Str("path", path).Msg("access token refreshed, replaying request")
					continue
				}
			}

			// Refresh failed or the replay was rejected again: the session
			// is no longer valid.
			c.refresher.Clear()
			c.notify.Notify(alert.LevelError, "session expired, please login again")
			return apiErr
		}

		c.notify.Notify(alert.LevelError, apiErr.Message)
		return apiErr
	}
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, contentType string, o requestOptions) (status int, statusText string, body []byte, respContentType string, err error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, c.resolve(path, o.query), reader)
	if err != nil {
		return 0, "", nil, "", fmt.Errorf("build request %s %s: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, values := range o.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if o.withAuth {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", nil, "", c.classifyTransportError(ctx, reqCtx, method, path, err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", nil, "", fmt.Errorf("read response %s %s: %w", method, path, err)
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("api request")

	return resp.StatusCode, resp.Status, body, resp.Header.Get("Content-Type"), nil
}

// classifyTransportError separates caller cancellation from the per-request
// timeout and plain network failure. Cancellation is not a user-facing
// failure and raises no alert.
func (c *Client) classifyTransportError(ctx, reqCtx context.Context, method, path string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%s %s: %w", method, path, ctx.Err())
	}
	if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() != nil {
		c.notify.Notify(alert.LevelError, ErrTimeout.Error())
		return fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
	}
	c.notify.Notify(alert.LevelError, ErrOffline.Error())
	return fmt.Errorf("%s %s: %w", method, path, errors.Join(ErrOffline, err))
}

// resolve joins a relative path to the API base; absolute URLs pass through.
func (c *Client) resolve(path string, query url.Values) string {
	var u *url.URL
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		parsed, err := url.Parse(path)
		if err != nil {
			u = c.base.JoinPath(path)
		} else {
			u = parsed
		}
	} else {
		u = c.base.JoinPath(path)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// decode inspects the response content type to decide JSON vs text parsing.
func (c *Client) decode(body []byte, contentType string, out any) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	if strings.Contains(contentType, "application/json") {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
		return nil
	}
	if s, ok := out.(*string); ok {
		*s = string(body)
		return nil
	}
	// A JSON destination for a non-JSON body is a parse error, not a silent
	// coercion.
	return fmt.Errorf("unexpected response content type %q", contentType)
}

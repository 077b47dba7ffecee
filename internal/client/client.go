// Package client is a Go SDK for the fintrack API. A Session owns the
// credentials; entity services issue requests through the session's
// authenticated Client, which renews an expired access token once per request.
package client

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

	"golang.org/x/sync/singleflight"

	"fintrack/internal/logger"
)

// DefaultTimeout bounds every request, including the token renewal.
const DefaultTimeout = 30 * time.Second

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient sets the transport used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// Request describes one API call. Path is relative to the API base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	// Public requests carry no credentials and are never renewed.
	Public bool
}

// Response is a buffered API response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Client sends requests on behalf of a Session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	session    *Session
	renewals   singleflight.Group
}

func newClient(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		session:    session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends req with the current access token. The first 401 triggers a
// single renewal and retry; if renewal fails or the retry is rejected too,
// the session is terminated and ErrSessionTerminated returned.
// Non-2xx responses come back as *APIError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.Public {
		resp, err := c.send(ctx, req, "")
		if err != nil {
			return nil, err
		}
		return resp, checkStatus(resp)
	}

	token := c.session.accessToken()
	resp, err := c.send(ctx, req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, checkStatus(resp)
	}

	token, err = c.renew(ctx, token)
	if err != nil {
		return nil, err
	}

	resp, err = c.send(ctx, req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.session.Terminate(ctx)
		return nil, ErrSessionTerminated
	}
	return resp, checkStatus(resp)
}

// call is Do followed by decoding into out, when out is non-nil.
func (c *Client) call(ctx context.Context, req *Request, out interface{}) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

// renew exchanges the refresh token for a new access token. Concurrent
// callers share one refresh request, which outlives any single caller's
// context; a caller that gives up gets its own context error and leaves the
// session alone. stale is the token the caller was rejected with; if the
// session already holds a different one, it is used without asking the
// server again.
func (c *Client) renew(ctx context.Context, stale string) (string, error) {
	ch := c.renewals.DoChan("renew", func() (interface{}, error) {
		if current := c.session.accessToken(); current != "" && current != stale {
			return current, nil
		}

		rctx := context.WithoutCancel(ctx)
		refresh := c.session.refreshToken()
		if refresh == "" {
			return "", errors.New("no refresh token")
		}
		access, err := c.refreshAccess(rctx, refresh)
		if err != nil {
			return "", err
		}
		if err := c.session.setAccessToken(rctx, access); err != nil {
			return "", err
		}
		return access, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			logger.Get().Debugw("token renewal failed", "error", res.Err)
			c.session.Terminate(ctx)
			return "", fmt.Errorf("%w: %w", ErrSessionTerminated, res.Err)
		}
		return res.Val.(string), nil
	}
}

// refreshAccess asks the server for a new access token. It does not touch
// the session.
func (c *Client) refreshAccess(ctx context.Context, refresh string) (string, error) {
	var out struct {
		Access string `json:"access"`
	}
	err := c.call(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/auth/refresh/",
		Body:   map[string]string{"refresh": refresh},
		Public: true,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", errors.New("empty access token in refresh response")
	}
	return out.Access, nil
}

func (c *Client) send(ctx context.Context, req *Request, token string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	op := req.Method + " " + req.Path

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s body: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	logger.Get().Debugw("api request",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"latency", time.Since(start),
	)

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// checkStatus turns a non-2xx response into an *APIError, reading the
// server's {"error": {code, message, fields}} body when present.
func checkStatus(resp *Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error struct {
			Code    string            `json:"code"`
			Message string            `json:"message"`
			Fields  map[string]string `json:"fields"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body, &body); err == nil {
		apiErr.Code = body.Error.Code
		apiErr.Message = body.Error.Message
		apiErr.Fields = body.Error.Fields
	}
	return apiErr
}

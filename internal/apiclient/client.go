// Package apiclient is the HTTP client for the Indicador Online REST API.
//
// Every authenticated call carries the session's bearer token. A 401 asks the
// TokenSource for a fresh token once and replays the request once; any other
// failure is mapped onto the apperr taxonomy and returned without retry.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
)

// TokenSource supplies bearer tokens. Refresh receives the token that was
// rejected so concurrent callers can share one refresh.
type TokenSource interface {
	AccessToken() string
	Refresh(ctx context.Context, stale string) (string, error)
}

// Recorder counts upstream calls by operation and outcome
type Recorder interface {
	UpstreamCall(operation, outcome string)
}

// Client talks to the upstream API. The zero TokenSource makes unauthenticated
// calls; WithTokens returns a per-session view sharing the transport.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenSource
	recorder Recorder
}

// New creates a client for baseURL
func New(baseURL string, timeout time.Duration, recorder Recorder) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		recorder: recorder,
	}
}

// WithHTTPClient replaces the transport, mainly for tests
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	cp := *c
	cp.http = hc
	return &cp
}

// WithTokens returns a view of c that authenticates with ts
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	out    any
}

func (c *Client) do(ctx context.Context, cl call) error {
	err := c.execute(ctx, cl)
	if c.recorder != nil {
		outcome := "ok"
		if err != nil {
			outcome = string(apperr.KindOf(err))
			if outcome == "" {
				outcome = "error"
			}
		}
		c.recorder.UpstreamCall(cl.op, outcome)
	}
	return err
}

func (c *Client) execute(ctx context.Context, cl call) error {
	var payload []byte
	if cl.body != nil {
		var err error
		if payload, err = json.Marshal(cl.body); err != nil {
			return fmt.Errorf("failed to encode %s request: %w", cl.op, err)
		}
	}

	token := ""
	if c.tokens != nil {
		token = c.tokens.AccessToken()
	}

	resp, err := c.send(ctx, cl, payload, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
		drain(resp)
		slog.Debug("Upstream rejected token, refreshing", "operation", cl.op)

		fresh, err := c.tokens.Refresh(ctx, token)
		if err != nil {
			if apperr.IsAuthExpired(err) {
				return err
			}
			return apperr.AuthExpired(err)
		}
		if resp, err = c.send(ctx, cl, payload, fresh); err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			drain(resp)
			return apperr.AuthExpired(&StatusError{Op: cl.op, Status: resp.StatusCode})
		}
	}
	defer drain(resp)

	if resp.StatusCode >= 300 {
		return statusError(cl.op, resp)
	}
	if cl.out == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Transient(fmt.Sprintf("failed to read %s response", cl.op), err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, cl.out); err != nil {
		return apperr.Transient(fmt.Sprintf("failed to decode %s response", cl.op), err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, cl call, payload []byte, token string) (*http.Response, error) {
	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Transient(fmt.Sprintf("%s request failed", cl.op), err)
	}
	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

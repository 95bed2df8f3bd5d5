// Package bookapi is the HTTP client for the remote book API
//
// It injects the bearer token, maps status codes onto perr codes and
// resolves the response envelope once; it never retries on its own, that is
// left to the batcher sitting above it.
package bookapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"shelfsync/internal/platform/config"
	perr "shelfsync/internal/platform/errors"
	"shelfsync/internal/platform/logger"
)

const (
	baseURLDefault = "http://localhost:5000"
	defaultTimeout = 15 * time.Second
	defaultUA      = "shelfsync"
	defaultMaxBody = 1 << 20
)

// Options configures the Client
type Options struct {
	BaseURL   string
	Token     string
	UserAgent string
	Timeout   time.Duration
	// MaxBody caps how many response bytes are read
	MaxBody int64
	// HTTP overrides the transport client, mostly for tests
	HTTP *http.Client
}

// FromConfig reads BOOKAPI_* keys
func FromConfig(cfg config.Conf) Options {
	return Options{
		BaseURL:   cfg.MayURL("BASE_URL", baseURLDefault),
		Token:     cfg.MayString("TOKEN", ""),
		UserAgent: cfg.MayString("USER_AGENT", defaultUA),
		Timeout:   cfg.MayDuration("TIMEOUT", defaultTimeout),
		MaxBody:   int64(cfg.MayInt("MAX_BODY", defaultMaxBody)),
	}
}

// Client talks to the book API
type Client struct {
	http  *http.Client
	opts  Options
	token atomic.Pointer[string]
	log   logger.Logger
	now   func() time.Time
}

// New creates a Client with sane defaults
func New(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxBody <= 0 {
		o.MaxBody = defaultMaxBody
	}
	hc := o.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	c := &Client{
		http: hc,
		opts: o,
		log:  *logger.Named("bookapi"),
		now:  time.Now,
	}
	c.SetToken(o.Token)
	return c
}

// SetToken replaces the bearer token; empty clears it
func (c *Client) SetToken(tok string) {
	tok = strings.TrimSpace(tok)
	c.token.Store(&tok)
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string { return c.opts.BaseURL }

// Do issues one request and returns the response body for 2xx statuses
// Transport failures become ErrorCodeNetwork; non 2xx statuses go through perr.FromStatus
func (c *Client) Do(ctx context.Context, method, path string, q url.Values, body any) ([]byte, error) {
	u := c.opts.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeJSON, "bookapi encode body")
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "bookapi new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token.Load(); tok != nil && *tok != "" {
		req.Header.Set("Authorization", "Bearer "+*tok)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, perr.Wrap(ctxErr, perr.ErrorCodeCanceled, "bookapi request canceled")
		}
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Dur("latency", lat).Msg("bookapi transport error")
		return nil, perr.Wrapf(err, perr.ErrorCodeNetwork, "bookapi %s %s", method, path)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", path).Msg("bookapi close body failed")
		}
	}()

	retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"), c.now())
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Dur("retry_after", retryAfter).
		Msg("bookapi http response")

	b, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBody))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeNetwork, "bookapi read body %s", path)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return b, nil
	}

	e := perr.FromStatus(resp.StatusCode, statusMessage(resp.StatusCode, b))
	if retryAfter > 0 {
		e = perr.WithRetryAfter(e, retryAfter)
	}
	return nil, perr.WithOp(e, method+" "+path)
}

// getJSON is Do for GETs decoding into dest
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, dest any) error {
	b, err := c.Do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return err
	}
	return decode(b, dest)
}

func decode(b []byte, dest any) error {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(dest); err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "bookapi decode body")
	}
	return nil
}

// statusMessage pulls message or error from a json error body, else a short tail
func statusMessage(status int, body []byte) string {
	var m struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &m) == nil {
		if m.Message != "" {
			return m.Message
		}
		if m.Error != "" {
			return m.Error
		}
	}
	tail := strings.TrimSpace(string(body))
	if len(tail) > 256 {
		tail = tail[:256]
	}
	if tail == "" {
		return "bookapi status " + strconv.Itoa(status)
	}
	return "bookapi status " + strconv.Itoa(status) + ": " + tail
}

// parseRetryAfter accepts delta seconds or an HTTP date
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if s, err := strconv.Atoi(v); err == nil {
		if s <= 0 {
			return 0
		}
		return time.Duration(s) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}

// statusIn reports whether err carries one of the given upstream statuses
func statusIn(err error, statuses ...int) bool {
	s := perr.StatusOf(err)
	for _, want := range statuses {
		if s == want {
			return true
		}
	}
	return false
}

// Package concierge is the HTTP client for the Canyon chat service.
package concierge

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"

	"github.com/zhouzirui/canyon-webchat/internal/model/chat"
)

const (
	WebchatPath = "/webchat"
	ResetPath   = "/reset_session"

	maxBodyBytes = 1 << 20
)

var (
	// ErrSendFailed wraps every failure of Send: transport, status or decoding.
	ErrSendFailed = errors.New("webchat request failed")
	// ErrResetFailed wraps transport failures of Reset.
	ErrResetFailed = errors.New("reset request failed")
)

// Options configures a Client.
type Options struct {
	BaseURL string
	// User is sent as the User field of every message.
	User string
	// Timeout applies to the underlying http.Client. Zero means none.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client talks to /webchat and /reset_session. Cookies are kept between
// calls so that a reset clears the same server session that messages use.
type Client struct {
	base   *url.URL
	user   string
	http   *http.Client
	logger zerolog.Logger
}

// New validates the base URL and prepares a cookie-carrying HTTP client.
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("concierge: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "concierge: invalid base URL %q", raw)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.Errorf("concierge: unsupported scheme %q", base.Scheme)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	} else {
		clone := *hc
		hc = &clone
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, errors.Wrap(err, "concierge: create cookie jar")
		}
		hc.Jar = jar
	}

	user := opts.User
	if user == "" {
		user = chat.DefaultGuestUser
	}

	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Client{
		base:   base,
		user:   user,
		http:   hc,
		logger: logger.With().Str("component", "concierge").Str("base_url", base.String()).Logger(),
	}, nil
}

// Send posts text to /webchat and returns the reply field.
func (c *Client) Send(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(chat.WebchatRequest{Body: text, User: c.user, Visited: false})
	if err != nil {
		return "", sendError(errors.Wrap(err, "encode request"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(WebchatPath), bytes.NewReader(payload))
	if err != nil {
		return "", sendError(errors.Wrap(err, "build request"))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", sendError(errors.Wrap(err, "post"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", sendError(errors.Wrap(err, "read response"))
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Int("bytes", len(body)).
		Msg("webchat response")

	// The service also answers errors with a reply body (HTTP 500 carries a
	// friendly message), so any status with a decodable reply counts.
	var reply chat.WebchatReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", sendError(errors.Wrapf(err, "decode response (status %d)", resp.StatusCode))
	}
	if reply.Reply == nil {
		return "", sendError(errors.Errorf("response without reply field (status %d)", resp.StatusCode))
	}
	return *reply.Reply, nil
}

// Reset posts to /reset_session. ok is true for any 2xx answer.
func (c *Client) Reset(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(ResetPath), nil)
	if err != nil {
		return false, resetError(errors.Wrap(err, "build request"))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, resetError(errors.Wrap(err, "post"))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	c.logger.Debug().Int("status", resp.StatusCode).Bool("ok", ok).Msg("reset response")
	return ok, nil
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String()
}

// requestError keeps the underlying cause reachable for errors.Is and
// errors.Cause while still matching its sentinel.
type requestError struct {
	sentinel error
	cause    error
}

func sendError(cause error) error  { return &requestError{sentinel: ErrSendFailed, cause: cause} }
func resetError(cause error) error { return &requestError{sentinel: ErrResetFailed, cause: cause} }

func (e *requestError) Error() string        { return e.sentinel.Error() + ": " + e.cause.Error() }
func (e *requestError) Unwrap() error        { return e.cause }
func (e *requestError) Cause() error         { return e.cause }
func (e *requestError) Is(target error) bool { return target == e.sentinel }

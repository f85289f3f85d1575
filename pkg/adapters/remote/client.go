// Package remote talks to the command execution backend over HTTP.
//
// Client implements ports.Executor, ports.Suggester and ports.StatusProvider.
// Executions are never retried because running a shell command twice is not
// safe; suggestion and status lookups are idempotent and retry on transient
// failures. All calls share one token-bucket rate limiter.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/aiterm/internal/logging"
	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const maxErrorBody = 512

// Client is the HTTP adapter for the execution backend.
type Client struct {
	baseURL     string
	executePath string
	suggestPath string
	statusPath  string
	userAgent   string

	retries  int
	retryMin time.Duration
	retryMax time.Duration
	rps      float64
	burst    int
	logger   *slog.Logger

	exec    *resty.Client
	lookup  *resty.Client
	limiter *rate.Limiter
}

// Option configures the Client.
type Option func(*Client)

// WithPaths overrides the endpoint paths. Empty values keep the defaults.
func WithPaths(execute, suggest, status string) Option {
	return func(c *Client) {
		if execute != "" {
			c.executePath = execute
		}
		if suggest != "" {
			c.suggestPath = suggest
		}
		if status != "" {
			c.statusPath = status
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.rps = rps
		c.burst = burst
	}
}

// WithRetries sets how often suggestion and status lookups are retried.
func WithRetries(n int, minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.retries = n
		c.retryMin = minWait
		c.retryMax = maxWait
	}
}

// WithLogger configures a logger for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		executePath: "/api/execute",
		suggestPath: "/api/suggestions",
		statusPath:  "/api/status",
		userAgent:   "aiterm",
		retries:     2,
		retryMin:    100 * time.Millisecond,
		retryMax:    time.Second,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = c.retries
	retryClient.RetryWaitMin = c.retryMin
	retryClient.RetryWaitMax = c.retryMax
	retryClient.Logger = c.logger
	// Hand the last response back so non-2xx answers surface as RemoteError.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c.exec = resty.New().
		SetBaseURL(c.baseURL).
		SetTransport(retryClient.HTTPClient.Transport).
		SetHeader("User-Agent", c.userAgent).
		SetHeader("Accept", "application/json")

	c.lookup = resty.NewWithClient(retryClient.StandardClient()).
		SetBaseURL(c.baseURL).
		SetHeader("User-Agent", c.userAgent).
		SetHeader("Accept", "application/json")

	limit := rate.Inf
	if c.rps > 0 {
		limit = rate.Limit(c.rps)
	}
	burst := c.burst
	if burst <= 0 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(limit, burst)
	return c
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// executeBody mirrors domain.ExecuteResponse with presence checks on required fields.
type executeBody struct {
	Output             *string `json:"output"`
	ExitCode           *int    `json:"exit_code"`
	Directory          string  `json:"directory"`
	IsNaturalLanguage  bool    `json:"is_natural_language"`
	Interpretation     string  `json:"interpretation"`
	InterpretedCommand string  `json:"interpreted_command"`
	OriginalInput      string  `json:"original_input"`
}

// Execute sends one command to the backend. It is never retried.
func (c *Client) Execute(ctx context.Context, req domain.ExecuteRequest) (domain.ExecuteResponse, error) {
	if err := c.wait(ctx); err != nil {
		return domain.ExecuteResponse{}, fmt.Errorf("execute %q: %w", req.Command, err)
	}

	resp, err := c.exec.R().
		SetContext(ctx).
		SetBody(req).
		Post(c.executePath)
	if err != nil {
		return domain.ExecuteResponse{}, fmt.Errorf("execute %q: %w", req.Command, err)
	}
	if resp.IsError() {
		return domain.ExecuteResponse{}, remoteError(resp)
	}

	var body executeBody
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return domain.ExecuteResponse{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if body.ExitCode == nil {
		return domain.ExecuteResponse{}, fmt.Errorf("%w: missing exit_code", domain.ErrMalformedResponse)
	}

	out := domain.ExecuteResponse{
		ExitCode:           *body.ExitCode,
		Directory:          body.Directory,
		IsNaturalLanguage:  body.IsNaturalLanguage,
		Interpretation:     body.Interpretation,
		InterpretedCommand: body.InterpretedCommand,
		OriginalInput:      body.OriginalInput,
	}
	if body.Output != nil {
		out.Output = *body.Output
	}
	// Older backends only report the interpreted command.
	if out.InterpretedCommand != "" && !out.IsNaturalLanguage {
		out.IsNaturalLanguage = true
		if out.OriginalInput == "" {
			out.OriginalInput = req.Command
		}
	}
	c.logger.Debug("Executed remote command", "command", req.Command, "exit_code", out.ExitCode)
	return out, nil
}

// Suggest asks the backend for completions of partial.
func (c *Client) Suggest(ctx context.Context, partial string) ([]string, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.lookup.R().
		SetContext(ctx).
		SetBody(domain.SuggestRequest{Partial: partial}).
		Post(c.suggestPath)
	if err != nil {
		return nil, fmt.Errorf("suggest %q: %w", partial, err)
	}
	if resp.IsError() {
		return nil, remoteError(resp)
	}

	var body struct {
		Suggestions *[]string `json:"suggestions"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if body.Suggestions == nil {
		return nil, fmt.Errorf("%w: missing suggestions", domain.ErrMalformedResponse)
	}
	return *body.Suggestions, nil
}

// Status fetches the backend's terminal status.
func (c *Client) Status(ctx context.Context) (domain.Status, error) {
	if err := c.wait(ctx); err != nil {
		return domain.Status{}, err
	}

	resp, err := c.lookup.R().
		SetContext(ctx).
		Get(c.statusPath)
	if err != nil {
		return domain.Status{}, fmt.Errorf("status: %w", err)
	}
	if resp.IsError() {
		return domain.Status{}, remoteError(resp)
	}

	var st domain.Status
	if err := json.Unmarshal(resp.Body(), &st); err != nil {
		return domain.Status{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return st, nil
}

// remoteError builds a RemoteError, preferring a JSON "detail" message over the raw body.
func remoteError(resp *resty.Response) *domain.RemoteError {
	body := strings.TrimSpace(resp.String())
	var detail struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(resp.Body(), &detail) == nil && detail.Detail != "" {
		body = detail.Detail
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return &domain.RemoteError{StatusCode: resp.StatusCode(), Body: body}
}

// wait takes a token from the limiter. A wait that cannot finish before the
// context deadline is reported as context.DeadlineExceeded.
func (c *Client) wait(ctx context.Context) error {
	err := c.limiter.Wait(ctx)
	if err == nil || ctx.Err() != nil {
		return err
	}
	if _, ok := ctx.Deadline(); ok {
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return err
}

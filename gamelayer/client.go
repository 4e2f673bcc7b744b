package gamelayer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LazyTarget/Considition-2020/model"
	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public competition API.
const DefaultBaseURL = "https://game.considition.com/api"

// Client talks to the game server over HTTP. It is safe for concurrent use;
// all requests share one rate limiter.
type Client struct {
	baseURL    string
	apiKey     string
	http       *http.Client
	limiter    *rate.Limiter
	maxTries   uint
	newBackOff func() backoff.BackOff
}

type Option func(*Client)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each request, including reading the response.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			return
		}
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithRateLimit paces requests to r per second with the given burst.
// r <= 0 disables pacing.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) {
		if r <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(r), max(burst, 1))
	}
}

// WithRetries sets how many times a read is attempted and the backoff between attempts.
// Actions are never retried.
func WithRetries(tries uint, newBackOff func() backoff.BackOff) Option {
	return func(c *Client) {
		c.maxTries = max(tries, 1)
		if newBackOff != nil {
			c.newBackOff = newBackOff
		}
	}
}

func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(5), 5),
		maxTries: 4,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewGame creates a game on mapName and returns its id. The game still has to be started.
func (c *Client) NewGame(ctx context.Context, mapName string) (string, error) {
	var resp NewGameResponse
	if err := c.send(ctx, http.MethodPost, PathNewGame, url.Values{"mapName": {mapName}}, nil, &resp); err != nil {
		return "", err
	}
	if resp.GameID == "" {
		return "", errors.New("new game: empty game id")
	}
	return resp.GameID, nil
}

func (c *Client) StartGame(ctx context.Context, gameID string) error {
	return c.send(ctx, http.MethodPost, PathStartGame, gameQuery(gameID), nil, nil)
}

// EndGame ends a game before its last turn. Games that ran all turns end on their own.
func (c *Client) EndGame(ctx context.Context, gameID string) error {
	return c.send(ctx, http.MethodPost, PathEndGame, gameQuery(gameID), nil, nil)
}

// GameInfo describes gameID, or the most recent game when gameID is empty.
func (c *Client) GameInfo(ctx context.Context, gameID string) (GameInfo, error) {
	var info GameInfo
	err := c.get(ctx, PathGameInfo, gameQuery(gameID), &info)
	return info, err
}

func (c *Client) GameState(ctx context.Context, gameID string) (model.GameState, error) {
	var gs model.GameState
	err := c.get(ctx, PathGameState, gameQuery(gameID), &gs)
	return gs, err
}

func (c *Client) Score(ctx context.Context, gameID string) (model.Score, error) {
	var score model.Score
	err := c.get(ctx, PathScore, gameQuery(gameID), &score)
	return score, err
}

// Action submits one action and returns the state that follows it.
// cmd may be nil for actions without a body.
func (c *Client) Action(ctx context.Context, gameID, path string, cmd any) (model.GameState, error) {
	var gs model.GameState
	err := c.send(ctx, http.MethodPost, path, gameQuery(gameID), cmd, &gs)
	return gs, err
}

// get performs an idempotent read, retrying transient failures.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := c.send(ctx, http.MethodGet, path, query, nil, out)
		if err != nil && !temporary(ctx, err) {
			return struct{}{}, backoff.Permanent(err)
		}
		if err != nil {
			slog.Debug("retrying game api read", "path", path, "error", err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.maxTries),
	)
	return err
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := newRequest(ctx, method, c.baseURL+path, query, body)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	return readResponse(resp, out)
}

func temporary(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return true
}

func gameQuery(gameID string) url.Values {
	if gameID == "" {
		return nil
	}
	return url.Values{"gameId": {gameID}}
}

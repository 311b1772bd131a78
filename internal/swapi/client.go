package swapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"holocron/internal/catalog"
	"holocron/internal/config"
	"holocron/internal/logging"
	"holocron/internal/services"
)

const (
	component = "swapi"

	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 5 * time.Second

	maxBodyBytes = 1 << 20
)

// Gateway fetches a single catalog entity by card identifier.
type Gateway interface {
	Fetch(ctx context.Context, id catalog.CardID) (Entity, error)
}

// Client provides access to the remote catalog.
type Client struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

var _ Gateway = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		c.userAgent = strings.TrimSpace(agent)
	}
}

// WithRateLimit paces outgoing requests. A non-positive rate disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a catalog client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("swapi base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, component)
	return client, nil
}

// NewFromConfig builds a client from the [catalog] configuration section.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	base := []Option{
		WithTimeout(cfg.CatalogTimeout()),
		WithUserAgent(cfg.Catalog.UserAgent),
		WithRateLimit(cfg.Catalog.RequestsPerSecond),
		WithLogger(logger),
	}
	return New(cfg.Catalog.BaseURL, append(base, opts...)...)
}

// Fetch retrieves the entity identified by id. Identifiers outside the
// category's valid set are rejected without contacting the remote service.
func (c *Client) Fetch(ctx context.Context, id catalog.CardID) (Entity, error) {
	if !id.Valid() {
		return Entity{}, services.Wrap(services.ErrInvalidIdentifier, component, "fetch", fmt.Sprintf("%s is not a catalog identifier", id), nil)
	}

	entity := Entity{Category: id.Category}
	var target any
	switch id.Category {
	case catalog.Movies:
		entity.Movie = &Movie{}
		target = entity.Movie
	case catalog.Characters:
		entity.Character = &Character{}
		target = entity.Character
	case catalog.Starships:
		entity.Starship = &Starship{}
		target = entity.Starship
	}

	if err := c.get(ctx, id, target); err != nil {
		return Entity{}, err
	}
	if err := entity.validate(); err != nil {
		return Entity{}, services.Wrap(services.ErrShape, component, "fetch "+id.String(), "", err)
	}
	return entity, nil
}

// FetchMovie retrieves a film by number.
func (c *Client) FetchMovie(ctx context.Context, number int) (*Movie, error) {
	entity, err := c.Fetch(ctx, catalog.NewCardID(catalog.Movies, number))
	if err != nil {
		return nil, err
	}
	return entity.Movie, nil
}

// FetchCharacter retrieves a person by number.
func (c *Client) FetchCharacter(ctx context.Context, number int) (*Character, error) {
	entity, err := c.Fetch(ctx, catalog.NewCardID(catalog.Characters, number))
	if err != nil {
		return nil, err
	}
	return entity.Character, nil
}

// FetchStarship retrieves a starship by number.
func (c *Client) FetchStarship(ctx context.Context, number int) (*Starship, error) {
	entity, err := c.Fetch(ctx, catalog.NewCardID(catalog.Starships, number))
	if err != nil {
		return nil, err
	}
	return entity.Starship, nil
}

func (c *Client) get(ctx context.Context, id catalog.CardID, target any) error {
	operation := "fetch " + id.String()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return services.Wrap(services.ErrNetwork, component, operation, "rate limit wait", err)
			}
			return services.Wrap(services.ErrTimeout, component, operation, "rate limit wait", err)
		}
	}

	endpoint := fmt.Sprintf("%s/%s/%d/", c.baseURL, id.Category.Resource(), id.Number)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrNetwork, component, operation, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return c.classify(ctx, operation, latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		c.logger.Debug("catalog request rejected",
			logging.String(logging.FieldCardID, id.String()),
			logging.Int("status", resp.StatusCode),
			logging.Duration("latency", latency))
		return services.Wrap(services.ErrUpstream, component, operation,
			fmt.Sprintf("status %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(target); err != nil {
		if ctx.Err() != nil {
			return c.classify(ctx, operation, latency, err)
		}
		return services.Wrap(services.ErrShape, component, operation, "decode response", err)
	}

	c.logger.Debug("catalog entity fetched",
		logging.String(logging.FieldCardID, id.String()),
		logging.Duration("latency", latency))
	return nil
}

// classify maps transport failures onto the timeout and network markers.
func (c *Client) classify(ctx context.Context, operation string, latency time.Duration, err error) error {
	message := ""
	if latency > 0 {
		message = fmt.Sprintf("latency=%v", latency)
	}
	if isTimeout(ctx, err) {
		return services.Wrap(services.ErrTimeout, component, operation,
			strings.TrimSpace(fmt.Sprintf("request exceeded %v %s", c.timeout, message)), err)
	}
	return services.Wrap(services.ErrNetwork, component, operation, message, err)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

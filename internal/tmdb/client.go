package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"reelist/internal/config"
	"reelist/internal/logging"
	"reelist/internal/respcache"
	"reelist/internal/services"
)

// DefaultBaseURL is the public TMDB v3 API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// DefaultLanguage is sent when no language is configured.
const DefaultLanguage = "en-US"

// detailAppends are the sub-resources embedded in a details response.
const detailAppends = "videos,credits,similar,recommendations"

const tracerName = "reelist/internal/tmdb"

// Catalog defines the TMDB operations consumed by the discovery layer and CLI.
type Catalog interface {
	SearchMovies(ctx context.Context, query string, page int) (*SearchResponse, error)
	GetMovieDetails(ctx context.Context, movieID int64) (*MovieDetails, error)
	GetPopularMovies(ctx context.Context, page int) (*SearchResponse, error)
	GetGenres(ctx context.Context) (*GenreList, error)
	ImageURL(path string, size ImageSize) string
}

// FetchError reports a failed catalog request. It matches services.ErrFetch.
type FetchError struct {
	Op     string
	Path   string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	b.WriteString("tmdb ")
	b.WriteString(e.Op)
	b.WriteString(" ")
	b.WriteString(e.Path)
	if e.Status != 0 {
		b.WriteString(" returned ")
		b.WriteString(strconv.Itoa(e.Status))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{services.ErrFetch}
	}
	return []error{services.ErrFetch, e.Err}
}

// Client provides cached access to the TMDB API.
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	httpClient   *http.Client
	cache        *respcache.Cache
	flight       singleflight.Group
	tracer       trace.Tracer
	logger       *slog.Logger
}

var _ Catalog = (*Client)(nil)

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

// WithCache shares an existing response cache.
func WithCache(cache *respcache.Cache) Option {
	return func(c *Client) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithImageBaseURL overrides the image host.
func WithImageBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimSpace(base); base != "" {
			c.imageBaseURL = base
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "tmdb")
	}
}

// WithTracer overrides the tracer used for fetch spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// New creates a TMDB client. The API key is required.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new client", "api key required", nil)
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	language = strings.TrimSpace(language)
	if language == "" {
		language = DefaultLanguage
	}
	client := &Client{
		apiKey:       apiKey,
		baseURL:      baseURL,
		imageBaseURL: DefaultImageBaseURL,
		language:     language,
		httpClient:   &http.Client{},
		tracer:       otel.Tracer(tracerName),
		logger:       logging.NewComponentLogger(nil, "tmdb"),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cache == nil {
		client.cache = respcache.New(respcache.DefaultTTL)
	}
	return client, nil
}

// NewFromConfig builds a client from the [tmdb] configuration section.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new client", "config required", nil)
	}
	if err := cfg.RequireTMDBKey(); err != nil {
		return nil, err
	}
	base := []Option{
		WithCache(respcache.New(cfg.CacheTTL())),
		WithImageBaseURL(cfg.TMDB.ImageBaseURL),
		WithLogger(logger),
	}
	if timeout := cfg.RequestTimeout(); timeout > 0 {
		base = append(base, WithHTTPClient(&http.Client{Timeout: timeout}))
	}
	return New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language, append(base, opts...)...)
}

// Cache exposes the response cache for inspection.
func (c *Client) Cache() *respcache.Cache {
	return c.cache
}

// SearchMovies searches movies by title. Blank queries are sent as given.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(normalizePage(page)))
	params.Set("include_adult", "false")

	var payload SearchResponse
	if err := c.fetch(ctx, "search", "/search/movie", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetMovieDetails fetches one movie with videos, credits, similar titles, and recommendations.
func (c *Client) GetMovieDetails(ctx context.Context, movieID int64) (*MovieDetails, error) {
	params := url.Values{}
	params.Set("append_to_response", detailAppends)

	var payload MovieDetails
	if err := c.fetch(ctx, "details", "/movie/"+strconv.FormatInt(movieID, 10), params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetPopularMovies fetches a page of currently popular movies.
func (c *Client) GetPopularMovies(ctx context.Context, page int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(normalizePage(page)))

	var payload SearchResponse
	if err := c.fetch(ctx, "popular", "/movie/popular", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetGenres fetches the movie genre list.
func (c *Client) GetGenres(ctx context.Context) (*GenreList, error) {
	var payload GenreList
	if err := c.fetch(ctx, "genres", "/genre/movie/list", url.Values{}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func normalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// fetch serves path from the cache when fresh, otherwise downloads it and
// stores the body once it decodes into out.
func (c *Client) fetch(ctx context.Context, op, path string, params url.Values, out any) error {
	params.Set("language", c.language)
	key := respcache.Fingerprint(path, params)

	ctx, span := c.tracer.Start(ctx, "tmdb.fetch", trace.WithAttributes(
		attribute.String("tmdb.path", path),
		attribute.String("tmdb.op", op),
	))
	defer span.End()
	logger := logging.WithContext(ctx, c.logger)

	if entry, ok := c.cache.Lookup(key, c.cache.Now()); ok {
		if err := json.Unmarshal(entry.Payload, out); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			logger.Debug("catalog cache hit", logging.String("path", path), logging.String("op", op))
			return nil
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	params.Set("api_key", c.apiKey)
	start := time.Now()
	// The shared download outlives any single caller so a cancelled caller
	// neither fails the others nor keeps a late response out of the cache.
	results := c.flight.DoChan(key, func() (any, error) {
		return c.downloadAndCache(context.WithoutCancel(ctx), op, path, key, params, out)
	})
	var result singleflight.Result
	select {
	case result = <-results:
	case <-ctx.Done():
		err := &FetchError{Op: op, Path: path, Err: ctx.Err()}
		span.RecordError(err)
		span.SetStatus(codes.Error, "caller cancelled")
		return err
	}
	latency := time.Since(start)
	if err := result.Err; err != nil {
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) && fetchErr.Status != 0 {
			span.SetAttributes(attribute.Int("http.status_code", fetchErr.Status))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		logger.Debug("catalog request failed",
			logging.String("path", path),
			logging.Duration("latency", latency),
			logging.Error(err),
		)
		return err
	}
	span.SetAttributes(attribute.Int("http.status_code", http.StatusOK))

	if err := json.Unmarshal(result.Val.([]byte), out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return &FetchError{Op: op, Path: path, Status: http.StatusOK, Err: fmt.Errorf("decode response: %w", err)}
	}
	logger.Debug("catalog request",
		logging.String("path", path),
		logging.Bool("shared", result.Shared),
		logging.Duration("latency", latency),
	)
	return nil
}

// downloadAndCache fetches path and stores the body once it decodes into a
// fresh value of out's type.
func (c *Client) downloadAndCache(ctx context.Context, op, path, key string, params url.Values, out any) ([]byte, error) {
	body, err := c.download(ctx, op, path, params)
	if err != nil {
		return nil, err
	}
	target := reflect.New(reflect.TypeOf(out).Elem()).Interface()
	if err := json.Unmarshal(body, target); err != nil {
		return nil, &FetchError{Op: op, Path: path, Status: http.StatusOK, Err: fmt.Errorf("decode response: %w", err)}
	}
	c.cache.Put(key, body)
	return body, nil
}

func (c *Client) download(ctx context.Context, op, path string, params url.Values) ([]byte, error) {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, &FetchError{Op: op, Path: path, Err: fmt.Errorf("parse url: %w", err)}
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, &FetchError{Op: op, Path: path, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Op: op, Path: path, Err: redactKey(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{Op: op, Path: path, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Op: op, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// redactKey rewrites the request URL a transport error carries so the
// api_key query value is masked. Other text in the message is left alone.
func redactKey(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	parsed, parseErr := url.Parse(urlErr.URL)
	if parseErr != nil {
		return &url.Error{Op: urlErr.Op, URL: "[unparseable url]", Err: urlErr.Err}
	}
	query := parsed.Query()
	if !query.Has("api_key") {
		return err
	}
	query.Set("api_key", "REDACTED")
	parsed.RawQuery = query.Encode()
	return &url.Error{Op: urlErr.Op, URL: parsed.String(), Err: urlErr.Err}
}

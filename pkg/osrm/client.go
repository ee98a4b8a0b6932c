package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/Collectorx/pkg"
	da "github.com/lintang-b-s/Collectorx/pkg/datastructure"
	"github.com/lintang-b-s/Collectorx/pkg/geo"
	"github.com/lintang-b-s/Collectorx/pkg/metrics"
	"github.com/lintang-b-s/Collectorx/pkg/util"
	"github.com/sony/gobreaker"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Config struct {
	BaseURL    string
	Profile    string
	Annotation string // distance | duration
	Timeout    time.Duration
	RateLimit  float64 // requests per second, 0 = unlimited
	Retries    int
	RetryDelay time.Duration
	CacheSize  int
}

func DefaultConfig() Config {
	return Config{
		BaseURL:    pkg.DEFAULT_OSRM_BASE_URL,
		Profile:    pkg.DEFAULT_OSRM_PROFILE,
		Annotation: pkg.DEFAULT_OSRM_ANNOTATION,
		Timeout:    15 * time.Second,
		RateLimit:  5,
		Retries:    3,
		RetryDelay: 500 * time.Millisecond,
		CacheSize:  pkg.DEFAULT_OSRM_MATRIX_CACHE_SIZE,
	}
}

// ConfigFromViper reads the OSRM_* keys.
func ConfigFromViper() Config {
	cfg := DefaultConfig()
	cfg.BaseURL = viper.GetString("OSRM_BASE_URL")
	cfg.Profile = viper.GetString("OSRM_PROFILE")
	cfg.Annotation = viper.GetString("OSRM_ANNOTATION")
	cfg.Timeout = viper.GetDuration("OSRM_TIMEOUT")
	cfg.RateLimit = viper.GetFloat64("OSRM_RATE_LIMIT")
	cfg.Retries = viper.GetInt("OSRM_RETRIES")
	cfg.RetryDelay = viper.GetDuration("OSRM_RETRY_DELAY")
	cfg.CacheSize = viper.GetInt("OSRM_MATRIX_CACHE_SIZE")
	return cfg
}

// Client fetches cost matrices and route geometry from an OSRM server.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	cache   *lru.Cache[string, *da.CostMatrix]
	log     *zap.Logger
	metric  *metrics.Metric
}

func NewClient(cfg Config, log *zap.Logger, metric *metrics.Metric) (*Client, error) {
	if cfg.Annotation != "distance" && cfg.Annotation != "duration" {
		return nil, fmt.Errorf("osrm: unsupported annotation %q", cfg.Annotation)
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = pkg.DEFAULT_OSRM_MATRIX_CACHE_SIZE
	}
	cache, err := lru.New[string, *da.CostMatrix](cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "osrm-" + cfg.Profile,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 10 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("osrm circuit breaker state changed", zap.String("name", name),
				zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		breaker: breaker,
		cache:   cache,
		log:     log,
		metric:  metric,
	}, nil
}

// isBreakerSuccess reports whether err leaves the breaker closed. Only queries OSRM rejected
// as invalid count as successes; transport errors, 5xx and unreadable payloads do not.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var uErr *util.Error
	return errors.As(err, &uErr) && uErr.Code() == util.ErrBadParamInput
}

// Table returns the n x n cost matrix between coords (index order preserved). Pairs OSRM
// reports as null are unreachable.
func (c *Client) Table(ctx context.Context, coords []geo.Coordinate) (*da.CostMatrix, error) {
	if len(coords) == 0 {
		return nil, util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput, "no coordinates to build a cost matrix")
	}
	locs := geo.JoinLonLat(coords)
	key := c.cfg.Profile + "|" + c.cfg.Annotation + "|" + locs
	if m, ok := c.cache.Get(key); ok {
		return m, nil
	}

	url := fmt.Sprintf("%s/table/v1/%s/%s?annotations=%s", c.cfg.BaseURL, c.cfg.Profile, locs, c.cfg.Annotation)
	var resp tableResponse
	if err := c.get(ctx, "table", url, &resp); err != nil {
		return nil, err
	}
	if resp.Code != "Ok" {
		return nil, util.WrapErrorf(util.ErrProviderUnavailable, util.ErrBadParamInput,
			"osrm table request failed: %s %s", resp.Code, resp.Message)
	}

	rows := resp.Distances
	if c.cfg.Annotation == "duration" {
		rows = resp.Durations
	}
	if rows == nil {
		return nil, util.WrapErrorf(util.ErrProviderUnavailable, util.ErrInternalServerError,
			"no %ss returned from osrm", c.cfg.Annotation)
	}

	m, err := da.NewCostMatrixNullable(rows)
	if err != nil {
		return nil, err
	}
	if m.Size() != len(coords) {
		return nil, util.WrapErrorf(util.ErrProviderUnavailable, util.ErrInternalServerError,
			"osrm returned a %d x %d matrix for %d coordinates", m.Size(), m.Size(), len(coords))
	}

	c.cache.Add(key, m)
	return m, nil
}

// Route returns the road geometry visiting coords in order.
func (c *Client) Route(ctx context.Context, coords []geo.Coordinate) (*Route, error) {
	if len(coords) < 2 {
		return nil, util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput, "a route needs at least two coordinates")
	}

	url := fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=geojson", c.cfg.BaseURL, c.cfg.Profile,
		geo.JoinLonLat(coords))
	var resp routeResponse
	if err := c.get(ctx, "route", url, &resp); err != nil {
		return nil, err
	}
	if resp.Code != "Ok" || len(resp.Routes) == 0 {
		return nil, util.WrapErrorf(util.ErrProviderUnavailable, util.ErrNotFound,
			"no route returned from osrm: %s %s", resp.Code, resp.Message)
	}

	best := resp.Routes[0]
	geometry := make([]geo.Coordinate, 0, len(best.Geometry.Coordinates))
	for _, lonLat := range best.Geometry.Coordinates {
		if len(lonLat) < 2 {
			continue
		}
		geometry = append(geometry, geo.NewCoordinate(lonLat[1], lonLat[0]))
	}

	return &Route{
		Geometry: geometry,
		Distance: best.Distance,
		Duration: best.Duration,
	}, nil
}

func (c *Client) get(ctx context.Context, service, url string, out interface{}) error {
	began := time.Now()
	err := Retry(ctx, c.cfg.Retries, c.cfg.RetryDelay, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		_, err := c.breaker.Execute(func() (interface{}, error) {
			return nil, c.do(ctx, url, out)
		})
		return err
	})
	c.metric.ObserveProvider(service, time.Since(began), err)

	if err != nil {
		c.log.Error("osrm request failed", zap.String("service", service), zap.Error(err))
		var uErr *util.Error
		if errors.As(err, &uErr) {
			return err
		}
		return util.WrapErrorf(util.ErrProviderUnavailable, util.ErrInternalServerError,
			"osrm %s request failed: %v", service, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return &RetryableError{Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return &RetryableError{Err: err}
	}

	if res.StatusCode >= http.StatusInternalServerError {
		return &RetryableError{Err: fmt.Errorf("osrm responded %d", res.StatusCode)}
	}
	if res.StatusCode >= http.StatusBadRequest {
		// OSRM reports invalid queries as 400 with a JSON code/message body
		var osrmErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &osrmErr)
		return util.WrapErrorf(util.ErrProviderUnavailable, util.ErrBadParamInput,
			"osrm rejected the request (%d): %s %s", res.StatusCode, osrmErr.Code, osrmErr.Message)
	}

	return json.Unmarshal(body, out)
}

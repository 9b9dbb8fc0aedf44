package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/resonatehq/console/internal/metrics"
	"github.com/resonatehq/console/internal/util"
	"github.com/resonatehq/console/internal/version"
)

// maximum number of bytes read from an error response
const maxErrorBody = 1 << 20

// Client issues json requests against one backend origin.
type Client interface {
	// Get fetches prefix+path and decodes the response body into out.
	Get(ctx context.Context, path string, out any) error

	// Post sends body as json to prefix+path and decodes the response body
	// into out.
	Post(ctx context.Context, path string, body any, out any) error

	// Health checks the unprefixed /health endpoint of the backend.
	Health(ctx context.Context) error
}

type Config struct {
	Url         string        `flag:"url" desc:"backend base url"`
	Prefix      string        `flag:"prefix" desc:"path prefix of backend resources"`
	Timeout     time.Duration `flag:"timeout" desc:"http request timeout" default:"30s"`
	ConnTimeout time.Duration `flag:"conn-timeout" desc:"http connection timeout" default:"10s"`
}

type Http struct {
	name    string
	base    string
	prefix  string
	client  *http.Client
	metrics *metrics.Metrics
}

func New(name string, config *Config, metrics *metrics.Metrics) (*Http, error) {
	if config.Url == "" {
		return nil, fmt.Errorf("%s backend url must be provided", name)
	}

	u, err := url.Parse(config.Url)
	if err != nil {
		return nil, fmt.Errorf("%s backend url is invalid: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%s backend url must use http or https, got %q", name, config.Url)
	}

	prefix := strings.TrimSuffix(config.Prefix, "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}

	return &Http{
		name:   name,
		base:   strings.TrimSuffix(config.Url, "/"),
		prefix: prefix,
		client: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: config.ConnTimeout,
				}).DialContext,
			},
		},
		metrics: metrics,
	}, nil
}

func (c *Http) String() string {
	return fmt.Sprintf("Http(name=%s, base=%s, prefix=%s)", c.name, c.base, c.prefix)
}

func (c *Http) Name() string {
	return c.name
}

func (c *Http) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, c.prefix+path, nil, out)
}

func (c *Http) Post(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPost, c.prefix+path, body, out)
}

func (c *Http) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Http) do(ctx context.Context, method string, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}

	id := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", id)
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.client.Do(req)
	c.metrics.BackendRequestSeconds.WithLabelValues(c.name, method).Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.BackendRequestsTotal.WithLabelValues(c.name, method, "error").Inc()
		slog.Warn("backend request failed", "backend", c.name, "method", method, "path", path, "id", id, "err", err)
		return err
	}
	defer util.DeferAndLog(res.Body.Close)

	c.metrics.BackendRequestsTotal.WithLabelValues(c.name, method, strconv.Itoa(res.StatusCode)).Inc()
	slog.Debug("backend request", "backend", c.name, "method", method, "path", path, "id", id, "status", res.StatusCode)

	if res.StatusCode >= http.StatusBadRequest {
		b, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &Error{
			Backend:    c.name,
			Method:     method,
			Path:       path,
			StatusCode: res.StatusCode,
			Detail:     detail(b),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode %s response: %w", c.name, err)
	}

	return nil
}

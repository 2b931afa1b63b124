package apikit

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

type Config struct {
	// BaseURL is the API origin every relative path resolves against.
	BaseURL string

	// HTTPClient is optional; a 30s-timeout client with a fresh cookie jar
	// is used when nil. A jar is installed if the given client has none,
	// since the session lives in cookies.
	HTTPClient *http.Client

	Logger   *zap.Logger
	Cache    Cache
	Notifier Notifier

	// QueryTTL is the default freshness window for cached queries.
	QueryTTL time.Duration

	// RateLimit caps outgoing requests per second. Zero disables it.
	RateLimit int

	// SessionCookie names the cookie that marks a signed-in session.
	SessionCookie string

	// LogoutPath is POSTed best-effort by Logout.
	LogoutPath string

	// Header is added to every outgoing request.
	Header http.Header
}

type Client struct {
	base     *url.URL
	http     *http.Client
	logger   *zap.Logger
	cache    Cache
	notifier Notifier
	queryTTL time.Duration
	limiter  *rate.Limiter
	session  string
	logout   string
	header   http.Header
	group    singleflight.Group
}

func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %s", config.BaseURL)
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		httpClient.Jar = jar
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cache := config.Cache
	if cache == nil {
		cache = NewMemoryCache()
	}
	notifier := config.Notifier
	if notifier == nil {
		notifier = &LogNotifier{Logger: logger}
	}
	ttl := config.QueryTTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), config.RateLimit)
	}
	session := config.SessionCookie
	if session == "" {
		session = "sessionid"
	}
	logout := config.LogoutPath
	if logout == "" {
		logout = "/auth/logout"
	}
	return &Client{
		base:     base,
		http:     httpClient,
		logger:   logger,
		cache:    cache,
		notifier: notifier,
		queryTTL: ttl,
		limiter:  limiter,
		session:  session,
		logout:   logout,
		header:   config.Header,
	}, nil
}

// Notify forwards display text to the configured notification surface.
func (c *Client) Notify(level Level, message string) {
	c.notifier.Notify(level, message)
}

// Report classifies err into display text, pushes it to the notification
// surface, and hands the original error back so callers can still inspect
// or propagate it.
func (c *Client) Report(err error) error {
	if err == nil {
		return nil
	}
	c.notifier.Notify(LevelError, Message(err))
	return err
}

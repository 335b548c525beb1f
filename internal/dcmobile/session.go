package dcmobile

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"dcinside-mobile/internal/assert"
	"dcinside-mobile/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("dcinside-mobile/dcmobile")

const (
	DefaultTimeout      = 15 * time.Second
	DefaultMaxRedirects = 10
)

type ClientOptions struct {
	Endpoints Endpoints
	UserAgent string
	// Timeout applies to every single request. Defaults to 15s.
	Timeout time.Duration
	// RetryCount is the number of extra attempts for page fetches and access
	// key calls. Mutating posts are never retried.
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	// RequestsPerSecond limits each session's request rate, 0 disables it.
	RequestsPerSecond float64
	CloudflareBypass  bool
	Proxy             string
	MaxRedirects      int
}

// Client creates sessions and executes mutations with them.
type Client struct {
	opts ClientOptions
	tel  telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) *Client {
	assert.NotNil(tel)

	opts.Endpoints = opts.Endpoints.withDefaults()
	assert.NotEmptyStr(opts.Endpoints.Mobile)
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	if opts.RetryWaitTime <= 0 {
		opts.RetryWaitTime = 500 * time.Millisecond
	}
	if opts.RetryMaxWaitTime <= 0 {
		opts.RetryMaxWaitTime = 5 * time.Second
	}
	return &Client{opts: opts, tel: tel}
}

func (c *Client) Endpoints() Endpoints {
	return c.opts.Endpoints
}

// StoredCookie is a cookie as persisted outside of the session.
type StoredCookie struct {
	Origin string
	Name   string
	Value  string
}

// Session owns the cookie jar and user agent of one forum identity.
// A session runs at most one mutation at a time.
type Session struct {
	ID        string
	userAgent string

	jar          *cookiejar.Jar
	http         *resty.Client
	endpoints    Endpoints
	maxRedirects int
	tel          telemetry.API

	busy sync.Mutex
}

// NewSession creates a session, restoring the given cookies into its jar.
func (c *Client) NewSession(cookies ...StoredCookie) (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	s := &Session{
		ID:           id,
		userAgent:    c.opts.UserAgent,
		jar:          jar,
		endpoints:    c.opts.Endpoints,
		maxRedirects: c.opts.MaxRedirects,
		tel:          telemetry.NewScopedAPI("session", c.tel),
	}
	s.http = c.newHTTPClient(jar)

	for _, sc := range cookies {
		u, err := url.Parse(sc.Origin)
		if err != nil {
			return nil, err
		}
		jar.SetCookies(u, []*http.Cookie{{Name: sc.Name, Value: sc.Value, Path: "/"}})
	}
	return s, nil
}

type mutatingKey struct{}

func (c *Client) newHTTPClient(jar http.CookieJar) *resty.Client {
	client := resty.New()
	client.SetCookieJar(jar)
	client.SetTimeout(c.opts.Timeout)
	client.SetHeader("User-Agent", c.opts.UserAgent)
	client.SetHeaders(clientHints)
	// redirects are followed by hand so every hop is observed
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	if c.opts.Proxy != "" {
		client.SetProxy(c.opts.Proxy)
	}
	if c.opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	client.SetRetryCount(c.opts.RetryCount)
	client.SetRetryWaitTime(c.opts.RetryWaitTime)
	client.SetRetryMaxWaitTime(c.opts.RetryMaxWaitTime)
	client.AddRetryCondition(shouldRetry)

	if c.opts.RequestsPerSecond > 0 {
		limiter := rate.NewLimiter(rate.Limit(c.opts.RequestsPerSecond), 1)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(client, telemetry.NewScopedAPI("dcmobile", c.tel))
	return client
}

func shouldRetry(res *resty.Response, err error) bool {
	if res == nil || res.Request == nil {
		return false
	}
	if mutating, _ := res.Request.Context().Value(mutatingKey{}).(bool); mutating {
		return false
	}
	return err != nil || res.StatusCode() >= 500
}

// request builds a request bound to ctx. Mutating requests are excluded
// from retries.
func (s *Session) request(ctx context.Context, mutating bool) *resty.Request {
	if mutating {
		ctx = context.WithValue(ctx, mutatingKey{}, true)
	}
	return s.http.R().SetContext(ctx)
}

// acquire marks the session busy for the duration of one mutation.
func (s *Session) acquire() (func(), error) {
	if !s.busy.TryLock() {
		return nil, ErrSessionBusy
	}
	return s.busy.Unlock, nil
}

func (s *Session) UserAgent() string {
	return s.userAgent
}

// Cookies returns every cookie the jar holds for the known origins.
func (s *Session) Cookies() []StoredCookie {
	var out []StoredCookie
	seen := map[string]bool{}
	for _, origin := range s.endpoints.origins() {
		u, err := url.Parse(origin)
		if err != nil {
			continue
		}
		for _, c := range s.jar.Cookies(u) {
			key := u.Host + "\x00" + c.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, StoredCookie{Origin: origin, Name: c.Name, Value: c.Value})
		}
	}
	return out
}

func (s *Session) HasCookie(names ...string) bool {
	for _, c := range s.Cookies() {
		for _, name := range names {
			if c.Name == name {
				return true
			}
		}
	}
	return false
}

func (s *Session) cookieValue(origin, name string) string {
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	for _, c := range s.jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Download fetches a binary resource (a captcha image) with the session's cookies.
func (s *Session) Download(ctx context.Context, target, referer string) ([]byte, string, error) {
	req := s.request(ctx, false).SetHeader("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	if referer != "" {
		req.SetHeader("Referer", referer)
	}
	res, err := req.Get(target)
	if err != nil {
		return nil, "", err
	}
	if res.IsError() {
		return nil, "", &httpStatusError{status: res.StatusCode(), url: target}
	}
	return res.Body(), res.Header().Get("Content-Type"), nil
}

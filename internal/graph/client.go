// Package graph talks to SharePoint through the Microsoft Graph API: the
// rule list, the document library, status columns and the results list.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/dshills/docstyle/internal/apperr"
	"github.com/dshills/docstyle/internal/config"
)

// Observer counts outbound calls. code is 0 when no response arrived.
type Observer interface {
	ObserveGraph(op string, code int)
}

// Site is the SharePoint site the client is bound to.
type Site struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	WebURL      string `json:"webUrl"`
}

// Client is safe for concurrent use. The site lookup is cached and
// concurrent misses share one request.
type Client struct {
	cfg  config.GraphConfig
	base string
	host string
	path string

	hc       *http.Client
	ts       oauth2.TokenSource
	log      *zap.Logger
	observer Observer
	now      func() time.Time

	sites *cache.Cache
	group singleflight.Group
}

type Option func(*Client)

// WithTokenSource replaces the client-credentials token source.
func WithTokenSource(ts oauth2.TokenSource) Option { return func(c *Client) { c.ts = ts } }

// WithHTTPClient sets the client used for Graph and token requests.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

// WithLogger logs each request at debug level.
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

// WithObserver counts requests by operation and status code.
func WithObserver(o Observer) Option { return func(c *Client) { c.observer = o } }

// WithClock fixes the time written to date columns.
func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

// New builds a client for cfg. The site URL must be absolute.
func New(cfg config.GraphConfig, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.SiteURL)
	if err != nil || u.Host == "" {
		return nil, apperr.Wrap("graph.New", apperr.ErrConfiguration, fmt.Errorf("invalid site url %q", cfg.SiteURL))
	}
	def := config.Default().Graph
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.AuthorityURL == "" {
		cfg.AuthorityURL = def.AuthorityURL
	}
	if cfg.LibraryRoot == "" {
		cfg.LibraryRoot = def.LibraryRoot
	}
	if cfg.SiteCacheTTL <= 0 {
		cfg.SiteCacheTTL = def.SiteCacheTTL
	}

	c := &Client{
		cfg:   cfg,
		base:  strings.TrimRight(cfg.BaseURL, "/"),
		host:  u.Host,
		path:  strings.TrimRight(u.Path, "/"),
		log:   zap.NewNop(),
		now:   time.Now,
		sites: cache.New(cfg.SiteCacheTTL, 2*cfg.SiteCacheTTL),
	}
	for _, o := range opts {
		o(c)
	}
	if c.hc == nil {
		timeout := cfg.RequestTimeout
		if timeout <= 0 {
			timeout = def.RequestTimeout
		}
		c.hc = &http.Client{Timeout: timeout}
	}
	if c.ts == nil {
		c.ts = c.clientCredentials()
	}
	return c, nil
}

// clientCredentials returns the OAuth2 client-credentials flow against the
// tenant authority, scoped to the Graph resource.
func (c *Client) clientCredentials() oauth2.TokenSource {
	scope := ".default"
	if u, err := url.Parse(c.base); err == nil && u.Host != "" {
		scope = u.Scheme + "://" + u.Host + "/.default"
	}
	cc := clientcredentials.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		TokenURL:     strings.TrimRight(c.cfg.AuthorityURL, "/") + "/" + c.cfg.TenantID + "/oauth2/v2.0/token",
		Scopes:       []string{scope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.hc)
	return cc.TokenSource(ctx)
}

// Token acquires (or reuses) an access token. Any failure is an AuthError.
func (c *Client) Token() (*oauth2.Token, error) {
	tok, err := c.ts.Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.ErrorDescription != "" {
			err = fmt.Errorf("%s: %s", re.ErrorCode, re.ErrorDescription)
		}
		return nil, apperr.Wrap("graph.Token", apperr.ErrAuth, err)
	}
	return tok, nil
}

// Site resolves the configured site URL to its Graph site.
func (c *Client) Site(ctx context.Context) (*Site, error) {
	key := c.host + ":" + c.path
	if v, ok := c.sites.Get(key); ok {
		return v.(*Site), nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		var s Site
		if err := c.do(ctx, "site", http.MethodGet, "/sites/"+c.host+":"+escapePath(c.path), nil, "", &s); err != nil {
			return nil, err
		}
		if s.ID == "" {
			return nil, fmt.Errorf("graph.Site: response for %s has no id", key)
		}
		c.sites.SetDefault(key, &s)
		return &s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Site), nil
}

func (c *Client) siteID(ctx context.Context) (string, error) {
	s, err := c.Site(ctx)
	if err != nil {
		return "", err
	}
	return s.ID, nil
}

type graphError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do sends one request. ref is either a path below the base URL or an
// absolute URL (paging links). JSON bodies are encoded from body unless it
// is a []byte, which is sent as is with contentType. out may be nil, a
// *[]byte for raw content, or a JSON target.
func (c *Client) do(ctx context.Context, op, method, ref string, body any, contentType string, out any) error {
	tok, err := c.Token()
	if err != nil {
		return err
	}

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		rdr = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("graph.%s: encoding body: %w", op, err)
		}
		rdr = bytes.NewReader(data)
		contentType = "application/json"
	}

	target := ref
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		target = c.base + ref
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return fmt.Errorf("graph.%s: %w", op, err)
	}
	tok.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.observe(op, 0)
		return fmt.Errorf("graph.%s: %w", op, err)
	}
	defer resp.Body.Close()
	c.observe(op, resp.StatusCode)
	c.log.Debug("graph request",
		zap.String("op", op),
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("graph.%s: reading response: %w", op, err)
	}
	if resp.StatusCode >= 300 {
		return statusError(op, resp.StatusCode, data)
	}

	switch o := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*o = data
		return nil
	default:
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("graph.%s: decoding response: %w", op, err)
		}
		return nil
	}
}

func statusError(op string, code int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var ge graphError
	if json.Unmarshal(body, &ge) == nil && ge.Error.Message != "" {
		msg = ge.Error.Code + ": " + ge.Error.Message
	}
	if len(msg) > 300 {
		msg = msg[:300]
	}
	err := fmt.Errorf("HTTP %d: %s", code, msg)
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperr.Wrap("graph."+op, apperr.ErrAuth, err)
	case http.StatusNotFound:
		return apperr.Wrap("graph."+op, apperr.ErrNotFound, err)
	}
	return fmt.Errorf("graph.%s: %w", op, err)
}

func (c *Client) observe(op string, code int) {
	if c.observer != nil {
		c.observer.ObserveGraph(op, code)
	}
}

// escapePath escapes each segment of a slash-separated path.
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

package familysearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/lineage-cli/internal/core/domain"
	"github.com/custodia-labs/lineage-cli/internal/logger"
)

// Client owns the authenticated FamilySearch HTTP session: the web login
// that yields the fssessionid cookie, the OAuth2 access token for the API
// host, retry with backoff and the request counter.
type Client struct {
	cfg        Config
	http       *http.Client
	noRedirect *http.Client
	limiter    *rate.Limiter

	mu       sync.Mutex // guards login state
	loggedIn bool

	requests atomic.Int64
}

// NewClient creates an unauthenticated client. Login happens lazily on the
// first API call, or explicitly via Login.
func NewClient(cfg Config) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	full := cfg.withDefaults()
	base := &http.Client{Jar: jar, Timeout: full.Timeout}
	return &Client{
		cfg:  full,
		http: base,
		noRedirect: &http.Client{
			Jar:     jar,
			Timeout: full.Timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter: rate.NewLimiter(rate.Limit(ProactiveRate), 1),
	}, nil
}

// Requests reports the number of API requests issued so far.
func (c *Client) Requests() int64 {
	return c.requests.Load()
}

// Login runs the web authentication flow and stores the resulting bearer
// token. Safe to call concurrently; only one flow runs at a time.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loggedIn {
		return nil
	}
	return c.loginLocked(ctx)
}

func (c *Client) relogin(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loggedIn = false
	return c.loginLocked(ctx)
}

// loginLocked performs the five-step flow: prime the session cookie, post
// credentials, follow the redirect, capture the authorization code and
// exchange it for an access token. Transient failures are retried with the
// configured backoff; bad credentials fail immediately.
func (c *Client) loginLocked(ctx context.Context) error {
	var lastErr error
	for attempt := 0; attempt < MaxLoginAttempts; attempt++ {
		if attempt > 0 {
			logger.Info("Retrying login: %v", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.cfg.Timeout):
			}
		}
		err := c.loginOnce(ctx)
		if err == nil {
			c.loggedIn = true
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == domain.ErrAuthInvalid {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("login: %w", lastErr)
}

func (c *Client) loginOnce(ctx context.Context) error {
	logger.Info("Downloading: %s", c.cfg.WWWBase+"/auth/familysearch/login")
	if err := c.fetchDiscard(ctx, c.cfg.WWWBase+"/auth/familysearch/login"); err != nil {
		return err
	}
	xsrf := c.cookie("XSRF-TOKEN")
	if xsrf == "" {
		return fmt.Errorf("missing XSRF-TOKEN cookie")
	}

	form := url.Values{
		"_csrf":    {xsrf},
		"username": {c.cfg.Username},
		"password": {c.cfg.Password},
	}
	logger.Info("Downloading: %s", c.cfg.IdentBase+"/login")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.IdentBase+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return err
	}
	var loginData struct {
		RedirectURL string `json:"redirectUrl"`
		LoginError  string `json:"loginError"`
	}
	if err := json.Unmarshal(body, &loginData); err != nil {
		return fmt.Errorf("invalid auth response: %w", err)
	}
	if loginData.LoginError != "" {
		logger.Warn("Login failed: %s", loginData.LoginError)
		return domain.ErrAuthInvalid
	}
	if loginData.RedirectURL == "" {
		return fmt.Errorf("auth response missing redirect")
	}

	logger.Info("Downloading: %s", loginData.RedirectURL)
	if err := c.fetchDiscard(ctx, loginData.RedirectURL); err != nil {
		return err
	}

	authURL := c.cfg.IdentBase + "/cis-web/oauth2/v3/authorization?" + url.Values{
		"response_type": {"code"},
		"scope":         {"openid profile email qualifies_for_affiliate_account country"},
		"client_id":     {clientID},
		"redirect_uri":  {redirectURI},
		"username":      {c.cfg.Username},
	}.Encode()
	logger.Info("Downloading: %s", authURL)
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, authURL, nil)
	if err != nil {
		return err
	}
	resp, err = c.noRedirect.Do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	location := resp.Header.Get("Location")
	if location == "" {
		return fmt.Errorf("authorization endpoint returned no redirect (status %d)", resp.StatusCode)
	}
	loc, err := url.Parse(location)
	if err != nil {
		return fmt.Errorf("authorization redirect: %w", err)
	}
	code := loc.Query().Get("code")
	if code == "" {
		return fmt.Errorf("authorization redirect carries no code")
	}

	oauthCfg := oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.cfg.IdentBase + "/cis-web/oauth2/v3/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	logger.Info("Downloading: %s", oauthCfg.Endpoint.TokenURL)
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, c.http)
	token, err := oauthCfg.Exchange(tokenCtx, code)
	if err != nil {
		return fmt.Errorf("token exchange: %w", err)
	}
	c.setToken(token)
	return nil
}

func (c *Client) setToken(token *oauth2.Token) {
	c.http.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(token),
		Base:   http.DefaultTransport,
	}
}

func (c *Client) fetchDiscard(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
	}
	return nil
}

// cookie returns the named cookie from either session host, or "".
func (c *Client) cookie(name string) string {
	for _, base := range []string{c.cfg.WWWBase, c.cfg.IdentBase} {
		u, err := url.Parse(base)
		if err != nil {
			continue
		}
		for _, ck := range c.http.Jar.Cookies(u) {
			if ck.Name == name {
				return ck.Value
			}
		}
	}
	return ""
}

// errorBody is the error envelope of non-2xx API responses.
type errorBody struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

const ordinancesDenied = "Unable to get ordinances."

// getJSON issues an authenticated API request and decodes the response into
// v. It returns (false, nil) for every "no data" status, retries transient
// failures, and re-authenticates once on 401. A corrupted body is logged and
// treated as no data.
func (c *Client) getJSON(ctx context.Context, path, accept string, v any) (bool, error) {
	if err := c.Login(ctx); err != nil {
		return false, err
	}
	c.requests.Add(1)

	reloggedIn := false
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return false, err
		}
		logger.Info("Downloading: %s", path)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIBase+path, nil)
		if err != nil {
			return false, err
		}
		req.Header.Set("Accept", accept)
		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			if attempt < MaxRetries {
				logger.Warn("Request failed, retrying: %v", err)
				continue
			}
			return false, fmt.Errorf("GET %s: %w", path, err)
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		logger.Info("Status code: %d", resp.StatusCode)

		switch {
		case resp.StatusCode == http.StatusNoContent:
			return false, nil
		case resp.StatusCode == http.StatusNotFound,
			resp.StatusCode == http.StatusMethodNotAllowed,
			resp.StatusCode == http.StatusGone,
			resp.StatusCode == http.StatusInternalServerError:
			logger.Warn("No data from %s (status %d)", path, resp.StatusCode)
			return false, nil
		case resp.StatusCode == http.StatusUnauthorized:
			if reloggedIn {
				return false, domain.ErrAuthRequired
			}
			reloggedIn = true
			if err := c.relogin(ctx); err != nil {
				return false, err
			}
			continue
		case resp.StatusCode == http.StatusForbidden:
			var eb errorBody
			if json.Unmarshal(body, &eb) == nil && len(eb.Errors) > 0 {
				if eb.Errors[0].Message == ordinancesDenied {
					return false, domain.ErrRestricted
				}
				logger.Warn("Code 403 from %s: %s", path, eb.Errors[0].Message)
			} else {
				logger.Warn("Code 403 from %s", path)
			}
			return false, nil
		case resp.StatusCode >= 400:
			if attempt < MaxRetries {
				logger.Warn("Status %d from %s, retrying", resp.StatusCode, path)
				select {
				case <-ctx.Done():
					return false, ctx.Err()
				case <-time.After(c.cfg.Timeout):
				}
				continue
			}
			return false, fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
		}

		if readErr != nil {
			logger.Warn("Corrupted response from %s: %v", path, readErr)
			return false, nil
		}
		if err := json.Unmarshal(body, v); err != nil {
			logger.Warn("Corrupted response from %s: %v", path, err)
			return false, nil
		}
		return true, nil
	}
}

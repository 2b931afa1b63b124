package apikit

import (
	"context"
	"net/http"
	"net/http/cookiejar"

	"go.uber.org/zap"
)

// Logout ends the current session. The logout endpoint is called best
// effort (a dead server must not trap the user in a signed-in UI), then
// session cookies are dropped and every cached query is invalidated so the
// next render cannot show the previous user's data.
func (c *Client) Logout(ctx context.Context) {
	if c.logout != "" {
		if err := c.do(ctx, http.MethodPost, c.logout, nil, nil); err != nil {
			c.logger.Warn("logout request failed", zap.Error(err))
		}
	}
	c.clearCookies()
	c.InvalidatePrefix(ctx, "")
}

// Authenticated reports whether a session cookie for the base URL is
// present. It does not verify the session with the server.
func (c *Client) Authenticated() bool {
	if c.http.Jar == nil {
		return false
	}
	for _, cookie := range c.http.Jar.Cookies(c.base) {
		if cookie.Name == c.session && cookie.Value != "" {
			return true
		}
	}
	return false
}

func (c *Client) clearCookies() {
	if c.http.Jar == nil {
		return
	}
	// Cookies scoped to deeper paths are invisible from the base URL, so
	// expiring them one by one would miss some. A fresh jar drops them all.
	jar, err := cookiejar.New(nil)
	if err != nil {
		c.logger.Warn("replacing cookie jar failed", zap.Error(err))
		return
	}
	c.http.Jar = jar
}

package api

import (
	"net/http"
	"net/url"
)

// Cookies returns the cookies the jar holds for the backend. Only Name and
// Value are populated; that is all a cookie jar exposes.
func (c *Client) Cookies() []*http.Cookie {
	u, err := url.Parse(c.baseURL + apiPrefix + "/")
	if err != nil {
		return nil
	}
	return c.jar.Cookies(u)
}

// SetCookies restores previously saved cookies for the backend.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	u, err := url.Parse(c.baseURL + "/")
	if err != nil || len(cookies) == 0 {
		return
	}
	restored := make([]*http.Cookie, len(cookies))
	for i, ck := range cookies {
		restored[i] = &http.Cookie{
			Name:     ck.Name,
			Value:    ck.Value,
			Path:     "/",
			HttpOnly: true,
		}
	}
	c.jar.SetCookies(u, restored)
}

// ClearCookies drops every cookie for the backend by expiring it.
func (c *Client) ClearCookies() {
	u, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return
	}
	current := c.Cookies()
	expired := make([]*http.Cookie, len(current))
	for i, ck := range current {
		expired[i] = &http.Cookie{Name: ck.Name, Value: "", Path: "/", MaxAge: -1}
	}
	c.jar.SetCookies(u, expired)
}

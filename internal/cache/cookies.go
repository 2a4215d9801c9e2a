package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type savedCookies struct {
	Cookies []savedCookie `json:"cookies"`
	SavedAt time.Time     `json:"saved_at"`
}

type savedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

func cookieKey(server string) string {
	return "cookies:" + server
}

// SaveCookies persists the session cookies for server, replacing any saved
// before. Saving an empty list clears them.
func (d *DB) SaveCookies(server string, cookies []*http.Cookie) error {
	if len(cookies) == 0 {
		return d.ClearCookies(server)
	}
	saved := savedCookies{SavedAt: time.Now()}
	for _, c := range cookies {
		saved.Cookies = append(saved.Cookies, savedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}
	data, err := json.Marshal(saved)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(`INSERT OR REPLACE INTO session (key, value) VALUES (?, ?)`,
		cookieKey(server), string(data))
	if err != nil {
		return fmt.Errorf("saving cookies: %w", err)
	}
	return nil
}

// LoadCookies returns the cookies saved for server, skipping expired ones.
// It returns nil when nothing was saved.
func (d *DB) LoadCookies(server string) ([]*http.Cookie, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM session WHERE key = ?`, cookieKey(server)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading cookies: %w", err)
	}

	var saved savedCookies
	if err := json.Unmarshal([]byte(value), &saved); err != nil {
		return nil, fmt.Errorf("parsing saved cookies: %w", err)
	}

	now := time.Now()
	var out []*http.Cookie
	for _, c := range saved.Cookies {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		out = append(out, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}
	return out, nil
}

// ClearCookies removes the cookies saved for server.
func (d *DB) ClearCookies(server string) error {
	_, err := d.db.Exec(`DELETE FROM session WHERE key = ?`, cookieKey(server))
	return err
}

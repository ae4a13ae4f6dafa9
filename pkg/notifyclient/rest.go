package notifyclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// FetchAll replaces the whole cache with the server's current list. The
// server list is the authoritative snapshot; a push racing the fetch can be
// dropped by the replace (accepted, see package tests). On failure the
// cache keeps its previous contents.
func (c *Controller) FetchAll(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+"/notifications", nil)
	if err != nil {
		return err
	}

	var body struct {
		Data []Notification `json:"data"`
	}
	if err := c.do(req, &body); err != nil {
		return fmt.Errorf("fetch notifications: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.cache = body.Data
	return nil
}

// MarkAsRead flips the entry's read flag only after the server confirms.
// A failed request leaves the cache untouched; the caller decides whether
// to retry.
func (c *Controller) MarkAsRead(ctx context.Context, id uint) error {
	url := fmt.Sprintf("%s/notifications/%d/read", c.opts.BaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, nil)
	if err != nil {
		return err
	}

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("mark as read: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	for i := range c.cache {
		if c.cache[i].ID == id {
			c.cache[i].Read = true
			break
		}
	}
	return nil
}

// MarkAllAsRead issues one bulk update. Any success response flips every
// cached entry; the server does not report per-row granularity.
func (c *Controller) MarkAllAsRead(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.opts.BaseURL+"/notifications/mark-all-read", nil)
	if err != nil {
		return err
	}

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("mark all as read: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	for i := range c.cache {
		c.cache[i].Read = true
	}
	return nil
}

// Delete removes the entry from the cache once the server confirms the
// delete. Callers must not race Delete against MarkAsRead on the same id.
func (c *Controller) Delete(ctx context.Context, id uint) error {
	url := fmt.Sprintf("%s/notifications/%d", c.opts.BaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	for i := range c.cache {
		if c.cache[i].ID == id {
			c.cache = append(c.cache[:i], c.cache[i+1:]...)
			break
		}
	}
	return nil
}

func (c *Controller) do(req *http.Request, out any) error {
	if c.opts.Token != nil {
		if token := c.opts.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out == nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

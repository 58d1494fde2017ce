package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sender delivers one notification. Implementations report non-2xx replies
// as errors so the worker can retry them.
type Sender interface {
	Send(ctx context.Context, endpoint, secret string, n Notification) error
}

type HTTPSender struct {
	inner *http.Client
}

func NewHTTPSender(timeout time.Duration) *HTTPSender {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSender{inner: &http.Client{Timeout: timeout}}
}

func (c *HTTPSender) Send(ctx context.Context, endpoint, secret string, n Notification) error {
	raw, err := json.Marshal(n)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("Authorization", "Bearer "+secret)
	}
	resp, err := c.inner.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("hub %s failed with status %d", n.Method, resp.StatusCode)
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Notification is one push delivered to a player's stored notification
// endpoint.
type Notification struct {
	URL       string
	Token     string
	Title     string
	Body      string
	TargetURL string
}

// Notifier delivers a notification. Implementations must treat any
// non-success response as an error; the scoring engine rejects the whole
// throw on failure.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// HTTPNotifier posts notifications to the delivery URL captured at
// registration, in the shape the messaging platform expects.
type HTTPNotifier struct {
	client *http.Client
}

// NewHTTPNotifier builds a notifier with a bounded request timeout.
func NewHTTPNotifier(timeout time.Duration) *HTTPNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPNotifier{client: &http.Client{Timeout: timeout}}
}

type pushPayload struct {
	NotificationID string   `json:"notificationId"`
	Title          string   `json:"title"`
	Body           string   `json:"body"`
	TargetURL      string   `json:"targetUrl"`
	Tokens         []string `json:"tokens"`
}

// Notify posts the notification and surfaces the upstream error text on any
// non-2xx status.
func (h *HTTPNotifier) Notify(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(pushPayload{
		NotificationID: uuid.NewString(),
		Title:          n.Title,
		Body:           n.Body,
		TargetURL:      n.TargetURL,
		Tokens:         []string{n.Token},
	})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notification endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

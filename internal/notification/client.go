package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Event names the accountability change being announced.
type Event string

const (
	EventComputerAssigned   Event = "computer_assigned"
	EventComputerReassigned Event = "computer_reassigned"
	EventHistoryAdded       Event = "history_added"
)

const (
	userAgent        = "cts/1.0"
	defaultSource    = "cts"
	maxMessageLength = 1000
)

// Notifier delivers notifications to an outbound webhook.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
	IsHealthy(ctx context.Context) bool
}

// Config holds configuration for the webhook client.
type Config struct {
	URL            string
	Timeout        time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	MaxPayloadSize int64
}

// DefaultConfig returns the client defaults for url.
func DefaultConfig(url string) Config {
	return Config{
		URL:            url,
		Timeout:        10 * time.Second,
		RetryAttempts:  3,
		RetryDelay:     time.Second,
		MaxPayloadSize: 1024 * 1024,
	}
}

// Notification is the webhook payload. Recipient is the email of the
// identity the event concerns.
type Notification struct {
	Level     Level             `json:"level"`
	Event     Event             `json:"event"`
	Recipient string            `json:"recipient,omitempty"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Source    string            `json:"source"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Validate checks the required fields.
func (n *Notification) Validate() error {
	switch n.Level {
	case "":
		return errors.New("notification level is required")
	case LevelInfo, LevelWarning:
	default:
		return fmt.Errorf("invalid notification level: %s", n.Level)
	}
	if n.Event == "" {
		return errors.New("notification event is required")
	}
	if n.Message == "" {
		return errors.New("notification message is required")
	}
	if len(n.Message) > maxMessageLength {
		return fmt.Errorf("notification message too long (max %d characters)", maxMessageLength)
	}
	return nil
}

// permanentError marks failures a retry cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return &permanentError{err: err}
}

type webhookClient struct {
	config Config
	client *http.Client
	logger *log.Logger
}

// NewNotifier creates a webhook Notifier. A nil logger uses log.Default.
func NewNotifier(config Config, logger *log.Logger) Notifier {
	if logger == nil {
		logger = log.Default()
	}
	return &webhookClient{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

// Send posts n to the webhook, retrying transient failures with a linear
// backoff.
func (c *webhookClient) Send(ctx context.Context, n Notification) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}
	if n.Source == "" {
		n.Source = defaultSource
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if int64(len(payload)) > c.config.MaxPayloadSize {
		return fmt.Errorf("notification payload too large: %d bytes (max %d)", len(payload), c.config.MaxPayloadSize)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.config.RetryDelay * time.Duration(attempt)):
			}
			c.logger.Printf("Retrying %s notification (attempt %d/%d)", n.Event, attempt+1, c.config.RetryAttempts+1)
		}

		err := c.post(ctx, payload)
		if err == nil {
			return nil
		}
		lastErr = err
		c.logger.Printf("Notification attempt %d failed: %v", attempt+1, err)

		var pe *permanentError
		if errors.As(err, &pe) {
			return err
		}
	}

	return fmt.Errorf("failed to send notification after %d attempts: %w", c.config.RetryAttempts+1, lastErr)
}

func (c *webhookClient) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(payload))
	if err != nil {
		return permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, body)
	case resp.StatusCode >= 400:
		return permanent(fmt.Errorf("webhook rejected notification with status %d: %s", resp.StatusCode, body))
	}
	return nil
}

// IsHealthy reports whether the webhook host answers without a server error.
func (c *webhookClient) IsHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.config.URL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < 500
}

// Disabled is the Notifier used when no webhook is configured.
type Disabled struct{}

func (Disabled) Send(context.Context, Notification) error { return nil }
func (Disabled) IsHealthy(context.Context) bool           { return true }

package alert

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kursadbilgin/notify-channel/internal/domain"
)

const defaultWebhookTimeout = 10 * time.Second

type webhookPayload struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// WebhookSink forwards each notification to an HTTP endpoint, for desktop
// integrations that bridge into the OS notification center.
type WebhookSink struct {
	client   *resty.Client
	endpoint string
}

func NewWebhookSink(endpoint string) (*WebhookSink, error) {
	client := resty.New()
	client.SetTimeout(defaultWebhookTimeout)
	client.SetRetryCount(0)

	return NewWebhookSinkWithClient(endpoint, client)
}

func NewWebhookSinkWithClient(endpoint string, client *resty.Client) (*WebhookSink, error) {
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		return nil, fmt.Errorf("webhook endpoint is required")
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid webhook endpoint: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultWebhookTimeout)
	}
	client.SetRetryCount(0)

	return &WebhookSink{
		client:   client,
		endpoint: trimmedEndpoint,
	}, nil
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Alert(ctx context.Context, notification domain.Notification) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("webhook sink is not initialized")
	}

	payload := webhookPayload{
		ID:        notification.ID,
		Message:   notification.Message,
		Type:      notification.Type,
		Sender:    notification.Sender,
		Timestamp: notification.Timestamp,
	}

	response, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(s.endpoint)
	if err != nil {
		return &AlertError{
			Message:   "webhook request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}
	if response == nil {
		return &AlertError{
			Message:   "webhook returned empty response",
			Transient: true,
		}
	}

	statusCode := response.StatusCode()
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return nil
	}

	return &AlertError{
		StatusCode: statusCode,
		Message:    fmt.Sprintf("webhook returned status %d", statusCode),
		Transient:  isTransientHTTPStatus(statusCode),
	}
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}

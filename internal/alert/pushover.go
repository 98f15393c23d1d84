package alert

import (
	"context"
	"fmt"
	"strings"

	"github.com/gregdel/pushover"

	"github.com/kursadbilgin/notify-channel/internal/domain"
)

// PushoverSink delivers notifications as Pushover pushes, the
// desktop/mobile alert path for unattended clients.
type PushoverSink struct {
	app       *pushover.Pushover
	recipient *pushover.Recipient
}

func NewPushoverSink(appToken, userKey string) (*PushoverSink, error) {
	if strings.TrimSpace(appToken) == "" {
		return nil, fmt.Errorf("pushover app token is required")
	}
	if strings.TrimSpace(userKey) == "" {
		return nil, fmt.Errorf("pushover user key is required")
	}

	return &PushoverSink{
		app:       pushover.New(appToken),
		recipient: pushover.NewRecipient(userKey),
	}, nil
}

func (s *PushoverSink) Name() string { return "pushover" }

func (s *PushoverSink) Alert(ctx context.Context, notification domain.Notification) error {
	if s == nil || s.app == nil {
		return fmt.Errorf("pushover sink is not initialized")
	}

	message := pushover.NewMessageWithTitle(notification.Message, titleForType(notification.Type))
	if _, err := s.app.SendMessage(message, s.recipient); err != nil {
		return &AlertError{
			Message:   "pushover send failed",
			Transient: true,
			Cause:     err,
		}
	}

	return nil
}

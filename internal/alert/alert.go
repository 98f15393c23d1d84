package alert

import (
	"context"

	"github.com/kursadbilgin/notify-channel/internal/domain"
)

// Alerter is a best-effort side-effect sink for an ingested notification:
// a desktop-style alert, an audio cue, a webhook. Sink failures never
// affect store correctness.
type Alerter interface {
	Name() string
	Alert(ctx context.Context, notification domain.Notification) error
}

// titleForType mirrors the per-type presentation the ticket app uses for
// its desktop alerts.
func titleForType(notificationType string) string {
	switch notificationType {
	case domain.TypeTicketAssignment:
		return "Ticket assigned"
	case domain.TypeTicketStatus:
		return "Ticket status changed"
	case domain.TypeTicketComment:
		return "New ticket comment"
	case domain.TypeProjectCreation:
		return "New project"
	case domain.TypeDeadlineWarning, domain.TypeDeadlineExceeded:
		return "Deadline alert"
	case domain.TypeWelcome:
		return "Welcome"
	case domain.TypeAnnouncement:
		return "Announcement"
	default:
		return "New notification"
	}
}

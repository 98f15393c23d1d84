package alert

import (
	"context"
	"testing"

	"github.com/kursadbilgin/notify-channel/internal/domain"
)

func TestSoundFileForType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		notificationType string
		want             string
	}{
		{notificationType: domain.TypeTicketAssignment, want: "assignment.mp3"},
		{notificationType: domain.TypeDeadlineWarning, want: "warning.mp3"},
		{notificationType: domain.TypeDeadlineExceeded, want: "warning.mp3"},
		{notificationType: domain.TypeWelcome, want: "welcome.mp3"},
		{notificationType: domain.TypeTicketComment, want: "notification.mp3"},
		{notificationType: "unknown", want: "notification.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.notificationType, func(t *testing.T) {
			t.Parallel()

			if got := soundFileForType(tt.notificationType); got != tt.want {
				t.Errorf("soundFileForType(%q) = %q, want %q", tt.notificationType, got, tt.want)
			}
		})
	}
}

func TestNewSoundSinkRequiresPlayer(t *testing.T) {
	t.Parallel()

	if _, err := NewSoundSink("", "sounds"); err == nil {
		t.Fatal("NewSoundSink with empty player succeeded, want error")
	}
}

func TestSoundSinkRunsPlayer(t *testing.T) {
	t.Parallel()

	sink, err := NewSoundSink("true", "sounds")
	if err != nil {
		t.Fatalf("NewSoundSink() error = %v", err)
	}
	if err := sink.Alert(context.Background(), domain.Notification{Type: domain.TypeInfo}); err != nil {
		t.Fatalf("Alert() error = %v", err)
	}
}

func TestSoundSinkReportsPlayerFailure(t *testing.T) {
	t.Parallel()

	sink, err := NewSoundSink("false", "sounds")
	if err != nil {
		t.Fatalf("NewSoundSink() error = %v", err)
	}

	err = sink.Alert(context.Background(), domain.Notification{Type: domain.TypeInfo})
	if err == nil {
		t.Fatal("Alert() with failing player succeeded, want error")
	}
	if IsTransient(err) {
		t.Errorf("IsTransient(%v) = true, want false", err)
	}
}

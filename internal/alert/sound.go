package alert

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kursadbilgin/notify-channel/internal/domain"
)

// SoundSink plays an audio cue by running a configured player command
// (paplay, afplay, mpg123) with a per-type sound file.
type SoundSink struct {
	player   string
	soundDir string
}

func NewSoundSink(player, soundDir string) (*SoundSink, error) {
	if strings.TrimSpace(player) == "" {
		return nil, fmt.Errorf("sound player command is required")
	}

	return &SoundSink{
		player:   player,
		soundDir: soundDir,
	}, nil
}

func (s *SoundSink) Name() string { return "sound" }

func (s *SoundSink) Alert(ctx context.Context, notification domain.Notification) error {
	if s == nil || s.player == "" {
		return fmt.Errorf("sound sink is not initialized")
	}

	soundFile := filepath.Join(s.soundDir, soundFileForType(notification.Type))
	if err := exec.CommandContext(ctx, s.player, soundFile).Run(); err != nil {
		return &AlertError{
			Message:   fmt.Sprintf("failed to play %s", soundFile),
			Transient: false,
			Cause:     err,
		}
	}

	return nil
}

func soundFileForType(notificationType string) string {
	switch notificationType {
	case domain.TypeTicketAssignment:
		return "assignment.mp3"
	case domain.TypeDeadlineWarning, domain.TypeDeadlineExceeded:
		return "warning.mp3"
	case domain.TypeWelcome:
		return "welcome.mp3"
	default:
		return "notification.mp3"
	}
}

package store

import "github.com/kursadbilgin/notify-channel/internal/domain"

// Derived read views. All of them operate on a fresh snapshot taken at call
// time; nothing is cached across mutations.

func Unread(notifications []domain.Notification) []domain.Notification {
	var unread []domain.Notification
	for _, n := range notifications {
		if !n.Read {
			unread = append(unread, n)
		}
	}
	return unread
}

func ByType(notifications []domain.Notification, notificationType string) []domain.Notification {
	var matched []domain.Notification
	for _, n := range notifications {
		if n.Type == notificationType {
			matched = append(matched, n)
		}
	}
	return matched
}

func CountByType(notifications []domain.Notification) map[string]int {
	counts := make(map[string]int)
	for _, n := range notifications {
		counts[n.Type]++
	}
	return counts
}

func UnreadCount(notifications []domain.Notification) int {
	count := 0
	for _, n := range notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

func (s *Store) Unread() []domain.Notification {
	return Unread(s.Snapshot())
}

func (s *Store) ByType(notificationType string) []domain.Notification {
	return ByType(s.Snapshot(), notificationType)
}

func (s *Store) CountByType() map[string]int {
	return CountByType(s.Snapshot())
}

func (s *Store) UnreadCount() int {
	return UnreadCount(s.Snapshot())
}

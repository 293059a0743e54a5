package state

import (
	"time"

	"github.com/five82/wreath/internal/memorial"
)

// NoticeKind classifies a notification.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeFailure NoticeKind = "failure"
)

// Notification is a short-lived message about a create operation.
type Notification struct {
	ID        int
	Kind      NoticeKind
	Variant   memorial.Variant
	Title     string
	Message   string
	CreatedAt time.Time
}

// ExpiresAt reports when the notification stops being shown for ttl.
func (n Notification) ExpiresAt(ttl time.Duration) time.Time {
	return n.CreatedAt.Add(ttl)
}

func (s *Store) notifyLocked(kind NoticeKind, v memorial.Variant, title, message string) {
	s.nextNotice++
	s.notices = append(s.notices, Notification{
		ID:        s.nextNotice,
		Kind:      kind,
		Variant:   v,
		Title:     title,
		Message:   message,
		CreatedAt: s.clock.Now(),
	})
}

// Notifications returns the notifications that have not expired, oldest first.
func (s *Store) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.clock.Now())
	if len(s.notices) == 0 {
		return nil
	}
	return append([]Notification(nil), s.notices...)
}

// Dismiss removes a notification. Unknown ids are ignored.
func (s *Store) Dismiss(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notices {
		if n.ID == id {
			s.notices = append(s.notices[:i], s.notices[i+1:]...)
			return
		}
	}
}

// NoticeTTL returns how long notifications stay visible.
func (s *Store) NoticeTTL() time.Duration {
	return s.noticeTTL
}

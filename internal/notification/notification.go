package notification

import (
	"sync"
	"time"

	model "auction-house/internal/models"
	"auction-house/utils"
)

// DefaultTTL is how long a notification stays in the queue
const DefaultTTL = 5 * time.Second

// Notifier is the side channel engines report outcomes through
type Notifier interface {
	Notify(message string, severity model.Severity) string
}

// Option customizes Service construction.
type Option func(*Service)

// WithTTL overrides the display window. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxSize caps the queue; the oldest entry is evicted when full.
// Zero means unbounded.
func WithMaxSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// WithClock injects the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service is the process-wide ordered notification queue. Entries are only
// appended or removed by ID, never reordered.
type Service struct {
	mu      sync.Mutex
	queue   []model.Notification
	timers  map[string]*time.Timer
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	closed  bool
}

// NewService creates a notification queue with a 5 second TTL
func NewService(opts ...Option) *Service {
	s := &Service{
		timers: make(map[string]*time.Timer),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Notify appends a message and schedules its removal after the TTL.
func (s *Service) Notify(message string, severity model.Severity) string {
	n := model.Notification{
		ID:        utils.GenerateID(),
		Message:   message,
		Type:      severity,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	if s.maxSize > 0 && len(s.queue) >= s.maxSize {
		s.removeLocked(s.queue[0].ID)
	}
	s.queue = append(s.queue, n)
	if !s.closed {
		id := n.ID
		s.timers[id] = time.AfterFunc(s.ttl, func() { s.expire(id) })
	}
	s.mu.Unlock()

	logNotification(n)
	return n.ID
}

// List returns the current queue in display order
func (s *Service) List() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Notification{}, s.queue...)
}

// Dismiss removes a notification before its TTL elapses.
func (s *Service) Dismiss(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id)
}

// Close stops all pending expiry timers. Queued entries stay until dismissed.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.closed = true
}

func (s *Service) expire(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *Service) removeLocked(id string) bool {
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	for i, n := range s.queue {
		if n.ID == id {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return true
		}
	}
	return false
}

func logNotification(n model.Notification) {
	fields := map[string]any{
		"notification_id": n.ID,
		"type":            string(n.Type),
	}
	switch n.Type {
	case model.SeverityError:
		utils.Warn("notification: "+n.Message, fields)
	default:
		utils.Info("notification: "+n.Message, fields)
	}
}

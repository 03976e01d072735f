package client

import (
	"context"
	"sync"
	"time"
)

// NotificationPollInterval is how often the notification store refetches.
const NotificationPollInterval = 10 * time.Second

// NotificationStore caches the caller's notifications and unread count. Mutations
// patch the cache only after the server accepts them.
type NotificationStore struct {
	client *Client
	poller *Poller

	mu            sync.RWMutex
	notifications []Notification
	unread        int
	err           string
}

// NewNotificationStore creates a store polling every NotificationPollInterval.
func NewNotificationStore(c *Client) *NotificationStore {
	return newNotificationStore(c, NotificationPollInterval)
}

func newNotificationStore(c *Client, interval time.Duration) *NotificationStore {
	s := &NotificationStore{client: c}
	s.poller = NewPoller(interval, func(ctx context.Context) { _ = s.Fetch(ctx) })
	return s
}

// StartPolling fetches now and on every interval. Calling it again while polling is
// a no-op.
func (s *NotificationStore) StartPolling(ctx context.Context) {
	s.poller.Start(ctx)
}

// StopPolling stops the timer.
func (s *NotificationStore) StopPolling() {
	s.poller.Stop()
}

// Polling reports whether the timer is active.
func (s *NotificationStore) Polling() bool {
	return s.poller.Running()
}

// Fetch loads the list and the unread count.
func (s *NotificationStore) Fetch(ctx context.Context) error {
	items, err := s.client.ListNotifications(ctx)
	if err != nil {
		s.fail(err, "Failed to fetch notifications")
		return err
	}
	unread, err := s.client.UnreadNotificationCount(ctx)
	if err != nil {
		s.fail(err, "Failed to fetch unread count")
		return err
	}
	s.mu.Lock()
	s.notifications = items
	s.unread = unread
	s.err = ""
	s.mu.Unlock()
	return nil
}

// MarkRead marks one notification read.
func (s *NotificationStore) MarkRead(ctx context.Context, id string) error {
	updated, err := s.client.MarkNotificationRead(ctx, id)
	if err != nil {
		s.fail(err, "Failed to mark notification as read")
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			if !s.notifications[i].IsRead && s.unread > 0 {
				s.unread--
			}
			s.notifications[i] = *updated
		}
	}
	return nil
}

// MarkAllRead marks every notification read.
func (s *NotificationStore) MarkAllRead(ctx context.Context) error {
	if _, err := s.client.MarkAllNotificationsRead(ctx); err != nil {
		s.fail(err, "Failed to mark all notifications as read")
		return err
	}
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if !s.notifications[i].IsRead {
			s.notifications[i].IsRead = true
			s.notifications[i].ReadAt = &now
		}
	}
	s.unread = 0
	return nil
}

// Delete removes one notification.
func (s *NotificationStore) Delete(ctx context.Context, id string) error {
	if err := s.client.DeleteNotification(ctx, id); err != nil {
		s.fail(err, "Failed to delete notification")
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.notifications[:0]
	for _, n := range s.notifications {
		if n.ID == id {
			if !n.IsRead && s.unread > 0 {
				s.unread--
			}
			continue
		}
		kept = append(kept, n)
	}
	s.notifications = kept
	return nil
}

// Clear removes every notification.
func (s *NotificationStore) Clear(ctx context.Context) error {
	if _, err := s.client.ClearNotifications(ctx); err != nil {
		s.fail(err, "Failed to clear notifications")
		return err
	}
	s.mu.Lock()
	s.notifications = nil
	s.unread = 0
	s.mu.Unlock()
	return nil
}

// Notifications returns a copy of the cached list.
func (s *NotificationStore) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Notification(nil), s.notifications...)
}

// UnreadCount returns the cached unread count.
func (s *NotificationStore) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// Error returns the last error message, or "".
func (s *NotificationStore) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *NotificationStore) fail(err error, fallback string) {
	s.mu.Lock()
	s.err = ErrorMessage(err, fallback)
	s.mu.Unlock()
}

package client

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/support-inbox/internal/domain"
)

// TicketPollInterval is how often the ticket store refetches.
const TicketPollInterval = 30 * time.Second

// ErrTicketClosed is returned without a request when a control is used on a resolved
// or escalated ticket.
var ErrTicketClosed = errors.New("ticket is closed")

// TicketStore caches the company's tickets, the total count and the activity log of
// the ticket being viewed. Concurrent fetches are not sequenced: the last response to
// arrive wins.
type TicketStore struct {
	client *Client
	poller *Poller

	mu         sync.RWMutex
	query      TicketQuery
	tickets    []Ticket
	total      int
	activities map[string][]Activity
	err        string
}

// NewTicketStore creates a store polling every TicketPollInterval.
func NewTicketStore(c *Client) *TicketStore {
	return newTicketStore(c, TicketPollInterval)
}

func newTicketStore(c *Client, interval time.Duration) *TicketStore {
	s := &TicketStore{client: c, activities: map[string][]Activity{}}
	s.poller = NewPoller(interval, func(ctx context.Context) { _ = s.Fetch(ctx) })
	return s
}

// StartPolling fetches now and on every interval. Calling it again while polling is
// a no-op.
func (s *TicketStore) StartPolling(ctx context.Context) { s.poller.Start(ctx) }

// StopPolling stops the timer.
func (s *TicketStore) StopPolling() { s.poller.Stop() }

// Polling reports whether the timer is active.
func (s *TicketStore) Polling() bool { return s.poller.Running() }

// SetQuery replaces the filters used by Fetch.
func (s *TicketStore) SetQuery(q TicketQuery) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
}

// Fetch loads the ticket list and the matching count.
func (s *TicketStore) Fetch(ctx context.Context) error {
	s.mu.RLock()
	q := s.query
	s.mu.RUnlock()

	tickets, err := s.client.ListTickets(ctx, q)
	if err != nil {
		s.fail(err, "Failed to fetch tickets")
		return err
	}
	total, err := s.client.CountTickets(ctx, q)
	if err != nil {
		s.fail(err, "Failed to fetch ticket count")
		return err
	}
	s.mu.Lock()
	s.tickets = tickets
	s.total = total
	s.err = ""
	s.mu.Unlock()
	return nil
}

// FetchActivities loads the activity log of one ticket.
func (s *TicketStore) FetchActivities(ctx context.Context, ticketID string) error {
	items, err := s.client.ListActivities(ctx, ticketID)
	if err != nil {
		s.fail(err, "Failed to fetch ticket activity")
		return err
	}
	s.mu.Lock()
	s.activities[ticketID] = items
	s.mu.Unlock()
	return nil
}

// UpdateStatus changes a ticket's status.
func (s *TicketStore) UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) error {
	result, err := s.client.UpdateTicketStatus(ctx, ticketID, status, "")
	return s.apply(ticketID, result, err, "Failed to update ticket status")
}

// UpdatePriority changes a ticket's priority. Setting the current priority sends
// nothing.
func (s *TicketStore) UpdatePriority(ctx context.Context, ticketID string, priority domain.TicketPriority) error {
	if t, ok := s.Ticket(ticketID); ok && t.Priority == priority {
		return nil
	}
	result, err := s.client.UpdateTicketPriority(ctx, ticketID, priority)
	return s.apply(ticketID, result, err, "Failed to update ticket priority")
}

// Assign hands the ticket to a team member.
func (s *TicketStore) Assign(ctx context.Context, ticketID, assigneeID string) error {
	if err := s.guardOpen(ticketID); err != nil {
		return err
	}
	result, err := s.client.AssignTicket(ctx, ticketID, assigneeID)
	return s.apply(ticketID, result, err, "Failed to assign ticket")
}

// Escalate escalates the ticket with a reason.
func (s *TicketStore) Escalate(ctx context.Context, ticketID, reason string) error {
	if err := s.guardOpen(ticketID); err != nil {
		return err
	}
	result, err := s.client.EscalateTicket(ctx, ticketID, reason)
	return s.apply(ticketID, result, err, "Failed to escalate ticket")
}

// Resolve resolves the ticket.
func (s *TicketStore) Resolve(ctx context.Context, ticketID string) error {
	if err := s.guardOpen(ticketID); err != nil {
		return err
	}
	result, err := s.client.ResolveTicket(ctx, ticketID)
	return s.apply(ticketID, result, err, "Failed to resolve ticket")
}

// AddNote appends an internal note.
func (s *TicketStore) AddNote(ctx context.Context, ticketID, text string) error {
	if err := s.guardOpen(ticketID); err != nil {
		return err
	}
	activity, err := s.client.AddTicketNote(ctx, ticketID, text)
	if err != nil {
		s.fail(err, "Failed to add note")
		return err
	}
	s.mu.Lock()
	s.activities[ticketID] = append([]Activity{*activity}, s.activities[ticketID]...)
	s.mu.Unlock()
	return nil
}

// guardOpen mirrors the dashboard lock on resolved and escalated tickets. The API
// itself accepts these calls.
func (s *TicketStore) guardOpen(ticketID string) error {
	t, ok := s.Ticket(ticketID)
	if ok && isClosed(t.Status) {
		return ErrTicketClosed
	}
	return nil
}

func isClosed(status domain.TicketStatus) bool {
	return status == domain.TicketStatusResolved || status == domain.TicketStatusEscalated
}

func (s *TicketStore) apply(ticketID string, result *TicketMutation, err error, fallback string) error {
	if err != nil {
		s.fail(err, fallback)
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		if s.tickets[i].ID == ticketID {
			s.tickets[i] = result.Ticket
		}
	}
	if result.Activity != nil {
		s.activities[ticketID] = append([]Activity{*result.Activity}, s.activities[ticketID]...)
	}
	return nil
}

// Ticket returns a cached ticket.
func (s *TicketStore) Ticket(id string) (Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tickets {
		if t.ID == id {
			return t, true
		}
	}
	return Ticket{}, false
}

// Tickets returns a copy of the cached list.
func (s *TicketStore) Tickets() []Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Ticket(nil), s.tickets...)
}

// Total returns the cached count.
func (s *TicketStore) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Activities returns the ticket's activity log prepared for display.
func (s *TicketStore) Activities(ticketID string) []Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return DisplayActivities(s.activities[ticketID])
}

// Error returns the last error message, or "".
func (s *TicketStore) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *TicketStore) fail(err error, fallback string) {
	s.mu.Lock()
	s.err = ErrorMessage(err, fallback)
	s.mu.Unlock()
}

// DisplayActivities orders entries newest first and drops repeats of the same
// content (type, actor and details), keeping the newest copy.
func DisplayActivities(items []Activity) []Activity {
	sorted := append([]Activity(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	type key struct {
		kind    domain.ActivityType
		actor   string
		details string
	}
	seen := map[key]struct{}{}
	out := make([]Activity, 0, len(sorted))
	for _, a := range sorted {
		k := key{kind: a.Type, details: a.Details}
		if a.ActorID != nil {
			k.actor = *a.ActorID
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	return out
}

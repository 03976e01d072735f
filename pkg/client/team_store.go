package client

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/support-inbox/internal/api/dto"
	"github.com/spec-kit/support-inbox/internal/domain"
)

// TeamStore caches the company's team members.
type TeamStore struct {
	client *Client

	mu      sync.RWMutex
	members []TeamMember
	err     string
}

// NewTeamStore creates an empty store.
func NewTeamStore(c *Client) *TeamStore {
	return &TeamStore{client: c}
}

// Fetch loads every member.
func (s *TeamStore) Fetch(ctx context.Context) error {
	members, err := s.client.ListTeam(ctx)
	if err != nil {
		s.fail(err, "Failed to fetch team members")
		return err
	}
	s.mu.Lock()
	s.members = members
	s.err = ""
	s.mu.Unlock()
	return nil
}

// Add creates a member.
func (s *TeamStore) Add(ctx context.Context, req dto.AddMemberRequest) error {
	member, err := s.client.AddTeamMember(ctx, req)
	if err != nil {
		s.fail(err, "Failed to add team member")
		return err
	}
	s.mu.Lock()
	s.members = append(s.members, *member)
	s.mu.Unlock()
	return nil
}

// ChangeRole updates a member's role.
func (s *TeamStore) ChangeRole(ctx context.Context, id string, role domain.Role) error {
	member, err := s.client.ChangeTeamRole(ctx, id, role)
	if err != nil {
		s.fail(err, "Failed to update role")
		return err
	}
	s.mu.Lock()
	for i := range s.members {
		if s.members[i].ID == id {
			s.members[i] = *member
		}
	}
	s.mu.Unlock()
	return nil
}

// Remove deletes a member.
func (s *TeamStore) Remove(ctx context.Context, id string) error {
	if err := s.client.RemoveTeamMember(ctx, id); err != nil {
		s.fail(err, "Failed to remove team member")
		return err
	}
	s.mu.Lock()
	kept := s.members[:0]
	for _, m := range s.members {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	s.members = kept
	s.mu.Unlock()
	return nil
}

// Members returns a copy of the cached members.
func (s *TeamStore) Members() []TeamMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]TeamMember(nil), s.members...)
}

// Error returns the last error message, or "".
func (s *TeamStore) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *TeamStore) fail(err error, fallback string) {
	s.mu.Lock()
	s.err = ErrorMessage(err, fallback)
	s.mu.Unlock()
}

// Refresh refetches tickets and team members in parallel and returns the first error.
func Refresh(ctx context.Context, tickets *TicketStore, team *TeamStore) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return tickets.Fetch(ctx) })
	g.Go(func() error { return team.Fetch(ctx) })
	return g.Wait()
}

package domain

import "time"

// ActivityType captures what happened in an activity entry.
type ActivityType string

const (
	ActivityCreated         ActivityType = "created"
	ActivityStatusChanged   ActivityType = "statusChanged"
	ActivityPriorityChanged ActivityType = "priorityChanged"
	ActivityResponded       ActivityType = "responded"
	ActivityEscalated       ActivityType = "escalated"
	ActivityAssigned        ActivityType = "assigned"
	ActivityNote            ActivityType = "note"
	ActivityComment         ActivityType = "comment"
	ActivityReply           ActivityType = "reply"
)

// TicketActivity is an immutable audit trail entry.
type TicketActivity struct {
	ID        string
	TicketID  string
	Type      ActivityType
	ActorID   *string
	Details   string
	CreatedAt time.Time
}

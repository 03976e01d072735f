package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicate is returned when an insert hits a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

const uniqueViolation = "23505"

func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

// Set bundles every repository the services depend on.
type Set struct {
	Tickets       TicketRepository
	Activities    TicketActivityRepository
	Users         UserRepository
	Companies     CompanyRepository
	Notifications NotificationRepository
	InboxEmails   InboxEmailRepository
	Contacts      ContactRepository
}

// NewPostgresSet builds Postgres-backed repositories over a shared pool.
func NewPostgresSet(pool *pgxpool.Pool) Set {
	return Set{
		Tickets:       NewTicketRepository(pool),
		Activities:    NewTicketActivityRepository(pool),
		Users:         NewUserRepository(pool),
		Companies:     NewCompanyRepository(pool),
		Notifications: NewNotificationRepository(pool),
		InboxEmails:   NewInboxEmailRepository(pool),
		Contacts:      NewContactRepository(pool),
	}
}

package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/repository"
)

type memoryDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (d *memoryDeduper) AcquireOnce(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen == nil {
		d.seen = map[string]bool{}
	}
	if d.seen[key] {
		return false
	}
	d.seen[key] = true
	return true
}

func (d *memoryDeduper) Release(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
}

type flakyInbox struct {
	repository.InboxEmailRepository
	failures int
}

func (r *flakyInbox) Create(ctx context.Context, email *domain.InboxEmail) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("connection reset")
	}
	return r.InboxEmailRepository.Create(ctx, email)
}

type outcomeCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *outcomeCounter) RecordInbound(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[outcome]++
}

func newIngest(f *fixture) (*IngestService, *outcomeCounter) {
	counter := &outcomeCounter{}
	svc := NewIngestService(IngestDependencies{
		Tickets:   f.tickets,
		InboxRepo: f.repos.InboxEmails,
		Deduper:   &memoryDeduper{},
		Recorder:  counter,
	})
	return svc, counter
}

func TestIngestBusinessEmailCreatesTicketOnce(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	svc, counter := newIngest(f)
	ctx := context.Background()

	email := InboundEmail{
		MessageID: "<m1@mail>",
		FromName:  "Casey",
		FromEmail: "casey@example.com",
		Subject:   "Refund please",
		Body:      "Charged twice.",
		Priority:  domain.TicketPriorityHigh,
	}
	result, err := svc.Ingest(ctx, admin, email)
	require.NoError(t, err)
	assert.Equal(t, IngestOutcomeTicket, result.Outcome)
	require.NotNil(t, result.Ticket)
	assert.Equal(t, domain.TicketPriorityHigh, result.Ticket.Priority)
	assert.Equal(t, domain.TicketStatusNew, result.Ticket.Status)

	again, err := svc.Ingest(ctx, admin, email)
	require.NoError(t, err)
	assert.Equal(t, IngestOutcomeDuplicate, again.Outcome)
	assert.Nil(t, again.Ticket)

	total, err := f.tickets.CountTickets(ctx, admin.Company(), TicketListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, counter.counts[IngestOutcomeTicket])
	assert.Equal(t, 1, counter.counts[IngestOutcomeDuplicate])
}

func TestIngestPersonalEmailLandsInInbox(t *testing.T) {
	f := newFixture(t)
	result, err := f.authSvc.Register(context.Background(), RegisterInput{
		Name:        "Pat",
		Email:       "pat@example.com",
		Password:    "password123",
		AccountType: domain.AccountTypePersonal,
	})
	require.NoError(t, err)
	personal := identityOf(result.User)
	svc, _ := newIngest(f)
	inbox := NewInboxService(f.repos.InboxEmails)
	ctx := context.Background()

	ingested, err := svc.Ingest(ctx, personal, InboundEmail{
		MessageID: "<s1@mail>",
		FromEmail: "brand@example.com",
		Subject:   "Sponsorship offer",
		Category:  domain.EmailCategorySponsorship,
	})
	require.NoError(t, err)
	assert.Equal(t, IngestOutcomeInbox, ingested.Outcome)

	_, err = svc.Ingest(ctx, personal, InboundEmail{FromEmail: "x@example.com", Subject: "Hi"})
	require.NoError(t, err)

	sponsorship := domain.EmailCategorySponsorship
	filtered, err := inbox.List(ctx, personal.UserID, &sponsorship)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Sponsorship offer", filtered[0].Subject)

	all, err := inbox.List(ctx, personal.UserID, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, domain.EmailCategoryOther, all[0].Category)

	read, err := inbox.SetRead(ctx, personal.UserID, ingested.Email.ID, true)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	_, err = inbox.SetRead(ctx, "someone-else", ingested.Email.ID, true)
	requireDomainError(t, err, http.StatusNotFound)

	_, err = svc.Ingest(ctx, personal, InboundEmail{FromEmail: "x@example.com", Subject: "Hi", Category: "junk"})
	requireDomainError(t, err, http.StatusBadRequest)
}

func TestIngestRejectedEmailCanBeRetried(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	svc, counter := newIngest(f)
	ctx := context.Background()

	email := InboundEmail{MessageID: "m-1", FromEmail: "casey@example.com", Subject: "Refund", Priority: "URGENT"}
	_, err := svc.Ingest(ctx, admin, email)
	requireDomainError(t, err, http.StatusBadRequest)

	email.Priority = domain.TicketPriorityUrgent
	result, err := svc.Ingest(ctx, admin, email)
	require.NoError(t, err)
	assert.Equal(t, IngestOutcomeTicket, result.Outcome)
	assert.Zero(t, counter.counts[IngestOutcomeDuplicate])

	again, err := svc.Ingest(ctx, admin, email)
	require.NoError(t, err)
	assert.Equal(t, IngestOutcomeDuplicate, again.Outcome)
}

func TestIngestStorageFailureReleasesMessageID(t *testing.T) {
	f := newFixture(t)
	result, err := f.authSvc.Register(context.Background(), RegisterInput{
		Name:        "Pat",
		Email:       "pat@example.com",
		Password:    "password123",
		AccountType: domain.AccountTypePersonal,
	})
	require.NoError(t, err)
	personal := identityOf(result.User)
	svc := NewIngestService(IngestDependencies{
		Tickets:   f.tickets,
		InboxRepo: &flakyInbox{InboxEmailRepository: f.repos.InboxEmails, failures: 1},
		Deduper:   &memoryDeduper{},
	})
	ctx := context.Background()
	email := InboundEmail{MessageID: "<p1@mail>", FromEmail: "fan@example.com", Subject: "Love the show"}

	_, err = svc.Ingest(ctx, personal, email)
	requireDomainError(t, err, http.StatusInternalServerError)

	stored, err := svc.Ingest(ctx, personal, email)
	require.NoError(t, err)
	assert.Equal(t, IngestOutcomeInbox, stored.Outcome)

	_, err = svc.Ingest(ctx, personal, InboundEmail{MessageID: "<p2@mail>", FromEmail: "fan@example.com", Subject: "Hi", Category: "junk"})
	requireDomainError(t, err, http.StatusBadRequest)
	fixed, err := svc.Ingest(ctx, personal, InboundEmail{MessageID: "<p2@mail>", FromEmail: "fan@example.com", Subject: "Hi", Category: domain.EmailCategoryFan})
	require.NoError(t, err)
	assert.Equal(t, IngestOutcomeInbox, fixed.Outcome)
}

func TestIngestBusinessWithoutCompanyIsForbidden(t *testing.T) {
	f := newFixture(t)
	svc, _ := newIngest(f)
	identity := domain.Identity{UserID: "u1", AccountType: domain.AccountTypeBusiness}

	_, err := svc.Ingest(context.Background(), identity, InboundEmail{FromEmail: "a@b.com", Subject: "Hi"})
	requireDomainError(t, err, http.StatusForbidden)
}

func TestIngestRequiresSenderAndSubject(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	svc, _ := newIngest(f)

	_, err := svc.Ingest(context.Background(), admin, InboundEmail{Subject: "no sender"})
	requireDomainError(t, err, http.StatusBadRequest)
}

func TestRedisDeduperFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	d := NewDeduper(rdb, time.Minute, zap.NewNop())
	assert.True(t, d.AcquireOnce(context.Background(), "acme:<m1@mail>"))
	assert.True(t, d.AcquireOnce(context.Background(), "acme:<m1@mail>"))
}

func TestNilRedisAdmitsEverything(t *testing.T) {
	d := NewDeduper(nil, time.Minute, zap.NewNop())
	assert.True(t, d.AcquireOnce(context.Background(), "k"))
	assert.True(t, d.AcquireOnce(context.Background(), "k"))
}

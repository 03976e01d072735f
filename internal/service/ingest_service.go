package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/repository"
	apperrors "github.com/spec-kit/support-inbox/pkg/util/errorutil"
)

// InboundRecorder counts ingestion outcomes.
type InboundRecorder interface {
	RecordInbound(outcome string)
}

// Ingestion outcomes.
const (
	IngestOutcomeTicket    = "ticket"
	IngestOutcomeInbox     = "inbox"
	IngestOutcomeDuplicate = "duplicate"
)

// InboundEmail is a message delivered by the mailbox fetcher together with the
// classification engine's opaque outputs.
type InboundEmail struct {
	MessageID    string
	FromName     string
	FromEmail    string
	Subject      string
	Body         string
	Priority     domain.TicketPriority
	Category     domain.EmailCategory
	AIConfidence *float64
	Language     *string
}

// IngestResult reports what an inbound email became.
type IngestResult struct {
	Outcome string
	Ticket  *domain.Ticket
	Email   *domain.InboxEmail
}

// IngestService routes inbound email by account type: business accounts get tickets,
// personal accounts get inbox entries.
type IngestService struct {
	tickets  *TicketService
	inbox    repository.InboxEmailRepository
	deduper  Deduper
	recorder InboundRecorder
	logger   *zap.Logger
}

// IngestDependencies bundles collaborators for ingestion.
type IngestDependencies struct {
	Tickets   *TicketService
	InboxRepo repository.InboxEmailRepository
	Deduper   Deduper
	Recorder  InboundRecorder
	Logger    *zap.Logger
}

// NewIngestService constructs the service.
func NewIngestService(deps IngestDependencies) *IngestService {
	deduper := deps.Deduper
	if deduper == nil {
		deduper = noopDeduper{}
	}
	return &IngestService{
		tickets:  deps.Tickets,
		inbox:    deps.InboxRepo,
		deduper:  deduper,
		recorder: deps.Recorder,
		logger:   loggerOrNop(deps.Logger),
	}
}

// Ingest stores one inbound email for the identity's account. A message id seen before
// for the same account yields the duplicate outcome and stores nothing. A message that
// fails validation or storage is not remembered.
func (s *IngestService) Ingest(ctx context.Context, identity domain.Identity, email InboundEmail) (*IngestResult, error) {
	email.FromEmail = strings.TrimSpace(email.FromEmail)
	email.MessageID = strings.TrimSpace(email.MessageID)
	if email.FromEmail == "" || strings.TrimSpace(email.Subject) == "" {
		return nil, apperrors.NewValidationError("fromEmail and subject are required", nil)
	}

	var scope string
	switch identity.AccountType {
	case domain.AccountTypeBusiness:
		scope = identity.Company()
		if scope == "" {
			return nil, apperrors.NewForbidden("Missing company association")
		}
		if email.Priority == "" {
			email.Priority = domain.TicketPriorityMedium
		}
		if !email.Priority.Valid() {
			return nil, invalidPriority(email.Priority)
		}
	case domain.AccountTypePersonal:
		scope = identity.UserID
		if email.Category == "" {
			email.Category = domain.EmailCategoryOther
		}
		if !email.Category.Valid() {
			return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": email.Category})
		}
	default:
		return nil, apperrors.NewForbidden("unknown account type")
	}

	key := ""
	if email.MessageID != "" {
		key = scope + ":" + email.MessageID
		if !s.deduper.AcquireOnce(ctx, key) {
			s.record(IngestOutcomeDuplicate)
			return &IngestResult{Outcome: IngestOutcomeDuplicate}, nil
		}
	}

	result, err := s.store(ctx, identity, email)
	if err != nil {
		if key != "" {
			s.deduper.Release(ctx, key)
		}
		return nil, err
	}
	s.record(result.Outcome)
	return result, nil
}

func (s *IngestService) store(ctx context.Context, identity domain.Identity, email InboundEmail) (*IngestResult, error) {
	if identity.AccountType == domain.AccountTypeBusiness {
		ticket, err := s.tickets.CreateInboundTicket(ctx, identity.Company(), TicketCreateInput{
			Subject:      email.Subject,
			Body:         email.Body,
			SenderName:   email.FromName,
			SenderEmail:  email.FromEmail,
			Priority:     email.Priority,
			AIConfidence: email.AIConfidence,
			Language:     email.Language,
		})
		if err != nil {
			return nil, err
		}
		return &IngestResult{Outcome: IngestOutcomeTicket, Ticket: ticket}, nil
	}

	entry := &domain.InboxEmail{
		UserID:       identity.UserID,
		MessageID:    email.MessageID,
		FromName:     strings.TrimSpace(email.FromName),
		FromEmail:    email.FromEmail,
		Subject:      strings.TrimSpace(email.Subject),
		Body:         email.Body,
		Category:     email.Category,
		AIConfidence: email.AIConfidence,
	}
	if err := s.inbox.Create(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	return &IngestResult{Outcome: IngestOutcomeInbox, Email: entry}, nil
}

func (s *IngestService) record(outcome string) {
	if s.recorder != nil {
		s.recorder.RecordInbound(outcome)
	}
	s.logger.Debug("inbound email processed", zap.String("outcome", outcome))
}

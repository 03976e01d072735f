package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-inbox/internal/analytics"
	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/events"
	"github.com/spec-kit/support-inbox/internal/repository"
	apperrors "github.com/spec-kit/support-inbox/pkg/util/errorutil"
)

// analyticsFetchLimit caps how many tickets are reduced for one analytics request.
const analyticsFetchLimit = 10000

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	activities repository.TicketActivityRepository
	users      repository.UserRepository
	companies  repository.CompanyRepository
	dispatcher events.Dispatcher
	mailer     Mailer
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	ActivityRepo repository.TicketActivityRepository
	UserRepo     repository.UserRepository
	CompanyRepo  repository.CompanyRepository
	Dispatcher   events.Dispatcher
	Mailer       Mailer
	Logger       *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject      string
	Body         string
	SenderName   string
	SenderEmail  string
	Priority     domain.TicketPriority
	AIConfidence *float64
	Language     *string
}

// TicketListFilter describes dashboard listing filters.
type TicketListFilter struct {
	AssigneeID  *string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		activities: deps.ActivityRepo,
		users:      deps.UserRepo,
		companies:  deps.CompanyRepo,
		dispatcher: deps.Dispatcher,
		mailer:     deps.Mailer,
		logger:     loggerOrNop(deps.Logger),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateTicket records a ticket entered manually by staff.
func (s *TicketService) CreateTicket(ctx context.Context, identity domain.Identity, input TicketCreateInput) (*domain.Ticket, error) {
	actorID := identity.UserID
	return s.createTicket(ctx, identity.Company(), &actorID, input)
}

// CreateInboundTicket records a ticket from an inbound email. It has no actor.
func (s *TicketService) CreateInboundTicket(ctx context.Context, companyID string, input TicketCreateInput) (*domain.Ticket, error) {
	return s.createTicket(ctx, companyID, nil, input)
}

func (s *TicketService) createTicket(ctx context.Context, companyID string, actorID *string, input TicketCreateInput) (*domain.Ticket, error) {
	input.Subject = strings.TrimSpace(input.Subject)
	input.SenderEmail = strings.TrimSpace(input.SenderEmail)
	if input.Subject == "" || input.SenderEmail == "" {
		return nil, apperrors.NewValidationError("subject and senderEmail are required", nil)
	}
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, invalidPriority(input.Priority)
	}

	ticket := &domain.Ticket{
		TicketNumber: generateTicketNumber(),
		CompanyID:    companyID,
		Subject:      input.Subject,
		Body:         strings.TrimSpace(input.Body),
		SenderName:   strings.TrimSpace(input.SenderName),
		SenderEmail:  input.SenderEmail,
		Status:       domain.TicketStatusNew,
		Priority:     input.Priority,
		AIConfidence: input.AIConfidence,
		Language:     input.Language,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if _, err := s.appendActivity(ctx, ticket.ID, domain.ActivityCreated, actorID, "Ticket created from "+ticket.SenderEmail); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, ticket, events.EventTicketCreated, actorID, events.TicketCreatedPayload{
		Subject:     ticket.Subject,
		SenderName:  ticket.SenderName,
		SenderEmail: ticket.SenderEmail,
		Priority:    ticket.Priority,
	})
	s.sendAcknowledgment(ctx, ticket)
	return ticket, nil
}

// sendAcknowledgment mails the company's ack template when enabled. Failures are
// logged; ticket creation has already succeeded.
func (s *TicketService) sendAcknowledgment(ctx context.Context, ticket *domain.Ticket) {
	if s.mailer == nil || s.companies == nil {
		return
	}
	company, err := s.companies.GetByID(ctx, ticket.CompanyID)
	if err != nil {
		s.logger.Warn("ack skipped: company lookup failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		return
	}
	if !company.AckTemplate.Enabled {
		return
	}
	if _, err := s.mailer.Send(ctx, RenderAckTemplate(company.AckTemplate, ticket, company)); err != nil {
		s.logger.Warn("ack email failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
}

// ListTickets returns company tickets, newest first.
func (s *TicketService) ListTickets(ctx context.Context, companyID string, filter TicketListFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, toRepoFilter(companyID, filter))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// CountTickets counts company tickets matching filter.
func (s *TicketService) CountTickets(ctx context.Context, companyID string, filter TicketListFilter) (int, error) {
	count, err := s.tickets.Count(ctx, toRepoFilter(companyID, filter))
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// GetTicket loads one ticket scoped to the company.
func (s *TicketService) GetTicket(ctx context.Context, companyID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, companyID, ticketID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticketId": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListActivities returns the ticket's activity log, newest first.
func (s *TicketService) ListActivities(ctx context.Context, companyID, ticketID string) ([]domain.TicketActivity, error) {
	if _, err := s.GetTicket(ctx, companyID, ticketID); err != nil {
		return nil, err
	}
	entries, err := s.activities.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// UpdateStatus moves a ticket to any valid status.
func (s *TicketService) UpdateStatus(ctx context.Context, identity domain.Identity, ticketID string, status domain.TicketStatus, reason string) (*domain.Ticket, *domain.TicketActivity, error) {
	if !status.Valid() {
		return nil, nil, apperrors.NewValidationError("invalid status", map[string]any{
			"status":  status,
			"allowed": domain.TicketStatuses,
		})
	}
	return s.transition(ctx, identity, ticketID, status, domain.ActivityStatusChanged, "", strings.TrimSpace(reason))
}

// Escalate moves the ticket to escalated. A reason is required.
func (s *TicketService) Escalate(ctx context.Context, identity domain.Identity, ticketID, reason string) (*domain.Ticket, *domain.TicketActivity, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, nil, apperrors.NewValidationError("escalation reason is required", nil)
	}
	return s.transition(ctx, identity, ticketID, domain.TicketStatusEscalated, domain.ActivityEscalated, "Ticket escalated", reason)
}

// Resolve moves the ticket to resolved.
func (s *TicketService) Resolve(ctx context.Context, identity domain.Identity, ticketID string) (*domain.Ticket, *domain.TicketActivity, error) {
	return s.transition(ctx, identity, ticketID, domain.TicketStatusResolved, domain.ActivityStatusChanged, "Ticket resolved", "")
}

func (s *TicketService) transition(ctx context.Context, identity domain.Identity, ticketID string, status domain.TicketStatus, activityType domain.ActivityType, details, reason string) (*domain.Ticket, *domain.TicketActivity, error) {
	ticket, err := s.GetTicket(ctx, identity.Company(), ticketID)
	if err != nil {
		return nil, nil, err
	}
	oldStatus := ticket.Status
	ticket.ApplyStatus(status, s.now())
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	if details == "" {
		details = fmt.Sprintf("Status changed from %s to %s", oldStatus, status)
	}
	if reason != "" {
		details += ": " + reason
	}
	actorID := identity.UserID
	activity, err := s.appendActivity(ctx, ticket.ID, activityType, &actorID, details)
	if err != nil {
		return nil, nil, err
	}

	s.publishEvent(ctx, ticket, statusEventType(status), &actorID, events.TicketStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: status,
		Reason:    reason,
	})
	return ticket, activity, nil
}

func statusEventType(status domain.TicketStatus) events.EventType {
	switch status {
	case domain.TicketStatusEscalated:
		return events.EventTicketEscalated
	case domain.TicketStatusResolved:
		return events.EventTicketResolved
	default:
		return events.EventTicketStatusChanged
	}
}

// UpdatePriority overwrites the priority. Setting the current value is not rejected.
func (s *TicketService) UpdatePriority(ctx context.Context, identity domain.Identity, ticketID string, priority domain.TicketPriority) (*domain.Ticket, *domain.TicketActivity, error) {
	if !priority.Valid() {
		return nil, nil, invalidPriority(priority)
	}
	ticket, err := s.GetTicket(ctx, identity.Company(), ticketID)
	if err != nil {
		return nil, nil, err
	}
	oldPriority := ticket.Priority
	ticket.Priority = priority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	actorID := identity.UserID
	activity, err := s.appendActivity(ctx, ticket.ID, domain.ActivityPriorityChanged, &actorID,
		fmt.Sprintf("Priority changed from %s to %s", oldPriority, priority))
	if err != nil {
		return nil, nil, err
	}
	s.publishEvent(ctx, ticket, events.EventTicketPriorityChanged, &actorID, events.TicketPriorityChangedPayload{
		OldPriority: oldPriority,
		NewPriority: priority,
	})
	return ticket, activity, nil
}

// Assign sets the assignee to an active member of the same company.
func (s *TicketService) Assign(ctx context.Context, identity domain.Identity, ticketID, assigneeID string) (*domain.Ticket, *domain.TicketActivity, error) {
	assigneeID = strings.TrimSpace(assigneeID)
	if assigneeID == "" {
		return nil, nil, apperrors.NewValidationError("userId is required", nil)
	}
	ticket, err := s.GetTicket(ctx, identity.Company(), ticketID)
	if err != nil {
		return nil, nil, err
	}

	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil, apperrors.NewValidationError("assignee must be an active team member", map[string]any{"userId": assigneeID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	if !assignee.Active || assignee.CompanyID == nil || *assignee.CompanyID != ticket.CompanyID {
		return nil, nil, apperrors.NewValidationError("assignee must be an active team member", map[string]any{"userId": assigneeID})
	}

	ticket.AssigneeID = &assignee.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	actorID := identity.UserID
	activity, err := s.appendActivity(ctx, ticket.ID, domain.ActivityAssigned, &actorID, "Assigned to "+assignee.Name)
	if err != nil {
		return nil, nil, err
	}
	s.publishEvent(ctx, ticket, events.EventTicketAssigned, &actorID, events.TicketAssignedPayload{AssigneeID: ticket.AssigneeID})
	return ticket, activity, nil
}

// AddNote appends an internal note.
func (s *TicketService) AddNote(ctx context.Context, identity domain.Identity, ticketID, text string) (*domain.TicketActivity, error) {
	return s.annotate(ctx, identity, ticketID, domain.ActivityNote, text)
}

// AddComment appends a comment.
func (s *TicketService) AddComment(ctx context.Context, identity domain.Identity, ticketID, text string) (*domain.TicketActivity, error) {
	return s.annotate(ctx, identity, ticketID, domain.ActivityComment, text)
}

func (s *TicketService) annotate(ctx context.Context, identity domain.Identity, ticketID string, activityType domain.ActivityType, text string) (*domain.TicketActivity, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("text is required", nil)
	}
	ticket, err := s.GetTicket(ctx, identity.Company(), ticketID)
	if err != nil {
		return nil, err
	}
	actorID := identity.UserID
	activity, err := s.appendActivity(ctx, ticket.ID, activityType, &actorID, text)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, ticket, events.EventTicketNoteAdded, &actorID, events.TicketNoteAddedPayload{
		Kind:        activityType,
		BodyPreview: stringPreview(text, 120),
	})
	return activity, nil
}

// Reply mails body to the ticket sender and marks the ticket responded. Nothing is
// recorded when delivery fails.
func (s *TicketService) Reply(ctx context.Context, identity domain.Identity, ticketID, body string) (*domain.Ticket, *domain.TicketActivity, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil, apperrors.NewValidationError("body is required", nil)
	}
	ticket, err := s.GetTicket(ctx, identity.Company(), ticketID)
	if err != nil {
		return nil, nil, err
	}
	if s.mailer == nil {
		return nil, nil, apperrors.NewUpstreamError("Failed to send reply", fmt.Errorf("mailer not configured"))
	}

	msg := MailMessage{
		To:      ticket.SenderEmail,
		Subject: fmt.Sprintf("Re: %s [%s]", ticket.Subject, ticket.TicketNumber),
		Body:    body,
	}
	if company, err := s.companies.GetByID(ctx, ticket.CompanyID); err == nil {
		msg.ReplyTo = company.SupportEmail
	}
	if _, err := s.mailer.Send(ctx, msg); err != nil {
		return nil, nil, apperrors.NewUpstreamError("Failed to send reply", err)
	}

	oldStatus := ticket.Status
	ticket.ApplyStatus(domain.TicketStatusResponded, s.now())
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	actorID := identity.UserID
	activity, err := s.appendActivity(ctx, ticket.ID, domain.ActivityReply, &actorID, body)
	if err != nil {
		return nil, nil, err
	}
	if oldStatus != ticket.Status {
		s.publishEvent(ctx, ticket, events.EventTicketStatusChanged, &actorID, events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		})
	}
	return ticket, activity, nil
}

// RecordAIResponse stores a response produced by the classification engine. Status is
// left untouched.
func (s *TicketService) RecordAIResponse(ctx context.Context, identity domain.Identity, ticketID, content string) (*domain.Ticket, *domain.TicketActivity, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, apperrors.NewValidationError("content is required", nil)
	}
	ticket, err := s.GetTicket(ctx, identity.Company(), ticketID)
	if err != nil {
		return nil, nil, err
	}
	ticket.MarkResponded(s.now())
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	activity, err := s.appendActivity(ctx, ticket.ID, domain.ActivityResponded, nil, content)
	if err != nil {
		return nil, nil, err
	}
	return ticket, activity, nil
}

// Analytics reduces the company's tickets over the requested range.
func (s *TicketService) Analytics(ctx context.Context, companyID string, r analytics.Range) (analytics.Metrics, error) {
	now := s.now()
	from := r.Start(now)
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		CompanyID:   companyID,
		CreatedFrom: &from,
		Limit:       analyticsFetchLimit,
	})
	if err != nil {
		return analytics.Metrics{}, apperrors.MapError(err)
	}
	return analytics.Compute(tickets, r, now), nil
}

func (s *TicketService) appendActivity(ctx context.Context, ticketID string, activityType domain.ActivityType, actorID *string, details string) (*domain.TicketActivity, error) {
	activity := &domain.TicketActivity{
		TicketID: ticketID,
		Type:     activityType,
		ActorID:  actorID,
		Details:  details,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, apperrors.MapError(err)
	}
	return activity, nil
}

func (s *TicketService) publishEvent(ctx context.Context, ticket *domain.Ticket, eventType events.EventType, actorID *string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		CompanyID:    ticket.CompanyID,
		ActorID:      actorID,
		Timestamp:    s.now(),
		Payload:      payload,
	})
}

func toRepoFilter(companyID string, filter TicketListFilter) repository.TicketFilter {
	return repository.TicketFilter{
		CompanyID:   companyID,
		AssigneeID:  filter.AssigneeID,
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
}

func invalidPriority(p domain.TicketPriority) error {
	return apperrors.NewValidationError("invalid priority", map[string]any{
		"priority": p,
		"allowed":  domain.TicketPriorities,
	})
}

func generateTicketNumber() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

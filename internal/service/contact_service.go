package service

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/repository"
	apperrors "github.com/spec-kit/support-inbox/pkg/util/errorutil"
)

// MessageAllFieldsRequired is returned for incomplete contact and mail requests.
const MessageAllFieldsRequired = "All fields are required."

// MailRecorder counts outbound mail attempts.
type MailRecorder interface {
	RecordMail(kind string, err error)
}

// ContactService stores public contact-form submissions.
type ContactService struct {
	contacts repository.ContactRepository
	logger   *zap.Logger
}

// NewContactService constructs the service.
func NewContactService(contacts repository.ContactRepository, logger *zap.Logger) *ContactService {
	return &ContactService{contacts: contacts, logger: loggerOrNop(logger)}
}

// Submit persists a contact message. Every field is required.
func (s *ContactService) Submit(ctx context.Context, name, email, message string) (*domain.ContactMessage, error) {
	msg := &domain.ContactMessage{
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Message: strings.TrimSpace(message),
	}
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		return nil, apperrors.NewValidationError(MessageAllFieldsRequired, nil)
	}
	if err := s.contacts.Create(ctx, msg); err != nil {
		s.logger.Error("contact message not stored", zap.Error(err))
		return nil, apperrors.NewDomainError("CONTACT_FAILED", "Failed to send message.", http.StatusInternalServerError, nil)
	}
	return msg, nil
}

// DirectMailService sends one-off emails from the dashboard.
type DirectMailService struct {
	mailer   Mailer
	recorder MailRecorder
	logger   *zap.Logger
}

// NewDirectMailService constructs the service. recorder may be nil.
func NewDirectMailService(mailer Mailer, recorder MailRecorder, logger *zap.Logger) *DirectMailService {
	return &DirectMailService{mailer: mailer, recorder: recorder, logger: loggerOrNop(logger)}
}

// Send delivers a message. Transport errors are reported with their detail.
func (s *DirectMailService) Send(ctx context.Context, sender domain.Identity, to, subject, body string) (*MailReceipt, error) {
	to, subject = strings.TrimSpace(to), strings.TrimSpace(subject)
	if to == "" || subject == "" || strings.TrimSpace(body) == "" {
		return nil, apperrors.NewValidationError(MessageAllFieldsRequired, nil)
	}
	receipt, err := s.mailer.Send(ctx, MailMessage{To: to, Subject: subject, Body: body})
	if s.recorder != nil {
		s.recorder.RecordMail("direct", err)
	}
	if err != nil {
		s.logger.Warn("direct mail failed", zap.String("user_id", sender.UserID), zap.Error(err))
		return nil, &apperrors.DomainError{
			Code:       "MAIL_FAILED",
			Message:    "Failed to send email",
			HTTPStatus: http.StatusInternalServerError,
			Details:    map[string]any{"detail": err.Error()},
			Err:        err,
		}
	}
	return receipt, nil
}

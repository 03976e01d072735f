package service

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-inbox/internal/config"
)

// MailMessage is a plain-text outbound email.
type MailMessage struct {
	To      string
	Subject string
	Body    string
	ReplyTo string
}

// MailReceipt describes what the transport accepted.
type MailReceipt struct {
	MessageID string   `json:"messageId"`
	Accepted  []string `json:"accepted"`
	Transport string   `json:"transport"`
}

// Mailer delivers outbound email.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) (*MailReceipt, error)
}

// NewMailer returns an SMTP mailer when SMTP_HOST is set and a logging mailer otherwise.
func NewMailer(cfg config.SMTPConfig, logger *zap.Logger) Mailer {
	if !cfg.Enabled() {
		logger.Warn("SMTP_HOST not provided; outbound mail is logged only")
		return &LogMailer{logger: logger}
	}
	return &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: strings.TrimSpace(cfg.Username),
		password: cfg.Password,
		from:     strings.TrimSpace(cfg.From),
		send:     smtp.SendMail,
	}
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// Send dispatches msg. smtp.SendMail has no context support, so a cancelled ctx only
// stops the caller from waiting.
func (m *SMTPMailer) Send(ctx context.Context, msg MailMessage) (*MailReceipt, error) {
	if strings.TrimSpace(msg.To) == "" {
		return nil, fmt.Errorf("recipient is required")
	}
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), m.host)

	headers := strings.Builder{}
	fmt.Fprintf(&headers, "From: %s\r\n", m.from)
	fmt.Fprintf(&headers, "To: %s\r\n", msg.To)
	if msg.ReplyTo != "" {
		fmt.Fprintf(&headers, "Reply-To: %s\r\n", msg.ReplyTo)
	}
	fmt.Fprintf(&headers, "Subject: %s\r\n", sanitizeHeader(msg.Subject))
	fmt.Fprintf(&headers, "Message-ID: %s\r\n", messageID)
	fmt.Fprintf(&headers, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	headers.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")

	payload := []byte(headers.String() + msg.Body)
	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	done := make(chan error, 1)
	go func() {
		done <- m.send(addr, auth, m.from, []string{msg.To}, payload)
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			return nil, err
		}
	}
	return &MailReceipt{MessageID: messageID, Accepted: []string{msg.To}, Transport: "smtp"}, nil
}

// LogMailer records messages in the log instead of sending them.
type LogMailer struct {
	logger *zap.Logger
}

func (m *LogMailer) Send(_ context.Context, msg MailMessage) (*MailReceipt, error) {
	if strings.TrimSpace(msg.To) == "" {
		return nil, fmt.Errorf("recipient is required")
	}
	messageID := "<" + uuid.NewString() + "@localhost>"
	m.logger.Info("outbound mail (not delivered)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("message_id", messageID))
	return &MailReceipt{MessageID: messageID, Accepted: []string{msg.To}, Transport: "log"}, nil
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

package service

import (
	"strings"

	"github.com/spec-kit/support-inbox/internal/domain"
)

// RenderAckTemplate fills the acknowledgment placeholders for ticket.
func RenderAckTemplate(tpl domain.AckTemplate, ticket *domain.Ticket, company *domain.Company) MailMessage {
	senderName := ticket.SenderName
	if strings.TrimSpace(senderName) == "" {
		senderName = ticket.SenderEmail
	}
	replacer := strings.NewReplacer(
		"{{ticketNumber}}", ticket.TicketNumber,
		"{{senderName}}", senderName,
		"{{companyName}}", company.Name,
		"{{subject}}", ticket.Subject,
	)
	return MailMessage{
		To:      ticket.SenderEmail,
		Subject: replacer.Replace(tpl.Subject),
		Body:    replacer.Replace(tpl.Body),
		ReplyTo: company.SupportEmail,
	}
}

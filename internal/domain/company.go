package domain

import "time"

// AckTemplate is the automatic acknowledgment sent for new tickets.
type AckTemplate struct {
	Enabled bool
	Subject string
	Body    string
}

// PortalSettings controls the customer portal.
type PortalSettings struct {
	Enabled              bool
	IncludeTicketHistory bool
}

// Company is a business tenant.
type Company struct {
	ID                 string
	Name               string
	Slug               string
	Domain             string
	SupportEmail       string
	GoogleConnected    bool
	GoogleEmail        *string
	GoogleRefreshToken *string
	AckTemplate        AckTemplate
	Portal             PortalSettings
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DefaultAckTemplate is applied to newly registered companies.
func DefaultAckTemplate() AckTemplate {
	return AckTemplate{
		Enabled: false,
		Subject: "We received your request [{{ticketNumber}}]",
		Body:    "Hi {{senderName}},\n\nThanks for reaching out. Your request {{ticketNumber}} has been received and our team will get back to you shortly.\n\n{{companyName}}",
	}
}

package dto

import (
	"time"

	"github.com/spec-kit/support-inbox/internal/domain"
)

// AckTemplateDTO is the acknowledgment template on the wire.
type AckTemplateDTO struct {
	Enabled bool   `json:"enabled"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// PortalDTO is the customer portal settings on the wire.
type PortalDTO struct {
	Enabled              bool `json:"enabled"`
	IncludeTicketHistory bool `json:"includeTicketHistory"`
}

// CompanyResponse is the public view of a company. The Google refresh token is
// never serialized.
type CompanyResponse struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Slug            string         `json:"slug"`
	Domain          string         `json:"domain"`
	SupportEmail    string         `json:"supportEmail"`
	GoogleConnected bool           `json:"googleConnected"`
	GoogleEmail     *string        `json:"googleEmail"`
	AckTemplate     AckTemplateDTO `json:"ackTemplate"`
	Portal          PortalDTO      `json:"portal"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// UpdateCompanyRequest is a partial settings update. Absent fields are unchanged.
type UpdateCompanyRequest struct {
	Name         *string    `json:"name"`
	Domain       *string    `json:"domain"`
	SupportEmail *string    `json:"supportEmail" validate:"omitempty,email"`
	Portal       *PortalDTO `json:"portal"`
}

// GoogleAuthURLResponse carries the consent URL.
type GoogleAuthURLResponse struct {
	URL string `json:"url"`
}

// NewCompanyResponse maps a company, or returns nil for personal accounts.
func NewCompanyResponse(c *domain.Company) *CompanyResponse {
	if c == nil {
		return nil
	}
	return &CompanyResponse{
		ID:              c.ID,
		Name:            c.Name,
		Slug:            c.Slug,
		Domain:          c.Domain,
		SupportEmail:    c.SupportEmail,
		GoogleConnected: c.GoogleConnected,
		GoogleEmail:     c.GoogleEmail,
		AckTemplate: AckTemplateDTO{
			Enabled: c.AckTemplate.Enabled,
			Subject: c.AckTemplate.Subject,
			Body:    c.AckTemplate.Body,
		},
		Portal: PortalDTO{
			Enabled:              c.Portal.Enabled,
			IncludeTicketHistory: c.Portal.IncludeTicketHistory,
		},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

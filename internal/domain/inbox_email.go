package domain

import "time"

// EmailCategory is the AI-assigned bucket for a personal inbox email.
type EmailCategory string

const (
	EmailCategorySponsorship   EmailCategory = "sponsorship"
	EmailCategoryCollaboration EmailCategory = "collaboration"
	EmailCategoryFan           EmailCategory = "fan"
	EmailCategoryBusiness      EmailCategory = "business"
	EmailCategorySpam          EmailCategory = "spam"
	EmailCategoryOther         EmailCategory = "other"
)

// Valid reports whether c is a known category.
func (c EmailCategory) Valid() bool {
	switch c {
	case EmailCategorySponsorship, EmailCategoryCollaboration, EmailCategoryFan,
		EmailCategoryBusiness, EmailCategorySpam, EmailCategoryOther:
		return true
	}
	return false
}

// InboxEmail is a categorized email in a personal account's inbox.
type InboxEmail struct {
	ID           string
	UserID       string
	MessageID    string
	FromName     string
	FromEmail    string
	Subject      string
	Body         string
	Category     EmailCategory
	AIConfidence *float64
	IsRead       bool
	ReceivedAt   time.Time
}

// ContactMessage is a public contact-form submission.
type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
}

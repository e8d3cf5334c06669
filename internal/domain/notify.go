package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RequestReceivedEmailData holds data for the "new join request" email to the initiator.
type RequestReceivedEmailData struct {
	OwnerEmail    string
	OwnerName     string
	RequesterName string
	EventTitle    string
}

// RequestDecidedEmailData holds data for the decision email to the requester.
type RequestDecidedEmailData struct {
	RequesterEmail string
	RequesterName  string
	EventTitle     string
	Status         string
}

// EventModeratedEmailData holds data for the moderation outcome email to the initiator.
type EventModeratedEmailData struct {
	OwnerEmail string
	OwnerName  string
	EventTitle string
	Outcome    string
}

// NotificationService sends domain-level emails. Implementations are
// best-effort collaborators; callers log failures and continue.
type NotificationService interface {
	SendRequestReceived(ctx context.Context, data *RequestReceivedEmailData) error
	SendRequestDecided(ctx context.Context, data *RequestDecidedEmailData) error
	SendEventModerated(ctx context.Context, data *EventModeratedEmailData) error
}

package services

import (
	"context"
	"fmt"
	"log"

	"eventboard/internal/domain"
)

type notificationService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewNotificationService returns a NotificationService that uses the given
// Mailer and template renderer.
func NewNotificationService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.NotificationService {
	return &notificationService{mailer: mailer, renderer: renderer}
}

// SendRequestReceived notifies the event initiator of a new join request
// using the "request_received" template.
func (s *notificationService) SendRequestReceived(ctx context.Context, data *domain.RequestReceivedEmailData) error {
	if data == nil {
		return fmt.Errorf("request received data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("request_received", data)
	if err != nil {
		return fmt.Errorf("failed to render request_received template: %w", err)
	}
	if err := s.mailer.Send(data.OwnerEmail, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send request received email: %w", err)
	}
	log.Printf("[EMAIL] Request received notice sent to %s", data.OwnerEmail)
	return nil
}

// SendRequestDecided notifies the requester of a confirm/reject decision
// using the "request_decided" template.
func (s *notificationService) SendRequestDecided(ctx context.Context, data *domain.RequestDecidedEmailData) error {
	if data == nil {
		return fmt.Errorf("request decided data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("request_decided", data)
	if err != nil {
		return fmt.Errorf("failed to render request_decided template: %w", err)
	}
	if err := s.mailer.Send(data.RequesterEmail, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send request decided email: %w", err)
	}
	log.Printf("[EMAIL] Decision notice sent to %s", data.RequesterEmail)
	return nil
}

// SendEventModerated notifies the initiator of a publish/reject outcome
// using the "event_moderated" template.
func (s *notificationService) SendEventModerated(ctx context.Context, data *domain.EventModeratedEmailData) error {
	if data == nil {
		return fmt.Errorf("event moderated data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("event_moderated", data)
	if err != nil {
		return fmt.Errorf("failed to render event_moderated template: %w", err)
	}
	if err := s.mailer.Send(data.OwnerEmail, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send event moderated email: %w", err)
	}
	log.Printf("[EMAIL] Moderation notice sent to %s", data.OwnerEmail)
	return nil
}

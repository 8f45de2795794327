package service

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/fixtrack/fixtrack/internal/config"
	"github.com/fixtrack/fixtrack/internal/events"
	"github.com/fixtrack/fixtrack/internal/repository"
)

// NotificationService fans domain events out to the configured webhook and
// to engineers by email. Both channels are best effort; delivery failures
// are logged and never surface to the caller.
type NotificationService struct {
	cfg    config.NotificationConfig
	users  repository.UserRepository
	http   *resty.Client
	mailer *sendgrid.Client
	logger *zap.Logger
}

// NewNotificationService constructs the service. The sendgrid client is
// only created when an API key is configured.
func NewNotificationService(cfg config.NotificationConfig, users repository.UserRepository, logger *zap.Logger) *NotificationService {
	svc := &NotificationService{
		cfg:    cfg,
		users:  users,
		http:   resty.New().SetRetryCount(2),
		logger: logger,
	}
	if cfg.SendgridAPIKey != "" {
		svc.mailer = sendgrid.NewSendClient(cfg.SendgridAPIKey)
	}
	return svc
}

// RegisterHandlers subscribes the notification channels to the dispatcher.
func (s *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketAssigned,
		events.EventTicketResolved,
		events.EventTicketConfirmed,
		events.EventTicketReopened,
		events.EventTicketClosed,
		events.EventSupportReviewed,
		events.EventEngineerLeveledUp,
		events.EventExtraTimeRequested,
		events.EventExtraTimeReviewed,
	} {
		dispatcher.Subscribe(eventType, s.forwardToWebhook)
	}
	dispatcher.Subscribe(events.EventTicketAssigned, s.emailAssignment)
	dispatcher.Subscribe(events.EventEngineerLeveledUp, s.emailLevelUp)
}

func (s *NotificationService) forwardToWebhook(ctx context.Context, event events.Event) error {
	if s.cfg.WebhookURL == "" {
		return nil
	}
	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(s.cfg.WebhookURL)
	if err != nil {
		s.logger.Warn("webhook delivery failed", zap.String("event", string(event.Type)), zap.Error(err))
		return err
	}
	if resp.IsError() {
		s.logger.Warn("webhook rejected event",
			zap.String("event", string(event.Type)),
			zap.Int("status", resp.StatusCode()))
	}
	return nil
}

func (s *NotificationService) emailAssignment(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	subject := fmt.Sprintf("Ticket %s asignado", payload.TicketID)
	body := fmt.Sprintf("Hola %s,\n\nSe te ha asignado el ticket %s.\n\nFixTrack",
		payload.EngineerName, payload.TicketID)
	return s.sendEmail(ctx, payload.EngineerName, payload.EngineerEmail, subject, body)
}

func (s *NotificationService) emailLevelUp(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.EngineerLeveledUpPayload)
	if !ok {
		return nil
	}
	user, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		return nil
	}
	subject := fmt.Sprintf("Has alcanzado el nivel %d", payload.NewLevel)
	body := fmt.Sprintf("Felicidades %s,\n\nHas subido al nivel %d (%s).\n\nFixTrack",
		user.Name, payload.NewLevel, payload.LevelName)
	return s.sendEmail(ctx, user.Name, user.Email, subject, body)
}

func (s *NotificationService) sendEmail(ctx context.Context, toName, toEmail, subject, body string) error {
	if s.mailer == nil || s.cfg.EmailFrom == "" || toEmail == "" {
		return nil
	}
	message := mail.NewSingleEmail(
		mail.NewEmail("FixTrack", s.cfg.EmailFrom),
		subject,
		mail.NewEmail(toName, toEmail),
		body,
		body,
	)
	resp, err := s.mailer.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Warn("email delivery failed", zap.String("to", toEmail), zap.Error(err))
		return err
	}
	if resp.StatusCode >= 400 {
		s.logger.Warn("email rejected", zap.String("to", toEmail), zap.Int("status", resp.StatusCode))
	}
	return nil
}

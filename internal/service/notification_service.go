package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/gymcore/gym-gateway/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	frontendURL string
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, frontendURL string) *NotificationService {
	return &NotificationService{
		dispatcher:  dispatcher,
		logger:      logger,
		frontendURL: frontendURL,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventPrincipalProvisioned, n.handlePrincipalProvisioned)
	n.dispatcher.Subscribe(events.EventLoginSucceeded, n.handleLoginSucceeded)
}

func (n *NotificationService) handlePrincipalProvisioned(ctx context.Context, event events.Event) error {
	n.logger.Info("PrincipalProvisioned",
		zap.String("subject", event.Subject),
		zap.String("role", event.Role.String()),
		zap.Any("payload", event.Payload))
	n.sendWelcomeNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleLoginSucceeded(_ context.Context, event events.Event) error {
	n.logger.Debug("LoginSucceeded",
		zap.String("subject", event.Subject),
		zap.String("role", event.Role.String()),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendWelcomeNotificationStub(_ context.Context, event events.Event) {
	n.logger.Debug("sendWelcomeNotificationStub",
		zap.String("to", event.Subject),
		zap.String("complete_profile_url", n.frontendURL+"/complete-profile"))
}

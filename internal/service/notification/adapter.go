package notification

import (
	"context"

	"github.com/jeraldtan21/cts/internal/notification"
	"github.com/jeraldtan21/cts/internal/service"
)

// ServiceAdapter adapts the webhook client to the service layer interface
type ServiceAdapter struct {
	client notification.Notifier
}

func NewServiceAdapter(client notification.Notifier) *ServiceAdapter {
	return &ServiceAdapter{client: client}
}

// SendAccountabilityNotification converts n to a webhook payload and sends it.
func (a *ServiceAdapter) SendAccountabilityNotification(ctx context.Context, n service.AccountabilityNotification) error {
	metadata := make(map[string]string, len(n.Metadata)+1)
	for k, v := range n.Metadata {
		metadata[k] = v
	}
	metadata["notification_type"] = string(n.Type)

	return a.client.Send(ctx, notification.Notification{
		Level:     mapNotificationLevel(n.Type),
		Event:     mapEvent(n.Type),
		Recipient: n.Recipient,
		Message:   n.Message,
		Metadata:  metadata,
	})
}

// mapNotificationLevel maps service notification types to client notification levels
func mapNotificationLevel(t service.NotificationType) notification.Level {
	switch t {
	case service.NotificationTypeComputerReassigned:
		return notification.LevelWarning
	default:
		return notification.LevelInfo
	}
}

func mapEvent(t service.NotificationType) notification.Event {
	switch t {
	case service.NotificationTypeComputerAssigned:
		return notification.EventComputerAssigned
	case service.NotificationTypeComputerReassigned:
		return notification.EventComputerReassigned
	default:
		return notification.EventHistoryAdded
	}
}

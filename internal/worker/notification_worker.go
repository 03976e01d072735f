package worker

import (
	"context"

	"github.com/spec-kit/support-inbox/internal/events"
	"github.com/spec-kit/support-inbox/internal/service"
)

// EventMetrics counts dispatched ticket events.
type EventMetrics interface {
	RecordTicketEvent(eventType string)
}

// Subscribers are the in-process consumers of ticket events. Nil members are skipped.
type Subscribers struct {
	Notifications *service.NotificationService
	Metrics       EventMetrics
	Publisher     *events.AMQPPublisher
}

// StartNotificationWorker registers every configured subscriber on the dispatcher.
func StartNotificationWorker(dispatcher events.Dispatcher, subs Subscribers) {
	if dispatcher == nil {
		return
	}
	if subs.Metrics != nil {
		events.SubscribeAll(dispatcher, func(_ context.Context, event events.Event) error {
			subs.Metrics.RecordTicketEvent(string(event.Type))
			return nil
		})
	}
	if subs.Notifications != nil {
		subs.Notifications.RegisterHandlers(dispatcher)
	}
	if subs.Publisher != nil {
		subs.Publisher.Attach(dispatcher)
	}
}

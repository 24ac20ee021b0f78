package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/repair-sla-service/internal/service"
)

// StartNotificationWorker subscribes the delivery channels to SLA events.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		logger.Warn("notification worker not started: no service")
		return
	}
	notificationService.RegisterHandlers()
	logger.Info("notification worker subscribed to sla events")
}

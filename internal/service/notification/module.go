package notification

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	notificationrepo "github.com/Additional-Code/orderdesk/internal/repository/notification"
	userrepo "github.com/Additional-Code/orderdesk/internal/repository/user"
)

// Module provides the notification dispatcher and service to Fx.
var Module = fx.Provide(
	func(store *notificationrepo.Repository, users *userrepo.Repository, logger *zap.Logger) *Dispatcher {
		return NewDispatcher(store, users, logger)
	},
	func(store *notificationrepo.Repository, logger *zap.Logger) *Service {
		return NewService(store, logger)
	},
)

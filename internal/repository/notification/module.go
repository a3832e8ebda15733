package notification

import "go.uber.org/fx"

// Module provides the notification repository to Fx.
var Module = fx.Provide(NewRepository)

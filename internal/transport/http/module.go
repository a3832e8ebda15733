package http

import (
	"go.uber.org/fx"

	notificationtransport "github.com/Additional-Code/orderdesk/internal/transport/http/notification"
	ordertransport "github.com/Additional-Code/orderdesk/internal/transport/http/order"
	usertransport "github.com/Additional-Code/orderdesk/internal/transport/http/user"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	ordertransport.Module,
	notificationtransport.Module,
	usertransport.Module,
)

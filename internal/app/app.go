package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/orderdesk/internal/auth"
	"github.com/Additional-Code/orderdesk/internal/cache"
	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/logger"
	"github.com/Additional-Code/orderdesk/internal/messaging"
	"github.com/Additional-Code/orderdesk/internal/observability"
	repositorynotification "github.com/Additional-Code/orderdesk/internal/repository/notification"
	repositoryorder "github.com/Additional-Code/orderdesk/internal/repository/order"
	repositoryuser "github.com/Additional-Code/orderdesk/internal/repository/user"
	grpcserver "github.com/Additional-Code/orderdesk/internal/server/grpc"
	httpserver "github.com/Additional-Code/orderdesk/internal/server/http"
	servicenotification "github.com/Additional-Code/orderdesk/internal/service/notification"
	serviceorder "github.com/Additional-Code/orderdesk/internal/service/order"
	serviceuser "github.com/Additional-Code/orderdesk/internal/service/user"
	transporthttp "github.com/Additional-Code/orderdesk/internal/transport/http"
	"github.com/Additional-Code/orderdesk/internal/worker"
	workerorder "github.com/Additional-Code/orderdesk/internal/worker/order"
)

// Infrastructure provides configuration, logging, telemetry and storage without domain services.
var Infrastructure = fx.Options(
	config.Module,
	logger.Module,
	observability.Module,
	database.Module,
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	Infrastructure,
	cache.Module,
	messaging.Module,
	auth.Module,
	repositoryuser.Module,
	repositoryorder.Module,
	repositorynotification.Module,
	servicenotification.Module,
	serviceorder.Module,
	serviceuser.Module,
)

// HTTP wires the HTTP transport and the gRPC health endpoint on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP

package migration

import "go.uber.org/fx"

// Module provides the goose migrator.
var Module = fx.Provide(New)

package di

import (
	"go.uber.org/fx"

	"github.com/chanikul/edenclinic/internal/adapter/blobstore"
	"github.com/chanikul/edenclinic/internal/adapter/googleauth"
	"github.com/chanikul/edenclinic/internal/adapter/mailer"
	"github.com/chanikul/edenclinic/internal/adapter/payments"
	"github.com/chanikul/edenclinic/internal/app"
	"github.com/chanikul/edenclinic/internal/config"
	"github.com/chanikul/edenclinic/internal/logger"
	"github.com/chanikul/edenclinic/internal/pkg/auth"
	"github.com/chanikul/edenclinic/internal/server/http/handlers"
	"github.com/chanikul/edenclinic/internal/server/http/router"
	"github.com/chanikul/edenclinic/internal/storage/postgres"
	"github.com/chanikul/edenclinic/internal/usecase"
)

// Core wires everything above the adapters: auth, usecases, router and the
// application lifecycle. It has no constructors that dial out, so tests can
// compose it over in-memory implementations.
var Core = fx.Options(
	auth.Module,
	usecase.Module,
	router.Module,
	app.Module,
)

// adapters holds the constructors that reach external systems: the database
// pool, Stripe, SendGrid, MinIO and Google token verification.
var adapters = fx.Options(
	postgres.Module,
	payments.Module,
	mailer.Module,
	blobstore.Module,
	googleauth.Module,
	fx.Provide(func(s *postgres.Storage) handlers.Pinger { return s }),
)

// Module assembles the full application graph. Extra options are appended
// last so callers can add providers.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		Core,
		adapters,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

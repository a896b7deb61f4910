package payments

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/chanikul/edenclinic/internal/config"
)

// Module exposes the payment gateway implementation to the fx graph.
var Module = fx.Provide(newGateway)

type gatewayParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newGateway(p gatewayParams) Gateway {
	return NewStripeGateway(p.Config.StripeSecretKey, p.Config.StripeWebhookSecret, p.Logger)
}

package mailer

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/chanikul/edenclinic/internal/config"
)

// Module exposes a mailer implementation to the fx graph. Without an API
// key the noop mailer is wired so everything else still runs.
var Module = fx.Provide(newMailer)

type mailerParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newMailer(p mailerParams) Mailer {
	if p.Config.SendgridAPIKey == "" {
		return NewNoop(p.Logger)
	}
	return NewSendGrid(p.Config.SendgridAPIKey, p.Config.FromEmail, p.Logger)
}

package googleauth

import (
	"log/slog"

	"go.uber.org/fx"
)

// Module exposes the Google token verifier to the fx graph.
var Module = fx.Provide(newVerifier)

func newVerifier(logger *slog.Logger) Verifier {
	return NewHTTPVerifier(logger)
}

package blobstore

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/chanikul/edenclinic/internal/config"
)

// Module exposes the object store implementation to the fx graph.
var Module = fx.Provide(newStore)

type storeParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStore(p storeParams) (Store, error) {
	cfg := p.Config
	return NewMinio(p.Ctx, cfg.StorageEndpoint, cfg.StorageAccessKey, cfg.StorageSecretKey, cfg.StorageBucket, cfg.StorageUseSSL, p.Logger)
}

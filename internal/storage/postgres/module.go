package postgres

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/chanikul/edenclinic/internal/config"
	"github.com/chanikul/edenclinic/internal/domain/repository"
)

// Module wires PostgreSQL storage and repository adapters.
var Module = fx.Options(
	fx.Provide(newStorage),
	fx.Provide(
		func(s *Storage) repository.Factory { return s },
		func(s *Storage) repository.AdminRepository { return s.Admins() },
		func(s *Storage) repository.ClientRepository { return s.Clients() },
		func(s *Storage) repository.OrderRepository { return s.Orders() },
		func(s *Storage) repository.BloodTestRepository { return s.BloodTests() },
		func(s *Storage) repository.TestResultRepository { return s.TestResults() },
		func(s *Storage) repository.AddressRepository { return s.Addresses() },
		func(s *Storage) repository.AuditLogRepository { return s.AuditLogs() },
		func(s *Storage) repository.WebhookEventRepository { return s.WebhookEvents() },
	),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	return New(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			storage.Close()
			return nil
		},
	})
}

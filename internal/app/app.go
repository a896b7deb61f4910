package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/chanikul/edenclinic/internal/config"
	"github.com/chanikul/edenclinic/internal/domain/repository"
	"github.com/chanikul/edenclinic/internal/usecase"
	"github.com/chanikul/edenclinic/internal/worker"
)

// Module wires the HTTP server, the payment reconciler, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newHTTPServer,
		newPaymentReconciler,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type reconcilerParams struct {
	fx.In

	Orders   repository.OrderRepository
	Webhooks *usecase.WebhookUseCase
	Config   *config.Config
	Logger   *slog.Logger
}

func newPaymentReconciler(p reconcilerParams) *worker.PaymentReconciler {
	return worker.NewPaymentReconciler(
		p.Orders,
		p.Webhooks,
		p.Config.ReconcileInterval,
		p.Config.ReconcileMinAge,
		p.Config.ReconcileBatch,
		p.Config.WorkerPoolSize,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.PaymentReconciler
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting edenclinic", slog.String("addr", p.Server.Addr))
			p.Worker.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Worker.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("edenclinic stopped")
			return nil
		},
	})
}

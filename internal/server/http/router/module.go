package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/chanikul/edenclinic/internal/config"
	"github.com/chanikul/edenclinic/internal/server/http/handlers"
	"github.com/chanikul/edenclinic/internal/usecase"
)

type routerParams struct {
	fx.In

	Auth     *usecase.AuthUseCase
	Checkout *usecase.CheckoutUseCase
	Webhooks *usecase.WebhookUseCase
	Catalog  *usecase.CatalogUseCase
	Admins   *usecase.AdminUseCase
	Clients  *usecase.ClientUseCase
	Orders   *usecase.OrderUseCase
	Results  *usecase.ResultUseCase
	Addrs    *usecase.AddressUseCase

	DB     handlers.Pinger
	Config *config.Config
	Logger *slog.Logger
}

// Module registers HTTP router construction for the fx runtime.
var Module = fx.Provide(func(p routerParams) *gin.Engine {
	return Setup(Deps{
		Auth:     p.Auth,
		Checkout: p.Checkout,
		Webhooks: p.Webhooks,
		Catalog:  p.Catalog,
		Admins:   p.Admins,
		Clients:  p.Clients,
		Orders:   p.Orders,
		Results:  p.Results,
		Addrs:    p.Addrs,
		DB:       p.DB,
		Config:   p.Config,
		Logger:   p.Logger,
	})
})

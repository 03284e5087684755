package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/truckbites/truckbites-backend/api/controllers"
	instrumentsctl "github.com/truckbites/truckbites-backend/api/controllers/instruments"
	ordersctl "github.com/truckbites/truckbites-backend/api/controllers/orders"
	"github.com/truckbites/truckbites-backend/api/middleware"
	"github.com/truckbites/truckbites-backend/api/responses"
	"github.com/truckbites/truckbites-backend/pkg/config"
	"github.com/truckbites/truckbites-backend/pkg/enums"
	"github.com/truckbites/truckbites-backend/pkg/logger"
)

// Deps carries everything the router mounts.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Writer      *responses.Writer
	Health      *controllers.Health
	Orders      *ordersctl.Controller
	Instruments *instrumentsctl.Controller
	Metrics     http.Handler
}

// New assembles the HTTP router with the standard middleware chain.
func New(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(deps.Logger, deps.Writer))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(deps.Logger))

	r.Get("/health/live", deps.Health.Live)
	r.Get("/health/ready", deps.Health.Ready)
	r.Handle("/metrics", deps.Metrics)

	auth := middleware.Auth(deps.Config.JWT, deps.Writer)
	customerOnly := middleware.RequireRole(enums.UserRoleCustomer, deps.Writer)
	operatorOnly := middleware.RequireRole(enums.UserRoleOperator, deps.Writer)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(auth)

		api.Group(func(customer chi.Router) {
			customer.Use(customerOnly)
			customer.Post("/orders", deps.Orders.Create)
			customer.Get("/orders/me", deps.Orders.ListMine)
			customer.Get("/orders/me/{orderID}", deps.Orders.GetMine)
			customer.Post("/orders/me/{orderID}/request_cancellation", deps.Orders.RequestCancellation)

			customer.Post("/customers/me/payment_instruments", deps.Instruments.Attach)
			customer.Get("/customers/me/payment_instruments", deps.Instruments.List)
			customer.Delete("/customers/me/payment_instruments/{instrumentID}", deps.Instruments.Detach)
		})

		api.Group(func(operator chi.Router) {
			operator.Use(operatorOnly)
			operator.Get("/operators/me/orders", deps.Orders.ListForOperator)
			operator.Put("/operators/me/orders/{orderID}/status", deps.Orders.UpdateStatus)
		})
	})

	return r
}

// Package kernel assembles the HTTP handler: global middleware, the route
// table, and the operational endpoints (/metrics, /healthz, /graphql).
package kernel

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/dabba/app/controllers"
	appgraphql "github.com/shashiranjanraj/dabba/app/graphql"
	"github.com/shashiranjanraj/dabba/app/repositories"
	"github.com/shashiranjanraj/dabba/app/routes"
	"github.com/shashiranjanraj/dabba/app/services"
	"github.com/shashiranjanraj/dabba/pkg/graphql"
	"github.com/shashiranjanraj/dabba/pkg/metrics"
	"github.com/shashiranjanraj/dabba/pkg/middleware"
	"github.com/shashiranjanraj/dabba/pkg/reqid"
	"github.com/shashiranjanraj/dabba/pkg/router"
	"github.com/shashiranjanraj/dabba/pkg/session"
	"github.com/shashiranjanraj/dabba/pkg/ws"
	"gorm.io/gorm"
)

// Options carries everything the kernel needs that has a lifecycle of its
// own. Tests inject an in-memory session store and a stub gateway.
type Options struct {
	DB           *gorm.DB
	Hub          *ws.Hub
	Gateway      services.Gateway
	SessionStore session.Store // nil means the Redis store
}

// Handler wires repositories, services and controllers onto a router with
// the full middleware stack and returns the resulting http.Handler.
func Handler(opts Options) (http.Handler, error) {
	users := repositories.NewUserRepository(opts.DB)
	meals := repositories.NewMealRepository(opts.DB)
	orders := repositories.NewOrderRepository(opts.DB)

	authSvc := services.NewAuthService(users)
	catalogSvc := services.NewCatalogService(meals)
	cartSvc := services.NewCartService(meals)
	checkoutSvc := services.NewCheckoutService(orders, users, opts.Gateway)
	paymentSvc := services.NewPaymentService(orders, users, opts.Gateway)
	orderSvc := services.NewOrderService(orders)

	r := router.New()

	// Global middleware, outermost first:
	//  1. Prometheus metrics, outermost for accurate total latency
	//  2. Recovery, catches panics before they kill the goroutine
	//  3. Request ID, injected before anything logs
	//  4. Logger, logs request_id from context
	//  5. Session, load/create the cookie session
	//  6. CORS
	//  7. Rate limiter
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)

	sessOpts := session.DefaultOptions()
	if opts.SessionStore != nil {
		sessOpts.Store = opts.SessionStore
	}
	r.Use(session.Middleware(sessOpts))
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(200, time.Minute))

	r.Handle("/metrics", metrics.Handler())
	r.Get("/healthz", "healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	schema, err := appgraphql.NewSchema(catalogSvc)
	if err != nil {
		return nil, err
	}
	r.Post("/graphql", "graphql", graphql.Handler(schema))

	routes.Register(r, routes.Controllers{
		Catalog:  controllers.NewCatalogController(catalogSvc),
		Auth:     controllers.NewAuthController(authSvc),
		Cart:     controllers.NewCartController(catalogSvc, cartSvc),
		Checkout: controllers.NewCheckoutController(checkoutSvc, cartSvc),
		Payment:  controllers.NewPaymentController(paymentSvc),
		Webhook:  controllers.NewWebhookController(paymentSvc),
		Order:    controllers.NewOrderController(orderSvc, opts.Hub),
		Admin:    controllers.NewAdminMealController(catalogSvc),
	})

	return r.Handler(), nil
}

// Routes builds a throwaway router with the full route table, for route:list.
func Routes() []router.RouteInfo {
	r := router.New()
	routes.Register(r, routes.Controllers{
		Catalog:  controllers.NewCatalogController(nil),
		Auth:     controllers.NewAuthController(nil),
		Cart:     controllers.NewCartController(nil, nil),
		Checkout: controllers.NewCheckoutController(nil, nil),
		Payment:  controllers.NewPaymentController(nil),
		Webhook:  controllers.NewWebhookController(nil),
		Order:    controllers.NewOrderController(nil, nil),
		Admin:    controllers.NewAdminMealController(nil),
	})
	return r.Routes()
}

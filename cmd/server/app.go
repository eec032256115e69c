package main

import (
	"net/http"
	"time"

	"github.com/diewo77/acme-dashboard/auth"
	"github.com/diewo77/acme-dashboard/internal/actions"
	"github.com/diewo77/acme-dashboard/internal/cache"
	"github.com/diewo77/acme-dashboard/internal/handlers"
	"github.com/diewo77/acme-dashboard/internal/identity"
	"github.com/diewo77/acme-dashboard/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	invoices  *handlers.InvoiceHandler
	customers *handlers.CustomerHandler
	auth      *handlers.AuthHandler
	dashboard *handlers.DashboardHandler
	metrics   http.Handler
}

// NewApp wires services, caches and handlers on conn. Metrics are
// registered on reg and served from /metrics.
func NewApp(conn *gorm.DB, listingTTL time.Duration, reg *prometheus.Registry) *App {
	invoicePages := cache.NewPages[services.Page[services.InvoiceRow]](listingTTL)
	customerPages := cache.NewPages[services.Page[services.CustomerRow]](listingTTL)
	stale := cache.NewRevalidator(invoicePages, customerPages)

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	flow := actions.NewController(
		services.NewMutationService(conn, nil),
		stale,
		identity.NewDirectory(conn),
		actions.NewMetrics(reg),
	)
	listing := services.NewListingService(conn)

	app := &App{
		mux:       http.NewServeMux(),
		invoices:  handlers.NewInvoiceHandler(flow, listing, invoicePages),
		customers: handlers.NewCustomerHandler(flow, listing, customerPages),
		auth:      handlers.NewAuthHandler(flow),
		dashboard: handlers.NewDashboardHandler(services.NewInvoiceService(conn)),
		metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	auth.Middleware(a.mux).ServeHTTP(w, r)
}

func (a *App) protect(h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(h)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// Public routes
	a.mux.HandleFunc("GET /{$}", a.dashboard.Landing)
	a.mux.HandleFunc("GET /login", a.auth.LoginForm)
	a.mux.HandleFunc("POST /login", a.auth.Login)
	a.mux.HandleFunc("GET /signup", a.auth.SignupForm)
	a.mux.HandleFunc("POST /signup", a.auth.Signup)
	a.mux.HandleFunc("POST /logout", a.auth.Logout)
	a.mux.Handle("GET /metrics", a.metrics)

	// Dashboard
	a.mux.Handle("GET /dashboard", a.protect(a.dashboard.Overview))

	ih := a.invoices
	a.mux.Handle("GET /dashboard/invoices", a.protect(ih.List))
	a.mux.Handle("GET /dashboard/invoices/create", a.protect(ih.New))
	a.mux.Handle("POST /dashboard/invoices", a.protect(ih.Create))
	a.mux.Handle("GET /dashboard/invoices/{id}/edit", a.protect(ih.Edit))
	a.mux.Handle("POST /dashboard/invoices/{id}", a.protect(ih.Update))
	a.mux.Handle("POST /dashboard/invoices/{id}/delete", a.protect(ih.Delete))

	ch := a.customers
	a.mux.Handle("GET /dashboard/customers", a.protect(ch.List))
	a.mux.Handle("GET /dashboard/customers/create", a.protect(ch.New))
	a.mux.Handle("POST /dashboard/customers", a.protect(ch.Create))
	a.mux.Handle("GET /dashboard/customers/{id}/edit", a.protect(ch.Edit))
	a.mux.Handle("POST /dashboard/customers/{id}", a.protect(ch.Update))
	a.mux.Handle("POST /dashboard/customers/{id}/delete", a.protect(ch.Delete))
}

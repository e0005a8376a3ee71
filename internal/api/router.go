// Package api assembles the HTTP router.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/http/handlers"
)

// Deps carries everything the router mounts.
type Deps struct {
	Admin           *handlers.Admin
	Webhook         *handlers.Webhook
	ConnectionProbe func() bool
	Registry        *prometheus.Registry
}

// NewRouter builds the chi router with the standard middleware stack.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Get("/webhook", deps.Webhook.Verify)
	r.Post("/webhook", deps.Webhook.Receive)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/appointments", deps.Admin.ListAppointments)
		r.Post("/appointments/upload", deps.Admin.UploadAppointments)
		r.Post("/appointments/clear", deps.Admin.ClearAppointments)
		r.Post("/status/upload", deps.Admin.UploadStatus)
		r.Post("/status/clear", deps.Admin.ClearStatus)
		r.Get("/connection", handlers.ConnectionStatus(deps.ConnectionProbe))
	})

	return r
}

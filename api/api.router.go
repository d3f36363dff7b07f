package api

import (
	"net/http"

	"github.com/espview/hub/api/middleware"
	"github.com/espview/hub/api/resources"
	"github.com/espview/hub/internal/hubservice"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

type Router struct {
	router    *mux.Router
	auth      *middleware.JWTMiddleware
	resources *resources.Resources
}

func NewRouter(svc *hubservice.HubService, allowedOrigins []string, maxUploadBytes int64) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		auth:      middleware.NewJWTMiddleware(svc.Auth),
		resources: resources.NewResources(svc),
	}
	r.resources.Devices.MaxUploadBytes = maxUploadBytes

	r.setupRoutes(allowedOrigins)
	return r
}

func (r *Router) setupRoutes(allowedOrigins []string) {
	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/health", r.resources.HealthCheck).Methods(http.MethodGet)

	// Auth
	api.HandleFunc("/auth/signup", r.resources.Auth.Signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", r.resources.Auth.Login).Methods(http.MethodPost)

	// Device ingestion and state; devices carry no tokens
	devices := api.PathPrefix("/devices").Subrouter()
	devices.HandleFunc("/{deviceId}/image", r.resources.Devices.UploadImage).Methods(http.MethodPost)
	devices.HandleFunc("/{deviceId}/image/latest", r.resources.Devices.LatestImage).Methods(http.MethodGet)
	devices.HandleFunc("/{deviceId}/analog", r.resources.Devices.UploadAnalog).Methods(http.MethodPost)
	devices.HandleFunc("/{deviceId}/analog", r.resources.Devices.GetAnalog).Methods(http.MethodGet)
	devices.HandleFunc("/{deviceId}/state", r.resources.Devices.GetState).Methods(http.MethodGet)

	// Realtime streams
	api.HandleFunc("/realtime", r.resources.Realtime.StreamSSE).Methods(http.MethodGet)
	api.HandleFunc("/ws", r.resources.Realtime.StreamWebSocket).Methods(http.MethodGet)

	// Push
	api.HandleFunc("/push/subscribe", r.resources.Push.Subscribe).Methods(http.MethodPost)
	api.HandleFunc("/push/notify", r.resources.Push.Notify).Methods(http.MethodPost)

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(r.auth.Authenticate)
	protected.HandleFunc("/auth/user", r.resources.Auth.Profile).Methods(http.MethodGet)
	protected.HandleFunc("/images", r.resources.Images.ListImages).Methods(http.MethodGet)
	protected.HandleFunc("/images/latest", r.resources.Images.LatestImage).Methods(http.MethodGet)

	// CORS for browser dashboards
	r.router.Use(handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	))
}

// SetHealthCheck sets the health check handler
func (r *Router) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.resources.HealthCheck = h
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

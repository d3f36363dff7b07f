// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/espview/hub/api"
	"github.com/espview/hub/internal/auth"
	"github.com/espview/hub/internal/cache"
	"github.com/espview/hub/internal/config"
	"github.com/espview/hub/internal/database"
	"github.com/espview/hub/internal/hubservice"
	"github.com/espview/hub/internal/imagery"
	"github.com/espview/hub/internal/monitoring"
	"github.com/espview/hub/internal/push"
	"github.com/espview/hub/internal/realtime"
	"github.com/espview/hub/internal/repository/postgres"
	"github.com/espview/hub/internal/retention"
	"github.com/espview/hub/internal/state"
	nuts "github.com/vaudience/go-nuts"
)

const databasePingTimeout = 5 * time.Second

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	hubservice *hubservice.HubService
	monitoring *monitoring.Service
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{
		config: cfg,
	}
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Initialize services
	s.hubservice = initializeHubService(s.config)
	s.monitoring = monitoring.NewService(monitoring.Config{
		LogLevel: s.config.Monitoring.LogLevel,
	})

	if err := s.hubservice.Validate(); err != nil {
		return fmt.Errorf("service wiring incomplete: %w", err)
	}

	s.setupMonitoringHandlers()
	s.hubservice.Retention.Start()

	router := api.NewRouter(s.hubservice, s.config.Server.AllowedOrigins, s.config.Images.MaxUploadBytes)

	s.srv = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler: router,
		// WriteTimeout stays unset: the SSE and websocket endpoints hold
		// their response open for the connection lifetime.
		ReadHeaderTimeout: s.config.Server.ReadTimeout,
	}

	// Start server
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	s.hubservice.Retention.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

func (s *Server) setupMonitoringHandlers() {
	// Subscriber lifecycle: connects, disconnects and stalled drops
	s.hubservice.Hub.OnSubscriberEvent(func(kind, subscriberID string) {
		s.monitoring.RecordEvent("subscriber_"+kind, map[string]string{
			"subscriber_id": subscriberID,
		})
	})

	// Failed web push deliveries
	s.hubservice.Dispatcher.OnPushFailure(func(deviceID string) {
		s.monitoring.RecordEvent("push_failure", map[string]string{
			"device_id": deviceID,
		})
	})

	// Retention prune passes
	s.hubservice.Retention.OnPrune(func(cutoff string) {
		s.monitoring.RecordEvent("telemetry_pruned", map[string]string{
			"cutoff": cutoff,
		})
	})
}

// initializeHubService creates and configures the hub service
func initializeHubService(cfg *config.Config) *hubservice.HubService {
	// Initialize database connection
	db := initAppDB(cfg.Database)

	// Initialize repositories
	data := postgres.NewDeviceDataRepository(db)
	pushSubs := postgres.NewPushSubscriptionRepository(db)
	users := postgres.NewUserRepository(db)

	// Shared in-memory core
	deviceState := state.NewStore()
	hub := realtime.NewHub()

	var sender realtime.PushSender
	if pushSvc := push.NewService(cfg.Push); pushSvc.Enabled() {
		sender = pushSvc
	} else {
		nuts.L.Warnf("[Server] VAPID keys not configured, web push disabled")
	}
	dispatcher := realtime.NewDispatcher(deviceState, hub, sender, pushSubs)

	authSvc := auth.NewService(users, cfg.Auth)
	compressor := imagery.NewCompressor(cfg.Images)

	images, err := cache.NewImageCache(cfg.Redis)
	if err != nil {
		// The cache is an optimization; Postgres remains the source of truth.
		nuts.L.Warnf("[Server] Redis unavailable, serving latest images from Postgres: %v", err)
	}

	janitor := retention.New(data, cfg.Retention)

	return hubservice.New(data, pushSubs, users, deviceState, hub, dispatcher, authSvc, compressor, images, janitor)
}

func initAppDB(cfg config.PostgresConfig) database.DB {
	wrappedDB, err := database.NewPostgresDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to Postgres: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), databasePingTimeout)
	defer cancel()
	if err := wrappedDB.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping database: %v", err)
	}
	return wrappedDB
}

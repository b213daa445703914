// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-medicamp/config"
	"go-medicamp/controllers"
	"go-medicamp/logging"
	"go-medicamp/middleware"
	"go-medicamp/notify"
	"go-medicamp/payment"
	"go-medicamp/routes"
	"go-medicamp/server"
	"go-medicamp/store"
	"go-medicamp/utils"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/gorilla/mux"
	"github.com/thejerf/suture/v4"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("mediHub failed")
	}
}

// run returns instead of exiting so deferred cleanup always runs
func run() error {
	cfg, dotenv, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if !dotenv {
		logging.Info().Msg("No .env file found. Proceeding with environment variables.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	client, err := store.Connect(ctx, cfg.MongoURI())
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logging.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	db := store.New(client.Database(cfg.Database.Name))
	if err := db.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	emailService, err := utils.NewEmailService(cfg.Mail.Provider, mailKey(cfg), cfg.Mail.Sender)
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}
	notifier := newNotifier(cfg, emailService)

	tokens := utils.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	guard := middleware.NewGuard(tokens, db)

	router := mux.NewRouter()
	routes.RegisterRoutes(router, guard, routes.Controllers{
		Health:  controllers.NewHealthController(db),
		Auth:    controllers.NewAuthController(tokens, cfg.IsProduction()),
		User:    controllers.NewUserController(db, notifier),
		Camp:    controllers.NewCampController(db),
		Order:   controllers.NewOrderController(db, notifier),
		Admin:   controllers.NewAdminController(db),
		Payment: controllers.NewPaymentController(payment.NewStripeBridge(db, cfg.Payment.SecretKey, cfg.Payment.Currency)),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           withEdge(cfg, router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sup := server.NewSupervisor("medihub", cfg.Server.ShutdownTimeout)
	sup.Add(notifier)
	sup.Add(server.NewHTTPService(srv, cfg.Server.ShutdownTimeout))

	logging.Info().Str("port", cfg.Server.Port).Str("env", cfg.Server.Environment).Msg("mediHub is running")
	if err := sup.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor stopped: %w", err)
	}
	logging.Info().Msg("server stopped")
	return nil
}

// edge middleware wraps the whole router so preflight requests are answered
// before route matching
func withEdge(cfg *config.Config, h http.Handler) http.Handler {
	h = httprate.LimitByIP(cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow)(h)
	h = cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})(h)
	return chimw.Recoverer(h)
}

type queue interface {
	notify.Notifier
	suture.Service
}

func newNotifier(cfg *config.Config, sender notify.Sender) queue {
	opts := notify.Options{
		Workers:    cfg.Notify.Workers,
		Buffer:     cfg.Notify.Buffer,
		MaxRetries: cfg.Notify.MaxRetries,
	}
	if cfg.Notify.Queue == "amqp" {
		return notify.NewAMQPQueue(cfg.Notify.AMQPURL, cfg.Notify.QueueName, sender, opts)
	}
	return notify.NewMemoryQueue(sender, opts)
}

func mailKey(cfg *config.Config) string {
	if cfg.Mail.Provider == "sendgrid" {
		return cfg.Mail.SendgridKey
	}
	return cfg.Mail.PostmarkToken
}

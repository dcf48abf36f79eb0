package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/krishkalaria12/pixelmind/actions"
	"github.com/krishkalaria12/pixelmind/auth"
	"github.com/krishkalaria12/pixelmind/billing"
	"github.com/krishkalaria12/pixelmind/config"
	"github.com/krishkalaria12/pixelmind/database"
	handler "github.com/krishkalaria12/pixelmind/handlers"
	"github.com/krishkalaria12/pixelmind/identity"
	"github.com/krishkalaria12/pixelmind/logging"
	"github.com/krishkalaria12/pixelmind/media"
	"github.com/krishkalaria12/pixelmind/pages"
	"github.com/krishkalaria12/pixelmind/router"
	"github.com/krishkalaria12/pixelmind/store"
	"github.com/krishkalaria12/pixelmind/store/gormstore"
	"github.com/krishkalaria12/pixelmind/store/memstore"
	"github.com/krishkalaria12/pixelmind/store/mongostore"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level := slog.LevelInfo
	if !cfg.IsProduction() {
		level = slog.LevelDebug
	}
	logger := logging.NewJSON(os.Stdout, level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error(ctx, "closing the store", "error", err)
		}
	}()

	sessions, err := auth.NewService(cfg.ClerkJWTKey)
	if err != nil {
		return err
	}
	verifier, err := identity.NewVerifier(cfg.WebhookSecret)
	if err != nil {
		return err
	}
	cld, err := media.NewCloudinary(cfg.CloudinaryURL, cfg.CloudinaryFolder)
	if err != nil {
		return err
	}
	stripe := billing.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	revalidator := pages.New()
	users := actions.NewUserActions(st, revalidator, logger)
	images := actions.NewImageActions(st, users, cld, cld, revalidator, logger)
	txns := actions.NewTransactionActions(st, stripe, cfg.ServerURL, logger)

	h := handler.New(handler.Deps{
		Users:          users,
		Images:         images,
		Transactions:   txns,
		ClerkWebhooks:  verifier,
		ClerkMetadata:  identity.NewClerk(cfg.ClerkSecretKey),
		StripeWebhooks: stripe,
		Store:          st,
		Log:            logger,
	})

	app := fiber.New(fiber.Config{AppName: "pixelmind"})
	router.SetupRoutes(app, router.Options{
		Handler:  h,
		Sessions: sessions,
		Users:    users,
		Pages:    revalidator,
		Log:      logger,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server listening", "port", cfg.Port, "store", cfg.StoreDriver)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

// openStore connects the configured backend and returns it with its closer.
func openStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (store.Store, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pg := database.NewPostgres(cfg.DatabaseURL, !cfg.IsProduction(), logger)
		db, err := pg.Connect(ctx)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			return nil, nil, errors.Join(err, pg.Close())
		}
		return gormstore.New(db), pg.Close, nil

	case config.DriverMongo:
		mg := database.NewMongo(cfg.MongoURL, cfg.MongoDB, logger)
		client, err := mg.Connect(ctx)
		if err != nil {
			return nil, nil, err
		}
		st := mongostore.New(client, mg.Database())
		if err := st.Migrate(ctx); err != nil {
			return nil, nil, errors.Join(err, mg.Close())
		}
		return st, mg.Close, nil

	case config.DriverMemory:
		logger.Warn(ctx, "using the in-memory store; data is lost on restart")
		st := memstore.New()
		return st, st.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

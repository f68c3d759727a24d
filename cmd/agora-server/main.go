// Command agora-server runs the deliberation graph HTTP service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/openagora/agora/pkg/api"
	"github.com/openagora/agora/pkg/auth"
	"github.com/openagora/agora/pkg/config"
	"github.com/openagora/agora/pkg/layout"
	"github.com/openagora/agora/pkg/logging"
	"github.com/openagora/agora/pkg/metrics"
	"github.com/openagora/agora/pkg/pubsub"
	"github.com/openagora/agora/pkg/server"
	"github.com/openagora/agora/pkg/store"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", logging.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	bus := pubsub.NewBus()
	registry := metrics.NewRegistry()
	bus.OnDrop(registry.RecordEventDropped)

	var jwtManager *auth.JWTManager
	var userStore *auth.UserStore
	if !cfg.Auth.DisableAuth {
		jwtManager, err = auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.RefreshTTL)
		if err != nil {
			return fmt.Errorf("failed to initialize token manager: %w", err)
		}
		userStore = auth.NewUserStore()
		if cfg.Auth.AdminUser != "" && cfg.Auth.AdminPass != "" {
			if _, err := userStore.CreateUser(cfg.Auth.AdminUser, cfg.Auth.AdminPass, auth.RoleAdmin); err != nil {
				return fmt.Errorf("failed to create admin user: %w", err)
			}
			logger.Info("bootstrapped admin user", logging.String("username", cfg.Auth.AdminUser))
		} else {
			logger.Warn("no admin user configured, set AGORA_ADMIN_USER and AGORA_ADMIN_PASS")
		}
	} else {
		logger.Warn("authentication disabled, all requests are anonymous")
	}

	apiServer, err := api.NewServer(api.Options{
		Store:      st,
		Bus:        bus,
		Registry:   registry,
		Logger:     logger,
		JWTManager: jwtManager,
		UserStore:  userStore,
		LayoutConfig: &layout.Config{
			Width:      cfg.Layout.Width,
			Height:     cfg.Layout.Height,
			Iterations: cfg.Layout.Iterations,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to build API server: %w", err)
	}

	gs := server.NewGracefulServer(cfg.ListenAddr(), apiServer.Handler(), logger)
	gs.OnShutdown(func(context.Context) error {
		bus.Shutdown()
		return nil
	})
	gs.OnShutdown(func(context.Context) error {
		return st.Close()
	})

	return gs.Start()
}

func openStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (store.Store, error) {
	if cfg.Database.URL == "" {
		logger.Warn("no database configured, using in-memory store")
		return store.NewMemoryStore(), nil
	}
	logger.Info("connecting to PostgreSQL")
	return store.NewPGStore(ctx, cfg.Database.URL)
}

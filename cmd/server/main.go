package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"vitrin/internal/audit"
	"vitrin/internal/identity"
	"vitrin/internal/jwtsession"
	"vitrin/internal/platform/config"
	"vitrin/internal/platform/httpserver"
	"vitrin/internal/platform/logger"
	"vitrin/internal/platform/metrics"
	platformredis "vitrin/internal/platform/redis"
	"vitrin/internal/profile"
	"vitrin/internal/registration"
	"vitrin/internal/shell"
	httptransport "vitrin/internal/transport/http"
)

// main wires the adapters, starts the navigation state machine, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	provider, err := buildProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("identity provider: %w", err)
	}

	store, health, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("profile store: %w", err)
	}
	defer cleanup()

	inbox := make(chan audit.Event, 256)
	auditStore := audit.NewInMemoryStore()
	worker := audit.NewWorker(auditStore, inbox, log)
	publisher := audit.NewChannelPublisher(inbox)

	machine := shell.NewMachine(store, log, m, publisher)
	machine.Start(ctx, provider)
	defer machine.Stop()

	reg := registration.NewService(store, machine, log, m, publisher)
	sessions := jwtsession.New(cfg.SessionSigningKey, cfg.SessionTTL)

	handler := httptransport.NewHandler(log, m, machine, provider, reg, store, sessions, publisher, health)
	router := httptransport.NewRouter(handler)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return worker.Run(gctx)
	})

	g.Go(func() error {
		log.Info("starting vitrin shell",
			"addr", cfg.Addr,
			"provider", cfg.IdentityProvider,
			"store", cfg.ProfileStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func buildProvider(ctx context.Context, cfg config.Config) (identity.Provider, error) {
	switch cfg.IdentityProvider {
	case "firebase":
		return identity.NewFirebase(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentials)
	case "local":
		local := identity.NewLocal()
		if cfg.DevEmail != "" && cfg.DevPassword != "" {
			if err := local.Register(cfg.DevEmail, cfg.DevPassword, identity.Identity{
				ID:          "dev-user",
				DisplayName: "Dev User",
				Email:       cfg.DevEmail,
			}); err != nil {
				return nil, err
			}
		}
		return local, nil
	default:
		return nil, fmt.Errorf("unknown identity provider %q", cfg.IdentityProvider)
	}
}

// buildStore returns the selected store plus, when the backend has a
// connection worth probing, a health checker for /healthz.
func buildStore(ctx context.Context, cfg config.Config) (profile.Store, httptransport.HealthChecker, func(), error) {
	nop := func() {}

	switch cfg.ProfileStore {
	case "memory":
		return profile.NewInMemory(), nil, nop, nil

	case "redis":
		client, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if client == nil {
			return nil, nil, nil, errors.New("redis store selected but VITRIN_REDIS_URL is empty")
		}
		return profile.NewRedis(client.Client), client, func() { _ = client.Close() }, nil

	case "postgres":
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		return profile.NewPostgres(db), dbHealth{db}, func() { _ = db.Close() }, nil

	case "firestore":
		var opts []option.ClientOption
		if cfg.FirebaseCredentials != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentials))
		}
		client, err := firestore.NewClient(ctx, cfg.FirebaseProjectID, opts...)
		if err != nil {
			return nil, nil, nil, err
		}
		return profile.NewFirestore(client), nil, func() { _ = client.Close() }, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown profile store %q", cfg.ProfileStore)
	}
}

type dbHealth struct {
	db *sql.DB
}

func (h dbHealth) Health(ctx context.Context) error {
	return h.db.PingContext(ctx)
}

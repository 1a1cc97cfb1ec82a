package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/OpenQueue/API/internal/auth"
	"github.com/OpenQueue/API/internal/cache"
	"github.com/OpenQueue/API/internal/config"
	apihttp "github.com/OpenQueue/API/internal/http"
	"github.com/OpenQueue/API/internal/login"
	"github.com/OpenQueue/API/internal/observability/logger"
	"github.com/OpenQueue/API/internal/queue"
	"github.com/OpenQueue/API/internal/rate"
	"github.com/OpenQueue/API/internal/sessions"
	"github.com/OpenQueue/API/internal/store/pg"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.L().Fatal("config load failed", logger.Err(err))
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "openqueue-api",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cacheClient, err := cache.New(cache.Config{
		Kind:     cfg.Cache.Kind,
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		log.Warn("redis unavailable, using memory cache", logger.Err(err))
		cacheClient = cache.NewMemory(cfg.Cache.Redis.Prefix)
	}
	defer func() { _ = cacheClient.Close() }()

	lifetime, _ := time.ParseDuration(cfg.Storage.Postgres.ConnMaxLifetime)
	store, err := pg.New(ctx, pg.Config{
		DSN:             cfg.Storage.DSN,
		MaxConns:        cfg.Storage.Postgres.MaxConns,
		ConnMaxLifetime: lifetime,
	})
	if err != nil {
		log.Fatal("postgres connect failed", logger.Err(err))
	}
	defer store.Close()

	if cfg.Storage.Migrate {
		if err := store.Migrate(ctx); err != nil {
			log.Fatal("migrations failed", logger.Err(err))
		}
		log.Info("migrations applied")
	}

	queues := queue.NewRegistry()
	tokens := login.NewTokens()
	sess := sessions.NewStore(cacheClient, sessions.Config{
		CookieName: cfg.Auth.Session.CookieName,
		Domain:     cfg.Auth.Session.Domain,
		Secure:     cfg.Auth.Session.Secure,
		TTL:        cfg.Auth.Session.TTL,
	})

	resolver := auth.NewResolver(store, store,
		auth.NewKeyCache(cacheClient, cfg.Auth.KeyCacheTTL),
		queues,
		auth.Config{
			WebhookKey: cfg.Auth.WebhookKey,
			RootUsers:  cfg.Auth.RootUsers,
		})

	loginLimiter := rate.NewLimiter(cacheClient, "login-rl",
		cfg.Auth.LoginRate.Max, cfg.Auth.LoginRate.Window)

	handler := apihttp.NewRouter(apihttp.Deps{
		Resolver:           resolver,
		LoginLimiter:       loginLimiter,
		Tokens:             tokens,
		Queues:             queues,
		Sessions:           sess,
		Logins:             store,
		Cache:              cacheClient,
		StorePinger:        store,
		FrontendURL:        cfg.Server.FrontendURL,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server failed", logger.Err(err))
	}
	log.Info("server stopped")
}

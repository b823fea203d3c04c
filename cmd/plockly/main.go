package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bcg0006/plockly-core/internal/application/auth"
	"github.com/bcg0006/plockly-core/internal/config"
	infraauth "github.com/bcg0006/plockly-core/internal/infrastructure/auth"
	httprouter "github.com/bcg0006/plockly-core/internal/infrastructure/http"
	"github.com/bcg0006/plockly-core/internal/infrastructure/http/handlers"
	"github.com/bcg0006/plockly-core/internal/infrastructure/http/middleware"
	"github.com/bcg0006/plockly-core/internal/infrastructure/persistence/postgres"
	"github.com/bcg0006/plockly-core/internal/infrastructure/security"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; continuing without redis")
			redisClient = nil
		}
	}

	userRepo := postgres.NewUserRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	tokenStore := postgres.NewTokenStore(pool)

	hasher := security.NewArgon2Hasher(security.Argon2Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  16,
		KeyLength:   32,
	})
	policy := security.NewStrengthPolicy()

	pemBytes, err := cfg.LoadJWTPrivateKey()
	if err != nil {
		log.Fatal().Err(err).Msg("load JWT private key")
	}
	privateKey, err := infraauth.LoadRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		log.Fatal().Err(err).Msg("parse JWT private key")
	}
	issuer := infraauth.NewTokenIssuer(privateKey, cfg.JWT.Issuer, cfg.JWT.Audience)

	signupUC := auth.NewSignup(userRepo, hasher, policy, issuer, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	loginUC := auth.NewLogin(userRepo, hasher, issuer, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	refreshUC := auth.NewRefresh(issuer, tokenStore, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	logoutUC := auth.NewLogout(issuer, tokenStore)

	authHandler := handlers.NewAuthHandler(signupUC, loginUC, refreshUC, logoutUC, userRepo, log)
	itemsHandler := handlers.NewItemsHandler(itemRepo, log)
	healthHandler := handlers.NewHealthHandler(pool, redisClient)

	ipLimit, err := middleware.NewIPRateLimiter(cfg.RateLimit.RatePerIP, redisClient)
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}
	secureMiddleware := middleware.NewSecure(middleware.SecureOptions(cfg.Secure.IsDevelopment))
	requireJWT := middleware.NewAuthValidator(issuer).Handler

	router := httprouter.NewRouter(httprouter.RouterConfig{
		AuthHandler:   authHandler,
		ItemsHandler:  itemsHandler,
		HealthHandler: healthHandler,
		RequireJWT:    requireJWT,
		Log:           log,
		Secure:        secureMiddleware,
		IPRateLimit:   ipLimit,
		Metrics:       true,
	})

	// Expired revocation entries are dead weight once the signed expiry
	// check blocks the token anyway; sweep them hourly.
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-janitorCtx.Done():
				return
			case <-ticker.C:
				n, err := tokenStore.PurgeExpired(janitorCtx, time.Now())
				if err != nil {
					log.Warn().Err(err).Msg("purge expired revocations")
					continue
				}
				if n > 0 {
					log.Info().Int64("purged", n).Msg("purged expired revocations")
				}
			}
		}
	}()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}

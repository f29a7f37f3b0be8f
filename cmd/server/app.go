package main

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/janisto/codestats/internal/http/health"
	"github.com/janisto/codestats/internal/platform/auth"
	"github.com/janisto/codestats/internal/platform/config"
	"github.com/janisto/codestats/internal/platform/firebase"
	"github.com/janisto/codestats/internal/platform/lock"
	applog "github.com/janisto/codestats/internal/platform/logging"
	"github.com/janisto/codestats/internal/service/codingstats"
	"github.com/janisto/codestats/internal/service/platforms"
	"github.com/janisto/codestats/internal/service/users"
)

// app holds the wired services and the clients they share.
type app struct {
	clients  *firebase.Clients
	redis    *redis.Client
	verifier auth.Verifier
	users    users.Service
	stats    codingstats.Service
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	clients, err := firebase.InitializeClients(ctx, firebase.Config{
		ProjectID:   cfg.Firebase.ProjectID,
		Credentials: cfg.Firebase.Credentials,
	})
	if err != nil {
		return nil, err
	}

	verifier, err := newVerifier(ctx, cfg.Auth, auth.NewFirebaseVerifier(clients.Auth))
	if err != nil {
		_ = clients.Close()
		return nil, err
	}

	locker, redisClient := newLocker(ctx, cfg)

	registry := platforms.NewDefaultRegistry(&http.Client{
		Transport: http.DefaultTransport.(*http.Transport).Clone(),
	}, platforms.Config{
		Timeout:           cfg.Platforms.Timeout,
		RequestsPerSecond: cfg.Platforms.RequestsPerSecond,
		Burst:             cfg.Platforms.Burst,
		UserAgent:         cfg.Platforms.UserAgent,
		LeetCodeURL:       cfg.Platforms.LeetCodeURL,
		CodeforcesURL:     cfg.Platforms.CodeforcesURL,
		CodeChefURL:       cfg.Platforms.CodeChefURL,
		AtCoderURL:        cfg.Platforms.AtCoderURL,
		GeeksforGeeksURL:  cfg.Platforms.GeeksforGeeksURL,
	})

	userService := users.NewFirestoreStore(clients.Firestore)
	syncer := codingstats.NewSyncer(
		userService,
		codingstats.NewFirestoreStore(clients.Firestore),
		registry,
		codingstats.WithLocker(locker),
		codingstats.WithConcurrency(cfg.Sync.Concurrency),
	)

	return &app{
		clients:  clients,
		redis:    redisClient,
		verifier: verifier,
		users:    userService,
		stats:    syncer,
	}, nil
}

func newVerifier(ctx context.Context, cfg config.Auth, next auth.Verifier) (auth.Verifier, error) {
	if cfg.DevTokens == "" {
		return next, nil
	}
	tokens, err := auth.ParseStaticTokens(cfg.DevTokens)
	if err != nil {
		return nil, err
	}
	applog.LogWarn(ctx, "development tokens enabled", zap.Int("count", len(tokens)))
	return auth.NewStaticVerifier(tokens, next), nil
}

// newLocker returns a Redis lock when Redis is configured and reachable, and
// an in-process lock otherwise.
func newLocker(ctx context.Context, cfg *config.Config) (lock.Locker, *redis.Client) {
	if cfg.Redis.Addr == "" {
		return lock.NewLocal(cfg.Sync.LockWait), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		applog.LogWarn(ctx, "redis unreachable, using in-process sync lock",
			zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = client.Close()
		return lock.NewLocal(cfg.Sync.LockWait), nil
	}
	applog.LogInfo(ctx, "using redis sync lock", zap.String("addr", cfg.Redis.Addr))
	return lock.NewRedis(client, cfg.Sync.LockTTL, cfg.Sync.LockWait), client
}

func (a *app) healthChecks() []health.Check {
	checks := []health.Check{{Name: "firestore", Probe: a.clients.Ping}}
	if a.redis != nil {
		checks = append(checks, health.Check{Name: "redis", Probe: func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		}})
	}
	return checks
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			applog.LogError(context.Background(), "redis close error", err)
		}
	}
	if err := a.clients.Close(); err != nil {
		applog.LogError(context.Background(), "firestore close error", err)
	}
}

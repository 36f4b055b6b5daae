// Package bootstrap turns a Config into a ready ledger: it opens the chosen
// store, loads the ledger from it and replays the transaction log.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/simonkvalheim/hm9-ledger/internal/config"
	"github.com/simonkvalheim/hm9-ledger/internal/ledger"
	"github.com/simonkvalheim/hm9-ledger/internal/storage"
)

// App is an initialized ledger and the store behind it
type App struct {
	Service *ledger.Service
	Store   storage.Store
	ping    func(ctx context.Context) error
}

// Initialize opens the configured store and loads the ledger from it.
// A failed replay is returned as an error; the store is closed in that case.
func Initialize(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	store, ping, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc := ledger.NewService(store)
	if err := svc.Initialize(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	logger.Debug("ledger loaded",
		zap.String("store", string(cfg.Store)),
		zap.Int("accounts", len(svc.Accounts())),
		zap.Int("transactions", len(svc.Transactions(""))),
	)

	return &App{Service: svc, Store: store, ping: ping}, nil
}

// Ping checks that the store backend is reachable
func (a *App) Ping(ctx context.Context) error {
	return a.ping(ctx)
}

// Close releases the store
func (a *App) Close() error {
	return a.Store.Close()
}

// OpenStore connects the backend named by cfg.Store. The returned ping
// checks the backend's connection.
func OpenStore(ctx context.Context, cfg config.Config) (storage.Store, func(context.Context) error, error) {
	switch cfg.Store {
	case config.StoreFile:
		store := storage.NewFileStore(cfg.AccountsFile, cfg.TransactionsFile)
		return store, func(context.Context) error { return nil }, nil

	case config.StorePostgres:
		db, err := ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store := storage.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, db.Ping, nil

	case config.StoreRedis:
		client, err := ConnectRedis(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
		return storage.NewRedisStore(client, cfg.RedisPrefix), ping, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// ConnectDB creates a connection pool to PostgreSQL
func ConnectDB(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Verify connection works
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

// ConnectRedis creates a Redis client and checks the connection
func ConnectRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}
	return client, nil
}

// Package database opens the optional backing services and checks that they respond
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"

	"bibliovault/internal/config"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Checker reports whether a dependency is reachable
type Checker interface {
	// Name identifies the dependency in readiness output
	Name() string
	// Ping returns nil when the dependency answers
	Ping(ctx context.Context) error
}

// Connect opens a postgres connection pool from a connection URL.
// sql.Open does not dial; the first Ping does.
func Connect(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)

	return db, nil
}

// ConnectRedis creates a redis client from a redis:// URL
func ConnectRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// PostgresChecker pings a postgres pool
type PostgresChecker struct {
	db *sql.DB
}

// NewPostgresChecker creates a checker for db
func NewPostgresChecker(db *sql.DB) *PostgresChecker {
	return &PostgresChecker{db: db}
}

func (p *PostgresChecker) Name() string { return "postgres" }

func (p *PostgresChecker) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// RedisChecker pings a redis server
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a checker for client
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

func (r *RedisChecker) Name() string { return "redis" }

func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Setup opens every dependency named in cfg and returns its checkers.
// The returned closers must be closed on shutdown.
func Setup(cfg config.DependencyConfig) ([]Checker, []io.Closer, error) {
	var (
		checkers []Checker
		closers  []io.Closer
	)

	if cfg.DatabaseURL != "" {
		db, err := Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		checkers = append(checkers, NewPostgresChecker(db))
		closers = append(closers, db)
		log.Printf("Readiness: postgres check enabled")
	}

	if cfg.RedisURL != "" {
		client, err := ConnectRedis(cfg.RedisURL)
		if err != nil {
			CloseAll(closers)
			return nil, nil, err
		}
		checkers = append(checkers, NewRedisChecker(client))
		closers = append(closers, client)
		log.Printf("Readiness: redis check enabled")
	}

	return checkers, closers, nil
}

// CloseAll closes every closer, logging failures
func CloseAll(closers []io.Closer) {
	for _, c := range closers {
		if err := c.Close(); err != nil {
			log.Printf("Warning: failed to close dependency: %v", err)
		}
	}
}

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const pingTimeout = 5 * time.Second

type NewDBPoolParams struct {
	DBHost         string
	DBPort         string
	DBName         string
	TracingEnabled bool
	MaxConns       int32
}

func ConnString(host, port, dbName string) string {
	return fmt.Sprintf(
		"postgres://postgres@%s:%s/%s",
		host, port, dbName,
	)
}

// NewDBPool creates the pool and checks the database is reachable.
func NewDBPool(ctx context.Context, params NewDBPoolParams) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(ConnString(params.DBHost, params.DBPort, params.DBName))
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	if params.TracingEnabled {
		poolConfig.ConnConfig.Tracer = otelpgx.NewTracer()
	}
	if params.MaxConns > 0 {
		poolConfig.MaxConns = params.MaxConns
	}

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db [%s:%s/%s]: %w", params.DBHost, params.DBPort, params.DBName, err)
	}

	log.Debugf("db pool created: %s:%s/%s, max conns: %d", params.DBHost, params.DBPort, params.DBName, poolConfig.MaxConns)
	return db, nil
}

// NewPoolCollector exposes the pool stats (acquired, idle, total conns...) as prometheus metrics.
func NewPoolCollector(pool *pgxpool.Pool, dbName string) prometheus.Collector {
	return pgxpoolprometheus.NewCollector(pool, map[string]string{"db_name": dbName})
}

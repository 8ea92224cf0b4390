// internal/common/database/connections.go
package database

import (
	"context"
	"errors"
	"fmt"

	"scheme-assistant/internal/common/config"
)

// Connections holds the backing stores the configuration asks for. Fields
// are nil when a store is not needed.
type Connections struct {
	Postgres      *PostgresClient
	Elasticsearch *ElasticsearchClient
	Redis         *RedisClient
}

// Open connects only to the stores required by the catalog source and the
// match cache, pinging each one.
func Open(ctx context.Context, cfg *config.Config) (*Connections, error) {
	conns := &Connections{}

	switch cfg.Catalog.Source {
	case config.CatalogSourcePostgres:
		pg, err := NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		conns.Postgres = pg
		if err := pg.Ping(ctx); err != nil {
			conns.Close()
			return nil, err
		}
	case config.CatalogSourceElasticsearch:
		es, err := NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, err
		}
		conns.Elasticsearch = es
		if err := es.Ping(ctx); err != nil {
			conns.Close()
			return nil, err
		}
	}

	if cfg.Cache.Enabled {
		conns.Redis = NewRedis(cfg.Database.Redis)
		if err := conns.Redis.Ping(ctx); err != nil {
			conns.Close()
			return nil, err
		}
	}

	return conns, nil
}

// Ping checks every open store.
func (c *Connections) Ping(ctx context.Context) error {
	var errs []error
	if c.Postgres != nil {
		errs = append(errs, c.Postgres.Ping(ctx))
	}
	if c.Elasticsearch != nil {
		errs = append(errs, c.Elasticsearch.Ping(ctx))
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Ping(ctx))
	}
	return errors.Join(errs...)
}

func (c *Connections) Close() error {
	var errs []error
	if c.Postgres != nil {
		errs = append(errs, c.Postgres.Close())
	}
	if c.Elasticsearch != nil {
		errs = append(errs, c.Elasticsearch.Close())
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close connections: %w", err)
	}
	return nil
}

// Package app assembles the storage, catalog, interpreter, ledger and
// notification wiring shared by the worker manager and the operator CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"travel-workers/internal/common/aws"
	"travel-workers/internal/common/camunda"
	"travel-workers/internal/common/catalog"
	"travel-workers/internal/common/config"
	"travel-workers/internal/common/database"
	"travel-workers/internal/common/kvstore"
	"travel-workers/internal/common/logger"
	"travel-workers/internal/common/metrics"
	"travel-workers/internal/common/notify"
	"travel-workers/internal/events"
	"travel-workers/internal/loyalty"
	"travel-workers/internal/query"
)

// StartupRetry waits for backing services the way the worker manager
// waits for the Zeebe gateway.
var StartupRetry = &camunda.RetryConfig{
	MaxRetries: 10,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

// NoRetry fails on the first connection error.
var NoRetry = &camunda.RetryConfig{}

type Services struct {
	Config      *config.Config
	Store       kvstore.Store
	Catalog     catalog.Source
	Repository  *query.Repository
	Interpreter *query.Interpreter
	Bus         *events.Bus
	Ledger      *loyalty.Ledger

	logger logger.Logger
	retry  *camunda.RetryConfig
	pg     *database.PostgresClient
	conns  []database.Conn

	dispatcher *notify.Dispatcher
}

// Build connects the configured backends. On error everything opened so far
// is closed again.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger, retry *camunda.RetryConfig) (*Services, error) {
	if retry == nil {
		retry = NoRetry
	}
	s := &Services{
		Config: cfg,
		logger: log,
		retry:  retry,
	}

	store, err := s.openStore(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Store = metrics.CountErrors(kvstore.WithPrefix(store, cfg.Storage.KeyPrefix))

	if s.Catalog, err = s.openCatalog(ctx); err != nil {
		s.Close()
		return nil, err
	}

	s.Bus = events.NewBus(log)
	metrics.SubscribeLedger(s.Bus)
	if cfg.Loyalty.Notify {
		notifier, err := s.buildNotifier(ctx)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.dispatcher = notify.NewDispatcher(notifier, log)
		s.dispatcher.Attach(s.Bus)
	}

	s.Repository = query.NewRepository(s.Store, log)
	s.Interpreter = query.NewInterpreter(s.Repository, log)
	s.Ledger = loyalty.NewLedger(s.Store, log,
		loyalty.WithEventBus(s.Bus),
		loyalty.WithReferralBonus(cfg.Loyalty.ReferralBonus),
	)

	log.Info("services ready", map[string]interface{}{
		"storage": cfg.Storage.Backend,
		"catalog": cfg.Catalog.Source,
		"notify":  cfg.Loyalty.Notify,
	})
	return s, nil
}

func (s *Services) openStore(ctx context.Context) (kvstore.Store, error) {
	switch s.Config.Storage.Backend {
	case config.StorageMemory, "":
		s.logger.Warn("using in-memory storage; data is lost on restart", nil)
		return kvstore.NewMemoryStore(), nil

	case config.StorageRedis:
		rc, err := database.NewRedis(s.Config.Database.Redis)
		if err != nil {
			return nil, err
		}
		if err := s.connect(ctx, rc); err != nil {
			return nil, err
		}
		return kvstore.NewRedisStore(rc.Client), nil

	case config.StoragePostgres:
		pg, err := s.postgres(ctx)
		if err != nil {
			return nil, err
		}
		return kvstore.NewPostgresStore(pg.DB, s.Config.Storage.Table)

	default:
		return nil, fmt.Errorf("unknown storage backend %q", s.Config.Storage.Backend)
	}
}

func (s *Services) openCatalog(ctx context.Context) (catalog.Source, error) {
	cc := s.Config.Catalog
	ttl := time.Duration(cc.CacheTTL) * time.Second

	switch cc.Source {
	case config.CatalogStatic, "":
		return catalog.LoadStaticSource(cc.File)

	case config.CatalogPostgres:
		pg, err := s.postgres(ctx)
		if err != nil {
			return nil, err
		}
		src, err := catalog.NewPostgresSource(pg.DB, cc.Table, cc.MaxItems)
		if err != nil {
			return nil, err
		}
		return catalog.NewCachedSource(src, ttl), nil

	case config.CatalogElasticsearch:
		es, err := database.NewElasticsearch(s.Config.Database.Elasticsearch)
		if err != nil {
			return nil, err
		}
		if err := s.connect(ctx, es); err != nil {
			return nil, err
		}
		return catalog.NewCachedSource(catalog.NewElasticsearchSource(es.Client, cc.Index, cc.MaxItems), ttl), nil

	default:
		return nil, fmt.Errorf("unknown catalog source %q", cc.Source)
	}
}

// postgres opens the pool once for both the store and the catalog.
func (s *Services) postgres(ctx context.Context) (*database.PostgresClient, error) {
	if s.pg != nil {
		return s.pg, nil
	}
	pg, err := database.NewPostgres(s.Config.Database.Postgres)
	if err != nil {
		return nil, err
	}
	if err := s.connect(ctx, pg); err != nil {
		return nil, err
	}
	s.pg = pg
	return pg, nil
}

// connect tracks conn for Ping and Close, then waits for it to answer.
func (s *Services) connect(ctx context.Context, conn database.Conn) error {
	s.conns = append(s.conns, conn)
	return camunda.Retry(ctx, s.retry, s.logger, conn.Name()+" connection", conn.Ping)
}

func (s *Services) buildNotifier(ctx context.Context) (notify.Notifier, error) {
	nc := s.Config.Notifications
	clients, err := aws.NewClients(ctx, nc)
	if err != nil {
		return nil, err
	}

	notifiers := notify.Multi{notify.NewLogNotifier(s.logger)}
	if clients.SNS != nil {
		notifiers = append(notifiers, notify.NewSNSNotifier(clients.SNS, nc.SNS.TopicARN))
	}
	if clients.SES != nil {
		notifiers = append(notifiers, notify.NewSESNotifier(clients.SES, nc.Email.FromEmail, nc.Email.To))
	}
	return notifiers, nil
}

// Ping checks every network backend and returns the failures by name.
func (s *Services) Ping(ctx context.Context) map[string]string {
	failures := map[string]string{}
	for _, c := range s.conns {
		if err := c.Ping(ctx); err != nil {
			failures[c.Name()] = err.Error()
		}
	}
	return failures
}

// Close drains pending notifications, then releases connections in reverse
// order of opening.
func (s *Services) Close() {
	if s.dispatcher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), notify.DefaultSendTimeout)
		if err := s.dispatcher.Close(ctx); err != nil {
			s.logger.Warn("pending notifications not delivered", map[string]interface{}{"error": err})
		}
		cancel()
		s.dispatcher = nil
	}
	for i := len(s.conns) - 1; i >= 0; i-- {
		if err := s.conns[i].Close(); err != nil {
			s.logger.Warn("close failed", map[string]interface{}{
				"backend": s.conns[i].Name(),
				"error":   err,
			})
		}
	}
	s.conns = nil
}

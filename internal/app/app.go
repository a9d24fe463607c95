// Package app assembles the service graph shared by the HTTP server and the
// admin CLI.
package app

import (
	"context"
	"fmt"

	"approvalflow/internal/audit"
	"approvalflow/internal/cache"
	"approvalflow/internal/clock"
	"approvalflow/internal/concurrency"
	"approvalflow/internal/config"
	"approvalflow/internal/idgen"
	"approvalflow/internal/notify"
	"approvalflow/internal/repository"
	"approvalflow/internal/routing"
	"approvalflow/internal/service"
	"approvalflow/internal/websocket"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Configuration
	DB     *gorm.DB
	Logger *logrus.Logger
	Cache  *cache.Cache
	Hub    *websocket.Hub

	Approvals service.ApprovalService
	Approvers service.ApproverService
	Chains    service.ITChainService
	Settings  service.SettingsService
	Audit     service.AuditService

	redis *cache.RedisBackend
}

// New wires repositories, the cache, the lock and every service.
func New(cfg *config.Configuration, db *gorm.DB, logger *logrus.Logger) (*App, error) {
	a := &App{Config: cfg, DB: db, Logger: logger}

	backend, err := a.cacheBackend()
	if err != nil {
		return nil, err
	}
	a.Cache = cache.New(backend, cfg.Cache.TTL, logger)
	a.Hub = websocket.NewHub(logger)

	txManager := repository.NewTransactionManager(db)
	requestRepo := repository.NewRequestRepository(db)
	approverRepo := repository.NewApproverRepository(db)
	chainRepo := repository.NewITChainRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	guard := concurrency.NewGlobalLock(cfg.Workflow.LockTimeout)
	resolver := routing.NewResolver(approverRepo, chainRepo, a.Cache)
	auth := service.NewAuthorizer(approverRepo, cfg.Workflow.AdminEmails)
	trail := audit.NewTrail(auditRepo, logger, clock.System.Now)

	a.Settings = service.NewSettingsService(repository.NewSettingRepository(db), txManager, a.Cache, guard, auth, trail, clock.System,
		service.WorkflowSettings{
			ITReviewForms:     cfg.Workflow.ITReviewForms,
			OperationsMailbox: cfg.Workflow.OperationsMailbox,
		})
	a.Approvals = service.NewApprovalService(service.ApprovalDeps{
		Requests:   requestRepo,
		Statistics: repository.NewStatisticsRepository(db),
		Tx:         txManager,
		Resolver:   resolver,
		Policy:     a.Settings,
		Guard:      guard,
		Auth:       auth,
		Trail:      trail,
		Notifier:   notify.Multi{notify.NewLogNotifier(logger), notify.NewHubNotifier(a.Hub)},
		Renderer:   notify.NewHTMLRenderer(),
		Clock:      clock.System,
		IDs:        idgen.New(clock.System),
		Logger:     logger,
	})
	a.Approvers = service.NewApproverService(approverRepo, txManager, resolver, guard, auth, trail)
	a.Chains = service.NewITChainService(chainRepo, txManager, resolver, guard, auth, trail)
	a.Audit = service.NewAuditService(auditRepo, auth)
	return a, nil
}

// cacheBackend returns nil (caching disabled) for CACHE_BACKEND=none.
func (a *App) cacheBackend() (cache.Backend, error) {
	switch a.Config.Cache.Backend {
	case config.CacheBackendRedis:
		r, err := cache.NewRedisBackend(a.Config.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure redis cache: %w", err)
		}
		if err := r.Ping(context.Background()); err != nil {
			// Reads fall back to the store while redis is unreachable.
			a.Logger.WithError(err).Warn("redis cache unreachable at startup")
		}
		a.redis = r
		return r, nil
	case config.CacheBackendNone:
		a.Logger.Info("data cache disabled")
		return nil, nil
	}
	return cache.NewMemoryBackend(clock.System), nil
}

// FlushCache drops every shared cache entry. Only the redis backend is
// shared between processes; the memory backend lives inside the server.
func (a *App) FlushCache(ctx context.Context) (int, error) {
	if a.redis == nil {
		return 0, fmt.Errorf("cache backend %q is not shared; restart the server to clear it", a.Config.Cache.Backend)
	}
	return a.redis.FlushAll(ctx)
}

func (a *App) Close() error {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			return err
		}
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

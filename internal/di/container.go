// Package di provides the dependency injection container managing service
// construction and lifecycle.
package di

import (
	"context"
	"sync"

	"servicelog/internal/config"
	"servicelog/internal/observability"
	"servicelog/internal/services"
	"servicelog/internal/tablestore"
	contextutils "servicelog/internal/utils"
)

// ServiceContainerInterface defines the interface for service containers
type ServiceContainerInterface interface {
	GetDataService() (*services.DataService, error)
	GetReportService() (*services.ReportService, error)
	GetServiceLogService() (*services.ServiceLogService, error)
	GetReferenceService() (*services.ReferenceService, error)
	GetConfig() *config.Config
	GetLogger() *observability.Logger
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ServiceContainer manages service dependencies and lifecycle
type ServiceContainer struct {
	cfg    *config.Config
	logger *observability.Logger

	mu          sync.RWMutex
	initialized bool
	client      *tablestore.Client
	data        *services.DataService
	reports     *services.ReportService
	logs        *services.ServiceLogService
	reference   *services.ReferenceService
}

// NewServiceContainer creates a new dependency injection container
func NewServiceContainer(cfg *config.Config, logger *observability.Logger) *ServiceContainer {
	return &ServiceContainer{cfg: cfg, logger: logger}
}

// Initialize constructs the store client and every service on top of it.
func (sc *ServiceContainer) Initialize(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.cfg.TableStore.URL == "" {
		return contextutils.NewAppError(contextutils.ErrorCodeMissingRequired,
			contextutils.SeverityFatal, "table store URL is not configured", "set tablestore.url or TABLE_STORE_URL")
	}
	if sc.cfg.TableStore.APIKey == "" {
		return contextutils.NewAppError(contextutils.ErrorCodeMissingRequired,
			contextutils.SeverityFatal, "table store API key is not configured", "set tablestore.api_key or TABLE_STORE_API_KEY")
	}

	sc.client = tablestore.NewClient(&sc.cfg.TableStore, sc.logger)
	sc.data = services.NewDataService(sc.client, &sc.cfg.TableStore, sc.logger)
	sc.reports = services.NewReportService(&sc.cfg.Dashboard, sc.logger)
	sc.logs = services.NewServiceLogService(sc.data, sc.logger)
	sc.reference = services.NewReferenceService(sc.data, sc.logger)
	sc.initialized = true

	sc.logger.Info(ctx, "Service container initialized", map[string]interface{}{
		"store_url": sc.cfg.TableStore.URL,
		"page_size": sc.cfg.TableStore.PageSizeOrDefault(),
	})
	return nil
}

// Shutdown releases container resources. The store client is stateless, so
// there is nothing to close beyond logging the event.
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.initialized = false
	sc.logger.Info(ctx, "Service container shut down", nil)
	return nil
}

func (sc *ServiceContainer) checkInitialized() error {
	if !sc.initialized {
		return contextutils.NewAppError(contextutils.ErrorCodeInternalError,
			contextutils.SeverityError, "service container not initialized", "")
	}
	return nil
}

// GetDataService returns the cached table access service.
func (sc *ServiceContainer) GetDataService() (*services.DataService, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if err := sc.checkInitialized(); err != nil {
		return nil, err
	}
	return sc.data, nil
}

// GetReportService returns the dashboard aggregation service.
func (sc *ServiceContainer) GetReportService() (*services.ReportService, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if err := sc.checkInitialized(); err != nil {
		return nil, err
	}
	return sc.reports, nil
}

// GetServiceLogService returns the submission and approval service.
func (sc *ServiceContainer) GetServiceLogService() (*services.ServiceLogService, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if err := sc.checkInitialized(); err != nil {
		return nil, err
	}
	return sc.logs, nil
}

// GetReferenceService returns the reference-data lookup service.
func (sc *ServiceContainer) GetReferenceService() (*services.ReferenceService, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if err := sc.checkInitialized(); err != nil {
		return nil, err
	}
	return sc.reference, nil
}

// GetConfig returns the application configuration.
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the application logger.
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

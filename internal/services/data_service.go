// Package services contains the domain logic: cached table access,
// aggregation views for the dashboard, submission and approval flows, and
// reference-data lookups.
package services

import (
	"context"

	"servicelog/internal/config"
	"servicelog/internal/models"
	"servicelog/internal/observability"
	"servicelog/internal/tablestore"
)

// DataService serves full-table snapshots through the versioned cache. Every
// read-side consumer (dashboard views, unsolved lists, reference lookups)
// goes through here so they all see the same generation of data.
type DataService struct {
	client   *tablestore.Client
	cache    *tablestore.TableCache
	pageSize int
	logger   *observability.Logger
}

// NewDataService creates a DataService on top of a store client.
func NewDataService(client *tablestore.Client, cfg *config.TableStoreConfig, logger *observability.Logger) *DataService {
	return &DataService{
		client:   client,
		cache:    tablestore.NewTableCache(),
		pageSize: cfg.PageSizeOrDefault(),
		logger:   logger,
	}
}

// Client exposes the underlying store client for write paths.
func (s *DataService) Client() *tablestore.Client {
	return s.client
}

// CacheVersion returns the current cache generation, surfaced on the refresh
// endpoint so callers can confirm a bump happened.
func (s *DataService) CacheVersion() uint64 {
	return s.cache.Version()
}

// Refresh invalidates every cached table. Called after writes and on manual
// dashboard refresh.
func (s *DataService) Refresh(ctx context.Context) {
	s.cache.Invalidate()
	s.logger.Info(ctx, "Table cache invalidated", map[string]interface{}{"version": s.cache.Version()})
}

// ServiceLogs returns the live Service_Log table.
func (s *DataService) ServiceLogs(ctx context.Context) ([]models.ServiceCall, error) {
	return cachedTable[models.ServiceCall](ctx, s, models.TableServiceLog)
}

// PendingLogs returns the Service_Log_Pending staging table.
func (s *DataService) PendingLogs(ctx context.Context) ([]models.PendingServiceCall, error) {
	return cachedTable[models.PendingServiceCall](ctx, s, models.TableServiceLogPending)
}

// Customers returns the Customers reference table.
func (s *DataService) Customers(ctx context.Context) ([]models.Customer, error) {
	return cachedTable[models.Customer](ctx, s, models.TableCustomers)
}

// Instruments returns the Instruments reference table.
func (s *DataService) Instruments(ctx context.Context) ([]models.Instrument, error) {
	return cachedTable[models.Instrument](ctx, s, models.TableInstruments)
}

// Technicians returns the Technicians reference table.
func (s *DataService) Technicians(ctx context.Context) ([]models.Technician, error) {
	return cachedTable[models.Technician](ctx, s, models.TableTechnicians)
}

func cachedTable[T any](ctx context.Context, s *DataService, table string) ([]T, error) {
	rows, err := s.cache.GetOrLoad(ctx, table, func(ctx context.Context) (interface{}, error) {
		return tablestore.FetchAll[T](ctx, s.client, table, "*", s.pageSize)
	})
	if err != nil {
		return nil, err
	}
	typed, _ := rows.([]T)
	return typed, nil
}

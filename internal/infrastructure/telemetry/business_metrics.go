package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the salon financial backend.
// It tracks ledger entry creation, payment activity, and package health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	entryCreatedTotal    *Counter
	entryAmountTotal     *Counter
	paymentTotal         *Counter
	sessionConsumedTotal *Counter

	// Gauge metrics (point-in-time values)
	packageActivePurchases   *Gauge
	packageOutstandingAmount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data providers for periodic collection
	packageProvider PackageMetricsProvider
}

// PackageMetricsProvider provides package data for periodic metrics collection.
// This interface allows the telemetry layer to query package state without
// depending on the packs domain directly.
type PackageMetricsProvider interface {
	// GetActivePurchaseCount returns the number of active package purchases for a tenant
	GetActivePurchaseCount(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// GetOutstandingAmount returns the total unpaid package amount for a tenant
	GetOutstandingAmount(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	PackageProvider PackageMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, errors.New("business metrics meter cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		packageProvider: cfg.PackageProvider,
	}

	// Initialize counter metrics
	var err error

	// Ledger entry metrics
	bm.entryCreatedTotal, err = NewCounter(
		cfg.Meter,
		"salon_entry_created_total",
		"Total number of ledger entries created",
		"{entries}",
	)
	if err != nil {
		return nil, err
	}

	bm.entryAmountTotal, err = NewCounter(
		cfg.Meter,
		"salon_entry_amount_total",
		"Total ledger entry amount in cents (centavos)",
		"{centavos}",
	)
	if err != nil {
		return nil, err
	}

	// Payment metrics
	bm.paymentTotal, err = NewCounter(
		cfg.Meter,
		"salon_payment_total",
		"Total number of payment transactions",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	// Package session metrics
	bm.sessionConsumedTotal, err = NewCounter(
		cfg.Meter,
		"salon_session_consumed_total",
		"Total number of package sessions consumed",
		"{sessions}",
	)
	if err != nil {
		return nil, err
	}

	// Package gauge metrics
	bm.packageActivePurchases, err = NewGauge(
		cfg.Meter,
		"salon_package_active_purchases",
		"Current number of active package purchases",
		"{purchases}",
	)
	if err != nil {
		return nil, err
	}

	bm.packageOutstandingAmount, err = NewGauge(
		cfg.Meter,
		"salon_package_outstanding_amount",
		"Total unpaid package amount in cents (centavos)",
		"{centavos}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordEntryCreated records a ledger entry creation event.
// This should be called from the application layer when an entry is created.
func (bm *BusinessMetrics) RecordEntryCreated(ctx context.Context, tenantID uuid.UUID, entryType string) {
	bm.entryCreatedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrEntryType.String(entryType),
	)
}

// RecordEntryAmount records the entry amount.
// Amount should be in the smallest currency unit (centavos).
func (bm *BusinessMetrics) RecordEntryAmount(ctx context.Context, tenantID uuid.UUID, entryType string, amountCentavos int64) {
	bm.entryAmountTotal.Add(ctx, amountCentavos,
		AttrTenantID.String(tenantID.String()),
		AttrEntryType.String(entryType),
	)
}

// RecordEntryWithAmount is a convenience method that records both entry count and amount.
func (bm *BusinessMetrics) RecordEntryWithAmount(ctx context.Context, tenantID uuid.UUID, entryType string, amount decimal.Decimal) {
	bm.RecordEntryCreated(ctx, tenantID, entryType)

	// Convert to centavos (multiply by 100)
	amountCentavos := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordEntryAmount(ctx, tenantID, entryType, amountCentavos)
}

// PaymentStatus represents the outcome of a payment for metrics labeling.
type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// RecordPayment records a payment transaction.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, paymentMethod string, status PaymentStatus) {
	bm.paymentTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPaymentMethod.String(paymentMethod),
		AttrPaymentStatus.String(string(status)),
	)
}

// RecordSessionConsumed records a package session consumption.
func (bm *BusinessMetrics) RecordSessionConsumed(ctx context.Context, tenantID, purchaseID uuid.UUID) {
	bm.sessionConsumedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPurchaseID.String(purchaseID.String()),
	)
}

// RecordActivePurchases records the current number of active package purchases.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordActivePurchases(ctx context.Context, tenantID uuid.UUID, count int64) {
	bm.packageActivePurchases.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
	)
}

// RecordOutstandingAmount records the total unpaid package amount in centavos.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOutstandingAmount(ctx context.Context, tenantID uuid.UUID, amountCentavos int64) {
	bm.packageOutstandingAmount.Record(ctx, amountCentavos,
		AttrTenantID.String(tenantID.String()),
	)
}

// TenantProvider provides tenant IDs for periodic metrics collection.
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects package metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, tenantProvider, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectPackageMetrics(ctx, tenantProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectPackageMetrics(ctx, tenantProvider)
		}
	}
}

// collectPackageMetrics collects package gauge metrics for all tenants.
func (bm *BusinessMetrics) collectPackageMetrics(ctx context.Context, tenantProvider TenantProvider) {
	if bm.packageProvider == nil {
		bm.logger.Debug("No package provider configured, skipping package metrics collection")
		return
	}

	tenantIDs, err := tenantProvider.GetActiveTenantIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		bm.collectTenantPackageMetrics(ctx, tenantID)
	}
}

// collectTenantPackageMetrics collects package metrics for a single tenant.
func (bm *BusinessMetrics) collectTenantPackageMetrics(ctx context.Context, tenantID uuid.UUID) {
	activeCount, err := bm.packageProvider.GetActivePurchaseCount(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get active purchase count for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordActivePurchases(ctx, tenantID, activeCount)
	}

	outstanding, err := bm.packageProvider.GetOutstandingAmount(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get outstanding amount for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordOutstandingAmount(ctx, tenantID, outstanding.Mul(decimal.NewFromInt(100)).IntPart())
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

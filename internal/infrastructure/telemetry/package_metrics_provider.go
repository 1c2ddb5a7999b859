// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPackageMetricsProvider implements PackageMetricsProvider using GORM.
// It queries the package_purchases table directly for aggregated metrics.
type GormPackageMetricsProvider struct {
	db *gorm.DB
}

// NewGormPackageMetricsProvider creates a new GormPackageMetricsProvider.
func NewGormPackageMetricsProvider(db *gorm.DB) *GormPackageMetricsProvider {
	return &GormPackageMetricsProvider{db: db}
}

// GetActivePurchaseCount returns the number of active package purchases for a tenant.
func (p *GormPackageMetricsProvider) GetActivePurchaseCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("package_purchases").
		Where("tenant_id = ? AND status = ?", tenantID, "ATIVO").
		Count(&count).Error

	return count, err
}

// GetOutstandingAmount returns the total unpaid package amount for a tenant.
// Only active purchases carry collectible debt.
func (p *GormPackageMetricsProvider) GetOutstandingAmount(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := p.db.WithContext(ctx).
		Table("package_purchases").
		Select("COALESCE(SUM(outstanding_amount), 0)").
		Where("tenant_id = ? AND status = ?", tenantID, "ATIVO").
		Scan(&total).Error

	if err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

// GormTenantProvider implements TenantProvider using GORM.
// Tenant records live in the platform identity service, so active tenants
// are derived from the tenants that have ledger activity in this subsystem.
type GormTenantProvider struct {
	db *gorm.DB
}

// NewGormTenantProvider creates a new GormTenantProvider.
func NewGormTenantProvider(db *gorm.DB) *GormTenantProvider {
	return &GormTenantProvider{db: db}
}

// GetActiveTenantIDs returns the distinct tenant IDs with ledger entries.
func (p *GormTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("ledger_entries").
		Distinct("tenant_id").
		Find(&ids).Error

	return ids, err
}

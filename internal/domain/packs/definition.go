package packs

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/studiobeleza/backend/internal/domain/shared/valueobject"
)

// PackageDefinition is the catalog entry a client buys: a bundle of sessions
// of a service sold at a fixed price with a validity window.
type PackageDefinition struct {
	shared.TenantAggregateRoot
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Sessions     int             `json:"sessions"`
	TotalValue   decimal.Decimal `json:"total_value"`
	ValidityDays int             `json:"validity_days"`
	Active       bool            `json:"active"`
}

// NewPackageDefinition creates a new active package definition
func NewPackageDefinition(
	tenantID uuid.UUID,
	name string,
	description string,
	sessions int,
	totalValue valueobject.Money,
	validityDays int,
) (*PackageDefinition, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Package name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Package name cannot exceed 100 characters")
	}
	if sessions <= 0 {
		return nil, shared.NewDomainError("INVALID_SESSIONS", "Package must contain at least one session")
	}
	if !totalValue.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Package total value must be positive")
	}
	if validityDays < 0 {
		return nil, shared.NewDomainError("INVALID_VALIDITY", "Validity days cannot be negative")
	}

	return &PackageDefinition{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Description:         description,
		Sessions:            sessions,
		TotalValue:          totalValue.Amount(),
		ValidityDays:        validityDays,
		Active:              true,
	}, nil
}

// Update changes the catalog data. Existing purchases keep the terms they
// were sold under; only future sales see the new values.
func (d *PackageDefinition) Update(name, description string, sessions int, totalValue valueobject.Money, validityDays int) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Package name cannot be empty")
	}
	if sessions <= 0 {
		return shared.NewDomainError("INVALID_SESSIONS", "Package must contain at least one session")
	}
	if !totalValue.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Package total value must be positive")
	}
	if validityDays < 0 {
		return shared.NewDomainError("INVALID_VALIDITY", "Validity days cannot be negative")
	}

	d.Name = name
	d.Description = description
	d.Sessions = sessions
	d.TotalValue = totalValue.Amount()
	d.ValidityDays = validityDays
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	return nil
}

// Deactivate removes the package from sale without touching existing purchases
func (d *PackageDefinition) Deactivate() {
	d.Active = false
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
}

// Activate puts the package back on sale
func (d *PackageDefinition) Activate() {
	d.Active = true
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
}

// SessionValue returns the per-session value used when consuming sessions
// through appointments (total / sessions, rounded to cents)
func (d *PackageDefinition) SessionValue() decimal.Decimal {
	if d.Sessions <= 0 {
		return decimal.Zero
	}
	return d.TotalValue.Div(decimal.NewFromInt(int64(d.Sessions))).Round(2)
}

// GetTotalValueMoney returns the total value as Money
func (d *PackageDefinition) GetTotalValueMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(d.TotalValue)
}

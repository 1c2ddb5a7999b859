// Package models holds the GORM persistence models backing the salon
// tables. They exist so the domain aggregates stay free of ORM tags; the
// repositories map between the two.
//
// Each bounded context has its own file: ledger.go (LedgerEntry, Payment),
// packs.go (PackageDefinition, PackagePurchase), cashier.go (CashSession),
// scheduling.go (Appointment) and outbox.go for event delivery. base.go
// carries the shared tenant and versioning columns.
package models

package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// LedgerEntrySortFields contains allowed sort fields for ledger entries
var LedgerEntrySortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"entry_date":   true,
	"type":         true,
	"category":     true,
	"status":       true,
	"description":  true,
	"gross_amount": true,
	"final_amount": true,
	"paid_at":      true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"paid_at":    true,
	"amount":     true,
	"method":     true,
	"status":     true,
}

// PackageDefinitionSortFields contains allowed sort fields for package definitions
var PackageDefinitionSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"name":          true,
	"sessions":      true,
	"total_value":   true,
	"validity_days": true,
	"active":        true,
}

// PackagePurchaseSortFields contains allowed sort fields for package purchases
var PackagePurchaseSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"purchased_at":       true,
	"expires_at":         true,
	"package_name":       true,
	"status":             true,
	"sessions_remaining": true,
	"total_amount":       true,
	"paid_amount":        true,
	"outstanding_amount": true,
}

// CashSessionSortFields contains allowed sort fields for cash sessions
var CashSessionSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"business_day": true,
	"status":       true,
	"opened_at":    true,
	"closed_at":    true,
	"difference":   true,
}

// AppointmentSortFields contains allowed sort fields for appointments
var AppointmentSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"scheduled_at":   true,
	"service_name":   true,
	"status":         true,
	"payment_status": true,
	"charged_amount": true,
	"completed_at":   true,
}

package dto

import (
	"net/http"
	"strings"
)

// Wire-level error codes, format ERR_<CATEGORY>_<DESCRIPTION>. The domain
// raises shorter codes; NormalizeErrorCode translates them before they reach
// a client.

// General and input error codes
const (
	ErrCodeInternal     = "ERR_INTERNAL"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
)

// Auth error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes, all answered with 422
const (
	// ErrCodeInvalidState covers operations invalid for the current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is the generic business rule violation
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeAlreadyPaid fires when a settled entry receives another payment
	ErrCodeAlreadyPaid = "ERR_ALREADY_PAID"
	// ErrCodeAlreadyReversed fires when a reversed payment is reversed again
	ErrCodeAlreadyReversed = "ERR_ALREADY_REVERSED"
	// ErrCodeExceedsOutstanding fires when a payment exceeds the open balance
	ErrCodeExceedsOutstanding = "ERR_EXCEEDS_OUTSTANDING"
	// ErrCodePackageExpired fires when a purchase is past its validity window
	ErrCodePackageExpired = "ERR_PACKAGE_EXPIRED"
	// ErrCodePackageInactive fires when selling a deactivated package
	ErrCodePackageInactive = "ERR_PACKAGE_INACTIVE"
	// ErrCodeNoSessionsRemaining fires when a purchase has no sessions left
	ErrCodeNoSessionsRemaining = "ERR_NO_SESSIONS_REMAINING"
	// ErrCodePurchaseNotActive fires when operating on a non-active purchase
	ErrCodePurchaseNotActive = "ERR_PURCHASE_NOT_ACTIVE"
	// ErrCodePurchaseClientMismatch fires when a purchase belongs to another client
	ErrCodePurchaseClientMismatch = "ERR_PURCHASE_CLIENT_MISMATCH"
	// ErrCodePurchaseHasUsage fires when deleting a purchase with consumed sessions
	ErrCodePurchaseHasUsage = "ERR_PURCHASE_HAS_USAGE"
	// ErrCodePurchaseHasPayments fires when deleting a purchase with payments
	ErrCodePurchaseHasPayments = "ERR_PURCHASE_HAS_PAYMENTS"
	// ErrCodeSessionNotOpen fires when the cash register is not open
	ErrCodeSessionNotOpen = "ERR_SESSION_NOT_OPEN"
	// ErrCodeSessionAlreadyClosed fires when closing an already closed register
	ErrCodeSessionAlreadyClosed = "ERR_SESSION_ALREADY_CLOSED"
)

// ErrCodeDuplicateRequest fires when an idempotency key is replayed.
const ErrCodeDuplicateRequest = "ERR_DUPLICATE_REQUEST"

var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,

	ErrCodeInvalidState:           http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:           http.StatusUnprocessableEntity,
	ErrCodeAlreadyPaid:            http.StatusUnprocessableEntity,
	ErrCodeAlreadyReversed:        http.StatusUnprocessableEntity,
	ErrCodeExceedsOutstanding:     http.StatusUnprocessableEntity,
	ErrCodePackageExpired:         http.StatusUnprocessableEntity,
	ErrCodePackageInactive:        http.StatusUnprocessableEntity,
	ErrCodeNoSessionsRemaining:    http.StatusUnprocessableEntity,
	ErrCodePurchaseNotActive:      http.StatusUnprocessableEntity,
	ErrCodePurchaseClientMismatch: http.StatusUnprocessableEntity,
	ErrCodePurchaseHasUsage:       http.StatusUnprocessableEntity,
	ErrCodePurchaseHasPayments:    http.StatusUnprocessableEntity,
	ErrCodeSessionNotOpen:         http.StatusUnprocessableEntity,
	ErrCodeSessionAlreadyClosed:   http.StatusUnprocessableEntity,
}

// GetHTTPStatus maps an error code to its HTTP status. Unmapped INVALID_*
// codes from domain validation answer 400; anything else unknown answers 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// domainErrorCodes translates the codes DomainError carries into the wire
// format.
var domainErrorCodes = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ENTRY_NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INTERNAL_ERROR":       ErrCodeInternal,

	"OPTIMISTIC_LOCK_ERROR":    ErrCodeConcurrencyConflict,
	"ALREADY_PAID":             ErrCodeAlreadyPaid,
	"ALREADY_REVERSED":         ErrCodeAlreadyReversed,
	"EXCEEDS_OUTSTANDING":      ErrCodeExceedsOutstanding,
	"CURRENCY_MISMATCH":        ErrCodeBusinessRule,
	"DUPLICATE_REQUEST":        ErrCodeDuplicateRequest,
	"PACKAGE_EXPIRED":          ErrCodePackageExpired,
	"PACKAGE_INACTIVE":         ErrCodePackageInactive,
	"NO_SESSIONS_REMAINING":    ErrCodeNoSessionsRemaining,
	"PURCHASE_NOT_ACTIVE":      ErrCodePurchaseNotActive,
	"PURCHASE_CLIENT_MISMATCH": ErrCodePurchaseClientMismatch,
	"PURCHASE_HAS_USAGE":       ErrCodePurchaseHasUsage,
	"PURCHASE_HAS_PAYMENTS":    ErrCodePurchaseHasPayments,
	"SESSION_NOT_OPEN":         ErrCodeSessionNotOpen,
	"SESSION_ALREADY_CLOSED":   ErrCodeSessionAlreadyClosed,
}

// NormalizeErrorCode converts a domain error code to the wire format. Codes
// already in the wire format, or unknown ones, pass through unchanged.
func NormalizeErrorCode(code string) string {
	if wireCode, ok := domainErrorCodes[code]; ok {
		return wireCode
	}
	return code
}

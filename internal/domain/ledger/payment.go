package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/studiobeleza/backend/internal/domain/shared/valueobject"
)

// PaymentStatus represents the lifecycle of a single payment
type PaymentStatus string

const (
	PaymentStatusAtivo     PaymentStatus = "ATIVO"
	PaymentStatusEstornado PaymentStatus = "ESTORNADO"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusAtivo || s == PaymentStatusEstornado
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// PaymentDetails carries the method-specific metadata of a payment, stored as JSONB.
// Only the fields relevant to the payment's method are populated.
type PaymentDetails struct {
	MBWayPhone          string `json:"mbway_phone,omitempty"`
	MultibancoEntity    string `json:"multibanco_entity,omitempty"`
	MultibancoReference string `json:"multibanco_reference,omitempty"`
	CardBrand           string `json:"card_brand,omitempty"`
	CardLast4           string `json:"card_last4,omitempty"`
	TransferIBAN        string `json:"transfer_iban,omitempty"`
}

// Value implements driver.Valuer interface for GORM to store as JSONB
func (d PaymentDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (d *PaymentDetails) Scan(value interface{}) error {
	if value == nil {
		*d = PaymentDetails{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentDetails: unsupported type")
	}

	if len(bytes) == 0 {
		*d = PaymentDetails{}
		return nil
	}

	return json.Unmarshal(bytes, d)
}

// validate checks that the details required by the method are present
func (d PaymentDetails) validate(method PaymentMethod) error {
	switch method {
	case MethodMBWay:
		if d.MBWayPhone == "" {
			return shared.NewDomainError("INVALID_PAYMENT_DETAILS", "MBWay payments require a phone number")
		}
	case MethodMultibanco:
		if d.MultibancoEntity == "" || d.MultibancoReference == "" {
			return shared.NewDomainError("INVALID_PAYMENT_DETAILS", "Multibanco payments require entity and reference")
		}
	case MethodCartaoDebito, MethodCartaoCredito:
		if d.CardBrand == "" || d.CardLast4 == "" {
			return shared.NewDomainError("INVALID_PAYMENT_DETAILS", "Card payments require brand and last4")
		}
		if len(d.CardLast4) != 4 {
			return shared.NewDomainError("INVALID_PAYMENT_DETAILS", "Card last4 must have exactly 4 digits")
		}
	case MethodTransferencia:
		if d.TransferIBAN == "" {
			return shared.NewDomainError("INVALID_PAYMENT_DETAILS", "Bank transfers require an IBAN")
		}
	}
	return nil
}

// Payment represents one money movement against a ledger entry.
// Reversing a payment keeps the row for audit; only ATIVO payments count
// towards the entry's cumulative paid amount.
type Payment struct {
	shared.TenantAggregateRoot
	EntryID        uuid.UUID       `json:"entry_id"`
	Amount         decimal.Decimal `json:"amount"`
	Method         PaymentMethod   `json:"method"`
	Details        PaymentDetails  `json:"details"`
	Status         PaymentStatus   `json:"status"`
	PaidAt         time.Time       `json:"paid_at"`
	Notes          string          `json:"notes"`
	ReversedAt     *time.Time      `json:"reversed_at"`
	ReversalReason string          `json:"reversal_reason"`
}

// NewPayment creates a new active payment against a ledger entry
func NewPayment(
	tenantID uuid.UUID,
	entryID uuid.UUID,
	amount valueobject.Money,
	method PaymentMethod,
	details PaymentDetails,
	paidAt time.Time,
) (*Payment, error) {
	if entryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTRY", "Payment must reference a ledger entry")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Payment method %s is not valid", method))
	}
	if err := details.validate(method); err != nil {
		return nil, err
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	p := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EntryID:             entryID,
		Amount:              amount.Amount(),
		Method:              method,
		Details:             details,
		Status:              PaymentStatusAtivo,
		PaidAt:              paidAt,
	}

	p.AddDomainEvent(NewPaymentRegisteredEvent(p))

	return p, nil
}

// WithNotes sets free-form notes on the payment
func (p *Payment) WithNotes(notes string) *Payment {
	p.Notes = notes
	return p
}

// Reverse voids the payment. The application layer recomputes the owning
// entry's status from the remaining active payments afterwards.
func (p *Payment) Reverse(reason string) error {
	if p.Status == PaymentStatusEstornado {
		return shared.NewDomainError("ALREADY_REVERSED", "Payment has already been reversed")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Reversal reason is required")
	}

	now := time.Now()
	p.Status = PaymentStatusEstornado
	p.ReversedAt = &now
	p.ReversalReason = reason
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentReversedEvent(p))

	return nil
}

// IsActive returns true if the payment still counts towards the entry total
func (p *Payment) IsActive() bool {
	return p.Status == PaymentStatusAtivo
}

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(p.Amount)
}

// SumActive returns the cumulative amount of the active payments in the slice
func SumActive(payments []Payment) valueobject.Money {
	total := decimal.Zero
	for i := range payments {
		if payments[i].IsActive() {
			total = total.Add(payments[i].Amount)
		}
	}
	return valueobject.NewMoneyEUR(total)
}

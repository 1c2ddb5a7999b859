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

// EntryType distinguishes revenue entries from expense entries
type EntryType string

const (
	EntryTypeReceita EntryType = "RECEITA"
	EntryTypeDespesa EntryType = "DESPESA"
)

// IsValid checks if the entry type is valid
func (t EntryType) IsValid() bool {
	return t == EntryTypeReceita || t == EntryTypeDespesa
}

// String returns the string representation of EntryType
func (t EntryType) String() string {
	return string(t)
}

// EntryCategory classifies an entry within its type
type EntryCategory string

const (
	// Revenue categories
	CategoryServico       EntryCategory = "SERVICO"
	CategoryPacote        EntryCategory = "PACOTE"
	CategoryProduto       EntryCategory = "PRODUTO"
	CategorySuprimento    EntryCategory = "SUPRIMENTO"
	CategoryAberturaCaixa EntryCategory = "ABERTURA_CAIXA"
	CategoryOutraReceita  EntryCategory = "OUTRA_RECEITA"

	// Expense categories
	CategoryFornecedor      EntryCategory = "FORNECEDOR"
	CategorySalario         EntryCategory = "SALARIO"
	CategoryComissao        EntryCategory = "COMISSAO"
	CategoryAluguel         EntryCategory = "ALUGUEL"
	CategorySangria         EntryCategory = "SANGRIA"
	CategoryFechamentoCaixa EntryCategory = "FECHAMENTO_CAIXA"
	CategoryOutraDespesa    EntryCategory = "OUTRA_DESPESA"
)

// ValidFor checks if the category belongs to the given entry type
func (c EntryCategory) ValidFor(t EntryType) bool {
	switch t {
	case EntryTypeReceita:
		switch c {
		case CategoryServico, CategoryPacote, CategoryProduto,
			CategorySuprimento, CategoryAberturaCaixa, CategoryOutraReceita:
			return true
		}
	case EntryTypeDespesa:
		switch c {
		case CategoryFornecedor, CategorySalario, CategoryComissao,
			CategoryAluguel, CategorySangria, CategoryFechamentoCaixa, CategoryOutraDespesa:
			return true
		}
	}
	return false
}

// String returns the string representation of EntryCategory
func (c EntryCategory) String() string {
	return string(c)
}

// EntryStatus represents the payment lifecycle of a ledger entry
type EntryStatus string

const (
	EntryStatusPendente  EntryStatus = "PENDENTE"  // Unpaid, outstanding balance > 0
	EntryStatusParcial   EntryStatus = "PARCIAL"   // Partially paid
	EntryStatusPago      EntryStatus = "PAGO"      // Fully paid
	EntryStatusCancelado EntryStatus = "CANCELADO" // Cancelled before full payment
	EntryStatusEstornado EntryStatus = "ESTORNADO" // Reversed after being fully paid
)

// IsValid checks if the status is a valid EntryStatus
func (s EntryStatus) IsValid() bool {
	switch s {
	case EntryStatusPendente, EntryStatusParcial, EntryStatusPago,
		EntryStatusCancelado, EntryStatusEstornado:
		return true
	}
	return false
}

// String returns the string representation of EntryStatus
func (s EntryStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the entry can no longer receive payments or be cancelled
func (s EntryStatus) IsTerminal() bool {
	return s == EntryStatusCancelado || s == EntryStatusEstornado
}

// CanRegisterPayment returns true if payments can be registered in this status
func (s EntryStatus) CanRegisterPayment() bool {
	return s == EntryStatusPendente || s == EntryStatusParcial
}

// PaymentMethod represents how money changed hands
type PaymentMethod string

const (
	MethodDinheiro      PaymentMethod = "DINHEIRO"
	MethodMBWay         PaymentMethod = "MBWAY"
	MethodMultibanco    PaymentMethod = "MULTIBANCO"
	MethodCartaoDebito  PaymentMethod = "CARTAO_DEBITO"
	MethodCartaoCredito PaymentMethod = "CARTAO_CREDITO"
	MethodTransferencia PaymentMethod = "TRANSFERENCIA"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodDinheiro, MethodMBWay, MethodMultibanco,
		MethodCartaoDebito, MethodCartaoCredito, MethodTransferencia:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// IsCash returns true for physical cash, the only method that moves the register drawer
func (m PaymentMethod) IsCash() bool {
	return m == MethodDinheiro
}

// Commission is the staff commission attached to a revenue entry
// It is a value object within the LedgerEntry aggregate, stored as JSONB
type Commission struct {
	StaffID uuid.UUID       `json:"staff_id"`
	Percent decimal.Decimal `json:"percent"`
	Amount  decimal.Decimal `json:"amount"`
	Paid    bool            `json:"paid"`
}

// Value implements driver.Valuer interface for GORM to store as JSONB
func (c *Commission) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (c *Commission) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Commission: unsupported type")
	}

	if len(bytes) == 0 {
		return nil
	}

	return json.Unmarshal(bytes, c)
}

// LedgerEntry represents a single financial fact (revenue or expense) aggregate root.
// The amount actually collected is derived from the active Payment aggregates that
// reference the entry; the entry itself never stores a running paid total.
type LedgerEntry struct {
	shared.TenantAggregateRoot
	Type        EntryType     `json:"type"`
	Category    EntryCategory `json:"category"`
	Description string        `json:"description"`
	Notes       string        `json:"notes"`

	GrossAmount decimal.Decimal `json:"gross_amount"`
	Discount    decimal.Decimal `json:"discount"`
	FinalAmount decimal.Decimal `json:"final_amount"` // gross - discount, recomputed on every mutation

	Status        EntryStatus    `json:"status"`
	PaymentMethod *PaymentMethod `json:"payment_method"` // last method used; nil until first payment
	EntryDate     time.Time      `json:"entry_date"`
	PaidAt        *time.Time     `json:"paid_at"`

	// Optional references to the documents that originated the entry
	AppointmentID     *uuid.UUID `json:"appointment_id"`
	ClientID          *uuid.UUID `json:"client_id"`
	PackagePurchaseID *uuid.UUID `json:"package_purchase_id"`
	StaffID           *uuid.UUID `json:"staff_id"`

	IsInstallment    bool `json:"is_installment"`
	InstallmentCount int  `json:"installment_count"`
	InstallmentsPaid int  `json:"installments_paid"`

	Commission *Commission `json:"commission"`

	CancelledAt  *time.Time `json:"cancelled_at"`
	CancelReason string     `json:"cancel_reason"`
}

// NewLedgerEntry creates a new ledger entry in PENDENTE status
func NewLedgerEntry(
	tenantID uuid.UUID,
	entryType EntryType,
	category EntryCategory,
	description string,
	gross valueobject.Money,
	discount valueobject.Money,
	entryDate time.Time,
) (*LedgerEntry, error) {
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTRY_TYPE", "Entry type must be RECEITA or DESPESA")
	}
	if !category.ValidFor(entryType) {
		return nil, shared.NewDomainError("INVALID_CATEGORY", fmt.Sprintf("Category %s is not valid for type %s", category, entryType))
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if len(description) > 255 {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 255 characters")
	}
	if !gross.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Gross amount must be positive")
	}
	if discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if gross.Currency() != discount.Currency() {
		return nil, shared.NewDomainError("CURRENCY_MISMATCH", "Gross amount and discount must use the same currency")
	}
	if discount.Amount().GreaterThan(gross.Amount()) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed gross amount")
	}
	if entryDate.IsZero() {
		entryDate = time.Now()
	}

	e := &LedgerEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Type:                entryType,
		Category:            category,
		Description:         description,
		GrossAmount:         gross.Amount(),
		Discount:            discount.Amount(),
		FinalAmount:         gross.Amount().Sub(discount.Amount()),
		Status:              EntryStatusPendente,
		EntryDate:           entryDate,
	}

	e.AddDomainEvent(NewLedgerEntryCreatedEvent(e))

	return e, nil
}

// NewRegisterClosingEntry records the end-of-day drawer count. An empty drawer
// is a legitimate close, so unlike regular entries the amount may be zero; the
// entry is born settled since the cash has already been counted.
func NewRegisterClosingEntry(tenantID uuid.UUID, description string, counted valueobject.Money, now time.Time) (*LedgerEntry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if counted.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Counted amount cannot be negative")
	}
	if now.IsZero() {
		now = time.Now()
	}

	method := MethodDinheiro
	paidAt := now
	e := &LedgerEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Type:                EntryTypeDespesa,
		Category:            CategoryFechamentoCaixa,
		Description:         description,
		GrossAmount:         counted.Amount(),
		Discount:            decimal.Zero,
		FinalAmount:         counted.Amount(),
		Status:              EntryStatusPago,
		PaymentMethod:       &method,
		PaidAt:              &paidAt,
		EntryDate:           now,
	}

	e.AddDomainEvent(NewLedgerEntryCreatedEvent(e))

	return e, nil
}

// WithClient links the entry to a client
func (e *LedgerEntry) WithClient(clientID uuid.UUID) *LedgerEntry {
	if clientID != uuid.Nil {
		e.ClientID = &clientID
	}
	return e
}

// WithAppointment links the entry to the appointment that originated it
func (e *LedgerEntry) WithAppointment(appointmentID uuid.UUID) *LedgerEntry {
	if appointmentID != uuid.Nil {
		e.AppointmentID = &appointmentID
	}
	return e
}

// WithPackagePurchase links the entry to a package purchase
func (e *LedgerEntry) WithPackagePurchase(purchaseID uuid.UUID) *LedgerEntry {
	if purchaseID != uuid.Nil {
		e.PackagePurchaseID = &purchaseID
	}
	return e
}

// WithStaff links the entry to the staff member who performed the service
func (e *LedgerEntry) WithStaff(staffID uuid.UUID) *LedgerEntry {
	if staffID != uuid.Nil {
		e.StaffID = &staffID
	}
	return e
}

// WithNotes sets free-form notes on the entry
func (e *LedgerEntry) WithNotes(notes string) *LedgerEntry {
	e.Notes = notes
	return e
}

// SetInstallmentPlan marks the entry as payable in installments
func (e *LedgerEntry) SetInstallmentPlan(count int) error {
	if count < 2 {
		return shared.NewDomainError("INVALID_INSTALLMENTS", "Installment count must be at least 2")
	}
	e.IsInstallment = true
	e.InstallmentCount = count
	e.InstallmentsPaid = 0
	return nil
}

// SetCommission attaches a staff commission computed from the final amount
func (e *LedgerEntry) SetCommission(staffID uuid.UUID, percent decimal.Decimal) error {
	if staffID == uuid.Nil {
		return shared.NewDomainError("INVALID_STAFF", "Commission staff ID cannot be empty")
	}
	if percent.LessThanOrEqual(decimal.Zero) || percent.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_COMMISSION", "Commission percent must be between 0 and 100")
	}
	e.Commission = &Commission{
		StaffID: staffID,
		Percent: percent,
		Amount:  e.FinalAmount.Mul(percent).Div(decimal.NewFromInt(100)).Round(2),
	}
	return nil
}

// InstallmentAmount returns the value of a single installment,
// or the full final amount when the entry is not paid in installments
func (e *LedgerEntry) InstallmentAmount() decimal.Decimal {
	if !e.IsInstallment || e.InstallmentCount <= 0 {
		return e.FinalAmount
	}
	return e.FinalAmount.Div(decimal.NewFromInt(int64(e.InstallmentCount))).Round(2)
}

// RegisterPayment applies the cumulative paid amount to the entry.
// The caller computes cumulativePaid by summing the active payments (including the
// one being registered); the entry only decides the resulting status.
// The payment method is overwritten on each call, so the entry always reflects
// the method of the most recent payment.
func (e *LedgerEntry) RegisterPayment(cumulativePaid valueobject.Money, method PaymentMethod, paidAt time.Time) error {
	if e.Status == EntryStatusPago {
		return shared.NewDomainError("ALREADY_PAID", "Entry is already fully paid")
	}
	if e.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot register payment on entry in %s status", e.Status))
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Payment method %s is not valid", method))
	}
	if !cumulativePaid.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	e.PaymentMethod = &method

	if cumulativePaid.Amount().GreaterThanOrEqual(e.FinalAmount) {
		e.Status = EntryStatusPago
		e.PaidAt = &paidAt
		e.AddDomainEvent(NewLedgerEntryPaidEvent(e))
	} else {
		e.Status = EntryStatusParcial
		e.AddDomainEvent(NewLedgerEntryPartiallyPaidEvent(e, cumulativePaid.Amount()))
	}

	e.recalculateInstallmentsPaid(cumulativePaid.Amount())

	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// RecalculateFromPayments resets the entry's payment state from the cumulative
// active-payment total. Used after a payment reversal shrinks the total.
func (e *LedgerEntry) RecalculateFromPayments(cumulativePaid valueobject.Money) error {
	if e.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot recalculate entry in %s status", e.Status))
	}
	if cumulativePaid.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Cumulative paid amount cannot be negative")
	}

	switch {
	case cumulativePaid.IsZero():
		e.Status = EntryStatusPendente
		e.PaidAt = nil
		e.PaymentMethod = nil
	case cumulativePaid.Amount().GreaterThanOrEqual(e.FinalAmount):
		e.Status = EntryStatusPago
		if e.PaidAt == nil {
			now := time.Now()
			e.PaidAt = &now
		}
	default:
		e.Status = EntryStatusParcial
		e.PaidAt = nil
	}

	e.recalculateInstallmentsPaid(cumulativePaid.Amount())

	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

func (e *LedgerEntry) recalculateInstallmentsPaid(cumulativePaid decimal.Decimal) {
	if !e.IsInstallment || e.InstallmentCount <= 0 {
		return
	}
	per := e.InstallmentAmount()
	if per.IsZero() {
		return
	}
	paid := int(cumulativePaid.Div(per).Floor().IntPart())
	if paid > e.InstallmentCount {
		paid = e.InstallmentCount
	}
	e.InstallmentsPaid = paid
}

// Cancel voids the entry. A fully paid entry becomes ESTORNADO (money moved and
// must be compensated); anything else becomes CANCELADO.
func (e *LedgerEntry) Cancel(reason string) error {
	if e.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel entry in %s status", e.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	previousStatus := e.Status

	if e.Status == EntryStatusPago {
		e.Status = EntryStatusEstornado
	} else {
		e.Status = EntryStatusCancelado
	}

	e.CancelledAt = &now
	e.CancelReason = reason
	if e.Notes != "" {
		e.Notes += " | "
	}
	e.Notes += "Cancelamento: " + reason

	e.UpdatedAt = now
	e.IncrementVersion()

	e.AddDomainEvent(NewLedgerEntryCancelledEvent(e, previousStatus))

	return nil
}

// Helper methods

// GetGrossAmountMoney returns the gross amount as Money
func (e *LedgerEntry) GetGrossAmountMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(e.GrossAmount)
}

// GetFinalAmountMoney returns the final amount as Money
func (e *LedgerEntry) GetFinalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(e.FinalAmount)
}

// IsPaid returns true if the entry is fully paid
func (e *LedgerEntry) IsPaid() bool {
	return e.Status == EntryStatusPago
}

// IsPending returns true if the entry has no payments yet
func (e *LedgerEntry) IsPending() bool {
	return e.Status == EntryStatusPendente
}

// IsRevenue returns true for RECEITA entries
func (e *LedgerEntry) IsRevenue() bool {
	return e.Type == EntryTypeReceita
}

// IsExpense returns true for DESPESA entries
func (e *LedgerEntry) IsExpense() bool {
	return e.Type == EntryTypeDespesa
}

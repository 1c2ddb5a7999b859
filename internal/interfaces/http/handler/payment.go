package handler

import (
	"net/http"
	"time"

	ledgerapp "github.com/studiobeleza/backend/internal/application/ledger"
	"github.com/studiobeleza/backend/internal/domain/ledger"
	"github.com/studiobeleza/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment (pagamento) API endpoints
type PaymentHandler struct {
	BaseHandler
	service *ledgerapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service *ledgerapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		service: service,
	}
}

// ===================== Request/Response DTOs =====================

// PaymentDetailsRequest carries the method-specific metadata of a payment
//
//	@Description	Payment details request
type PaymentDetailsRequest struct {
	MBWayPhone          string `json:"telemovel,omitempty" example:"+351912345678"`
	MultibancoEntity    string `json:"entidade,omitempty" example:"12345"`
	MultibancoReference string `json:"referencia,omitempty" example:"123456789"`
	CardBrand           string `json:"bandeira,omitempty" example:"VISA"`
	CardLast4           string `json:"ultimosDigitos,omitempty" example:"4242"`
	TransferIBAN        string `json:"iban,omitempty" example:"PT50000201231234567890154"`
}

// PaymentResponse represents a payment in API responses
//
//	@Description	Payment response
type PaymentResponse struct {
	ID             string                `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TenantID       string                `json:"tenantId" example:"550e8400-e29b-41d4-a716-446655440001"`
	EntryID        string                `json:"transacaoId" example:"550e8400-e29b-41d4-a716-446655440002"`
	Amount         float64               `json:"valor" example:"45.00"`
	Method         string                `json:"formaPagamento" example:"MBWAY"`
	Details        PaymentDetailsRequest `json:"dados"`
	Status         string                `json:"status" example:"ATIVO"`
	PaidAt         time.Time             `json:"dataPagamento"`
	Notes          string                `json:"observacoes,omitempty"`
	ReversedAt     *time.Time            `json:"estornadoEm,omitempty"`
	ReversalReason string                `json:"motivoEstorno,omitempty"`
	CreatedAt      time.Time             `json:"criadoEm"`
	Version        int                   `json:"versao" example:"1"`
}

// RegisterPaymentRequest represents a request to register a payment
//
//	@Description	Register payment request
type RegisterPaymentRequest struct {
	Amount         float64               `json:"valor" binding:"required,gt=0" example:"45.00"`
	Method         string                `json:"formaPagamento" binding:"required" example:"MBWAY"`
	Details        PaymentDetailsRequest `json:"dados"`
	PaidAt         *time.Time            `json:"dataPagamento"`
	Notes          string                `json:"observacoes"`
	IdempotencyKey string                `json:"chaveIdempotencia"`
}

// RegisterPaymentResponse represents the outcome of registering a payment
//
//	@Description	Register payment response
type RegisterPaymentResponse struct {
	Payment        PaymentResponse     `json:"pagamento"`
	Entry          LedgerEntryResponse `json:"transacao"`
	CumulativePaid float64             `json:"totalPago" example:"45.00"`
}

// ReversePaymentRequest represents a request to reverse a payment
//
//	@Description	Reverse payment request
type ReversePaymentRequest struct {
	Reason string `json:"motivo" binding:"required" example:"Valor cobrado em duplicado"`
}

// ===================== Handlers =====================

// RegisterPayment godoc
// @ID           registerPayment
//
//	@Summary		Register payment
//	@Description	Register a payment against a ledger entry; partial amounts accumulate until the entry is fully paid
//	@Tags			pagamentos
//	@Accept			json
//	@Produce		json
//	@Param			id				path		string					true	"Entry ID"
//	@Param			Idempotency-Key	header		string					false	"Idempotency key deduplicating replays"
//	@Param			request			body		RegisterPaymentRequest	true	"Payment request"
//	@Success		201				{object}	APIResponse[RegisterPaymentResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		409				{object}	ErrorResponse
//	@Failure		422				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/transacoes/{id}/pagamento [post]
func (h *PaymentHandler) RegisterPayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid entry ID")
		return
	}

	var req RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	idempotencyKey := c.GetHeader("Idempotency-Key")
	if idempotencyKey == "" {
		idempotencyKey = req.IdempotencyKey
	}

	serviceReq := ledgerapp.RegisterPaymentRequest{
		TenantID:       tenantID,
		EntryID:        entryID,
		Amount:         toDecimal(req.Amount),
		Method:         ledger.PaymentMethod(req.Method),
		Details:        toPaymentDetails(req.Details),
		Notes:          req.Notes,
		IdempotencyKey: idempotencyKey,
	}
	if req.PaidAt != nil {
		serviceReq.PaidAt = *req.PaidAt
	}

	result, err := h.service.RegisterPayment(c.Request.Context(), serviceReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.Response{
		Success: true,
		Data: RegisterPaymentResponse{
			Payment:        toPaymentResponse(result.Payment),
			Entry:          toLedgerEntryResponse(result.Entry),
			CumulativePaid: result.CumulativePaid.InexactFloat64(),
		},
	})
}

// ListEntryPayments godoc
// @ID           listEntryPayments
//
//	@Summary		List entry payments
//	@Description	Get all payments (active and reversed) against a ledger entry
//	@Tags			pagamentos
//	@Produce		json
//	@Param			id	path		string	true	"Entry ID"
//	@Success		200	{object}	APIResponse[[]PaymentResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/transacoes/{id}/pagamentos [get]
func (h *PaymentHandler) ListEntryPayments(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid entry ID")
		return
	}

	payments, err := h.service.ListEntryPayments(c.Request.Context(), tenantID, entryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response := make([]PaymentResponse, len(payments))
	for i := range payments {
		response[i] = toPaymentResponse(&payments[i])
	}

	h.Success(c, response)
}

// ReversePayment godoc
// @ID           reversePayment
//
//	@Summary		Reverse payment
//	@Description	Reverse (estornar) a payment; the entry's paid state is recomputed from the remaining active payments
//	@Tags			pagamentos
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Payment ID"
//	@Param			request	body		ReversePaymentRequest	true	"Reversal reason"
//	@Success		200		{object}	APIResponse[RegisterPaymentResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/pagamentos/{id}/estornar [post]
func (h *PaymentHandler) ReversePayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid payment ID")
		return
	}

	var req ReversePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.service.ReversePayment(c.Request.Context(), ledgerapp.ReversePaymentRequest{
		TenantID:  tenantID,
		PaymentID: paymentID,
		Reason:    req.Reason,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, RegisterPaymentResponse{
		Payment:        toPaymentResponse(result.Payment),
		Entry:          toLedgerEntryResponse(result.Entry),
		CumulativePaid: result.CumulativePaid.InexactFloat64(),
	})
}

// ===================== Helper Functions =====================

func toPaymentDetails(req PaymentDetailsRequest) ledger.PaymentDetails {
	return ledger.PaymentDetails{
		MBWayPhone:          req.MBWayPhone,
		MultibancoEntity:    req.MultibancoEntity,
		MultibancoReference: req.MultibancoReference,
		CardBrand:           req.CardBrand,
		CardLast4:           req.CardLast4,
		TransferIBAN:        req.TransferIBAN,
	}
}

func toPaymentResponse(payment *ledger.Payment) PaymentResponse {
	return PaymentResponse{
		ID:       payment.ID.String(),
		TenantID: payment.TenantID.String(),
		EntryID:  payment.EntryID.String(),
		Amount:   payment.Amount.InexactFloat64(),
		Method:   string(payment.Method),
		Details: PaymentDetailsRequest{
			MBWayPhone:          payment.Details.MBWayPhone,
			MultibancoEntity:    payment.Details.MultibancoEntity,
			MultibancoReference: payment.Details.MultibancoReference,
			CardBrand:           payment.Details.CardBrand,
			CardLast4:           payment.Details.CardLast4,
			TransferIBAN:        payment.Details.TransferIBAN,
		},
		Status:         string(payment.Status),
		PaidAt:         payment.PaidAt,
		Notes:          payment.Notes,
		ReversedAt:     payment.ReversedAt,
		ReversalReason: payment.ReversalReason,
		CreatedAt:      payment.CreatedAt,
		Version:        payment.Version,
	}
}

// RegisterRoutes registers the payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transacoes := rg.Group("/transacoes")
	{
		transacoes.GET("/:id/pagamentos", h.ListEntryPayments)
		transacoes.POST("/:id/pagamento", h.RegisterPayment)
	}

	pagamentos := rg.Group("/pagamentos")
	{
		pagamentos.POST("/:id/estornar", h.ReversePayment)
	}
}

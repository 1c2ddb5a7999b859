package handler

import (
	"net/http"
	"strconv"
	"time"

	cashierapp "github.com/studiobeleza/backend/internal/application/cashier"
	"github.com/studiobeleza/backend/internal/domain/cashier"
	"github.com/studiobeleza/backend/internal/domain/ledger"
	"github.com/studiobeleza/backend/internal/domain/shared/valueobject"
	"github.com/studiobeleza/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CashSessionHandler handles cash register (caixa) API endpoints
type CashSessionHandler struct {
	BaseHandler
	service *cashierapp.CashSessionService
}

// NewCashSessionHandler creates a new CashSessionHandler
func NewCashSessionHandler(service *cashierapp.CashSessionService) *CashSessionHandler {
	return &CashSessionHandler{
		service: service,
	}
}

// ===================== Request/Response DTOs =====================

// CashAdjustmentResponse represents one drawer adjustment in API responses
//
//	@Description	Cash adjustment response
type CashAdjustmentResponse struct {
	ID            string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Type          string    `json:"tipo" example:"SANGRIA"`
	Amount        float64   `json:"valor" example:"100.00"`
	Reason        string    `json:"motivo" example:"Depósito bancário"`
	OccurredAt    time.Time `json:"ocorridoEm"`
	LedgerEntryID *string   `json:"transacaoId,omitempty"`
}

// CashSessionResponse represents a cash register session in API responses
//
//	@Description	Cash session response
type CashSessionResponse struct {
	ID           string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TenantID     string  `json:"tenantId" example:"550e8400-e29b-41d4-a716-446655440001"`
	BusinessDay  string  `json:"dia" example:"2026-03-15"`
	Status       string  `json:"status" example:"ABERTO"`
	OpeningFloat float64 `json:"valorInicial" example:"50.00"`

	OpenedAt    time.Time                `json:"abertoEm"`
	Adjustments []CashAdjustmentResponse `json:"ajustes"`

	ClosedAt       *time.Time `json:"fechadoEm,omitempty"`
	CountedAmount  float64    `json:"saldoContado,omitempty" example:"385.50"`
	ExpectedAmount float64    `json:"saldoEsperado,omitempty" example:"390.00"`
	Difference     float64    `json:"diferenca,omitempty" example:"-4.50"`

	OpeningEntryID *string `json:"transacaoAberturaId,omitempty"`
	ClosingEntryID *string `json:"transacaoFechamentoId,omitempty"`

	Notes string `json:"observacoes,omitempty"`

	CreatedAt time.Time `json:"criadoEm"`
	UpdatedAt time.Time `json:"atualizadoEm"`
	Version   int       `json:"versao" example:"1"`
}

// OpenDayRequest represents a request to open the register
//
//	@Description	Open register request
type OpenDayRequest struct {
	Day          string  `json:"data" example:"2026-03-15"`
	OpeningFloat float64 `json:"valorInicial" binding:"omitempty,gte=0" example:"50.00"`
	Notes        string  `json:"observacoes"`
}

// OpenDayResponse represents the outcome of opening the register
//
//	@Description	Open register response
type OpenDayResponse struct {
	Session CashSessionResponse  `json:"caixa"`
	Entry   *LedgerEntryResponse `json:"transacao,omitempty"`
}

// CashAdjustmentRequest represents a sangria or suprimento request
//
//	@Description	Cash adjustment request
type CashAdjustmentRequest struct {
	Amount float64 `json:"valor" binding:"required,gt=0" example:"100.00"`
	Reason string  `json:"motivo" binding:"required" example:"Depósito bancário"`
	Method string  `json:"formaPagamento" binding:"omitempty" example:"DINHEIRO"`
}

// CashAdjustmentResult represents the outcome of a drawer adjustment.
// The register may not be open yet; the tagged entry stands either way.
//
//	@Description	Cash adjustment outcome
type CashAdjustmentResult struct {
	Session *CashSessionResponse `json:"caixa,omitempty"`
	Entry   LedgerEntryResponse  `json:"transacao"`
}

// CloseDayRequest represents a request to close the register
//
//	@Description	Close register request
type CloseDayRequest struct {
	CountedAmount float64 `json:"saldoContado" binding:"omitempty,gte=0" example:"385.50"`
	Notes         string  `json:"observacoes"`
}

// ClosingSummaryResponse is the reconciliation line of a register close
//
//	@Description	Closing reconciliation summary
type ClosingSummaryResponse struct {
	Expected   float64 `json:"saldoEsperado" example:"390.00"`
	Counted    float64 `json:"saldoContado" example:"385.50"`
	Difference float64 `json:"diferenca" example:"-4.50"`
}

// CloseDayResponse represents the outcome of closing the register
//
//	@Description	Close register response
type CloseDayResponse struct {
	Summary ClosingSummaryResponse `json:"fechamento"`
	Session CashSessionResponse    `json:"caixa"`
	Entry   *LedgerEntryResponse   `json:"transacao,omitempty"`
}

// DayMovementResponse summarizes the cash movement of one business day
//
//	@Description	Day cash movement
type DayMovementResponse struct {
	OpeningFloat    float64 `json:"valorInicial" example:"50.00"`
	CashReceitas    float64 `json:"receitasDinheiro" example:"320.00"`
	CashDespesas    float64 `json:"despesasDinheiro" example:"40.00"`
	Sangrias        float64 `json:"sangrias" example:"20.00"`
	Suprimentos     float64 `json:"suprimentos" example:"10.00"`
	ExpectedBalance float64 `json:"saldoEsperado" example:"330.00"`
}

// DayStatusResponse is the read model of one business day's register
//
//	@Description	Day status response
type DayStatusResponse struct {
	Day       string                   `json:"data" example:"2026-03-15"`
	Status    string                   `json:"status" example:"ABERTO"`
	Session   *CashSessionResponse     `json:"caixa,omitempty"`
	Movement  DayMovementResponse      `json:"movimentacao"`
	ByMethod  []MethodMovementResponse `json:"totaisPorForma"`
}

// ===================== Handlers =====================

// OpenDay godoc
// @ID           openCashDay
//
//	@Summary		Open cash register
//	@Description	Open the register for a business day with an opening float; a positive float leaves an ABERTURA_CAIXA entry
//	@Tags			caixa
//	@Accept			json
//	@Produce		json
//	@Param			request	body		OpenDayRequest	true	"Open request"
//	@Success		201		{object}	APIResponse[OpenDayResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/caixa/abrir [post]
func (h *CashSessionHandler) OpenDay(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	var req OpenDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	serviceReq := cashierapp.OpenDayRequest{
		TenantID:     tenantID,
		OpeningFloat: toDecimal(req.OpeningFloat),
		Notes:        req.Notes,
	}
	if req.Day != "" {
		day, err := valueobject.ParseBusinessDay(req.Day)
		if err != nil {
			h.Error(c, http.StatusBadRequest, "INVALID_DAY", "Day must be in YYYY-MM-DD format")
			return
		}
		serviceReq.Day = day
	}

	result, err := h.service.OpenDay(c.Request.Context(), serviceReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response := OpenDayResponse{
		Session: toCashSessionResponse(result.Session),
	}
	if result.Entry != nil {
		entry := toLedgerEntryResponse(result.Entry)
		response.Entry = &entry
	}

	c.JSON(http.StatusCreated, dto.Response{
		Success: true,
		Data:    response,
	})
}

// RecordSangria godoc
// @ID           recordSangria
//
//	@Summary		Record sangria
//	@Description	Take cash out of the register, leaving a SANGRIA expense entry
//	@Tags			caixa
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CashAdjustmentRequest	true	"Adjustment request"
//	@Success		201		{object}	APIResponse[CashAdjustmentResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/caixa/sangria [post]
func (h *CashSessionHandler) RecordSangria(c *gin.Context) {
	h.recordAdjustment(c, cashier.AdjustmentSangria)
}

// RecordSuprimento godoc
// @ID           recordSuprimento
//
//	@Summary		Record suprimento
//	@Description	Put cash into the register, leaving a SUPRIMENTO revenue entry
//	@Tags			caixa
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CashAdjustmentRequest	true	"Adjustment request"
//	@Success		201		{object}	APIResponse[CashAdjustmentResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/caixa/suprimento [post]
func (h *CashSessionHandler) RecordSuprimento(c *gin.Context) {
	h.recordAdjustment(c, cashier.AdjustmentSuprimento)
}

func (h *CashSessionHandler) recordAdjustment(c *gin.Context, kind cashier.AdjustmentType) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	var req CashAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	// Drawer movements are cash by definition
	if req.Method != "" && req.Method != string(ledger.MethodDinheiro) {
		h.Error(c, http.StatusBadRequest, "INVALID_PAYMENT_METHOD", "Drawer adjustments are settled in DINHEIRO")
		return
	}

	result, err := h.service.RecordAdjustment(c.Request.Context(), cashierapp.AdjustmentRequest{
		TenantID: tenantID,
		Kind:     kind,
		Amount:   toDecimal(req.Amount),
		Reason:   req.Reason,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response := CashAdjustmentResult{
		Entry: toLedgerEntryResponse(result.Entry),
	}
	if result.Session != nil {
		session := toCashSessionResponse(result.Session)
		response.Session = &session
	}

	c.JSON(http.StatusCreated, dto.Response{
		Success: true,
		Data:    response,
	})
}

// CloseDay godoc
// @ID           closeCashDay
//
//	@Summary		Close cash register
//	@Description	Close the open register, reconciling the counted cash against the expected drawer balance
//	@Tags			caixa
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CloseDayRequest	true	"Close request"
//	@Success		201		{object}	APIResponse[CloseDayResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/caixa/fechar [post]
func (h *CashSessionHandler) CloseDay(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	var req CloseDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.service.CloseDay(c.Request.Context(), cashierapp.CloseDayRequest{
		TenantID:      tenantID,
		CountedAmount: toDecimal(req.CountedAmount),
		Notes:         req.Notes,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response := CloseDayResponse{
		Summary: ClosingSummaryResponse{
			Expected:   result.Expected.InexactFloat64(),
			Counted:    result.Session.CountedAmount.InexactFloat64(),
			Difference: result.Session.Difference.InexactFloat64(),
		},
		Session: toCashSessionResponse(result.Session),
	}
	if result.Entry != nil {
		entry := toLedgerEntryResponse(result.Entry)
		response.Entry = &entry
	}

	c.JSON(http.StatusCreated, dto.Response{
		Success: true,
		Data:    response,
	})
}

// GetDayStatus godoc
// @ID           getCashDayStatus
//
//	@Summary		Get day status
//	@Description	Get the register status of a business day, including cash movement and per-method totals
//	@Tags			caixa
//	@Produce		json
//	@Param			data	query		string	false	"Business day (YYYY-MM-DD), defaults to today"
//	@Success		200	{object}	APIResponse[DayStatusResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/caixa/status [get]
func (h *CashSessionHandler) GetDayStatus(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	var day valueobject.BusinessDay
	if raw := c.Query("data"); raw != "" {
		day, err = valueobject.ParseBusinessDay(raw)
		if err != nil {
			h.Error(c, http.StatusBadRequest, "INVALID_DAY", "Day must be in YYYY-MM-DD format")
			return
		}
	}

	result, err := h.service.GetDayStatus(c.Request.Context(), tenantID, day)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := DayStatusResponse{
		Day:    result.Day.String(),
		Status: string(result.Status),
		Movement: DayMovementResponse{
			OpeningFloat:    result.OpeningFloat.InexactFloat64(),
			CashReceitas:    result.CashReceitas.InexactFloat64(),
			CashDespesas:    result.CashDespesas.InexactFloat64(),
			Sangrias:        result.Sangrias.InexactFloat64(),
			Suprimentos:     result.Suprimentos.InexactFloat64(),
			ExpectedBalance: result.ExpectedBalance.InexactFloat64(),
		},
		ByMethod: make([]MethodMovementResponse, len(result.Movements)),
	}
	for i, m := range result.Movements {
		response.ByMethod[i] = MethodMovementResponse{
			Method:   string(m.Method),
			Receitas: m.Receitas.InexactFloat64(),
			Despesas: m.Despesas.InexactFloat64(),
			Count:    m.Count,
		}
	}
	if result.Session != nil {
		session := toCashSessionResponse(result.Session)
		response.Session = &session
	}

	h.Success(c, response)
}

// ListRecentSessions godoc
// @ID           listRecentCashSessions
//
//	@Summary		List recent sessions
//	@Description	Get the most recent cash sessions, newest first
//	@Tags			caixa
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum sessions to return"	default(30)
//	@Success		200		{object}	APIResponse[[]CashSessionResponse]
//	@Failure		401		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/caixa/sessoes [get]
func (h *CashSessionHandler) ListRecentSessions(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	limit := 30
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	sessions, err := h.service.ListRecentSessions(c.Request.Context(), tenantID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := make([]CashSessionResponse, len(sessions))
	for i := range sessions {
		response[i] = toCashSessionResponse(&sessions[i])
	}

	h.Success(c, response)
}

// ===================== Helper Functions =====================

func toCashSessionResponse(session *cashier.CashSession) CashSessionResponse {
	adjustments := make([]CashAdjustmentResponse, len(session.Adjustments))
	for i, adj := range session.Adjustments {
		adjustments[i] = CashAdjustmentResponse{
			ID:            adj.ID.String(),
			Type:          string(adj.Type),
			Amount:        adj.Amount.InexactFloat64(),
			Reason:        adj.Reason,
			OccurredAt:    adj.OccurredAt,
			LedgerEntryID: uuidPtrString(adj.LedgerEntryID),
		}
	}

	return CashSessionResponse{
		ID:             session.ID.String(),
		TenantID:       session.TenantID.String(),
		BusinessDay:    session.BusinessDay.String(),
		Status:         string(session.Status),
		OpeningFloat:   session.OpeningFloat.InexactFloat64(),
		OpenedAt:       session.OpenedAt,
		Adjustments:    adjustments,
		ClosedAt:       session.ClosedAt,
		CountedAmount:  session.CountedAmount.InexactFloat64(),
		ExpectedAmount: session.ExpectedAmount.InexactFloat64(),
		Difference:     session.Difference.InexactFloat64(),
		OpeningEntryID: uuidPtrString(session.OpeningEntryID),
		ClosingEntryID: uuidPtrString(session.ClosingEntryID),
		Notes:          session.Notes,
		CreatedAt:      session.CreatedAt,
		UpdatedAt:      session.UpdatedAt,
		Version:        session.Version,
	}
}

// RegisterRoutes registers the cash register routes
func (h *CashSessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	caixa := rg.Group("/caixa")
	{
		caixa.GET("/status", h.GetDayStatus)
		caixa.GET("/sessoes", h.ListRecentSessions)
		caixa.POST("/abrir", h.OpenDay)
		caixa.POST("/fechar", h.CloseDay)
		caixa.POST("/sangria", h.RecordSangria)
		caixa.POST("/suprimento", h.RecordSuprimento)
	}
}

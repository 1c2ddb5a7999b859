package handler

import (
	"net/http"
	"time"

	ledgerapp "github.com/studiobeleza/backend/internal/application/ledger"
	"github.com/studiobeleza/backend/internal/domain/ledger"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/studiobeleza/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerEntryHandler handles ledger entry (transação) API endpoints
type LedgerEntryHandler struct {
	BaseHandler
	service *ledgerapp.LedgerService
}

// NewLedgerEntryHandler creates a new LedgerEntryHandler
func NewLedgerEntryHandler(service *ledgerapp.LedgerService) *LedgerEntryHandler {
	return &LedgerEntryHandler{
		service: service,
	}
}

// ===================== Request/Response DTOs =====================

// CommissionResponse represents a staff commission in API responses
//
//	@Description	Commission response
type CommissionResponse struct {
	StaffID string  `json:"profissionalId" example:"550e8400-e29b-41d4-a716-446655440000"`
	Percent float64 `json:"percentual" example:"40"`
	Amount  float64 `json:"valor" example:"18.00"`
	Paid    bool    `json:"pago"`
}

// LedgerEntryResponse represents a ledger entry in API responses
//
//	@Description	Ledger entry response
type LedgerEntryResponse struct {
	ID          string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TenantID    string `json:"tenantId" example:"550e8400-e29b-41d4-a716-446655440001"`
	Type        string `json:"tipo" example:"RECEITA"`
	Category    string `json:"categoria" example:"SERVICO"`
	Description string `json:"descricao" example:"Serviço: Limpeza de pele"`
	Notes       string `json:"observacoes,omitempty"`

	GrossAmount float64 `json:"valor" example:"50.00"`
	Discount    float64 `json:"desconto" example:"5.00"`
	FinalAmount float64 `json:"valorFinal" example:"45.00"`

	Status        string     `json:"status" example:"PENDENTE"`
	PaymentMethod *string    `json:"formaPagamento,omitempty" example:"DINHEIRO"`
	EntryDate     time.Time  `json:"data"`
	PaidAt        *time.Time `json:"dataPagamento,omitempty"`

	ClientID          *string `json:"clienteId,omitempty"`
	AppointmentID     *string `json:"agendamentoId,omitempty"`
	PackagePurchaseID *string `json:"compraPacoteId,omitempty"`
	StaffID           *string `json:"profissionalId,omitempty"`

	IsInstallment    bool `json:"parcelado"`
	InstallmentCount int  `json:"numeroParcelas,omitempty"`
	InstallmentsPaid int  `json:"parcelasPagas,omitempty"`

	Commission *CommissionResponse `json:"comissao,omitempty"`

	CancelledAt  *time.Time `json:"canceladoEm,omitempty"`
	CancelReason string     `json:"motivoCancelamento,omitempty"`

	CreatedAt time.Time `json:"criadoEm"`
	UpdatedAt time.Time `json:"atualizadoEm"`
	Version   int       `json:"versao" example:"1"`
}

// CreateLedgerEntryRequest represents a request to create a ledger entry
//
//	@Description	Create ledger entry request
type CreateLedgerEntryRequest struct {
	Type        string     `json:"tipo" binding:"required" example:"RECEITA"`
	Category    string     `json:"categoria" binding:"required" example:"SERVICO"`
	Description string     `json:"descricao" binding:"required" example:"Serviço: Limpeza de pele"`
	GrossAmount float64    `json:"valor" binding:"required,gt=0" example:"50.00"`
	Discount    float64    `json:"desconto" binding:"omitempty,gte=0" example:"5.00"`
	EntryDate   *time.Time `json:"data"`

	ClientID          string `json:"clienteId"`
	AppointmentID     string `json:"agendamentoId"`
	PackagePurchaseID string `json:"compraPacoteId"`
	StaffID           string `json:"profissionalId"`
	Notes             string `json:"observacoes"`

	InstallmentCount  int     `json:"numeroParcelas" binding:"omitempty,min=2"`
	CommissionStaffID string  `json:"comissaoProfissionalId"`
	CommissionPercent float64 `json:"comissaoPercentual" binding:"omitempty,gt=0,lte=100"`
}

// CancelLedgerEntryRequest represents a request to cancel a ledger entry
//
//	@Description	Cancel ledger entry request
type CancelLedgerEntryRequest struct {
	Reason string `json:"motivo" binding:"required" example:"Lançamento duplicado"`
}

// LedgerEntryListFilter represents filter parameters for the entry list
//
//	@Description	Ledger entry list filter
type LedgerEntryListFilter struct {
	Search            string `form:"busca"`
	Type              string `form:"tipo"`
	Category          string `form:"categoria"`
	Status            string `form:"status"`
	ClientID          string `form:"clienteId" json:"clienteId"`
	AppointmentID     string `form:"agendamentoId" json:"agendamentoId"`
	PackagePurchaseID string `form:"compraPacoteId" json:"compraPacoteId"`
	StaffID           string `form:"profissionalId" json:"profissionalId"`
	FromDate          string `form:"dataInicio" json:"dataInicio"`
	ToDate            string `form:"dataFim" json:"dataFim"`
	Page              int    `form:"page,omitempty" binding:"omitempty,min=1" example:"1"`
	PageSize          int    `form:"pageSize,omitempty" binding:"omitempty,min=1,max=100" json:"pageSize" example:"20"`
}

// MethodMovementResponse represents one payment method's movement in a period
//
//	@Description	Payment method movement response
type MethodMovementResponse struct {
	Method   string  `json:"forma" example:"DINHEIRO"`
	Receitas float64 `json:"receitas" example:"350.00"`
	Despesas float64 `json:"despesas" example:"40.00"`
	Count    int64   `json:"quantidade" example:"12"`
}

// PeriodSummaryResponse represents the financial summary of a period
//
//	@Description	Period summary response
type PeriodSummaryResponse struct {
	PeriodStart string                   `json:"inicio" example:"2026-03-01"`
	PeriodEnd   string                   `json:"fim" example:"2026-03-31"`
	Receitas    float64                  `json:"receitas" example:"4500.00"`
	Despesas    float64                  `json:"despesas" example:"1800.00"`
	Saldo       float64                  `json:"saldo" example:"2700.00"`
	Methods     []MethodMovementResponse `json:"totaisPorForma"`
}

// ===================== Handlers =====================

// ListEntries godoc
// @ID           listLedgerEntries
//
//	@Summary		List ledger entries
//	@Description	Get a paginated list of ledger entries (transações)
//	@Tags			transacoes
//	@Produce		json
//	@Param			busca		query		string	false	"Search keyword"
//	@Param			tipo		query		string	false	"Filter by type"		Enums(RECEITA, DESPESA)
//	@Param			categoria	query		string	false	"Filter by category"
//	@Param			status		query		string	false	"Filter by status"		Enums(PENDENTE, PARCIAL, PAGO, CANCELADO, ESTORNADO)
//	@Param			clienteId	query		string	false	"Filter by client"
//	@Param			dataInicio	query		string	false	"Filter from date (YYYY-MM-DD)"
//	@Param			dataFim		query		string	false	"Filter to date (YYYY-MM-DD)"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			pageSize	query		int		false	"Page size"		default(20)
//	@Success		200			{object}	APIResponse[[]LedgerEntryResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/transacoes [get]
func (h *LedgerEntryHandler) ListEntries(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	var filter LedgerEntryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	serviceFilter, err := h.toEntryFilter(filter)
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.service.ListEntries(c.Request.Context(), tenantID, serviceFilter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := make([]LedgerEntryResponse, len(result.Entries))
	for i := range result.Entries {
		response[i] = toLedgerEntryResponse(&result.Entries[i])
	}

	h.SuccessWithMeta(c, response, result.Total, filter.Page, filter.PageSize)
}

// GetEntry godoc
// @ID           getLedgerEntry
//
//	@Summary		Get ledger entry by ID
//	@Description	Get a single ledger entry by its ID
//	@Tags			transacoes
//	@Produce		json
//	@Param			id	path		string	true	"Entry ID"
//	@Success		200	{object}	APIResponse[LedgerEntryResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/transacoes/{id} [get]
func (h *LedgerEntryHandler) GetEntry(c *gin.Context) {
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

	entry, err := h.service.GetEntry(c.Request.Context(), tenantID, entryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toLedgerEntryResponse(entry))
}

// CreateEntry godoc
// @ID           createLedgerEntry
//
//	@Summary		Create ledger entry
//	@Description	Create a manual revenue or expense entry
//	@Tags			transacoes
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateLedgerEntryRequest	true	"Entry creation request"
//	@Success		201		{object}	APIResponse[LedgerEntryResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/transacoes [post]
func (h *LedgerEntryHandler) CreateEntry(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	var req CreateLedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	serviceReq := ledgerapp.CreateEntryRequest{
		TenantID:         tenantID,
		Type:             ledger.EntryType(req.Type),
		Category:         ledger.EntryCategory(req.Category),
		Description:      req.Description,
		GrossAmount:      toDecimal(req.GrossAmount),
		Discount:         toDecimal(req.Discount),
		Notes:            req.Notes,
		InstallmentCount: req.InstallmentCount,
	}
	if req.EntryDate != nil {
		serviceReq.EntryDate = *req.EntryDate
	}

	if serviceReq.ClientID, err = parseOptionalUUID(req.ClientID); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID")
		return
	}
	if serviceReq.AppointmentID, err = parseOptionalUUID(req.AppointmentID); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid appointment ID")
		return
	}
	if serviceReq.PackagePurchaseID, err = parseOptionalUUID(req.PackagePurchaseID); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid package purchase ID")
		return
	}
	if serviceReq.StaffID, err = parseOptionalUUID(req.StaffID); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid staff ID")
		return
	}
	if serviceReq.CommissionStaffID, err = parseOptionalUUID(req.CommissionStaffID); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid commission staff ID")
		return
	}
	if req.CommissionPercent > 0 {
		serviceReq.CommissionPercent = toDecimal(req.CommissionPercent)
	}

	entry, err := h.service.CreateEntry(c.Request.Context(), serviceReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.Response{
		Success: true,
		Data:    toLedgerEntryResponse(entry),
	})
}

// CancelEntry godoc
// @ID           cancelLedgerEntry
//
//	@Summary		Cancel ledger entry
//	@Description	Cancel an entry; a fully paid entry becomes ESTORNADO
//	@Tags			transacoes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Entry ID"
//	@Param			request	body		CancelLedgerEntryRequest	true	"Cancel reason"
//	@Success		200		{object}	APIResponse[LedgerEntryResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/transacoes/{id}/cancelar [post]
func (h *LedgerEntryHandler) CancelEntry(c *gin.Context) {
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

	var req CancelLedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	entry, err := h.service.CancelEntry(c.Request.Context(), ledgerapp.CancelEntryRequest{
		TenantID: tenantID,
		EntryID:  entryID,
		Reason:   req.Reason,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toLedgerEntryResponse(entry))
}

// GetPeriodSummary godoc
// @ID           getLedgerPeriodSummary
//
//	@Summary		Get period summary
//	@Description	Get revenue, expense and per-method totals for a period
//	@Tags			transacoes
//	@Produce		json
//	@Param			dataInicio	query		string	false	"From date (YYYY-MM-DD)"
//	@Param			dataFim		query		string	false	"To date (YYYY-MM-DD)"
//	@Success		200			{object}	APIResponse[PeriodSummaryResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/transacoes/resumo [get]
func (h *LedgerEntryHandler) GetPeriodSummary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	fromDateStr := c.Query("dataInicio")
	toDateStr := c.Query("dataFim")

	var fromDate, toDate time.Time
	if fromDateStr != "" {
		t, err := time.Parse("2006-01-02", fromDateStr)
		if err != nil {
			h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "dataInicio must be YYYY-MM-DD")
			return
		}
		fromDate = t
	} else {
		// Default to first day of current month
		now := time.Now()
		fromDate = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	}

	if toDateStr != "" {
		t, err := time.Parse("2006-01-02", toDateStr)
		if err != nil {
			h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "dataFim must be YYYY-MM-DD")
			return
		}
		toDate = t.AddDate(0, 0, 1)
	} else {
		toDate = time.Now()
	}

	summary, err := h.service.GetPeriodSummary(c.Request.Context(), tenantID, fromDate, toDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := PeriodSummaryResponse{
		PeriodStart: summary.From.Format("2006-01-02"),
		PeriodEnd:   summary.To.Format("2006-01-02"),
		Receitas:    summary.Receitas.InexactFloat64(),
		Despesas:    summary.Despesas.InexactFloat64(),
		Saldo:       summary.Saldo.InexactFloat64(),
		Methods:     make([]MethodMovementResponse, len(summary.Methods)),
	}
	for i, m := range summary.Methods {
		response.Methods[i] = MethodMovementResponse{
			Method:   string(m.Method),
			Receitas: m.Receitas.InexactFloat64(),
			Despesas: m.Despesas.InexactFloat64(),
			Count:    m.Count,
		}
	}

	h.Success(c, response)
}

// ===================== Helper Functions =====================

func (h *LedgerEntryHandler) toEntryFilter(filter LedgerEntryListFilter) (ledger.EntryFilter, error) {
	out := ledger.EntryFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			Search:   filter.Search,
		},
	}

	if filter.Type != "" {
		t := ledger.EntryType(filter.Type)
		out.Type = &t
	}
	if filter.Category != "" {
		cat := ledger.EntryCategory(filter.Category)
		out.Category = &cat
	}
	if filter.Status != "" {
		st := ledger.EntryStatus(filter.Status)
		out.Status = &st
	}

	var err error
	if out.ClientID, err = parseOptionalUUID(filter.ClientID); err != nil {
		return out, err
	}
	if out.AppointmentID, err = parseOptionalUUID(filter.AppointmentID); err != nil {
		return out, err
	}
	if out.PackagePurchaseID, err = parseOptionalUUID(filter.PackagePurchaseID); err != nil {
		return out, err
	}
	if out.StaffID, err = parseOptionalUUID(filter.StaffID); err != nil {
		return out, err
	}

	if filter.FromDate != "" {
		t, err := time.Parse("2006-01-02", filter.FromDate)
		if err == nil {
			out.FromDate = &t
		}
	}
	if filter.ToDate != "" {
		t, err := time.Parse("2006-01-02", filter.ToDate)
		if err == nil {
			t = t.AddDate(0, 0, 1)
			out.ToDate = &t
		}
	}

	return out, nil
}

func toLedgerEntryResponse(entry *ledger.LedgerEntry) LedgerEntryResponse {
	response := LedgerEntryResponse{
		ID:                entry.ID.String(),
		TenantID:          entry.TenantID.String(),
		Type:              string(entry.Type),
		Category:          string(entry.Category),
		Description:       entry.Description,
		Notes:             entry.Notes,
		GrossAmount:       entry.GrossAmount.InexactFloat64(),
		Discount:          entry.Discount.InexactFloat64(),
		FinalAmount:       entry.FinalAmount.InexactFloat64(),
		Status:            string(entry.Status),
		EntryDate:         entry.EntryDate,
		PaidAt:            entry.PaidAt,
		ClientID:          uuidPtrString(entry.ClientID),
		AppointmentID:     uuidPtrString(entry.AppointmentID),
		PackagePurchaseID: uuidPtrString(entry.PackagePurchaseID),
		StaffID:           uuidPtrString(entry.StaffID),
		IsInstallment:     entry.IsInstallment,
		InstallmentCount:  entry.InstallmentCount,
		InstallmentsPaid:  entry.InstallmentsPaid,
		CancelledAt:       entry.CancelledAt,
		CancelReason:      entry.CancelReason,
		CreatedAt:         entry.CreatedAt,
		UpdatedAt:         entry.UpdatedAt,
		Version:           entry.Version,
	}

	if entry.PaymentMethod != nil {
		m := string(*entry.PaymentMethod)
		response.PaymentMethod = &m
	}
	if entry.Commission != nil {
		response.Commission = &CommissionResponse{
			StaffID: entry.Commission.StaffID.String(),
			Percent: entry.Commission.Percent.InexactFloat64(),
			Amount:  entry.Commission.Amount.InexactFloat64(),
			Paid:    entry.Commission.Paid,
		}
	}

	return response
}

// RegisterRoutes registers the ledger entry routes
func (h *LedgerEntryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transacoes := rg.Group("/transacoes")
	{
		transacoes.GET("", h.ListEntries)
		transacoes.GET("/resumo", h.GetPeriodSummary)
		transacoes.GET("/:id", h.GetEntry)
		transacoes.POST("", h.CreateEntry)
		transacoes.POST("/:id/cancelar", h.CancelEntry)
	}
}

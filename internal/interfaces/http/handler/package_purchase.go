package handler

import (
	"net/http"
	"time"

	packsapp "github.com/studiobeleza/backend/internal/application/packs"
	"github.com/studiobeleza/backend/internal/domain/ledger"
	"github.com/studiobeleza/backend/internal/domain/packs"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/studiobeleza/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PackagePurchaseHandler handles package purchase (compra de pacote) API endpoints
type PackagePurchaseHandler struct {
	BaseHandler
	service *packsapp.PurchaseService
}

// NewPackagePurchaseHandler creates a new PackagePurchaseHandler
func NewPackagePurchaseHandler(service *packsapp.PurchaseService) *PackagePurchaseHandler {
	return &PackagePurchaseHandler{
		service: service,
	}
}

// ===================== Request/Response DTOs =====================

// PurchaseHistoryEntryResponse represents one record of the purchase history log
//
//	@Description	Purchase history entry response
type PurchaseHistoryEntryResponse struct {
	ID         string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Type       string    `json:"tipo" example:"USO"`
	OccurredAt time.Time `json:"ocorridoEm"`

	AppointmentID *string  `json:"agendamentoId,omitempty"`
	SessionNumber int      `json:"numeroDaSessao,omitempty" example:"3"`
	SessionValue  *float64 `json:"valorSessao,omitempty" example:"45.00"`
	StaffID       *string  `json:"profissionalId,omitempty"`

	PreviousExpiry *time.Time `json:"dataAnterior,omitempty"`
	NewExpiry      *time.Time `json:"novaData,omitempty"`

	Reason string `json:"motivo,omitempty"`
	Actor  string `json:"autor,omitempty"`
}

// PackagePurchaseResponse represents a package purchase in API responses
//
//	@Description	Package purchase response
type PackagePurchaseResponse struct {
	ID          string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TenantID    string `json:"tenantId" example:"550e8400-e29b-41d4-a716-446655440001"`
	ClientID    string `json:"clienteId" example:"550e8400-e29b-41d4-a716-446655440002"`
	PackageID   string `json:"pacoteId" example:"550e8400-e29b-41d4-a716-446655440003"`
	PackageName string `json:"nomePacote" example:"Pacote 10 Massagens"`

	SessionsContracted int `json:"sessoesContratadas" example:"10"`
	SessionsUsed       int `json:"sessoesUsadas" example:"3"`
	SessionsRemaining  int `json:"sessoesRestantes" example:"7"`

	TotalAmount       float64 `json:"valorTotal" example:"450.00"`
	PaidAmount        float64 `json:"valorPago" example:"150.00"`
	OutstandingAmount float64 `json:"valorPendente" example:"300.00"`

	IsInstallment     bool    `json:"parcelado"`
	InstallmentCount  int     `json:"numeroParcelas,omitempty" example:"3"`
	InstallmentAmount float64 `json:"valorParcela,omitempty" example:"150.00"`
	InstallmentsPaid  int     `json:"parcelasPagas,omitempty" example:"1"`

	Status      string     `json:"status" example:"ATIVO"`
	PurchasedAt time.Time  `json:"dataCompra"`
	ExpiresAt   *time.Time `json:"dataExpiracao,omitempty"`

	History []PurchaseHistoryEntryResponse `json:"historico"`

	CancelledAt  *time.Time `json:"canceladoEm,omitempty"`
	CancelReason string     `json:"motivoCancelamento,omitempty"`
	Notes        string     `json:"observacoes,omitempty"`

	CreatedAt time.Time `json:"criadoEm"`
	UpdatedAt time.Time `json:"atualizadoEm"`
	Version   int       `json:"versao" example:"1"`
}

// SellPackageRequest represents a request to sell a package to a client.
// valorPago plus formaPagamento register an initial payment with the sale;
// diasValidade overrides the definition's validity for this purchase.
//
//	@Description	Sell package request
type SellPackageRequest struct {
	ClientID         string                `json:"clienteId" binding:"required" example:"550e8400-e29b-41d4-a716-446655440002"`
	PackageID        string                `json:"pacoteId" binding:"required" example:"550e8400-e29b-41d4-a716-446655440003"`
	PurchasedAt      *time.Time            `json:"dataCompra"`
	ValidityDays     *int                  `json:"diasValidade" binding:"omitempty,gt=0" example:"60"`
	IsInstallment    bool                  `json:"parcelado"`
	InstallmentCount int                   `json:"numeroParcelas" binding:"omitempty,min=2" example:"3"`
	PaidAmount       *float64              `json:"valorPago" binding:"omitempty,gt=0" example:"150.00"`
	Method           string                `json:"formaPagamento" example:"DINHEIRO"`
	Details          PaymentDetailsRequest `json:"dadosPagamento"`
	Notes            string                `json:"observacoes"`
}

// SellPackageResponse represents the outcome of a package sale
//
//	@Description	Sell package response
type SellPackageResponse struct {
	Purchase PackagePurchaseResponse `json:"compraPacote"`
	Entry    LedgerEntryResponse     `json:"transacao"`
	Payment  *PaymentResponse        `json:"pagamento,omitempty"`
}

// PurchaseEnvelope wraps a single purchase in mutation responses
//
//	@Description	Purchase envelope
type PurchaseEnvelope struct {
	Purchase PackagePurchaseResponse `json:"compraPacote"`
}

// PurchaseListFilter represents filter parameters for the purchase list
//
//	@Description	Purchase list filter
type PurchaseListFilter struct {
	Search    string `form:"busca"`
	ClientID  string `form:"clienteId" json:"clienteId"`
	PackageID string `form:"pacoteId" json:"pacoteId"`
	Status    string `form:"status"`
	FromDate  string `form:"dataInicio" json:"dataInicio"`
	ToDate    string `form:"dataFim" json:"dataFim"`
	Page      int    `form:"page,omitempty" binding:"omitempty,min=1" example:"1"`
	PageSize  int    `form:"pageSize,omitempty" binding:"omitempty,min=1,max=100" json:"pageSize" example:"20"`
}

// ConsumeSessionRequest represents a request to consume one package session
//
//	@Description	Consume session request
type ConsumeSessionRequest struct {
	AppointmentID string   `json:"agendamentoId" example:"550e8400-e29b-41d4-a716-446655440004"`
	StaffID       string   `json:"profissionalId"`
	SessionValue  *float64 `json:"valorSessao" binding:"omitempty,gte=0" example:"45.00"`
}

// ExtendExpiryRequest represents a request to extend a purchase's validity
//
//	@Description	Extend expiry request
type ExtendExpiryRequest struct {
	Days   int    `json:"dias" binding:"required,gt=0" example:"30"`
	Reason string `json:"motivo" binding:"required" example:"Cliente em viagem"`
	Actor  string `json:"autor" example:"maria"`
}

// CancelPurchaseRequest represents a request to cancel a purchase
//
//	@Description	Cancel purchase request
type CancelPurchaseRequest struct {
	Reason string `json:"motivo" binding:"required" example:"Cliente desistiu do pacote"`
	Actor  string `json:"autor" example:"maria"`
}

// ===================== Handlers =====================

// SellPackage godoc
// @ID           sellPackage
//
//	@Summary		Sell package
//	@Description	Sell a package to a client; the purchase and its funding PACOTE revenue entry are created together
//	@Tags			compras-pacotes
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SellPackageRequest	true	"Sale request"
//	@Success		201		{object}	APIResponse[SellPackageResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/compras-pacotes [post]
func (h *PackagePurchaseHandler) SellPackage(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	var req SellPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID")
		return
	}
	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid package ID")
		return
	}

	if req.IsInstallment && req.InstallmentCount < 2 {
		h.Error(c, http.StatusBadRequest, "INVALID_INSTALLMENTS", "Installment sales need numeroParcelas of at least 2")
		return
	}

	serviceReq := packsapp.SellPackageRequest{
		TenantID:     tenantID,
		ClientID:     clientID,
		PackageID:    packageID,
		ValidityDays: req.ValidityDays,
		Notes:        req.Notes,
	}
	if req.IsInstallment {
		serviceReq.InstallmentCount = req.InstallmentCount
	}
	if req.PurchasedAt != nil {
		serviceReq.PurchasedAt = *req.PurchasedAt
	}
	if req.PaidAmount != nil {
		if req.Method == "" {
			h.Error(c, http.StatusBadRequest, "INVALID_PAYMENT_METHOD", "formaPagamento is required when valorPago is given")
			return
		}
		serviceReq.InitialPayment = &packsapp.InitialPayment{
			Amount:  toDecimal(*req.PaidAmount),
			Method:  ledger.PaymentMethod(req.Method),
			Details: toPaymentDetails(req.Details),
		}
	}

	result, err := h.service.SellPackage(c.Request.Context(), serviceReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response := SellPackageResponse{
		Purchase: toPackagePurchaseResponse(result.Purchase),
		Entry:    toLedgerEntryResponse(result.Entry),
	}
	if result.Payment != nil {
		payment := toPaymentResponse(result.Payment)
		response.Payment = &payment
	}

	c.JSON(http.StatusCreated, dto.Response{
		Success: true,
		Data:    response,
	})
}

// ListPurchases godoc
// @ID           listPurchases
//
//	@Summary		List package purchases
//	@Description	Get a paginated list of package purchases
//	@Tags			compras-pacotes
//	@Produce		json
//	@Param			busca		query		string	false	"Search keyword"
//	@Param			clienteId	query		string	false	"Filter by client"
//	@Param			pacoteId	query		string	false	"Filter by package definition"
//	@Param			status		query		string	false	"Filter by status"	Enums(ATIVO, CONCLUIDO, CANCELADO, EXPIRADO)
//	@Param			dataInicio	query		string	false	"Filter from purchase date (YYYY-MM-DD)"
//	@Param			dataFim		query		string	false	"Filter to purchase date (YYYY-MM-DD)"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			pageSize	query		int		false	"Page size"		default(20)
//	@Success		200			{object}	APIResponse[[]PackagePurchaseResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/compras-pacotes [get]
func (h *PackagePurchaseHandler) ListPurchases(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	var filter PurchaseListFilter
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

	serviceFilter := packs.PurchaseFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			Search:   filter.Search,
		},
	}
	if serviceFilter.ClientID, err = parseOptionalUUID(filter.ClientID); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID")
		return
	}
	if serviceFilter.PackageID, err = parseOptionalUUID(filter.PackageID); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid package ID")
		return
	}
	if filter.Status != "" {
		st := packs.PurchaseStatus(filter.Status)
		serviceFilter.Status = &st
	}
	if filter.FromDate != "" {
		t, err := time.Parse("2006-01-02", filter.FromDate)
		if err == nil {
			serviceFilter.FromDate = &t
		}
	}
	if filter.ToDate != "" {
		t, err := time.Parse("2006-01-02", filter.ToDate)
		if err == nil {
			t = t.AddDate(0, 0, 1)
			serviceFilter.ToDate = &t
		}
	}

	result, err := h.service.ListPurchases(c.Request.Context(), tenantID, serviceFilter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := make([]PackagePurchaseResponse, len(result.Purchases))
	for i := range result.Purchases {
		response[i] = toPackagePurchaseResponse(&result.Purchases[i])
	}

	h.SuccessWithMeta(c, response, result.Total, filter.Page, filter.PageSize)
}

// GetPurchase godoc
// @ID           getPurchase
//
//	@Summary		Get package purchase by ID
//	@Description	Get a single purchase; a purchase past its validity is reported as EXPIRADO
//	@Tags			compras-pacotes
//	@Produce		json
//	@Param			id	path		string	true	"Purchase ID"
//	@Success		200	{object}	APIResponse[PackagePurchaseResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/compras-pacotes/{id} [get]
func (h *PackagePurchaseHandler) GetPurchase(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid purchase ID")
		return
	}

	purchase, err := h.service.GetPurchase(c.Request.Context(), tenantID, purchaseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toPackagePurchaseResponse(purchase))
}

// ListClientActivePurchases godoc
// @ID           listClientActivePurchases
//
//	@Summary		List a client's active purchases
//	@Description	Get a client's ATIVO purchases ordered by soonest expiry first
//	@Tags			compras-pacotes
//	@Produce		json
//	@Param			clientId	path		string	true	"Client ID"
//	@Success		200			{object}	APIResponse[[]PackagePurchaseResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/clientes/{clientId}/compras-pacotes/ativas [get]
func (h *PackagePurchaseHandler) ListClientActivePurchases(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID")
		return
	}

	purchases, err := h.service.ListClientActivePurchases(c.Request.Context(), tenantID, clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := make([]PackagePurchaseResponse, len(purchases))
	for i := range purchases {
		response[i] = toPackagePurchaseResponse(&purchases[i])
	}

	h.Success(c, response)
}

// ConsumeSession godoc
// @ID           consumePurchaseSession
//
//	@Summary		Consume session
//	@Description	Debit one session from a purchase; concurrent consumes of the last session cannot both succeed
//	@Tags			compras-pacotes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Purchase ID"
//	@Param			request	body		ConsumeSessionRequest	false	"Consumption data"
//	@Success		200		{object}	APIResponse[PackagePurchaseResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/compras-pacotes/{id}/consumir-sessao [post]
func (h *PackagePurchaseHandler) ConsumeSession(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid purchase ID")
		return
	}

	var req ConsumeSessionRequest
	c.ShouldBindJSON(&req) // Ignore error, all fields are optional

	serviceReq := packsapp.ConsumeSessionRequest{
		TenantID:   tenantID,
		PurchaseID: purchaseID,
	}
	if req.AppointmentID != "" {
		appointmentID, err := uuid.Parse(req.AppointmentID)
		if err != nil {
			h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid appointment ID")
			return
		}
		serviceReq.AppointmentID = appointmentID
	}
	if serviceReq.StaffID, err = parseOptionalUUID(req.StaffID); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid staff ID")
		return
	}
	if req.SessionValue != nil {
		serviceReq.SessionValue = toDecimalPtr(*req.SessionValue)
	}

	purchase, err := h.service.ConsumeSession(c.Request.Context(), serviceReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toPackagePurchaseResponse(purchase))
}

// ExtendExpiry godoc
// @ID           extendPurchaseExpiry
//
//	@Summary		Extend purchase validity
//	@Description	Push the expiry date forward; an EXPIRADO purchase with sessions remaining is reactivated
//	@Tags			compras-pacotes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Purchase ID"
//	@Param			request	body		ExtendExpiryRequest	true	"Extension request"
//	@Success		200		{object}	APIResponse[PurchaseEnvelope]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/compras-pacotes/{id}/estender-prazo [put]
func (h *PackagePurchaseHandler) ExtendExpiry(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid purchase ID")
		return
	}

	var req ExtendExpiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	purchase, err := h.service.ExtendExpiry(c.Request.Context(), packsapp.ExtendExpiryRequest{
		TenantID:   tenantID,
		PurchaseID: purchaseID,
		Days:       req.Days,
		Reason:     req.Reason,
		Actor:      req.Actor,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, PurchaseEnvelope{Purchase: toPackagePurchaseResponse(purchase)})
}

// CancelPurchase godoc
// @ID           cancelPurchase
//
//	@Summary		Cancel purchase
//	@Description	Cancel a purchase and any non-terminal ledger entries still linked to it
//	@Tags			compras-pacotes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Purchase ID"
//	@Param			request	body		CancelPurchaseRequest	true	"Cancel reason"
//	@Success		200		{object}	APIResponse[PurchaseEnvelope]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/compras-pacotes/{id}/cancelar [put]
func (h *PackagePurchaseHandler) CancelPurchase(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid purchase ID")
		return
	}

	var req CancelPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	purchase, err := h.service.CancelPurchase(c.Request.Context(), packsapp.CancelPurchaseRequest{
		TenantID:   tenantID,
		PurchaseID: purchaseID,
		Reason:     req.Reason,
		Actor:      req.Actor,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, PurchaseEnvelope{Purchase: toPackagePurchaseResponse(purchase)})
}

// DeletePurchase godoc
// @ID           deletePurchase
//
//	@Summary		Delete purchase
//	@Description	Hard delete a purchase created by mistake; purchases with usage or payments must be cancelled instead
//	@Tags			compras-pacotes
//	@Produce		json
//	@Param			id	path		string	true	"Purchase ID"
//	@Success      200 {object} SuccessResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/compras-pacotes/{id} [delete]
func (h *PackagePurchaseHandler) DeletePurchase(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid purchase ID")
		return
	}

	if err := h.service.DeletePurchase(c.Request.Context(), tenantID, purchaseID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, nil)
}

// ===================== Helper Functions =====================

func toPurchaseHistoryResponse(log packs.History) []PurchaseHistoryEntryResponse {
	out := make([]PurchaseHistoryEntryResponse, len(log))
	for i, entry := range log {
		item := PurchaseHistoryEntryResponse{
			ID:             entry.ID.String(),
			Type:           string(entry.Type),
			OccurredAt:     entry.OccurredAt,
			AppointmentID:  uuidPtrString(entry.AppointmentID),
			SessionNumber:  entry.SessionNumber,
			StaffID:        uuidPtrString(entry.StaffID),
			PreviousExpiry: entry.PreviousExpiry,
			NewExpiry:      entry.NewExpiry,
			Reason:         entry.Reason,
			Actor:          entry.Actor,
		}
		if entry.SessionValue != nil {
			v := entry.SessionValue.InexactFloat64()
			item.SessionValue = &v
		}
		out[i] = item
	}
	return out
}

func toPackagePurchaseResponse(purchase *packs.PackagePurchase) PackagePurchaseResponse {
	return PackagePurchaseResponse{
		ID:                 purchase.ID.String(),
		TenantID:           purchase.TenantID.String(),
		ClientID:           purchase.ClientID.String(),
		PackageID:          purchase.PackageID.String(),
		PackageName:        purchase.PackageName,
		SessionsContracted: purchase.SessionsContracted,
		SessionsUsed:       purchase.SessionsUsed,
		SessionsRemaining:  purchase.SessionsRemaining,
		TotalAmount:        purchase.TotalAmount.InexactFloat64(),
		PaidAmount:         purchase.PaidAmount.InexactFloat64(),
		OutstandingAmount:  purchase.OutstandingAmount.InexactFloat64(),
		IsInstallment:      purchase.IsInstallment,
		InstallmentCount:   purchase.InstallmentCount,
		InstallmentAmount:  purchase.InstallmentAmount.InexactFloat64(),
		InstallmentsPaid:   purchase.InstallmentsPaid,
		Status:             string(purchase.Status),
		PurchasedAt:        purchase.PurchasedAt,
		ExpiresAt:          purchase.ExpiresAt,
		History:            toPurchaseHistoryResponse(purchase.EventLog),
		CancelledAt:        purchase.CancelledAt,
		CancelReason:       purchase.CancelReason,
		Notes:              purchase.Notes,
		CreatedAt:          purchase.CreatedAt,
		UpdatedAt:          purchase.UpdatedAt,
		Version:            purchase.Version,
	}
}

// RegisterRoutes registers the package purchase routes
func (h *PackagePurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	compras := rg.Group("/compras-pacotes")
	{
		compras.GET("", h.ListPurchases)
		compras.GET("/:id", h.GetPurchase)
		compras.POST("", h.SellPackage)
		compras.POST("/:id/consumir-sessao", h.ConsumeSession)
		compras.PUT("/:id/estender-prazo", h.ExtendExpiry)
		compras.PUT("/:id/cancelar", h.CancelPurchase)
		compras.DELETE("/:id", h.DeletePurchase)
	}

	rg.GET("/clientes/:clientId/compras-pacotes/ativas", h.ListClientActivePurchases)
}

package handler

import (
	"net/http"
	"time"

	schedulingapp "github.com/studiobeleza/backend/internal/application/scheduling"
	"github.com/studiobeleza/backend/internal/domain/ledger"
	"github.com/studiobeleza/backend/internal/domain/scheduling"
	"github.com/studiobeleza/backend/internal/domain/shared"
	"github.com/studiobeleza/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AppointmentHandler handles appointment (agendamento) API endpoints
type AppointmentHandler struct {
	BaseHandler
	service *schedulingapp.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler
func NewAppointmentHandler(service *schedulingapp.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
	}
}

// ===================== Request/Response DTOs =====================

// AppointmentResponse represents an appointment in API responses
//
//	@Description	Appointment response
type AppointmentResponse struct {
	ID          string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TenantID    string    `json:"tenantId" example:"550e8400-e29b-41d4-a716-446655440001"`
	ClientID    string    `json:"clienteId" example:"550e8400-e29b-41d4-a716-446655440002"`
	ServiceName string    `json:"nomeServico" example:"Massagem Relaxante"`
	ScheduledAt time.Time `json:"dataAgendamento"`

	PackagePurchaseID *string  `json:"compraPacoteId,omitempty"`
	StandalonePrice   *float64 `json:"precoAvulso,omitempty" example:"45.00"`
	StaffID           *string  `json:"profissionalId,omitempty"`

	Status        string  `json:"status" example:"AGENDADO"`
	PaymentStatus string  `json:"statusPagamento" example:"PENDENTE"`
	ChargedAmount float64 `json:"valorCobrado,omitempty" example:"45.00"`
	LedgerEntryID *string `json:"transacaoId,omitempty"`

	CompletedAt  *time.Time `json:"concluidoEm,omitempty"`
	CancelledAt  *time.Time `json:"canceladoEm,omitempty"`
	CancelReason string     `json:"motivoCancelamento,omitempty"`
	Notes        string     `json:"observacoes,omitempty"`

	CreatedAt time.Time `json:"criadoEm"`
	UpdatedAt time.Time `json:"atualizadoEm"`
	Version   int       `json:"versao" example:"1"`
}

// CreateAppointmentRequest represents a request to book an appointment
//
//	@Description	Create appointment request
type CreateAppointmentRequest struct {
	ClientID          string    `json:"clienteId" binding:"required" example:"550e8400-e29b-41d4-a716-446655440002"`
	ServiceName       string    `json:"nomeServico" binding:"required" example:"Massagem Relaxante"`
	ScheduledAt       time.Time `json:"dataAgendamento" binding:"required"`
	PackagePurchaseID string    `json:"compraPacoteId"`
	StandalonePrice   *float64  `json:"precoAvulso" binding:"omitempty,gt=0" example:"45.00"`
	StaffID           string    `json:"profissionalId"`
	Notes             string    `json:"observacoes"`
}

// AppointmentListFilter represents filter parameters for the appointment list
//
//	@Description	Appointment list filter
type AppointmentListFilter struct {
	Search   string `form:"busca"`
	ClientID string `form:"clienteId" json:"clienteId"`
	StaffID  string `form:"profissionalId" json:"profissionalId"`
	Status   string `form:"status"`
	FromDate string `form:"dataInicio" json:"dataInicio"`
	ToDate   string `form:"dataFim" json:"dataFim"`
	Page     int    `form:"page,omitempty" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"pageSize,omitempty" binding:"omitempty,min=1,max=100" json:"pageSize" example:"20"`
}

// CompleteAppointmentResponse represents the outcome of completing an appointment
//
//	@Description	Complete appointment response
type CompleteAppointmentResponse struct {
	Appointment AppointmentResponse      `json:"agendamento"`
	Purchase    *PackagePurchaseResponse `json:"compraPacote,omitempty"`
	Entry       *LedgerEntryResponse     `json:"transacao,omitempty"`
}

// CancelAppointmentRequest represents a request to cancel an appointment
//
//	@Description	Cancel appointment request
type CancelAppointmentRequest struct {
	Reason string `json:"motivo" binding:"required" example:"Cliente remarcou"`
}

// ServicePaymentRequest represents a payment for a standalone service charge
//
//	@Description	Standalone service payment request
type ServicePaymentRequest struct {
	Amount         *float64              `json:"valor" binding:"omitempty,gt=0" example:"45.00"`
	Method         string                `json:"formaPagamento" binding:"required" example:"DINHEIRO"`
	Details        PaymentDetailsRequest `json:"dados"`
	Notes          string                `json:"observacoes"`
	IdempotencyKey string                `json:"chaveIdempotencia"`
}

// ServicePaymentResponse represents the outcome of paying a service charge
//
//	@Description	Standalone service payment response
type ServicePaymentResponse struct {
	Appointment AppointmentResponse `json:"agendamento"`
	Entry       LedgerEntryResponse `json:"transacao"`
	Payment     PaymentResponse     `json:"pagamento"`
}

// ===================== Handlers =====================

// CreateAppointment godoc
// @ID           createAppointment
//
//	@Summary		Book appointment
//	@Description	Book an appointment, optionally linked to a package purchase or priced standalone
//	@Tags			agendamentos
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateAppointmentRequest	true	"Appointment request"
//	@Success		201		{object}	APIResponse[AppointmentResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/agendamentos [post]
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID")
		return
	}

	serviceReq := schedulingapp.CreateAppointmentRequest{
		TenantID:    tenantID,
		ClientID:    clientID,
		ServiceName: req.ServiceName,
		ScheduledAt: req.ScheduledAt,
		Notes:       req.Notes,
	}
	if serviceReq.PackagePurchaseID, err = parseOptionalUUID(req.PackagePurchaseID); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid package purchase ID")
		return
	}
	if serviceReq.StaffID, err = parseOptionalUUID(req.StaffID); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid staff ID")
		return
	}
	if req.StandalonePrice != nil {
		serviceReq.StandalonePrice = toDecimalPtr(*req.StandalonePrice)
	}

	appointment, err := h.service.CreateAppointment(c.Request.Context(), serviceReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.Response{
		Success: true,
		Data:    toAppointmentResponse(appointment),
	})
}

// ListAppointments godoc
// @ID           listAppointments
//
//	@Summary		List appointments
//	@Description	Get a list of appointments ordered by scheduled time
//	@Tags			agendamentos
//	@Produce		json
//	@Param			busca			query		string	false	"Search keyword"
//	@Param			clienteId		query		string	false	"Filter by client"
//	@Param			profissionalId	query		string	false	"Filter by staff member"
//	@Param			status			query		string	false	"Filter by status"	Enums(AGENDADO, REALIZADO, CANCELADO)
//	@Param			dataInicio		query		string	false	"Filter from scheduled date (YYYY-MM-DD)"
//	@Param			dataFim			query		string	false	"Filter to scheduled date (YYYY-MM-DD)"
//	@Param			page			query		int		false	"Page number"	default(1)
//	@Param			pageSize		query		int		false	"Page size"		default(20)
//	@Success		200			{object}	APIResponse[[]AppointmentResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/agendamentos [get]
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	var filter AppointmentListFilter
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

	serviceFilter := scheduling.AppointmentFilter{
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
	if serviceFilter.StaffID, err = parseOptionalUUID(filter.StaffID); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid staff ID")
		return
	}
	if filter.Status != "" {
		st := scheduling.AppointmentStatus(filter.Status)
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

	appointments, err := h.service.ListAppointments(c.Request.Context(), tenantID, serviceFilter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := make([]AppointmentResponse, len(appointments))
	for i := range appointments {
		response[i] = toAppointmentResponse(&appointments[i])
	}

	h.Success(c, response)
}

// GetAppointment godoc
// @ID           getAppointment
//
//	@Summary		Get appointment by ID
//	@Description	Get a single appointment
//	@Tags			agendamentos
//	@Produce		json
//	@Param			id	path		string	true	"Appointment ID"
//	@Success		200	{object}	APIResponse[AppointmentResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/agendamentos/{id} [get]
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid appointment ID")
		return
	}

	appointment, err := h.service.GetAppointment(c.Request.Context(), tenantID, appointmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toAppointmentResponse(appointment))
}

// CompleteAppointment godoc
// @ID           completeAppointment
//
//	@Summary		Complete appointment
//	@Description	Mark an appointment REALIZADO and settle it: package-linked appointments consume a session, standalone-priced ones raise a pending SERVICO entry
//	@Tags			agendamentos
//	@Produce		json
//	@Param			id	path		string	true	"Appointment ID"
//	@Success		200	{object}	APIResponse[CompleteAppointmentResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/agendamentos/{id}/concluir [post]
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid appointment ID")
		return
	}

	result, err := h.service.CompleteAppointment(c.Request.Context(), tenantID, appointmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response := CompleteAppointmentResponse{
		Appointment: toAppointmentResponse(result.Appointment),
	}
	if result.Purchase != nil {
		purchase := toPackagePurchaseResponse(result.Purchase)
		response.Purchase = &purchase
	}
	if result.Entry != nil {
		entry := toLedgerEntryResponse(result.Entry)
		response.Entry = &entry
	}

	h.Success(c, response)
}

// CancelAppointment godoc
// @ID           cancelAppointment
//
//	@Summary		Cancel appointment
//	@Description	Cancel a scheduled appointment; completed appointments cannot be cancelled
//	@Tags			agendamentos
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Appointment ID"
//	@Param			request	body		CancelAppointmentRequest	true	"Cancel reason"
//	@Success		200		{object}	APIResponse[AppointmentResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/agendamentos/{id}/cancelar [post]
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid appointment ID")
		return
	}

	var req CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	appointment, err := h.service.CancelAppointment(c.Request.Context(), schedulingapp.CancelAppointmentRequest{
		TenantID:      tenantID,
		AppointmentID: appointmentID,
		Reason:        req.Reason,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toAppointmentResponse(appointment))
}

// ===================== Helper Functions =====================

func toAppointmentResponse(appointment *scheduling.Appointment) AppointmentResponse {
	response := AppointmentResponse{
		ID:                appointment.ID.String(),
		TenantID:          appointment.TenantID.String(),
		ClientID:          appointment.ClientID.String(),
		ServiceName:       appointment.ServiceName,
		ScheduledAt:       appointment.ScheduledAt,
		PackagePurchaseID: uuidPtrString(appointment.PackagePurchaseID),
		StaffID:           uuidPtrString(appointment.StaffID),
		Status:            string(appointment.Status),
		PaymentStatus:     string(appointment.PaymentStatus),
		ChargedAmount:     appointment.ChargedAmount.InexactFloat64(),
		LedgerEntryID:     uuidPtrString(appointment.LedgerEntryID),
		CompletedAt:       appointment.CompletedAt,
		CancelledAt:       appointment.CancelledAt,
		CancelReason:      appointment.CancelReason,
		Notes:             appointment.Notes,
		CreatedAt:         appointment.CreatedAt,
		UpdatedAt:         appointment.UpdatedAt,
		Version:           appointment.Version,
	}
	if appointment.StandalonePrice != nil {
		price := appointment.StandalonePrice.InexactFloat64()
		response.StandalonePrice = &price
	}
	return response
}

// RegisterServicePayment godoc
// @ID           registerServicePayment
//
//	@Summary		Pay standalone service
//	@Description	Settle a completed appointment's standalone service charge through the payment flow
//	@Tags			agendamentos
//	@Accept			json
//	@Produce		json
//	@Param			id				path		string					true	"Appointment ID"
//	@Param			Idempotency-Key	header		string					false	"Idempotency key deduplicating replays"
//	@Param			request			body		ServicePaymentRequest	true	"Service payment request"
//	@Success		201				{object}	APIResponse[ServicePaymentResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		422				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/agendamentos/{id}/pagamento-servico [post]
func (h *AppointmentHandler) RegisterServicePayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid appointment ID")
		return
	}

	var req ServicePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	idempotencyKey := c.GetHeader("Idempotency-Key")
	if idempotencyKey == "" {
		idempotencyKey = req.IdempotencyKey
	}

	serviceReq := schedulingapp.ServicePaymentRequest{
		TenantID:       tenantID,
		AppointmentID:  appointmentID,
		Method:         ledger.PaymentMethod(req.Method),
		Details:        toPaymentDetails(req.Details),
		Notes:          req.Notes,
		IdempotencyKey: idempotencyKey,
	}
	if req.Amount != nil {
		serviceReq.Amount = toDecimalPtr(*req.Amount)
	}

	result, err := h.service.RegisterServicePayment(c.Request.Context(), serviceReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.Response{
		Success: true,
		Data: ServicePaymentResponse{
			Appointment: toAppointmentResponse(result.Appointment),
			Entry:       toLedgerEntryResponse(result.Entry),
			Payment:     toPaymentResponse(result.Payment),
		},
	})
}

// RegisterRoutes registers the appointment routes
func (h *AppointmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	agendamentos := rg.Group("/agendamentos")
	{
		agendamentos.GET("", h.ListAppointments)
		agendamentos.GET("/:id", h.GetAppointment)
		agendamentos.POST("", h.CreateAppointment)
		agendamentos.POST("/:id/concluir", h.CompleteAppointment)
		agendamentos.POST("/:id/cancelar", h.CancelAppointment)
		agendamentos.POST("/:id/pagamento-servico", h.RegisterServicePayment)
	}
}

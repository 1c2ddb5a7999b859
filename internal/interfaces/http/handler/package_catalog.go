package handler

import (
	"net/http"
	"time"

	packsapp "github.com/studiobeleza/backend/internal/application/packs"
	"github.com/studiobeleza/backend/internal/domain/packs"
	"github.com/studiobeleza/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PackageCatalogHandler handles package definition (pacote) API endpoints
type PackageCatalogHandler struct {
	BaseHandler
	service *packsapp.PackageService
}

// NewPackageCatalogHandler creates a new PackageCatalogHandler
func NewPackageCatalogHandler(service *packsapp.PackageService) *PackageCatalogHandler {
	return &PackageCatalogHandler{
		service: service,
	}
}

// ===================== Request/Response DTOs =====================

// PackageDefinitionResponse represents a package definition in API responses
//
//	@Description	Package definition response
type PackageDefinitionResponse struct {
	ID           string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TenantID     string    `json:"tenantId" example:"550e8400-e29b-41d4-a716-446655440001"`
	Name         string    `json:"nome" example:"Pacote 10 Massagens"`
	Description  string    `json:"descricao,omitempty"`
	Sessions     int       `json:"sessoes" example:"10"`
	TotalValue   float64   `json:"valorTotal" example:"450.00"`
	SessionValue float64   `json:"valorSessao" example:"45.00"`
	ValidityDays int       `json:"diasValidade" example:"90"`
	Active       bool      `json:"ativo"`
	CreatedAt    time.Time `json:"criadoEm"`
	UpdatedAt    time.Time `json:"atualizadoEm"`
	Version      int       `json:"versao" example:"1"`
}

// CreatePackageRequest represents a request to create a package definition
//
//	@Description	Create package request
type CreatePackageRequest struct {
	Name         string  `json:"nome" binding:"required" example:"Pacote 10 Massagens"`
	Description  string  `json:"descricao"`
	Sessions     int     `json:"sessoes" binding:"required,gt=0" example:"10"`
	TotalValue   float64 `json:"valorTotal" binding:"required,gt=0" example:"450.00"`
	ValidityDays int     `json:"diasValidade" binding:"omitempty,gte=0" example:"90"`
}

// UpdatePackageRequest represents a request to update a package definition
//
//	@Description	Update package request
type UpdatePackageRequest struct {
	Name         string  `json:"nome" binding:"required" example:"Pacote 10 Massagens"`
	Description  string  `json:"descricao"`
	Sessions     int     `json:"sessoes" binding:"required,gt=0" example:"10"`
	TotalValue   float64 `json:"valorTotal" binding:"required,gt=0" example:"450.00"`
	ValidityDays int     `json:"diasValidade" binding:"omitempty,gte=0" example:"90"`
}

// ===================== Handlers =====================

// ListPackages godoc
// @ID           listPackages
//
//	@Summary		List packages
//	@Description	Get the package catalog; pass ativos=true to hide deactivated packages
//	@Tags			pacotes
//	@Produce		json
//	@Param			ativos	query		bool	false	"Only active packages"
//	@Success		200		{object}	APIResponse[[]PackageDefinitionResponse]
//	@Failure		401		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/pacotes [get]
func (h *PackageCatalogHandler) ListPackages(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	activeOnly := c.Query("ativos") == "true"

	definitions, err := h.service.ListPackages(c.Request.Context(), tenantID, activeOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := make([]PackageDefinitionResponse, len(definitions))
	for i := range definitions {
		response[i] = toPackageDefinitionResponse(&definitions[i])
	}

	h.Success(c, response)
}

// GetPackage godoc
// @ID           getPackage
//
//	@Summary		Get package by ID
//	@Description	Get a single package definition by its ID
//	@Tags			pacotes
//	@Produce		json
//	@Param			id	path		string	true	"Package ID"
//	@Success		200	{object}	APIResponse[PackageDefinitionResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/pacotes/{id} [get]
func (h *PackageCatalogHandler) GetPackage(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	packageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid package ID")
		return
	}

	definition, err := h.service.GetPackage(c.Request.Context(), tenantID, packageID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toPackageDefinitionResponse(definition))
}

// CreatePackage godoc
// @ID           createPackage
//
//	@Summary		Create package
//	@Description	Create a new package definition in the catalog
//	@Tags			pacotes
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreatePackageRequest	true	"Package creation request"
//	@Success		201		{object}	APIResponse[PackageDefinitionResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/pacotes [post]
func (h *PackageCatalogHandler) CreatePackage(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	var req CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	definition, err := h.service.CreatePackage(c.Request.Context(), packsapp.CreatePackageRequest{
		TenantID:     tenantID,
		Name:         req.Name,
		Description:  req.Description,
		Sessions:     req.Sessions,
		TotalValue:   toDecimal(req.TotalValue),
		ValidityDays: req.ValidityDays,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.Response{
		Success: true,
		Data:    toPackageDefinitionResponse(definition),
	})
}

// UpdatePackage godoc
// @ID           updatePackage
//
//	@Summary		Update package
//	@Description	Update catalog data; purchases already sold keep the terms they were sold under
//	@Tags			pacotes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Package ID"
//	@Param			request	body		UpdatePackageRequest	true	"Package update request"
//	@Success		200		{object}	APIResponse[PackageDefinitionResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/pacotes/{id} [put]
func (h *PackageCatalogHandler) UpdatePackage(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	packageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid package ID")
		return
	}

	var req UpdatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	definition, err := h.service.UpdatePackage(c.Request.Context(), packsapp.UpdatePackageRequest{
		TenantID:     tenantID,
		PackageID:    packageID,
		Name:         req.Name,
		Description:  req.Description,
		Sessions:     req.Sessions,
		TotalValue:   toDecimal(req.TotalValue),
		ValidityDays: req.ValidityDays,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toPackageDefinitionResponse(definition))
}

// ActivatePackage godoc
// @ID           activatePackage
//
//	@Summary		Activate package
//	@Description	Put a package back on sale
//	@Tags			pacotes
//	@Produce		json
//	@Param			id	path		string	true	"Package ID"
//	@Success		200	{object}	APIResponse[PackageDefinitionResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/pacotes/{id}/ativar [post]
func (h *PackageCatalogHandler) ActivatePackage(c *gin.Context) {
	h.setActive(c, true)
}

// DeactivatePackage godoc
// @ID           deactivatePackage
//
//	@Summary		Deactivate package
//	@Description	Remove a package from sale without touching existing purchases
//	@Tags			pacotes
//	@Produce		json
//	@Param			id	path		string	true	"Package ID"
//	@Success		200	{object}	APIResponse[PackageDefinitionResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/pacotes/{id}/desativar [post]
func (h *PackageCatalogHandler) DeactivatePackage(c *gin.Context) {
	h.setActive(c, false)
}

func (h *PackageCatalogHandler) setActive(c *gin.Context, active bool) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	packageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid package ID")
		return
	}

	definition, err := h.service.SetPackageActive(c.Request.Context(), tenantID, packageID, active)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toPackageDefinitionResponse(definition))
}

// DeletePackage godoc
// @ID           deletePackage
//
//	@Summary		Delete package
//	@Description	Soft delete a package definition
//	@Tags			pacotes
//	@Produce		json
//	@Param			id	path		string	true	"Package ID"
//	@Success      200 {object} SuccessResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/pacotes/{id} [delete]
func (h *PackageCatalogHandler) DeletePackage(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	packageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid package ID")
		return
	}

	if err := h.service.DeletePackage(c.Request.Context(), tenantID, packageID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, nil)
}

// ===================== Helper Functions =====================

func toPackageDefinitionResponse(definition *packs.PackageDefinition) PackageDefinitionResponse {
	return PackageDefinitionResponse{
		ID:           definition.ID.String(),
		TenantID:     definition.TenantID.String(),
		Name:         definition.Name,
		Description:  definition.Description,
		Sessions:     definition.Sessions,
		TotalValue:   definition.TotalValue.InexactFloat64(),
		SessionValue: definition.SessionValue().InexactFloat64(),
		ValidityDays: definition.ValidityDays,
		Active:       definition.Active,
		CreatedAt:    definition.CreatedAt,
		UpdatedAt:    definition.UpdatedAt,
		Version:      definition.Version,
	}
}

// RegisterRoutes registers the package catalog routes
func (h *PackageCatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	pacotes := rg.Group("/pacotes")
	{
		pacotes.GET("", h.ListPackages)
		pacotes.GET("/:id", h.GetPackage)
		pacotes.POST("", h.CreatePackage)
		pacotes.PUT("/:id", h.UpdatePackage)
		pacotes.POST("/:id/ativar", h.ActivatePackage)
		pacotes.POST("/:id/desativar", h.DeactivatePackage)
		pacotes.DELETE("/:id", h.DeletePackage)
	}
}

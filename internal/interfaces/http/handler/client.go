package handler

import (
	appcrm "github.com/coachpoint/backend/internal/application/crm"
	"github.com/coachpoint/backend/internal/domain/shared"
	"github.com/coachpoint/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientHandler serves CRM client management endpoints for dealership staff
type ClientHandler struct {
	BaseHandler
	clientService *appcrm.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *appcrm.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		BaseHandler:   NewBaseHandler(logger),
		clientService: clientService,
	}
}

// ListClientsRequest carries list query parameters
type ListClientsRequest struct {
	dto.ListRequest
	Status        string `form:"status" binding:"omitempty,oneof=lead active archived"`
	PortalEnabled *bool  `form:"portal_enabled"`
}

// SetPortalAccessRequest toggles a client's portal login
type SetPortalAccessRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// Create registers a new client
// POST /api/v1/clients
func (h *ClientHandler) Create(c *gin.Context) {
	var req appcrm.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), getTenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, client)
}

// Get returns a single client
// GET /api/v1/clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	client, err := h.clientService.Get(c.Request.Context(), getTenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// List returns clients with pagination and filtering
// GET /api/v1/clients
func (h *ClientHandler) List(c *gin.Context) {
	req := ListClientsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Filters:  map[string]interface{}{},
	}
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}
	if req.PortalEnabled != nil {
		filter.Filters["portal_enabled"] = *req.PortalEnabled
	}

	result, err := h.clientService.List(c.Request.Context(), getTenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update edits a client's contact details
// PUT /api/v1/clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req appcrm.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), getTenantID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// Activate promotes a client to active status
// POST /api/v1/clients/:id/activate
func (h *ClientHandler) Activate(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	client, err := h.clientService.Activate(c.Request.Context(), getTenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// Archive archives a client and revokes portal access
// POST /api/v1/clients/:id/archive
func (h *ClientHandler) Archive(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	client, err := h.clientService.Archive(c.Request.Context(), getTenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// SetPortalAccess grants or revokes the client's portal login
// PUT /api/v1/clients/:id/portal-access
func (h *ClientHandler) SetPortalAccess(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req SetPortalAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	client, err := h.clientService.SetPortalAccess(c.Request.Context(), getTenantID(c), id, *req.Enabled)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// RecordCharge adds a charge to the client's account
// POST /api/v1/clients/:id/charges
func (h *ClientHandler) RecordCharge(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req appcrm.RecordChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	client, err := h.clientService.RecordCharge(c.Request.Context(), getTenantID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// RecordPayment applies a payment to the client's account
// POST /api/v1/clients/:id/payments
func (h *ClientHandler) RecordPayment(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req appcrm.RecordChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	client, err := h.clientService.RecordPayment(c.Request.Context(), getTenantID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// bindID parses the :id path parameter, responding with a validation error
// on malformed ids
func (h *ClientHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.Error(c, dto.ErrCodeInvalidInput, "Invalid id")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.Error(c, dto.ErrCodeInvalidInput, "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chanikul/edenclinic/internal/server/http/dto"
	"github.com/chanikul/edenclinic/internal/usecase"
)

// ClientHandler serves back-office patient management.
type ClientHandler struct {
	clients *usecase.ClientUseCase
}

// NewClientHandler creates ClientHandler.
func NewClientHandler(clients *usecase.ClientUseCase) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// List handles GET /api/admin/clients.
func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.clients.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromClients(clients))
}

// Get handles GET /api/admin/clients/:id.
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	client, err := h.clients.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromClient(client))
}

// Create handles POST /api/admin/clients.
func (h *ClientHandler) Create(c *gin.Context) {
	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	client, err := h.clients.Create(c.Request.Context(), CurrentAdmin(c), req.Email, req.Name, req.DateOfBirth, req.Mobile)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromClient(client))
}

// Update handles PATCH /api/admin/clients/:id.
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	client, err := h.clients.Update(c.Request.Context(), CurrentAdmin(c), id, req.Name, req.Mobile, req.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromClient(client))
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chanikul/edenclinic/internal/server/http/dto"
	"github.com/chanikul/edenclinic/internal/usecase"
)

// PatientHandler serves the signed-in patient portal: account details,
// addresses, saved cards, order history and released results.
type PatientHandler struct {
	clients   *usecase.ClientUseCase
	orders    *usecase.OrderUseCase
	results   *usecase.ResultUseCase
	addresses *usecase.AddressUseCase
}

// NewPatientHandler creates PatientHandler.
func NewPatientHandler(
	clients *usecase.ClientUseCase,
	orders *usecase.OrderUseCase,
	results *usecase.ResultUseCase,
	addresses *usecase.AddressUseCase,
) *PatientHandler {
	return &PatientHandler{clients: clients, orders: orders, results: results, addresses: addresses}
}

// Account handles GET /api/client/account.
func (h *PatientHandler) Account(c *gin.Context) {
	client := CurrentClient(c)
	c.JSON(http.StatusOK, dto.FromClient(client))
}

// UpdateAccount handles PATCH /api/client/account.
func (h *PatientHandler) UpdateAccount(c *gin.Context) {
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	client, err := h.clients.UpdateOwn(c.Request.Context(), CurrentClient(c).ID, req.Name, req.Mobile)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromClient(client))
}

// Orders handles GET /api/client/orders.
func (h *PatientHandler) Orders(c *gin.Context) {
	orders, err := h.orders.ListByClient(c.Request.Context(), CurrentClient(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrders(orders))
}

// Results handles GET /api/client/test-results.
func (h *PatientHandler) Results(c *gin.Context) {
	results, err := h.results.ListByClient(c.Request.Context(), CurrentClient(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromResults(results))
}

// Addresses handles GET /api/client/addresses.
func (h *PatientHandler) Addresses(c *gin.Context) {
	addresses, err := h.addresses.List(c.Request.Context(), CurrentClient(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromAddresses(addresses))
}

// CreateAddress handles POST /api/client/addresses.
func (h *PatientHandler) CreateAddress(c *gin.Context) {
	var req dto.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	address, err := h.addresses.Create(c.Request.Context(), CurrentClient(c).ID, addressInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromAddress(address))
}

// UpdateAddress handles PATCH /api/client/addresses/:id.
func (h *PatientHandler) UpdateAddress(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	address, err := h.addresses.Update(c.Request.Context(), CurrentClient(c).ID, id, addressInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromAddress(address))
}

// DeleteAddress handles DELETE /api/client/addresses/:id.
func (h *PatientHandler) DeleteAddress(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.addresses.Delete(c.Request.Context(), CurrentClient(c).ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PaymentMethods handles GET /api/client/payment-methods.
func (h *PatientHandler) PaymentMethods(c *gin.Context) {
	cards, err := h.clients.PaymentMethods(c.Request.Context(), CurrentClient(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paymentMethods": cards})
}

// SetDefaultPaymentMethod handles POST /api/payment-methods/default.
func (h *PatientHandler) SetDefaultPaymentMethod(c *gin.Context) {
	var req dto.DefaultPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PaymentMethodID == "" {
		writeError(c, http.StatusBadRequest, "paymentMethodId is required")
		return
	}

	if err := h.clients.SetDefaultPaymentMethod(c.Request.Context(), CurrentClient(c), req.PaymentMethodID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func addressInput(req dto.AddressRequest) usecase.AddressInput {
	return usecase.AddressInput{
		Type:      req.Type,
		Line1:     req.Line1,
		Line2:     req.Line2,
		City:      req.City,
		Postcode:  req.Postcode,
		Country:   req.Country,
		IsDefault: req.IsDefault,
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chanikul/edenclinic/internal/server/http/dto"
	"github.com/chanikul/edenclinic/internal/usecase"
)

// CheckoutHandler serves the public storefront: catalog browsing, order
// placement and the post-payment verification page.
type CheckoutHandler struct {
	checkout *usecase.CheckoutUseCase
	catalog  *usecase.CatalogUseCase
}

// NewCheckoutHandler creates CheckoutHandler.
func NewCheckoutHandler(checkout *usecase.CheckoutUseCase, catalog *usecase.CatalogUseCase) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, catalog: catalog}
}

// ListTests handles GET /api/blood-tests.
func (h *CheckoutHandler) ListTests(c *gin.Context) {
	tests, err := h.catalog.List(c.Request.Context(), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBloodTests(tests))
}

// GetTest handles GET /api/blood-tests/:slug.
func (h *CheckoutHandler) GetTest(c *gin.Context) {
	test, err := h.catalog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBloodTest(test))
}

// Checkout handles POST /api/checkout. A signed-in patient gets the order
// attached to their account; guests order with just the form details.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	checkoutReq := usecase.CheckoutRequest{
		Name:        req.Name,
		Email:       req.Email,
		DateOfBirth: req.DateOfBirth,
		Mobile:      req.Mobile,
		TestSlug:    req.TestSlug,
		Notes:       req.Notes,
		Consent:     req.Consent,
	}
	if client := CurrentClient(c); client != nil {
		checkoutReq.ClientID = &client.ID
	}

	order, payURL, err := h.checkout.PlaceOrder(c.Request.Context(), checkoutReq)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": payURL, "orderId": order.ID})
}

// VerifyPayment handles GET /api/verify-payment?session_id=.
func (h *CheckoutHandler) VerifyPayment(c *gin.Context) {
	session, err := h.checkout.VerifyPayment(c.Request.Context(), c.Query("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.VerifyPaymentResponse{
		Status:        session.Status,
		PaymentStatus: session.PaymentStatus,
		OrderID:       session.OrderRef,
	})
}

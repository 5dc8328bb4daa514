package delivery

import (
	"net/http"

	"pos_service/internal/domain"
	"pos_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CartHandler struct {
	carts    usecase.CartUseCase
	checkout usecase.CheckoutUseCase
	log      *logrus.Logger
}

func NewCartHandler(carts usecase.CartUseCase, checkout usecase.CheckoutUseCase, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		checkout: checkout,
		log:      logger,
	}
}

func (h *CartHandler) RegisterRoutes(router gin.IRouter) {
	carts := router.Group("/carts")
	{
		carts.POST("", h.NewCart)
		carts.GET("/:id", h.GetCart)
		carts.POST("/:id/items", h.AdjustItem)
		carts.PUT("/:id/customer", h.SetCustomer)
		carts.POST("/:id/checkout", h.Checkout)
	}
	router.GET("/payments/qris", h.PaymentLink)
}

type adjustItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Delta     int    `json:"delta"`
}

type customerRequest struct {
	CustomerName string `json:"customer_name"`
}

type checkoutRequest struct {
	PaymentMethod string  `json:"payment_method" binding:"required"`
	CustomerName  *string `json:"customer_name"`
}

func (h *CartHandler) NewCart(c *gin.Context) {
	cart := h.carts.NewCart(c.Request.Context())
	SuccessResponse(c, http.StatusCreated, "Cart created successfully", cart)
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.carts.GetCart(c.Request.Context(), c.Param("id"))
	if err != nil {
		FailureResponse(c, err, "Failed to retrieve cart", nil)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart retrieved successfully", cart)
}

func (h *CartHandler) AdjustItem(c *gin.Context) {
	cartID := c.Param("id")
	var req adjustItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for cart %s item: %v", cartID, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cart, err := h.carts.AdjustItem(c.Request.Context(), cartID, req.ProductID, req.Delta)
	if err != nil {
		h.log.Warnf("Failed to adjust product %s in cart %s: %v", req.ProductID, cartID, err)
		FailureResponse(c, err, "Failed to update cart", nil)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart updated successfully", cart)
}

func (h *CartHandler) SetCustomer(c *gin.Context) {
	cartID := c.Param("id")
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cart, err := h.carts.SetCustomerName(c.Request.Context(), cartID, req.CustomerName)
	if err != nil {
		FailureResponse(c, err, "Failed to update customer", nil)
		return
	}
	SuccessResponse(c, http.StatusOK, "Customer updated successfully", cart)
}

func (h *CartHandler) Checkout(c *gin.Context) {
	cartID := c.Param("id")
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for checkout of cart %s: %v", cartID, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.checkout.Checkout(c.Request.Context(), usecase.CheckoutRequest{
		CartID:        cartID,
		CustomerName:  req.CustomerName,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.log.Errorf("Checkout of cart %s failed: %v", cartID, err)
		if domain.KindOf(err) == domain.KindRenderFailed && result != nil {
			FailureResponse(c, err, "Transaction recorded but receipt failed", result)
			return
		}
		FailureResponse(c, err, "Checkout failed", nil)
		return
	}
	if result == nil {
		SuccessResponse(c, http.StatusOK, "Cart is empty, nothing to check out", nil)
		return
	}

	h.log.Infof("Checkout of cart %s recorded as transaction %s", cartID, result.Transaction.ID)
	SuccessResponse(c, http.StatusCreated, "Checkout completed successfully", result)
}

func (h *CartHandler) PaymentLink(c *gin.Context) {
	cartID := c.Query("cart_id")
	if cartID == "" {
		ErrorResponse(c, http.StatusBadRequest, "cart_id is required")
		return
	}
	link, err := h.checkout.PaymentLink(c.Request.Context(), cartID)
	if err != nil {
		FailureResponse(c, err, "Failed to prepare QRIS payment", nil)
		return
	}
	SuccessResponse(c, http.StatusOK, "QRIS payment link", link)
}

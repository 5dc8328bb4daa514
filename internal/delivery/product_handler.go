package delivery

import (
	"net/http"
	"strconv"

	"pos_service/internal/domain"
	"pos_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ProductHandler struct {
	useCase usecase.ProductUseCase
	log     *logrus.Logger
}

func NewProductHandler(uc usecase.ProductUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ProductHandler) RegisterRoutes(router gin.IRouter) {
	products := router.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProductByID)
		products.PATCH("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}

// productRequest accepts the price either as the form's string or as a
// JSON number.
type productRequest struct {
	Name     string      `json:"name"`
	Price    interface{} `json:"price"`
	ImageURL string      `json:"image_url"`
}

func (r productRequest) form() usecase.ProductForm {
	form := usecase.ProductForm{Name: r.Name, ImageURL: r.ImageURL}
	switch v := r.Price.(type) {
	case string:
		form.Price = v
	case float64:
		form.Price = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return form
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for create product: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.useCase.CreateProduct(c.Request.Context(), req.form())
	if err != nil {
		h.log.Errorf("Failed to create product '%s': %v", req.Name, err)
		FailureResponse(c, err, "Failed to create product", nil)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Product created successfully", created)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	order := domain.ProductOrder(c.DefaultQuery("order", string(domain.ProductOrderName)))
	if !domain.IsValidProductOrder(order) {
		h.log.Warnf("Invalid product order parameter: %s", order)
		ErrorResponse(c, http.StatusBadRequest, "Invalid order, expected 'name' or 'newest'")
		return
	}

	products := h.useCase.ListProducts(c.Request.Context(), order, c.Query("q"))
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", products)
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id := c.Param("id")
	product, err := h.useCase.GetProductByID(c.Request.Context(), id)
	if err != nil {
		h.log.Warnf("Failed to get product by ID %s: %v", id, err)
		FailureResponse(c, err, "Failed to retrieve product", nil)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id := c.Param("id")
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for update product ID %s: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updated, err := h.useCase.UpdateProduct(c.Request.Context(), id, req.form())
	if err != nil {
		h.log.Errorf("Failed to update product ID %s: %v", id, err)
		FailureResponse(c, err, "Failed to update product", nil)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product updated successfully", updated)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := h.useCase.DeleteProduct(c.Request.Context(), id); err != nil {
		h.log.Errorf("Failed to delete product ID %s: %v", id, err)
		FailureResponse(c, err, "Failed to delete product", nil)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product deleted successfully", nil)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"puntoventa/internal/domain/catalogs/product"
	"puntoventa/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves the product catalog endpoints.
type ProductHandler struct {
	*BaseHandler
	svc *product.Service
}

// NewProductHandler creates a product handler.
func NewProductHandler(svc *product.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: NewBaseHandler(), svc: svc}
}

// Create adds a new product to the catalog.
// POST /api/v1/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ProductResult{Product: result.Product, Warnings: result.Warnings})
}

// Update replaces a product's editable fields.
// PUT /api/v1/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), productID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ProductResult{Product: result.Product, Warnings: result.Warnings})
}

// Get returns a product by ID.
// GET /api/v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.svc.Get(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// GetByCode looks a product up by its catalog code or barcode.
// GET /api/v1/products/code/:code
func (h *ProductHandler) GetByCode(c *gin.Context) {
	p, err := h.svc.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// List returns products with optional filters.
// GET /api/v1/products?q=&category=&brand=&active=&lowStock=
func (h *ProductHandler) List(c *gin.Context) {
	limit, offset := h.Pagination(c)
	filter := product.Filter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Brand:    c.Query("brand"),
		LowStock: c.Query("lowStock") == "true",
		Limit:    limit,
		Offset:   offset,
	}
	if v := c.Query("active"); v != "" {
		active := v == "true"
		filter.Active = &active
	}

	items, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse[*product.Product]{Items: items, Total: total, Limit: limit, Offset: offset})
}

// Delete deactivates a product.
// DELETE /api/v1/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Restock registers incoming stock for a product.
// POST /api/v1/products/:id/restock
func (h *ProductHandler) Restock(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.RestockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.svc.Restock(c.Request.Context(), productID, product.RestockInput{
		Cases: req.Cases,
		Units: req.Units,
		Note:  req.Note,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

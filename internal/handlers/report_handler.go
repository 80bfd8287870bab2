package handlers

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/developia-II/catalog-api/internal/adapters/repository"
	"github.com/developia-II/catalog-api/utils"
)

const (
	defaultLowStockThreshold = 10
	defaultMinDiscount       = 10.0
)

// ReportHandler serves the read-only product reports.
type ReportHandler struct {
	base
	Products   repository.ProductRepository
	Categories repository.CategoryRepository
}

func NewReportHandler(products repository.ProductRepository, categories repository.CategoryRepository, timeout time.Duration) *ReportHandler {
	return &ReportHandler{base: newBase(timeout), Products: products, Categories: categories}
}

// GetLowStockProducts lists active products with a variant at or below
// ?threshold= units.
func (h *ReportHandler) GetLowStockProducts(c *gin.Context) {
	threshold := defaultLowStockThreshold
	if raw, ok := c.GetQuery("threshold"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fail(c, utils.BadRequest("Validation error: threshold must be a non-negative integer"))
			return
		}
		threshold = n
	}

	ctx, cancel := h.context(c)
	defer cancel()

	products, err := h.Products.FindLowStock(ctx, threshold)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.ListResponse(len(products), gin.H{"products": products}))
}

func (h *ReportHandler) GetProductsByCategory(c *gin.Context) {
	categoryID, err := pathID(c, "categoryId", "category")
	if err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	ok, err := h.Categories.Exists(ctx, categoryID)
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		fail(c, utils.NotFound("category"))
		return
	}

	products, err := h.Products.FindActiveByCategory(ctx, categoryID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.ListResponse(len(products), gin.H{"products": products}))
}

func (h *ReportHandler) GetDiscountedProducts(c *gin.Context) {
	minDiscount := defaultMinDiscount
	if raw, ok := c.GetQuery("minDiscount"); ok {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			fail(c, utils.BadRequest("Validation error: minDiscount must be a non-negative number"))
			return
		}
		minDiscount = f
	}

	ctx, cancel := h.context(c)
	defer cancel()

	products, err := h.Products.FindDiscounted(ctx, minDiscount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.ListResponse(len(products), gin.H{"products": products}))
}

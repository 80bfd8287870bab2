package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/developia-II/catalog-api/internal/adapters/repository"
	"github.com/developia-II/catalog-api/internal/apifeatures"
	"github.com/developia-II/catalog-api/internal/events"
	"github.com/developia-II/catalog-api/internal/models"
	"github.com/developia-II/catalog-api/internal/validation"
	"github.com/developia-II/catalog-api/utils"
)

type ProductHandler struct {
	base
	Products   repository.ProductRepository
	Categories repository.CategoryRepository
	Events     events.Publisher
}

func NewProductHandler(products repository.ProductRepository, categories repository.CategoryRepository, publisher events.Publisher, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		base:       newBase(timeout),
		Products:   products,
		Categories: categories,
		Events:     publisher,
	}
}

func (h *ProductHandler) GetAllProducts(c *gin.Context) {
	q, err := apifeatures.New(c.Request.URL.Query(), apifeatures.ProductSpec).
		Filter().
		Search().
		Sort().
		LimitFields().
		Paginate().
		Query()
	if err != nil {
		fail(c, utils.BadRequest(err.Error()))
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	products, err := h.Products.Find(ctx, q)
	if err != nil {
		fail(c, err)
		return
	}
	shaped, err := apifeatures.Shape(products, q.Fields)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.ListResponse(len(products), gin.H{"products": shaped}))
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := pathID(c, "id", "product")
	if err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	product, err := h.Products.FindByID(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if product == nil {
		fail(c, utils.NotFound("product"))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse(gin.H{"product": product}))
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input models.CreateProductInput
	if err := bind(c, &input); err != nil {
		fail(c, err)
		return
	}
	if err := validateProduct(input, input.Variants); err != nil {
		fail(c, err)
		return
	}
	categoryID, err := primitive.ObjectIDFromHex(input.Category)
	if err != nil {
		fail(c, utils.BadRequest("Validation error: category must be a valid id"))
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.requireCategory(c, categoryID); err != nil {
		fail(c, err)
		return
	}

	product := input.ToProduct(categoryID, time.Now())
	if err := h.Products.Create(ctx, &product); err != nil {
		fail(c, err)
		return
	}

	events.Emit(ctx, h.Events, events.New(events.ProductCreated, product.ID, product))
	c.JSON(http.StatusCreated, utils.SuccessResponse(gin.H{"product": product}))
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := pathID(c, "id", "product")
	if err != nil {
		fail(c, err)
		return
	}

	var input models.UpdateProductInput
	if err := bind(c, &input); err != nil {
		fail(c, err)
		return
	}
	if input.IsEmpty() {
		fail(c, emptyUpdate())
		return
	}
	if err := validateProduct(input, input.Variants); err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if input.Category != nil {
		categoryID, err := primitive.ObjectIDFromHex(*input.Category)
		if err != nil {
			fail(c, utils.BadRequest("Validation error: category must be a valid id"))
			return
		}
		if err := h.requireCategory(c, categoryID); err != nil {
			fail(c, err)
			return
		}
	}

	product, err := h.Products.Update(ctx, id, input.SetDocument())
	if err != nil {
		fail(c, err)
		return
	}
	if product == nil {
		fail(c, utils.NotFound("product"))
		return
	}

	events.Emit(ctx, h.Events, events.New(events.ProductUpdated, product.ID, product))
	c.JSON(http.StatusOK, utils.SuccessResponse(gin.H{"product": product}))
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := pathID(c, "id", "product")
	if err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	deleted, err := h.Products.Delete(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if !deleted {
		fail(c, utils.NotFound("product"))
		return
	}

	events.Emit(ctx, h.Events, events.New(events.ProductDeleted, id, nil))
	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) UpdateVariantStock(c *gin.Context) {
	productID, err := pathID(c, "id", "product")
	if err != nil {
		fail(c, err)
		return
	}
	variantID, err := pathID(c, "variantId", "variant")
	if err != nil {
		fail(c, err)
		return
	}

	var input models.UpdateStockInput
	if err := validation.DecodeJSON(c.Request.Body, &input); err != nil {
		fail(c, err)
		return
	}
	if input.StockCount == nil {
		fail(c, utils.BadRequest("Stock count is required"))
		return
	}
	if err := validation.Struct(input); err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	product, err := h.Products.UpdateVariantStock(ctx, productID, variantID, *input.StockCount)
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		fail(c, utils.NotFound("product"))
		return
	case errors.Is(err, repository.ErrVariantNotFound):
		fail(c, utils.NotFound("variant"))
		return
	case err != nil:
		fail(c, err)
		return
	}

	events.Emit(ctx, h.Events, events.New(events.ProductStockUpdated, product.ID, gin.H{
		"variantId":  variantID.Hex(),
		"stockCount": *input.StockCount,
	}))
	c.JSON(http.StatusOK, utils.SuccessResponse(gin.H{"product": product}))
}

func (h *ProductHandler) requireCategory(c *gin.Context, id primitive.ObjectID) error {
	ctx, cancel := h.context(c)
	defer cancel()

	ok, err := h.Categories.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return utils.NotFound("category")
	}
	return nil
}

func validateProduct(input any, variants []models.VariantInput) error {
	if err := validation.Struct(input); err != nil {
		return err
	}
	if sku, dup := models.DuplicateSKU(variants); dup {
		return utils.BadRequest(fmt.Sprintf("Validation error: variant sku %q is used more than once", sku))
	}
	return nil
}

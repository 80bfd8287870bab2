package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/developia-II/catalog-api/internal/adapters/repository"
	"github.com/developia-II/catalog-api/internal/apifeatures"
	"github.com/developia-II/catalog-api/internal/events"
	"github.com/developia-II/catalog-api/internal/models"
	"github.com/developia-II/catalog-api/internal/validation"
	"github.com/developia-II/catalog-api/utils"
)

type CategoryHandler struct {
	base
	Categories repository.CategoryRepository
	Events     events.Publisher
}

func NewCategoryHandler(categories repository.CategoryRepository, publisher events.Publisher, timeout time.Duration) *CategoryHandler {
	return &CategoryHandler{base: newBase(timeout), Categories: categories, Events: publisher}
}

func (h *CategoryHandler) GetAllCategories(c *gin.Context) {
	q, err := apifeatures.New(c.Request.URL.Query(), apifeatures.CategorySpec).
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

	categories, err := h.Categories.Find(ctx, q)
	if err != nil {
		fail(c, err)
		return
	}
	shaped, err := apifeatures.Shape(categories, q.Fields)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.ListResponse(len(categories), gin.H{"categories": shaped}))
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, err := pathID(c, "id", "category")
	if err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	category, err := h.Categories.FindByIDWithProducts(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if category == nil {
		fail(c, utils.NotFound("category"))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse(gin.H{"category": category}))
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var input models.CreateCategoryInput
	if err := bind(c, &input); err != nil {
		fail(c, err)
		return
	}
	if err := validation.Struct(input); err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	category := input.ToCategory(time.Now())
	if err := h.Categories.Create(ctx, &category); err != nil {
		fail(c, err)
		return
	}

	events.Emit(ctx, h.Events, events.New(events.CategoryCreated, category.ID, category))
	c.JSON(http.StatusCreated, utils.SuccessResponse(gin.H{"category": category}))
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := pathID(c, "id", "category")
	if err != nil {
		fail(c, err)
		return
	}

	var input models.UpdateCategoryInput
	if err := bind(c, &input); err != nil {
		fail(c, err)
		return
	}
	if input.IsEmpty() {
		fail(c, emptyUpdate())
		return
	}
	if err := validation.Struct(input); err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	category, err := h.Categories.Update(ctx, id, input.SetDocument())
	if err != nil {
		fail(c, err)
		return
	}
	if category == nil {
		fail(c, utils.NotFound("category"))
		return
	}

	events.Emit(ctx, h.Events, events.New(events.CategoryUpdated, category.ID, category))
	c.JSON(http.StatusOK, utils.SuccessResponse(gin.H{"category": category}))
}

// DeleteCategory removes the category only. Products that reference it keep
// the dangling id.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := pathID(c, "id", "category")
	if err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	deleted, err := h.Categories.Delete(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if !deleted {
		fail(c, utils.NotFound("category"))
		return
	}

	events.Emit(ctx, h.Events, events.New(events.CategoryDeleted, id, nil))
	c.Status(http.StatusNoContent)
}

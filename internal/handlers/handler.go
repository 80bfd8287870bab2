package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/developia-II/catalog-api/internal/validation"
	"github.com/developia-II/catalog-api/utils"
)

const (
	defaultTimeout = 10 * time.Second
	emptyUpdateMsg = "Validation error: request body must contain at least one field to update"
)

type base struct {
	timeout time.Duration
}

func newBase(timeout time.Duration) base {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return base{timeout: timeout}
}

func (b base) context(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), b.timeout)
}

// bind decodes the body into dst and sanitizes its strings.
func bind[T interface{ Sanitize() }](c *gin.Context, dst T) error {
	if err := validation.DecodeJSON(c.Request.Body, dst); err != nil {
		return err
	}
	dst.Sanitize()
	return nil
}

func pathID(c *gin.Context, param, entity string) (primitive.ObjectID, error) {
	return validation.ObjectID(c.Param(param), entity)
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func emptyUpdate() *utils.AppError {
	return utils.BadRequest(emptyUpdateMsg)
}

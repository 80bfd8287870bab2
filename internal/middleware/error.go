package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/developia-II/catalog-api/utils"
)

const (
	duplicateMessage = "Duplicate field value. Please use another value"
	genericMessage   = "Something went wrong"
)

// ErrorHandler turns the last error recorded on the context into the JSON
// error response. It must run before every other stage.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr := toAppError(err)

		entry := logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": appErr.StatusCode,
		})
		if appErr.StatusCode >= http.StatusInternalServerError {
			entry.WithError(err).Error("Request failed")
		} else {
			entry.Debug(appErr.Message)
		}

		c.AbortWithStatusJSON(appErr.StatusCode, utils.ErrorResponse(appErr.Status, appErr.Message))
	}
}

func toAppError(err error) *utils.AppError {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		msg := fmt.Sprintf("Request body must not exceed %d bytes", maxBytesErr.Limit)
		return utils.NewAppError(msg, http.StatusRequestEntityTooLarge)
	}

	if mongo.IsDuplicateKeyError(err) {
		return utils.BadRequest(duplicateMessage)
	}

	return utils.NewAppError(genericMessage, http.StatusInternalServerError)
}

// Recovery converts panics into a 500 handled by ErrorHandler.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		_ = c.Error(fmt.Errorf("panic: %v", recovered))
		c.Abort()
	})
}

// NotFound answers every unmatched route.
func NotFound(c *gin.Context) {
	_ = c.Error(utils.NewAppError(fmt.Sprintf("Can't find %s on this server", c.Request.URL.Path), http.StatusNotFound))
}

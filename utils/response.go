package utils

import "github.com/gin-gonic/gin"

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// SuccessResponse wraps data in the standard envelope.
func SuccessResponse(data gin.H) gin.H {
	return gin.H{
		"status": StatusSuccess,
		"data":   data,
	}
}

// ListResponse is SuccessResponse plus the number of items returned.
func ListResponse(results int, data gin.H) gin.H {
	return gin.H{
		"status":  StatusSuccess,
		"results": results,
		"data":    data,
	}
}

func ErrorResponse(status, message string) gin.H {
	return gin.H{
		"status":  status,
		"message": message,
	}
}

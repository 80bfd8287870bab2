package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/developia-II/catalog-api/internal/config"
)

// Stage is one named global middleware.
type Stage struct {
	Name    string
	Handler gin.HandlerFunc
}

// Stages lists the global middleware in the order they run. The request
// logger is only part of the chain in development.
func Stages(cfg *config.Config, rateLimit gin.HandlerFunc) []Stage {
	stages := []Stage{
		{Name: "error-handler", Handler: ErrorHandler()},
		{Name: "recovery", Handler: Recovery()},
		{Name: "secure-headers", Handler: SecureHeaders(cfg.IsDevelopment())},
		{Name: "cors", Handler: CORS(cfg.Security)},
	}
	if cfg.IsDevelopment() {
		stages = append(stages, Stage{Name: "request-logger", Handler: RequestLogger()})
	}
	stages = append(stages,
		Stage{Name: "body-limit", Handler: BodyLimit(cfg.Security.BodyLimitBytes)},
		Stage{Name: "rate-limit", Handler: rateLimit},
	)
	return stages
}

func Use(router *gin.Engine, stages []Stage) {
	for _, s := range stages {
		router.Use(s.Handler)
	}
}

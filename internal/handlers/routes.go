package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/developia-II/catalog-api/internal/adapters/repository"
	"github.com/developia-II/catalog-api/internal/config"
	"github.com/developia-II/catalog-api/internal/events"
	"github.com/developia-II/catalog-api/internal/middleware"
)

type Dependencies struct {
	Config     *config.Config
	Categories repository.CategoryRepository
	Products   repository.ProductRepository
	Events     events.Publisher
	// Uploader is nil when image uploads are disabled.
	Uploader ImageUploader
}

// SetupRoutes registers the API on router. Global middleware is expected to
// be installed already.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	logrus.Info("Setting up routes...")

	publisher := deps.Events
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	timeout := deps.Config.Server.RequestTimeout

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Server is running!",
			"status":  "ok",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "catalog-api",
		})
	})

	productHandler := NewProductHandler(deps.Products, deps.Categories, publisher, timeout)
	categoryHandler := NewCategoryHandler(deps.Categories, publisher, timeout)
	reportHandler := NewReportHandler(deps.Products, deps.Categories, timeout)
	uploadHandler := NewUploadHandler(deps.Uploader)

	api := router.Group("/api/v1")
	{
		products := api.Group("/products")
		{
			products.GET("", productHandler.GetAllProducts)
			products.POST("", productHandler.CreateProduct)

			reports := products.Group("/reports")
			{
				reports.GET("/low-stock", reportHandler.GetLowStockProducts)
				reports.GET("/category/:categoryId", reportHandler.GetProductsByCategory)
				reports.GET("/discounted", reportHandler.GetDiscountedProducts)
			}

			products.GET("/:id", productHandler.GetProduct)
			products.PATCH("/:id", productHandler.UpdateProduct)
			products.DELETE("/:id", productHandler.DeleteProduct)
			products.PATCH("/:id/variants/:variantId/stock", productHandler.UpdateVariantStock)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", categoryHandler.GetAllCategories)
			categories.POST("", categoryHandler.CreateCategory)
			categories.GET("/:id", categoryHandler.GetCategory)
			categories.PATCH("/:id", categoryHandler.UpdateCategory)
			categories.DELETE("/:id", categoryHandler.DeleteCategory)
		}

		api.POST("/uploads/images", uploadHandler.UploadImage)
	}

	router.NoRoute(middleware.NotFound)
}

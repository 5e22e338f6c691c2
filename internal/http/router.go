package http

import (
	"github.com/gin-gonic/gin"
	"github.com/ihorko/product-dashboard/internal/config"
	"github.com/ihorko/product-dashboard/internal/http/controller"
	"github.com/ihorko/product-dashboard/internal/http/middleware"
)

func InitRouter(_ *config.Config, server *gin.Engine, ctr *controller.Controller, productCtr *controller.ProductController) *gin.Engine {
	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(middleware.Recovery())
	server.Use(middleware.RequestID())
	server.Use(middleware.CORS())
	server.Use(middleware.Logger())

	server.GET("/ping", ctr.Ping)

	// Proxy endpoints, mirroring the external product API one-to-one.
	// The single-product id parameter is product_id everywhere.
	api := server.Group("/api")
	{
		api.GET("/products", productCtr.ListProducts)
		api.GET("/product", productCtr.GetProduct)
		api.POST("/product", productCtr.CreateProduct)
		api.PUT("/product", productCtr.UpdateProduct)
	}

	return server
}

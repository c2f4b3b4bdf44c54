package routes

import (
	"github.com/gin-gonic/gin"

	"newmodern_back_end/internal/handlers/order"
	"newmodern_back_end/internal/handlers/product"
	"newmodern_back_end/internal/handlers/user"
)

func RegisterRoutes(r *gin.Engine, orderHandler *order.Handler) {
	api := r.Group("/api")

	// Orders — les chemins 'get/...' sont statiques, ils priment sur '/:id'
	orders := api.Group("/orders")
	{
		orders.GET("/get/totalsales", orderHandler.GetTotalSales)
		orders.GET("/get/count", orderHandler.GetOrderCount)
		orders.GET("/get/userorders/:userid", orderHandler.GetUserOrders)
		orders.GET("/", orderHandler.GetOrders)
		orders.GET("/:id", orderHandler.GetOrderByID)
		orders.POST("/", orderHandler.CreateOrder)
		orders.PUT("/:id", orderHandler.UpdateOrderStatus)
		orders.DELETE("/:id", orderHandler.DeleteOrder)
	}

	// Products
	products := api.Group("/products")
	{
		products.GET("/get/count", product.GetProductCount)
		products.GET("/get/featured/:count", product.GetFeaturedProducts)
		products.GET("/search", product.SearchProducts)
		products.GET("/", product.GetAllProducts)
		products.GET("/:id", product.GetProductByID)
		products.POST("/", product.CreateProduct)
		products.PUT("/:id", product.UpdateProduct)
		products.PUT("/:id/image", product.UploadProductImage)
		products.PUT("/:id/gallery", product.UploadGalleryImages)
		products.DELETE("/:id", product.DeleteProduct)
	}

	// Categories
	categories := api.Group("/categories")
	{
		categories.GET("/", product.GetAllCategories)
		categories.GET("/:id", product.GetCategoryByID)
		categories.POST("/", product.CreateCategory)
		categories.PUT("/:id", product.UpdateCategory)
		categories.DELETE("/:id", product.DeleteCategory)
	}

	// Users
	users := api.Group("/users")
	{
		users.GET("/", user.GetUsers)
		users.GET("/:id", user.GetUserByID)
		users.POST("/", user.CreateUser)
	}
}

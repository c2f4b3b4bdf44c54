package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"newmodern_back_end/internal/config"
	"newmodern_back_end/internal/database"
	"newmodern_back_end/internal/handlers/order"
	"newmodern_back_end/internal/middleware"
	"newmodern_back_end/internal/routes"
	"newmodern_back_end/internal/store"
	"newmodern_back_end/internal/utils"
)

func main() {
	config.Load()

	database.ConnectDatabases()
	defer database.CloseMongo()

	// ✅ Pré-chauffer le cache Redis
	warmupRedisCache()

	// Les handles de collections sont injectés explicitement dans le
	// composant commandes
	orderStore := store.NewOrderStore(
		database.MongoOrdersDB,
		database.MongoProductsDB,
		database.MongoCategoriesDB,
		database.MongoUsersDB,
	)
	orderHandler := order.NewHandler(orderStore)
	orderHandler.Notifier = utils.SendOrderConfirmation

	r := gin.Default()
	r.Use(cors.Default())
	r.Use(middleware.APIRateLimit())

	routes.RegisterRoutes(r, orderHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Serveur newmodern lancé sur le port", port)
	r.Run(":" + port)
}

// warmupRedisCache pré-chauffe le cache Redis pour éviter la latence du premier appel
func warmupRedisCache() {
	ctx := context.Background()
	if err := database.Redis.Ping(ctx).Err(); err == nil {
		log.Println("✅ Cache Redis pré-chauffé")
	}
}

package main

import (
	"fmt"
	"log"
	"os"

	"bidcraft-backend/config"
	"bidcraft-backend/models"
	"bidcraft-backend/routes"
	"bidcraft-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Proposal{},
		&models.LineItem{},
		&models.Material{},
		&models.FollowUpLog{},
	)
}

func main() {
	followUps := services.NewFollowUpService(config.DB)
	followUps.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}

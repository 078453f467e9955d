package routes

import (
	"bidcraft-backend/config"
	"bidcraft-backend/controllers"
	"bidcraft-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"https://app.bidcraft.digital",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Proposal routes
		proposals := api.Group("/proposals")
		{
			proposals.POST("", controllers.CreateProposal)
			proposals.GET("", controllers.GetProposals)
			proposals.GET("/:id", controllers.GetProposal)
			proposals.PUT("/:id", controllers.UpdateProposal)
			proposals.DELETE("/:id", controllers.DeleteProposal)

			// Workflow
			proposals.POST("/:id/review", controllers.ReviewProposal)
			proposals.POST("/:id/transition", controllers.TransitionProposal)
			proposals.GET("/:id/workflow", controllers.GetProposalWorkflow)

			// Pricing
			proposals.GET("/:id/pricing", controllers.GetProposalPricing)

			// Line items
			proposals.POST("/:id/items", controllers.CreateLineItem)
			proposals.PUT("/:id/items/:itemId", controllers.UpdateLineItem)
			proposals.DELETE("/:id/items/:itemId", controllers.DeleteLineItem)
		}

		// Material catalog routes
		materials := api.Group("/materials")
		{
			materials.GET("/suggest", controllers.SuggestMaterialPrice)
			materials.POST("", controllers.CreateMaterial)
			materials.GET("", controllers.GetMaterials)
			materials.GET("/:id", controllers.GetMaterial)
			materials.PUT("/:id", controllers.UpdateMaterial)
			materials.DELETE("/:id", controllers.DeleteMaterial)
		}

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)

		// Settings routes
		profile := api.Group("/profile")
		{
			profile.GET("", controllers.GetProfile)
			profile.PUT("", controllers.UpdateProfile)
		}
	}

	return r
}

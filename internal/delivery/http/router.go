package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/anondate/anondate-backend/internal/delivery/http/handler"
	"github.com/anondate/anondate-backend/internal/delivery/http/middleware"
)

type Router struct {
	authHandler         *handler.AuthHandler
	profileHandler      *handler.ProfileHandler
	matchHandler        *handler.MatchHandler
	conversationHandler *handler.ConversationHandler
	blockHandler        *handler.BlockHandler
	authMiddleware      *middleware.AuthMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	matchHandler *handler.MatchHandler,
	conversationHandler *handler.ConversationHandler,
	blockHandler *handler.BlockHandler,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		authHandler:         authHandler,
		profileHandler:      profileHandler,
		matchHandler:        matchHandler,
		conversationHandler: conversationHandler,
		blockHandler:        blockHandler,
		authMiddleware:      authMiddleware,
	}
}

func (r *Router) Setup() *gin.Engine {
	registerValidations()

	router := gin.Default()
	router.Use(cors.Default())

	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", r.authHandler.Signup)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/logout", r.authMiddleware.RequireAuth(), r.authHandler.Logout)
		}

		protected := api.Group("")
		protected.Use(r.authMiddleware.RequireAuth())
		{
			protected.GET("/profile", r.profileHandler.Get)
			protected.PUT("/profile", r.profileHandler.Update)

			protected.POST("/matches/find", r.matchHandler.Find)

			conversations := protected.Group("/conversations")
			{
				conversations.POST("", r.conversationHandler.Start)
				conversations.GET("", r.conversationHandler.List)
				conversations.GET("/:id/messages", r.conversationHandler.GetMessages)
				conversations.POST("/:id/messages", r.conversationHandler.PostMessage)
				conversations.POST("/:id/reveal", r.conversationHandler.Reveal)
			}

			protected.POST("/block", r.blockHandler.Block)
		}
	}

	return router
}

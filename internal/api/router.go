package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthTimeout = 2 * time.Second

// NewRouter wires every route and the shared middleware onto a gin engine.
func NewRouter(h *Handler, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(requestIDMiddleware(), metricsMiddleware(), loggingMiddleware(), recoveryMiddleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", userIDHeader, requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", h.Identity())
	{
		api.GET("/recipes", h.SearchRecipes)
		api.GET("/recipes/:id", h.GetRecipe)

		api.GET("/favorite-recipes", h.ListFavorites)
		api.POST("/favorite-recipes", h.SaveFavorite)
		api.DELETE("/favorite-recipes/:recipeId", h.DeleteFavorite)

		api.GET("/fridge/items", h.ListFridgeItems)
		api.POST("/fridge/items", h.AddFridgeItem)
		api.GET("/fridge/items/:itemID", h.GetFridgeItem)
		api.DELETE("/fridge/items/:itemID", h.DeleteFridgeItem)

		api.POST("/detect-image", h.DetectIngredient)

		api.POST("/shopping-lists", h.CreateShoppingList)
		api.GET("/shopping-lists/:listID", h.ListShoppingItems)
		api.POST("/shopping-lists/:listID/items", h.AddShoppingItem)
		api.PATCH("/shopping-lists/:listID/items/:itemID", h.CheckShoppingItem)
		api.DELETE("/shopping-lists/:listID/items/:itemID", h.DeleteShoppingItem)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "route not found"})
	})

	return r
}

// Health reports whether the process is up and the database answers.
func (h *Handler) Health(c *gin.Context) {
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			slog.Warn("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "database unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

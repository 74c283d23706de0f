package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GemmaRyan/FoodManagementApp-server/internal/apperr"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/platform/spoonacular"
)

const jsonContentType = "application/json; charset=utf-8"

// SearchRecipes proxies a recipe search to the external recipe API and passes
// its body through untouched.
func (h *Handler) SearchRecipes(c *gin.Context) {
	params := spoonacular.SearchParams{
		Ingredients:  spoonacular.SplitList(c.Query("ingredients")),
		Intolerances: spoonacular.SplitList(c.Query("intolerances")),
		Diet:         strings.TrimSpace(c.Query("diet")),
	}
	// A malformed maxReadyTime is rejected rather than silently dropped.
	if raw := strings.TrimSpace(c.Query("maxReadyTime")); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			h.fail(c, apperr.Validation("maxReadyTime must be a positive integer"))
			return
		}
		params.MaxReadyTime = minutes
	}

	body, err := h.Recipes.SearchRecipes(c.Request.Context(), params)
	if err != nil {
		upstreamCalls.WithLabelValues("spoonacular", "error").Inc()
		h.fail(c, upstream(err, "Failed to fetch recipes"))
		return
	}
	upstreamCalls.WithLabelValues("spoonacular", "ok").Inc()
	c.Data(http.StatusOK, jsonContentType, body)
}

// GetRecipe proxies the detail lookup, nutrition included.
func (h *Handler) GetRecipe(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}

	body, err := h.Recipes.RecipeInformation(c.Request.Context(), id)
	if err != nil {
		upstreamCalls.WithLabelValues("spoonacular", "error").Inc()
		h.fail(c, upstream(err, "Failed to fetch recipe details"))
		return
	}
	upstreamCalls.WithLabelValues("spoonacular", "ok").Inc()
	c.Data(http.StatusOK, jsonContentType, body)
}

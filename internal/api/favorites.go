package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GemmaRyan/FoodManagementApp-server/internal/apperr"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/favorite"
)

type saveFavoriteRequest struct {
	UserID   optionalID `json:"userID"`
	RecipeID optionalID `json:"recipeId"`
	Title    string     `json:"title"`
	Image    *string    `json:"image"`
}

// ListFavorites returns the user's favorites, most recently created first.
func (h *Handler) ListFavorites(c *gin.Context) {
	userID, err := h.userID(c, optionalID{})
	if err != nil {
		h.fail(c, err)
		return
	}

	favorites, err := h.Favorites.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, upstream(err, ""))
		return
	}
	if favorites == nil {
		favorites = []favorite.Recipe{}
	}
	c.JSON(http.StatusOK, favorites)
}

// SaveFavorite creates the favorite or refreshes its title and image.
func (h *Handler) SaveFavorite(c *gin.Context) {
	var req saveFavoriteRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	userID, err := h.userID(c, req.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}

	recipe := &favorite.Recipe{
		UserID:   userID,
		RecipeID: req.RecipeID.Value,
		Title:    req.Title,
		Image:    req.Image,
	}
	if err := recipe.Validate(); err != nil {
		h.fail(c, err)
		return
	}

	saved, err := h.Favorites.UpsertFavorite(c.Request.Context(), recipe)
	if err != nil {
		h.fail(c, upstream(err, ""))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "favorite": saved})
}

// DeleteFavorite removes the favorite for recipeId.
func (h *Handler) DeleteFavorite(c *gin.Context) {
	recipeID, err := pathID(c, "recipeId")
	if err != nil {
		h.fail(c, err)
		return
	}
	userID, err := h.userID(c, optionalID{})
	if err != nil {
		h.fail(c, err)
		return
	}

	deleted, err := h.Favorites.DeleteFavorite(c.Request.Context(), userID, recipeID)
	if err != nil {
		h.fail(c, upstream(err, ""))
		return
	}
	if !deleted {
		h.fail(c, apperr.NotFound("favorite recipe not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": recipeID})
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GemmaRyan/FoodManagementApp-server/internal/apperr"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/fridge"
)

type addIngredientRequest struct {
	UserID optionalID `json:"userID"`
	Name   string     `json:"name"`
}

// ListFridgeItems returns the user's ingredients, newest first.
func (h *Handler) ListFridgeItems(c *gin.Context) {
	userID, err := h.userID(c, optionalID{})
	if err != nil {
		h.fail(c, err)
		return
	}

	items, err := h.Ingredients.ListIngredients(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, upstream(err, ""))
		return
	}
	if items == nil {
		items = []fridge.Ingredient{}
	}
	c.JSON(http.StatusOK, items)
}

// AddFridgeItem finds or creates the named ingredient. A new row answers 201,
// an existing one 200.
func (h *Handler) AddFridgeItem(c *gin.Context) {
	var req addIngredientRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	userID, err := h.userID(c, req.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	name, err := fridge.NormalizeName(req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}

	item, created, err := h.Ingredients.FindOrCreate(c.Request.Context(), userID, name)
	if err != nil {
		h.fail(c, upstream(err, ""))
		return
	}
	recordIngredient(created, "fridge")

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"ok": true, "item": item, "created": created})
}

// GetFridgeItem returns a single ingredient.
func (h *Handler) GetFridgeItem(c *gin.Context) {
	id, err := pathID(c, "itemID")
	if err != nil {
		h.fail(c, err)
		return
	}
	userID, err := h.userID(c, optionalID{})
	if err != nil {
		h.fail(c, err)
		return
	}

	item, err := h.Ingredients.GetIngredient(c.Request.Context(), userID, id)
	if err != nil {
		h.fail(c, upstream(err, ""))
		return
	}
	if item == nil {
		h.fail(c, apperr.NotFound("ingredient not found"))
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteFridgeItem removes an ingredient. Shopping list items that reference
// it are removed with it.
func (h *Handler) DeleteFridgeItem(c *gin.Context) {
	id, err := pathID(c, "itemID")
	if err != nil {
		h.fail(c, err)
		return
	}
	userID, err := h.userID(c, optionalID{})
	if err != nil {
		h.fail(c, err)
		return
	}

	deleted, err := h.Ingredients.DeleteIngredient(c.Request.Context(), userID, id)
	if err != nil {
		h.fail(c, upstream(err, ""))
		return
	}
	if !deleted {
		h.fail(c, apperr.NotFound("ingredient not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": id})
}

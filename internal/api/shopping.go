package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GemmaRyan/FoodManagementApp-server/internal/apperr"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/fridge"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/shopping"
)

type createListRequest struct {
	UserID optionalID `json:"userID"`
}

type addItemRequest struct {
	UserID   optionalID     `json:"userID"`
	Name     string         `json:"name"`
	Quantity optionalNumber `json:"quantity"`
}

type checkItemRequest struct {
	Checked *bool `json:"checked"`
}

var (
	errListNotFound = apperr.NotFound("shopping list not found")
	errItemNotFound = apperr.NotFound("shopping list item not found")
)

// CreateShoppingList creates an empty list.
func (h *Handler) CreateShoppingList(c *gin.Context) {
	var req createListRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	userID, err := h.userID(c, req.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}

	list, err := h.Shopping.CreateList(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, upstream(err, ""))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "listID": list.ID})
}

// ListShoppingItems returns the items of a list in insertion order.
func (h *Handler) ListShoppingItems(c *gin.Context) {
	listID, _, ok := h.ownedList(c, optionalID{})
	if !ok {
		return
	}

	items, err := h.Shopping.ListItems(c.Request.Context(), listID)
	if err != nil {
		h.fail(c, upstream(err, ""))
		return
	}
	if items == nil {
		items = []shopping.ListedItem{}
	}
	c.JSON(http.StatusOK, items)
}

// AddShoppingItem resolves the name to an ingredient and puts it on the list.
// Adding the same ingredient again replaces its quantity.
func (h *Handler) AddShoppingItem(c *gin.Context) {
	var req addItemRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	name, err := fridge.NormalizeName(req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}

	listID, userID, ok := h.ownedList(c, req.UserID)
	if !ok {
		return
	}

	ingredient, created, err := h.Ingredients.FindOrCreate(c.Request.Context(), userID, name)
	if err != nil {
		h.fail(c, upstream(err, ""))
		return
	}
	recordIngredient(created, "shopping")

	item, err := h.Shopping.UpsertItem(c.Request.Context(), listID, ingredient.ID, req.Quantity.Value)
	if err != nil {
		h.fail(c, upstream(err, ""))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "item": item})
}

// CheckShoppingItem sets the checked flag and leaves the quantity alone.
func (h *Handler) CheckShoppingItem(c *gin.Context) {
	listID, itemID, ok := h.itemPath(c)
	if !ok {
		return
	}

	var req checkItemRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if req.Checked == nil {
		h.fail(c, apperr.Validation("checked is required"))
		return
	}
	userID, err := h.userID(c, optionalID{})
	if err != nil {
		h.fail(c, err)
		return
	}

	item, err := h.Shopping.SetChecked(c.Request.Context(), userID, listID, itemID, *req.Checked)
	if err != nil {
		h.fail(c, upstream(err, ""))
		return
	}
	if item == nil {
		h.fail(c, errItemNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": item})
}

// DeleteShoppingItem removes one item from a list.
func (h *Handler) DeleteShoppingItem(c *gin.Context) {
	listID, itemID, ok := h.itemPath(c)
	if !ok {
		return
	}
	userID, err := h.userID(c, optionalID{})
	if err != nil {
		h.fail(c, err)
		return
	}

	deleted, err := h.Shopping.DeleteItem(c.Request.Context(), userID, listID, itemID)
	if err != nil {
		h.fail(c, upstream(err, ""))
		return
	}
	if !deleted {
		h.fail(c, errItemNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": itemID})
}

// ownedList parses :listID, resolves the caller and checks the list belongs
// to them. It writes the error response itself and reports false on failure.
func (h *Handler) ownedList(c *gin.Context, override optionalID) (listID, userID int64, ok bool) {
	listID, err := pathID(c, "listID")
	if err != nil {
		h.fail(c, err)
		return 0, 0, false
	}
	userID, err = h.userID(c, override)
	if err != nil {
		h.fail(c, err)
		return 0, 0, false
	}

	list, err := h.Shopping.GetList(c.Request.Context(), userID, listID)
	if err != nil {
		h.fail(c, upstream(err, ""))
		return 0, 0, false
	}
	if list == nil {
		h.fail(c, errListNotFound)
		return 0, 0, false
	}
	return list.ID, userID, true
}

func (h *Handler) itemPath(c *gin.Context) (int64, int64, bool) {
	listID, err := pathID(c, "listID")
	if err != nil {
		h.fail(c, err)
		return 0, 0, false
	}
	itemID, err := pathID(c, "itemID")
	if err != nil {
		h.fail(c, err)
		return 0, 0, false
	}
	return listID, itemID, true
}

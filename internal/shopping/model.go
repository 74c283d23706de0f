package shopping

import "time"

// UnknownIngredient is shown for items whose ingredient can no longer be resolved.
const UnknownIngredient = "Unknown"

// List is a shopping list owned by a user.
type List struct {
	ID        int64     `json:"listID" db:"id"`
	UserID    int64     `json:"userID" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Item is one ingredient on a list.
type Item struct {
	ID           int64    `json:"itemID" db:"id"`
	ListID       int64    `json:"listID" db:"list_id"`
	IngredientID int64    `json:"ingredientID" db:"ingredient_id"`
	Quantity     *float64 `json:"quantity" db:"quantity"`
	Checked      bool     `json:"checked" db:"checked"`
}

// ListedItem is an item flattened with its ingredient's display name.
type ListedItem struct {
	ItemID       int64    `json:"itemID"`
	Checked      bool     `json:"checked"`
	Quantity     *float64 `json:"quantity"`
	IngredientID int64    `json:"ingredientID"`
	Name         string   `json:"name"`
}

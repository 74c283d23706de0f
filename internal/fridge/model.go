package fridge

import (
	"strings"

	"github.com/GemmaRyan/FoodManagementApp-server/internal/apperr"
)

// Ingredient is an item a user keeps in their fridge.
type Ingredient struct {
	ID     int64  `json:"IngredientID" db:"id"`
	Name   string `json:"name" db:"name"`
	UserID int64  `json:"userID" db:"user_id"`
}

// NormalizeName trims surrounding whitespace and rejects empty names.
func NormalizeName(name string) (string, error) {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return "", apperr.Validation("name is required")
	}
	return clean, nil
}

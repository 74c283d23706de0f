package favorite

import (
	"strings"
	"time"

	"github.com/GemmaRyan/FoodManagementApp-server/internal/apperr"
)

// Recipe is an external recipe a user marked as favorite.
type Recipe struct {
	UserID    int64     `json:"userID" db:"user_id"`
	RecipeID  int64     `json:"recipeId" db:"recipe_id"`
	Title     string    `json:"title" db:"title"`
	Image     *string   `json:"image" db:"image"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Validate trims the title and checks the required fields.
func (r *Recipe) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.RecipeID <= 0 || r.Title == "" {
		return apperr.Validation("recipeId and title are required")
	}
	if r.Image != nil && strings.TrimSpace(*r.Image) == "" {
		r.Image = nil
	}
	return nil
}

package favorite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for favorite recipe data operations.
type Store interface {
	ListFavorites(ctx context.Context, userID int64) ([]Recipe, error)
	UpsertFavorite(ctx context.Context, recipe *Recipe) (*Recipe, error)
	DeleteFavorite(ctx context.Context, userID, recipeID int64) (bool, error)
}

// PostgresStore implements Store for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const upsertFavoriteQuery = `
	INSERT INTO favorite_recipes (user_id, recipe_id, title, image) VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id, recipe_id) DO UPDATE SET title = EXCLUDED.title, image = EXCLUDED.image
	RETURNING user_id, recipe_id, title, image, created_at`

// ListFavorites returns the user's favorites, newest first.
func (s *PostgresStore) ListFavorites(ctx context.Context, userID int64) ([]Recipe, error) {
	recipes := []Recipe{}
	err := s.db.SelectContext(ctx, &recipes,
		"SELECT user_id, recipe_id, title, image, created_at FROM favorite_recipes WHERE user_id = $1 ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite recipes: %w", err)
	}
	return recipes, nil
}

// UpsertFavorite inserts the favorite or overwrites title and image of the
// existing (user, recipe) row. created_at keeps its first-insert value.
func (s *PostgresStore) UpsertFavorite(ctx context.Context, recipe *Recipe) (*Recipe, error) {
	if err := recipe.Validate(); err != nil {
		return nil, err
	}

	var saved Recipe
	err := s.db.QueryRowxContext(ctx, upsertFavoriteQuery,
		recipe.UserID,
		recipe.RecipeID,
		recipe.Title,
		recipe.Image,
	).StructScan(&saved)
	if err != nil {
		return nil, fmt.Errorf("failed to save favorite recipe: %w", err)
	}
	return &saved, nil
}

// DeleteFavorite removes the exact (user, recipe) pair. It reports false when
// nothing matched.
func (s *PostgresStore) DeleteFavorite(ctx context.Context, userID, recipeID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM favorite_recipes WHERE user_id = $1 AND recipe_id = $2", userID, recipeID)
	if err != nil {
		return false, fmt.Errorf("failed to delete favorite recipe: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

package fridge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for ingredient data operations.
type Store interface {
	FindOrCreate(ctx context.Context, userID int64, name string) (*Ingredient, bool, error)
	ListIngredients(ctx context.Context, userID int64) ([]Ingredient, error)
	GetIngredient(ctx context.Context, userID, id int64) (*Ingredient, error)
	DeleteIngredient(ctx context.Context, userID, id int64) (bool, error)
}

// PostgresStore implements Store for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// The unique index on (user_id, lower(name)) turns the lookup and the insert
// into one statement. On conflict the no-op update hands back the existing row
// with its original spelling; xmax is zero only for a freshly inserted tuple.
const findOrCreateQuery = `
	INSERT INTO ingredients (user_id, name) VALUES ($1, $2)
	ON CONFLICT (user_id, lower(name)) DO UPDATE SET name = ingredients.name
	RETURNING id, name, user_id, (xmax = 0) AS created`

// FindOrCreate returns the user's ingredient matching name case-insensitively,
// creating it when absent. The boolean reports whether a row was inserted.
func (s *PostgresStore) FindOrCreate(ctx context.Context, userID int64, name string) (*Ingredient, bool, error) {
	clean, err := NormalizeName(name)
	if err != nil {
		return nil, false, err
	}

	var row struct {
		Ingredient
		Created bool `db:"created"`
	}
	if err := s.db.QueryRowxContext(ctx, findOrCreateQuery, userID, clean).StructScan(&row); err != nil {
		return nil, false, fmt.Errorf("failed to find or create ingredient: %w", err)
	}

	return &row.Ingredient, row.Created, nil
}

// ListIngredients returns the user's ingredients, newest first.
func (s *PostgresStore) ListIngredients(ctx context.Context, userID int64) ([]Ingredient, error) {
	ingredients := []Ingredient{}
	err := s.db.SelectContext(ctx, &ingredients,
		"SELECT id, name, user_id FROM ingredients WHERE user_id = $1 ORDER BY id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

// GetIngredient retrieves one of the user's ingredients by id.
func (s *PostgresStore) GetIngredient(ctx context.Context, userID, id int64) (*Ingredient, error) {
	var ing Ingredient
	err := s.db.GetContext(ctx, &ing,
		"SELECT id, name, user_id FROM ingredients WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Ingredient not found
		}
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	return &ing, nil
}

// DeleteIngredient removes one of the user's ingredients. It reports false
// when nothing matched.
func (s *PostgresStore) DeleteIngredient(ctx context.Context, userID, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM ingredients WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete ingredient: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

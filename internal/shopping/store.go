package shopping

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GemmaRyan/FoodManagementApp-server/internal/apperr"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/database"
)

// Store defines the interface for shopping list data operations.
type Store interface {
	CreateList(ctx context.Context, userID int64) (*List, error)
	GetList(ctx context.Context, userID, listID int64) (*List, error)
	ListItems(ctx context.Context, listID int64) ([]ListedItem, error)
	UpsertItem(ctx context.Context, listID, ingredientID int64, quantity *float64) (*Item, error)
	SetChecked(ctx context.Context, userID, listID, itemID int64, checked bool) (*Item, error)
	DeleteItem(ctx context.Context, userID, listID, itemID int64) (bool, error)
}

// PostgresStore implements Store for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	listItemsQuery = `
	SELECT it.id, it.checked, it.quantity, it.ingredient_id, i.name
	FROM shopping_list_items it
	LEFT JOIN ingredients i ON i.id = it.ingredient_id
	WHERE it.list_id = $1
	ORDER BY it.id ASC`

	upsertItemQuery = `
	INSERT INTO shopping_list_items (list_id, ingredient_id, quantity) VALUES ($1, $2, $3)
	ON CONFLICT (list_id, ingredient_id) DO UPDATE SET quantity = EXCLUDED.quantity
	RETURNING id, list_id, ingredient_id, quantity, checked`

	setCheckedQuery = `
	UPDATE shopping_list_items SET checked = $1
	WHERE id = $2 AND list_id = $3
	  AND list_id IN (SELECT id FROM shopping_lists WHERE user_id = $4)
	RETURNING id, list_id, ingredient_id, quantity, checked`

	deleteItemQuery = `
	DELETE FROM shopping_list_items
	WHERE id = $1 AND list_id = $2
	  AND list_id IN (SELECT id FROM shopping_lists WHERE user_id = $3)`
)

// CreateList creates an empty list for the user.
func (s *PostgresStore) CreateList(ctx context.Context, userID int64) (*List, error) {
	var list List
	err := s.db.QueryRowxContext(ctx,
		"INSERT INTO shopping_lists (user_id) VALUES ($1) RETURNING id, user_id, created_at", userID,
	).StructScan(&list)
	if err != nil {
		return nil, fmt.Errorf("failed to create shopping list: %w", err)
	}
	return &list, nil
}

// GetList returns the list when it exists and belongs to the user.
func (s *PostgresStore) GetList(ctx context.Context, userID, listID int64) (*List, error) {
	var list List
	err := s.db.GetContext(ctx, &list,
		"SELECT id, user_id, created_at FROM shopping_lists WHERE id = $1 AND user_id = $2", listID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // List not found
		}
		return nil, fmt.Errorf("failed to get shopping list: %w", err)
	}
	return &list, nil
}

// ListItems returns the list's items in insertion order with ingredient names
// resolved.
func (s *PostgresStore) ListItems(ctx context.Context, listID int64) ([]ListedItem, error) {
	rows, err := s.db.QueryxContext(ctx, listItemsQuery, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shopping list items: %w", err)
	}
	defer rows.Close()

	items := []ListedItem{}
	for rows.Next() {
		var (
			item ListedItem
			name sql.NullString
		)
		if err := rows.Scan(&item.ItemID, &item.Checked, &item.Quantity, &item.IngredientID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan shopping list item: %w", err)
		}
		item.Name = UnknownIngredient
		if name.Valid {
			item.Name = name.String
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return items, nil
}

// UpsertItem adds the ingredient to the list, or overwrites the quantity when
// the ingredient is already there. The checked flag is left untouched.
func (s *PostgresStore) UpsertItem(ctx context.Context, listID, ingredientID int64, quantity *float64) (*Item, error) {
	var item Item
	err := s.db.QueryRowxContext(ctx, upsertItemQuery, listID, ingredientID, quantity).StructScan(&item)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, apperr.NotFound("shopping list not found")
		}
		return nil, fmt.Errorf("failed to save shopping list item: %w", err)
	}
	return &item, nil
}

// SetChecked updates the checked flag of an item on one of the user's lists.
// It returns nil when the item does not exist there.
func (s *PostgresStore) SetChecked(ctx context.Context, userID, listID, itemID int64, checked bool) (*Item, error) {
	var item Item
	err := s.db.QueryRowxContext(ctx, setCheckedQuery, checked, itemID, listID, userID).StructScan(&item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Item not found
		}
		return nil, fmt.Errorf("failed to update shopping list item: %w", err)
	}
	return &item, nil
}

// DeleteItem removes an item from one of the user's lists. It reports false
// when nothing matched.
func (s *PostgresStore) DeleteItem(ctx context.Context, userID, listID, itemID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, deleteItemQuery, itemID, listID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete shopping list item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GemmaRyan/FoodManagementApp-server/internal/apperr"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/favorite"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/fridge"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/identity"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/platform/spoonacular"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/shopping"
)

// IngredientStore defines the ingredient operations the handlers need.
type IngredientStore interface {
	FindOrCreate(ctx context.Context, userID int64, name string) (*fridge.Ingredient, bool, error)
	ListIngredients(ctx context.Context, userID int64) ([]fridge.Ingredient, error)
	GetIngredient(ctx context.Context, userID, id int64) (*fridge.Ingredient, error)
	DeleteIngredient(ctx context.Context, userID, id int64) (bool, error)
}

// FavoriteStore defines the favorite recipe operations the handlers need.
type FavoriteStore interface {
	ListFavorites(ctx context.Context, userID int64) ([]favorite.Recipe, error)
	UpsertFavorite(ctx context.Context, recipe *favorite.Recipe) (*favorite.Recipe, error)
	DeleteFavorite(ctx context.Context, userID, recipeID int64) (bool, error)
}

// ShoppingStore defines the shopping list operations the handlers need.
type ShoppingStore interface {
	CreateList(ctx context.Context, userID int64) (*shopping.List, error)
	GetList(ctx context.Context, userID, listID int64) (*shopping.List, error)
	ListItems(ctx context.Context, listID int64) ([]shopping.ListedItem, error)
	UpsertItem(ctx context.Context, listID, ingredientID int64, quantity *float64) (*shopping.Item, error)
	SetChecked(ctx context.Context, userID, listID, itemID int64, checked bool) (*shopping.Item, error)
	DeleteItem(ctx context.Context, userID, listID, itemID int64) (bool, error)
}

// RecipeSearcher defines the interface for the external recipe API.
type RecipeSearcher interface {
	SearchRecipes(ctx context.Context, params spoonacular.SearchParams) (json.RawMessage, error)
	RecipeInformation(ctx context.Context, recipeID int64) (json.RawMessage, error)
}

// IngredientClassifier defines the interface for the image classifier.
type IngredientClassifier interface {
	Classify(ctx context.Context, filename string, image io.Reader) (string, error)
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler handles HTTP requests.
type Handler struct {
	Ingredients IngredientStore
	Favorites   FavoriteStore
	Shopping    ShoppingStore
	Recipes     RecipeSearcher
	Classifier  IngredientClassifier

	// DB is optional; when nil the health check only reports the process.
	DB            Pinger
	UploadDir     string
	DefaultUserID int64
}

// NewHandler creates a new Handler.
func NewHandler(ingredients IngredientStore, favorites FavoriteStore, shoppingStore ShoppingStore, recipes RecipeSearcher, classifier IngredientClassifier) *Handler {
	return &Handler{
		Ingredients:   ingredients,
		Favorites:     favorites,
		Shopping:      shoppingStore,
		Recipes:       recipes,
		Classifier:    classifier,
		UploadDir:     "uploads",
		DefaultUserID: 1,
	}
}

// fail writes the error envelope for err and aborts the request.
func (h *Handler) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	code := apperr.CodeOf(err)
	handlerErrors.WithLabelValues(string(code)).Inc()

	attrs := []any{
		"error", err,
		"code", code,
		"path", c.FullPath(),
		"method", c.Request.Method,
		"requestID", c.GetString(requestIDKey),
	}
	if status >= 500 {
		slog.Error("request failed", attrs...)
	} else {
		slog.Debug("request rejected", attrs...)
	}

	c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": apperr.MessageOf(err)})
}

// upstream classifies an error from the store or an external API. Errors that
// already carry a code keep it. An empty message surfaces the cause text.
func upstream(err error, message string) error {
	if apperr.CodeOf(err) != apperr.CodeInternal {
		return err
	}
	return apperr.Upstream(message, err)
}

// userID returns the owning user for this request. A body value, when the
// client sent one, wins over the identity resolved by middleware.
func (h *Handler) userID(c *gin.Context, override optionalID) (int64, error) {
	if override.Set {
		if override.Value <= 0 {
			return 0, apperr.Validation("userID must be a positive integer")
		}
		return override.Value, nil
	}
	if id, ok := identity.UserID(c.Request.Context()); ok {
		return id, nil
	}
	return h.DefaultUserID, nil
}

// bindJSON decodes the request body into v. An empty body leaves v untouched.
func bindJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Validation("invalid request body: " + err.Error())
	}
	return nil
}

// pathID parses a positive numeric path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	return identity.ParseID(name, c.Param(name))
}

// optionalID is a client supplied identifier that may be a JSON number or a
// numeric string.
type optionalID struct {
	Value int64
	Set   bool
}

// UnmarshalJSON implements the json.Unmarshaler interface for optionalID.
func (o *optionalID) UnmarshalJSON(data []byte) error {
	n, ok, err := parseNumber(data)
	if err != nil || !ok {
		return err
	}
	if n != float64(int64(n)) {
		return errors.New("identifier must be an integer")
	}
	o.Value, o.Set = int64(n), true
	return nil
}

// optionalNumber is a nullable quantity that may be a JSON number or a
// numeric string.
type optionalNumber struct {
	Value *float64
}

// UnmarshalJSON implements the json.Unmarshaler interface for optionalNumber.
func (o *optionalNumber) UnmarshalJSON(data []byte) error {
	n, ok, err := parseNumber(data)
	if err != nil || !ok {
		return err
	}
	o.Value = &n
	return nil
}

// parseNumber accepts 5, "5" and "5.5". null and "" report ok=false.
func parseNumber(data []byte) (float64, bool, error) {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return 0, false, nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			return 0, false, nil
		}
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, errors.New("expected a number, got " + string(data))
	}
	return n, true, nil
}

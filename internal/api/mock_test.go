package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/GemmaRyan/FoodManagementApp-server/internal/api"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/apperr"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/favorite"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/fridge"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/platform/spoonacular"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/shopping"
)

// mockIngredientStore is an in-memory IngredientStore. Names match
// case-insensitively per user, like the unique index in Postgres.
type mockIngredientStore struct {
	mu     sync.Mutex
	nextID int64
	items  []fridge.Ingredient
	err    error
	panics bool
}

func (m *mockIngredientStore) FindOrCreate(ctx context.Context, userID int64, name string) (*fridge.Ingredient, bool, error) {
	if m.panics {
		panic("ingredient store exploded")
	}
	if m.err != nil {
		return nil, false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.UserID == userID && strings.EqualFold(it.Name, name) {
			found := it
			return &found, false, nil
		}
	}
	m.nextID++
	it := fridge.Ingredient{ID: m.nextID, Name: name, UserID: userID}
	m.items = append(m.items, it)
	return &it, true, nil
}

func (m *mockIngredientStore) ListIngredients(ctx context.Context, userID int64) ([]fridge.Ingredient, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []fridge.Ingredient
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].UserID == userID {
			out = append(out, m.items[i])
		}
	}
	return out, nil
}

func (m *mockIngredientStore) GetIngredient(ctx context.Context, userID, id int64) (*fridge.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.ID == id && it.UserID == userID {
			found := it
			return &found, nil
		}
	}
	return nil, nil
}

func (m *mockIngredientStore) DeleteIngredient(ctx context.Context, userID, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.items {
		if it.ID == id && it.UserID == userID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockIngredientStore) name(id int64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.ID == id {
			return it.Name, true
		}
	}
	return "", false
}

// mockFavoriteStore is an in-memory FavoriteStore keyed by user and recipe.
type mockFavoriteStore struct {
	mu        sync.Mutex
	favorites map[[2]int64]*favorite.Recipe
	clock     time.Time
	err       error
}

func newMockFavoriteStore() *mockFavoriteStore {
	return &mockFavoriteStore{
		favorites: make(map[[2]int64]*favorite.Recipe),
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *mockFavoriteStore) ListFavorites(ctx context.Context, userID int64) ([]favorite.Recipe, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []favorite.Recipe
	for key, r := range m.favorites {
		if key[0] == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockFavoriteStore) UpsertFavorite(ctx context.Context, recipe *favorite.Recipe) (*favorite.Recipe, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]int64{recipe.UserID, recipe.RecipeID}
	if existing, ok := m.favorites[key]; ok {
		existing.Title, existing.Image = recipe.Title, recipe.Image
		saved := *existing
		return &saved, nil
	}
	m.clock = m.clock.Add(time.Minute)
	saved := *recipe
	saved.CreatedAt = m.clock
	m.favorites[key] = &saved
	out := saved
	return &out, nil
}

func (m *mockFavoriteStore) DeleteFavorite(ctx context.Context, userID, recipeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]int64{userID, recipeID}
	if _, ok := m.favorites[key]; !ok {
		return false, nil
	}
	delete(m.favorites, key)
	return true, nil
}

// mockShoppingStore is an in-memory ShoppingStore. Item names come from the
// ingredient store, falling back to "Unknown".
type mockShoppingStore struct {
	mu          sync.Mutex
	ingredients *mockIngredientStore
	lists       map[int64]shopping.List
	items       []shopping.Item
	nextList    int64
	nextItem    int64
	err         error
}

func newMockShoppingStore(ingredients *mockIngredientStore) *mockShoppingStore {
	return &mockShoppingStore{ingredients: ingredients, lists: make(map[int64]shopping.List)}
}

func (m *mockShoppingStore) CreateList(ctx context.Context, userID int64) (*shopping.List, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextList++
	list := shopping.List{ID: m.nextList, UserID: userID, CreatedAt: time.Now()}
	m.lists[list.ID] = list
	return &list, nil
}

func (m *mockShoppingStore) GetList(ctx context.Context, userID, listID int64) (*shopping.List, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list, ok := m.lists[listID]
	if !ok || list.UserID != userID {
		return nil, nil
	}
	return &list, nil
}

func (m *mockShoppingStore) ListItems(ctx context.Context, listID int64) ([]shopping.ListedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []shopping.ListedItem
	for _, it := range m.items {
		if it.ListID != listID {
			continue
		}
		name, ok := m.ingredients.name(it.IngredientID)
		if !ok {
			name = shopping.UnknownIngredient
		}
		out = append(out, shopping.ListedItem{
			ItemID:       it.ID,
			Checked:      it.Checked,
			Quantity:     it.Quantity,
			IngredientID: it.IngredientID,
			Name:         name,
		})
	}
	return out, nil
}

func (m *mockShoppingStore) UpsertItem(ctx context.Context, listID, ingredientID int64, quantity *float64) (*shopping.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lists[listID]; !ok {
		return nil, apperr.NotFound("shopping list not found")
	}
	for i := range m.items {
		if m.items[i].ListID == listID && m.items[i].IngredientID == ingredientID {
			m.items[i].Quantity = quantity
			out := m.items[i]
			return &out, nil
		}
	}
	m.nextItem++
	it := shopping.Item{ID: m.nextItem, ListID: listID, IngredientID: ingredientID, Quantity: quantity}
	m.items = append(m.items, it)
	return &it, nil
}

func (m *mockShoppingStore) SetChecked(ctx context.Context, userID, listID, itemID int64, checked bool) (*shopping.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if list, ok := m.lists[listID]; !ok || list.UserID != userID {
		return nil, nil
	}
	for i := range m.items {
		if m.items[i].ID == itemID && m.items[i].ListID == listID {
			m.items[i].Checked = checked
			out := m.items[i]
			return &out, nil
		}
	}
	return nil, nil
}

func (m *mockShoppingStore) DeleteItem(ctx context.Context, userID, listID, itemID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if list, ok := m.lists[listID]; !ok || list.UserID != userID {
		return false, nil
	}
	for i, it := range m.items {
		if it.ID == itemID && it.ListID == listID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// mockRecipeSearcher records the last search and returns a canned body.
type mockRecipeSearcher struct {
	body         json.RawMessage
	err          error
	lastParams   spoonacular.SearchParams
	lastRecipeID int64
}

func (m *mockRecipeSearcher) SearchRecipes(ctx context.Context, params spoonacular.SearchParams) (json.RawMessage, error) {
	m.lastParams = params
	if m.err != nil {
		return nil, m.err
	}
	return m.body, nil
}

func (m *mockRecipeSearcher) RecipeInformation(ctx context.Context, recipeID int64) (json.RawMessage, error) {
	m.lastRecipeID = recipeID
	if m.err != nil {
		return nil, m.err
	}
	return m.body, nil
}

// mockClassifier returns a fixed label and records what it was sent.
type mockClassifier struct {
	label        string
	err          error
	lastFilename string
	lastImage    []byte
}

func (m *mockClassifier) Classify(ctx context.Context, filename string, image io.Reader) (string, error) {
	m.lastFilename = filename
	data, err := io.ReadAll(image)
	if err != nil {
		return "", err
	}
	m.lastImage = data
	if m.err != nil {
		return "", m.err
	}
	return m.label, nil
}

// mockPinger reports a fixed health result.
type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	return m.err
}

type testEnv struct {
	router      *gin.Engine
	handler     *api.Handler
	ingredients *mockIngredientStore
	favorites   *mockFavoriteStore
	shopping    *mockShoppingStore
	recipes     *mockRecipeSearcher
	classifier  *mockClassifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ingredients := &mockIngredientStore{}
	env := &testEnv{
		ingredients: ingredients,
		favorites:   newMockFavoriteStore(),
		shopping:    newMockShoppingStore(ingredients),
		recipes:     &mockRecipeSearcher{body: json.RawMessage(`{"results":[]}`)},
		classifier:  &mockClassifier{},
	}
	env.handler = api.NewHandler(env.ingredients, env.favorites, env.shopping, env.recipes, env.classifier)
	env.handler.UploadDir = t.TempDir()
	env.router = api.NewRouter(env.handler, []string{"http://localhost:4200"})
	return env
}

// do sends a request with an optional JSON body. headers are key, value pairs.
func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeObject(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func decodeArray(t *testing.T, rr *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	require.Equal(t, status, rr.Code, rr.Body.String())
	body := decodeObject(t, rr)
	require.Equal(t, false, body["ok"])
	require.Equal(t, message, body["error"])
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"recipefinder/internal/api"
	"recipefinder/internal/recipe"
)

// mockGenerator is a mock of the suggestion clients.
type mockGenerator struct {
	returnError        error
	receivedCuisine    string
	receivedDifficulty string
}

// SuggestRecipe mocks the SuggestRecipe method.
func (m *mockGenerator) SuggestRecipe(ctx context.Context, cuisine, difficulty string) (*recipe.Suggestion, error) {
	m.receivedCuisine = cuisine
	m.receivedDifficulty = difficulty
	if m.returnError != nil {
		return nil, m.returnError
	}
	return &recipe.Suggestion{
		Name: "Mock Ratatouille",
		Recipe: recipe.Recipe{
			Cuisine:     "French",
			Ingredients: []string{"Eggplant", "Zucchini", "Tomato"},
			PrepTime:    50,
			Difficulty:  "Medium",
		},
	}, nil
}

// failingStore always fails to save.
type failingStore struct{}

func (failingStore) Load(ctx context.Context) (*recipe.Collection, error) {
	return nil, fmt.Errorf("no stored data")
}

func (failingStore) Save(ctx context.Context, recipes *recipe.Collection) error {
	return fmt.Errorf("disk full")
}

// newTestRouter builds a router over a file-backed finder in a temp
// directory, so every test starts from the sample catalog.
func newTestRouter(t *testing.T, gemini, local api.RecipeGenerator) (*gin.Engine, *recipe.Finder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := recipe.NewFileStore(filepath.Join(t.TempDir(), "recipes.json"))
	finder := recipe.NewFinder(context.Background(), store)
	handler := api.NewHandler(finder, gemini, local)

	r := gin.Default()
	r.GET("/recipes", handler.ListRecipes)
	r.GET("/recipes/:name", handler.GetRecipe)
	r.POST("/recipes", handler.AddRecipe)
	r.GET("/search", handler.SearchRecipes)
	r.GET("/filter", handler.FilterRecipes)
	r.GET("/recommendations", handler.Recommendations)
	r.POST("/suggest", handler.SuggestRecipe)
	return r, finder
}

func getNames(t *testing.T, r *gin.Engine, url string) ([]string, int) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var names []string
	if rr.Code == http.StatusOK {
		err := json.Unmarshal(rr.Body.Bytes(), &names)
		assert.NoError(t, err)
	}
	return names, rr.Code
}

func TestListRecipes(t *testing.T) {
	r, _ := newTestRouter(t, nil, nil)

	names, code := getNames(t, r, "/recipes")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"Spaghetti Carbonara", "Chicken Tikka Masala", "Avocado Toast"}, names)
}

func TestGetRecipe(t *testing.T) {
	r, _ := newTestRouter(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/recipes/Avocado%20Toast", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Name   string        `json:"name"`
		Recipe recipe.Recipe `json:"recipe"`
	}
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "Avocado Toast", resp.Name)
	assert.Equal(t, "American", resp.Recipe.Cuisine)
	assert.Equal(t, 5, resp.Recipe.PrepTime)
	assert.NotNil(t, resp.Recipe.Rating)
	assert.Equal(t, 3.7, *resp.Recipe.Rating)
}

func TestGetRecipeNotFound(t *testing.T) {
	r, _ := newTestRouter(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/recipes/Beef%20Wellington", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Recipe not found", rr.Body.String())
}

func TestSearchRecipes(t *testing.T) {
	r, _ := newTestRouter(t, nil, nil)

	names, code := getNames(t, r, "/search?q=Chicken")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"Chicken Tikka Masala"}, names)

	// Empty query matches the whole catalog.
	names, code = getNames(t, r, "/search")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, names, 3)
}

func TestFilterRecipes(t *testing.T) {
	r, _ := newTestRouter(t, nil, nil)

	names, code := getNames(t, r, "/filter?difficulty=Easy&max_time=30")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"Avocado Toast"}, names)

	names, code = getNames(t, r, "/filter?min_rating=4.0")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"Spaghetti Carbonara", "Chicken Tikka Masala"}, names)

	// A zero bound means no bound.
	names, code = getNames(t, r, "/filter?max_time=0")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, names, 3)
}

func TestFilterRecipesBadParams(t *testing.T) {
	r, _ := newTestRouter(t, nil, nil)

	_, code := getNames(t, r, "/filter?max_time=soon")
	assert.Equal(t, http.StatusBadRequest, code)

	_, code = getNames(t, r, "/filter?min_rating=lots")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRecommendations(t *testing.T) {
	r, _ := newTestRouter(t, nil, nil)

	names, code := getNames(t, r, "/recommendations?cuisine=italian")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"Spaghetti Carbonara"}, names)

	names, code = getNames(t, r, "/recommendations?cuisine=French")
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, names)
}

func postJSON(t *testing.T, r *gin.Engine, url string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestAddRecipe(t *testing.T) {
	r, finder := newTestRouter(t, nil, nil)

	rr := postJSON(t, r, "/recipes", gin.H{
		"name":        "Shakshuka",
		"cuisine":     "Middle Eastern",
		"ingredients": []string{"Eggs", "Tomatoes", "Peppers"},
		"prep_time":   25,
		"difficulty":  "Easy",
		"rating":      4.1,
	})
	assert.Equal(t, http.StatusCreated, rr.Code)

	got := finder.GetDetails("Shakshuka")
	assert.NotNil(t, got)
	assert.Equal(t, "Middle Eastern", got.Cuisine)
	assert.Equal(t, []string{"Eggs", "Tomatoes", "Peppers"}, got.Ingredients)
	assert.NotNil(t, got.Rating)
	assert.Equal(t, 4.1, *got.Rating)
}

func TestAddRecipeDuplicate(t *testing.T) {
	r, _ := newTestRouter(t, nil, nil)

	body := gin.H{
		"name":        "Avocado Toast",
		"cuisine":     "Australian",
		"ingredients": []string{"Bread", "Avocado"},
		"prep_time":   5,
		"difficulty":  "Easy",
	}
	rr := postJSON(t, r, "/recipes", body)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "A recipe with name 'Avocado Toast' already exists.", rr.Body.String())
}

func TestAddRecipeMissingFields(t *testing.T) {
	r, _ := newTestRouter(t, nil, nil)

	rr := postJSON(t, r, "/recipes", gin.H{"name": "Nameless Soup"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAddRecipeInvalidFields(t *testing.T) {
	r, _ := newTestRouter(t, nil, nil)

	rr := postJSON(t, r, "/recipes", gin.H{
		"name":        "Overrated Pie",
		"cuisine":     "American",
		"ingredients": []string{"Apples"},
		"prep_time":   30,
		"difficulty":  "Medium",
		"rating":      9.9,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAddRecipePersistFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	finder := recipe.NewFinder(context.Background(), failingStore{})
	handler := api.NewHandler(finder, nil, nil)

	r := gin.Default()
	r.POST("/recipes", handler.AddRecipe)

	rr := postJSON(t, r, "/recipes", gin.H{
		"name":        "Pancakes",
		"cuisine":     "American",
		"ingredients": []string{"Flour", "Milk", "Eggs"},
		"prep_time":   15,
		"difficulty":  "Easy",
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "could not be saved")

	// The add itself still took effect for the session.
	assert.NotNil(t, finder.GetDetails("Pancakes"))
}

func TestSuggestRecipe(t *testing.T) {
	gemini := &mockGenerator{}
	r, _ := newTestRouter(t, gemini, nil)

	req := httptest.NewRequest(http.MethodPost, "/suggest?cuisine=french&difficulty=Medium", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "french", gemini.receivedCuisine)
	assert.Equal(t, "Medium", gemini.receivedDifficulty)

	var suggestion recipe.Suggestion
	err := json.Unmarshal(rr.Body.Bytes(), &suggestion)
	assert.NoError(t, err)
	assert.Equal(t, "Mock Ratatouille", suggestion.Name)
	assert.Equal(t, 50, suggestion.Recipe.PrepTime)
}

func TestSuggestRecipeLocalSource(t *testing.T) {
	local := &mockGenerator{}
	r, _ := newTestRouter(t, nil, local)

	req := httptest.NewRequest(http.MethodPost, "/suggest?source=local&cuisine=italian", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "italian", local.receivedCuisine)
}

func TestSuggestRecipeNotConfigured(t *testing.T) {
	r, _ := newTestRouter(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/suggest", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestSuggestRecipeGeneratorError(t *testing.T) {
	gemini := &mockGenerator{returnError: fmt.Errorf("model unavailable")}
	r, _ := newTestRouter(t, gemini, nil)

	req := httptest.NewRequest(http.MethodPost, "/suggest", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

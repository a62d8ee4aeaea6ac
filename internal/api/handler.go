package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"recipefinder/internal/recipe"
)

// RecipeFinder defines the catalog operations the handlers consume.
type RecipeFinder interface {
	Names() []string
	RecommendByCuisine(cuisine string) []string
	Search(query string) []string
	Filter(difficulty string, maxPrepTime *int, minRating *float64) []string
	GetDetails(name string) *recipe.Recipe
	Add(ctx context.Context, name string, r recipe.Recipe) (bool, error)
}

// RecipeGenerator defines the interface for AI recipe suggestions.
type RecipeGenerator interface {
	SuggestRecipe(ctx context.Context, cuisine, difficulty string) (*recipe.Suggestion, error)
}

// Handler handles HTTP requests.
type Handler struct {
	Finder         RecipeFinder
	Gemini         RecipeGenerator
	LocalGenerator RecipeGenerator
}

// NewHandler creates a new Handler. Either generator may be nil when
// the corresponding backend is not configured.
func NewHandler(finder RecipeFinder, gemini, localGenerator RecipeGenerator) *Handler {
	return &Handler{Finder: finder, Gemini: gemini, LocalGenerator: localGenerator}
}

// ListRecipes returns the names of every recipe in the catalog.
func (h *Handler) ListRecipes(c *gin.Context) {
	c.JSON(http.StatusOK, h.Finder.Names())
}

// GetRecipe returns the full details for a single recipe by name.
func (h *Handler) GetRecipe(c *gin.Context) {
	name := c.Param("name")

	r := h.Finder.GetDetails(name)
	if r == nil {
		c.String(http.StatusNotFound, "Recipe not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"name": name, "recipe": r})
}

// SearchRecipes returns the recipe names matching the q query parameter
// as a case-insensitive substring. An empty q matches everything.
func (h *Handler) SearchRecipes(c *gin.Context) {
	query := c.Query("q")
	c.JSON(http.StatusOK, h.Finder.Search(query))
}

// Recommendations returns the recipe names for the requested cuisine.
func (h *Handler) Recommendations(c *gin.Context) {
	cuisine := c.Query("cuisine")
	c.JSON(http.StatusOK, h.Finder.RecommendByCuisine(cuisine))
}

// FilterRecipes returns the recipe names satisfying the difficulty,
// max_time and min_rating query parameters. Each is optional.
func (h *Handler) FilterRecipes(c *gin.Context) {
	difficulty := c.Query("difficulty")

	var maxPrepTime *int
	if v := c.Query("max_time"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.String(http.StatusBadRequest, "max_time must be an integer number of minutes")
			return
		}
		maxPrepTime = &n
	}

	var minRating *float64
	if v := c.Query("min_rating"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.String(http.StatusBadRequest, "min_rating must be a number")
			return
		}
		minRating = &n
	}

	c.JSON(http.StatusOK, h.Finder.Filter(difficulty, maxPrepTime, minRating))
}

// addRecipeRequest is the POST /recipes body. Rating is the only
// optional field.
type addRecipeRequest struct {
	Name        string   `json:"name" binding:"required"`
	Cuisine     string   `json:"cuisine" binding:"required"`
	Ingredients []string `json:"ingredients" binding:"required"`
	PrepTime    int      `json:"prep_time" binding:"required"`
	Difficulty  string   `json:"difficulty" binding:"required"`
	Rating      *float64 `json:"rating"`
}

// AddRecipe inserts a new recipe into the catalog.
func (h *Handler) AddRecipe(c *gin.Context) {
	var req addRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}

	r := recipe.Recipe{
		Cuisine:     req.Cuisine,
		Ingredients: req.Ingredients,
		PrepTime:    req.PrepTime,
		Difficulty:  req.Difficulty,
		Rating:      req.Rating,
	}
	if err := r.Validate(); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ok, err := h.Finder.Add(ctx, req.Name, r)
	if !ok {
		c.String(http.StatusConflict, fmt.Sprintf("A recipe with name '%s' already exists.", req.Name))
		return
	}
	if err != nil {
		// The recipe is in the session catalog; only the save failed.
		log.Printf("failed to persist recipe %q: %v", req.Name, err)
		c.String(http.StatusInternalServerError,
			fmt.Sprintf("'%s' was added for this session but could not be saved: %s", req.Name, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"name": req.Name, "recipe": r})
}

// SuggestRecipe asks a generator for a new recipe idea matching the
// optional cuisine and difficulty query parameters. source=local routes
// the request to the local LLM instead of Gemini.
func (h *Handler) SuggestRecipe(c *gin.Context) {
	cuisine := c.Query("cuisine")
	difficulty := c.Query("difficulty")

	generator := h.Gemini
	if c.Query("source") == "local" {
		generator = h.LocalGenerator
	}
	if generator == nil {
		c.String(http.StatusServiceUnavailable, "Recipe suggestions are not configured")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 45*time.Second)
	defer cancel()

	suggestion, err := generator.SuggestRecipe(ctx, cuisine, difficulty)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.String(http.StatusRequestTimeout, "Suggestion request timed out after 45 seconds")
			return
		}
		c.String(http.StatusInternalServerError, fmt.Sprintf("suggestion err: %s", err.Error()))
		return
	}

	c.JSON(http.StatusOK, suggestion)
}

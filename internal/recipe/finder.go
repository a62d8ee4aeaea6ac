package recipe

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// SampleCollection returns the built-in starter recipes used when no
// stored catalog can be loaded.
func SampleCollection() *Collection {
	rating := func(v float64) *float64 { return &v }

	recipes := NewCollection()
	recipes.Add("Spaghetti Carbonara", Recipe{
		Cuisine:     "Italian",
		Ingredients: []string{"Pasta", "Eggs", "Cheese", "Bacon"},
		PrepTime:    20,
		Difficulty:  "Medium",
		Rating:      rating(4.5),
	})
	recipes.Add("Chicken Tikka Masala", Recipe{
		Cuisine:     "Indian",
		Ingredients: []string{"Chicken", "Yogurt", "Spices", "Tomato Sauce"},
		PrepTime:    45,
		Difficulty:  "Hard",
		Rating:      rating(4.8),
	})
	recipes.Add("Avocado Toast", Recipe{
		Cuisine:     "American",
		Ingredients: []string{"Bread", "Avocado", "Salt", "Pepper"},
		PrepTime:    5,
		Difficulty:  "Easy",
		Rating:      rating(3.7),
	})
	return recipes
}

// Finder owns the in-memory recipe collection and answers all catalog
// queries. It is built for a single interactive session: one loader at
// construction, one writer, no locking.
type Finder struct {
	store   Store
	recipes *Collection
}

// NewFinder loads the collection from the store. When the store cannot
// be read (missing or corrupt data), the finder starts from the sample
// collection instead of failing: the catalog must always come up with
// some usable data.
func NewFinder(ctx context.Context, store Store) *Finder {
	recipes, err := store.Load(ctx)
	if err != nil {
		log.Printf("Could not load stored recipes, starting with sample data: %v", err)
		recipes = SampleCollection()
	}
	return &Finder{store: store, recipes: recipes}
}

// Names returns every recipe name in collection order.
func (f *Finder) Names() []string {
	return f.recipes.Names()
}

// RecommendByCuisine returns the names of all recipes whose cuisine
// matches, ignoring case. No matches is an empty result, not an error.
func (f *Finder) RecommendByCuisine(cuisine string) []string {
	matches := []string{}
	for _, name := range f.recipes.Names() {
		r, _ := f.recipes.Get(name)
		if strings.EqualFold(r.Cuisine, cuisine) {
			matches = append(matches, name)
		}
	}
	return matches
}

// Search returns the names containing query as a case-insensitive
// substring. An empty query matches every recipe.
func (f *Finder) Search(query string) []string {
	matches := []string{}
	q := strings.ToLower(query)
	for _, name := range f.recipes.Names() {
		if strings.Contains(strings.ToLower(name), q) {
			matches = append(matches, name)
		}
	}
	return matches
}

// Filter returns the names of recipes satisfying every provided
// constraint. Nil constraints are skipped. A zero maxPrepTime or
// minRating is also treated as absent, mirroring the long-standing
// behavior of the recipe file format's original consumer: "at most 0
// minutes" and "at least rating 0" are not expressible.
func (f *Finder) Filter(difficulty string, maxPrepTime *int, minRating *float64) []string {
	matches := []string{}
	for _, name := range f.recipes.Names() {
		r, _ := f.recipes.Get(name)

		if difficulty != "" && !strings.EqualFold(r.Difficulty, difficulty) {
			continue
		}
		if maxPrepTime != nil && *maxPrepTime != 0 && r.PrepTime > *maxPrepTime {
			continue
		}
		if minRating != nil && *minRating != 0 {
			if r.Rating == nil || *r.Rating < *minRating {
				continue
			}
		}
		matches = append(matches, name)
	}
	return matches
}

// GetDetails returns the recipe stored under name, or nil when no such
// recipe exists. Not-found is a valid outcome, not an error.
func (f *Finder) GetDetails(name string) *Recipe {
	r, ok := f.recipes.Get(name)
	if !ok {
		return nil
	}
	return &r
}

// Add inserts a new recipe and persists the whole collection. It
// returns false when the name is already taken, leaving the collection
// untouched. A persistence failure is reported through the error while
// the in-memory insert is kept, so the caller can tell the user the
// recipe exists for this session but was not saved.
func (f *Finder) Add(ctx context.Context, name string, r Recipe) (bool, error) {
	if !f.recipes.Add(name, r) {
		return false, nil
	}
	if err := f.store.Save(ctx, f.recipes); err != nil {
		return true, fmt.Errorf("recipe added but could not be persisted: %w", err)
	}
	return true, nil
}

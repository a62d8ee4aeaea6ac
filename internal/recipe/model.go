package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Difficulties lists the accepted difficulty levels for a recipe.
var Difficulties = []string{"Easy", "Medium", "Hard"}

// Recipe represents a single recipe entry. The JSON tags match the
// persisted file format exactly, so existing recipe files keep working.
type Recipe struct {
	Cuisine     string   `json:"Cuisine"`
	Ingredients []string `json:"Ingredients"`
	PrepTime    int      `json:"Prep Time"`
	Difficulty  string   `json:"Difficulty"`
	Rating      *float64 `json:"Rating"`
}

// Validate checks that the recipe fields are well formed.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.Cuisine) == "" {
		return fmt.Errorf("cuisine is required")
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("at least one ingredient is required")
	}
	if r.PrepTime < 1 {
		return fmt.Errorf("prep time must be a positive number of minutes")
	}
	valid := false
	for _, d := range Difficulties {
		if strings.EqualFold(r.Difficulty, d) {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("difficulty must be one of %s", strings.Join(Difficulties, ", "))
	}
	if r.Rating != nil && (*r.Rating < 0 || *r.Rating > 5) {
		return fmt.Errorf("rating must be between 0.0 and 5.0")
	}
	return nil
}

// Suggestion is a generated recipe proposal returned by the suggestion
// clients. It is not part of the catalog until the caller adds it.
type Suggestion struct {
	Name   string `json:"name"`
	Recipe Recipe `json:"recipe"`
}

// Collection is the full set of recipes keyed by unique display name.
// Iteration order follows the persisted document / insertion order, the
// way the recipe file has always been written.
type Collection struct {
	recipes map[string]Recipe
	order   []string
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{recipes: make(map[string]Recipe)}
}

// Len returns the number of recipes in the collection.
func (c *Collection) Len() int {
	return len(c.order)
}

// Names returns all recipe names in collection order.
func (c *Collection) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// Get returns the recipe stored under name.
func (c *Collection) Get(name string) (Recipe, bool) {
	r, ok := c.recipes[name]
	return r, ok
}

// Add inserts a recipe under name. It returns false and leaves the
// collection unchanged when the name is already taken.
func (c *Collection) Add(name string, r Recipe) bool {
	if _, exists := c.recipes[name]; exists {
		return false
	}
	c.recipes[name] = r
	c.order = append(c.order, name)
	return true
}

// MarshalJSON writes the collection as a single JSON object keyed by
// recipe name, preserving collection order.
func (c *Collection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(c.recipes[name])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a name-keyed JSON object, keeping the key order of
// the document. A plain map would lose it, so the object is walked
// token by token.
func (c *Collection) UnmarshalJSON(data []byte) error {
	c.recipes = make(map[string]Recipe)
	c.order = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("recipe collection must be a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v in recipe collection", tok)
		}
		var r Recipe
		if err := dec.Decode(&r); err != nil {
			return fmt.Errorf("failed to decode recipe %q: %w", name, err)
		}
		if !c.Add(name, r) {
			return fmt.Errorf("duplicate recipe name %q in recipe collection", name)
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

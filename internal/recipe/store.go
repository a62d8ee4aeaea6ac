package recipe

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DefaultDataFile is where the catalog is persisted when no other
// location is configured.
const DefaultDataFile = "data/recipes.json"

// Store defines the interface for recipe persistence. Save always
// writes the whole collection; there are no partial writes.
type Store interface {
	Load(ctx context.Context) (*Collection, error)
	Save(ctx context.Context, recipes *Collection) error
}

// FileStore persists the collection as a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore backed by the given file path. An
// empty path selects DefaultDataFile.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultDataFile
	}
	return &FileStore{path: path}
}

// Load reads the full collection from the recipe file.
func (s *FileStore) Load(ctx context.Context) (*Collection, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe file: %w", err)
	}

	var recipes Collection
	if err := json.Unmarshal(data, &recipes); err != nil {
		return nil, fmt.Errorf("failed to parse recipe file: %w", err)
	}
	return &recipes, nil
}

// Save overwrites the recipe file with the full collection, creating
// the parent directory if missing. The write goes through a temp file
// and rename so a crash mid-write never leaves a truncated file.
func (s *FileStore) Save(ctx context.Context, recipes *Collection) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(recipes, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal recipes: %w", err)
	}

	randBytes := make([]byte, 4)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("failed to generate temp file name: %w", err)
	}
	tmpName := fmt.Sprintf(".%s.tmp.%s", filepath.Base(s.path), hex.EncodeToString(randBytes))
	tmpPath := filepath.Join(dir, tmpName)

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write recipe file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace recipe file: %w", err)
	}
	return nil
}

// PostgresStore persists the collection in PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects to the database and creates the recipes
// table if it does not exist yet.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS recipes (
		name TEXT PRIMARY KEY,
		cuisine TEXT NOT NULL,
		ingredients JSONB NOT NULL,
		prep_time INTEGER NOT NULL,
		difficulty TEXT NOT NULL,
		rating DOUBLE PRECISION,
		position INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create recipes table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Load reads the full collection, ordered by stored position so listing
// order survives the round trip.
func (s *PostgresStore) Load(ctx context.Context) (*Collection, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT name, cuisine, ingredients, prep_time, difficulty, rating FROM recipes ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	defer rows.Close()

	recipes := NewCollection()
	for rows.Next() {
		var name string
		var r Recipe
		var ingredientsJSON []byte
		if err := rows.Scan(&name, &r.Cuisine, &ingredientsJSON, &r.PrepTime, &r.Difficulty, &r.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		if err := json.Unmarshal(ingredientsJSON, &r.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ingredients: %w", err)
		}
		if !recipes.Add(name, r) {
			return nil, fmt.Errorf("duplicate recipe name %q in database", name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return recipes, nil
}

// Save replaces the stored collection in one transaction.
func (s *PostgresStore) Save(ctx context.Context, recipes *Collection) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM recipes"); err != nil {
		return fmt.Errorf("failed to clear recipes table: %w", err)
	}

	for position, name := range recipes.Names() {
		r, _ := recipes.Get(name)
		ingredientsJSON, err := json.Marshal(r.Ingredients)
		if err != nil {
			return fmt.Errorf("failed to marshal ingredients: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO recipes (name, cuisine, ingredients, prep_time, difficulty, rating, position) VALUES ($1, $2, $3, $4, $5, $6, $7)",
			name,
			r.Cuisine,
			ingredientsJSON,
			r.PrepTime,
			r.Difficulty,
			r.Rating,
			position,
		)
		if err != nil {
			return fmt.Errorf("failed to save recipe %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recipes: %w", err)
	}
	return nil
}

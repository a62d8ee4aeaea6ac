package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"recipefinder/internal/api"
	"recipefinder/internal/platform/gemini"
	"recipefinder/internal/platform/localllm"
	"recipefinder/internal/recipe"
)

// Config represents the application configuration.
type Config struct {
	GeminiAPIKey string `json:"gemini_api_key"`
	DatabaseURL  string `json:"DATABASE_URL"`
	DataFile     string `json:"data_file"`
	ListenAddr   string `json:"listen_addr"`
	AllowOrigin  string `json:"allow_origin"`
}

// loadConfig reads config.json. A missing file is fine: the catalog
// runs on its defaults (file storage, no AI suggestions).
func loadConfig() Config {
	config := Config{
		DataFile:    recipe.DefaultDataFile,
		ListenAddr:  ":8080",
		AllowOrigin: "http://localhost:8081",
	}

	configData, err := os.ReadFile("config.json")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("config.json not found, using defaults")
			return config
		}
		panic(fmt.Errorf("failed to read config.json: %w", err))
	}

	if err := json.Unmarshal(configData, &config); err != nil {
		panic(fmt.Errorf("failed to unmarshal config.json: %w", err))
	}
	return config
}

func main() {
	ctx := context.Background()

	config := loadConfig()

	var store recipe.Store
	if config.DatabaseURL != "" {
		dbStore, err := recipe.NewPostgresStore(config.DatabaseURL)
		if err != nil {
			panic(fmt.Errorf("error creating postgres store: %w", err))
		}
		store = dbStore
	} else {
		store = recipe.NewFileStore(config.DataFile)
	}

	finder := recipe.NewFinder(ctx, store)

	var geminiClient api.RecipeGenerator
	if config.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, config.GeminiAPIKey)
		if err != nil {
			panic(fmt.Errorf("error creating gemini client: %w", err))
		}
		geminiClient = client
	}

	localLLMClient := localllm.NewClient()

	handler := api.NewHandler(finder, geminiClient, localLLMClient)

	r := gin.Default()

	// Configure CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.AllowOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/recipes", handler.ListRecipes)
	r.GET("/recipes/:name", handler.GetRecipe)
	r.POST("/recipes", handler.AddRecipe)
	r.GET("/search", handler.SearchRecipes)
	r.GET("/filter", handler.FilterRecipes)
	r.GET("/recommendations", handler.Recommendations)
	r.POST("/suggest", handler.SuggestRecipe)

	r.Run(config.ListenAddr)
}

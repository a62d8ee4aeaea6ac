package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"recipefinder/internal/recipe"
)

// Client is a client for the Gemini API.
type Client struct {
	model *genai.GenerativeModel
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Client{model: client.GenerativeModel("gemini-1.5-flash")}, nil
}

// suggestionPrompt builds the prompt for a recipe suggestion.
func suggestionPrompt(cuisine, difficulty string) string {
	promptText := "Suggest a single home-cooking recipe. Please return one clean JSON object with the following keys and data types: 'name' (string), 'cuisine' (string), 'ingredients' (array of ingredient name strings), 'prep_time' (integer, minutes), 'difficulty' (one of 'Easy', 'Medium', 'Hard'). The JSON response should be clean and not contain any markdown formatting (e.g., ```json)."

	if cuisine != "" {
		promptText += fmt.Sprintf(" The recipe should be %s cuisine.", cuisine)
	}
	if difficulty != "" {
		promptText += fmt.Sprintf(" The recipe difficulty should be %s.", difficulty)
	}
	return promptText
}

// SuggestRecipe asks Gemini for a new recipe idea.
func (c *Client) SuggestRecipe(ctx context.Context, cuisine, difficulty string) (*recipe.Suggestion, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(suggestionPrompt(cuisine, difficulty)))
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response format from Gemini")
	}

	// Extract the JSON from the response, which might be wrapped in markdown
	startIndex := strings.Index(string(text), "{")
	endIndex := strings.LastIndex(string(text), "}")
	if startIndex == -1 || endIndex == -1 || startIndex > endIndex {
		return nil, fmt.Errorf("could not find JSON object in response: %s", text)
	}
	cleanJSON := string(text)[startIndex : endIndex+1]

	suggestion, err := parseSuggestion([]byte(cleanJSON))
	if err != nil {
		return nil, fmt.Errorf("%w. Raw response: %s", err, cleanJSON)
	}
	return suggestion, nil
}

func parseSuggestion(data []byte) (*recipe.Suggestion, error) {
	var payload struct {
		Name        string   `json:"name"`
		Cuisine     string   `json:"cuisine"`
		Ingredients []string `json:"ingredients"`
		PrepTime    int      `json:"prep_time"`
		Difficulty  string   `json:"difficulty"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal suggestion JSON: %w", err)
	}

	return &recipe.Suggestion{
		Name: payload.Name,
		Recipe: recipe.Recipe{
			Cuisine:     payload.Cuisine,
			Ingredients: payload.Ingredients,
			PrepTime:    payload.PrepTime,
			Difficulty:  payload.Difficulty,
		},
	}, nil
}

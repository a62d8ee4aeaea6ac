package localllm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"recipefinder/internal/recipe"
)

// Client represents a client for the local LLM.
type Client struct {
	httpClient *http.Client
	apiURL     string
}

// NewClient creates a new client for the local LLM.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
		apiURL:     "http://localhost:1234/v1/chat/completions",
	}
}

// Request represents the request body for the local LLM.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Message represents a message in the request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response represents the response from the local LLM.
type Response struct {
	Choices []Choice `json:"choices"`
}

// Choice represents a choice in the response.
type Choice struct {
	Message ResponseMessage `json:"message"`
}

// ResponseMessage represents a message in the response.
type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateContent sends a request to the local LLM and returns the response.
func (c *Client) GenerateContent(ctx context.Context, text string) (string, error) {
	reqBody := Request{
		Model: "gemma-3-12b-it:2",
		Messages: []Message{
			{
				Role:    "user",
				Content: text,
			},
		},
		Temperature: 1,
		MaxTokens:   1024,
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received non-OK status code: %d", resp.StatusCode)
	}

	var llmResp Response
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(llmResp.Choices) > 0 {
		return llmResp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("no content found in response")
}

// SuggestRecipe asks the local LLM for a new recipe idea.
func (c *Client) SuggestRecipe(ctx context.Context, cuisine, difficulty string) (*recipe.Suggestion, error) {
	prompt := "Suggest a single home-cooking recipe. Please return one clean JSON object with the following keys and data types: 'name' (string), 'cuisine' (string), 'ingredients' (array of ingredient name strings), 'prep_time' (integer, minutes), 'difficulty' (one of 'Easy', 'Medium', 'Hard'). The JSON response should be clean and not contain any markdown formatting."
	if cuisine != "" {
		prompt += fmt.Sprintf(" The recipe should be %s cuisine.", cuisine)
	}
	if difficulty != "" {
		prompt += fmt.Sprintf(" The recipe difficulty should be %s.", difficulty)
	}

	responseText, err := c.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	// Clean up the response text
	cleanedResponse := strings.TrimPrefix(responseText, "```json")
	cleanedResponse = strings.TrimSuffix(cleanedResponse, "```")
	cleanedResponse = strings.TrimSpace(cleanedResponse)

	var payload struct {
		Name        string   `json:"name"`
		Cuisine     string   `json:"cuisine"`
		Ingredients []string `json:"ingredients"`
		PrepTime    int      `json:"prep_time"`
		Difficulty  string   `json:"difficulty"`
	}
	if err := json.Unmarshal([]byte(cleanedResponse), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe from response: %w", err)
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

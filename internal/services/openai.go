// OpenAI chat completions implementation of [Recommender]
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/moodlist/moodlist/internal/shared"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	defaultOpenAIModel   = "gpt-3.5-turbo"
)

// chatMessage is one entry of the messages array.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// OpenAIService implements the [Recommender] interface against the chat completions API.
type OpenAIService struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIService creates a new chat completion client.
//
// The model defaults to gpt-3.5-turbo; baseURL is overridable for tests.
func NewOpenAIService(apiKey, model, baseURL string) (*OpenAIService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing OpenAI api_key", shared.ErrMissingCredentials)
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	return &OpenAIService{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}, nil
}

func (o *OpenAIService) Name() string {
	return "OpenAI"
}

// Complete sends a single user message and returns the completion text.
func (o *OpenAIService) Complete(ctx context.Context, content string) (string, error) {
	payload, err := json.Marshal(chatCompletionRequest{
		Model:    o.model,
		Messages: []chatMessage{{Role: "user", Content: content}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if completion.Error != nil {
			return "", fmt.Errorf("%w: openai API status %d: %s", shared.ErrAPIRequest, resp.StatusCode, completion.Error.Message)
		}
		return "", fmt.Errorf("%w: openai API status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", shared.ErrAPIRequest)
	}

	return completion.Choices[0].Message.Content, nil
}

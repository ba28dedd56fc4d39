// Package summarizer provides a pluggable interface to the completion
// oracle that compresses a message batch into a short digest.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/threadmind/engram/internal/model"
)

// Summarizer converts an ordered message batch into a short natural-language
// digest. Implementations call an external completion service and so may be
// slow or fail; callers bound them with a context deadline.
type Summarizer interface {
	Summarize(ctx context.Context, messages []model.Message) (string, error)
}

const systemPrompt = `You are a memory consolidation system. Create a concise summary that captures:
1. The main topic(s) discussed
2. Key decisions made or conclusions reached
3. Important technical details (errors, solutions, code snippets)
4. Emotional tone or user preferences expressed
5. Any unresolved questions or next steps

Be specific and factual. This summary will be used to maintain context in future conversations.`

// --- Ollama Provider ---

// OllamaSummarizer uses a local Ollama instance for summarization.
type OllamaSummarizer struct {
	baseURL string
	model   string
	client  *http.Client
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
}

// NewOllamaSummarizer creates a summarizer using Ollama's chat API.
func NewOllamaSummarizer(model string) *OllamaSummarizer {
	baseURL := os.Getenv("OLLAMA_HOST")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaSummarizer{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *OllamaSummarizer) Summarize(ctx context.Context, messages []model.Message) (string, error) {
	prompt := BuildTranscript(messages)

	body, _ := json.Marshal(ollamaChatRequest{
		Model: s.model,
		Messages: []ollamaMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ollama error %d: %s", resp.StatusCode, string(b))
	}

	var result ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Message.Content, nil
}

// --- OpenAI-compatible Provider ---

// OpenAISummarizer uses any OpenAI-compatible chat completion API.
type OpenAISummarizer struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

type openaiChatRequest struct {
	Model       string          `json:"model"`
	Messages    []ollamaMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
}

type openaiChatResponse struct {
	Choices []struct {
		Message ollamaMessage `json:"message"`
	} `json:"choices"`
}

// NewOpenAISummarizer creates a summarizer using an OpenAI-compatible API.
func NewOpenAISummarizer(baseURL, apiKey, model string) *OpenAISummarizer {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAISummarizer{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, messages []model.Message) (string, error) {
	prompt := BuildTranscript(messages)

	body, _ := json.Marshal(openaiChatRequest{
		Model: s.model,
		Messages: []ollamaMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   300,
		Temperature: 0.3,
	})
	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("openai error %d: %s", resp.StatusCode, string(b))
	}

	var result openaiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}
	return result.Choices[0].Message.Content, nil
}

// --- Factory ---

// NewFromEnv creates a summarizer from environment variables.
// ENGRAM_SUMMARIZER: "ollama" | "openai"
// ENGRAM_SUMMARIZER_MODEL: model name
// ENGRAM_SUMMARIZER_URL: base URL override
// OPENAI_API_KEY: for openai provider
func NewFromEnv() Summarizer {
	provider := os.Getenv("ENGRAM_SUMMARIZER")
	modelName := os.Getenv("ENGRAM_SUMMARIZER_MODEL")

	switch provider {
	case "ollama":
		if modelName == "" {
			modelName = "llama3.2"
		}
		return NewOllamaSummarizer(modelName)
	case "openai":
		url := os.Getenv("ENGRAM_SUMMARIZER_URL")
		key := os.Getenv("OPENAI_API_KEY")
		return NewOpenAISummarizer(url, key, modelName)
	default:
		return nil // summarization disabled
	}
}

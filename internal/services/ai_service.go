// internal/services/ai_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ideabay/ideabay-backend/internal/config"
)

// IdeaScorer rates a submitted idea. The purchase price is derived from the
// originality and use-case scores.
type IdeaScorer interface {
	Evaluate(ctx context.Context, title, preview, fullContent string, categories []string) *IdeaAnalysis
}

type IdeaAnalysis struct {
	Originality   float64 `json:"originality"`
	UseCaseValue  float64 `json:"useCaseValue"`
	CategoryMatch float64 `json:"categoryMatch"`
	OverallScore  float64 `json:"overallScore"`
	Feedback      string  `json:"feedback,omitempty"`
}

// neutralAnalysis is returned whenever the model is unreachable or returns
// garbage; a listing submission never fails because scoring did.
func neutralAnalysis() *IdeaAnalysis {
	return &IdeaAnalysis{
		Originality:   5.0,
		UseCaseValue:  5.0,
		CategoryMatch: 5.0,
		OverallScore:  5.0,
		Feedback:      "Analysis unavailable. Please review manually.",
	}
}

// AIService scores ideas with an OpenAI chat-completions model.
type AIService struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
	Temperature    float64           `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewAIService(cfg config.AIConfig) *AIService {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &AIService{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		client: &http.Client{Timeout: timeout},
	}
}

// Evaluate scores an idea on originality, use-case value and category match,
// each 0-10. It never returns an error: any upstream failure degrades to the
// neutral default so listing creation can proceed.
func (s *AIService) Evaluate(ctx context.Context, title, preview, fullContent string, categories []string) *IdeaAnalysis {
	analysis, err := s.evaluate(ctx, title, preview, fullContent, categories)
	if err != nil {
		logrus.WithError(err).Warn("Idea analysis failed, using neutral scores")
		return neutralAnalysis()
	}
	return analysis
}

func (s *AIService) evaluate(ctx context.Context, title, preview, fullContent string, categories []string) (*IdeaAnalysis, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	prompt := fmt.Sprintf(`You are an expert evaluator for a blockchain idea marketplace. Analyze the following idea and provide ratings.

Title: %s
Categories: %s
Preview (150 words max): %s
Full Content (3000 words): %s

Please evaluate this idea on three criteria:
1. Originality (0-10): How unique and innovative is this idea? Does it bring something new to the market?
2. Use Case Value (0-10): How practical and valuable is this idea? Will it solve real problems?
3. Category Match (0-10): How well does the idea fit the selected categories? Does the content align with the categories?

Respond with a JSON object in this exact format:
{
  "originality": <number 0-10>,
  "useCaseValue": <number 0-10>,
  "categoryMatch": <number 0-10>,
  "overallScore": <number 0-10 (average of the three)>,
  "feedback": "<brief feedback string>"
}`, title, strings.Join(categories, ", "), preview, fullContent)

	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are an expert evaluator for blockchain and Web3 ideas. Provide accurate, fair evaluations in JSON format.",
			},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.7,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s: %s", resp.Status, truncate(string(respBody), 200))
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("empty completion")
	}

	var analysis IdeaAnalysis
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &analysis); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}

	// Clamp scores into range; models drift.
	analysis.Originality = clampScore(analysis.Originality)
	analysis.UseCaseValue = clampScore(analysis.UseCaseValue)
	analysis.CategoryMatch = clampScore(analysis.CategoryMatch)

	if analysis.OverallScore == 0 {
		analysis.OverallScore = (analysis.Originality + analysis.UseCaseValue + analysis.CategoryMatch) / 3
	}
	analysis.OverallScore = clampScore(analysis.OverallScore)

	return &analysis, nil
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

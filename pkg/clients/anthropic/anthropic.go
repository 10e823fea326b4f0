package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/herdfeed/internal/domain/models"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	model      = "claude-3-haiku-20240307"
	maxTokens  = 1024
)

// Client defines the interface for herd advisory text generation.
type Client interface {
	GenerateAdvice(ctx context.Context, snapshot models.HerdSnapshot) (string, error)
}

type anthropicClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient creates a configured Anthropic client.
func NewClient(apiKey string) Client {
	return NewClientWithURL(apiKey, apiURL)
}

// NewClientWithURL targets a custom messages endpoint.
func NewClientWithURL(apiKey, url string) Client {
	client := resty.New().
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(15 * time.Second)

	return &anthropicClient{httpClient: client, url: url}
}

type messageRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
	Messages    []Message `json:"messages"`
}

// Message is one turn of the conversation sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

const systemPrompt = `You are a professional livestock nutritionist analyzing a pig farm's current data.
Provide exactly 3 high-impact, actionable management tips to optimize feed conversion ratios (FCR) and reduce waste in group-feeding troughs.
Focus on behavioral monitoring, formulation adjustments, or environment calibration.
Format your response as a bulleted list using standard markdown (* Item). Use bold text (**text**) for key terms.`

// Prompt renders the herd metrics the model reasons over.
func Prompt(s models.HerdSnapshot) string {
	return fmt.Sprintf(`Herd Data:
- Total Population: %d animals
- Underfeeding Incident Rate: %.1f%% (%d pigs)
- Average Body Weight: %.2f kg
- Active Management Groups: %s`,
		s.Count, s.UnderfedRatePercent, s.UnderfedCount, s.AvgWeight, strings.Join(s.DistinctGroups, ", "))
}

func (c *anthropicClient) GenerateAdvice(ctx context.Context, snapshot models.HerdSnapshot) (string, error) {
	reqBody := messageRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      systemPrompt,
		Temperature: 0.7,
		TopP:        0.95,
		Messages:    []Message{{Role: "user", Content: Prompt(snapshot)}},
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post(c.url)

	if err != nil {
		return "", fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("anthropic api error: %s", resp.String())
	}
	if len(respBody.Content) == 0 {
		return "", nil
	}
	return strings.TrimSpace(respBody.Content[0].Text), nil
}

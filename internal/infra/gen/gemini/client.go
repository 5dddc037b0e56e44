package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/haircarepro/server/internal/domain/careplan"
)

const defaultModel = "gemini-1.5-flash"

// Client calls the Gemini API to generate care plans from survey answers.
type Client struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
}

// NewClient constructs a Gemini client bound to one model.
func NewClient(ctx context.Context, apiKey, modelName string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key cannot be empty")
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = defaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	return &Client{client: client, model: model, timeout: timeout}, nil
}

// Generate performs a single bounded generation call and returns the payload
// exactly as the service sent it. No retries; the caller decides.
func (c *Client) Generate(ctx context.Context, survey map[string]string) (careplan.RawPlan, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(buildPrompt(survey)))
	if err != nil {
		return careplan.RawPlan{}, fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return careplan.RawPlan{}, errors.New("gemini returned no content")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return careplan.RawPlan{}, errors.New("gemini returned non-text content")
	}
	return ParseRawPlan(string(text))
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// ParseRawPlan decodes a generation response body into the raw plan shape,
// tolerating markdown code fences around the JSON. The ingredients field is
// left undecoded; normalization happens downstream.
func ParseRawPlan(body string) (careplan.RawPlan, error) {
	sanitized := strings.TrimSpace(body)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	sanitized = strings.TrimSpace(strings.TrimPrefix(sanitized, "json"))

	var plan careplan.RawPlan
	if err := json.Unmarshal([]byte(sanitized), &plan); err != nil {
		return careplan.RawPlan{}, fmt.Errorf("decode generation payload: %w", err)
	}
	plan.RawResponse = json.RawMessage(sanitized)
	return plan, nil
}

func buildPrompt(survey map[string]string) string {
	keys := make([]string, 0, len(survey))
	for k := range survey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var builder strings.Builder
	builder.WriteString("You are a professional trichologist. Based on the hair survey answers below, produce a personalized hair care plan.\n")
	builder.WriteString("Respond ONLY with valid minified JSON using this shape: {\"ingredients\":[{\"name\":string,\"howToUse\":string}],\"washFrequency\":string,\"tips\":string[],\"instructions\":{},\"resources\":string[]}.\n")
	builder.WriteString("Survey answers:\n")
	for _, k := range keys {
		builder.WriteString("- ")
		builder.WriteString(k)
		builder.WriteString(": ")
		builder.WriteString(survey[k])
		builder.WriteByte('\n')
	}
	return builder.String()
}

var _ careplan.Generator = (*Client)(nil)

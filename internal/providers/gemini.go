package providers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	GeminiName           = "gemini"
	GeminiDefaultModel   = "gemini-2.0-flash"
	GeminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

	geminiSystemMessage = "You are a helpful assistant that can extract text from images."
)

// extractPrompt is the fixed extraction instruction sent with every image.
const extractPrompt = `Please extract the name, passport number, and nationality from the provided passport image.
Output as a JSON object in the following format:

{
  "last_name": "<last_name>",
  "first_name": "<first_name>",
  "passport_number": "<passport_number>",
  "nationality": "<nationality>"
}

Name must be in Last Name First Name order.

Return only the JSON object without any additional text, comments, or explanations.

If there are multiple records, return an array of JSON objects.`

// GeminiConfig holds configuration for the Gemini extraction client.
type GeminiConfig struct {
	APIKey       string
	Model        string        // "gemini-2.0-flash" (default)
	BaseURL      string        // OpenAI-compatible endpoint (default: Google's)
	Timeout      time.Duration // Per-request HTTP timeout (default: 120s)
	RateLimitRPM int           // Requests per minute (default: 60)
	HTTPClient   *http.Client  // Optional (tests)
}

// GeminiClient implements Extractor against Gemini's OpenAI-compatible
// chat completions endpoint.
type GeminiClient struct {
	model       string
	rateLimiter *RateLimiter
	client      openai.Client
}

// NewGeminiClient creates a new Gemini extraction client.
func NewGeminiClient(cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key cannot be empty")
	}
	if cfg.Model == "" {
		cfg.Model = GeminiDefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = GeminiDefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httpClient),
		// Retries belong to the batch retry policy, not the SDK transport.
		option.WithMaxRetries(0),
	}

	return &GeminiClient{
		model:       cfg.Model,
		rateLimiter: NewRateLimiter(cfg.RateLimitRPM),
		client:      openai.NewClient(opts...),
	}, nil
}

// Name returns the provider identifier.
func (c *GeminiClient) Name() string {
	return GeminiName
}

// RateLimiterStatus reports how many requests the client has issued and
// how long it spent throttled.
func (c *GeminiClient) RateLimiterStatus() (requests int64, waited time.Duration) {
	return c.rateLimiter.Status()
}

// Extract runs passport-field OCR on a single image.
func (c *GeminiClient) Extract(ctx context.Context, imagePath string) (*PassportFields, error) {
	dataURL, err := encodeImage(imagePath)
	if err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, newError(KindTransientNetwork, "rate limit wait interrupted", err)
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(geminiSystemMessage),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(extractPrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL,
				}),
			}),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, classifyAPIError(err)
	}

	if len(completion.Choices) == 0 {
		return nil, newError(KindTransientModel, "no choices in model response", nil)
	}

	return decodeFields(completion.Choices[0].Message.Content)
}

// classifyAPIError maps transport and API failures onto the error taxonomy.
func classifyAPIError(err error) *ExtractError {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == http.StatusTooManyRequests:
			return newError(KindRateLimit, "model rate limit exceeded", err)
		case apierr.StatusCode >= 500:
			return newError(KindTransientNetwork, "model service unavailable", err)
		case apierr.StatusCode >= 400:
			return newError(KindInvalidInput, "model rejected request", err)
		}
	}
	// Timeouts, connection resets, DNS failures.
	return newError(KindTransientNetwork, "request failed", err)
}

// encodeImage reads an image file and returns it as a base64 data URL.
func encodeImage(imagePath string) (string, error) {
	mime, ok := imageMIMEType(imagePath)
	if !ok {
		return "", newError(KindUnsupportedFormat,
			fmt.Sprintf("unsupported image format: %s", filepath.Ext(imagePath)), nil)
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", newError(KindInvalidInput,
			fmt.Sprintf("failed to read image %s", filepath.Base(imagePath)), err)
	}
	if len(data) == 0 {
		return "", newError(KindInvalidInput,
			fmt.Sprintf("image %s is empty", filepath.Base(imagePath)), nil)
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func imageMIMEType(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png", true
	case ".jpg", ".jpeg":
		return "image/jpeg", true
	case ".gif":
		return "image/gif", true
	case ".bmp":
		return "image/bmp", true
	}
	return "", false
}

package analysis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/lingua-health/lingua/internal/model"
)

const (
	// DefaultModel analyzes images.
	DefaultModel = "gpt-4o"
	// DefaultTextModel handles translation and chat.
	DefaultTextModel = "gpt-4o-mini"

	analysisMaxTokens = 4096
	textMaxTokens     = 2048
)

// Config configures the OpenAI-compatible client.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	ChatModel      string
	TranslateModel string
	Timeout        time.Duration
	HTTPClient     *http.Client
}

// Client implements Analyzer, Chatter, and i18n.Translator over the chat
// completions API.
type Client struct {
	api            *openai.Client
	model          string
	chatModel      string
	translateModel string
	timeout        time.Duration
}

// NewClient builds a client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("analysis api key is empty")
	}
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		apiCfg.HTTPClient = cfg.HTTPClient
	}
	c := &Client{
		api:            openai.NewClientWithConfig(apiCfg),
		model:          orDefault(cfg.Model, DefaultModel),
		chatModel:      orDefault(cfg.ChatModel, DefaultTextModel),
		translateModel: orDefault(cfg.TranslateModel, DefaultTextModel),
		timeout:        cfg.Timeout,
	}
	return c, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// Analyze sends the image data URL and decodes the validated result.
func (c *Client) Analyze(ctx context.Context, image string, lang string) (model.AnalysisResult, error) {
	if !strings.HasPrefix(image, "data:image/") {
		return model.AnalysisResult{}, fmt.Errorf("%w: expected an image data URL", ErrUnsupportedImage)
	}
	req := openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: AnalysisSystemPrompt(lang)},
			{Role: openai.ChatMessageRoleUser, MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: AnalysisUserPrompt()},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL:    image,
					Detail: openai.ImageURLDetailHigh,
				}},
			}},
		},
	}
	setMaxTokens(&req, analysisMaxTokens)
	content, err := c.complete(ctx, req)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	return DecodeResult(content)
}

// Translate returns the source dictionary translated into lang. Values that
// do not come back as strings are dropped.
func (c *Client) Translate(ctx context.Context, lang string, source map[string]string) (map[string]string, error) {
	prompt, err := TranslatePrompt(lang, source)
	if err != nil {
		return nil, err
	}
	req := openai.ChatCompletionRequest{
		Model: c.translateModel,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	setMaxTokens(&req, textMaxTokens)
	content, err := c.complete(ctx, req)
	if err != nil {
		return nil, err
	}
	return DecodeTranslation(content)
}

// Chat answers a follow-up question about result.
func (c *Client) Chat(ctx context.Context, question string, result model.AnalysisResult, lang string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: ChatPrompt(question, result, lang)},
		},
	}
	setMaxTokens(&req, textMaxTokens)
	content, err := c.complete(ctx, req)
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		if isQuota(err) {
			return "", fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens instead of MaxTokens.
func setMaxTokens(req *openai.ChatCompletionRequest, n int) {
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(req.Model, prefix) {
			req.MaxCompletionTokens = n
			return
		}
	}
	req.MaxTokens = n
}

func isQuota(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}

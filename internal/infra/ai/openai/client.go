package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"

	domai "github.com/cheema22g77/kwooka-compliance/internal/domain/ai"
)

const defaultMaxTokens = 4096

// Client adapts the OpenAI-compatible chat API to the domain ai.Client port.
type Client struct {
	api   *openai.Client
	model string
}

func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

func (c *Client) buildRequest(req domai.Request) openai.ChatCompletionRequest {
	model := c.model
	if model == "" {
		model = "gpt-4o"
	}
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleSystem, Content: req.System,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	out := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if req.JSONOutput {
		out.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		out.MaxCompletionTokens = maxTokens
	} else {
		out.MaxTokens = maxTokens
	}
	return out
}

// Complete runs a single blocking completion.
func (c *Client) Complete(ctx context.Context, req domai.Request) (domai.Result, error) {
	resp, err := c.api.CreateChatCompletion(ctx, c.buildRequest(req))
	if err != nil {
		return domai.Result{}, mapError(err)
	}
	if len(resp.Choices) == 0 {
		return domai.Result{}, fmt.Errorf("completion returned no choices")
	}
	return domai.Result{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: domai.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// Stream runs a streaming completion, forwarding deltas to fn in generation
// order, and returns the assembled result after the stream ends.
func (c *Client) Stream(ctx context.Context, req domai.Request, fn domai.StreamFunc) (domai.Result, error) {
	creq := c.buildRequest(req)
	creq.Stream = true

	stream, err := c.api.CreateChatCompletionStream(ctx, creq)
	if err != nil {
		return domai.Result{}, mapError(err)
	}
	defer stream.Close()

	var full strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domai.Result{Text: full.String()}, mapError(err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if fn != nil {
			if err := fn(delta); err != nil {
				return domai.Result{Text: full.String()}, err
			}
		}
	}

	return domai.Result{Text: full.String(), Model: creq.Model}, nil
}

func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
		return domai.ErrQuotaExceeded
	}
	return fmt.Errorf("failed to create chat completion: %w", err)
}

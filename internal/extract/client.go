// Package extract turns raw text into knowledge unit drafts and semantic
// relations using an LLM, with heuristic candidate selection and
// deduplication around the model calls.
package extract

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// Client is the completion surface the extractors need.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// OpenAIClient calls an OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
	log    *logrus.Logger
}

const completionRetries = 3

// NewOpenAIClient builds a client for baseURL. An empty apiKey is replaced
// with a placeholder for gateways that do not check it.
func NewOpenAIClient(baseURL, apiKey, model string, log *logrus.Logger) *OpenAIClient {
	if apiKey == "" {
		apiKey = "unused"
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
		log:    log,
	}
}

// Complete sends one system+user exchange and returns the model's text,
// retrying transient failures with linear backoff.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.2,
	}

	var (
		resp openai.ChatCompletionResponse
		err  error
	)

	for attempt := 0; attempt < completionRetries; attempt++ {
		if attempt > 0 {
			c.log.WithFields(logrus.Fields{
				"attempt": attempt + 1,
				"model":   c.model,
			}).Warn("retrying completion request")

			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		resp, err = c.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}

		c.log.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"model":   c.model,
			"error":   err.Error(),
		}).Error("completion request failed")
	}

	if err != nil {
		return "", fmt.Errorf("completion failed after %d attempts: %w", completionRetries, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

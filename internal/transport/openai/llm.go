package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/planagent/internal/domain"
	"github.com/kailas-cloud/planagent/internal/metrics"
)

// Generator produces answers via the OpenAI-compatible chat API. Implements
// usecase/answer.Generator.
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	user        string
	provider    string
	logger      *zap.Logger
	configured  bool
}

// GeneratorConfig holds the chat provider settings.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	User        string
	Provider    string
	Logger      *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat provider. With an empty API
// key the generator is unconfigured and every call reports
// ErrGenerationUnconfigured.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		user:        cfg.User,
		provider:    cfg.Provider,
		logger:      cfg.Logger,
		configured:  cfg.APIKey != "",
	}
}

// Complete returns the full answer in one call.
func (g *Generator) Complete(ctx context.Context, system, user string) (string, error) {
	if !g.configured {
		return "", domain.ErrGenerationUnconfigured
	}

	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, g.request(system, user))

	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return "", parseAPIError("llm", domain.ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGenerationFailed)
	}

	metrics.LLMRequestsTotal.WithLabelValues(g.provider, g.model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(g.provider, g.model).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}

// Stream delivers content deltas through emit in arrival order and returns
// their concatenation.
func (g *Generator) Stream(ctx context.Context, system, user string, emit func(string) error) (string, error) {
	if !g.configured {
		return "", domain.ErrGenerationUnconfigured
	}

	start := time.Now()

	req := g.request(system, user)
	req.Stream = true

	stream, err := g.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return "", parseAPIError("llm", domain.ErrGenerationFailed, err)
	}
	defer stream.Close()

	var full strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			metrics.LLMRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
			return "", parseAPIError("llm", domain.ErrGenerationFailed, err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		fragment := chunk.Choices[0].Delta.Content
		if fragment == "" {
			continue
		}
		full.WriteString(fragment)
		if err := emit(fragment); err != nil {
			return "", err
		}
	}

	metrics.LLMRequestsTotal.WithLabelValues(g.provider, g.model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(g.provider, g.model).Observe(time.Since(start).Seconds())

	return full.String(), nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Generator) HealthCheck(ctx context.Context) error {
	if !g.configured {
		return domain.ErrGenerationUnconfigured
	}
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (g *Generator) request(system, user string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		User:        g.user,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
}

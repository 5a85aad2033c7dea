// Package llm hosts the Ark-backed language model services: answer
// preprocessing, summarisation, topic discovery and question import
// formatting. All prompt invocations share one chat model and one circuit
// breaker, so a misbehaving upstream trips every service at once instead of
// letting each discover the outage on its own.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/sony/gobreaker"

	"github.com/fredrikfh/Quizzma/internal/metrics"
)

// Config carries the Ark credentials and model identity.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client owns the shared chat model and circuit breaker.
type Client struct {
	chatModel model.ChatModel
	modelName string
	breaker   *gobreaker.CircuitBreaker
	logger    *slog.Logger
}

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("llm: api key and model are required")
	}

	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create chat model: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "llm",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			logger.Warn("llm circuit breaker state changed", "from", from.String(), "to", to.String())
			metrics.LLMBreakerState.Set(breakerStateToFloat(to))
		},
	})

	return &Client{
		chatModel: chatModel,
		modelName: cfg.Model,
		breaker:   breaker,
		logger:    logger,
	}, nil
}

// ModelName is recorded as the algorithm on LLM-produced analyses.
func (c *Client) ModelName() string {
	return c.modelName
}

// runnableChain is a compiled prompt template plus chat model.
type runnableChain = compose.Runnable[map[string]any, *schema.Message]

// compile builds a reusable prompt chain. The system message is optional.
func (c *Client) compile(ctx context.Context, systemPrompt, userPrompt string) (runnableChain, error) {
	messages := make([]schema.MessagesTemplate, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, schema.SystemMessage(systemPrompt))
	}
	messages = append(messages, schema.UserMessage(userPrompt))

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(prompt.FromMessages(schema.FString, messages...))
	chain.AppendChatModel(c.chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("llm: compile chain: %w", err)
	}
	return runnable, nil
}

// invoke runs a compiled chain through the circuit breaker and returns the
// raw message content.
func (c *Client) invoke(ctx context.Context, runnable runnableChain, input map[string]any) (string, error) {
	out, err := c.breaker.Execute(func() (any, error) {
		msg, err := runnable.Invoke(ctx, input)
		if err != nil {
			return nil, err
		}
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			return nil, fmt.Errorf("empty model response")
		}
		return msg.Content, nil
	})
	if err != nil {
		return "", fmt.Errorf("llm: invoke: %w", err)
	}
	return out.(string), nil
}

// decodeJSON extracts the first JSON value from model output, tolerating
// markdown fences and surrounding prose.
func decodeJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	start := strings.IndexAny(trimmed, "{[")
	if start == -1 {
		return fmt.Errorf("llm: no json in model output")
	}
	var end int
	if trimmed[start] == '{' {
		end = strings.LastIndex(trimmed, "}")
	} else {
		end = strings.LastIndex(trimmed, "]")
	}
	if end <= start {
		return fmt.Errorf("llm: unterminated json in model output")
	}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), target); err != nil {
		return fmt.Errorf("llm: decode model output: %w", err)
	}
	return nil
}

func breakerStateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

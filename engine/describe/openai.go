// Package describe drafts parameter and keyword descriptions with an LLM so
// generated CMake docs start with something better than placeholders.
package describe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/compozy/testproject/engine/cmakedoc"
	"github.com/compozy/testproject/engine/core"
	pkgerrors "github.com/compozy/testproject/pkg/errors"
	"github.com/compozy/testproject/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// Config holds describer settings
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Retry   *pkgerrors.RetryConfig
}

// OpenAIDescriber implements cmakedoc.Describer using the chat completions API
type OpenAIDescriber struct {
	client *openai.Client
	model  string
	retry  *pkgerrors.RetryConfig
}

// NewOpenAIDescriber creates a describer. An API key is required.
func NewOpenAIDescriber(config Config) (*OpenAIDescriber, error) {
	if config.APIKey == "" {
		return nil, core.Errorf(core.ErrorCodeInvalidInput, nil, "llm api key is required to draft descriptions")
	}
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	model := config.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIDescriber{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		retry:  config.Retry,
	}, nil
}

// Describe asks the model for one sentence per parameter and keyword of c
func (d *OpenAIDescriber) Describe(ctx context.Context, c *cmakedoc.Callable) (cmakedoc.Descriptions, error) {
	names := Names(c)
	if len(names) == 0 {
		return nil, nil
	}

	content, err := pkgerrors.WithRetryTyped(ctx, "describe_"+c.Name, d.retry, func() (string, error) {
		return d.complete(ctx, c, names)
	})
	if err != nil {
		return nil, err
	}

	var drafted map[string]string
	if err := json.Unmarshal([]byte(extractJSON(content)), &drafted); err != nil {
		return nil, core.NewError(fmt.Errorf("model returned invalid json: %w", err),
			core.ErrorCodeInvalidInput, map[string]any{"callable": c.Name})
	}

	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	out := make(cmakedoc.Descriptions)
	for name, text := range drafted {
		text = strings.TrimSpace(text)
		if !known[name] || text == "" {
			continue
		}
		out[out.Key(c.Name, name)] = text
	}
	logger.Debug("drafted descriptions", "callable", c.Name, "count", len(out))
	return out, nil
}

func (d *OpenAIDescriber) complete(ctx context.Context, c *cmakedoc.Callable, names []string) (string, error) {
	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(c, names)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0.2,
		MaxTokens:      800,
	})
	if err != nil {
		return "", classify(err, c.Name)
	}
	if len(resp.Choices) == 0 {
		return "", core.Errorf(core.ErrorCodeDescriberFailed, map[string]any{"callable": c.Name}, "no response from model")
	}
	return resp.Choices[0].Message.Content, nil
}

// classify marks rate limits and server errors retryable
func classify(err error, callable string) error {
	meta := map[string]any{"callable": callable}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500 {
			return core.NewError(err, core.ErrorCodeDescriberFailed, meta)
		}
		return core.NewError(err, core.ErrorCodeInvalidInput, meta)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode < 500 && reqErr.HTTPStatusCode != http.StatusTooManyRequests {
		return core.NewError(err, core.ErrorCodeInvalidInput, meta)
	}
	return core.NewError(err, core.ErrorCodeDescriberFailed, meta)
}

const systemPrompt = `You document CMake functions and macros.
Reply with a single JSON object mapping each requested parameter or keyword name
to one short sentence describing it. Do not invent names that were not requested.`

func buildPrompt(c *cmakedoc.Callable, names []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CMake %s `%s`.\n\n", c.Kind, c.Name)
	b.WriteString("Synopsis:\n")
	for _, l := range cmakedoc.Synopsis(c) {
		b.WriteString("    " + l + "\n")
	}
	if strings.TrimSpace(c.Doc) != "" {
		b.WriteString("\nExisting documentation:\n" + c.Doc + "\n")
	}
	b.WriteString("\nDescribe these names: " + strings.Join(names, ", ") + "\n")
	return b.String()
}

// Names lists the parameters and keywords of c in declaration order, without duplicates
func Names(c *cmakedoc.Callable) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(names []string) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	add(c.Args)
	for _, s := range c.Specs {
		add(s.Options)
		add(s.OneValueArgs)
		add(s.MultiValueArgs)
	}
	return out
}

// extractJSON strips a markdown fence if the model added one
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}

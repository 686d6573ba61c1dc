// Package openai provides an Invoker backed by the OpenAI Chat Completions
// API with function/tool calling.
package openai

import (
	"context"
	"fmt"

	"github.com/TejasriPacharu/code-help/model"
	"github.com/TejasriPacharu/code-help/tool"
	"github.com/openai/openai-go"
)

// Options configure the OpenAI adapter. Fields mirror a minimal subset of
// Chat Completion parameters; extend via functional options without breaking
// callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Invoker wraps the OpenAI Chat Completions API behind the generic
// model.Invoker interface.
type Invoker struct {
	client *openai.Client
	opts   Options
}

// NewInvoker creates a new OpenAI invoker using the official client.
func NewInvoker(optFns ...func(o *Options)) *Invoker {
	client := openai.NewClient()
	return NewInvokerFromClient(&client, optFns...)
}

// NewInvokerFromClient creates a new OpenAI invoker from an existing client.
func NewInvokerFromClient(client *openai.Client, optFns ...func(o *Options)) *Invoker {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Invoker{client: client, opts: opts}
}

// Invoke implements model.Invoker with a single non-streaming completion.
func (m *Invoker) Invoke(ctx context.Context, req model.Request) (model.Decision, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
	defs := req.Tools
	if len(req.Targets) > 0 {
		defs = append(append([]tool.Definition{}, defs...), model.TransferDefinition(req.Targets))
	}
	if len(defs) > 0 {
		tools := make([]openai.ChatCompletionToolParam, len(defs))
		for i, def := range defs {
			tools[i] = openai.ChatCompletionToolParam{
				Type: "function",
				Function: openai.FunctionDefinitionParam{
					Name:        def.Name,
					Description: openai.String(def.Description),
					Parameters:  def.Parameters,
				},
			}
		}
		params.Tools = tools
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return model.Decision{}, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return model.Decision{}, fmt.Errorf("openai api error: empty choices")
	}

	choice := resp.Choices[0]
	var calls []model.ToolCall
	for _, tc := range choice.Message.ToolCalls {
		calls = append(calls, model.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	decision, err := model.DecideFromCalls(choice.Message.Content, calls)
	if err != nil {
		return model.Decision{}, err
	}
	decision.Refusal = choice.Message.Refusal != ""
	return decision, nil
}

// Info returns metadata describing this OpenAI adapter.
func (m *Invoker) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "openai"}
}

// buildMessages converts normalized messages into OpenAI chat messages,
// emitting each tool result as a tool message referencing its call id.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	var out []openai.ChatCompletionMessageParamUnion
	if req.Instructions != "" {
		out = append(out, openai.SystemMessage(req.Instructions))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case "assistant":
			if len(msg.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(msg.Text))
				continue
			}
			toolCalls := make([]openai.ChatCompletionMessageToolCallParam, len(msg.ToolCalls))
			for i, tc := range msg.ToolCalls {
				toolCalls[i] = openai.ChatCompletionMessageToolCallParam{
					ID:   tc.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				}
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: toolCalls,
				},
			})
		case "tool":
			if msg.ToolResult != nil {
				out = append(out, openai.ToolMessage(msg.ToolResult.Result, msg.ToolResult.CallID))
			}
		default:
			out = append(out, openai.UserMessage(msg.Text))
		}
	}
	return out
}

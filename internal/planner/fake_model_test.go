package planner

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

// fakeModel replays a canned response and records the prompt it was given.
type fakeModel struct {
	content   string
	toolCalls []llms.ToolCall
	err       error
	calls     int
	prompt    string
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	for _, msg := range messages {
		for _, p := range msg.Parts {
			if tp, ok := p.(llms.TextContent); ok {
				m.prompt += tp.Text
			}
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			Content:        m.content,
			ToolCalls:      m.toolCalls,
			GenerationInfo: map[string]any{"PromptTokens": 10, "CompletionTokens": 20},
		}},
	}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

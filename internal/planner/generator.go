package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/rahul/pathwise/internal/goal"
	"github.com/rahul/pathwise/internal/observability"
	"github.com/tmc/langchaingo/llms"
)

const proposePlanTool = "propose_plan"

// Source tells where a plan came from.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Generator turns a goal statement into an ordered list of step drafts.
type Generator struct {
	Model   llms.Model // nil when no provider credential is configured
	Prompts *PromptManager
	Logger  *observability.Logger
	// ModelName is only used to label cost events.
	ModelName string
	// Timeout bounds the provider call. Zero means no limit.
	Timeout time.Duration
	// UseTools offers the propose_plan tool to the model in addition to
	// the free-text JSON instructions.
	UseTools bool
}

func NewGenerator(model llms.Model, prompts *PromptManager, logger *observability.Logger) *Generator {
	return &Generator{
		Model:   model,
		Prompts: prompts,
		Logger:  logger,
	}
}

// Generate never fails: any provider, parse or validation error is logged
// and replaced by the fallback plan.
func (g *Generator) Generate(ctx context.Context, goalText string) ([]goal.StepDraft, Source) {
	drafts, err := g.GenerateStrict(ctx, goalText)
	if err != nil {
		log.Printf("Plan generation failed, using fallback: %v", err)
		g.Logger.LogFallback(goalText, err)
		observability.Incr(observability.CounterPlansFallback)
		return Fallback(), SourceFallback
	}
	g.Logger.LogPlan(goalText, len(drafts), string(SourceAI))
	observability.Incr(observability.CounterPlansAI)
	return drafts, SourceAI
}

// GenerateStrict asks the provider once and returns its error, if any,
// instead of falling back.
func (g *Generator) GenerateStrict(ctx context.Context, goalText string) ([]goal.StepDraft, error) {
	if g.Model == nil {
		return nil, &UpstreamUnavailableError{Err: ErrNoProvider}
	}

	prompt, err := g.Prompts.PlanPrompt(goalText)
	if err != nil {
		return nil, err
	}

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	var opts []llms.CallOption
	if g.UseTools {
		opts = append(opts, llms.WithTools(planTools))
	}

	resp, err := g.Model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return nil, &UpstreamUnavailableError{Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, &UpstreamUnavailableError{Err: errors.New("empty response")}
	}

	choice := resp.Choices[0]
	g.Logger.LogLLM(prompt, choice.Content, choice.ToolCalls)
	g.logCost(choice.GenerationInfo)

	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil || tc.FunctionCall.Name != proposePlanTool {
			continue
		}
		var args struct {
			Steps json.RawMessage `json:"steps"`
		}
		if err := json.Unmarshal([]byte(tc.FunctionCall.Arguments), &args); err != nil {
			return nil, &MalformedPlanError{Index: -1, Reason: fmt.Sprintf("failed to parse %s arguments: %v", proposePlanTool, err)}
		}
		return DecodePlan(args.Steps)
	}

	return ParseResponse(choice.Content)
}

func (g *Generator) logCost(info map[string]any) {
	if info == nil {
		return
	}
	prompt := intInfo(info, "PromptTokens", "input_tokens")
	completion := intInfo(info, "CompletionTokens", "output_tokens")
	if prompt == 0 && completion == 0 {
		return
	}
	g.Logger.LogCost(prompt, completion, g.ModelName)
}

func intInfo(info map[string]any, keys ...string) int {
	for _, k := range keys {
		switch v := info[k].(type) {
		case int:
			return v
		case int32:
			return int(v)
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}

var planTools = []llms.Tool{
	{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        proposePlanTool,
			Description: "Submit a structured learning plan consisting of ordered steps.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"steps": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"title":       map[string]any{"type": "string"},
								"description": map[string]any{"type": "string"},
								"duration":    map[string]any{"type": "string"},
								"priority": map[string]any{
									"type": "string",
									"enum": []string{"High", "Medium", "Low"},
								},
								"order": map[string]any{"type": "integer"},
							},
							"required": []string{"title", "description", "duration", "priority", "order"},
						},
					},
				},
				"required": []string{"steps"},
			},
		},
	},
}

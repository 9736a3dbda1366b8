package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ormasoftchile/qaform/pkg/engine"
)

// Handlers implements the qaform MCP tools on top of an engine
// instance.
type Handlers struct {
	Engine *engine.Engine
}

// Describe implements the qaform/describe tool.
func (h *Handlers) Describe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	formID, _ := args["form_id"].(string)
	if formID == "" {
		return errorResult("form_id argument is required"), nil
	}
	configJSON, _ := args["config_json"].(string)
	return payloadResult(h.Engine.Describe(formID, configJSON)), nil
}

// AnswerSchema implements the qaform/answer_schema tool.
func (h *Handlers) AnswerSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	formID, _ := args["form_id"].(string)
	if formID == "" {
		return errorResult("form_id argument is required"), nil
	}
	configJSON, _ := args["config_json"].(string)
	ctxJSON, _ := args["context_json"].(string)
	return payloadResult(h.Engine.AnswerSchema(formID, configJSON, ctxJSON)), nil
}

// ExampleAnswers implements the qaform/example_answers tool.
func (h *Handlers) ExampleAnswers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	formID, _ := args["form_id"].(string)
	if formID == "" {
		return errorResult("form_id argument is required"), nil
	}
	configJSON, _ := args["config_json"].(string)
	ctxJSON, _ := args["context_json"].(string)
	return payloadResult(h.Engine.ExampleAnswers(formID, configJSON, ctxJSON)), nil
}

// ValidateAnswers implements the qaform/validate_answers tool.
func (h *Handlers) ValidateAnswers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	formID, _ := args["form_id"].(string)
	if formID == "" {
		return errorResult("form_id argument is required"), nil
	}
	configJSON, _ := args["config_json"].(string)
	answersJSON := stringArg(args, "answers_json", "{}")
	return payloadResult(h.Engine.ValidateAnswers(formID, configJSON, answersJSON)), nil
}

// Next implements the qaform/next tool.
func (h *Handlers) Next(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	formID, _ := args["form_id"].(string)
	if formID == "" {
		return errorResult("form_id argument is required"), nil
	}
	ctxJSON := stringArg(args, "context_json", "{}")
	answersJSON := stringArg(args, "answers_json", "{}")
	return payloadResult(h.Engine.Next(formID, ctxJSON, answersJSON)), nil
}

// ApplyStore implements the qaform/apply_store tool.
func (h *Handlers) ApplyStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	formID, _ := args["form_id"].(string)
	if formID == "" {
		return errorResult("form_id argument is required"), nil
	}
	ctxJSON := stringArg(args, "context_json", "{}")
	answersJSON := stringArg(args, "answers_json", "{}")
	return payloadResult(h.Engine.ApplyStore(formID, ctxJSON, answersJSON)), nil
}

// Render implements the qaform/render tool.
func (h *Handlers) Render(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	formID, _ := args["form_id"].(string)
	if formID == "" {
		return errorResult("form_id argument is required"), nil
	}
	configJSON, _ := args["config_json"].(string)
	ctxJSON := stringArg(args, "context_json", "{}")
	answersJSON := stringArg(args, "answers_json", "{}")

	format, _ := args["format"].(string)
	switch format {
	case "text":
		return textResult(h.Engine.RenderText(formID, configJSON, ctxJSON, answersJSON)), nil
	case "card":
		return payloadResult(h.Engine.RenderCard(formID, configJSON, ctxJSON, answersJSON)), nil
	case "", "json":
		return payloadResult(h.Engine.RenderJSONUI(formID, configJSON, ctxJSON, answersJSON)), nil
	default:
		return errorResult(fmt.Sprintf("unknown format %q — use 'text', 'json', or 'card'", format)), nil
	}
}

// SubmitPatch implements the qaform/submit_patch tool.
func (h *Handlers) SubmitPatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	formID, _ := args["form_id"].(string)
	questionID, _ := args["question_id"].(string)
	valueJSON, _ := args["value_json"].(string)
	if formID == "" || questionID == "" || valueJSON == "" {
		return errorResult("form_id, question_id, and value_json arguments are required"), nil
	}
	configJSON, _ := args["config_json"].(string)
	ctxJSON := stringArg(args, "context_json", "{}")
	answersJSON := stringArg(args, "answers_json", "{}")
	return payloadResult(h.Engine.SubmitPatch(formID, configJSON, ctxJSON, answersJSON, questionID, valueJSON)), nil
}

// SubmitAll implements the qaform/submit_all tool.
func (h *Handlers) SubmitAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	formID, _ := args["form_id"].(string)
	if formID == "" {
		return errorResult("form_id argument is required"), nil
	}
	configJSON, _ := args["config_json"].(string)
	ctxJSON := stringArg(args, "context_json", "{}")
	answersJSON := stringArg(args, "answers_json", "{}")
	return payloadResult(h.Engine.SubmitAll(formID, configJSON, ctxJSON, answersJSON)), nil
}

func stringArg(args map[string]any, key, fallback string) string {
	if s, ok := args[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// payloadResult wraps an engine response, marking it as an error when
// the boundary returned an error payload.
func payloadResult(payload string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(payload)},
		IsError: isErrorPayload(payload),
	}
}

// isErrorPayload detects the boundary's {"error": "..."} shape.
func isErrorPayload(payload string) bool {
	var probe struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal([]byte(payload), &probe); err != nil {
		return false
	}
	return probe.Error != nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}

// Package mcp exposes the form engine's boundary calls as MCP tools so
// AI agents can drive a form session over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ormasoftchile/qaform/pkg/engine"
)

// NewServer creates a new MCP server with qaform tools registered.
func NewServer(version string, eng *engine.Engine) *server.MCPServer {
	s := server.NewMCPServer(
		"qaform",
		version,
		server.WithToolCapabilities(true),
	)

	h := &Handlers{Engine: eng}

	specArg := mcp.WithString("config_json", mcp.Description("Spec-config JSON; embeds the form spec as form_spec_json or omits it to use the default fixture"))
	ctxArg := mcp.WithString("context_json", mcp.Description("Context JSON carrying the store namespaces and secrets_host_available"))
	answersArg := mcp.WithString("answers_json", mcp.Description("Answer set JSON object"))

	s.AddTool(
		mcp.NewTool("qaform/describe",
			mcp.WithDescription("Return the full form specification"),
			mcp.WithString("form_id", mcp.Required(), mcp.Description("Form id to describe")),
			specArg,
		),
		h.Describe,
	)

	s.AddTool(
		mcp.NewTool("qaform/answer_schema",
			mcp.WithDescription("Return the JSON-Schema-shaped answer description scoped to visible questions"),
			mcp.WithString("form_id", mcp.Required(), mcp.Description("Form id")),
			specArg, ctxArg,
		),
		h.AnswerSchema,
	)

	s.AddTool(
		mcp.NewTool("qaform/example_answers",
			mcp.WithDescription("Return one plausible example value per visible question"),
			mcp.WithString("form_id", mcp.Required(), mcp.Description("Form id")),
			specArg, ctxArg,
		),
		h.ExampleAnswers,
	)

	s.AddTool(
		mcp.NewTool("qaform/validate_answers",
			mcp.WithDescription("Validate an answer set against the form"),
			mcp.WithString("form_id", mcp.Required(), mcp.Description("Form id")),
			specArg, answersArg,
		),
		h.ValidateAnswers,
	)

	s.AddTool(
		mcp.NewTool("qaform/next",
			mcp.WithDescription("Return the next unanswered visible question and progress counters"),
			mcp.WithString("form_id", mcp.Required(), mcp.Description("Form id")),
			ctxArg, answersArg,
		),
		h.Next,
	)

	s.AddTool(
		mcp.NewTool("qaform/apply_store",
			mcp.WithDescription("Apply the form's store operations and return the updated store context"),
			mcp.WithString("form_id", mcp.Required(), mcp.Description("Form id")),
			ctxArg, answersArg,
		),
		h.ApplyStore,
	)

	s.AddTool(
		mcp.NewTool("qaform/render",
			mcp.WithDescription("Render the form as text, JSON UI, or an Adaptive Card"),
			mcp.WithString("form_id", mcp.Required(), mcp.Description("Form id")),
			mcp.WithString("format", mcp.Description("Output format: text, json, or card (default json)")),
			specArg, ctxArg, answersArg,
		),
		h.Render,
	)

	s.AddTool(
		mcp.NewTool("qaform/submit_patch",
			mcp.WithDescription("Submit a single answer; validates and, when valid, applies store operations"),
			mcp.WithString("form_id", mcp.Required(), mcp.Description("Form id")),
			mcp.WithString("question_id", mcp.Required(), mcp.Description("Question being answered")),
			mcp.WithString("value_json", mcp.Required(), mcp.Description("Answer value as JSON")),
			specArg, ctxArg, answersArg,
		),
		h.SubmitPatch,
	)

	s.AddTool(
		mcp.NewTool("qaform/submit_all",
			mcp.WithDescription("Submit and validate the entire answer set at once"),
			mcp.WithString("form_id", mcp.Required(), mcp.Description("Form id")),
			specArg, ctxArg, answersArg,
		),
		h.SubmitAll,
	)

	return s
}

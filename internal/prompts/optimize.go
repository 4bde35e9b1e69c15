// Package prompts implements the MCP prompts shipped with focal.
package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// OptimizePrompt handles the focal-optimize MCP prompt. It walks the
// AI through the scan → select → report loop for the current task.
type OptimizePrompt struct{}

// NewOptimizePrompt creates an OptimizePrompt.
func NewOptimizePrompt() *OptimizePrompt {
	return &OptimizePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *OptimizePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("focal-optimize",
		mcp.WithPromptDescription(
			"Optimize the context for your current task: rescan the project, "+
				"select the best-fitting working set under budget, and review "+
				"the usage report.",
		),
		mcp.WithArgument("task",
			mcp.ArgumentDescription("Short description of the task you are working on"),
		),
	)
}

// Handle processes the focal-optimize prompt request.
func (p *OptimizePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	task := "my current task"
	if args := req.Params.Arguments; args != nil {
		if t, ok := args["task"]; ok && t != "" {
			task = t
		}
	}

	return &mcp.GetPromptResult{
		Description: "Context optimization",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please optimize my working context for this task: " + task + "\n\n" +
						"1. Run `ctx_scan` so the catalog reflects my latest edits\n" +
						"2. Run `ctx_select` with the task description above\n" +
						"3. If the verdict is `warn`, tell me which low-value items to unpin or which budget to set\n" +
						"4. Finish with `ctx_report` and summarize the usage numbers for me",
				),
			},
		},
	}, nil
}

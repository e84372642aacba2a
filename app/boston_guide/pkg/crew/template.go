package crew

import (
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// stepTemplate 变量中的花括号不会被再次解析，模板正文里不能出现字面花括号
var stepTemplate = prompt.FromMessages(schema.FString,
	schema.SystemMessage("You are {role}. {backstory}\nYour personal goal is: {goal}"),
	schema.UserMessage("Current Task: {description}\n\n"+
		"This is the expected criteria for your final answer: {expected_output}\n"+
		"You MUST return the actual complete content as the final answer, not a summary."+
		"{reference}{context}\n\n"+
		"Begin! This is VERY important to you, give your best Final Answer."),
)

func stepVariables(task Task, priorContext string) map[string]any {
	vars := map[string]any{
		"role":            task.Agent.Role,
		"backstory":       strings.TrimSpace(task.Agent.Backstory),
		"goal":            task.Agent.Goal,
		"description":     strings.TrimSpace(task.Description),
		"expected_output": strings.TrimSpace(task.ExpectedOutput),
		"reference":       "",
		"context":         "",
	}
	if ref := strings.TrimSpace(task.Reference); ref != "" {
		vars["reference"] = "\n\nReference material from a recent web search:\n" + ref
	}
	if ctx := strings.TrimSpace(priorContext); ctx != "" {
		vars["context"] = "\n\nThis is the context you're working with:\n" + ctx
	}
	return vars
}

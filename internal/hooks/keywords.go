package hooks

// Relevance tables. These are data, not code: the engine consults them
// but never special-cases individual tools, so extending coverage means
// editing a table entry rather than engine logic.

// toolKeywords maps a tool name to the task-text keywords that suggest
// the task relates to what the tool does.
var toolKeywords = map[string][]string{
	"Write":     {"create", "write", "add", "implement", "edit", "modify", "update", "fix", "change"},
	"Edit":      {"create", "write", "add", "implement", "edit", "modify", "update", "fix", "change"},
	"MultiEdit": {"create", "write", "add", "implement", "edit", "modify", "update", "fix", "change"},
	"Bash":      {"build", "test", "deploy", "run"},
}

// contentTools produce or modify file content; seeing one against a todo
// task means work on it has started.
var contentTools = map[string]bool{
	"Write":     true,
	"Edit":      true,
	"MultiEdit": true,
}

// activeTools indicate ongoing hands-on work; seeing one against an
// in-progress task escalates it to focused.
var activeTools = map[string]bool{
	"Write":     true,
	"Edit":      true,
	"MultiEdit": true,
	"Bash":      true,
}

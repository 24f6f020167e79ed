package voice

import "strings"

const basePrompt = `You are a friendly, concise voice guide for a GitHub repository.
Answer questions about the repository using the context below. When the
user asks to see, filter, or search something in the interface, call the
matching tool instead of describing the steps. Keep spoken replies short.`

// BuildSystemPrompt assembles the behavioral prompt for a session. The
// repository context block is included verbatim when present.
func BuildSystemPrompt(repoContext string) string {
	repoContext = strings.TrimSpace(repoContext)
	if repoContext == "" {
		return basePrompt
	}
	return basePrompt + "\n\nRepository context:\n" + repoContext
}

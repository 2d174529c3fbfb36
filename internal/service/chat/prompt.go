package chat

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/patil-aryan/lumos/internal/core"
)

// contextTokenBudget bounds how much prior conversation is rendered
// into the prompt. Measured with the cl100k_base encoding.
const contextTokenBudget = 3000

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

func countTokens(text string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return
		}
		encoding = enc
	})
	if encoding == nil {
		// Rough fallback when the encoding tables are unavailable.
		return len(text) / 4
	}
	return len(encoding.Encode(text, nil, nil))
}

// buildTurnPrompt renders the context window and current question into
// the single user message handed to the agent. History arrives oldest
// first; only the last `window` messages are rendered, and the oldest
// rendered lines are dropped if the budget is exceeded.
func buildTurnPrompt(history []core.StoredMessage, window int, question string) []core.Message {
	if window > 0 && len(history) > window {
		history = history[len(history)-window:]
	}

	lines := make([]string, 0, len(history))
	for _, msg := range history {
		lines = append(lines, msg.Role+": "+msg.Content)
	}
	for len(lines) > 0 && countTokens(strings.Join(lines, "\n")) > contextTokenBudget {
		lines = lines[1:]
	}

	content := question
	if len(lines) > 0 {
		content = "Previous conversation:\n" + strings.Join(lines, "\n") + "\n\nCurrent question: " + question
	}

	return []core.Message{{Role: core.RoleUser, Content: content}}
}

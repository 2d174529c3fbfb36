package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patil-aryan/lumos/internal/core"
)

func TestBuildTurnPromptNoHistory(t *testing.T) {
	prompt := buildTurnPrompt(nil, 6, "what is Acme?")

	require.Len(t, prompt, 1)
	assert.Equal(t, core.RoleUser, prompt[0].Role)
	assert.Equal(t, "what is Acme?", prompt[0].Content)
}

func TestBuildTurnPromptWindowKeepsNewest(t *testing.T) {
	history := []core.StoredMessage{
		{Role: core.RoleUser, Content: "oldest"},
		{Role: core.RoleAssistant, Content: "second"},
		{Role: core.RoleUser, Content: "third"},
	}

	prompt := buildTurnPrompt(history, 2, "q")

	content := prompt[0].Content
	assert.NotContains(t, content, "oldest")
	assert.Contains(t, content, "assistant: second")
	assert.Contains(t, content, "user: third")
}

func TestBuildTurnPromptTokenBudgetDropsOldestLines(t *testing.T) {
	big := strings.Repeat("lorem ipsum dolor sit amet ", 600)
	history := []core.StoredMessage{
		{Role: core.RoleUser, Content: big},
		{Role: core.RoleAssistant, Content: "kept answer"},
	}

	prompt := buildTurnPrompt(history, 6, "q")

	content := prompt[0].Content
	assert.NotContains(t, content, "lorem ipsum")
	assert.Contains(t, content, "assistant: kept answer")
	assert.Contains(t, content, "Current question: q")
}

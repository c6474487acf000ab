package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatHistory_AppendAndTurns(t *testing.T) {
	h := newChatHistory()
	h.Append("c1", "Hallo", "Hallo, wie kann ich helfen?")
	h.Append("c1", "Erzähl einen Witz", "Warum...?")

	turns := h.Turns("c1")
	require.Len(t, turns, 4)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "Hallo", turns[0].Content)
	assert.Equal(t, "assistant", turns[3].Role)
}

func TestChatHistory_UnknownConversationIsEmpty(t *testing.T) {
	h := newChatHistory()
	assert.Empty(t, h.Turns("missing"))
}

func TestChatHistory_Clear(t *testing.T) {
	h := newChatHistory()
	h.Append("c1", "Hallo", "Hi")
	h.Clear("c1")
	assert.Empty(t, h.Turns("c1"))
}

func TestChatHistory_TrimsOldestTurnsOverBudget(t *testing.T) {
	h := newChatHistory()
	longWord := strings.Repeat("wort ", chatHistoryWordBudget)
	h.Append("c1", "erste Frage", "erste Antwort")
	h.Append("c1", "zweite Frage", longWord)

	turns := h.Turns("c1")
	for _, turn := range turns {
		assert.NotEqual(t, "erste Frage", turn.Content, "the oldest turn must be trimmed once the budget is exceeded")
	}
}

func TestChatHistory_PerConversationIsolation(t *testing.T) {
	h := newChatHistory()
	h.Append("c1", "a", "b")
	assert.Empty(t, h.Turns("c2"))
}

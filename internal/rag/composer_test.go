package rag

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ujjwal-07/RAG-CHAT/internal/model"
)

func TestCompose_NoContextBranch(t *testing.T) {
	c := NewComposer(6)
	history := []model.Message{
		{Role: model.RoleUser, Content: "earlier question"},
		{Role: model.RoleAssistant, Content: "earlier answer"},
	}

	messages := c.Compose("who is the president?", "", false, history)

	require.Len(t, messages, 2, "no-context branch carries no history")
	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, RefusalSentence)
	assert.Equal(t, "user", messages[1].Role)
	assert.Equal(t, "who is the president?", messages[1].Content)
}

func TestCompose_ContextBranch(t *testing.T) {
	c := NewComposer(6)

	messages := c.Compose("what is the total?", "The total is 42.", true, nil)

	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.NotContains(t, messages[0].Content, RefusalSentence)
	last := messages[len(messages)-1]
	assert.Equal(t, "user", last.Role)
	assert.Contains(t, last.Content, "Context:\nThe total is 42.")
	assert.Contains(t, last.Content, "Question: what is the total?")
}

func TestCompose_HistoryWindow(t *testing.T) {
	c := NewComposer(6)
	var history []model.Message
	for i := 0; i < 10; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		history = append(history, model.Message{Role: role, Content: fmt.Sprintf("turn-%d", i)})
	}

	messages := c.Compose("question", "some context", true, history)

	// system + 6 most recent turns + current question
	require.Len(t, messages, 8)
	assert.Equal(t, "turn-4", messages[1].Content, "oldest four turns are dropped")
	assert.Equal(t, "turn-9", messages[6].Content)
}

func TestCompose_HistoryOrderPreserved(t *testing.T) {
	c := NewComposer(6)
	history := []model.Message{
		{Role: model.RoleUser, Content: "first"},
		{Role: model.RoleAssistant, Content: "second"},
	}

	messages := c.Compose("third", "ctx", true, history)

	require.Len(t, messages, 4)
	assert.Equal(t, "user", messages[1].Role)
	assert.Equal(t, "first", messages[1].Content)
	assert.Equal(t, "assistant", messages[2].Role)
	assert.Equal(t, "second", messages[2].Content)
}

func TestCompose_UnknownRoleMappedToUser(t *testing.T) {
	c := NewComposer(6)
	history := []model.Message{{Role: "system", Content: "odd row"}}

	messages := c.Compose("q", "ctx", true, history)

	require.Len(t, messages, 3)
	assert.Equal(t, "user", messages[1].Role)
}

func TestNewComposer_DefaultWindow(t *testing.T) {
	c := NewComposer(0)
	assert.Equal(t, defaultHistoryWindow, c.historyWindow)
}

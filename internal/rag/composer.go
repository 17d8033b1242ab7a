package rag

import (
	"strings"

	"github.com/ujjwal-07/RAG-CHAT/internal/ai"
	"github.com/ujjwal-07/RAG-CHAT/internal/model"
)

const defaultHistoryWindow = 6

// RefusalSentence is what the no-context branch instructs the model to say
// for general-knowledge questions, since no grounding exists.
const RefusalSentence = "I can only answer questions strictly related to the uploaded document."

const contextSystemPrompt = "You are a helpful assistant. Use the provided context to answer the question. " +
	"You may also refer to earlier turns of this conversation. " +
	"If the answer is not in the context but the question relates to the context or the conversation, answer it. " +
	"If the question is unrelated to both, you may give a general answer but state that it is not based on the uploaded document."

const noContextSystemPrompt = "You are a helpful assistant designed to answer questions about uploaded documents. " +
	"The user's query did not match any content in the uploaded file.\n\n" +
	"Rules:\n" +
	"1. If the user's message is a greeting (e.g., 'hi', 'hello') or a pleasantry (e.g., 'thanks'), answer politely and ask them to ask a question about the document.\n" +
	"2. If the user asks a general question (e.g., 'who is the president?', 'what is 2+2?'), REFUSE to answer. State clearly: \"" + RefusalSentence + "\"\n" +
	"3. Do not attempt to answer general knowledge questions."

// Composer assembles the final prompt: system instructions, optional prior
// conversation turns and the question, with the retrieved context inlined
// when retrieval decided to use it.
type Composer struct {
	historyWindow int
}

func NewComposer(historyWindow int) *Composer {
	if historyWindow <= 0 {
		historyWindow = defaultHistoryWindow
	}
	return &Composer{historyWindow: historyWindow}
}

// Compose builds the chat messages for one turn. The no-context branch
// ignores history: without grounding, prior turns would only invite the
// model past the refusal rules.
func (c *Composer) Compose(query, contextText string, usedContext bool, history []model.Message) []ai.ChatMessage {
	if !usedContext {
		return []ai.ChatMessage{
			{Role: "system", Content: noContextSystemPrompt},
			{Role: "user", Content: query},
		}
	}

	recent := history
	if len(recent) > c.historyWindow {
		recent = recent[len(recent)-c.historyWindow:]
	}

	messages := make([]ai.ChatMessage, 0, len(recent)+2)
	messages = append(messages, ai.ChatMessage{Role: "system", Content: contextSystemPrompt})
	for _, turn := range recent {
		role := turn.Role
		if role != model.RoleAssistant {
			role = model.RoleUser
		}
		messages = append(messages, ai.ChatMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, ai.ChatMessage{
		Role:    "user",
		Content: "Context:\n" + contextText + "\n\nQuestion: " + strings.TrimSpace(query),
	})
	return messages
}

package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ujjwal-07/RAG-CHAT/internal/model"
	"github.com/ujjwal-07/RAG-CHAT/internal/rag"
	"github.com/ujjwal-07/RAG-CHAT/internal/repository"
)

const chatTitleMaxLen = 50

var (
	ErrChatNotFound     = errors.New("chat not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrMessageEmpty     = errors.New("message content is empty")
	ErrMessageEnqueue   = errors.New("message enqueue failed")
	ErrTurnInFlight     = errors.New("another turn is already in flight for this chat")
)

// AsyncMessagePublisher hands messages to the persistence queue.
type AsyncMessagePublisher interface {
	Publish(ctx context.Context, msg model.Message) error
}

// HistoryCache caches chat histories between turns.
type HistoryCache interface {
	GetHistory(ctx context.Context, chatID uint) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, chatID uint, messages []model.Message) error
	DeleteHistory(ctx context.Context, chatID uint) error
	MarkDirty(ctx context.Context, chatID uint) error
	IsDirty(ctx context.Context, chatID uint) (bool, error)
}

// TurnGuard enforces at most one in-flight turn per chat.
type TurnGuard interface {
	Acquire(ctx context.Context, chatID uint) (bool, error)
	Release(ctx context.Context, chatID uint) error
}

type ChatService struct {
	chatRepo      *repository.ChatRepository
	messageRepo   *repository.MessageRepository
	docRepo       *repository.DocumentRepository
	publisher     AsyncMessagePublisher
	historyCache  HistoryCache
	turnGuard     TurnGuard
	pipeline      *rag.Pipeline
	historyWindow int
}

func NewChatService(
	chatRepo *repository.ChatRepository,
	messageRepo *repository.MessageRepository,
	docRepo *repository.DocumentRepository,
	publisher AsyncMessagePublisher,
	historyCache HistoryCache,
	turnGuard TurnGuard,
	pipeline *rag.Pipeline,
	historyWindow int,
) *ChatService {
	if historyWindow <= 0 {
		historyWindow = 6
	}
	return &ChatService{
		chatRepo:      chatRepo,
		messageRepo:   messageRepo,
		docRepo:       docRepo,
		publisher:     publisher,
		historyCache:  historyCache,
		turnGuard:     turnGuard,
		pipeline:      pipeline,
		historyWindow: historyWindow,
	}
}

type CreateChatInput struct {
	UserID     uint
	DocumentID uint
	Title      string
}

func (s *ChatService) CreateChat(input CreateChatInput) (*model.Chat, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	if input.DocumentID != 0 {
		doc, err := s.docRepo.GetByIDAndUserID(input.DocumentID, input.UserID)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, ErrDocumentNotFound
		}
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "New Chat"
	}
	chat := &model.Chat{
		UserID:     input.UserID,
		DocumentID: input.DocumentID,
		Title:      title,
	}
	if err := s.chatRepo.Create(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *ChatService) ListChats(userID uint) ([]model.Chat, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.chatRepo.ListByUserID(userID)
}

func (s *ChatService) DeleteChat(userID, chatID uint) error {
	if userID == 0 || chatID == 0 {
		return ErrInvalidInput
	}
	chat, err := s.chatRepo.GetByIDAndUserID(chatID, userID)
	if err != nil {
		return err
	}
	if chat == nil {
		return ErrChatNotFound
	}
	if err := s.messageRepo.DeleteByChatID(chatID); err != nil {
		return err
	}
	if err := s.chatRepo.DeleteByIDAndUserID(chatID, userID); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(context.Background(), chatID)
	}
	return nil
}

type SendMessageInput struct {
	UserID     uint
	ChatID     uint // 0 starts a new chat; DocumentID is then required
	DocumentID uint
	Content    string
}

type SendMessageResult struct {
	ChatID      uint            `json:"chat_id"`
	Messages    []model.Message `json:"messages"`
	UsedContext bool            `json:"used_context"`
}

// SendMessage runs one chat turn: resolve (or create) the chat, claim the
// per-chat turn guard, enqueue the user turn, answer through the retrieval
// pipeline and enqueue the assistant turn. Embedding and generation failures
// degrade the reply inside the pipeline; the turn itself only fails on
// ownership, input or infrastructure errors.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrMessageEmpty
	}
	if s.publisher == nil {
		return nil, ErrMessageEnqueue
	}

	chat, err := s.resolveChat(input, content)
	if err != nil {
		return nil, err
	}

	if s.turnGuard != nil {
		ok, guardErr := s.turnGuard.Acquire(ctx, chat.ID)
		if guardErr != nil {
			return nil, guardErr
		}
		if !ok {
			return nil, ErrTurnInFlight
		}
		defer func() { _ = s.turnGuard.Release(context.Background(), chat.ID) }()
	}

	// History is loaded before the current turn is appended; the composer
	// adds the current question itself.
	history, err := s.messageRepo.ListRecentByChatID(chat.ID, s.historyWindow)
	if err != nil {
		return nil, err
	}

	userMessage := model.Message{
		ChatID:    chat.ID,
		UserID:    input.UserID,
		Role:      model.RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, chat.ID)
		_ = s.historyCache.DeleteHistory(ctx, chat.ID)
	}
	if err := s.publisher.Publish(ctx, userMessage); err != nil {
		return nil, ErrMessageEnqueue
	}

	answer, err := s.pipeline.Answer(ctx, chat.DocumentID, content, history)
	if err != nil {
		return nil, err
	}

	assistantMessage := model.Message{
		ChatID:      chat.ID,
		UserID:      input.UserID,
		Role:        model.RoleAssistant,
		Content:     answer.Text,
		UsedContext: answer.UsedContext,
		CreatedAt:   time.Now(),
	}
	if err := s.publisher.Publish(ctx, assistantMessage); err != nil {
		return nil, ErrMessageEnqueue
	}
	_ = s.chatRepo.Touch(chat.ID)

	return &SendMessageResult{
		ChatID:      chat.ID,
		Messages:    []model.Message{userMessage, assistantMessage},
		UsedContext: answer.UsedContext,
	}, nil
}

// resolveChat loads the target chat, or creates one titled after the opening
// message when the turn starts a new conversation.
func (s *ChatService) resolveChat(input SendMessageInput, content string) (*model.Chat, error) {
	if input.ChatID != 0 {
		chat, err := s.chatRepo.GetByIDAndUserID(input.ChatID, input.UserID)
		if err != nil {
			return nil, err
		}
		if chat == nil {
			return nil, ErrChatNotFound
		}
		return chat, nil
	}

	if input.DocumentID == 0 {
		return nil, ErrInvalidInput
	}
	title := content
	if runes := []rune(title); len(runes) > chatTitleMaxLen {
		title = string(runes[:chatTitleMaxLen])
	}
	return s.CreateChat(CreateChatInput{
		UserID:     input.UserID,
		DocumentID: input.DocumentID,
		Title:      title,
	})
}

func (s *ChatService) GetHistory(userID, chatID uint, limit int) ([]model.Message, error) {
	if userID == 0 || chatID == 0 {
		return nil, ErrInvalidInput
	}

	chat, err := s.chatRepo.GetByIDAndUserID(chatID, userID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	ctx := context.Background()
	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, chatID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, chatID); cacheErr == nil && hit {
				return trimMessages(cached, limit), nil
			}
		}
	}

	messages, err := s.messageRepo.ListByChatID(chatID, limit)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, chatID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, chatID, messages)
		}
	}
	return messages, nil
}

// DeleteLastMessage is the compensating action for an abandoned request: it
// removes the trailing message only when it is a user turn the assistant
// never answered. Returns whether anything was deleted.
func (s *ChatService) DeleteLastMessage(userID, chatID uint) (bool, error) {
	if userID == 0 || chatID == 0 {
		return false, ErrInvalidInput
	}
	chat, err := s.chatRepo.GetByIDAndUserID(chatID, userID)
	if err != nil {
		return false, err
	}
	if chat == nil {
		return false, ErrChatNotFound
	}
	deleted, err := s.messageRepo.DeleteLastIfUserTurn(chatID)
	if err != nil {
		return false, err
	}
	if deleted && s.historyCache != nil {
		ctx := context.Background()
		_ = s.historyCache.MarkDirty(ctx, chatID)
		_ = s.historyCache.DeleteHistory(ctx, chatID)
	}
	return deleted, nil
}

func trimMessages(messages []model.Message, limit int) []model.Message {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}

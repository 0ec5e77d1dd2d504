package chatbot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Subodhrana390/cropsense/internal/ai"
	"github.com/Subodhrana390/cropsense/internal/apperror"
)

// historyWindow bounds how many past turns are replayed to the model. Old
// turns stay in storage for the history view but stop influencing answers.
const historyWindow = 20

// ChatbotService answers farming questions and manages per-user history.
type ChatbotService interface {
	Ask(ctx context.Context, userID string, req AskRequest) (*AskResponse, error)
	History(ctx context.Context, userID string) ([]Message, error)
	ClearHistory(ctx context.Context, userID string) (int64, error)
}

type chatbotService struct {
	repo MessageRepository
	gen  ai.Generator
}

// NewChatbotService creates the chatbot service.
func NewChatbotService(repo MessageRepository, gen ai.Generator) ChatbotService {
	return &chatbotService{repo: repo, gen: gen}
}

// Ask answers a farming question. The user turn is persisted before the
// collaborator is called, so a failed call still leaves the question in
// the history; the assistant turn is persisted after a successful answer.
func (s *chatbotService) Ask(ctx context.Context, userID string, req AskRequest) (*AskResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.NewValidation(validationMessages(err))
	}
	if !s.gen.Configured() {
		return nil, apperror.NewUnavailable("the farming assistant is not available right now")
	}

	history, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	query := strings.TrimSpace(req.Query)
	userTurn := &Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      RoleUser,
		Content:   query,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, userTurn); err != nil {
		return nil, apperror.NewInternal(err)
	}

	answer, err := s.gen.GenerateText(ctx, buildPrompt(history, query, req.Language))
	if err != nil {
		return nil, apperror.NewUpstream(err)
	}

	assistantTurn := &Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      RoleAssistant,
		Content:   answer,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, assistantTurn); err != nil {
		// The farmer already has the answer; losing the stored copy is
		// not worth failing the request over.
		slog.Error("storing assistant turn failed", "user_id", userID, "error", err)
	}

	return &AskResponse{Answer: answer}, nil
}

// History returns the user's conversation, oldest first.
func (s *chatbotService) History(ctx context.Context, userID string) ([]Message, error) {
	msgs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return msgs, nil
}

// ClearHistory deletes the user's conversation and returns the count of
// removed turns.
func (s *chatbotService) ClearHistory(ctx context.Context, userID string) (int64, error) {
	deleted, err := s.repo.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, apperror.NewInternal(err)
	}
	return deleted, nil
}

// buildPrompt assembles the system framing, the recent history, and the
// new question into a single prompt.
func buildPrompt(history []Message, query, language string) string {
	var sb strings.Builder
	sb.WriteString("You are a knowledgeable farming assistant for smallholder farmers. ")
	sb.WriteString("Answer practically and concisely.")
	if language != "" {
		fmt.Fprintf(&sb, " Answer in %s.", language)
	}
	sb.WriteString("\n\n")

	if start := len(history) - historyWindow; start > 0 {
		history = history[start:]
	}
	for _, m := range history {
		label := "Farmer"
		if m.Role == RoleAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(&sb, "%s: %s\n", label, m.Content)
	}

	fmt.Fprintf(&sb, "Farmer: %s\nAssistant:", query)
	return sb.String()
}

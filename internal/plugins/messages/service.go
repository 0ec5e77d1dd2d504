package messages

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Subodhrana390/cropsense/internal/apperror"
	"github.com/Subodhrana390/cropsense/internal/plugins/auth"
	"github.com/Subodhrana390/cropsense/internal/sanitize"
)

// MessageService handles the community chat operations.
type MessageService interface {
	// Partners lists every other registered user the sender can chat with.
	Partners(ctx context.Context, userID string) ([]Partner, error)

	// Conversation returns the two-way message history between the sender
	// and the given partner, oldest first.
	Conversation(ctx context.Context, userID, partnerID string) ([]Message, error)

	// Send stores a message from the sender to the given partner.
	Send(ctx context.Context, userID, partnerID string, req SendRequest) (*Message, error)
}

type messageService struct {
	repo  MessageRepository
	users auth.UserRepository
}

// NewMessageService creates the community chat service.
func NewMessageService(repo MessageRepository, users auth.UserRepository) MessageService {
	return &messageService{repo: repo, users: users}
}

func (s *messageService) Partners(ctx context.Context, userID string) ([]Partner, error) {
	users, err := s.users.ListExcluding(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	partners := make([]Partner, 0, len(users))
	for _, u := range users {
		partners = append(partners, Partner{ID: u.ID, Name: u.Name})
	}
	return partners, nil
}

func (s *messageService) Conversation(ctx context.Context, userID, partnerID string) ([]Message, error) {
	if _, err := s.requirePartner(ctx, partnerID); err != nil {
		return nil, err
	}

	msgs, err := s.repo.ListConversation(ctx, userID, partnerID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return msgs, nil
}

func (s *messageService) Send(ctx context.Context, userID, partnerID string, req SendRequest) (*Message, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.NewValidation(validationMessages(err))
	}
	if partnerID == userID {
		return nil, apperror.NewBadRequest("cannot send a message to yourself")
	}
	if _, err := s.requirePartner(ctx, partnerID); err != nil {
		return nil, err
	}

	// Markup in a plain-text chat is stripped before storage.
	text := sanitize.Text(req.Text)
	if text == "" {
		return nil, apperror.NewValidation([]string{"text: cannot be blank"})
	}

	msg := &Message{
		ID:         uuid.NewString(),
		FromUserID: userID,
		ToUserID:   partnerID,
		Text:       text,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, apperror.NewInternal(err)
	}

	return msg, nil
}

// requirePartner resolves the partner or returns 404. Storage trouble is
// wrapped so the raw error never reaches the client.
func (s *messageService) requirePartner(ctx context.Context, partnerID string) (*auth.User, error) {
	user, err := s.users.FindByID(ctx, partnerID)
	if err != nil {
		if apperror.SafeCode(err) == 404 {
			return nil, apperror.NewNotFound("user not found")
		}
		return nil, apperror.NewInternal(err)
	}
	return user, nil
}

// Package chatbot is the per-user farming Q&A assistant. Questions and
// answers are persisted so the conversation survives reloads, and the
// recent history is replayed to the model for follow-up context.
package chatbot

import (
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Message roles, matching the role ENUM on the chatbot_messages table.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a user's chatbot conversation.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// AskRequest is a chatbot question. Language is optional; when set, the
// assistant answers in that language.
type AskRequest struct {
	Query    string `json:"query"`
	Language string `json:"language"`
}

// Validate checks the question fields. Returns a validation.Errors map on
// failure.
func (r AskRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Query, validation.Required, validation.Length(1, 2000)),
		validation.Field(&r.Language, validation.Length(0, 60)),
	)
}

// AskResponse carries the assistant's answer.
type AskResponse struct {
	Answer string `json:"answer"`
}

// validationMessages flattens a validation.Errors map into a sorted list
// of "field: message" strings.
func validationMessages(err error) []string {
	verrs, ok := err.(validation.Errors)
	if !ok {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for field, ferr := range verrs {
		msgs = append(msgs, field+": "+ferr.Error())
	}
	sort.Strings(msgs)
	return msgs
}

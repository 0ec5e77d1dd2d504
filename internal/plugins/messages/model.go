// Package messages is the community chat: direct text messages between
// registered farmers, with a partner list and per-pair conversation view.
package messages

import (
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Message is one direct message between two users.
type Message struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// SendRequest is the body of a message send.
type SendRequest struct {
	Text string `json:"text"`
}

// Validate checks the message body. Returns a validation.Errors map on
// failure.
func (r SendRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required, validation.Length(1, 2000)),
	)
}

// Partner is another user shown in the chat partner list.
type Partner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
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

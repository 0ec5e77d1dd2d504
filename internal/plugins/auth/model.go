// Package auth is the authentication core of CropSense: signed stateless
// session tokens, cookie resolution, the per-request route guard, and the
// signup/login/logout actions. Sessions are self-contained JWTs -- there is
// no server-side session store, so every request's identity is decided by
// verifying the cookie against the process-wide signing secret.
package auth

import (
	"errors"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// User is a registered CropSense user. Created at signup, read at login
// and when listing chat partners; never mutated or deleted.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON responses.
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated principal carried through a request once
// the session cookie has been verified.
type Identity struct {
	UserID string
	Name   string
}

// --- Request DTOs ---

// SignupRequest holds the data submitted by the signup form.
type SignupRequest struct {
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// Validate checks every field constraint and reports all violations, not
// just the first. Returns a validation.Errors map on failure.
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 128)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(stringEquals(r.Password, "must match password")),
		),
	)
}

// LoginRequest holds the data submitted by the login form.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate checks the login fields. Format-level only; credential checking
// happens in the service.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// stringEquals builds an ozzo rule asserting equality with want.
func stringEquals(want, message string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != want {
			return errors.New(message)
		}
		return nil
	}
}

// validationMessages flattens a validation.Errors map into a sorted list of
// "field: message" strings. Sorting keeps the output deterministic for
// clients and tests.
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

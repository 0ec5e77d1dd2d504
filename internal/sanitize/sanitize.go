// Package sanitize cleans user-generated text before it is stored. Chat
// and direct messages are plain text as far as CropSense is concerned, so
// the strict bluemonday policy strips every tag; anything that looks like
// markup in a message is someone probing, not formatting.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared strict policy, initializing it on first call.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text strips all HTML from user-provided text and normalizes surrounding
// whitespace. Entities introduced by the stripping pass are decoded again
// so a message like "1 < 2" survives the round trip.
//
// MUST be called on all user-provided message text before storing it.
func Text(input string) string {
	if input == "" {
		return ""
	}
	cleaned := getPolicy().Sanitize(input)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

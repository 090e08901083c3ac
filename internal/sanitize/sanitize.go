// Package sanitize strips markup from user-generated text. Profile fields
// (bio, display name, quote) are plain text by contract: anything that looks
// like HTML is removed before storage so the SPA can render the values
// without escaping surprises.
package sanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// policy is the singleton bluemonday policy. StrictPolicy allows no
// elements or attributes at all -- tags are stripped, text content kept.
// Initialized once via sync.Once for thread-safe lazy initialization.
var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared sanitization policy, initializing it on first call.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text removes all HTML from user-provided text and trims surrounding
// whitespace. Called on every free-text profile field before it is stored.
func Text(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(getPolicy().Sanitize(input))
}

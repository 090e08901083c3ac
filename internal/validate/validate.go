// Package validate holds the input validation rules shared by the auth and
// users handlers. Each function returns an empty string when the input is
// acceptable, or a client-facing message describing the violation.
package validate

import (
	"regexp"
	"slices"
)

var (
	// userIDPattern allows 3-20 alphanumeric or underscore characters.
	// A leading underscore is rejected separately -- those collide with
	// framework asset paths like /_astro.
	userIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

	// emailPattern is deliberately loose: one @, no whitespace, and a dot
	// in the domain part. The emailed code proves deliverability anyway.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// urlPattern accepts http(s) URLs with at least one dot in the host.
	urlPattern = regexp.MustCompile(`^https?://.+\..+`)
)

// UserID checks a handle against the format rules and the reserved list.
// Reserved handles get a distinct message from malformed ones so the client
// can suggest picking a different name rather than fixing the format.
func UserID(userID string, reserved []string) string {
	if userID == "" {
		return "Invalid userId"
	}
	if slices.Contains(reserved, userID) {
		return "Username not available"
	}
	if !userIDPattern.MatchString(userID) || userID[0] == '_' {
		return "Invalid userId format"
	}
	return ""
}

// DisplayName checks the 3-25 character bound.
func DisplayName(name string) string {
	if name == "" {
		return "Invalid displayName"
	}
	if n := len([]rune(name)); n < 3 || n > 25 {
		return "Display name is too short or too long. It should be 3 to 25 letters."
	}
	return ""
}

// Email checks the address shape.
func Email(email string) string {
	if email == "" {
		return "Invalid email"
	}
	if !emailPattern.MatchString(email) {
		return "Invalid email format"
	}
	return ""
}

// Bio checks the optional bio field. Empty is fine.
func Bio(bio string) string {
	if bio != "" && len([]rune(bio)) > 150 {
		return "Bio must be 150 characters or less."
	}
	return ""
}

// URL checks an optional link field. Empty is fine.
func URL(url string) string {
	if url == "" {
		return ""
	}
	if !urlPattern.MatchString(url) {
		return "Please enter a valid URL (e.g., https://example.com)"
	}
	return ""
}

// Quote checks the optional favorite-quote text. Empty is fine.
func Quote(quote string) string {
	if quote != "" && len([]rune(quote)) > 250 {
		return "Quote must be 250 characters or less."
	}
	return ""
}

// QuoteTitle checks the movie title attached to a favorite quote.
func QuoteTitle(title string) string {
	if title == "" {
		return "Invalid movie title"
	}
	if n := len([]rune(title)); n < 2 || n > 40 {
		return "Movie title is too short or too long. It should be 2 to 40 letters."
	}
	return ""
}

// Package users manages accounts and public profiles: handle availability
// checks, the public profile read, and the owner-only profile writes. Its
// repository also backs the auth plugin's account lookups during the login
// handshake.
package users

// Profile is a user's public profile page content. Everything here is
// world-readable by design -- sensitive data (the email) lives on the
// users table and never leaves the server.
type Profile struct {
	DisplayName string            `json:"displayName"`
	Bio         string            `json:"bio"`
	Avatar      string            `json:"avatar"`
	SocialLinks map[string]string `json:"socialLinks"`
}

// --- Request DTOs ---

// CheckRequest asks whether a handle is still free.
type CheckRequest struct {
	UserID string `json:"userId"`
}

// ProfileUpdateRequest wraps a profile write. The SPA sends the target
// userId in the body as well as the path; the path (already ownership-
// checked) is authoritative.
type ProfileUpdateRequest struct {
	Profile Profile `json:"profile"`
	UserID  string  `json:"userId"`
}

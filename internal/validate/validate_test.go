package validate

import "testing"

var reserved = []string{"login", "register", "admin", "api", "_astro"}

func TestUserID(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		wantMsg string
	}{
		{"valid simple", "alice", ""},
		{"valid with digits", "alice42", ""},
		{"valid with underscore", "alice_b", ""},
		{"valid min length", "abc", ""},
		{"valid max length", "a2345678901234567890", ""},
		{"empty", "", "Invalid userId"},
		{"reserved", "admin", "Username not available"},
		{"reserved route", "login", "Username not available"},
		{"too short", "ab", "Invalid userId format"},
		{"too long", "a23456789012345678901", "Invalid userId format"},
		{"leading underscore", "_alice", "Invalid userId format"},
		{"hyphen", "alice-b", "Invalid userId format"},
		{"space", "alice b", "Invalid userId format"},
		{"unicode", "アリス", "Invalid userId format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserID(tt.userID, reserved); got != tt.wantMsg {
				t.Errorf("UserID(%q) = %q, want %q", tt.userID, got, tt.wantMsg)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"valid", "Alice", ""},
		{"valid min", "Abc", ""},
		{"valid max", "A234567890123456789012345", ""},
		{"valid multibyte", "アリス", ""},
		{"empty", "", "Invalid displayName"},
		{"too short", "Ab", "Display name is too short or too long. It should be 3 to 25 letters."},
		{"too long", "A2345678901234567890123456", "Display name is too short or too long. It should be 3 to 25 letters."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayName(tt.input); got != tt.wantMsg {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.wantMsg)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"valid", "alice@example.com", ""},
		{"valid subdomain", "alice@mail.example.co.jp", ""},
		{"empty", "", "Invalid email"},
		{"no at", "alice.example.com", "Invalid email format"},
		{"no domain dot", "alice@example", "Invalid email format"},
		{"whitespace", "alice @example.com", "Invalid email format"},
		{"double at", "a@b@example.com", "Invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Email(tt.input); got != tt.wantMsg {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.wantMsg)
			}
		})
	}
}

func TestBio(t *testing.T) {
	long := make([]rune, 151)
	for i := range long {
		long[i] = 'a'
	}

	if got := Bio(""); got != "" {
		t.Errorf("Bio(empty) = %q, want empty", got)
	}
	if got := Bio("I love movies."); got != "" {
		t.Errorf("Bio(short) = %q, want empty", got)
	}
	if got := Bio(string(long)); got != "Bio must be 150 characters or less." {
		t.Errorf("Bio(151 chars) = %q", got)
	}
}

func TestURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantOK  bool
	}{
		{"empty is fine", "", true},
		{"https", "https://example.com", true},
		{"http", "http://example.com/path", true},
		{"no scheme", "example.com", false},
		{"ftp", "ftp://example.com", false},
		{"no dot", "https://localhost", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := URL(tt.input)
			if tt.wantOK && got != "" {
				t.Errorf("URL(%q) = %q, want empty", tt.input, got)
			}
			if !tt.wantOK && got == "" {
				t.Errorf("URL(%q) = empty, want error message", tt.input)
			}
		})
	}
}

func TestQuoteTitle(t *testing.T) {
	if got := QuoteTitle(""); got != "Invalid movie title" {
		t.Errorf("QuoteTitle(empty) = %q", got)
	}
	if got := QuoteTitle("A"); got == "" {
		t.Error("QuoteTitle(1 char) should fail")
	}
	if got := QuoteTitle("Her"); got != "" {
		t.Errorf("QuoteTitle(valid) = %q, want empty", got)
	}
}

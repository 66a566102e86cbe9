package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "valid E.164 format",
			input: "+821012345678",
			want:  "+821012345678",
		},
		{
			name:  "with spaces",
			input: "+82 10 1234 5678",
			want:  "+821012345678",
		},
		{
			name:  "local mobile with dashes",
			input: "010-1234-5678",
			want:  "+821012345678",
		},
		{
			name:  "japanese number with country code",
			input: "+81 3-1234-5678",
			want:  "+81312345678",
		},
		{
			name:  "leading and trailing spaces",
			input: "  +821012345678  ",
			want:  "+821012345678",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
		{
			name:  "letters",
			input: "call me",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	once := NormalizePhone("010 1234 5678")
	if twice := NormalizePhone(once); twice != once {
		t.Errorf("NormalizePhone not idempotent: %q -> %q", once, twice)
	}
}

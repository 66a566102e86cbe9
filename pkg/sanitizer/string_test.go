package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic trim",
			input: "  Harbor Inn  ",
			want:  "Harbor Inn",
		},
		{
			name:  "multiple spaces",
			input: "Deluxe    Double",
			want:  "Deluxe Double",
		},
		{
			name:  "tabs and newlines",
			input: "Deluxe\t\nDouble",
			want:  "Deluxe Double",
		},
		{
			name:  "korean characters",
			input: " 디럭스  더블 ",
			want:  "디럭스 더블",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	if got := NormalizeKey("  Ocean  VIEW "); got != "ocean view" {
		t.Errorf("NormalizeKey() = %q", got)
	}
}

func TestNormalizeRoomNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"301", "301"},
		{" 301 ", "301"},
		{"b 12", "B12"},
		{"a-101", "A-101"},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := NormalizeRoomNumber(tt.input); got != tt.want {
			t.Errorf("NormalizeRoomNumber(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

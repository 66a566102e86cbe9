package locale

import (
	"testing"
)

func TestInferCountryFromPhone(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		wantCode string
		wantNil  bool
	}{
		{
			name:     "Korean mobile",
			phone:    "+821012345678",
			wantCode: "KR",
		},
		{
			name:     "Korean mobile without plus",
			phone:    "821012345678",
			wantCode: "KR",
		},
		{
			name:     "Japanese landline",
			phone:    "+81312345678",
			wantCode: "JP",
		},
		{
			name:     "US phone",
			phone:    "+12125551234",
			wantCode: "US",
		},
		{
			name:    "unsupported country",
			phone:   "+442071234567",
			wantNil: true,
		},
		{
			name:    "empty phone",
			phone:   "",
			wantNil: true,
		},
		{
			name:    "invalid phone",
			phone:   "not-a-phone",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferCountryFromPhone(tt.phone)
			if tt.wantNil {
				if got != nil {
					t.Errorf("InferCountryFromPhone(%q) = %v, want nil", tt.phone, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("InferCountryFromPhone(%q) = nil, want %q", tt.phone, tt.wantCode)
			}
			if got.Code != tt.wantCode {
				t.Errorf("InferCountryFromPhone(%q).Code = %q, want %q", tt.phone, got.Code, tt.wantCode)
			}
		})
	}
}

func TestInferTimezoneFromPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  string
	}{
		{"+821012345678", "Asia/Seoul"},
		{"+81312345678", "Asia/Tokyo"},
		{"+12125551234", "America/New_York"},
		{"+442071234567", DefaultTimezone},
		{"", DefaultTimezone},
	}

	for _, tt := range tests {
		if got := InferTimezoneFromPhone(tt.phone); got != tt.want {
			t.Errorf("InferTimezoneFromPhone(%q) = %q, want %q", tt.phone, got, tt.want)
		}
	}
}

func TestDetectRegion(t *testing.T) {
	tests := []struct {
		timezone string
		want     string
	}{
		{"Asia/Seoul", "KR"},
		{"asia/tokyo", "JP"},
		{"America/Los_Angeles", "US"},
		{"Europe/London", "KR"},
		{"", "KR"},
	}

	for _, tt := range tests {
		if got := DetectRegion(tt.timezone); got != tt.want {
			t.Errorf("DetectRegion(%q) = %q, want %q", tt.timezone, got, tt.want)
		}
	}
}

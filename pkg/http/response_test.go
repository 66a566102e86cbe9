package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "frontdesk/pkg/errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "app error keeps its status",
			err:        apperrors.RoomConflict("room 101 is occupied", map[string]any{"room_number": "101"}),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeRoomConflict,
			wantMsg:    "room 101 is occupied",
		},
		{
			name:       "wrapped app error",
			err:        fmt.Errorf("move: %w", apperrors.NotFoundWithID("reservation", "x")),
			wantStatus: http.StatusNotFound,
			wantCode:   apperrors.CodeNotFound,
			wantMsg:    "reservation with id 'x' not found",
		},
		{
			name:       "plain error is hidden",
			err:        errors.New("mongo: socket closed"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.CodeInternal,
			wantMsg:    "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if err := WriteError(rec, tt.err); err != nil {
				t.Fatalf("WriteError() error = %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Code != tt.wantCode || body.Error != tt.wantMsg {
				t.Errorf("body = %+v, want code %s msg %q", body, tt.wantCode, tt.wantMsg)
			}
		})
	}
}

func TestWritePaginated(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WritePaginated(rec, []string{"a", "b"}, 7, 2, 4); err != nil {
		t.Fatalf("WritePaginated() error = %v", err)
	}
	var body struct {
		Data       []string `json:"data"`
		TotalCount int64    `json:"total_count"`
		Limit      int      `json:"limit"`
		Offset     int64    `json:"offset"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.TotalCount != 7 || body.Limit != 2 || body.Offset != 4 || len(body.Data) != 2 {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestExtractLimitOffset(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int64
		wantErr    bool
	}{
		{"", 10, 0, false},
		{"limit=25&offset=50", 25, 50, false},
		{"limit=100000", 100, 0, false},
		{"offset=-3", 10, 0, false},
		{"limit=abc", 0, 0, true},
		{"offset=1.5", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations?"+tt.query, nil)
			limit, offset, err := ExtractLimitOffset(req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestRequiredQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability?hotel_id=+h1+&from=", nil)
	if v, err := RequiredQuery(req, "hotel_id"); err != nil || v != "h1" {
		t.Errorf("RequiredQuery(hotel_id) = %q, %v", v, err)
	}
	if _, err := RequiredQuery(req, "from"); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for blank from, got %v", err)
	}
}

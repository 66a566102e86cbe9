package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	hotelserrors "frontdesk/internal/hotels/errors"
	"frontdesk/internal/hotels/validator"
	"frontdesk/pkg/config"
	mongotx "frontdesk/pkg/db/mongo"
	apperrors "frontdesk/pkg/errors"
	"frontdesk/pkg/logger"
	"frontdesk/pkg/model"
)

type mockHotelRepository struct {
	createFunc             func(ctx context.Context, h *model.HotelSettings) error
	findByIDFunc           func(ctx context.Context, id string) (*model.HotelSettings, error)
	findAllFunc            func(ctx context.Context, limit int, offset int64) ([]*model.HotelSettings, error)
	findByContactPhoneFunc func(ctx context.Context, phone string) ([]*model.HotelSettings, error)
	updateFunc             func(ctx context.Context, id string, h *model.HotelSettings) (*mongo.UpdateResult, error)
	deleteFunc             func(ctx context.Context, id string) error
	countFunc              func(ctx context.Context) (int64, error)
}

func (m *mockHotelRepository) Create(ctx context.Context, h *model.HotelSettings) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, h)
	}
	h.ID = "65f000000000000000000001"
	return nil
}

func (m *mockHotelRepository) FindByID(ctx context.Context, id string) (*model.HotelSettings, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", hotelserrors.ErrNotFound, id)
}

func (m *mockHotelRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.HotelSettings, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.HotelSettings{}, nil
}

func (m *mockHotelRepository) FindByContactPhone(ctx context.Context, phone string) ([]*model.HotelSettings, error) {
	if m.findByContactPhoneFunc != nil {
		return m.findByContactPhoneFunc(ctx, phone)
	}
	return nil, nil
}

func (m *mockHotelRepository) Update(ctx context.Context, id string, h *model.HotelSettings) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, h)
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockHotelRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockHotelRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockHotelRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:  "info",
			Format: logger.JSON,
			Output: io.Discard,
		}),
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
		DefaultReleaseHour: 2,
	}
}

func newHotel() *model.HotelSettings {
	return &model.HotelSettings{
		Name:         "  Seaside   Inn ",
		ContactPhone: "+81 90-1234-5678",
		RoomTypes: []model.RoomType{
			{RoomInfo: " Standard ", Price: 80000, Stock: 2, RoomNumbers: []string{"101", " 102"}},
			{RoomInfo: "Deluxe", Price: 120000, Stock: 1, Aliases: []string{"deluxe double", "Deluxe Double"}},
		},
		Grid: model.GridSettings{Floors: []model.Floor{
			{Name: "1F", Containers: []model.Container{{RoomNumber: "a 01", RoomInfo: "Deluxe"}}},
		}},
	}
}

func TestCreate_AppliesDefaultsAndSanitizes(t *testing.T) {
	svc := NewHotelService(&mockHotelRepository{}, validator.NewHotelValidator(), testConfig())

	h := newHotel()
	if err := svc.Create(context.Background(), h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.Name != "Seaside Inn" {
		t.Errorf("expected collapsed name, got %q", h.Name)
	}
	if h.ContactPhone != "+819012345678" {
		t.Errorf("expected E.164 phone, got %q", h.ContactPhone)
	}
	if h.TimeZone != "Asia/Tokyo" {
		t.Errorf("expected time zone inferred from phone, got %q", h.TimeZone)
	}
	if h.ReleaseHour == nil || *h.ReleaseHour != 2 {
		t.Errorf("expected default release hour 2, got %v", h.ReleaseHour)
	}
	for _, rt := range h.RoomTypes {
		if rt.ID == "" {
			t.Errorf("room type %q has no id", rt.RoomInfo)
		}
	}
	if got := h.RoomTypes[0].RoomNumbers; len(got) != 2 || got[1] != "102" {
		t.Errorf("expected trimmed room numbers, got %v", got)
	}
	if got := h.RoomTypes[1].Aliases; len(got) != 1 {
		t.Errorf("expected case-insensitive alias dedupe, got %v", got)
	}
	if got := h.Grid.Floors[0].Containers[0].RoomNumber; got != "A01" {
		t.Errorf("expected normalized container room, got %q", got)
	}
}

func TestCreate_ExplicitMidnightReleaseKept(t *testing.T) {
	svc := NewHotelService(&mockHotelRepository{}, validator.NewHotelValidator(), testConfig())

	h := newHotel()
	zero := 0
	h.ReleaseHour = &zero
	if err := svc.Create(context.Background(), h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *h.ReleaseHour != 0 {
		t.Errorf("expected release hour 0 to be kept, got %d", *h.ReleaseHour)
	}
}

func TestCreate_DuplicateNameAndPhone(t *testing.T) {
	created := false
	repo := &mockHotelRepository{
		findByContactPhoneFunc: func(ctx context.Context, phone string) ([]*model.HotelSettings, error) {
			return []*model.HotelSettings{{ID: "existing", Name: "SEASIDE INN", ContactPhone: phone}}, nil
		},
		createFunc: func(ctx context.Context, h *model.HotelSettings) error {
			created = true
			return nil
		},
	}
	svc := NewHotelService(repo, validator.NewHotelValidator(), testConfig())

	err := svc.Create(context.Background(), newHotel())
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if created {
		t.Error("duplicate hotel should not be inserted")
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	repo := &mockHotelRepository{
		createFunc: func(ctx context.Context, h *model.HotelSettings) error {
			t.Error("invalid hotel should not reach the repository")
			return nil
		},
	}
	svc := NewHotelService(repo, validator.NewHotelValidator(), testConfig())

	h := newHotel()
	h.RoomTypes[0].Stock = 1
	err := svc.Create(context.Background(), h)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_RepositoryFailureIsInternal(t *testing.T) {
	repo := &mockHotelRepository{
		createFunc: func(ctx context.Context, h *model.HotelSettings) error {
			return errors.New("write concern timeout")
		},
	}
	svc := NewHotelService(repo, validator.NewHotelValidator(), testConfig())

	err := svc.Create(context.Background(), newHotel())
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestGetByID_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		repoErr  error
		wantCode string
	}{
		{"empty id", "", nil, apperrors.CodeInvalidInput},
		{"not found", "65f000000000000000000001", hotelserrors.ErrNotFound, apperrors.CodeNotFound},
		{"invalid id", "nope", hotelserrors.ErrInvalidID, apperrors.CodeInvalidInput},
		{"driver failure", "65f000000000000000000001", errors.New("connection reset"), apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockHotelRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.HotelSettings, error) {
					return nil, fmt.Errorf("%w: %s", tt.repoErr, id)
				},
			}
			svc := NewHotelService(repo, validator.NewHotelValidator(), testConfig())

			_, err := svc.GetByID(context.Background(), tt.id)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected code %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestGetAll_ConcurrentCountAndFind(t *testing.T) {
	var calls int32
	repo := &mockHotelRepository{
		countFunc: func(ctx context.Context) (int64, error) {
			atomic.AddInt32(&calls, 1)
			time.Sleep(10 * time.Millisecond)
			return 42, nil
		},
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.HotelSettings, error) {
			atomic.AddInt32(&calls, 1)
			if limit <= 0 || limit > config.DefaultPaginationLimit {
				t.Errorf("limit not normalized: %d", limit)
			}
			if offset < 0 {
				t.Errorf("offset not normalized: %d", offset)
			}
			time.Sleep(10 * time.Millisecond)
			return []*model.HotelSettings{{ID: "1"}, {ID: "2"}}, nil
		},
	}
	svc := NewHotelService(repo, nil, testConfig())

	hotels, total, err := svc.GetAll(context.Background(), 0, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 42 || len(hotels) != 2 {
		t.Errorf("expected 42 total and 2 hotels, got %d and %d", total, len(hotels))
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected count and find to both run, got %d calls", calls)
	}
}

func TestGetAll_CountFailure(t *testing.T) {
	repo := &mockHotelRepository{
		countFunc: func(ctx context.Context) (int64, error) {
			return 0, errors.New("boom")
		},
	}
	svc := NewHotelService(repo, nil, testConfig())

	if _, _, err := svc.GetAll(context.Background(), 10, 0); !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestUpdate_KeepsRoomTypeIDsByKey(t *testing.T) {
	existingID := "3f1c2b7a-9d4e-4c1a-8b2f-1a2b3c4d5e6f"
	hour := 2
	var saved *model.HotelSettings
	repo := &mockHotelRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.HotelSettings, error) {
			return &model.HotelSettings{
				ID:           id,
				Name:         "Seaside Inn",
				ContactPhone: "+819012345678",
				TimeZone:     "Asia/Tokyo",
				ReleaseHour:  &hour,
				RoomTypes:    []model.RoomType{{ID: existingID, RoomInfo: "Standard", Stock: 2}},
			}, nil
		},
		updateFunc: func(ctx context.Context, id string, h *model.HotelSettings) (*mongo.UpdateResult, error) {
			saved = h
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := NewHotelService(repo, validator.NewHotelValidator(), testConfig())

	updated, err := svc.Update(context.Background(), "65f000000000000000000001", &model.HotelSettingsUpdate{
		RoomTypes: []model.RoomType{
			{RoomInfo: "standard", Stock: 3},
			{RoomInfo: "Suite", Stock: 1},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil || updated != saved {
		t.Fatal("expected the merged hotel to be saved and returned")
	}
	if updated.RoomTypes[0].ID != existingID {
		t.Errorf("expected standard to keep id %s, got %s", existingID, updated.RoomTypes[0].ID)
	}
	if updated.RoomTypes[1].ID == "" || updated.RoomTypes[1].ID == existingID {
		t.Errorf("expected a fresh id for the new suite type, got %q", updated.RoomTypes[1].ID)
	}
	if updated.Name != "Seaside Inn" || *updated.ReleaseHour != 2 {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestUpdate_InvalidMergeRejected(t *testing.T) {
	repo := &mockHotelRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.HotelSettings, error) {
			return &model.HotelSettings{
				ID:           id,
				Name:         "Seaside Inn",
				ContactPhone: "+819012345678",
				TimeZone:     "Asia/Tokyo",
				RoomTypes:    []model.RoomType{{RoomInfo: "Standard", Stock: 1}},
			}, nil
		},
		updateFunc: func(ctx context.Context, id string, h *model.HotelSettings) (*mongo.UpdateResult, error) {
			t.Error("invalid update should not be written")
			return nil, nil
		},
	}
	svc := NewHotelService(repo, validator.NewHotelValidator(), testConfig())

	_, err := svc.Update(context.Background(), "65f000000000000000000001", &model.HotelSettingsUpdate{
		Grid: &model.GridSettings{Floors: []model.Floor{{
			Containers: []model.Container{{RoomNumber: "301", RoomInfo: "Penthouse"}},
		}}},
	})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo := &mockHotelRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			return fmt.Errorf("%w: %s", hotelserrors.ErrNotFound, id)
		},
	}
	svc := NewHotelService(repo, nil, testConfig())

	if err := svc.Delete(context.Background(), "65f000000000000000000001"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	hotelserrors "frontdesk/internal/hotels/errors"
	"frontdesk/internal/hotels/repository"
	"frontdesk/internal/hotels/validator"
	"frontdesk/pkg/config"
	apperrors "frontdesk/pkg/errors"
	"frontdesk/pkg/locale"
	"frontdesk/pkg/model"
	"frontdesk/pkg/sanitizer"
)

type HotelService interface {
	Create(ctx context.Context, h *model.HotelSettings) error
	GetByID(ctx context.Context, id string) (*model.HotelSettings, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.HotelSettings, int64, error)
	Update(ctx context.Context, id string, updates *model.HotelSettingsUpdate) (*model.HotelSettings, error)
	Delete(ctx context.Context, id string) error
}

type hotelService struct {
	repo      repository.HotelRepository
	validator *validator.HotelValidator
	cfg       *config.Config
}

func NewHotelService(
	repo repository.HotelRepository,
	validator *validator.HotelValidator,
	cfg *config.Config,
) HotelService {
	return &hotelService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *hotelService) Create(ctx context.Context, h *model.HotelSettings) error {
	s.sanitize(h)
	s.applyDefaults(h)

	if err := s.validator.Validate(h); err != nil {
		s.cfg.Log.Warn("Hotel validation failed",
			"name", h.Name,
			"contact_phone", h.ContactPhone,
			"error", err,
		)
		return apperrors.Validation("Hotel validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByContactPhone(sessCtx, h.ContactPhone)
		if err != nil {
			return fmt.Errorf("failed to check for duplicates: %w", err)
		}
		for _, other := range existing {
			if strings.EqualFold(other.Name, h.Name) {
				return apperrors.Conflict(fmt.Sprintf(
					"Hotel with the same name and contact phone already exists (id: %s)",
					other.ID,
				))
			}
		}

		if err := s.repo.Create(sessCtx, h); err != nil {
			return fmt.Errorf("failed to create hotel: %w", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create hotel",
			"name", h.Name,
			"contact_phone", h.ContactPhone,
			"error", err,
		)
		if apperrors.IsAppError(err) {
			return err
		}
		return apperrors.Internal("Failed to create hotel", err)
	}

	s.cfg.Log.Info("Hotel created successfully",
		"id", h.ID,
		"name", h.Name,
		"timezone", h.TimeZone,
		"room_types", len(h.RoomTypes),
	)
	return nil
}

func (s *hotelService) GetByID(ctx context.Context, id string) (*model.HotelSettings, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Hotel ID cannot be empty")
	}

	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve hotel")
	}
	return h, nil
}

func (s *hotelService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.HotelSettings, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var hotels []*model.HotelSettings
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		count, err = s.repo.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count hotels", "error", err)
			errCount = apperrors.Internal("Failed to count hotels", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		hotels, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all hotels",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve hotels", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return hotels, count, nil
}

func (s *hotelService) Update(ctx context.Context, id string, updates *model.HotelSettingsUpdate) (*model.HotelSettings, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Hotel ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to check hotel existence")
	}

	s.sanitizeUpdate(updates)
	merged := s.mergeUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Hotel validation failed",
			"id", id,
			"name", merged.Name,
			"error", err,
		)
		return nil, apperrors.Validation("Hotel validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		return nil, s.mapRepoError(err, id, "Failed to update hotel")
	}

	s.cfg.Log.Info("Hotel updated successfully",
		"id", id,
		"name", merged.Name,
	)
	return merged, nil
}

func (s *hotelService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Hotel ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "Failed to delete hotel")
	}

	s.cfg.Log.Info("Hotel deleted successfully", "id", id)
	return nil
}

func (s *hotelService) mapRepoError(err error, id, internalMsg string) error {
	switch {
	case errors.Is(err, hotelserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Hotel", id)
	case errors.Is(err, hotelserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid hotel ID format")
	}
	s.cfg.Log.Error(internalMsg, "id", id, "error", err)
	return apperrors.Internal(internalMsg, err)
}

func (s *hotelService) sanitize(h *model.HotelSettings) {
	h.Name = sanitizer.NormalizeName(h.Name)
	h.ContactPhone = normalizePhone(h.ContactPhone)
	h.TimeZone = sanitizer.TrimAndNormalize(h.TimeZone)
	h.RoomTypes = sanitizeRoomTypes(h.RoomTypes)
	sanitizeGrid(&h.Grid)
}

func (s *hotelService) sanitizeUpdate(updates *model.HotelSettingsUpdate) {
	if updates.Name != "" {
		updates.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.ContactPhone != "" {
		updates.ContactPhone = normalizePhone(updates.ContactPhone)
	}
	if updates.TimeZone != "" {
		updates.TimeZone = sanitizer.TrimAndNormalize(updates.TimeZone)
	}
	if updates.RoomTypes != nil {
		updates.RoomTypes = sanitizeRoomTypes(updates.RoomTypes)
	}
	if updates.Grid != nil {
		sanitizeGrid(updates.Grid)
	}
}

// normalizePhone keeps an unparseable number as typed so validation can
// report it rather than silently dropping it.
func normalizePhone(phone string) string {
	if normalized := sanitizer.NormalizePhone(phone); normalized != "" {
		return normalized
	}
	return strings.TrimSpace(phone)
}

func sanitizeRoomTypes(roomTypes []model.RoomType) []model.RoomType {
	for i := range roomTypes {
		rt := &roomTypes[i]
		rt.ID = strings.TrimSpace(rt.ID)
		rt.RoomInfo = sanitizer.TrimAndNormalize(rt.RoomInfo)
		rt.DisplayName = sanitizer.TrimAndNormalize(rt.DisplayName)
		rt.RoomNumbers = sanitizer.NormalizeRoomNumbers(rt.RoomNumbers)
		rt.Aliases = sanitizer.NormalizeAliases(rt.Aliases)
	}
	return roomTypes
}

func sanitizeGrid(grid *model.GridSettings) {
	for i := range grid.Floors {
		f := &grid.Floors[i]
		f.Name = sanitizer.TrimAndNormalize(f.Name)
		for j := range f.Containers {
			c := &f.Containers[j]
			c.RoomNumber = sanitizer.NormalizeRoomNumber(c.RoomNumber)
			c.RoomInfo = sanitizer.TrimAndNormalize(c.RoomInfo)
		}
	}
}

func (s *hotelService) applyDefaults(h *model.HotelSettings) {
	if h.TimeZone == "" {
		h.TimeZone = locale.InferTimezoneFromPhone(h.ContactPhone)
	}
	if h.ReleaseHour == nil {
		hour := s.cfg.DefaultReleaseHour
		h.ReleaseHour = &hour
	}
	assignRoomTypeIDs(h.RoomTypes, nil)
}

// assignRoomTypeIDs gives every room type a stable id. A type that arrives
// without one inherits the id of the previous type with the same key, so
// reservations that reference it keep resolving after a settings edit.
func assignRoomTypeIDs(roomTypes []model.RoomType, previous []model.RoomType) {
	byKey := make(map[string]string, len(previous))
	for _, rt := range previous {
		if rt.ID != "" {
			byKey[sanitizer.NormalizeKey(rt.RoomInfo)] = rt.ID
		}
	}
	for i := range roomTypes {
		if roomTypes[i].ID != "" {
			continue
		}
		if id, ok := byKey[sanitizer.NormalizeKey(roomTypes[i].RoomInfo)]; ok {
			roomTypes[i].ID = id
			continue
		}
		roomTypes[i].ID = uuid.NewString()
	}
}

func (s *hotelService) mergeUpdates(existing *model.HotelSettings, updates *model.HotelSettingsUpdate) *model.HotelSettings {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.ContactPhone != "" {
		merged.ContactPhone = updates.ContactPhone
	}
	if updates.TimeZone != "" {
		merged.TimeZone = updates.TimeZone
	}
	if updates.ReleaseHour != nil {
		hour := *updates.ReleaseHour
		merged.ReleaseHour = &hour
	}
	if updates.RoomTypes != nil {
		assignRoomTypeIDs(updates.RoomTypes, existing.RoomTypes)
		merged.RoomTypes = updates.RoomTypes
	}
	if updates.Grid != nil {
		merged.Grid = *updates.Grid
	}
	return &merged
}

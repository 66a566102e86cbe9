package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"frontdesk/internal/reservations/cache"
	reservationserrors "frontdesk/internal/reservations/errors"
	"frontdesk/internal/reservations/events"
	"frontdesk/internal/reservations/repository"
	"frontdesk/internal/reservations/validator"
	"frontdesk/pkg/availability"
	"frontdesk/pkg/client"
	"frontdesk/pkg/config"
	apperrors "frontdesk/pkg/errors"
	"frontdesk/pkg/model"
	"frontdesk/pkg/resilience"
	"frontdesk/pkg/sales"
	"frontdesk/pkg/sanitizer"
)

// HotelSource supplies hotel settings; *client.HotelClient satisfies it.
type HotelSource interface {
	GetHotel(ctx context.Context, id string) (*model.HotelSettings, error)
}

type AvailabilityCache interface {
	Version(ctx context.Context, hotelID string) (int64, bool)
	Get(ctx context.Context, key cache.Key) (*availability.AvailabilityByDate, bool)
	Set(ctx context.Context, key cache.Key, grid *availability.AvailabilityByDate)
	Invalidate(ctx context.Context, hotelID string)
}

type ReservationService interface {
	Create(ctx context.Context, r *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	Search(ctx context.Context, hotelID, from, to string) ([]*model.Reservation, error)
	Update(ctx context.Context, id string, updates *model.ReservationUpdate) (*model.Reservation, error)
	Delete(ctx context.Context, id string) error

	Move(ctx context.Context, id, targetRoom string, confirmSwap bool) (*availability.MovePlan, error)
	Swap(ctx context.Context, idA, idB string) (*availability.MovePlan, error)

	Availability(ctx context.Context, hotelID, from, to string) (*availability.AvailabilityByDate, error)
	DailySales(ctx context.Context, hotelID, from, to string) (*sales.Report, error)
	MonthlySales(ctx context.Context, hotelID, month string) (*sales.MonthReport, error)

	CloseDailySales(ctx context.Context) error
	PurgeExpiredLocks(ctx context.Context) (int64, error)
}

type reservationService struct {
	repo      repository.ReservationRepository
	lockRepo  repository.RoomLockRepository
	hotels    HotelSource
	cache     AvailabilityCache
	events    events.Publisher
	validator *validator.ReservationValidator
	cfg       *config.Config
	now       func() time.Time

	parsersMu sync.Mutex
	parsers   map[string]*availability.DateParser
}

func NewReservationService(
	repo repository.ReservationRepository,
	lockRepo repository.RoomLockRepository,
	hotels HotelSource,
	cache AvailabilityCache,
	publisher events.Publisher,
	validator *validator.ReservationValidator,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		lockRepo:  lockRepo,
		hotels:    hotels,
		cache:     cache,
		events:    publisher,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
		parsers:   make(map[string]*availability.DateParser),
	}
}

func (s *reservationService) Create(ctx context.Context, r *model.Reservation) error {
	s.applyDefaults(r)
	s.sanitize(r)

	if err := s.validator.Validate(r); err != nil {
		s.cfg.Log.Warn("Reservation validation failed",
			"hotel_id", r.HotelID,
			"guest_name", r.GuestName,
			"error", err,
		)
		return apperrors.Validation("Reservation validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	hotel, err := s.hotel(ctx, r.HotelID)
	if err != nil {
		return err
	}
	if err := resolveRoomType(r, hotel); err != nil {
		return err
	}

	if holdsRoom(r) {
		release, err := s.acquireRoomLocks(ctx, r.HotelID, r.RoomNumber)
		if err != nil {
			return err
		}
		defer release()
	}

	engine := availability.ForHotel(hotel, s.cfg.Log)
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if r.Source == model.SourceOTA {
			existing, err := s.repo.FindByExternalID(sessCtx, r.HotelID, r.Source, r.ExternalID)
			if err == nil {
				return apperrors.Conflict(fmt.Sprintf(
					"OTA reservation %s was already imported (id: %s)",
					r.ExternalID, existing.ID,
				))
			}
			if !errors.Is(err, reservationserrors.ErrNotFound) {
				return fmt.Errorf("failed to check for duplicates: %w", err)
			}
		}

		if err := s.checkPlacement(sessCtx, engine, hotel, r, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, r); err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create reservation",
			"hotel_id", r.HotelID,
			"room_number", r.RoomNumber,
			"check_in", r.CheckIn,
			"check_out", r.CheckOut,
			"error", err,
		)
		if apperrors.IsAppError(err) {
			return err
		}
		return apperrors.Internal("Failed to create reservation", err)
	}

	s.afterWrite(ctx, events.TypeReservationCreated, r.HotelID, r.ID, r)
	s.cfg.Log.Info("Reservation created successfully",
		"id", r.ID,
		"hotel_id", r.HotelID,
		"room_info", r.RoomInfo,
		"room_number", r.RoomNumber,
		"source", r.Source,
	)
	return nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve reservation")
	}
	return r, nil
}

func (s *reservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var reservations []*model.Reservation
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
			s.cfg.Log.Error("Failed to count reservations", "error", err)
			errCount = apperrors.Internal("Failed to count reservations", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		reservations, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all reservations",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve reservations", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return reservations, count, nil
}

func (s *reservationService) Update(ctx context.Context, id string, updates *model.ReservationUpdate) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	s.sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Reservation update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to check reservation existence")
	}

	merged := mergeUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Reservation validation failed",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	hotel, err := s.hotel(ctx, merged.HotelID)
	if err != nil {
		return nil, err
	}
	if updates.RoomTypeID == nil {
		if _, ok := hotel.RoomTypeByID(merged.RoomTypeID); !ok {
			merged.RoomTypeID = ""
		}
	}
	if err := resolveRoomType(merged, hotel); err != nil {
		return nil, err
	}

	if holdsRoom(merged) {
		release, err := s.acquireRoomLocks(ctx, merged.HotelID, merged.RoomNumber)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	engine := availability.ForHotel(hotel, s.cfg.Log)
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.checkPlacement(sessCtx, engine, hotel, merged, id); err != nil {
			return err
		}
		if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			s.cfg.Log.Warn("Reservation update rejected", "id", id, "error", err)
			return nil, err
		}
		return nil, s.mapRepoError(err, id, "Failed to update reservation")
	}

	s.afterWrite(ctx, events.TypeReservationUpdated, merged.HotelID, id, merged)
	s.cfg.Log.Info("Reservation updated successfully",
		"id", id,
		"hotel_id", merged.HotelID,
		"room_number", merged.RoomNumber,
		"status", merged.Status,
	)
	return merged, nil
}

func (s *reservationService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapRepoError(err, id, "Failed to check reservation existence")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "Failed to delete reservation")
	}

	s.afterWrite(ctx, events.TypeReservationDeleted, existing.HotelID, id, existing)
	s.cfg.Log.Info("Reservation deleted successfully",
		"id", id,
		"hotel_id", existing.HotelID,
	)
	return nil
}

// checkPlacement rejects r when its room is held by another reservation on
// any of its days. Unassigned and cancelled reservations hold nothing.
func (s *reservationService) checkPlacement(
	ctx context.Context,
	engine *availability.Engine,
	hotel *model.HotelSettings,
	r *model.Reservation,
	excludeID string,
) error {
	if !holdsRoom(r) {
		return nil
	}
	existing, err := s.loadWindow(ctx, engine, r.HotelID, r.CheckIn, r.CheckOut)
	if err != nil {
		return err
	}

	result := engine.CanMoveToRoom(availability.PlacementOf(r, r.RoomNumber), existing, excludeID, hotel.RoomTypes, &hotel.Grid)
	if !result.CanMove {
		return roomConflictError(r.RoomNumber, result)
	}
	return nil
}

// loadWindow fetches every reservation that can hold a room on any local
// day from checkIn's day through checkOut's day.
func (s *reservationService) loadWindow(ctx context.Context, engine *availability.Engine, hotelID string, checkIn, checkOut time.Time) ([]*model.Reservation, error) {
	loc := engine.Location()
	from := availability.DayOnly(checkIn, loc)
	to := availability.DayOnly(checkOut, loc).AddDate(0, 0, 1)

	reservations, err := s.repo.FindByHotelInRange(ctx, hotelID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}
	return reservations, nil
}

func (s *reservationService) hotel(ctx context.Context, id string) (*model.HotelSettings, error) {
	h, err := s.hotels.GetHotel(ctx, id)
	switch {
	case err == nil:
		return h, nil
	case errors.Is(err, client.ErrNotFound):
		return nil, apperrors.InvalidInput(fmt.Sprintf("Hotel %s does not exist", id))
	case errors.Is(err, resilience.ErrCircuitOpen):
		return nil, apperrors.Unavailable("hotels service")
	case errors.Is(err, context.DeadlineExceeded):
		return nil, apperrors.Timeout("Timed out fetching hotel settings")
	default:
		s.cfg.Log.Error("Failed to fetch hotel settings",
			"hotel_id", id,
			"error", err,
		)
		return nil, apperrors.Unavailable("hotels service")
	}
}

func (s *reservationService) afterWrite(ctx context.Context, eventType, hotelID, reservationID string, payload any) {
	s.cache.Invalidate(ctx, hotelID)
	s.events.Publish(ctx, events.Event{
		Type:          eventType,
		HotelID:       hotelID,
		ReservationID: reservationID,
		Payload:       payload,
	})
}

func (s *reservationService) mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, reservationserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Reservation", id)
	case errors.Is(err, reservationserrors.ErrInvalidID):
		return apperrors.InvalidInput(fmt.Sprintf("Invalid reservation ID: %s", id))
	default:
		s.cfg.Log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}

func roomConflictError(room string, result availability.PlacementResult) error {
	return apperrors.RoomConflict(
		fmt.Sprintf("Room %s is not available for the requested stay", room),
		map[string]any{
			"reason":                   result.Reason,
			"conflict_days":            result.ConflictDays,
			"conflict_reservation_ids": result.ConflictReservationIDs,
			"free_rooms":               result.FreeRooms,
		},
	)
}

// resolveRoomType pins r to one of the hotel's room types: by stable id,
// then by exact key or alias, then by the type owning its room.
func resolveRoomType(r *model.Reservation, hotel *model.HotelSettings) error {
	var owner model.RoomType
	var owned bool
	if r.IsAssigned() {
		owner, owned = hotel.RoomTypeOfRoom(r.RoomNumber)
		if !owned {
			return apperrors.InvalidInput(fmt.Sprintf("Room %s does not exist in hotel %s", r.RoomNumber, hotel.ID))
		}
	}

	if r.RoomTypeID != "" {
		rt, ok := hotel.RoomTypeByID(r.RoomTypeID)
		if !ok {
			return apperrors.InvalidInput(fmt.Sprintf("Room type %s does not exist in hotel %s", r.RoomTypeID, hotel.ID))
		}
		r.RoomInfo = rt.RoomInfo
		return nil
	}
	if m, ok := availability.MatchRoomType(r.RoomInfo, hotel.RoomTypes, 1); ok && m.Method == availability.MatchExact {
		r.RoomTypeID = m.RoomType.ID
		r.RoomInfo = m.RoomType.RoomInfo
		return nil
	}
	if owned {
		r.RoomTypeID = owner.ID
		r.RoomInfo = owner.RoomInfo
		return nil
	}
	return apperrors.InvalidInput(fmt.Sprintf("Unknown room type %q for hotel %s", r.RoomInfo, hotel.ID))
}

func roomTypeIDOf(hotel *model.HotelSettings, roomInfo string) string {
	for _, rt := range hotel.RoomTypes {
		if rt.Matches(roomInfo) {
			return rt.ID
		}
	}
	return ""
}

func holdsRoom(r *model.Reservation) bool {
	return r.IsAssigned() && !r.IsCancelled()
}

func (s *reservationService) applyDefaults(r *model.Reservation) {
	r.ID = ""
	if r.Status == "" {
		r.Status = model.StatusConfirmed
	}
	if r.Source == "" {
		r.Source = model.SourceDirect
	}
	if r.Type == "" {
		r.Type = model.ReservationTypeStay
	}
}

func (s *reservationService) sanitize(r *model.Reservation) {
	r.HotelID = strings.TrimSpace(r.HotelID)
	r.GuestName = sanitizer.NormalizeName(r.GuestName)
	r.Phone = normalizePhone(r.Phone)
	r.RoomTypeID = strings.TrimSpace(r.RoomTypeID)
	r.RoomInfo = sanitizer.TrimAndNormalize(r.RoomInfo)
	r.RoomNumber = sanitizer.NormalizeRoomNumber(r.RoomNumber)
	r.ExternalID = strings.TrimSpace(r.ExternalID)
	r.Memo = strings.TrimSpace(r.Memo)
}

func (s *reservationService) sanitizeUpdate(u *model.ReservationUpdate) {
	u.GuestName = sanitizer.NormalizeName(u.GuestName)
	u.RoomInfo = sanitizer.TrimAndNormalize(u.RoomInfo)
	if u.Phone != nil {
		p := normalizePhone(*u.Phone)
		u.Phone = &p
	}
	if u.RoomTypeID != nil {
		id := strings.TrimSpace(*u.RoomTypeID)
		u.RoomTypeID = &id
	}
	if u.RoomNumber != nil {
		room := sanitizer.NormalizeRoomNumber(*u.RoomNumber)
		u.RoomNumber = &room
	}
	if u.Memo != nil {
		memo := strings.TrimSpace(*u.Memo)
		u.Memo = &memo
	}
}

// normalizePhone keeps the raw value when it cannot be parsed so the
// validator can report it.
func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	if normalized := sanitizer.NormalizePhone(phone); normalized != "" {
		return normalized
	}
	return phone
}

// mergeUpdates returns a copy of existing with updates applied. A new room
// type text without an explicit id drops the old id so it is resolved again.
func mergeUpdates(existing *model.Reservation, updates *model.ReservationUpdate) *model.Reservation {
	merged := *existing

	if updates.GuestName != "" {
		merged.GuestName = updates.GuestName
	}
	if updates.Phone != nil {
		merged.Phone = *updates.Phone
	}
	if updates.CheckIn != nil {
		merged.CheckIn = *updates.CheckIn
	}
	if updates.CheckOut != nil {
		merged.CheckOut = *updates.CheckOut
	}
	if updates.Type != "" {
		merged.Type = updates.Type
	}
	if updates.RoomInfo != "" {
		merged.RoomInfo = updates.RoomInfo
		merged.RoomTypeID = ""
	}
	if updates.RoomTypeID != nil {
		merged.RoomTypeID = *updates.RoomTypeID
	}
	if updates.RoomNumber != nil {
		merged.RoomNumber = *updates.RoomNumber
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}
	if updates.Price != nil {
		merged.Price = *updates.Price
	}
	if updates.Memo != nil {
		merged.Memo = *updates.Memo
	}
	return &merged
}

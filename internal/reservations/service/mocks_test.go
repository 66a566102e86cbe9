package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"frontdesk/internal/reservations/cache"
	reservationserrors "frontdesk/internal/reservations/errors"
	"frontdesk/internal/reservations/events"
	"frontdesk/internal/reservations/validator"
	"frontdesk/pkg/availability"
	"frontdesk/pkg/config"
	mongotx "frontdesk/pkg/db/mongo"
	"frontdesk/pkg/logger"
	"frontdesk/pkg/model"
)

const (
	hotelID    = "65f0000000000000000000aa"
	stdTypeID  = "11111111-1111-4111-8111-111111111111"
	dlxTypeID  = "22222222-2222-4222-8222-222222222222"
	resAID     = "65f000000000000000000a01"
	resBID     = "65f000000000000000000b01"
	createdID  = "65f000000000000000000c01"
	otherHotel = "65f0000000000000000000bb"
)

var seoul = availability.LoadLocation("Asia/Seoul")

func at(day, hour int) time.Time {
	return time.Date(2025, 3, day, hour, 0, 0, 0, seoul)
}

func testHotel() *model.HotelSettings {
	return &model.HotelSettings{
		ID:           hotelID,
		Name:         "Hotel Haneul",
		ContactPhone: "+8221234567",
		TimeZone:     "Asia/Seoul",
		RoomTypes: []model.RoomType{
			{ID: stdTypeID, RoomInfo: "Standard", Stock: 2, Price: 100000, RoomNumbers: []string{"101", "102"}},
			{ID: dlxTypeID, RoomInfo: "Deluxe", Stock: 1, Price: 180000, RoomNumbers: []string{"201"}, Aliases: []string{"DLX"}},
		},
	}
}

// stay builds a confirmed stay from day 15:00 to day+nights 11:00.
func stay(id, room, roomInfo, typeID string, day, nights int) *model.Reservation {
	return &model.Reservation{
		ID:         id,
		HotelID:    hotelID,
		GuestName:  "Guest " + id[len(id)-3:],
		CheckIn:    at(day, 15),
		CheckOut:   at(day+nights, 11),
		Type:       model.ReservationTypeStay,
		RoomTypeID: typeID,
		RoomInfo:   roomInfo,
		RoomNumber: room,
		Status:     model.StatusConfirmed,
		Price:      int64(nights) * 100000,
		Source:     model.SourceDirect,
	}
}

type roomUpdate struct {
	id, room, roomInfo, roomTypeID string
}

type mockReservationRepository struct {
	mu sync.Mutex

	createFunc             func(ctx context.Context, r *model.Reservation) error
	findByIDFunc           func(ctx context.Context, id string) (*model.Reservation, error)
	findAllFunc            func(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error)
	countFunc              func(ctx context.Context) (int64, error)
	updateFunc             func(ctx context.Context, id string, r *model.Reservation) (*mongo.UpdateResult, error)
	updateRoomFunc         func(ctx context.Context, id, roomNumber, roomInfo, roomTypeID string) error
	deleteFunc             func(ctx context.Context, id string) error
	findByHotelInRangeFunc func(ctx context.Context, hotelID string, from, to time.Time) ([]*model.Reservation, error)
	findByExternalIDFunc   func(ctx context.Context, hotelID, source, externalID string) (*model.Reservation, error)
	distinctHotelIDsFunc   func(ctx context.Context) ([]string, error)
	transactional          bool

	created     []*model.Reservation
	roomUpdates []roomUpdate
	rangeCalls  int
}

func (m *mockReservationRepository) Create(ctx context.Context, r *model.Reservation) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, r)
	}
	r.ID = createdID
	m.created = append(m.created, r)
	return nil
}

func (m *mockReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", reservationserrors.ErrNotFound, id)
}

func (m *mockReservationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Reservation{}, nil
}

func (m *mockReservationRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockReservationRepository) Update(ctx context.Context, id string, r *model.Reservation) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, r)
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockReservationRepository) UpdateRoom(ctx context.Context, id, roomNumber, roomInfo, roomTypeID string) error {
	m.mu.Lock()
	m.roomUpdates = append(m.roomUpdates, roomUpdate{id: id, room: roomNumber, roomInfo: roomInfo, roomTypeID: roomTypeID})
	m.mu.Unlock()
	if m.updateRoomFunc != nil {
		return m.updateRoomFunc(ctx, id, roomNumber, roomInfo, roomTypeID)
	}
	return nil
}

func (m *mockReservationRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockReservationRepository) FindByHotelInRange(ctx context.Context, hotelID string, from, to time.Time) ([]*model.Reservation, error) {
	m.mu.Lock()
	m.rangeCalls++
	m.mu.Unlock()
	if m.findByHotelInRangeFunc != nil {
		return m.findByHotelInRangeFunc(ctx, hotelID, from, to)
	}
	return nil, nil
}

func (m *mockReservationRepository) FindByExternalID(ctx context.Context, hotelID, source, externalID string) (*model.Reservation, error) {
	if m.findByExternalIDFunc != nil {
		return m.findByExternalIDFunc(ctx, hotelID, source, externalID)
	}
	return nil, fmt.Errorf("%w: external id %s", reservationserrors.ErrNotFound, externalID)
}

func (m *mockReservationRepository) DistinctHotelIDs(ctx context.Context) ([]string, error) {
	if m.distinctHotelIDsFunc != nil {
		return m.distinctHotelIDsFunc(ctx)
	}
	return nil, nil
}

func (m *mockReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

func (m *mockReservationRepository) Transactional() bool {
	return m.transactional
}

type mockRoomLockRepository struct {
	createFunc       func(ctx context.Context, lock *model.RoomLock) (*model.RoomLock, error)
	purgeExpiredFunc func(ctx context.Context, now time.Time) (int64, error)

	acquired []*model.RoomLock
	released []string
}

func (m *mockRoomLockRepository) Create(ctx context.Context, lock *model.RoomLock) (*model.RoomLock, error) {
	if m.createFunc != nil {
		if _, err := m.createFunc(ctx, lock); err != nil {
			return nil, err
		}
	}
	m.acquired = append(m.acquired, lock)
	return lock, nil
}

func (m *mockRoomLockRepository) Delete(_ context.Context, lockID, _ string) error {
	m.released = append(m.released, lockID)
	return nil
}

func (m *mockRoomLockRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.purgeExpiredFunc != nil {
		return m.purgeExpiredFunc(ctx, now)
	}
	return 0, nil
}

type mockHotelSource struct {
	getHotelFunc func(ctx context.Context, id string) (*model.HotelSettings, error)
}

func (m *mockHotelSource) GetHotel(ctx context.Context, id string) (*model.HotelSettings, error) {
	if m.getHotelFunc != nil {
		return m.getHotelFunc(ctx, id)
	}
	return testHotel(), nil
}

type mockCache struct {
	versionFunc func(ctx context.Context, hotelID string) (int64, bool)
	getFunc     func(ctx context.Context, key cache.Key) (*availability.AvailabilityByDate, bool)

	stored      []cache.Key
	invalidated []string
}

func (m *mockCache) Version(ctx context.Context, hotelID string) (int64, bool) {
	if m.versionFunc != nil {
		return m.versionFunc(ctx, hotelID)
	}
	return 0, false
}

func (m *mockCache) Get(ctx context.Context, key cache.Key) (*availability.AvailabilityByDate, bool) {
	if m.getFunc != nil {
		return m.getFunc(ctx, key)
	}
	return nil, false
}

func (m *mockCache) Set(_ context.Context, key cache.Key, _ *availability.AvailabilityByDate) {
	m.stored = append(m.stored, key)
}

func (m *mockCache) Invalidate(_ context.Context, hotelID string) {
	m.invalidated = append(m.invalidated, hotelID)
}

type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) Publish(_ context.Context, e events.Event) {
	m.published = append(m.published, e)
}

func testConfig() *config.Config {
	return &config.Config{
		Log:                       logger.New(logger.Config{Level: "error", Output: io.Discard}),
		ReadTimeout:               5 * time.Second,
		WriteTimeout:              5 * time.Second,
		RoomLockTTL:               30 * time.Second,
		MaxAvailabilityWindowDays: 31,
		DateCacheSize:             64,
	}
}

type fixture struct {
	svc    *reservationService
	repo   *mockReservationRepository
	locks  *mockRoomLockRepository
	hotels *mockHotelSource
	cache  *mockCache
	events *mockPublisher
}

func newFixture() *fixture {
	f := &fixture{
		repo:   &mockReservationRepository{transactional: true},
		locks:  &mockRoomLockRepository{},
		hotels: &mockHotelSource{},
		cache:  &mockCache{},
		events: &mockPublisher{},
	}
	svc := NewReservationService(f.repo, f.locks, f.hotels, f.cache, f.events, validator.NewReservationValidator(), testConfig())
	f.svc = svc.(*reservationService)
	f.svc.now = func() time.Time { return at(1, 10) }
	return f
}

// withReservations makes FindByID and FindByHotelInRange serve rs.
func (f *fixture) withReservations(rs ...*model.Reservation) {
	byID := make(map[string]*model.Reservation, len(rs))
	for _, r := range rs {
		byID[r.ID] = r
	}
	f.repo.findByIDFunc = func(_ context.Context, id string) (*model.Reservation, error) {
		if r, ok := byID[id]; ok {
			copied := *r
			return &copied, nil
		}
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrNotFound, id)
	}
	f.repo.findByHotelInRangeFunc = func(_ context.Context, _ string, _, _ time.Time) ([]*model.Reservation, error) {
		return rs, nil
	}
}

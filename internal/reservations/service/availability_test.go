package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk/internal/reservations/cache"
	"frontdesk/pkg/availability"
	apperrors "frontdesk/pkg/errors"
	"frontdesk/pkg/model"
)

func TestAvailability_ComputesAndStores(t *testing.T) {
	f := newFixture()
	f.cache.versionFunc = func(context.Context, string) (int64, bool) { return 3, true }
	f.withReservations(
		stay(resAID, "101", "Standard", stdTypeID, 2, 2),
		stay(resBID, "", "Deluxe", dlxTypeID, 3, 1),
	)

	var gotFrom, gotTo time.Time
	inner := f.repo.findByHotelInRangeFunc
	f.repo.findByHotelInRangeFunc = func(ctx context.Context, id string, from, to time.Time) ([]*model.Reservation, error) {
		gotFrom, gotTo = from, to
		return inner(ctx, id, from, to)
	}

	grid, err := f.svc.Availability(context.Background(), hotelID, "2025-03-02", "2025-03-04")
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-03-02", "2025-03-03", "2025-03-04"}, grid.Dates)
	assert.Equal(t, 1, grid.Remain("2025-03-02", "Standard"))
	assert.Equal(t, 2, grid.Remain("2025-03-04", "Standard"))
	assert.Equal(t, 1, grid.Unassigned["2025-03-03"])

	assert.True(t, gotFrom.Equal(at(2, 0)))
	assert.True(t, gotTo.Equal(at(5, 0)), "query end is exclusive, one day past to")

	require.Len(t, f.cache.stored, 1)
	key := f.cache.stored[0]
	assert.Equal(t, int64(3), key.Version)
	assert.Equal(t, "2025-03-02", key.From)
	assert.Equal(t, "2025-03-04", key.To)
	assert.Equal(t, fingerprint(testHotel()), key.Fingerprint)
}

func TestAvailability_CacheHit(t *testing.T) {
	f := newFixture()
	cached := &availability.AvailabilityByDate{Dates: []string{"2025-03-02"}}
	f.cache.versionFunc = func(context.Context, string) (int64, bool) { return 1, true }
	f.cache.getFunc = func(_ context.Context, key cache.Key) (*availability.AvailabilityByDate, bool) {
		return cached, key.Version == 1
	}

	grid, err := f.svc.Availability(context.Background(), hotelID, "2025-03-02", "2025-03-02")
	require.NoError(t, err)
	assert.Same(t, cached, grid)
	assert.Zero(t, f.repo.rangeCalls)
	assert.Empty(t, f.cache.stored)
}

func TestAvailability_SkipsUnreachableCache(t *testing.T) {
	f := newFixture()
	f.cache.getFunc = func(context.Context, cache.Key) (*availability.AvailabilityByDate, bool) {
		t.Fatal("cache must not be read without a version")
		return nil, false
	}

	_, err := f.svc.Availability(context.Background(), hotelID, "2025-03-02", "2025-03-03")
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.rangeCalls)
	assert.Empty(t, f.cache.stored)
}

func TestAvailability_RejectsBadRanges(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
	}{
		{"reversed", "2025-03-05", "2025-03-01"},
		{"longer than the window", "2025-03-01", "2025-04-01"},
		{"unparseable from", "next tuesday", "2025-03-01"},
		{"empty to", "2025-03-01", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.Availability(context.Background(), hotelID, tt.from, tt.to)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput), "got %v", err)
			assert.Zero(t, f.repo.rangeCalls)
		})
	}
}

func TestAvailability_FullWindowAllowed(t *testing.T) {
	f := newFixture()
	grid, err := f.svc.Availability(context.Background(), hotelID, "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	assert.Len(t, grid.Dates, 31)
}

func TestFingerprintTracksSettings(t *testing.T) {
	base := testHotel()
	assert.Equal(t, fingerprint(base), fingerprint(testHotel()))

	restocked := testHotel()
	restocked.RoomTypes[0].Stock = 3
	assert.NotEqual(t, fingerprint(base), fingerprint(restocked))

	moved := testHotel()
	moved.TimeZone = "Asia/Tokyo"
	assert.NotEqual(t, fingerprint(base), fingerprint(moved))
}

func TestSearch(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Search(context.Background(), hotelID, "2025-03-01", "2025-03-10")
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Empty(t, res)

	f.withReservations(stay(resAID, "101", "Standard", stdTypeID, 2, 2))
	res, err = f.svc.Search(context.Background(), hotelID, "2025-03-01", "2025-03-10")
	require.NoError(t, err)
	assert.Len(t, res, 1)

	_, err = f.svc.Search(context.Background(), "", "2025-03-01", "2025-03-10")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestDailySales(t *testing.T) {
	f := newFixture()
	f.withReservations(stay(resAID, "101", "Standard", stdTypeID, 2, 2))

	report, err := f.svc.DailySales(context.Background(), hotelID, "2025-03-01", "2025-03-05")
	require.NoError(t, err)
	assert.Equal(t, int64(200000), report.Revenue)
	require.Len(t, report.Days, 5)
	assert.Equal(t, int64(0), report.Days[0].Revenue)
	assert.Equal(t, int64(100000), report.Days[1].Revenue)
	assert.Equal(t, int64(100000), report.Days[2].Revenue)
	assert.Equal(t, 2, report.RoomNights)
}

func TestMonthlySales(t *testing.T) {
	f := newFixture()
	f.withReservations(stay(resAID, "101", "Standard", stdTypeID, 2, 2))

	var gotFrom, gotTo time.Time
	inner := f.repo.findByHotelInRangeFunc
	f.repo.findByHotelInRangeFunc = func(ctx context.Context, id string, from, to time.Time) ([]*model.Reservation, error) {
		gotFrom, gotTo = from, to
		return inner(ctx, id, from, to)
	}

	report, err := f.svc.MonthlySales(context.Background(), hotelID, "2025-03")
	require.NoError(t, err)
	assert.Equal(t, int64(200000), report.Revenue)
	assert.True(t, gotFrom.Equal(at(1, 0)))
	assert.True(t, gotTo.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, seoul)))

	_, err = f.svc.MonthlySales(context.Background(), hotelID, "March")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

package availability

import (
	"sort"
	"strings"
	"time"

	"frontdesk/pkg/logger"
	"frontdesk/pkg/model"
)

const DefaultReleaseHour = 2

type Options struct {
	Location *time.Location
	// ReleaseHour is the local hour from which a checkout frees the room for
	// the checkout day itself.
	ReleaseHour int
}

// Engine evaluates room occupancy for one property. It holds no state
// besides its options and never mutates the reservations it is given.
type Engine struct {
	loc         *time.Location
	releaseHour int
	log         *logger.Logger
}

func NewEngine(opts Options, log *logger.Logger) *Engine {
	loc := opts.Location
	if loc == nil {
		loc = LoadLocation("")
	}
	releaseHour := opts.ReleaseHour
	if releaseHour < 0 || releaseHour > 23 {
		releaseHour = DefaultReleaseHour
	}
	return &Engine{
		loc:         loc,
		releaseHour: releaseHour,
		log:         log,
	}
}

// ForHotel builds an engine using the hotel's zone and release hour.
func ForHotel(hotel *model.HotelSettings, log *logger.Logger) *Engine {
	return NewEngine(Options{
		Location:    LoadLocation(hotel.TimeZone),
		ReleaseHour: hotel.ReleaseHourOr(DefaultReleaseHour),
	}, log.ForHotel(hotel.ID))
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

func (e *Engine) ReleaseHour() int {
	return e.releaseHour
}

// occupiedDays returns the local calendar days r holds its room.
// A day-use holds its check-in day. A stay holds check-in day through the
// day before checkout, plus the checkout day when checkout falls before the
// release hour. A checkout at exactly midnight is a date-only checkout and
// never holds the checkout day.
func (e *Engine) occupiedDays(r *model.Reservation) ([]time.Time, bool) {
	iv := Interval{Start: r.CheckIn, End: r.CheckOut}
	if !iv.Valid() {
		return nil, false
	}

	start := DayOnly(r.CheckIn, e.loc)
	if r.IsDayUse() {
		return []time.Time{start}, true
	}

	checkoutDay := DayOnly(r.CheckOut, e.loc)
	last := checkoutDay.AddDate(0, 0, -1)
	if e.holdsCheckoutDay(r.CheckOut) {
		last = checkoutDay
	}
	if last.Before(start) {
		last = start
	}
	return EachDay(start, last, e.loc), true
}

func (e *Engine) holdsCheckoutDay(checkOut time.Time) bool {
	local := checkOut.In(e.loc)
	y, m, d := local.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, e.loc)
	if local.Equal(midnight) {
		return false
	}
	release := time.Date(y, m, d, e.releaseHour, 0, 0, 0, e.loc)
	return local.Before(release)
}

// dayInterval is the whole-day span [first occupied day, last occupied day + 1).
func (e *Engine) dayInterval(r *model.Reservation) (Interval, bool) {
	days, ok := e.occupiedDays(r)
	if !ok || len(days) == 0 {
		return Interval{}, false
	}
	return Interval{Start: days[0], End: days[len(days)-1].AddDate(0, 0, 1)}, true
}

// conflictDays lists the days on which a and b cannot share one room.
// Two day-use bookings compare exact times; any pairing with a stay compares
// whole days.
func (e *Engine) conflictDays(a, b *model.Reservation) []string {
	if a.IsDayUse() && b.IsDayUse() {
		ia := Interval{Start: a.CheckIn, End: a.CheckOut}
		ib := Interval{Start: b.CheckIn, End: b.CheckOut}
		if !ia.Valid() || !ib.Valid() || !Overlaps(ia, ib, false) {
			return nil
		}
		return []string{DateKey(DayOnly(a.CheckIn, e.loc))}
	}

	da, okA := e.dayInterval(a)
	db, okB := e.dayInterval(b)
	if !okA || !okB || !Overlaps(da, db, false) {
		return nil
	}
	from := maxTime(da.Start, db.Start)
	to := minTime(da.End, db.End).AddDate(0, 0, -1)
	var keys []string
	for _, d := range EachDay(from, to, e.loc) {
		keys = append(keys, DateKey(d))
	}
	return keys
}

func (e *Engine) conflicts(a, b *model.Reservation) bool {
	return len(e.conflictDays(a, b)) > 0
}

func active(r *model.Reservation) bool {
	return r != nil && !r.IsCancelled()
}

func sameReservation(a, b *model.Reservation) bool {
	if a == b {
		return true
	}
	return a.ID != "" && a.ID == b.ID
}

func normalizeRoom(room string) string {
	return strings.ToLower(strings.TrimSpace(room))
}

func sameRoom(a, b string) bool {
	na := normalizeRoom(a)
	return na != "" && na == normalizeRoom(b)
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func sortedUnique(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

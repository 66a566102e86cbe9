// Package sales rolls reservation prices up into per-day and per-month
// revenue for the front desk reports.
package sales

import (
	"sort"
	"time"

	"frontdesk/pkg/availability"
	"frontdesk/pkg/model"
)

const MonthKeyLayout = "2006-01"

type DaySales struct {
	Date       string           `json:"date"`
	Revenue    int64            `json:"revenue"`
	RoomNights int              `json:"room_nights"`
	DayUses    int              `json:"day_uses"`
	ByRoomType map[string]int64 `json:"by_room_type"`
}

type Report struct {
	From       string           `json:"from"`
	To         string           `json:"to"`
	Days       []DaySales       `json:"days"`
	Revenue    int64            `json:"revenue"`
	RoomNights int              `json:"room_nights"`
	DayUses    int              `json:"day_uses"`
	ByRoomType map[string]int64 `json:"by_room_type"`
}

type MonthReport struct {
	Month string `json:"month"`
	Report
}

// Daily spreads each stay's price evenly across its nights and books each
// day-use on its check-in day. Any remainder from the split lands on the
// first night. Cancelled reservations and ones with unusable dates are left
// out.
func Daily(reservations []*model.Reservation, from, to time.Time, loc *time.Location) Report {
	if loc == nil {
		loc = availability.LoadLocation("")
	}
	days := availability.EachDay(from, to, loc)

	report := Report{
		Days:       make([]DaySales, 0, len(days)),
		ByRoomType: make(map[string]int64),
	}
	if len(days) == 0 {
		return report
	}
	report.From = availability.DateKey(days[0])
	report.To = availability.DateKey(days[len(days)-1])

	index := make(map[string]int, len(days))
	for i, d := range days {
		key := availability.DateKey(d)
		index[key] = i
		report.Days = append(report.Days, DaySales{Date: key, ByRoomType: make(map[string]int64)})
	}

	for _, r := range reservations {
		if r == nil || r.IsCancelled() || r.CheckIn.IsZero() || !r.CheckOut.After(r.CheckIn) {
			continue
		}
		for _, share := range shares(r, loc) {
			i, ok := index[share.date]
			if !ok {
				continue
			}
			day := &report.Days[i]
			day.Revenue += share.amount
			day.ByRoomType[r.RoomInfo] += share.amount
			if r.IsDayUse() {
				day.DayUses++
			} else {
				day.RoomNights++
			}
		}
	}

	for _, day := range report.Days {
		report.Revenue += day.Revenue
		report.RoomNights += day.RoomNights
		report.DayUses += day.DayUses
		for roomInfo, amount := range day.ByRoomType {
			report.ByRoomType[roomInfo] += amount
		}
	}
	return report
}

// Monthly is the Daily report for every day of the given month.
func Monthly(reservations []*model.Reservation, year int, month time.Month, loc *time.Location) MonthReport {
	if loc == nil {
		loc = availability.LoadLocation("")
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	return MonthReport{
		Month:  first.Format(MonthKeyLayout),
		Report: Daily(reservations, first, last, loc),
	}
}

// ParseMonth accepts "2006-01".
func ParseMonth(raw string, loc *time.Location) (int, time.Month, error) {
	if loc == nil {
		loc = availability.LoadLocation("")
	}
	t, err := time.ParseInLocation(MonthKeyLayout, raw, loc)
	if err != nil {
		return 0, 0, err
	}
	return t.Year(), t.Month(), nil
}

// TopRoomTypes lists room types by revenue, highest first.
func (r Report) TopRoomTypes() []string {
	keys := make([]string, 0, len(r.ByRoomType))
	for k := range r.ByRoomType {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if r.ByRoomType[keys[i]] == r.ByRoomType[keys[j]] {
			return keys[i] < keys[j]
		}
		return r.ByRoomType[keys[i]] > r.ByRoomType[keys[j]]
	})
	return keys
}

type share struct {
	date   string
	amount int64
}

func shares(r *model.Reservation, loc *time.Location) []share {
	checkIn := availability.DayOnly(r.CheckIn, loc)
	if r.IsDayUse() {
		return []share{{date: availability.DateKey(checkIn), amount: r.Price}}
	}

	nights := availability.EachDay(checkIn, r.CheckOut, loc)
	if len(nights) > 1 {
		nights = nights[:len(nights)-1]
	}
	n := int64(len(nights))
	per, rest := r.Price/n, r.Price%n

	out := make([]share, 0, len(nights))
	for i, night := range nights {
		amount := per
		if i == 0 {
			amount += rest
		}
		out = append(out, share{date: availability.DateKey(night), amount: amount})
	}
	return out
}

package availability

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"frontdesk/pkg/logger"
	"frontdesk/pkg/model"
)

var seoul = LoadLocation(DefaultTimeZone)

func newTestEngine() *Engine {
	log := logger.New(logger.Config{
		Level:  logger.ERROR,
		Output: io.Discard,
	})
	return NewEngine(Options{Location: seoul, ReleaseHour: DefaultReleaseHour}, log)
}

func at(t *testing.T, s string) time.Time {
	t.Helper()
	layout := "2006-01-02T15:04"
	if len(s) == len(DateKeyLayout) {
		layout = DateKeyLayout
	}
	tm, err := time.ParseInLocation(layout, s, seoul)
	require.NoError(t, err)
	return tm
}

func stay(t *testing.T, id, room, roomInfo, in, out string) *model.Reservation {
	t.Helper()
	return &model.Reservation{
		ID:         id,
		RoomNumber: room,
		RoomInfo:   roomInfo,
		Type:       model.ReservationTypeStay,
		Status:     model.StatusConfirmed,
		CheckIn:    at(t, in),
		CheckOut:   at(t, out),
	}
}

func dayUse(t *testing.T, id, room, roomInfo, in, out string) *model.Reservation {
	t.Helper()
	r := stay(t, id, room, roomInfo, in, out)
	r.Type = model.ReservationTypeDayUse
	return r
}

func standardAndDeluxe() []model.RoomType {
	return []model.RoomType{
		{RoomInfo: "standard", Stock: 2, RoomNumbers: []string{"101", "102"}},
		{RoomInfo: "deluxe", Stock: 1, RoomNumbers: []string{"201"}},
	}
}

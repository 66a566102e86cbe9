package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk/pkg/model"
)

func catalogForMatching() []model.RoomType {
	return []model.RoomType{
		{RoomInfo: "standard", DisplayName: "Standard Double", Aliases: []string{"std"}},
		{RoomInfo: "deluxe", DisplayName: "Deluxe Twin"},
		{RoomInfo: "suite", Aliases: []string{"family suite"}},
		{RoomInfo: "디럭스 온돌", Aliases: []string{"온돌"}},
	}
}

func TestMatchRoomType(t *testing.T) {
	roomTypes := catalogForMatching()

	tests := []struct {
		name        string
		description string
		wantKey     string
		wantMethod  MatchMethod
	}{
		{"exact key", "Standard", "standard", MatchExact},
		{"exact alias", "STD", "standard", MatchExact},
		{"exact display name", "deluxe  twin", "deluxe", MatchExact},
		{"punctuation ignored", "Family-Suite!", "suite", MatchExact},
		{"ota description", "Deluxe Twin Room (Non-smoking)", "deluxe", MatchFuzzy},
		{"typos", "Delux Twn", "deluxe", MatchFuzzy},
		{"korean", "온돌", "디럭스 온돌", MatchExact},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchRoomType(tt.description, roomTypes, DefaultMatchThreshold)
			require.True(t, ok)
			assert.Equal(t, tt.wantKey, got.RoomType.RoomInfo)
			assert.Equal(t, tt.wantMethod, got.Method)
			assert.GreaterOrEqual(t, got.Score, DefaultMatchThreshold)
		})
	}
}

func TestMatchRoomType_NoMatch(t *testing.T) {
	roomTypes := catalogForMatching()

	for _, desc := range []string{"", "   ", "penthouse", "!!!"} {
		_, ok := MatchRoomType(desc, roomTypes, DefaultMatchThreshold)
		assert.False(t, ok, desc)
	}

	_, ok := MatchRoomType("standard", nil, DefaultMatchThreshold)
	assert.False(t, ok)
}

func TestMatchRoomType_Threshold(t *testing.T) {
	roomTypes := catalogForMatching()

	_, strict := MatchRoomType("Delux Twn", roomTypes, 0.95)
	assert.False(t, strict)

	got, loose := MatchRoomType("Delux Twn", roomTypes, 0.5)
	require.True(t, loose)
	assert.Equal(t, 1, got.Index)
}

func TestMatchRoomType_Substring(t *testing.T) {
	roomTypes := []model.RoomType{{RoomInfo: "ocean view"}}

	got, ok := MatchRoomType("Ocean", roomTypes, 0.7)
	require.True(t, ok)
	assert.Equal(t, MatchSubstring, got.Method)
	assert.InDelta(t, 0.75, got.Score, 1e-9)

	got, ok = MatchRoomType("premium ocean view", roomTypes, 0.7)
	require.True(t, ok)
	assert.Equal(t, 0, got.Index)
}

package availability

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"frontdesk/pkg/model"
)

const DefaultMatchThreshold = 0.7

type MatchMethod string

const (
	MatchExact     MatchMethod = "exact"
	MatchSubstring MatchMethod = "substring"
	MatchFuzzy     MatchMethod = "fuzzy"
)

// Match is the room type a free-text description resolved to.
type Match struct {
	RoomType model.RoomType `json:"room_type"`
	Index    int            `json:"-"`
	Score    float64        `json:"score"`
	Method   MatchMethod    `json:"method"`
	// Term is the key, display name or alias that matched.
	Term string `json:"term"`
}

// MatchRoomType maps an OTA room description such as "Deluxe Double Room
// (Non-smoking)" onto a room type. Exact matches on key, display name or
// alias win outright; otherwise the best substring or token edit-distance
// score at or above threshold is returned.
func MatchRoomType(description string, roomTypes []model.RoomType, threshold float64) (Match, bool) {
	desc := matchText(description)
	if desc == "" || len(roomTypes) == 0 {
		return Match{}, false
	}
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultMatchThreshold
	}

	for i, rt := range roomTypes {
		for _, term := range matchTerms(rt) {
			if matchText(term) == desc {
				return Match{RoomType: rt, Index: i, Score: 1, Method: MatchExact, Term: term}, true
			}
		}
	}

	best := Match{Index: -1}
	consider := func(m Match) {
		if m.Score > best.Score {
			best = m
		}
	}

	descTokens := strings.Fields(desc)
	for i, rt := range roomTypes {
		for _, term := range matchTerms(rt) {
			t := matchText(term)
			if t == "" {
				continue
			}
			if score, ok := substringScore(desc, t); ok {
				consider(Match{RoomType: rt, Index: i, Score: score, Method: MatchSubstring, Term: term})
			}
			consider(Match{RoomType: rt, Index: i, Score: tokenScore(descTokens, strings.Fields(t)), Method: MatchFuzzy, Term: term})
		}
	}

	if best.Index < 0 || best.Score < threshold {
		return Match{}, false
	}
	return best, true
}

func matchTerms(rt model.RoomType) []string {
	terms := make([]string, 0, 2+len(rt.Aliases))
	terms = append(terms, rt.RoomInfo)
	if rt.DisplayName != "" {
		terms = append(terms, rt.DisplayName)
	}
	return append(terms, rt.Aliases...)
}

// matchText lowercases, turns punctuation into spaces and collapses runs of
// whitespace.
func matchText(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// substringScore grades containment in either direction by how much of the
// longer string the shorter one covers.
func substringScore(a, b string) (float64, bool) {
	shorter, longer := a, b
	if utf8.RuneCountInString(shorter) > utf8.RuneCountInString(longer) {
		shorter, longer = longer, shorter
	}
	if utf8.RuneCountInString(shorter) < 2 || !strings.Contains(longer, shorter) {
		return 0, false
	}
	coverage := float64(utf8.RuneCountInString(shorter)) / float64(utf8.RuneCountInString(longer))
	return 0.5 + 0.5*coverage, true
}

// tokenScore averages, over the term's tokens, the best edit-distance
// similarity found among the description's tokens.
func tokenScore(descTokens, termTokens []string) float64 {
	if len(descTokens) == 0 || len(termTokens) == 0 {
		return 0
	}
	var total float64
	for _, tt := range termTokens {
		bestSim := 0.0
		for _, dt := range descTokens {
			if sim := similarity(tt, dt); sim > bestSim {
				bestSim = sim
			}
		}
		total += bestSim
	}
	return total / float64(len(termTokens))
}

func similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

package availability

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultTimeZone      = "Asia/Seoul"
	DefaultDateCacheSize = 4096

	DateKeyLayout = "2006-01-02"
)

var (
	koreanDateRegex = regexp.MustCompile(`^(\d{4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일\s*(?:\([^)]*\))?\s*(?:(오전|오후)\s*)?(?:(\d{1,2})(?:\s*:\s*(\d{2})|\s*시(?:\s*(\d{1,2})\s*분)?))?$`)
	dottedDateRegex = regexp.MustCompile(`^(\d{4})\.\s*(\d{1,2})\.\s*(\d{1,2})\.?(?:\s+(\d{1,2}):(\d{2}))?$`)
	ymdSlashRegex   = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})(?:\s+(\d{1,2}):(\d{2}))?$`)
	mdySlashRegex   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})(?:\s+(\d{1,2}):(\d{2}))?$`)

	// Tried in order after the regex forms. Layouts carrying an explicit
	// zone keep it and are converted afterwards.
	dateLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"Jan 2, 2006 15:04",
		"Jan 2, 2006 3:04 PM",
		"Jan 2, 2006",
		"January 2, 2006 15:04",
		"January 2, 2006 3:04 PM",
		"January 2, 2006",
		"Mon, Jan 2, 2006",
		"Monday, January 2, 2006",
		"2 Jan 2006 15:04",
		"2 Jan 2006",
		"2 January 2006",
		"02-Jan-2006",
	}

	fallbackLayouts = []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC850,
		time.RFC822Z,
		time.RFC822,
		time.ANSIC,
		time.UnixDate,
	}
)

type parseResult struct {
	t  time.Time
	ok bool
}

// DateParser turns the date strings found in reservations, OTA feeds and
// query parameters into instants in a single property time zone.
// It is safe for concurrent use.
type DateParser struct {
	loc   *time.Location
	cache *lru.Cache[string, parseResult]
}

func NewDateParser(loc *time.Location, cacheSize int) (*DateParser, error) {
	if loc == nil {
		return nil, fmt.Errorf("location cannot be nil")
	}
	if cacheSize <= 0 {
		cacheSize = DefaultDateCacheSize
	}
	cache, err := lru.New[string, parseResult](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create date cache: %w", err)
	}
	return &DateParser{loc: loc, cache: cache}, nil
}

func (p *DateParser) Location() *time.Location {
	return p.loc
}

// Parse never panics; ok is false when no known format matches.
func (p *DateParser) Parse(raw string) (time.Time, bool) {
	if cached, found := p.cache.Get(raw); found {
		return cached.t, cached.ok
	}
	t, ok := p.parse(strings.TrimSpace(raw))
	p.cache.Add(raw, parseResult{t: t, ok: ok})
	return t, ok
}

func (p *DateParser) parse(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	if t, ok := p.parseKorean(s); ok {
		return t, true
	}
	if m := dottedDateRegex.FindStringSubmatch(s); m != nil {
		return p.build(m[1], m[2], m[3], m[4], m[5])
	}
	if m := ymdSlashRegex.FindStringSubmatch(s); m != nil {
		return p.build(m[1], m[2], m[3], m[4], m[5])
	}
	if m := mdySlashRegex.FindStringSubmatch(s); m != nil {
		return p.build(m[3], m[1], m[2], m[4], m[5])
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, p.loc); err == nil {
			return t.In(p.loc), true
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(p.loc), true
		}
	}
	return time.Time{}, false
}

func (p *DateParser) parseKorean(s string) (time.Time, bool) {
	m := koreanDateRegex.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	hour, minute := m[5], m[6]
	if minute == "" {
		minute = m[7]
	}
	if hour == "" {
		return p.build(m[1], m[2], m[3], "", "")
	}

	h, err := strconv.Atoi(hour)
	if err != nil {
		return time.Time{}, false
	}
	switch m[4] {
	case "오전":
		if h == 12 {
			h = 0
		}
	case "오후":
		if h < 12 {
			h += 12
		}
	}
	return p.build(m[1], m[2], m[3], strconv.Itoa(h), minute)
}

func (p *DateParser) build(year, month, day, hour, minute string) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	mo, err := strconv.Atoi(month)
	if err != nil || mo < 1 || mo > 12 {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, false
	}

	h, mi := 0, 0
	if hour != "" {
		if h, err = strconv.Atoi(hour); err != nil || h > 23 {
			return time.Time{}, false
		}
	}
	if minute != "" {
		if mi, err = strconv.Atoi(minute); err != nil || mi > 59 {
			return time.Time{}, false
		}
	}

	t := time.Date(y, time.Month(mo), d, h, mi, 0, 0, p.loc)
	// time.Date normalizes Feb 30 into March; reject instead.
	if t.Day() != d || int(t.Month()) != mo {
		return time.Time{}, false
	}
	return t, true
}

var defaultParser = newDefaultParser()

func newDefaultParser() *DateParser {
	loc, err := time.LoadLocation(DefaultTimeZone)
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
	}
	p, _ := NewDateParser(loc, DefaultDateCacheSize)
	return p
}

// ParseDate parses raw with the package default parser (Asia/Seoul).
func ParseDate(raw string) (time.Time, bool) {
	return defaultParser.Parse(raw)
}

// LoadLocation resolves an IANA zone name, falling back to the default
// property zone when name is empty or unknown.
func LoadLocation(name string) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return defaultParser.Location()
}

// DayOnly truncates t to local midnight in loc.
func DayOnly(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// EachDay lists every calendar day from the day of from through the day of
// to, both inclusive. It returns nil when to is before from.
func EachDay(from, to time.Time, loc *time.Location) []time.Time {
	start := DayOnly(from, loc)
	end := DayOnly(to, loc)
	if end.Before(start) {
		return nil
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

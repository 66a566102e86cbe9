package locale

import (
	"strings"
)

const (
	DefaultRegion   = "KR"
	DefaultTimezone = "Asia/Seoul"
)

type Country struct {
	Code            string // ISO 3166-1 alpha-2
	Name            string
	CallingCode     int
	DefaultTimezone string // IANA
}

var (
	Countries = map[string]Country{
		"KR": {
			Code:            "KR",
			Name:            "South Korea",
			CallingCode:     82,
			DefaultTimezone: "Asia/Seoul",
		},
		"JP": {
			Code:            "JP",
			Name:            "Japan",
			CallingCode:     81,
			DefaultTimezone: "Asia/Tokyo",
		},
		"US": {
			Code:            "US",
			Name:            "United States",
			CallingCode:     1,
			DefaultTimezone: "America/New_York",
		},
	}

	TimeZoneTags = map[string][]string{
		"KR": {"Asia/Seoul", "ROK"},
		"JP": {"Asia/Tokyo", "Japan"},
		"US": {"America/New_York", "America/Los_Angeles", "America/Chicago", "US/Eastern", "US/Pacific"},
	}
)

// DetectRegion maps a hotel time zone to the region used to read local-format
// phone numbers. Unknown zones read as Korean.
func DetectRegion(tz string) string {
	for region, zones := range TimeZoneTags {
		for _, z := range zones {
			if strings.EqualFold(tz, z) {
				return region
			}
		}
	}
	return DefaultRegion
}

// SupportedRegions lists the regions phone numbers are tried against, default first.
func SupportedRegions() []string {
	return []string{"KR", "JP", "US"}
}

package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"

	"frontdesk/pkg/locale"
)

func NormalizePhone(phone string) string {
	return NormalizePhoneIn(phone, locale.DefaultRegion)
}

// NormalizePhoneIn reads a number without a country code as local to region,
// falling back to the other supported regions.
func NormalizePhoneIn(phone, region string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	regions := append([]string{region}, locale.SupportedRegions()...)
	for _, r := range regions {
		parsed, err := phonenumbers.Parse(phone, r)
		if err != nil || !phonenumbers.IsValidNumber(parsed) {
			continue
		}
		return phonenumbers.Format(parsed, phonenumbers.E164)
	}
	return ""
}

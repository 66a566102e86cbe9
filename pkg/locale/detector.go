package locale

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// InferCountryFromPhone only trusts numbers written with a country code.
func InferCountryFromPhone(phone string) *Country {
	normalized := strings.TrimSpace(phone)
	if normalized == "" {
		return nil
	}
	if !strings.HasPrefix(normalized, "+") {
		normalized = "+" + normalized
	}

	num, err := phonenumbers.Parse(normalized, DefaultRegion)
	if err != nil {
		return nil
	}
	country, ok := Countries[phonenumbers.GetRegionCodeForNumber(num)]
	if !ok {
		return nil
	}
	return &country
}

func InferTimezoneFromPhone(phone string) string {
	if country := InferCountryFromPhone(phone); country != nil {
		return country.DefaultTimezone
	}
	return DefaultTimezone
}

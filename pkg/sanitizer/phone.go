package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone formats phone as E.164, reading national numbers in region.
// Numbers phonenumbers cannot parse come back with whitespace removed so that
// callers still get a stable key.
func NormalizePhone(phone, region string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	parsedNumber, err := phonenumbers.Parse(phone, strings.ToUpper(region))
	if err != nil {
		return RemoveSpaces(phone)
	}
	return phonenumbers.Format(parsedNumber, phonenumbers.E164)
}

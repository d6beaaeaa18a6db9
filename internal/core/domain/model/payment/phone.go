package payment

import (
	"fmt"
	"regexp"
	"strings"

	"cleaning/internal/pkg/errs"
)

var msisdnPattern = regexp.MustCompile(`^2547\d{8}$`)

// NormalizePhone converts the common local spellings (07XXXXXXXX, +2547XXXXXXXX, 7XXXXXXXX)
// to the 2547XXXXXXXX form the gateway requires.
func NormalizePhone(raw string) (string, error) {
	phone := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))
	phone = strings.TrimPrefix(phone, "+")

	switch {
	case strings.HasPrefix(phone, "0") && len(phone) == 10:
		phone = "254" + phone[1:]
	case strings.HasPrefix(phone, "7") && len(phone) == 9:
		phone = "254" + phone
	}

	if !msisdnPattern.MatchString(phone) {
		return "", errs.NewValueIsInvalidErrorWithCause("phoneNumber", fmt.Errorf("%q is not in 2547XXXXXXXX format", raw))
	}
	return phone, nil
}

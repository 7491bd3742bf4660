package common

import (
	"errors"
	"strings"
)

// ErrEmptyMSISDN is returned when the input contains no digits at all.
var ErrEmptyMSISDN = errors.New("msisdn cannot be empty")

// NormalizeMSISDN canonicalizes a Kenyan mobile number into the 254-prefixed
// form the gateway uses. "+254712345678", "0712345678" and "712345678" all
// normalize to "254712345678". Inputs without a recognized prefix are assumed
// to be subscriber-number-only.
func NormalizeMSISDN(raw string) (string, error) {
	number := strings.TrimSpace(raw)
	if number == "" {
		return "", ErrEmptyMSISDN
	}

	switch {
	case strings.HasPrefix(number, "+254"):
		number = number[4:]
	case strings.HasPrefix(number, "254"):
		number = number[3:]
	case strings.HasPrefix(number, "0"):
		number = number[1:]
	}

	if number == "" {
		return "", ErrEmptyMSISDN
	}

	return "254" + number, nil
}

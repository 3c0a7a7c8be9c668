package constraint

import (
	"encoding/base64"
	"math"
	"net/mail"
	"net/netip"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// checkFormat validates the string formats that matter for request binding.
// Unknown formats always pass. The returned message completes a sentence
// whose subject is the offending value.
func checkFormat(s, format string) (string, bool) {
	switch format {
	case "email":
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Address != s {
			return "is not a valid email address", false
		}
	case "uri":
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" {
			return "is not a valid URI", false
		}
	case "uri-reference":
		if _, err := url.Parse(s); err != nil {
			return "is not a valid URI reference", false
		}
	case "date":
		if _, err := time.Parse(time.DateOnly, s); err != nil {
			return "is not a valid date (expected YYYY-MM-DD)", false
		}
	case "date-time":
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return "is not a valid date-time (expected RFC 3339)", false
		}
	case "uuid":
		if _, err := uuid.Parse(s); err != nil || len(s) != 36 {
			return "is not a valid UUID", false
		}
	case "ipv4":
		addr, err := netip.ParseAddr(s)
		if err != nil || !addr.Is4() {
			return "is not a valid IPv4 address", false
		}
	case "ipv6":
		addr, err := netip.ParseAddr(s)
		if err != nil || !addr.Is6() {
			return "is not a valid IPv6 address", false
		}
	case "byte":
		if _, err := base64.StdEncoding.DecodeString(s); err != nil {
			return "is not valid base64", false
		}
	}
	return "", true
}

// checkIntegerFormat enforces the int32 and int64 ranges.
func checkIntegerFormat(n float64, format string) (string, bool) {
	switch format {
	case "int32":
		if n < math.MinInt32 || n > math.MaxInt32 {
			return "is out of range for int32", false
		}
	case "int64":
		if n < math.MinInt64 || n > math.MaxInt64 {
			return "is out of range for int64", false
		}
	}
	return "", true
}

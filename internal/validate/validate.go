package validate

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	// Cameroon (+237) and Ghana (+233) mobile numbers, with or without the
	// country prefix.
	rePhone = regexp.MustCompile(`^(\+?237|\+?233)?0?[235679][0-9]{7,8}$`)
	reRole  = regexp.MustCompile(`^(OWNER|MANAGER|STAFF)$`)
	reStock = regexp.MustCompile(`^(set|increment|decrement)$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Phone validates a Cameroon/Ghana mobile number, stripping spaces first.
func Phone(s string) (string, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return "", false
	}
	return s, rePhone.MatchString(s)
}

// ID validates a simple resource identifier (product/order/supplier ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Qty parses a quantity field, clamping into [1, 99].
func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > 99 {
		return 99
	}
	return n
}

// Role validates a supplier back-office role enum.
func Role(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reRole.MatchString(s)
}

// StockOp validates the stock adjustment operation enum.
func StockOp(s string) (string, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	return s, reStock.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 80 {
		return "", false
	}
	return s, true
}

// Password enforces the same composition rules the backend applies, so the
// form can reject early.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 64 {
		return false
	}
	var hasLower, hasUpper, hasDigit bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		}
	}
	return hasLower && hasUpper && hasDigit
}

// Money reports whether v is usable as an amount in XAF/GHS: finite and
// non-negative. BodyParser lets NaN and negatives through.
func Money(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

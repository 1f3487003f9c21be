// Package format renders amounts and dates for display. Nothing here feeds
// back into pricing.
package format

import (
	"strconv"
	"strings"
	"time"
)

// WIB is Western Indonesia Time (UTC+7).
var WIB = time.FixedZone("WIB", 7*60*60)

// Currency formats a whole-unit amount. IDR renders without fractional
// digits, e.g. "Rp 1,265,400".
func Currency(amount int64, code string) string {
	switch strings.ToUpper(code) {
	case "IDR", "":
		return Rupiah(amount)
	case "USD":
		return sign(amount) + "$" + group(magnitude(amount)) + ".00"
	case "EUR":
		return sign(amount) + "€" + group(magnitude(amount)) + ".00"
	case "GBP":
		return sign(amount) + "£" + group(magnitude(amount)) + ".00"
	default:
		return sign(amount) + group(magnitude(amount)) + ".00 " + strings.ToUpper(code)
	}
}

// Rupiah renders "Rp 1,265,400".
func Rupiah(amount int64) string {
	return sign(amount) + "Rp " + group(magnitude(amount))
}

func sign(amount int64) string {
	if amount < 0 {
		return "-"
	}
	return ""
}

// magnitude is |amount|. Negating math.MinInt64 wraps to itself, which as a
// uint64 is still the right value.
func magnitude(amount int64) uint64 {
	if amount < 0 {
		return uint64(-amount)
	}
	return uint64(amount)
}

// group inserts comma thousands separators.
func group(amount uint64) string {
	s := strconv.FormatUint(amount, 10)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + len(s)/3)

	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// Date renders DD-MM-YYYY.
func Date(t time.Time) string {
	return t.Format("02-01-2006")
}

// DateTime renders DD-MM-YYYY HH:MM WIB, converting to UTC+7.
func DateTime(t time.Time) string {
	return t.In(WIB).Format("02-01-2006 15:04") + " WIB"
}

// Phone formats 10-digit and US 11-digit numbers; anything else is
// returned unchanged.
func Phone(phone string) string {
	digits := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}

	d := string(digits)
	switch {
	case len(d) == 10:
		return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
	case len(d) == 11 && d[0] == '1':
		return "+1 (" + d[1:4] + ") " + d[4:7] + "-" + d[7:]
	default:
		return phone
	}
}

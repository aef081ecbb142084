package models

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is an exact fixed-point amount with two fractional digits, held as a
// count of cents. Keeping balances in integer minor units makes debit/credit
// arithmetic exact; the JSON and SQL representations stay decimal ("350.00",
// NUMERIC(19,2)) so the wire and storage formats match the rest of the system.
type Money int64

// ParseMoney parses a decimal string with at most two fractional digits.
// Only an optional leading minus, digits and one dot are accepted; signs
// inside the number ("1.-5", "--5") and a trailing dot ("1.") are rejected.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}
	whole, frac := s, ""
	dotted := false
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
		dotted = true
	}
	if whole == "" || !isDigits(whole) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if dotted && (frac == "" || len(frac) > 2 || !isDigits(frac)) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	cents := int64(0)
	if frac != "" {
		// Pad "5" to "50" so 1.5 parses as 150 cents.
		for len(frac) < 2 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
	}
	v := units*100 + cents
	if negative {
		v = -v
	}
	return Money(v), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String renders the amount as a decimal with exactly two fractional digits.
func (m Money) String() string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON emits a bare decimal number, e.g. 350.00.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Value implements driver.Valuer so Money binds to NUMERIC(19,2) columns.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner for NUMERIC values returned by the driver.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		parsed, err := ParseMoney(string(v))
		if err != nil {
			return err
		}
		*m = parsed
	case string:
		parsed, err := ParseMoney(v)
		if err != nil {
			return err
		}
		*m = parsed
	case int64:
		*m = Money(v * 100)
	case float64:
		*m = Money(math.Round(v * 100))
	case nil:
		*m = 0
	default:
		return fmt.Errorf("cannot scan %T into Money", src)
	}
	return nil
}

// Package money provides a fixed-point amount type stored as integer cents.
package money

import (
	"bytes"
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value in cents (two fraction digits).
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

// FromDecimal rounds d to two fraction digits and returns the amount in cents.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount(d.Round(2).Shift(2).IntPart())
}

// Parse parses a decimal string such as "1500.5" or "-20".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

// Cents returns the amount as integer cents.
func (a Amount) Cents() int64 { return int64(a) }

// Decimal returns the amount as a decimal with two fraction digits.
func (a Amount) Decimal() decimal.Decimal { return decimal.New(int64(a), -2) }

// String formats the amount with exactly two fraction digits.
func (a Amount) String() string { return a.Decimal().StringFixed(2) }

// Float64 returns the amount as a float, for spreadsheet cells only.
func (a Amount) Float64() float64 { return a.Decimal().InexactFloat64() }

// MarshalJSON encodes the amount as a quoted decimal string ("100.00").
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(bytes.Trim(data, `"`))
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer; amounts persist as bigint cents.
func (a Amount) Value() (driver.Value, error) {
	return int64(a), nil
}

// Scan implements sql.Scanner. SUM over bigint comes back as numeric text on
// PostgreSQL and as an integer on SQLite; both hold cents.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = 0
	case int64:
		*a = Amount(v)
	case float64:
		*a = Amount(decimal.NewFromFloat(v).Round(0).IntPart())
	case []byte:
		return a.scanText(string(v))
	case string:
		return a.scanText(v)
	default:
		return fmt.Errorf("money: cannot scan %T", src)
	}
	return nil
}

func (a *Amount) scanText(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("money: cannot scan %q: %w", s, err)
	}
	*a = Amount(d.Round(0).IntPart())
	return nil
}

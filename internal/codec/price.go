// Package codec implements the US Treasury whole-32nds-256ths fractional
// price notation used on every wire boundary of this system:
// "100-05+" = 100 + 5/32 + 4/256. It uses shopspring/decimal rather than
// float64 arithmetic for the 32nds/256ths split so an encode/decode
// round-trip is exact rather than dependent on binary floating-point
// rounding.
package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	d32  = decimal.NewFromInt(32)
	d256 = decimal.NewFromInt(256)
)

// Encode renders price in whole-32nds-256ths notation: integer part, a
// zero-padded two-digit 32nds count, then a one-digit 256ths remainder.
// Encode never emits '+' — that spelling is decode-only.
func Encode(price float64) string {
	p := decimal.NewFromFloat(price)
	whole := p.Truncate(0)
	frac := p.Sub(whole)

	thirtySeconds := frac.Mul(d32).Truncate(0)
	remainder := frac.Sub(thirtySeconds.Div(d32))
	twoFiftySixths := remainder.Mul(d256).Round(0)

	ts := thirtySeconds.IntPart()
	tf := twoFiftySixths.IntPart()
	if tf >= 8 {
		tf -= 8
		ts++
	}
	if ts >= 32 {
		ts -= 32
		whole = whole.Add(decimal.NewFromInt(1))
	}
	return fmt.Sprintf("%s-%02d%d", whole.String(), ts, tf)
}

// Decode parses whole-32nds-256ths notation back to a decimal price. A '+'
// in the 256ths slot is an alternate spelling for 4 (half of a 32nd).
func Decode(s string) (float64, error) {
	idx := strings.LastIndexByte(s, '-')
	if idx < 0 {
		return 0, fmt.Errorf("codec: malformed price %q: missing '-'", s)
	}
	wholeStr, fracStr := s[:idx], s[idx+1:]
	if len(fracStr) != 3 {
		return 0, fmt.Errorf("codec: malformed price %q: fractional part must be 3 chars, got %q", s, fracStr)
	}

	whole, err := decimal.NewFromString(wholeStr)
	if err != nil {
		return 0, fmt.Errorf("codec: malformed whole part %q: %w", wholeStr, err)
	}
	thirtySeconds, err := strconv.Atoi(fracStr[:2])
	if err != nil {
		return 0, fmt.Errorf("codec: malformed 32nds digits %q: %w", fracStr[:2], err)
	}

	var twoFiftySixths int
	if fracStr[2] == '+' {
		twoFiftySixths = 4
	} else {
		twoFiftySixths, err = strconv.Atoi(fracStr[2:3])
		if err != nil {
			return 0, fmt.Errorf("codec: malformed 256ths digit %q: %w", fracStr[2:3], err)
		}
	}

	value := whole.
		Add(decimal.NewFromInt(int64(thirtySeconds)).Div(d32)).
		Add(decimal.NewFromInt(int64(twoFiftySixths)).Div(d256))
	f, _ := value.Float64()
	return f, nil
}

// DecodeSpread256 parses a plain integer count of 256ths (the spread field
// of prices.txt, which is not whole-32nds-256ths notation, just a raw
// 256ths count) into a decimal fraction.
func DecodeSpread256(s string) (float64, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("codec: malformed spread %q: %w", s, err)
	}
	f, _ := decimal.NewFromInt(int64(n)).Div(d256).Float64()
	return f, nil
}

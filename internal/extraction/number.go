package extraction

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// noise matches thousands separators, whitespace, currency symbols/codes and unit labels.
var noise = regexp.MustCompile(`(?i)US\$|USD|THB|BAHT|MMBTU|MMSCF|[$฿,\s\x{00A0}\x{2009}\x{202F}]`)

// ParseNumber interprets locale-formatted numeric text as an exact decimal:
// "52,417,002.59" and "$52,417,002.59" both yield 52417002.59. Accounting style
// negatives such as "(1,200.00)" are accepted.
func ParseNumber(s string) (decimal.Decimal, error) {
	clean := noise.ReplaceAllString(strings.TrimSpace(s), "")
	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = clean[1 : len(clean)-1]
	}
	if clean == "" {
		return decimal.Decimal{}, fmt.Errorf("no digits in %q", s)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse number %q: %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

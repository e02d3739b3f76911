package detour

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	inputPattern = regexp.MustCompile(`^-?[0-9]*[.,]?[0-9]*$`)
	priceNumber  = regexp.MustCompile(`[0-9]+(?:[.,][0-9]+)?`)
)

// AcceptsInput reports whether text may be typed into a numeric field.
// Intermediate text such as "", "-" or "1," is accepted.
func AcceptsInput(text string) bool {
	return inputPattern.MatchString(text)
}

// ParseInput converts field text to a number. Both comma and dot work as
// decimal separator. Text that cannot be parsed yet counts as 0.
func ParseInput(text string) float64 {
	v, err := strconv.ParseFloat(normalizeDecimal(text), 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatDisplay renders v the way fields show it once edited: shortest
// representation with a comma as decimal separator.
func FormatDisplay(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1)
}

// ParsePriceText extracts the first number of free text that may carry
// currency or unit noise, such as "Precio medio: 1,599 €/l.".
func ParsePriceText(text string) (float64, error) {
	match := priceNumber.FindString(text)
	if match == "" {
		return 0, fmt.Errorf("%w: price %q", ErrParse, text)
	}
	v, err := strconv.ParseFloat(normalizeDecimal(match), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: price %q", ErrParse, text)
	}
	return v, nil
}

func normalizeDecimal(s string) string {
	return strings.Replace(s, ",", ".", 1)
}

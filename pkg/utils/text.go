package utils

import "strings"

var digitReplacer = strings.NewReplacer(
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4", "۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4", "٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
)

// NormalizeDigits converts Persian and Arabic numerals to ASCII digits and
// drops thousands separators, so spreadsheet numbers parse with strconv.
func NormalizeDigits(input string) string {
	input = digitReplacer.Replace(strings.TrimSpace(input))
	return strings.NewReplacer(",", "", "٬", "", "_", "").Replace(input)
}

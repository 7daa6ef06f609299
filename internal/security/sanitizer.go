package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

const maxTextLength = 2000

// SanitizeString removes potentially dangerous characters
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	if runes := []rune(input); len(runes) > maxTextLength {
		input = string(runes[:maxTextLength])
	}

	return input
}

// SanitizeHTML removes all HTML tags
func SanitizeHTML(input string) string {
	return htmlPolicy.Sanitize(input)
}

// SanitizeText is applied to free text shown in the feed: kudo
// descriptions and reward names/descriptions. Tags are stripped but the
// result is plain text, so entities bluemonday emits are decoded again.
func SanitizeText(input string) string {
	return SanitizeString(html.UnescapeString(SanitizeHTML(SanitizeString(input))))
}

// SanitizeOptional applies SanitizeText to a nullable field.
func SanitizeOptional(input *string) *string {
	if input == nil {
		return nil
	}
	out := SanitizeText(*input)
	return &out
}

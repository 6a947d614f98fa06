package guidance

import "strings"

// formatExamples is static per-country reference data shown to users after a
// validation failure.
var formatExamples = map[string][]string{
	"IN": {"+91 98765 43210", "098765 43210", "9876543210"},
	"US": {"+1 555-123-4567", "(555) 123-4567", "5551234567"},
	"GB": {"+44 7911 123456", "07911 123456"},
	"AU": {"+61 412 345 678", "0412 345 678"},
	"DE": {"+49 151 23456789", "0151 23456789"},
	"FR": {"+33 6 12 34 56 78", "06 12 34 56 78"},
	"JP": {"+81 90-1234-5678", "090-1234-5678"},
	"BR": {"+55 11 91234-5678", "(11) 91234-5678"},
	"NG": {"+234 802 123 4567", "0802 123 4567"},
	"CN": {"+86 138 0013 8000", "138 0013 8000"},
}

var validationTips = map[string][]string{
	"IN": {
		"mobile numbers have 10 digits and start with 6, 7, 8 or 9",
		"drop the leading 0 when using the +91 prefix",
		"landline numbers need an STD code",
	},
	"US": {
		"numbers have a 3-digit area code plus 7 digits",
		"area codes never start with 0 or 1",
		"the +1 prefix is optional in domestic format",
	},
	"GB": {
		"mobile numbers start with 07 in national format",
		"drop the leading 0 when using the +44 prefix",
	},
}

// FormatExamples returns example formats for a region, falling back to the
// default locale's examples for unknown regions. Never errors.
func FormatExamples(region string) []string {
	if ex, ok := formatExamples[strings.ToUpper(region)]; ok {
		return append([]string(nil), ex...)
	}
	return append([]string(nil), formatExamples[FallbackRegion]...)
}

// firstExample returns the canonical display format for a region, used when
// a suggestion needs a single concrete number to show.
func firstExample(region string) string {
	return FormatExamples(region)[0]
}

// ValidationTips returns human-readable format tips for a region, with the
// same fallback behavior as FormatExamples.
func ValidationTips(region string) []string {
	if tips, ok := validationTips[strings.ToUpper(region)]; ok {
		return append([]string(nil), tips...)
	}
	return append([]string(nil), validationTips[FallbackRegion]...)
}

// Package guidance provides country-aware phone number format validation and
// suggestion generation. All functions are pure: no I/O, no shared state.
// The aggregator consults this package to pre-filter obviously invalid input
// before dispatching expensive source queries.
package guidance

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// FallbackRegion is used when a region has no specific reference data.
const FallbackRegion = "US"

// FormatCheck is the outcome of structural validation for one identifier.
type FormatCheck struct {
	IsValidFormat bool     `json:"is_valid_format"`
	Issues        []string `json:"issues,omitempty"`
	Suggestions   []string `json:"suggestions,omitempty"`
}

// callingCodes maps international dialing prefixes to ISO regions, longest
// prefix first so +91 matches before +9x fallthroughs.
var callingCodes = []struct {
	prefix string
	region string
}{
	{"+234", "NG"},
	{"+91", "IN"},
	{"+44", "GB"},
	{"+61", "AU"},
	{"+49", "DE"},
	{"+33", "FR"},
	{"+81", "JP"},
	{"+55", "BR"},
	{"+86", "CN"},
	{"+1", "US"}, // NANP; US is the conventional default for +1
}

// SupportedRegions returns the regions with country-specific validation
// rules, in stable order.
func SupportedRegions() []string {
	return []string{"IN", "US", "GB", "AU", "DE", "FR", "JP", "BR", "NG", "CN"}
}

// RegionSupported reports whether region has country-specific rules.
func RegionSupported(region string) bool {
	region = strings.ToUpper(region)
	for _, r := range SupportedRegions() {
		if r == region {
			return true
		}
	}
	return false
}

// CountryName returns the English display name for an ISO region code, or
// the code itself when unknown.
func CountryName(region string) string {
	tag, err := language.ParseRegion(strings.ToUpper(region))
	if err != nil {
		return region
	}
	if name := display.English.Regions().Name(tag); name != "" {
		return name
	}
	return region
}

// digitsOf strips everything but digits, preserving a single leading plus.
func digitsOf(s string) (digits string, hasPlus bool) {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		if i == 0 && r == '+' {
			hasPlus = true
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String(), hasPlus
}

// SuggestCountry pattern-matches the identifier against known international
// prefixes and local length/leading-digit heuristics. Returns "" when the
// country is ambiguous; callers must not treat that as an error.
func SuggestCountry(identifier string) string {
	digits, hasPlus := digitsOf(identifier)
	if digits == "" {
		return ""
	}

	if hasPlus || strings.HasPrefix(strings.TrimSpace(identifier), "00") {
		normalized := "+" + strings.TrimPrefix(digits, "00")
		for _, cc := range callingCodes {
			if strings.HasPrefix(normalized, cc.prefix) {
				return cc.region
			}
		}
		return ""
	}

	switch {
	case len(digits) == 10 && digits[0] >= '6' && digits[0] <= '9':
		// Indian mobiles are 10 digits starting 6-9.
		return "IN"
	case len(digits) == 10 && digits[0] >= '2' && digits[0] <= '5':
		// NANP numbers are 10 digits with area codes starting 2-9; the 6-9
		// range is claimed by the Indian heuristic above, so only the
		// unambiguous half maps here.
		return "US"
	case len(digits) == 11 && strings.HasPrefix(digits, "07"):
		// UK mobiles in national format.
		return "GB"
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		return "GB"
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return "IN"
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "US"
	default:
		return ""
	}
}

// ValidateFormat runs country-specific structural checks on the identifier.
// Every reported issue comes with at least one actionable suggestion.
func ValidateFormat(identifier, region string) FormatCheck {
	region = strings.ToUpper(region)
	digits, hasPlus := digitsOf(identifier)
	check := FormatCheck{IsValidFormat: true}

	addIssue := func(issue, suggestion string) {
		check.IsValidFormat = false
		check.Issues = append(check.Issues, issue)
		check.Suggestions = append(check.Suggestions, suggestion)
	}

	if digits == "" {
		addIssue("no digits found in input", "enter the number using digits, e.g. "+firstExample(region))
		return check
	}

	// International form: verify the prefix agrees with the stated region.
	if hasPlus {
		expected := callingCodeFor(region)
		if expected != "" && !strings.HasPrefix("+"+digits, expected) {
			addIssue(
				"international prefix does not match region "+region,
				"use "+expected+" for "+CountryName(region)+", or change the region",
			)
		}
		digits = strings.TrimPrefix("+"+digits, expected)
		digits = strings.TrimPrefix(digits, "+")
	}

	switch region {
	case "IN":
		validateIndia(digits, hasPlus, addIssue)
	case "US", "CA":
		validateNANP(digits, hasPlus, addIssue)
	case "GB":
		validateUK(digits, hasPlus, addIssue)
	default:
		// Generic structural check for the remaining supported regions.
		if len(digits) < 7 {
			addIssue("number too short", "a full subscriber number has at least 7 digits, e.g. "+firstExample(region))
		}
		if len(digits) > 13 {
			addIssue("number too long", "check for extra digits; expected at most 13, e.g. "+firstExample(region))
		}
	}

	return check
}

func validateIndia(digits string, international bool, addIssue func(issue, suggestion string)) {
	// Redundant country code without the plus sign.
	if !international && len(digits) == 12 && strings.HasPrefix(digits, "91") {
		addIssue(
			"number appears to include the country code 91 without a leading +",
			"write it as +91 followed by the 10-digit number, or drop the leading 91",
		)
		digits = digits[2:]
	}
	// Trunk prefix in national dialing.
	if len(digits) == 11 && strings.HasPrefix(digits, "0") {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		addIssue(
			"Indian numbers have 10 digits",
			"enter the 10-digit subscriber number, e.g. 98765 43210",
		)
		return
	}
	if digits[0] < '6' || digits[0] > '9' {
		addIssue(
			"Indian mobile numbers start with 6, 7, 8 or 9",
			"check the first digit; landlines need an STD code prefix",
		)
	}
}

func validateNANP(digits string, international bool, addIssue func(issue, suggestion string)) {
	if !international && len(digits) == 11 && strings.HasPrefix(digits, "1") {
		addIssue(
			"number appears to include the country code 1 without a leading +",
			"write it as +1 followed by the 10-digit number, or drop the leading 1",
		)
		digits = digits[1:]
	}
	if len(digits) != 10 {
		addIssue(
			"North American numbers have 10 digits (area code plus 7)",
			"enter area code and subscriber number, e.g. (555) 123-4567",
		)
		return
	}
	if digits[0] == '0' || digits[0] == '1' {
		addIssue(
			"area codes cannot start with 0 or 1",
			"check the area code; the first digit must be 2-9",
		)
	}
}

func validateUK(digits string, international bool, addIssue func(issue, suggestion string)) {
	if international {
		// National significant number after +44 has 10 digits.
		if len(digits) != 10 {
			addIssue(
				"UK numbers have 10 digits after +44",
				"enter +44 followed by the number without the leading 0, e.g. +44 7911 123456",
			)
		}
		return
	}
	if len(digits) == 11 && strings.HasPrefix(digits, "0") {
		return
	}
	addIssue(
		"UK numbers in national format have 11 digits starting with 0",
		"start with 0, e.g. 07911 123456, or use the +44 prefix",
	)
}

func callingCodeFor(region string) string {
	for _, cc := range callingCodes {
		if cc.region == region {
			return cc.prefix
		}
	}
	return ""
}

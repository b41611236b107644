// Package extractor turns rendered Booking.com HTML into structured hotel
// records. Extraction is layered per field: structured embedded data first,
// stable DOM markers second, free-text patterns third, and (for facilities
// only) a weak substring dictionary last. A later layer never overwrites a
// value an earlier layer already produced.
package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// rule is one pure extraction attempt against a selection. It returns nil
// when it cannot produce a value, so ranked rule lists stay independently
// testable and their ordering explicit.
type rule func(s *goquery.Selection) *string

// firstMatch evaluates rules in order and returns the first non-nil value.
func firstMatch(s *goquery.Selection, rules ...rule) *string {
	for _, r := range rules {
		if v := r(s); v != nil {
			return v
		}
	}
	return nil
}

// textRule returns the trimmed text of the first element matching the selector.
func textRule(selector string) rule {
	return func(s *goquery.Selection) *string {
		el := s.Find(selector).First()
		if el.Length() == 0 {
			return nil
		}
		text := strings.TrimSpace(el.Text())
		if text == "" {
			return nil
		}
		return &text
	}
}

// attrRule returns the given attribute of the first element matching the selector.
func attrRule(selector, attr string) rule {
	return func(s *goquery.Selection) *string {
		el := s.Find(selector).First()
		if el.Length() == 0 {
			return nil
		}
		val, ok := el.Attr(attr)
		val = strings.TrimSpace(val)
		if !ok || val == "" {
			return nil
		}
		return &val
	}
}

// regexRule matches the pattern against the selection's full text and
// returns the first capture group.
func regexRule(re *regexp.Regexp) rule {
	return func(s *goquery.Selection) *string {
		m := re.FindStringSubmatch(s.Text())
		if len(m) < 2 {
			return nil
		}
		v := strings.TrimSpace(m[1])
		if v == "" {
			return nil
		}
		return &v
	}
}

var thousandsRe = regexp.MustCompile(`[,\s\x{00a0}]`)

// parseLenientFloat parses a numeric string tolerating thousands separators
// and surrounding noise. Returns nil, not zero, when nothing parses.
func parseLenientFloat(raw string) *float64 {
	cleaned := thousandsRe.ReplaceAllString(strings.TrimSpace(raw), "")
	if cleaned == "" {
		return nil
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &f
}

// parseLenientInt is parseLenientFloat for integers.
func parseLenientInt(raw string) *int {
	cleaned := thousandsRe.ReplaceAllString(strings.TrimSpace(raw), "")
	if cleaned == "" {
		return nil
	}
	i, err := strconv.Atoi(cleaned)
	if err != nil {
		return nil
	}
	return &i
}

// stripThousands removes thousands separators from a numeric string, leaving
// a plain numeric string for price fields.
func stripThousands(raw string) string {
	return thousandsRe.ReplaceAllString(strings.TrimSpace(raw), "")
}

// currencySymbols maps price-adjacent tokens to ISO currency codes.
var currencySymbols = map[string]string{
	"US$": "USD", "$": "USD", "USD": "USD",
	"€": "EUR", "EUR": "EUR",
	"£": "GBP", "GBP": "GBP",
	"¥": "JPY", "JPY": "JPY",
	"₹": "INR", "INR": "INR",
	"CA$": "CAD", "CAD": "CAD",
	"A$": "AUD", "AUD": "AUD",
	"CHF": "CHF",
	"AED": "AED",
}

// Price layouts vary across sessions and locales: the currency token can
// lead or trail the amount, with or without whitespace.
var (
	priceLeadingRe  = regexp.MustCompile(`(US\$|CA\$|A\$|[$€£¥₹]|USD|EUR|GBP|JPY|INR|CAD|AUD|CHF|AED)\s*([\d][\d,.\s\x{00a0}]*)`)
	priceTrailingRe = regexp.MustCompile(`([\d][\d,.\s\x{00a0}]*)\s*(US\$|CA\$|A\$|[$€£¥₹]|USD|EUR|GBP|JPY|INR|CAD|AUD|CHF|AED)`)
)

// parsePrice extracts an amount and currency code from a price string,
// trying the leading-token layout first, then the trailing-token layout.
// Both returns are nil when no layout matches.
func parsePrice(raw string) (amount *string, currency *string) {
	if m := priceLeadingRe.FindStringSubmatch(raw); len(m) == 3 {
		a := strings.TrimRight(stripThousands(m[2]), ".")
		if a != "" {
			code := currencySymbols[m[1]]
			return &a, &code
		}
	}
	if m := priceTrailingRe.FindStringSubmatch(raw); len(m) == 3 {
		a := strings.TrimRight(stripThousands(m[1]), ".")
		if a != "" {
			code := currencySymbols[m[2]]
			return &a, &code
		}
	}
	return nil, nil
}

// wellKnownFacilities is the fixed dictionary used only when a page offers
// no structured facility list at all. Substring presence trades precision
// for coverage, which is acceptable as the extractor's last resort.
var wellKnownFacilities = []string{
	"Free WiFi", "WiFi", "Parking", "Free parking", "Swimming pool",
	"Outdoor pool", "Indoor pool", "Fitness centre", "Fitness center",
	"Spa", "Sauna", "Restaurant", "Bar", "Room service", "24-hour front desk",
	"Airport shuttle", "Non-smoking rooms", "Family rooms", "Pet friendly",
	"Air conditioning", "Breakfast", "Laundry", "Business centre",
	"Meeting rooms", "Terrace", "Garden", "Beachfront", "Elevator",
	"Wheelchair accessible", "Electric vehicle charging station",
}

// dedupeCapped returns the list with duplicates removed (first occurrence
// wins, case-insensitive) and truncated to max entries.
func dedupeCapped(items []string, max int) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
		if len(out) == max {
			break
		}
	}
	return out
}

// collapseWhitespace rewrites runs of whitespace as single spaces.
var wsRe = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}

package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/umerzulfiqar021/Puppeteer/bookingurl"
	"github.com/umerzulfiqar021/Puppeteer/models"
)

// cardMatchers locate the repeating structural unit for one hotel, newest
// markup first. The first matcher that yields any cards wins. Precompiled
// because they run on every search extraction.
var cardMatchers = []goquery.Matcher{
	cascadia.MustCompile(`[data-testid="property-card"]`),
	cascadia.MustCompile(`[data-testid="property-card-container"]`),
	cascadia.MustCompile(".sr_property_block"),
}

var (
	ratingValueRe  = regexp.MustCompile(`(\d+(?:[.,]\d+)?)`)
	reviewsCountRe = regexp.MustCompile(`([\d,.\s\x{00a0}]+)\s*reviews?`)
	freeRatingRe   = regexp.MustCompile(`\b(\d(?:\.\d)?|10)\s*(?:/\s*10|Scored)`)
)

// ExtractListings parses a rendered search-results page into hotel summary
// records. Card order is preserved; cards without a name are dropped
// silently; no de-duplication is applied.
func ExtractListings(html string) []models.HotelSummary {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var cards *goquery.Selection
	for _, m := range cardMatchers {
		if found := doc.FindMatcher(m); found.Length() > 0 {
			cards = found
			break
		}
	}
	if cards == nil {
		return nil
	}

	hotels := make([]models.HotelSummary, 0, cards.Length())
	cards.Each(func(_ int, card *goquery.Selection) {
		if summary, ok := extractCard(card); ok {
			hotels = append(hotels, summary)
		}
	})
	return hotels
}

// extractCard applies the ranked per-field rules to one card. The second
// return is false when the card has no name and must not be emitted.
func extractCard(card *goquery.Selection) (models.HotelSummary, bool) {
	name := firstMatch(card,
		textRule(`[data-testid="title"]`),
		textRule(".sr-hotel__name"),
		textRule("h3 a"),
	)
	if name == nil {
		return models.HotelSummary{}, false
	}

	summary := models.HotelSummary{Name: collapseWhitespace(*name)}

	if link := firstMatch(card,
		attrRule(`a[data-testid="title-link"]`, "href"),
		attrRule(`a[href*="/hotel/"]`, "href"),
	); link != nil {
		canonical := bookingurl.Canonicalize(*link)
		summary.Link = &canonical
	}

	if pic := firstMatch(card,
		attrRule(`img[data-testid="image"]`, "src"),
		attrRule("img", "src"),
	); pic != nil {
		summary.PictureURL = pic
	}

	summary.Rating = extractCardRating(card)
	summary.ReviewsCount = extractCardReviews(card)

	if loc := firstMatch(card,
		textRule(`[data-testid="address"]`),
		textRule(".sr_card_address_line"),
	); loc != nil {
		clean := collapseWhitespace(*loc)
		summary.Location = &clean
	}

	summary.PricePerNight, summary.Currency = extractCardPrice(card)

	return summary, true
}

// extractCardRating reads the review score from the structural marker, then
// falls back to a free-text pattern. Booking scores are on a 0–10 scale.
func extractCardRating(card *goquery.Selection) *float64 {
	raw := firstMatch(card,
		func(s *goquery.Selection) *string {
			el := s.Find(`[data-testid="review-score"]`).First()
			if el.Length() == 0 {
				return nil
			}
			if m := ratingValueRe.FindStringSubmatch(el.Text()); len(m) == 2 {
				v := strings.ReplaceAll(m[1], ",", ".")
				return &v
			}
			return nil
		},
		textRule(".bui-review-score__badge"),
		regexRule(freeRatingRe),
	)
	if raw == nil {
		return nil
	}
	f := parseLenientFloat(strings.ReplaceAll(*raw, ",", "."))
	if f == nil || *f < 0 || *f > 10 {
		return nil
	}
	return f
}

// extractCardReviews matches "N reviews" anywhere in the card as the last
// resort after the structural markers.
func extractCardReviews(card *goquery.Selection) *int {
	raw := firstMatch(card,
		textRule(`[data-testid="review-score"] .abf093bdfe`),
		textRule(".bui-review-score__text"),
		regexRule(reviewsCountRe),
	)
	if raw == nil {
		return nil
	}
	if m := reviewsCountRe.FindStringSubmatch(*raw); len(m) == 2 {
		return parseLenientInt(m[1])
	}
	return parseLenientInt(*raw)
}

// extractCardPrice tries the price markers in rank order, then parses
// whichever currency-token layout the source rendered this session.
func extractCardPrice(card *goquery.Selection) (*string, *string) {
	raw := firstMatch(card,
		textRule(`[data-testid="price-and-discounted-price"]`),
		textRule(`[data-testid="price"]`),
		textRule(".bui-price-display__value"),
	)
	if raw == nil {
		// Free-text fallback: scan the whole card for any price layout.
		text := card.Text()
		raw = &text
	}
	return parsePrice(*raw)
}

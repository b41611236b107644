package extractor

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// structuredData is the subset of the page's embedded JSON-LD blocks the
// detail extractor cares about. It is the most authoritative source: the
// site maintains it for search engines, so it survives markup churn that
// breaks CSS selectors.
type structuredData struct {
	Type        string `json:"@type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       any    `json:"image"` // string or []string depending on page variant
	URL         string `json:"url"`

	Address struct {
		StreetAddress   string `json:"streetAddress"`
		AddressLocality string `json:"addressLocality"`
		AddressRegion   string `json:"addressRegion"`
		PostalCode      string `json:"postalCode"`
		AddressCountry  string `json:"addressCountry"`
	} `json:"address"`

	AggregateRating struct {
		RatingValue json.Number `json:"ratingValue"`
		ReviewCount json.Number `json:"reviewCount"`
		BestRating  json.Number `json:"bestRating"`
	} `json:"aggregateRating"`

	Geo struct {
		Latitude  json.Number `json:"latitude"`
		Longitude json.Number `json:"longitude"`
	} `json:"geo"`

	StarRating struct {
		RatingValue json.Number `json:"ratingValue"`
	} `json:"starRating"`
}

// hotelLikeTypes are the JSON-LD @type values accepted as a hotel block.
var hotelLikeTypes = map[string]struct{}{
	"hotel": {}, "lodgingbusiness": {}, "resort": {}, "motel": {},
	"bedandbreakfast": {}, "hostel": {}, "apartment": {},
}

// parseStructuredData scans every ld+json script and returns the first
// hotel-like block, or nil when the page carries none.
func parseStructuredData(doc *goquery.Document) *structuredData {
	var found *structuredData
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}

		// A block can be a single object or an array of objects.
		var single structuredData
		if err := json.Unmarshal([]byte(raw), &single); err == nil {
			if isHotelLike(single.Type) {
				found = &single
				return false
			}
		}
		var many []structuredData
		if err := json.Unmarshal([]byte(raw), &many); err == nil {
			for i := range many {
				if isHotelLike(many[i].Type) {
					found = &many[i]
					return false
				}
			}
		}
		return true
	})
	return found
}

func isHotelLike(t string) bool {
	_, ok := hotelLikeTypes[strings.ToLower(t)]
	return ok
}

// mainImage returns the block's image URL, tolerating both the string and
// string-array shapes the site emits.
func (sd *structuredData) mainImage() string {
	switch v := sd.Image.(type) {
	case string:
		return v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// fullAddress joins the populated address components.
func (sd *structuredData) fullAddress() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{
		sd.Address.StreetAddress,
		sd.Address.AddressLocality,
		sd.Address.PostalCode,
		sd.Address.AddressCountry,
	} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

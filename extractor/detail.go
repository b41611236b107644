package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/umerzulfiqar021/Puppeteer/bookingurl"
	"github.com/umerzulfiqar021/Puppeteer/models"
)

const (
	maxPhotos     = 15
	maxFacilities = 30
)

var (
	starsRe       = regexp.MustCompile(`(\d)[- ]star`)
	checkinTimeRe = regexp.MustCompile(`(?i)check[- ]?in[^\d]{0,60}?(\d{1,2}:\d{2})`)
	checkoutTimeRe = regexp.MustCompile(`(?i)check[- ]?out[^\d]{0,60}?(\d{1,2}:\d{2})`)
	latlngRe      = regexp.MustCompile(`^(-?\d+(?:\.\d+)?),(-?\d+(?:\.\d+)?)$`)
	scoredRe      = regexp.MustCompile(`(?i)scored\s+(\d+(?:[.,]\d+)?)`)
)

// ExtractDetail parses a rendered hotel page into a HotelDetail. Fields are
// filled most-authoritative-source first (embedded JSON-LD, then stable DOM
// markers, then free-text patterns); a later stage never overwrites a value
// an earlier stage set. A page where nothing matches still yields a record —
// callers detect emptiness by the absent name.
func ExtractDetail(html, pageURL string) *models.HotelDetail {
	detail := &models.HotelDetail{
		URL:    bookingurl.Canonicalize(pageURL),
		Photos: []string{},
		Facilities: []string{},
		Rooms:  []models.Room{},
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return detail
	}

	if sd := parseStructuredData(doc); sd != nil {
		applyStructured(detail, sd)
	}

	body := doc.Selection

	fillName(detail, body)
	fillAddress(detail, body)
	fillRating(detail, body)
	fillRatingText(detail, body)
	fillReviewsCount(detail, body)
	fillStars(detail, body)
	fillDescription(detail, body)
	fillPhotos(detail, doc)
	fillFacilities(detail, doc)
	fillRooms(detail, doc)
	fillTimes(detail, doc)
	fillCoordinates(detail, doc)

	detail.Highlights = extractList(doc, `[data-testid="property-highlights"] li`, `.hp--desc_highlights li`)
	detail.Restaurants = extractList(doc, `[data-testid="restaurant-name"]`, ".restaurant__name")
	detail.LanguagesSpoken = extractLanguages(doc)
	detail.PropertyInfo = extractPropertyInfo(doc)
	detail.AreaInfo = extractAreaInfo(doc)

	return detail
}

// applyStructured copies the JSON-LD block into the detail record. This runs
// first, so it never needs to check for existing values.
func applyStructured(d *models.HotelDetail, sd *structuredData) {
	d.Name = collapseWhitespace(sd.Name)

	if addr := sd.fullAddress(); addr != "" {
		d.Address = &addr
	}
	if city := strings.TrimSpace(sd.Address.AddressLocality); city != "" {
		d.City = &city
	}
	if desc := collapseWhitespace(sd.Description); desc != "" {
		d.Description = &desc
	}
	if img := sd.mainImage(); img != "" {
		d.MainPhoto = &img
	}
	if v, err := sd.AggregateRating.RatingValue.Float64(); err == nil && v > 0 {
		d.Rating = &v
	}
	if v, err := sd.AggregateRating.ReviewCount.Int64(); err == nil && v > 0 {
		count := int(v)
		d.ReviewsCount = &count
	}
	if v, err := sd.StarRating.RatingValue.Float64(); err == nil && v > 0 {
		stars := int(v)
		d.Stars = &stars
	}

	lat, latErr := sd.Geo.Latitude.Float64()
	lng, lngErr := sd.Geo.Longitude.Float64()
	// Both-or-neither: a lone coordinate is worse than none.
	if latErr == nil && lngErr == nil && (lat != 0 || lng != 0) {
		d.Coordinates = &models.Coordinates{Latitude: lat, Longitude: lng}
	}
}

func fillName(d *models.HotelDetail, body *goquery.Selection) {
	if d.Name != "" {
		return
	}
	if name := firstMatch(body,
		textRule("h2.pp-header__title"),
		textRule(`h2[data-testid="title"]`),
		textRule("#hp_hotel_name"),
		textRule("h1"),
	); name != nil {
		d.Name = collapseWhitespace(*name)
	}
}

func fillAddress(d *models.HotelDetail, body *goquery.Selection) {
	if d.Address != nil {
		return
	}
	if addr := firstMatch(body,
		textRule(`[data-testid="address"]`),
		textRule(".hp_address_subtitle"),
	); addr != nil {
		clean := collapseWhitespace(*addr)
		d.Address = &clean
	}
}

func fillRating(d *models.HotelDetail, body *goquery.Selection) {
	if d.Rating != nil {
		return
	}
	raw := firstMatch(body,
		func(s *goquery.Selection) *string {
			el := s.Find(`[data-testid="review-score-component"]`).First()
			if el.Length() == 0 {
				return nil
			}
			if m := ratingValueRe.FindStringSubmatch(el.Text()); len(m) == 2 {
				return &m[1]
			}
			return nil
		},
		textRule(".bui-review-score__badge"),
		regexRule(scoredRe),
	)
	if raw == nil {
		return
	}
	if f := parseLenientFloat(strings.ReplaceAll(*raw, ",", ".")); f != nil && *f >= 0 && *f <= 10 {
		d.Rating = f
	}
}

func fillRatingText(d *models.HotelDetail, body *goquery.Selection) {
	if d.RatingText != nil {
		return
	}
	if word := firstMatch(body,
		textRule(`[data-testid="review-score-word"]`),
		textRule(".bui-review-score__title"),
	); word != nil {
		clean := collapseWhitespace(*word)
		d.RatingText = &clean
	}
}

func fillReviewsCount(d *models.HotelDetail, body *goquery.Selection) {
	if d.ReviewsCount != nil {
		return
	}
	if raw := firstMatch(body,
		textRule(`[data-testid="review-score-component"] .abf093bdfe`),
		regexRule(reviewsCountRe),
	); raw != nil {
		if m := reviewsCountRe.FindStringSubmatch(*raw); len(m) == 2 {
			d.ReviewsCount = parseLenientInt(m[1])
		} else {
			d.ReviewsCount = parseLenientInt(*raw)
		}
	}
}

func fillStars(d *models.HotelDetail, body *goquery.Selection) {
	if d.Stars != nil {
		return
	}
	if count := body.Find(`[data-testid="rating-stars"] span`).Length(); count > 0 && count <= 5 {
		d.Stars = &count
		return
	}
	if m := starsRe.FindStringSubmatch(body.Text()); len(m) == 2 {
		d.Stars = parseLenientInt(m[1])
	}
}

func fillDescription(d *models.HotelDetail, body *goquery.Selection) {
	if d.Description != nil {
		return
	}
	if desc := firstMatch(body,
		textRule(`[data-testid="property-description"]`),
		textRule("#property_description_content"),
		textRule(".hp_desc_main_content"),
	); desc != nil {
		clean := collapseWhitespace(*desc)
		d.Description = &clean
	}
}

// fillPhotos collects gallery images, deduplicated and capped. The main
// photo defaults to the first gallery image when JSON-LD offered none.
func fillPhotos(d *models.HotelDetail, doc *goquery.Document) {
	var photos []string
	add := func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			photos = append(photos, src)
		} else if src, ok := s.Attr("data-lazy"); ok {
			photos = append(photos, src)
		}
	}

	doc.Find(`[data-testid="GalleryDesktop"] img, a[data-fancybox="gallery"] img`).Each(add)
	if len(photos) == 0 {
		doc.Find(`img[src*="/xdata/images/hotel"]`).Each(add)
	}

	d.Photos = dedupeCapped(photos, maxPhotos)
	if d.MainPhoto == nil && len(d.Photos) > 0 {
		d.MainPhoto = &d.Photos[0]
	}
}

// fillFacilities reads the grouped facility sections. Only when the page
// offers no structured facility list at all does it fall back to the
// substring dictionary — a deliberately weak, coverage-over-precision layer.
func fillFacilities(d *models.HotelDetail, doc *goquery.Document) {
	grouped := make(map[string][]string)
	var flat []string

	groups := doc.Find(`[data-testid="facility-group-container"]`)
	if groups.Length() == 0 {
		groups = doc.Find(".hotel-facilities-group")
	}
	groups.Each(func(_ int, group *goquery.Selection) {
		heading := collapseWhitespace(group.Find("h2, h3, .bui-title__text").First().Text())
		var items []string
		group.Find("li").Each(func(_ int, li *goquery.Selection) {
			if item := collapseWhitespace(li.Text()); item != "" {
				items = append(items, item)
				flat = append(flat, item)
			}
		})
		if heading != "" && len(items) > 0 {
			grouped[heading] = dedupeCapped(items, maxFacilities)
		}
	})

	if len(flat) == 0 {
		// Most-popular strip as a secondary marker.
		doc.Find(`[data-testid="property-most-popular-facilities-wrapper"] li`).Each(func(_ int, li *goquery.Selection) {
			if item := collapseWhitespace(li.Text()); item != "" {
				flat = append(flat, item)
			}
		})
	}

	if len(flat) == 0 {
		text := doc.Text()
		for _, known := range wellKnownFacilities {
			if strings.Contains(text, known) {
				flat = append(flat, known)
			}
		}
	}

	d.Facilities = dedupeCapped(flat, maxFacilities)
	if len(grouped) > 0 {
		d.GroupedFacilities = grouped
	}
}

func fillRooms(d *models.HotelDetail, doc *goquery.Document) {
	var rooms []models.Room

	doc.Find("#hprt-table tr").Each(func(_ int, row *goquery.Selection) {
		name := collapseWhitespace(row.Find(".hprt-roomtype-icon-link").First().Text())
		if name == "" {
			return
		}
		room := models.Room{Name: name}
		priceText := row.Find(".prco-valign-middle-helper, .bui-price-display__value").First().Text()
		room.Price, room.Currency = parsePrice(priceText)
		rooms = append(rooms, room)
	})

	if len(rooms) == 0 {
		doc.Find(`[data-testid="recommended-units"] [data-testid="room-name"]`).Each(func(_ int, el *goquery.Selection) {
			if name := collapseWhitespace(el.Text()); name != "" {
				rooms = append(rooms, models.Room{Name: name})
			}
		})
	}

	d.Rooms = rooms
	if d.Rooms == nil {
		d.Rooms = []models.Room{}
	}
}

// fillTimes matches English check-in/check-out phrasings only; other locales
// yield null. Known coverage gap, kept deliberately.
func fillTimes(d *models.HotelDetail, doc *goquery.Document) {
	scope := doc.Find(`[data-testid="property-section--content"], .hp-house-rules-table, #hp_policies_box`)
	text := scope.Text()
	if text == "" {
		text = doc.Text()
	}

	if d.CheckinTime == nil {
		if m := checkinTimeRe.FindStringSubmatch(text); len(m) == 2 {
			d.CheckinTime = &m[1]
		}
	}
	if d.CheckoutTime == nil {
		if m := checkoutTimeRe.FindStringSubmatch(text); len(m) == 2 {
			d.CheckoutTime = &m[1]
		}
	}
}

// fillCoordinates reads the map marker's lat,lng attribute. The pair is
// populated together or not at all.
func fillCoordinates(d *models.HotelDetail, doc *goquery.Document) {
	if d.Coordinates != nil {
		return
	}
	attr, ok := doc.Find("[data-atlas-latlng]").First().Attr("data-atlas-latlng")
	if !ok {
		return
	}
	m := latlngRe.FindStringSubmatch(strings.TrimSpace(attr))
	if len(m) != 3 {
		return
	}
	lat := parseLenientFloat(m[1])
	lng := parseLenientFloat(m[2])
	if lat != nil && lng != nil {
		d.Coordinates = &models.Coordinates{Latitude: *lat, Longitude: *lng}
	}
}

// extractList returns the trimmed texts behind the first selector that
// matches anything.
func extractList(doc *goquery.Document, selectors ...string) []string {
	for _, sel := range selectors {
		found := doc.Find(sel)
		if found.Length() == 0 {
			continue
		}
		var items []string
		found.Each(func(_ int, el *goquery.Selection) {
			if item := collapseWhitespace(el.Text()); item != "" {
				items = append(items, item)
			}
		})
		if len(items) > 0 {
			return dedupeCapped(items, maxFacilities)
		}
	}
	return nil
}

// extractLanguages finds the "Languages spoken" heading and collects the
// list that follows it. English phrasing only; other locales return nil.
func extractLanguages(doc *goquery.Document) []string {
	var langs []string
	doc.Find("h2, h3, h4, .bui-title__text").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(heading.Text()), "languages spoken") {
			return true
		}
		heading.Parent().Find("li").Each(func(_ int, li *goquery.Selection) {
			if lang := collapseWhitespace(li.Text()); lang != "" {
				langs = append(langs, lang)
			}
		})
		return false
	})
	return dedupeCapped(langs, maxFacilities)
}

// extractPropertyInfo reads the house-rules table into free-form key→text
// pairs, plus the fine print when present.
func extractPropertyInfo(doc *goquery.Document) map[string]string {
	info := make(map[string]string)

	doc.Find(".hp-house-rules-table tr, [data-testid='property-section--content'] .policy-row").Each(func(_ int, row *goquery.Selection) {
		key := collapseWhitespace(row.Find("th, .policy-name").First().Text())
		val := collapseWhitespace(row.Find("td, .policy-value").First().Text())
		if key != "" && val != "" {
			info[normalizeCategoryKey(key)] = val
		}
	})

	if fine := collapseWhitespace(doc.Find(".hp_fine_print, [data-testid='fine-print']").First().Text()); fine != "" {
		info["fine_print"] = fine
	}

	if len(info) == 0 {
		return nil
	}
	return info
}

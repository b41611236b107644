package extractor

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/umerzulfiqar021/Puppeteer/models"
)

// surroundingsSelectors locate the nearby-places section.
var surroundingsSelectors = []string{
	`[data-testid="property-section--surroundings"]`,
	"#surroundings_block",
	".hp-poi-content",
}

const headingTags = "h2, h3, h4"

// distanceRe splits a trailing "<number> <unit>" token off a place label.
var distanceRe = regexp.MustCompile(`(?i)^(.*?)[\s\x{00a0}]*([\d][\d.,]*)\s*(km|mi|miles|m|metres|meters|ft|feet)\.?$`)

// airportRe matches the structured airport title/subtitle pattern:
// a name followed by an IATA-style code, e.g. "Charles de Gaulle (CDG)".
var airportRe = regexp.MustCompile(`^(.+?)\s*\(([A-Z]{3})\)`)

// placePrefixes are category words the source sometimes leaves concatenated
// to a place name ("RestaurantLe Bistro"). When one is found glued on, it
// becomes the place type and is stripped from the name.
var placePrefixes = []string{
	"Restaurant", "Cafe/bar", "Cafe", "Bar", "Metro", "Train", "Subway",
	"Bus stop", "Tram", "Airport", "Beach", "Mountain", "Lake", "River",
}

// extractAreaInfo discovers nearby-place categories dynamically: every
// heading-like node followed by a list block becomes a category, keyed by
// the normalized heading text. No hardcoded category taxonomy — a section
// label never seen before still produces a correctly keyed entry. Categories
// with zero items are omitted.
func extractAreaInfo(doc *goquery.Document) map[string][]models.AreaPlace {
	section := findSurroundings(doc)
	if section == nil {
		return nil
	}

	area := scanHeadingBlocks(section, false)
	if len(area) < 2 {
		// Sparse result: retry heading-by-heading with looser matching
		// before giving up.
		if loose := scanHeadingBlocks(section, true); len(loose) > len(area) {
			area = loose
		}
	}

	mergeAirports(section, area)

	if len(area) == 0 {
		return nil
	}
	return area
}

// findSurroundings returns the nearby-places container, trying stable
// markers first and falling back to an English heading search.
func findSurroundings(doc *goquery.Document) *goquery.Selection {
	for _, sel := range surroundingsSelectors {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			return found
		}
	}

	var container *goquery.Selection
	doc.Find(headingTags).EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		text := strings.ToLower(heading.Text())
		if strings.Contains(text, "surroundings") || strings.Contains(text, "what's nearby") {
			container = heading.Parent()
			return false
		}
		return true
	})
	return container
}

// scanHeadingBlocks walks heading-like nodes and collects the list items
// that follow each one. In loose mode, bold/titled nodes also count as
// headings and list items are pulled from the heading's parent block.
func scanHeadingBlocks(section *goquery.Selection, loose bool) map[string][]models.AreaPlace {
	headingSel := headingTags
	if loose {
		headingSel = headingTags + `, strong, b, [class*="title"], [class*="heading"]`
	}

	area := make(map[string][]models.AreaPlace)
	section.Find(headingSel).Each(func(_ int, heading *goquery.Selection) {
		key := normalizeCategoryKey(heading.Text())
		if key == "" {
			return
		}
		if _, exists := area[key]; exists {
			return
		}

		items := heading.NextUntil(headingSel).Find("li")
		if items.Length() == 0 {
			items = heading.NextUntil(headingSel).Filter("li")
		}
		if loose && items.Length() == 0 {
			items = heading.Parent().Find("li")
		}

		var places []models.AreaPlace
		items.Each(func(_ int, li *goquery.Selection) {
			if place, ok := parsePlace(li.Text()); ok {
				places = append(places, place)
			}
		})
		if len(places) > 0 {
			area[key] = places
		}
	})
	return area
}

// parsePlace separates the trailing distance token from a place label and
// strips a glued-on category prefix into the type field.
func parsePlace(raw string) (models.AreaPlace, bool) {
	text := collapseWhitespace(raw)
	if text == "" {
		return models.AreaPlace{}, false
	}

	place := models.AreaPlace{Name: text}
	if m := distanceRe.FindStringSubmatch(text); len(m) == 4 {
		place.Name = strings.TrimSpace(m[1])
		place.Distance = m[2] + " " + strings.ToLower(m[3])
	}
	if place.Name == "" {
		return models.AreaPlace{}, false
	}

	for _, prefix := range placePrefixes {
		rest, found := strings.CutPrefix(place.Name, prefix)
		if !found || rest == "" {
			continue
		}
		// Only treat it as glued-on when the remainder starts a new word
		// without separation ("RestaurantLe Bistro"), not a legitimate name
		// ("Restaurant du Louvre" keeps its space-separated prefix).
		r := []rune(rest)
		if unicode.IsUpper(r[0]) {
			place.Type = prefix
			place.Name = strings.TrimSpace(rest)
		}
		break
	}

	return place, true
}

// mergeAirports adds airports found via the structured name+code pattern to
// the closest_airports category, without duplicating entries by name. This
// is a high-confidence supplement: the code pattern is far more stable than
// the heading taxonomy.
func mergeAirports(section *goquery.Selection, area map[string][]models.AreaPlace) {
	const key = "closest_airports"

	existing := make(map[string]struct{})
	for _, p := range area[key] {
		existing[strings.ToLower(p.Name)] = struct{}{}
		// Heading-scanned entries may still carry the "(CDG)" suffix.
		if m := airportRe.FindStringSubmatch(p.Name); len(m) == 3 {
			existing[strings.ToLower(strings.TrimSpace(m[1]))] = struct{}{}
		}
	}

	section.Find("li").Each(func(_ int, li *goquery.Selection) {
		text := collapseWhitespace(li.Text())
		m := airportRe.FindStringSubmatch(text)
		if len(m) != 3 {
			return
		}

		place := models.AreaPlace{Name: strings.TrimSpace(m[1]), Type: "Airport"}
		if dm := distanceRe.FindStringSubmatch(text); len(dm) == 4 {
			place.Distance = dm[2] + " " + strings.ToLower(dm[3])
		}

		nameKey := strings.ToLower(place.Name)
		if _, dup := existing[nameKey]; dup || place.Name == "" {
			return
		}
		existing[nameKey] = struct{}{}
		area[key] = append(area[key], place)
	})
}

// accentFold maps the Latin accents the source commonly emits to ASCII.
var accentFold = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c', 'ñ': 'n', 'ß': 's',
}

// normalizeCategoryKey turns a heading into a stable map key: lower-cased,
// accents and ampersands folded, non-alphanumeric runs collapsed to single
// underscores. "Top Attractions" → "top_attractions".
func normalizeCategoryKey(heading string) string {
	lowered := strings.ToLower(strings.TrimSpace(heading))
	lowered = strings.ReplaceAll(lowered, "&", " and ")

	var b strings.Builder
	lastUnderscore := true // suppress leading underscore
	for _, r := range lowered {
		if folded, ok := accentFold[r]; ok {
			r = folded
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimRight(b.String(), "_")
}

package bookingurl

import (
	"html"
	"net/url"
	"strings"
)

// essentialParams are the only query parameters a stored hotel URL keeps:
// the booking-essential stay parameters. Affiliate ids, labels and session
// noise are stripped so equal stays compare equal.
var essentialParams = map[string]struct{}{
	"checkin":        {},
	"checkout":       {},
	"group_adults":   {},
	"no_rooms":       {},
	"group_children": {},
}

// Canonicalize normalizes a hotel URL: HTML entities are decoded (hrefs
// lifted out of markup often carry &amp;), and the query is reduced to the
// essential stay parameters in a stable order. Inputs that do not parse are
// returned trimmed but otherwise untouched — a best-effort link beats none.
func Canonicalize(raw string) string {
	raw = strings.TrimSpace(html.UnescapeString(raw))
	if raw == "" {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	q := u.Query()
	kept := url.Values{}
	for key := range q {
		if _, ok := essentialParams[key]; ok {
			kept.Set(key, q.Get(key))
		}
	}
	u.RawQuery = kept.Encode()
	u.Fragment = ""

	return u.String()
}

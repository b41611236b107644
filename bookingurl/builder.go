// Package bookingurl builds and canonicalizes Booking.com URLs. Both
// operations are pure functions of their inputs: equal normalized inputs
// always produce byte-identical URLs, which is what makes the search
// response cache and the URL tests reliable.
package bookingurl

import (
	"net/url"
	"strconv"

	"github.com/umerzulfiqar021/Puppeteer/models"
)

const searchBase = "https://www.booking.com/searchresults.html"

// BuildSearchURL turns a defaulted SearchRequest into the canonical search
// URL. Call req.Defaults() first; this function does not apply defaults so
// that its output is a deterministic function of the request's fields.
func BuildSearchURL(req *models.SearchRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("ss", req.Location)
	q.Set("checkin", req.Checkin)
	q.Set("checkout", req.Checkout)
	q.Set("group_adults", strconv.Itoa(req.Adults))
	q.Set("no_rooms", strconv.Itoa(req.Rooms))
	q.Set("group_children", strconv.Itoa(req.Children))
	q.Set("selected_currency", req.Currency)

	// url.Values.Encode sorts keys, so the parameter order is stable.
	return searchBase + "?" + q.Encode(), nil
}

package bookingurl

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/umerzulfiqar021/Puppeteer/models"
)

func TestBuildSearchURL_Idempotent(t *testing.T) {
	req := &models.SearchRequest{
		Location: "Paris",
		Checkin:  "2025-06-10",
		Checkout: "2025-06-12",
	}
	req.Defaults()

	first, err := BuildSearchURL(req)
	if err != nil {
		t.Fatalf("BuildSearchURL: %v", err)
	}

	// An equal-by-value request must yield a byte-identical URL.
	clone := *req
	second, err := BuildSearchURL(&clone)
	if err != nil {
		t.Fatalf("BuildSearchURL (clone): %v", err)
	}
	if first != second {
		t.Errorf("equal requests produced different URLs:\n%s\n%s", first, second)
	}
}

func TestBuildSearchURL_Defaults(t *testing.T) {
	req := &models.SearchRequest{Location: "Paris"}
	req.Defaults()

	built, err := BuildSearchURL(req)
	if err != nil {
		t.Fatalf("BuildSearchURL: %v", err)
	}

	u, err := url.Parse(built)
	if err != nil {
		t.Fatalf("built URL does not parse: %v", err)
	}
	q := u.Query()

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	if got := q.Get("checkin"); got != tomorrow {
		t.Errorf("checkin = %q, want tomorrow %q", got, tomorrow)
	}
	wantCheckout := time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	if got := q.Get("checkout"); got != wantCheckout {
		t.Errorf("checkout = %q, want checkin+2d %q", got, wantCheckout)
	}
	if got := q.Get("group_adults"); got != "2" {
		t.Errorf("group_adults = %q, want 2", got)
	}
	if got := q.Get("no_rooms"); got != "1" {
		t.Errorf("no_rooms = %q, want 1", got)
	}
	if got := q.Get("group_children"); got != "0" {
		t.Errorf("group_children = %q, want 0", got)
	}
	if got := q.Get("selected_currency"); got != "USD" {
		t.Errorf("selected_currency = %q, want USD", got)
	}
}

func TestBuildSearchURL_CheckoutFollowsSuppliedCheckin(t *testing.T) {
	// Checkout must derive from the supplied checkin, never from today.
	req := &models.SearchRequest{Location: "Rome", Checkin: "2030-01-15"}
	req.Defaults()

	if req.Checkout != "2030-01-17" {
		t.Errorf("checkout = %q, want 2030-01-17", req.Checkout)
	}
}

func TestBuildSearchURL_RejectsEmptyLocation(t *testing.T) {
	req := &models.SearchRequest{Location: "   "}
	req.Defaults()

	if _, err := BuildSearchURL(req); err == nil {
		t.Fatal("expected error for blank location")
	}
}

func TestBuildSearchURL_EncodesLocation(t *testing.T) {
	req := &models.SearchRequest{Location: "New York City"}
	req.Defaults()

	built, err := BuildSearchURL(req)
	if err != nil {
		t.Fatalf("BuildSearchURL: %v", err)
	}
	if strings.Contains(built, " ") {
		t.Errorf("URL contains unencoded space: %s", built)
	}
}

func TestCanonicalize_StripsNonEssentialParams(t *testing.T) {
	in := "https://www.booking.com/hotel/fr/le-grand.html?checkin=2025-01-01&checkout=2025-01-03&group_adults=2&no_rooms=1&group_children=0&aid=12345&label=xyz"
	got := Canonicalize(in)

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("canonical URL does not parse: %v", err)
	}
	q := u.Query()

	for _, absent := range []string{"aid", "label"} {
		if q.Has(absent) {
			t.Errorf("parameter %q should have been stripped: %s", absent, got)
		}
	}
	want := map[string]string{
		"checkin":        "2025-01-01",
		"checkout":       "2025-01-03",
		"group_adults":   "2",
		"no_rooms":       "1",
		"group_children": "0",
	}
	for k, v := range want {
		if q.Get(k) != v {
			t.Errorf("parameter %s = %q, want %q", k, q.Get(k), v)
		}
	}

	// Stable order: canonicalizing twice is a fixed point.
	if again := Canonicalize(got); again != got {
		t.Errorf("canonicalize is not idempotent:\n%s\n%s", got, again)
	}
}

func TestCanonicalize_DecodesEntities(t *testing.T) {
	in := "https://www.booking.com/hotel/it/roma.html?checkin=2025-02-01&amp;checkout=2025-02-03"
	got := Canonicalize(in)
	if strings.Contains(got, "&amp;") {
		t.Errorf("entities not decoded: %s", got)
	}
	if !strings.Contains(got, "checkout=2025-02-03") {
		t.Errorf("checkout lost during canonicalization: %s", got)
	}
}

func TestCanonicalize_Garbage(t *testing.T) {
	in := "  ://not a url  "
	if got := Canonicalize(in); got == "" {
		t.Error("garbage input should be returned best-effort, not emptied")
	}
}

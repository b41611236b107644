package models

// HotelSummary is one hotel card from a search-results page.
// Absent fields are null, never zero or "": callers must treat null as
// "unknown". A card without a name is never emitted.
type HotelSummary struct {
	Name          string   `json:"name"`
	Link          *string  `json:"link"`
	PictureURL    *string  `json:"picture_url"`
	Rating        *float64 `json:"rating"`
	ReviewsCount  *int     `json:"reviews_count"`
	Location      *string  `json:"location"`
	PricePerNight *string  `json:"price_per_night"`
	Currency      *string  `json:"currency"`
}

// Coordinates is a latitude/longitude pair. Both fields are populated
// together or the pair is nil.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Room is one bookable room option on a hotel page.
type Room struct {
	Name     string  `json:"name"`
	Price    *string `json:"price"`
	Currency *string `json:"currency"`
}

// AreaPlace is one nearby point of interest under an area_info category.
type AreaPlace struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Distance string `json:"distance"`
}

// HotelDetail is the full structured record extracted from a hotel page.
// A detail with an empty Name signals "nothing usable found" to callers.
type HotelDetail struct {
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	Rating      *float64 `json:"rating"`
	RatingText  *string  `json:"rating_text"`
	ReviewsCount *int    `json:"reviews_count"`
	Stars       *int    `json:"stars"`
	Description *string `json:"description"`

	MainPhoto *string  `json:"main_photo"`
	Photos    []string `json:"photos"`

	Facilities        []string            `json:"facilities"`
	GroupedFacilities map[string][]string `json:"grouped_facilities,omitempty"`
	Highlights        []string            `json:"highlights,omitempty"`
	Restaurants       []string            `json:"restaurants,omitempty"`

	Rooms []Room `json:"rooms"`

	CheckinTime  *string `json:"checkin_time"`
	CheckoutTime *string `json:"checkout_time"`

	Coordinates *Coordinates `json:"coordinates"`

	// AreaInfo maps a normalized category key (e.g. "top_attractions",
	// "closest_airports") to the places listed under that heading. Keys are
	// discovered dynamically from the page, not from a fixed taxonomy.
	AreaInfo map[string][]AreaPlace `json:"area_info,omitempty"`

	LanguagesSpoken []string          `json:"languages_spoken,omitempty"`
	PropertyInfo    map[string]string `json:"property_info,omitempty"`
}

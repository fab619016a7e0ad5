package models

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Persisted column names, shared by the CSV file and the user_shops table.
const (
	ColName        = "shop_name"
	ColCity        = "city"
	ColAddress     = "address"
	ColLatitude    = "latitude"
	ColLongitude   = "longitude"
	ColCategory    = "shop_type"
	ColJourneyType = "type"
	ColVisitStatus = "visit_status"
	ColNotes       = "notes"
	ColRating      = "rating"
	ColImageURL    = "image_url"
)

// Columns is the full persisted column order.
var Columns = []string{
	ColName, ColCity, ColAddress, ColLatitude, ColLongitude, ColCategory,
	ColJourneyType, ColVisitStatus, ColNotes, ColRating, ColImageURL,
}

const (
	StatusWantToVisit = "Want to Visit"
	StatusVisited     = "Visited"
)

const (
	JourneyCoffee  = "Coffee"
	JourneyScenery = "Scenery"
	JourneyFood    = "Food"
	JourneyBar     = "Bar"
	JourneyOther   = "Other"
)

// JourneyTypes lists the selectable journey types in display order.
var JourneyTypes = []string{JourneyCoffee, JourneyScenery, JourneyFood, JourneyBar, JourneyOther}

// DefaultCategory is used for search hits that carry no POI type.
const DefaultCategory = "其他"

const MaxRating = 5

// ShopRecord is one saved shop. Records have no stable key: their identity is
// their position in the record set.
type ShopRecord struct {
	Name        string   `json:"shop_name"`
	City        string   `json:"city"`
	Address     string   `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Category    string   `json:"shop_type"`
	JourneyType string   `json:"type"`
	VisitStatus string   `json:"visit_status"`
	Notes       string   `json:"notes"`
	Rating      int      `json:"rating"`
	ImageURLs   []string `json:"image_urls"`
}

// Coordinates returns the record position when both latitude and longitude are set.
func (r ShopRecord) Coordinates() (Coordinates, bool) {
	if r.Latitude == nil || r.Longitude == nil {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *r.Latitude, Lon: *r.Longitude}, true
}

// Normalize fills defaults and clamps values the same way on every load and save.
// Unknown visit statuses and journey types fall back to the defaults.
func (r *ShopRecord) Normalize() {
	r.City = CleanText(r.City)
	r.Notes = CleanText(r.Notes)
	r.VisitStatus = strings.TrimSpace(r.VisitStatus)
	if !IsVisitStatus(r.VisitStatus) {
		r.VisitStatus = StatusWantToVisit
	}
	r.JourneyType = strings.TrimSpace(r.JourneyType)
	if !IsJourneyType(r.JourneyType) {
		r.JourneyType = JourneyCoffee
	}
	r.Rating = ClampRating(r.Rating)
	if len(r.ImageURLs) == 0 {
		r.ImageURLs = nil
	}
}

// Clone returns a deep copy of the record.
func (r ShopRecord) Clone() ShopRecord {
	c := r
	c.Latitude = CopyFloat(r.Latitude)
	c.Longitude = CopyFloat(r.Longitude)
	if r.ImageURLs != nil {
		c.ImageURLs = append([]string(nil), r.ImageURLs...)
	}
	return c
}

// CleanText turns the "nan" marker left behind by spreadsheet tools into an empty string.
func CleanText(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), "nan") {
		return ""
	}
	return s
}

func ClampRating(r int) int {
	if r < 0 {
		return 0
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}

// ParseRating accepts integers and float strings such as "4.0". Anything
// unparseable counts as no rating.
func ParseRating(s string) int {
	f, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return ClampRating(int(f))
}

// ParseCoordinate returns nil for empty or unparseable values.
func ParseCoordinate(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func CopyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// ParseImageList decodes the stored image_url column. The column normally holds
// a JSON array; older rows hold a single bare URL.
func ParseImageList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" || strings.EqualFold(raw, "nan") {
		return nil
	}
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return []string{raw}
	}
	list, ok := parsed.([]any)
	if !ok {
		return []string{raw}
	}
	urls := make([]string, 0, len(list))
	for _, item := range list {
		if s := cast.ToString(item); s != "" {
			urls = append(urls, s)
		}
	}
	if len(urls) == 0 {
		return nil
	}
	return urls
}

// EncodeImageList is the inverse of ParseImageList. An empty list encodes to "".
func EncodeImageList(urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	data, err := json.Marshal(urls)
	if err != nil {
		return ""
	}
	return string(data)
}

// IsVisitStatus reports whether s is a known visit status.
func IsVisitStatus(s string) bool {
	return s == StatusWantToVisit || s == StatusVisited
}

// IsJourneyType reports whether s is one of JourneyTypes.
func IsJourneyType(s string) bool {
	for _, j := range JourneyTypes {
		if j == s {
			return true
		}
	}
	return false
}

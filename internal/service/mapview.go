package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"shopmap/internal/models"
	"shopmap/pkg/geo"
)

type MapView struct {
	Center      geo.Point `json:"center"`
	Zoom        int       `json:"zoom"`
	TileURL     string    `json:"tile_url"`
	Attribution string    `json:"attribution"`
	JourneyType string    `json:"journey_type,omitempty"`
	// Total counts the records of the journey type, with or without
	// coordinates.
	Total   int      `json:"total"`
	Markers []Marker `json:"markers"`
}

type Marker struct {
	Index       int       `json:"index"`
	Name        string    `json:"name"`
	Position    geo.Point `json:"position"`
	Address     string    `json:"address"`
	Category    string    `json:"shop_type"`
	VisitStatus string    `json:"visit_status"`
	Notes       string    `json:"notes"`
	Stars       string    `json:"stars"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
}

// Map builds the map view for the user's records of journeyType. An empty
// journeyType shows every record. Records without coordinates are counted but
// not plotted.
func (s *ShopService) Map(ctx context.Context, user uuid.UUID, journeyType string) (MapView, error) {
	if journeyType != "" && !models.IsJourneyType(journeyType) {
		return MapView{}, fmt.Errorf("%w: unknown journey type %q", ErrInvalidInput, journeyType)
	}
	records, _, err := s.Records(ctx, user)
	if err != nil {
		return MapView{}, err
	}
	return BuildMap(records, journeyType), nil
}

func BuildMap(records []models.ShopRecord, journeyType string) MapView {
	view := MapView{
		Zoom:        geo.DefaultZoom,
		TileURL:     geo.TileURL,
		Attribution: geo.TileAttribution,
		JourneyType: journeyType,
		Markers:     []Marker{},
	}

	var points []geo.Point
	for i, r := range records {
		if journeyType != "" && r.JourneyType != journeyType {
			continue
		}
		view.Total++
		c, ok := r.Coordinates()
		if !ok {
			continue
		}
		p := geo.Point{Lat: c.Lat, Lon: c.Lon}
		points = append(points, p)
		view.Markers = append(view.Markers, Marker{
			Index:       i,
			Name:        r.Name,
			Position:    p,
			Address:     r.Address,
			Category:    r.Category,
			VisitStatus: r.VisitStatus,
			Notes:       r.Notes,
			Stars:       geo.Stars(r.Rating),
			Color:       geo.ColorFor(r.VisitStatus == models.StatusVisited),
			Icon:        geo.IconFor(r.Category),
		})
	}
	view.Center = geo.Center(points)
	return view
}

// ShopAt returns the index of the first record whose coordinates are within
// the click tolerance of (lat, lng).
func (s *ShopService) ShopAt(ctx context.Context, user uuid.UUID, lat, lng float64) (int, models.ShopRecord, error) {
	records, _, err := s.Records(ctx, user)
	if err != nil {
		return 0, models.ShopRecord{}, err
	}
	i, ok := FindAt(records, geo.Point{Lat: lat, Lon: lng})
	if !ok {
		return 0, models.ShopRecord{}, fmt.Errorf("%w: no shop at %.6f,%.6f", ErrNotFound, lat, lng)
	}
	return i, records[i], nil
}

func FindAt(records []models.ShopRecord, click geo.Point) (int, bool) {
	for i, r := range records {
		c, ok := r.Coordinates()
		if !ok {
			continue
		}
		if geo.Near(geo.Point{Lat: c.Lat, Lon: c.Lon}, click) {
			return i, true
		}
	}
	return 0, false
}

// Package geo holds the presentation rules for shops on the map: default
// viewport, marker icon and colour, rating stars and click matching.
package geo

import (
	"math"
	"strings"
)

const (
	DefaultZoom = 12

	// ClickTolerance is how far, in degrees on each axis, a click may land
	// from a marker and still select it.
	ClickTolerance = 0.0001

	// TileURL is the Gaode road tile layer.
	TileURL         = "http://webrd02.is.autonavi.com/appmaptile?lang=zh_cn&size=1&scale=1&style=7&x={x}&y={y}&z={z}"
	TileAttribution = "高德地图"

	ColorVisited = "red"
	ColorPending = "green"

	DefaultIcon = "info-circle"
	NoRating    = "无评分"
)

// DefaultCenter is the viewport used when there is nothing to plot.
var DefaultCenter = Point{Lat: 39.9042, Lon: 116.4074}

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

var icons = map[string]string{
	"餐饮":   "cutlery",
	"餐饮服务": "cutlery",
	"零售":   "shopping-cart",
	"服务":   "wrench",
	"娱乐":   "gamepad",
	"教育":   "book",
	"医疗":   "medkit",
	"风景名胜": "camera",
	"其他":   DefaultIcon,
}

// IconFor maps a POI category to a marker glyph.
func IconFor(category string) string {
	if icon, ok := icons[strings.TrimSpace(category)]; ok {
		return icon
	}
	return DefaultIcon
}

func ColorFor(visited bool) string {
	if visited {
		return ColorVisited
	}
	return ColorPending
}

// Stars renders a rating as a row of stars.
func Stars(rating int) string {
	if rating <= 0 {
		return NoRating
	}
	return strings.Repeat("⭐", rating)
}

// Near reports whether b lies within ClickTolerance of a on both axes.
func Near(a, b Point) bool {
	return math.Abs(a.Lat-b.Lat) < ClickTolerance && math.Abs(a.Lon-b.Lon) < ClickTolerance
}

// Center is the first plotted point, or DefaultCenter when there is none.
func Center(points []Point) Point {
	if len(points) == 0 {
		return DefaultCenter
	}
	return points[0]
}

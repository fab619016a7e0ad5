package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"shopmap/internal/models"
	"shopmap/pkg/geo"
	"shopmap/pkg/location"
)

func renderPOIs(w io.Writer, pois []location.POI) error {
	table := tablewriter.NewTable(w)
	table.Header("#", "Name", "City", "Type", "Address", "Location")
	for i, p := range pois {
		if err := table.Append(i, p.Name, p.City, p.Type, p.Address, fmt.Sprintf("%.6f,%.6f", p.Latitude, p.Longitude)); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderRecords(w io.Writer, records []models.ShopRecord) error {
	table := tablewriter.NewTable(w)
	table.Header("#", "Name", "City", "Journey", "Status", "Rating", "Photos", "Location")
	for i, r := range records {
		loc := "-"
		if c, ok := r.Coordinates(); ok {
			loc = fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
		}
		if err := table.Append(i, r.Name, r.City, r.JourneyType, r.VisitStatus, geo.Stars(r.Rating), len(r.ImageURLs), loc); err != nil {
			return err
		}
	}
	return table.Render()
}

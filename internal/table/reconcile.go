// Package table projects shop records onto the editable table view and merges
// an edited view back into full records.
//
// The table only shows display columns. Hidden fields (coordinates and image
// URLs) are recovered from the prior record set by row position, so deleting or
// reordering rows attaches hidden fields to whichever record now occupies that
// position.
package table

import (
	"slices"

	"shopmap/internal/models"
)

// DisplayColumns are the columns shown and editable in the table, in order.
var DisplayColumns = []string{
	models.ColName,
	models.ColCity,
	models.ColAddress,
	models.ColCategory,
	models.ColJourneyType,
	models.ColVisitStatus,
	models.ColNotes,
	models.ColRating,
}

// Row is one table row: a ShopRecord without its hidden fields.
type Row struct {
	Name        string `json:"shop_name" binding:"required"`
	City        string `json:"city"`
	Address     string `json:"address"`
	Category    string `json:"shop_type"`
	JourneyType string `json:"type" binding:"omitempty,oneof=Coffee Scenery Food Bar Other"`
	VisitStatus string `json:"visit_status" binding:"omitempty,oneof='Want to Visit' Visited"`
	Notes       string `json:"notes"`
	Rating      int    `json:"rating" binding:"min=0,max=5"`
}

// View projects records onto display rows.
func View(records []models.ShopRecord) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{
			Name:        r.Name,
			City:        r.City,
			Address:     r.Address,
			Category:    r.Category,
			JourneyType: r.JourneyType,
			VisitStatus: r.VisitStatus,
			Notes:       r.Notes,
			Rating:      r.Rating,
		}
	}
	return rows
}

// Reconcile rebuilds a full record set from an edited view. Row i takes its
// display fields from edited[i] and its hidden fields from prior[i]; rows past
// the end of prior are new and have no coordinates or images.
func Reconcile(edited []Row, prior []models.ShopRecord) []models.ShopRecord {
	out := make([]models.ShopRecord, len(edited))
	for i, row := range edited {
		rec := row.record()
		if i < len(prior) {
			rec.Latitude = models.CopyFloat(prior[i].Latitude)
			rec.Longitude = models.CopyFloat(prior[i].Longitude)
			rec.ImageURLs = slices.Clone(prior[i].ImageURLs)
		}
		rec.Normalize()
		out[i] = rec
	}
	return out
}

// Changed reports whether edited differs from the view of prior once both are
// normalised.
func Changed(edited []Row, prior []models.ShopRecord) bool {
	before := View(prior)
	if len(before) != len(edited) {
		return true
	}
	for i := range edited {
		if normalize(edited[i]) != normalize(before[i]) {
			return true
		}
	}
	return false
}

func (r Row) record() models.ShopRecord {
	return models.ShopRecord{
		Name:        r.Name,
		City:        r.City,
		Address:     r.Address,
		Category:    r.Category,
		JourneyType: r.JourneyType,
		VisitStatus: r.VisitStatus,
		Notes:       r.Notes,
		Rating:      r.Rating,
	}
}

func normalize(r Row) Row {
	rec := r.record()
	rec.Normalize()
	return View([]models.ShopRecord{rec})[0]
}

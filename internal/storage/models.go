// Package storage provides the place store models and repository.
package storage

import (
	"database/sql"
	"encoding/json"
	"strings"
)

// Place is a row of the place store. Records are read-only from the engine's
// perspective; optional columns degrade to zero values.
type Place struct {
	ID          sql.NullInt64
	Name        string
	Tambon      string
	Category    string
	Description string
	Highlight   string
	Latitude    sql.NullFloat64
	Longitude   sql.NullFloat64
	ImageURL    string
	ImageURLs   []string
	// DistanceKm is computed for nearby queries only, never stored.
	DistanceKm *float64
}

// HasCoordinates reports whether both latitude and longitude are present.
// Rows with only one of the pair are treated as having neither.
func (p *Place) HasCoordinates() bool {
	return p.Latitude.Valid && p.Longitude.Valid
}

// HasImage reports whether any image is attached.
func (p *Place) HasImage() bool {
	return p.ImageURL != "" || len(p.ImageURLs) > 0
}

// SearchBlob returns the lowercased concatenation of the five matchable
// fields, the text every fuzzy score and keyword gate runs against.
func (p *Place) SearchBlob() string {
	return strings.ToLower(strings.Join([]string{
		p.Name, p.Description, p.Highlight, p.Tambon, p.Category,
	}, " "))
}

// placeJSON is the wire shape of a Place.
type placeJSON struct {
	ID          *int64   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Tambon      string   `json:"tambon"`
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	Highlight   string   `json:"highlight,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	ImageURLs   []string `json:"image_urls,omitempty"`
	DistanceKm  *float64 `json:"distance_km,omitempty"`
}

// MarshalJSON renders nullable columns as absent fields.
func (p Place) MarshalJSON() ([]byte, error) {
	out := placeJSON{
		Name:        p.Name,
		Tambon:      p.Tambon,
		Category:    p.Category,
		Description: p.Description,
		Highlight:   p.Highlight,
		ImageURL:    p.ImageURL,
		ImageURLs:   p.ImageURLs,
		DistanceKm:  p.DistanceKm,
	}
	if p.ID.Valid {
		id := p.ID.Int64
		out.ID = &id
	}
	if p.HasCoordinates() {
		lat, lng := p.Latitude.Float64, p.Longitude.Float64
		out.Latitude = &lat
		out.Longitude = &lng
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the wire shape back into a Place.
func (p *Place) UnmarshalJSON(data []byte) error {
	var in placeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = Place{
		Name:        in.Name,
		Tambon:      in.Tambon,
		Category:    in.Category,
		Description: in.Description,
		Highlight:   in.Highlight,
		ImageURL:    in.ImageURL,
		ImageURLs:   in.ImageURLs,
		DistanceKm:  in.DistanceKm,
	}
	if in.ID != nil {
		p.ID = sql.NullInt64{Int64: *in.ID, Valid: true}
	}
	if in.Latitude != nil && in.Longitude != nil {
		p.Latitude = sql.NullFloat64{Float64: *in.Latitude, Valid: true}
		p.Longitude = sql.NullFloat64{Float64: *in.Longitude, Valid: true}
	}
	return nil
}

// DecodeImageURLs parses the serialized image-array column. Malformed data
// yields an empty list, never an error.
func DecodeImageURLs(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "[]" {
		return nil
	}

	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return nil
	}

	out := urls[:0]
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u != "" {
			out = append(out, u)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

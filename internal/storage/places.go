package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
)

// Common errors.
var (
	ErrNotFound = errors.New("record not found")
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SearchFilter holds the by-filter retrieval parameters. A row matches the
// keyword filter when any keyword appears, case-insensitively, in any of
// name, description, highlight, category or tambon.
type SearchFilter struct {
	Category          string
	Tambon            string
	KeywordsAny       []string
	ExcludeCategories []string
	Limit             int
}

// NearbyFilter adds a geographic constraint to a SearchFilter.
type NearbyFilter struct {
	SearchFilter
	Latitude  float64
	Longitude float64
	WithinKm  float64
}

// PlaceStore is the retrieval capability the engine consumes.
type PlaceStore interface {
	Search(ctx context.Context, f SearchFilter) ([]Place, error)
	SearchNearby(ctx context.Context, f NearbyFilter) ([]Place, error)
	FindByName(ctx context.Context, fragment string, limit int) ([]Place, error)
}

// nearbyFetchCap bounds how many candidate rows a nearby query pulls before
// distance filtering happens in process.
const nearbyFetchCap = 500

// PlaceRepository implements PlaceStore over SQL. Older deployments lack the
// id and image_urls columns, so both are capability-probed once and the
// select list adjusts; their absence degrades to zero values, never an error.
type PlaceRepository struct {
	db DB

	probeOnce    sync.Once
	hasID        bool
	hasImageURLs bool
}

// NewPlaceRepository creates a new place repository.
func NewPlaceRepository(db DB) *PlaceRepository {
	return &PlaceRepository{db: db}
}

// probe detects the optional columns.
func (r *PlaceRepository) probe(ctx context.Context) {
	r.probeOnce.Do(func() {
		r.hasID = r.columnExists(ctx, "id")
		r.hasImageURLs = r.columnExists(ctx, "image_urls")
	})
}

// columnExists checks a column by selecting zero rows from it. Works on both
// supported drivers without touching information_schema.
func (r *PlaceRepository) columnExists(ctx context.Context, column string) bool {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM places LIMIT 0", column))
	if err != nil {
		return false
	}
	rows.Close()
	return true
}

// selectFields returns the select list matching the probed schema.
func (r *PlaceRepository) selectFields() string {
	fields := []string{
		"name", "tambon", "category",
		"COALESCE(description, '')", "COALESCE(highlight, '')",
		"latitude", "longitude", "COALESCE(image_url, '')",
	}
	if r.hasID {
		fields = append([]string{"id"}, fields...)
	}
	if r.hasImageURLs {
		fields = append(fields, "COALESCE(image_urls, '[]')")
	} else {
		fields = append(fields, "'[]'")
	}
	return strings.Join(fields, ", ")
}

// scanPlace scans one row into a Place, honoring the probed select list.
func (r *PlaceRepository) scanPlace(rows *sql.Rows) (Place, error) {
	var p Place
	var imageURLs string

	dest := make([]interface{}, 0, 10)
	if r.hasID {
		dest = append(dest, &p.ID)
	}
	dest = append(dest,
		&p.Name, &p.Tambon, &p.Category,
		&p.Description, &p.Highlight,
		&p.Latitude, &p.Longitude, &p.ImageURL,
		&imageURLs,
	)

	if err := rows.Scan(dest...); err != nil {
		return Place{}, err
	}
	p.ImageURLs = DecodeImageURLs(imageURLs)
	return p, nil
}

// buildWhere renders the shared filter conditions. Each placeholder is used
// exactly once, in order, so the same statement binds on both drivers.
func buildWhere(f SearchFilter, argIdx *int) (string, []interface{}) {
	var conds []string
	var args []interface{}

	next := func(val interface{}) string {
		args = append(args, val)
		ph := fmt.Sprintf("$%d", *argIdx)
		*argIdx++
		return ph
	}

	if f.Category != "" {
		a := next("%" + strings.ToUpper(f.Category) + "%")
		b := next("%" + strings.ToUpper(f.Category) + "%")
		conds = append(conds, fmt.Sprintf(
			"(UPPER(COALESCE(category, '')) LIKE %s OR UPPER(name) LIKE %s)", a, b))
	}

	if f.Tambon != "" {
		ph := next("%" + strings.ToUpper(f.Tambon) + "%")
		conds = append(conds, fmt.Sprintf("UPPER(tambon) LIKE %s", ph))
	}

	if len(f.KeywordsAny) > 0 {
		var kw []string
		for _, term := range f.KeywordsAny {
			pattern := "%" + strings.ToUpper(term) + "%"
			var fields []string
			for _, col := range []string{
				"name", "COALESCE(description, '')", "COALESCE(highlight, '')",
				"COALESCE(category, '')", "tambon",
			} {
				fields = append(fields, fmt.Sprintf("UPPER(%s) LIKE %s", col, next(pattern)))
			}
			kw = append(kw, "("+strings.Join(fields, " OR ")+")")
		}
		conds = append(conds, "("+strings.Join(kw, " OR ")+")")
	}

	for _, banned := range f.ExcludeCategories {
		ph := next("%" + strings.ToUpper(banned) + "%")
		conds = append(conds, fmt.Sprintf("UPPER(COALESCE(category, '')) NOT LIKE %s", ph))
	}

	if len(conds) == 0 {
		return "TRUE", nil
	}
	return strings.Join(conds, " AND "), args
}

// Search retrieves places matching the filter, ordered by name.
func (r *PlaceRepository) Search(ctx context.Context, f SearchFilter) ([]Place, error) {
	r.probe(ctx)

	limit := f.Limit
	if limit <= 0 {
		limit = 30
	}

	argIdx := 1
	where, args := buildWhere(f, &argIdx)
	query := fmt.Sprintf(
		"SELECT %s FROM places WHERE %s ORDER BY name LIMIT $%d",
		r.selectFields(), where, argIdx,
	)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search places: %w", err)
	}
	defer rows.Close()

	var places []Place
	for rows.Next() {
		p, err := r.scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

// SearchNearby retrieves places within the radius, ordered by ascending
// great-circle distance. Rows missing either coordinate are excluded. The
// non-geographic filters run in SQL; the distance itself is computed in Go so
// the statement stays portable across the sqlite and postgres drivers.
func (r *PlaceRepository) SearchNearby(ctx context.Context, f NearbyFilter) ([]Place, error) {
	r.probe(ctx)

	limit := f.Limit
	if limit <= 0 {
		limit = 30
	}

	argIdx := 1
	where, args := buildWhere(f.SearchFilter, &argIdx)
	query := fmt.Sprintf(
		"SELECT %s FROM places WHERE latitude IS NOT NULL AND longitude IS NOT NULL AND %s LIMIT $%d",
		r.selectFields(), where, argIdx,
	)
	args = append(args, nearbyFetchCap)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search places nearby: %w", err)
	}
	defer rows.Close()

	var places []Place
	for rows.Next() {
		p, err := r.scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		if !p.HasCoordinates() {
			continue
		}
		d := HaversineKm(f.Latitude, f.Longitude, p.Latitude.Float64, p.Longitude.Float64)
		if d > f.WithinKm {
			continue
		}
		dist := d
		p.DistanceKm = &dist
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(places, func(i, j int) bool {
		return *places[i].DistanceKm < *places[j].DistanceKm
	})
	if len(places) > limit {
		places = places[:limit]
	}
	return places, nil
}

// FindByName retrieves places whose name contains the fragment,
// case-insensitively, ordered by name.
func (r *PlaceRepository) FindByName(ctx context.Context, fragment string, limit int) ([]Place, error) {
	r.probe(ctx)

	if strings.TrimSpace(fragment) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(
		"SELECT %s FROM places WHERE UPPER(name) LIKE $1 ORDER BY name LIMIT $2",
		r.selectFields(),
	)

	rows, err := r.db.QueryContext(ctx, query, "%"+strings.ToUpper(fragment)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("find place by name: %w", err)
	}
	defer rows.Close()

	var places []Place
	for rows.Next() {
		p, err := r.scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

// earthRadiusKm is the mean Earth radius used for great-circle distance.
const earthRadiusKm = 6371

// HaversineKm computes the great-circle distance between two points.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// Ensure the repository satisfies the store interface.
var _ PlaceStore = (*PlaceRepository)(nil)

package storage

import (
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImageURLs(t *testing.T) {
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, DecodeImageURLs(`["a.jpg","b.jpg"]`))
	assert.Nil(t, DecodeImageURLs(`[]`))
	assert.Nil(t, DecodeImageURLs(``))

	// Malformed payloads degrade to nothing, never an error.
	assert.Nil(t, DecodeImageURLs(`{not json`))
	assert.Nil(t, DecodeImageURLs(`"just a string"`))
}

func TestPlaceJSONShape(t *testing.T) {
	p := Place{
		ID:       sql.NullInt64{Int64: 7, Valid: true},
		Name:     "คาเฟ่ชมคลื่น",
		Tambon:   "ชุมโค",
		Category: "คาเฟ่",
		Latitude: sql.NullFloat64{Float64: 10.705, Valid: true},
	}

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.EqualValues(t, 7, m["id"])
	assert.Equal(t, "คาเฟ่ชมคลื่น", m["name"])

	// Longitude was never set, so it must serialize as null, not zero.
	assert.Nil(t, m["longitude"])

	var back Place
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, p.Name, back.Name)
	assert.True(t, back.ID.Valid)
	assert.False(t, back.Longitude.Valid)
}

func TestPlaceHasCoordinates(t *testing.T) {
	var p Place
	assert.False(t, p.HasCoordinates())

	p.Latitude = sql.NullFloat64{Float64: 10.7, Valid: true}
	assert.False(t, p.HasCoordinates())

	p.Longitude = sql.NullFloat64{Float64: 99.3, Valid: true}
	assert.True(t, p.HasCoordinates())
}

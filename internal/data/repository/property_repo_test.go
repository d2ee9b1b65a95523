package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPropertyWhere(t *testing.T) {
	minPrice := 1000.0
	bedrooms := 2

	where, args := buildPropertyWhere(PropertyFilter{
		Location:  "goa",
		MinPrice:  &minPrice,
		Bedrooms:  &bedrooms,
		Amenities: []string{"wifi", "jacuzzi", "pool"},
	})

	assert.Equal(t, []any{"goa", 1000.0, 2}, args)
	assert.Contains(t, where, "p.location ILIKE '%' || $1 || '%'")
	assert.Contains(t, where, "(p.price ->> 'amount')::numeric >= $2")
	assert.Contains(t, where, "(p.specifications ->> 'bedrooms')::int = $3")
	assert.Contains(t, where, "(p.amenities ->> 'wifi')::boolean IS TRUE")
	assert.Contains(t, where, "(p.amenities ->> 'pool')::boolean IS TRUE")
	assert.False(t, strings.Contains(where, "jacuzzi"), "unknown amenities are dropped")
}

func TestBuildPropertyWhereEmpty(t *testing.T) {
	where, args := buildPropertyWhere(PropertyFilter{})
	assert.Equal(t, "WHERE p.deleted_at IS NULL", where)
	assert.Empty(t, args)
}

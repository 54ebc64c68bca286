package curated

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-poi-discovery/internal/types"
)

func TestDefault_LoadsEmbeddedCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, c, again)
}

func TestCatalog_DestinationLookupNormalizes(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for _, q := range []string{"tokyo", "Tokyo", "  TOKYO  "} {
		d, ok := c.Destination(q)
		require.True(t, ok, q)
		assert.Equal(t, "Tokyo", d.Name)
		assert.Equal(t, "Japanese Yen (¥)", d.Currency)
		assert.True(t, d.IsUsable())
	}

	d, ok := c.Destination("new york")
	require.True(t, ok)
	assert.Equal(t, "New York City", d.Name)

	_, ok = c.Destination("tok")
	assert.False(t, ok, "lookup is exact after normalization")
}

func TestCatalog_DestinationReturnsCopy(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	d, _ := c.Destination("paris")
	d.CulturalTips[0] = "mutated"

	fresh, _ := c.Destination("paris")
	assert.NotEqual(t, "mutated", fresh.CulturalTips[0])
}

func TestCatalog_Points(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	points := c.Points("paris")
	require.Len(t, points, 4)
	assert.Equal(t, "Eiffel Tower", points[0].Name)

	ids := map[string]struct{}{}
	for _, p := range points {
		ids[p.ID] = struct{}{}
		assert.NotEmpty(t, p.Category)
		assert.NotEmpty(t, p.Image)
	}
	assert.Len(t, ids, len(points))

	assert.Len(t, c.Points("New York"), 4)
	assert.Nil(t, c.Points("Barcelona"))
	assert.Nil(t, c.Points("Atlantis"))
}

func TestCatalog_PointByID(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	p, ok := c.PointByID("curated-london-3")
	require.True(t, ok)
	assert.Equal(t, "British Museum", p.Name)

	_, ok = c.PointByID("nope")
	assert.False(t, ok)
}

func TestCatalog_Alias(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	tests := map[string]string{
		"japan":          "Tokyo",
		"France":         "Paris",
		"usa":            "New York",
		"united states":  "New York",
		"UK":             "London",
		"united kingdom": "London",
		"brazil":         "São Paulo",
	}
	for q, want := range tests {
		got, ok := c.Alias(q)
		require.True(t, ok, q)
		assert.Equal(t, want, got, q)
	}

	_, ok := c.Alias("tokyo")
	assert.False(t, ok)
	assert.Contains(t, c.Countries(), "mexico")
}

func TestLoad_NormalizesCategoriesAndImages(t *testing.T) {
	doc := []byte(`
destinations:
  Lisbon:
    name: Lisbon
    description: Hills and trams.
points:
  Lisbon:
    - id: a
      name: Tram 28
      category: Transit
    - id: b
      name: Belem Tower
`)
	c, err := Load(doc)
	require.NoError(t, err)

	_, ok := c.Destination("lisbon")
	assert.True(t, ok)

	points := c.Points("LISBON")
	require.Len(t, points, 2)
	assert.Equal(t, types.CategoryOther, points[0].Category)
	assert.Equal(t, types.CategoryAttraction, points[1].Category)
	assert.Equal(t, types.DefaultPlaceImage, points[0].Image)
}

func TestLoad_RejectsBadRecords(t *testing.T) {
	_, err := Load([]byte("destinations:\n  x:\n    name: X\n"))
	assert.Error(t, err)

	_, err = Load([]byte("points:\n  x:\n    - id: a\n    - id: a\n"))
	assert.Error(t, err)

	_, err = Load([]byte("destinations: [unclosed"))
	assert.Error(t, err)
}

func TestGeneric(t *testing.T) {
	d := Generic("  Atlantis ")
	assert.Equal(t, "Atlantis", d.Name)
	assert.Contains(t, d.Description, "unique destination")
	assert.Equal(t, "Unknown", d.Country)
	assert.NotEmpty(t, d.CulturalTips)
	assert.NotEmpty(t, d.Transportation)
	assert.True(t, d.IsUsable())
}

func TestPopularCities(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	cities := c.PopularCities()
	require.NotEmpty(t, cities)
	assert.Equal(t, "Tokyo", cities[0])
	cities[0] = "mutated"
	assert.Equal(t, "Tokyo", c.PopularCities()[0])
}

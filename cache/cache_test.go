package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schema-modeler/config"
	"schema-modeler/internal/database"
)

func testConfig(enabled bool) *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{Enabled: enabled, TTLMinutes: 5},
	}
}

func testRows() []database.ColumnRow {
	return []database.ColumnRow{
		{Table: "orders", Column: "id", DataType: "integer", Position: 1},
	}
}

func TestCache_HitWithinTTL(t *testing.T) {
	c := NewCache(testConfig(true))

	c.SetColumns("public", testRows())

	rows, ok := c.GetColumns("public")
	require.True(t, ok)
	assert.Equal(t, testRows(), rows)
}

func TestCache_MissForUnknownSchema(t *testing.T) {
	c := NewCache(testConfig(true))

	c.SetColumns("public", testRows())

	_, ok := c.GetColumns("analytics")
	assert.False(t, ok)
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	c := NewCache(testConfig(true))

	base := time.Now()
	c.now = func() time.Time { return base }
	c.SetColumns("public", testRows())

	c.now = func() time.Time { return base.Add(4 * time.Minute) }
	_, ok := c.GetColumns("public")
	assert.True(t, ok)

	c.now = func() time.Time { return base.Add(6 * time.Minute) }
	_, ok = c.GetColumns("public")
	assert.False(t, ok)
}

func TestCache_DisabledNeverStores(t *testing.T) {
	c := NewCache(testConfig(false))

	c.SetColumns("public", testRows())

	_, ok := c.GetColumns("public")
	assert.False(t, ok)
}

func TestCache_Clear(t *testing.T) {
	c := NewCache(testConfig(true))

	c.SetColumns("public", testRows())
	c.Clear()

	_, ok := c.GetColumns("public")
	assert.False(t, ok)
}

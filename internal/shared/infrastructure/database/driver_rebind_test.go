package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriver_Rebind(t *testing.T) {
	query := "SELECT id FROM orders WHERE user_id = ? AND status = ?"

	assert.Equal(t, query, DriverSQLite.Rebind(query))
	assert.Equal(t, "SELECT id FROM orders WHERE user_id = $1 AND status = $2", DriverPostgres.Rebind(query))
}

func TestDriver_TimeArg(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 800, time.FixedZone("CET", 3600))

	assert.Equal(t, "2026-03-04T04:06:07.000000800Z", DriverSQLite.TimeArg(ts))
	assert.Equal(t, ts.UTC(), DriverPostgres.TimeArg(ts))
}

func TestDriver_TimeArgOrdersLexically(t *testing.T) {
	earlier := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	later := earlier.Add(500 * time.Millisecond)

	a := DriverSQLite.TimeArg(earlier).(string)
	b := DriverSQLite.TimeArg(later).(string)
	assert.Less(t, a, b)
}

func TestTime_Scan(t *testing.T) {
	want := time.Date(2026, 3, 4, 5, 6, 7, 800, time.UTC)

	var fromText Time
	require.NoError(t, fromText.Scan("2026-03-04T05:06:07.000000800Z"))
	assert.True(t, want.Equal(fromText.Time))

	var fromBytes Time
	require.NoError(t, fromBytes.Scan([]byte("2026-03-04T05:06:07.0000008Z")))
	assert.True(t, want.Equal(fromBytes.Time))

	var fromTime Time
	require.NoError(t, fromTime.Scan(want))
	assert.True(t, want.Equal(fromTime.Time))

	var bad Time
	assert.Error(t, bad.Scan(42))
	assert.Error(t, bad.Scan("yesterday"))
}

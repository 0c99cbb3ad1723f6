// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

package date_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardfolio/cardfolio/pkg/date"
)

/*
TestParse verifies the YYYY-MM-DD wire format.
*/
func TestParse(t *testing.T) {
	d, err := date.Parse("1990-05-15")
	require.NoError(t, err)
	assert.Equal(t, "1990-05-15", d.String())

	_, err = date.Parse("15/05/1990")
	assert.Error(t, err)

	_, err = date.Parse("")
	assert.Error(t, err)
}

/*
TestJSON_Roundtrip checks that a date survives marshal/unmarshal unchanged
and is encoded as a bare YYYY-MM-DD string.
*/
func TestJSON_Roundtrip(t *testing.T) {
	original := date.New(2026, time.August, 30)

	encoded, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"2026-08-30"`, string(encoded))

	var decoded date.Date
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, original.String(), decoded.String())
}

/*
TestJSON_Invalid verifies rejection of malformed payloads.
*/
func TestJSON_Invalid(t *testing.T) {
	var d date.Date
	assert.Error(t, json.Unmarshal([]byte(`"not-a-date"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`12345`), &d))
}

/*
TestScan covers the database driver interface for DATE columns.
*/
func TestScan(t *testing.T) {
	var d date.Date

	// pgx hands DATE columns over as time.Time.
	require.NoError(t, d.Scan(time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1990-05-15", d.String())

	require.NoError(t, d.Scan("2026-01-02"))
	assert.Equal(t, "2026-01-02", d.String())

	// NULL leaves the zero value.
	var nullable date.Date
	require.NoError(t, nullable.Scan(nil))
	assert.True(t, nullable.IsZero())

	assert.Error(t, d.Scan(42))
}

/*
TestValue verifies the driver.Valuer side.
*/
func TestValue(t *testing.T) {
	d := date.New(1990, time.May, 15)

	value, err := d.Value()
	require.NoError(t, err)

	asTime, ok := value.(time.Time)
	require.True(t, ok)
	assert.Equal(t, 1990, asTime.Year())
	assert.Equal(t, time.May, asTime.Month())
	assert.Equal(t, 15, asTime.Day())
}

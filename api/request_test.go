package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

func TestNormalizeDerivesValidTime(t *testing.T) {
	req := &Request{
		Model:    "HRRR",
		InitTime: time.Date(2023, 1, 1, 6, 0, 0, 0, time.UTC),
		Lead:     12 * time.Hour,
	}
	require.NoError(t, req.Normalize(testNow))
	assert.Equal(t, "hrrr", req.Model)
	assert.Equal(t, time.Date(2023, 1, 1, 18, 0, 0, 0, time.UTC), req.ValidTime)
}

func TestNormalizeDerivesInitTime(t *testing.T) {
	req := &Request{
		Model:     "gfs",
		ValidTime: time.Date(2023, 1, 1, 18, 0, 0, 0, time.UTC),
		Lead:      6 * time.Hour,
	}
	require.NoError(t, req.Normalize(testNow))
	assert.Equal(t, time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC), req.InitTime)
}

func TestNormalizeRejectsNoTime(t *testing.T) {
	req := &Request{Model: "hrrr"}
	assert.ErrorContains(t, req.Normalize(testNow), "init time or valid time")
}

func TestNormalizeRejectsInconsistentTimes(t *testing.T) {
	req := &Request{
		Model:     "hrrr",
		InitTime:  time.Date(2023, 1, 1, 6, 0, 0, 0, time.UTC),
		ValidTime: time.Date(2023, 1, 1, 7, 0, 0, 0, time.UTC),
		Lead:      12 * time.Hour,
	}
	assert.ErrorContains(t, req.Normalize(testNow), "inconsistent")
}

func TestNormalizeAcceptsConsistentTimes(t *testing.T) {
	req := &Request{
		Model:     "hrrr",
		InitTime:  time.Date(2023, 1, 1, 6, 0, 0, 0, time.UTC),
		ValidTime: time.Date(2023, 1, 1, 18, 0, 0, 0, time.UTC),
		Lead:      12 * time.Hour,
	}
	assert.NoError(t, req.Normalize(testNow))
}

func TestNormalizeRejectsFutureInit(t *testing.T) {
	req := &Request{
		Model:    "hrrr",
		InitTime: testNow.Add(time.Hour),
	}
	assert.ErrorContains(t, req.Normalize(testNow), "not in the past")
}

func TestNormalizeInitTimeBoundary(t *testing.T) {
	exact := &Request{Model: "hrrr", InitTime: testNow}
	assert.Error(t, exact.Normalize(testNow), "init equal to now is rejected")

	earlier := &Request{Model: "hrrr", InitTime: testNow.Add(-time.Second)}
	assert.NoError(t, earlier.Normalize(testNow))
}

func TestNormalizeRejectsFractionalLead(t *testing.T) {
	req := &Request{
		Model:    "hrrr",
		InitTime: time.Date(2023, 1, 1, 6, 0, 0, 0, time.UTC),
		Lead:     90 * time.Minute,
	}
	assert.ErrorContains(t, req.Normalize(testNow), "whole number of hours")
}

func TestNormalizeRejectsNegativeLead(t *testing.T) {
	req := &Request{
		Model:    "hrrr",
		InitTime: time.Date(2023, 1, 1, 6, 0, 0, 0, time.UTC),
		Lead:     -time.Hour,
	}
	assert.ErrorContains(t, req.Normalize(testNow), "negative lead")
}

func TestIdentityIsCanonical(t *testing.T) {
	a := &Request{
		Model:    "gefs",
		Product:  "pgrb2ap5",
		InitTime: time.Date(2023, 1, 1, 6, 0, 0, 0, time.UTC),
		Lead:     6 * time.Hour,
		Extra:    map[string]string{"member": "p01", "nest": "d02"},
	}
	b := &Request{
		Model:    "gefs",
		Product:  "pgrb2ap5",
		InitTime: time.Date(2023, 1, 1, 6, 0, 0, 0, time.UTC),
		Lead:     6 * time.Hour,
		Extra:    map[string]string{"nest": "d02", "member": "p01"},
	}
	assert.Equal(t, a.Identity(), b.Identity())

	b.Extra["member"] = "p02"
	assert.NotEqual(t, a.Identity(), b.Identity())
}

func TestRequestString(t *testing.T) {
	req := &Request{
		Model:    "hrrr",
		InitTime: time.Date(2023, 1, 1, 6, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "HRRR 2023-01-01 06Z F00", req.String())
}

func TestRowSize(t *testing.T) {
	closed := &Row{StartByte: 100, EndByte: 199}
	assert.Equal(t, int64(100), closed.Size(-1))

	open := &Row{StartByte: 100, EndByte: OpenEnd}
	assert.Equal(t, int64(900), open.Size(1000))
	assert.Equal(t, OpenEnd, open.Size(-1))
}

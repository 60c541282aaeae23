package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/agentic-research/gale/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hrrrIndex = `1:0:d=2023010106:REFC:entire atmosphere:anl:
2:211285:d=2023010106:RETOP:cloud top:anl:
3:401542:d=2023010106:TMP:2 m above ground:anl:
4:601999:d=2023010106:UGRD:10 m above ground:anl:
`

func TestParseWgrib2(t *testing.T) {
	rows, err := ParseWgrib2([]byte(hrrrIndex), 0)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, 1, rows[0].Message)
	assert.Equal(t, int64(0), rows[0].StartByte)
	assert.Equal(t, int64(211284), rows[0].EndByte)
	assert.Equal(t, "REFC", rows[0].Variable)
	assert.Equal(t, "entire atmosphere", rows[0].Level)
	assert.Equal(t, "anl", rows[0].ForecastTime)
	assert.Equal(t, ":REFC:entire atmosphere:anl", rows[0].SearchKey)

	ref := time.Date(2023, 1, 1, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, ref, rows[0].ReferenceTime)
	assert.Equal(t, ref, rows[0].ValidTime)

	// Final range stays open.
	assert.Equal(t, api.OpenEnd, rows[3].EndByte)
}

func TestParseWgrib2LeadShiftsValidTime(t *testing.T) {
	rows, err := ParseWgrib2([]byte(hrrrIndex), 12*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 1, 1, 18, 0, 0, 0, time.UTC), rows[0].ValidTime)
}

func TestParseWgrib2CRLFAndMissingTrailingNewline(t *testing.T) {
	data := "1:0:d=2023010106:TMP:500 mb:anl:\r\n2:100:d=2023010106:HGT:500 mb:anl:"
	rows, err := ParseWgrib2([]byte(data), 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(99), rows[0].EndByte)
}

func TestParseWgrib2MinuteResolutionRefTime(t *testing.T) {
	data := "1:0:d=202301010645:TMP:2 m above ground:anl:\n"
	rows, err := ParseWgrib2([]byte(data), 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 1, 1, 6, 45, 0, 0, time.UTC), rows[0].ReferenceTime)
}

func TestParseWgrib2SubMessages(t *testing.T) {
	data := `1:0:d=2023010106:TMP:500 mb:anl:
2:100:d=2023010106:APCP:surface:0-1 hour acc fcst:
2.1:100:d=2023010106:APCP:surface:1-2 hour acc fcst:
3:300:d=2023010106:HGT:500 mb:anl:
`
	rows, err := ParseWgrib2([]byte(data), 0)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, 2, rows[1].Message)
	assert.Equal(t, 2, rows[2].Message)
	// End bytes still chain off the raw line order.
	assert.Equal(t, int64(99), rows[1].EndByte)
}

func TestParseWgrib2DuplicateMessage(t *testing.T) {
	data := "1:0:d=2023010106:TMP:500 mb:anl:\n1:100:d=2023010106:HGT:500 mb:anl:\n"
	_, err := ParseWgrib2([]byte(data), 0)

	var bad *api.BadDialectError
	require.True(t, errors.As(err, &bad))
	assert.Equal(t, api.DialectWgrib2, bad.Dialect)
	assert.Equal(t, 2, bad.Line)
}

func TestParseWgrib2TooFewFields(t *testing.T) {
	_, err := ParseWgrib2([]byte("1:0:d=2023010106:TMP\n"), 0)

	var bad *api.BadDialectError
	require.True(t, errors.As(err, &bad))
}

func TestParseWgrib2ExtraFieldsKeptInSearchKey(t *testing.T) {
	data := "1:0:d=2023010106:APCP:surface:0-1 hour acc fcst:ens mean:\n"
	rows, err := ParseWgrib2([]byte(data), 0)
	require.NoError(t, err)
	assert.Equal(t, ":APCP:surface:0-1 hour acc fcst:ens mean", rows[0].SearchKey)
}

func TestSearchKeyDropsEmptyAndNan(t *testing.T) {
	assert.Equal(t, ":TMP:anl", searchKey([]string{"TMP", "", "nan", "anl"}))
}

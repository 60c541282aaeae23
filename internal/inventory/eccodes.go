package inventory

import (
	"fmt"
	"strconv"
	"time"

	"github.com/agentic-research/gale/api"
	"github.com/ohler55/ojg/oj"
)

// ParseEccodes parses an eccodes-dialect index: one JSON object per
// line with _offset/_length byte coordinates and descriptive keys.
// Message numbers are the 1-based line positions.
func ParseEccodes(data []byte) ([]api.Row, error) {
	lines := splitLines(data)
	rows := make([]api.Row, 0, len(lines))

	for i, line := range lines {
		v, err := oj.Parse([]byte(line))
		if err != nil {
			return nil, &api.BadDialectError{Dialect: api.DialectEccodes, Line: i + 1, Err: err}
		}
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, &api.BadDialectError{
				Dialect: api.DialectEccodes, Line: i + 1,
				Err: fmt.Errorf("line is not a JSON object"),
			}
		}

		offset, err := intField(obj, "_offset")
		if err != nil {
			return nil, &api.BadDialectError{Dialect: api.DialectEccodes, Line: i + 1, Err: err}
		}
		length, err := intField(obj, "_length")
		if err != nil {
			return nil, &api.BadDialectError{Dialect: api.DialectEccodes, Line: i + 1, Err: err}
		}

		ref, err := eccodesRefTime(obj)
		if err != nil {
			return nil, &api.BadDialectError{Dialect: api.DialectEccodes, Line: i + 1, Err: err}
		}

		step := strField(obj, "step")
		stepHours, err := strconv.Atoi(step)
		if err != nil {
			stepHours = 0
		}

		row := api.Row{
			Message:       i + 1,
			StartByte:     offset,
			EndByte:       offset + length,
			ReferenceTime: ref,
			ValidTime:     ref.Add(time.Duration(stepHours) * time.Hour),
			Param:         strField(obj, "param"),
			Levelist:      strField(obj, "levelist"),
			Levtype:       strField(obj, "levtype"),
			Number:        strField(obj, "number"),
			Domain:        strField(obj, "domain"),
			Expver:        strField(obj, "expver"),
			Class:         strField(obj, "class"),
			Type:          strField(obj, "type"),
			Stream:        strField(obj, "stream"),
			Step:          step,
		}
		row.SearchKey = searchKey([]string{
			row.Param, row.Levelist, row.Levtype, row.Number,
			row.Domain, row.Expver, row.Class, row.Type, row.Stream,
		})
		rows = append(rows, row)
	}
	return rows, nil
}

// eccodesRefTime combines the date and time keys. The time value may be
// "0", "600" or "1200" — zero-pad to four digits before parsing.
func eccodesRefTime(obj map[string]any) (time.Time, error) {
	date := strField(obj, "date")
	hhmm := strField(obj, "time")
	if date == "" {
		return time.Time{}, fmt.Errorf("missing date key")
	}
	for len(hhmm) < 4 {
		hhmm = "0" + hhmm
	}
	t, err := time.Parse("200601021504", date+hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date/time %q %q", date, hhmm)
	}
	return t, nil
}

// strField renders a JSON value as a string; numbers lose no precision
// because index metadata values are integral.
func strField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func intField(obj map[string]any, key string) (int64, error) {
	switch v := obj[key].(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad %s value %q", key, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("missing %s key", key)
	}
}

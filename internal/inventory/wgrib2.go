// Package inventory fetches and parses GRIB index files. Two dialects —
// wgrib2 colon-text and eccodes line-JSON — normalize into one row
// shape, and a regex filter over each row's search key selects messages
// for subsetting.
package inventory

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agentic-research/gale/api"
)

// ParseWgrib2 parses a wgrib2-dialect index:
//
//	<msg>:<start_byte>:d=<YYYYMMDDHH[MM]>:<variable>:<level>:<forecast>[:...]
//
// Sub-message lines ("5.1:...") keep the integer message number; exact
// duplicate message tokens mean a corrupted index and fail with
// BadDialect. CRLF and a missing trailing newline are tolerated.
func ParseWgrib2(data []byte, lead time.Duration) ([]api.Row, error) {
	lines := splitLines(data)
	rows := make([]api.Row, 0, len(lines))
	seen := make(map[string]bool, len(lines))

	for i, line := range lines {
		fields := strings.Split(line, ":")
		if len(fields) < 6 {
			return nil, &api.BadDialectError{
				Dialect: api.DialectWgrib2, Line: i + 1,
				Err: fmt.Errorf("expected at least 6 colon-separated fields, got %d", len(fields)),
			}
		}

		msgToken := strings.TrimSpace(fields[0])
		if seen[msgToken] {
			return nil, &api.BadDialectError{
				Dialect: api.DialectWgrib2, Line: i + 1,
				Err: fmt.Errorf("duplicate message number %s", msgToken),
			}
		}
		seen[msgToken] = true

		// Sub-messages are numbered like "5.1"; the integer part is the
		// containing GRIB message.
		msg, err := strconv.Atoi(strings.SplitN(msgToken, ".", 2)[0])
		if err != nil {
			return nil, &api.BadDialectError{
				Dialect: api.DialectWgrib2, Line: i + 1,
				Err: fmt.Errorf("bad message number %q", msgToken),
			}
		}

		start, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || start < 0 {
			return nil, &api.BadDialectError{
				Dialect: api.DialectWgrib2, Line: i + 1,
				Err: fmt.Errorf("bad start byte %q", fields[1]),
			}
		}

		ref, err := parseRefTime(fields[2])
		if err != nil {
			return nil, &api.BadDialectError{Dialect: api.DialectWgrib2, Line: i + 1, Err: err}
		}

		row := api.Row{
			Message:       msg,
			StartByte:     start,
			EndByte:       api.OpenEnd,
			ReferenceTime: ref,
			ValidTime:     ref.Add(lead),
			Variable:      fields[3],
			Level:         fields[4],
			ForecastTime:  fields[5],
		}
		if len(fields) > 6 {
			row.Attrs = fields[6:]
		}
		row.SearchKey = searchKey(append([]string{row.Variable, row.Level, row.ForecastTime}, row.Attrs...))
		rows = append(rows, row)
	}

	// Each message ends one byte before the next begins; the final range
	// stays open (read to end of file).
	for i := 0; i < len(rows)-1; i++ {
		rows[i].EndByte = rows[i+1].StartByte - 1
	}
	return rows, nil
}

// parseRefTime decodes the d= field, which carries 10 digits (to the
// hour) or 12 (to the minute).
func parseRefTime(field string) (time.Time, error) {
	s := strings.TrimPrefix(field, "d=")
	if len(s) == 10 {
		s += "00"
	}
	t, err := time.Parse("200601021504", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad reference time %q", field)
	}
	return t, nil
}

// searchKey joins the descriptive fields with colons, collapsing empty
// and "nan" segments, prefixed with a colon so anchored patterns like
// ":TMP:" match the first field too.
func searchKey(parts []string) string {
	kept := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" && p != "nan" {
			kept = append(kept, p)
		}
	}
	return ":" + strings.Join(kept, ":")
}

// splitLines splits index content into non-empty lines, tolerating CRLF
// endings and a missing final newline.
func splitLines(data []byte) []string {
	raw := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	lines := raw[:0]
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

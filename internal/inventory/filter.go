package inventory

import (
	"fmt"
	"io"
	"regexp"

	"github.com/agentic-research/gale/api"
	"github.com/fatih/color"
)

// Filter returns the rows whose SearchKey matches the selector regex.
// A nil-equivalent selector ("" or ":") passes everything through.
// Zero matches is not an error: a help block with example selectors for
// the dialect is written to diag and the empty table returned.
func Filter(rows []api.Row, selector string, dialect api.Dialect, diag io.Writer) ([]api.Row, error) {
	if selector == "" || selector == ":" {
		return rows, nil
	}
	re, err := regexp.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("bad search regex %q: %w", selector, err)
	}

	matched := make([]api.Row, 0, len(rows))
	for _, r := range rows {
		if re.MatchString(r.SearchKey) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 && diag != nil {
		printSearchHelp(diag, selector, dialect)
	}
	return matched, nil
}

func printSearchHelp(w io.Writer, selector string, dialect api.Dialect) {
	warn := color.New(color.FgYellow)
	warn.Fprintf(w, "No GRIB messages matched %q.\n", selector)
	fmt.Fprintln(w, "The regex is matched against each message's search key. Examples:")
	if dialect == api.DialectEccodes {
		fmt.Fprintln(w, `  ":2t:"              2-m temperature`)
		fmt.Fprintln(w, `  ":10(?:u|v):"       10-m wind components`)
		fmt.Fprintln(w, `  ":msl:"             mean sea level pressure`)
		fmt.Fprintln(w, `  ":t:850"            temperature at 850 hPa`)
	} else {
		fmt.Fprintln(w, `  ":TMP:2 m above ground:"      2-m temperature`)
		fmt.Fprintln(w, `  ":(?:U|V)GRD:10 m above"      10-m wind components`)
		fmt.Fprintln(w, `  ":500 mb:"                    all fields at 500 mb`)
		fmt.Fprintln(w, `  ":APCP:"                      accumulated precipitation`)
	}
}

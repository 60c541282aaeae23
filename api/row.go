package api

import "time"

// OpenEnd marks an open-ended byte range: the message runs to the end of
// the file. Only the final row of a wgrib2 inventory carries it.
const OpenEnd int64 = -1

// Row is one GRIB message in a parsed inventory. Both index dialects
// normalize into this shape; dialect-specific descriptive columns are
// left empty for the other dialect.
type Row struct {
	// Message is the 1-based GRIB message index within the file.
	Message int `json:"message"`
	// StartByte is the offset where the message begins.
	StartByte int64 `json:"start_byte"`
	// EndByte is the last byte of the message's range, or OpenEnd for
	// the final row of a wgrib2 inventory.
	EndByte int64 `json:"end_byte"`

	ReferenceTime time.Time `json:"reference_time"`
	ValidTime     time.Time `json:"valid_time"`

	// wgrib2 dialect columns. Attrs preserves any trailing fields beyond
	// position six verbatim.
	Variable     string   `json:"variable,omitempty"`
	Level        string   `json:"level,omitempty"`
	ForecastTime string   `json:"forecast_time,omitempty"`
	Attrs        []string `json:"attrs,omitempty"`

	// eccodes dialect columns.
	Param    string `json:"param,omitempty"`
	Levelist string `json:"levelist,omitempty"`
	Levtype  string `json:"levtype,omitempty"`
	Number   string `json:"number,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Expver   string `json:"expver,omitempty"`
	Class    string `json:"class,omitempty"`
	Type     string `json:"type,omitempty"`
	Stream   string `json:"stream,omitempty"`
	Step     string `json:"step,omitempty"`

	// SearchKey is the colon-joined descriptive string the selector regex
	// is matched against.
	SearchKey string `json:"search_key"`
}

// Size returns the byte count of the row's range. For an open-ended row
// the caller supplies the total file length; a negative total means
// unknown and yields OpenEnd.
func (r *Row) Size(total int64) int64 {
	if r.EndByte == OpenEnd {
		if total < 0 {
			return OpenEnd
		}
		return total - r.StartByte
	}
	return r.EndByte - r.StartByte + 1
}

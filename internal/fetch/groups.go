// Package fetch is the subset downloader: it coalesces selected
// inventory rows into contiguous byte-range groups, fetches the groups
// in parallel from a mirror or a local file, and assembles them in
// message order into one valid GRIB2 stream.
package fetch

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/gale/api"
)

// Group is one fetch descriptor: a maximal run of consecutive message
// numbers reduced to a single byte range.
type Group struct {
	// Messages are the GRIB message numbers in the run, ascending.
	Messages []int
	Start    int64
	// End is api.OpenEnd when the run includes the file's final,
	// open-ended message.
	End int64
}

// Coalesce sorts the selected rows by message number and merges maximal
// runs of consecutive messages into groups. Groups whose
// reduced range inverts — seen with GRIB sub-messages in some RAP
// products — are returned separately for the caller to warn about.
func Coalesce(rows []api.Row) (groups, skipped []Group) {
	if len(rows) == 0 {
		return nil, nil
	}

	byMessage := make(map[int][]api.Row, len(rows))
	set := roaring.New()
	for _, r := range rows {
		byMessage[r.Message] = append(byMessage[r.Message], r)
		set.Add(uint32(r.Message))
	}

	messages := set.ToArray()
	runStart := 0
	flush := func(run []uint32) {
		g := buildGroup(run, byMessage)
		if g.End != api.OpenEnd && g.End < g.Start {
			skipped = append(skipped, g)
			return
		}
		groups = append(groups, g)
	}
	for i := 1; i <= len(messages); i++ {
		if i == len(messages) || messages[i] != messages[i-1]+1 {
			flush(messages[runStart:i])
			runStart = i
		}
	}
	return groups, skipped
}

func buildGroup(run []uint32, byMessage map[int][]api.Row) Group {
	g := Group{Start: -1, End: 0}
	for _, m := range run {
		g.Messages = append(g.Messages, int(m))
		for _, r := range byMessage[int(m)] {
			if g.Start < 0 || r.StartByte < g.Start {
				g.Start = r.StartByte
			}
			if g.End != api.OpenEnd {
				if r.EndByte == api.OpenEnd {
					g.End = api.OpenEnd
				} else if r.EndByte > g.End {
					g.End = r.EndByte
				}
			}
		}
	}
	sort.Ints(g.Messages)
	return g
}

// SelectedMessages returns the sorted distinct message numbers of a
// selection, the input to the subset filename hash.
func SelectedMessages(rows []api.Row) []int {
	set := roaring.New()
	for _, r := range rows {
		set.Add(uint32(r.Message))
	}
	out := make([]int, 0, set.GetCardinality())
	it := set.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

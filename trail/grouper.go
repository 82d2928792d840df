package trail

import (
	"fmt"
	"sort"

	"github.com/charsyam/traildb/errs"
	"github.com/charsyam/traildb/format"
)

// Grouper walks the per-actor back-linked event chains, materializes each
// actor's forward order, delta-encodes timestamps and spills the result as a
// flat record stream.
//
// The scratch buffer is reused across actors and only ever grows; it is
// released with the grouper once the spill is complete.
type Grouper struct {
	scratch []GroupedRecord

	invalid uint64
	total   uint64

	maxDelta uint32
}

// NewGrouper creates a grouper.
func NewGrouper() *Grouper {
	return &Grouper{}
}

// Group processes every actor in cookie order, appending grouped records to
// the sink, and returns the maximum valid timestamp delta.
//
// baseTimestamp (the corpus minimum) seeds each actor's running previous
// timestamp, so the first delta of every trail is relative to the corpus
// start. Records whose delta exceeds the 24-bit budget are emitted with the
// invalid marker and do not advance the running timestamp.
//
// After all actors, the invalid gate fires with ErrTooManyInvalidDeltas when
// invalid records exceed format.MaxInvalidRatio of the cumulative record
// count.
func (g *Grouper) Group(input *Input, baseTimestamp uint32, sink *spillWriter) (uint32, error) {
	for cookie := range input.CookiePointers {
		if err := g.groupActor(input, uint32(cookie), baseTimestamp, sink); err != nil {
			return 0, err
		}
	}

	if g.total > 0 {
		ratio := float64(g.invalid) / float64(g.total)
		if ratio > format.MaxInvalidRatio {
			return 0, fmt.Errorf("%w: %d of %d records (%.4f)",
				errs.ErrTooManyInvalidDeltas, g.invalid, g.total, ratio)
		}
	}

	return g.maxDelta, nil
}

// groupActor materializes, sorts and delta-encodes one actor's chain.
func (g *Grouper) groupActor(input *Input, cookie uint32, baseTimestamp uint32, sink *spillWriter) error {
	g.scratch = g.scratch[:0]

	// The chain anchors at the last event and links backwards; walking it
	// yields reverse insertion order.
	idx := input.CookiePointers[cookie]
	for {
		ev := &input.Events[idx]
		g.scratch = append(g.scratch, GroupedRecord{
			CookieID:         cookie,
			ItemZero:         ev.ItemZero,
			NumItems:         ev.NumItems,
			EncodedTimestamp: ev.Timestamp, // raw until delta encoding below
		})
		if ev.PrevEventIdx == 0 {
			break
		}
		idx = ev.PrevEventIdx - 1
	}

	// Restore insertion order so equal timestamps keep it through the sort.
	for i, j := 0, len(g.scratch)-1; i < j; i, j = i+1, j-1 {
		g.scratch[i], g.scratch[j] = g.scratch[j], g.scratch[i]
	}

	sort.SliceStable(g.scratch, func(i, j int) bool {
		return g.scratch[i].EncodedTimestamp < g.scratch[j].EncodedTimestamp
	})

	prevTs := baseTimestamp
	for i := range g.scratch {
		rec := &g.scratch[i]
		ts := rec.EncodedTimestamp

		delta := ts - prevTs
		if ts >= prevTs && delta < format.MaxTimestampDelta {
			rec.EncodedTimestamp = delta << 8
			if delta > g.maxDelta {
				g.maxDelta = delta
			}
			prevTs = ts
		} else {
			// Delta over budget (or a pre-base timestamp): mark invalid,
			// keep the running timestamp.
			rec.EncodedTimestamp = invalidMarker
			g.invalid++
		}
		g.total++

		if err := sink.Append(*rec); err != nil {
			return err
		}
	}

	return nil
}

// InvalidRecords returns the number of invalid records seen so far.
func (g *Grouper) InvalidRecords() uint64 {
	return g.invalid
}

// TotalRecords returns the cumulative grouped-record count.
func (g *Grouper) TotalRecords() uint64 {
	return g.total
}

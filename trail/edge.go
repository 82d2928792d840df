package trail

import (
	"github.com/charsyam/traildb/format"
)

// EdgeEncoder reduces each event to the items whose field value changed from
// the previous event of the same actor.
//
// State is per-actor: Reset zeroes the previous-value vector at every actor
// boundary, so the first event of a trail emits all of its non-zero items.
// The output buffer is reused across events.
type EdgeEncoder struct {
	prev []format.Item
	out  []format.Item
}

// NewEdgeEncoder creates an edge encoder for numFields fields.
func NewEdgeEncoder(numFields uint32) *EdgeEncoder {
	return &EdgeEncoder{
		prev: make([]format.Item, numFields),
	}
}

// Reset clears the previous-value vector for a new actor.
func (e *EdgeEncoder) Reset() {
	for i := range e.prev {
		e.prev[i] = 0
	}
}

// Encode returns the items to emit for one grouped record.
//
// Invalid records yield an empty set. Otherwise the timestamp delta item is
// emitted first, unconditionally: it anchors the event on the decode side,
// so it is never diffed away even when two consecutive deltas are equal.
// Every other item is emitted only when it differs from the field's previous
// value.
//
// The returned slice is valid until the next call.
func (e *EdgeEncoder) Encode(items []format.Item, rec GroupedRecord) []format.Item {
	e.out = e.out[:0]
	if !rec.Valid() {
		return e.out
	}

	tsItem := format.NewItem(format.TimestampField, rec.Delta())
	e.out = append(e.out, tsItem)
	e.prev[format.TimestampField] = tsItem

	for _, it := range items[rec.ItemZero : rec.ItemZero+uint64(rec.NumItems)] {
		f := it.Field()
		if e.prev[f] != it {
			e.out = append(e.out, it)
			e.prev[f] = it
		}
	}

	return e.out
}

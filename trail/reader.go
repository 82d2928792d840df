package trail

import (
	"fmt"

	"github.com/charsyam/traildb/encoding"
	"github.com/charsyam/traildb/errs"
	"github.com/charsyam/traildb/format"
)

// DecodedEvent is one event recovered from a trail: the timestamp delta and
// the edge-encoded items, in emission order.
type DecodedEvent struct {
	Delta uint32
	Items []format.Item
}

// DecodeTrail replays one actor's trail bytes against a codebook decoder.
//
// This is the verification path the encoder's own tests use; the full
// decode-side database (value lookup, cursors) stays out of scope. Events
// are delimited by timestamp-field items: each field-0 item starts a new
// event.
func DecodeTrail(trailBytes []byte, dec *encoding.Decoder) ([]DecodedEvent, error) {
	if len(trailBytes) == 0 {
		return nil, nil
	}

	r := encoding.NewBitReader(trailBytes)
	residual, ok := r.ReadBits(trailResidualBits)
	if !ok {
		return nil, fmt.Errorf("%w: trail shorter than residual header", errs.ErrInvalidRecord)
	}

	totalBits := uint64(len(trailBytes)) * 8
	payloadEnd := totalBits - residual

	var events []DecodedEvent
	for r.Offset() < payloadEnd || dec.HasPending() {
		it, err := dec.Next(r)
		if err != nil {
			return nil, err
		}

		if it.Field() == format.TimestampField {
			events = append(events, DecodedEvent{Delta: it.Value()})
			continue
		}
		if len(events) == 0 {
			return nil, fmt.Errorf("%w: item before first timestamp gram", errs.ErrInvalidRecord)
		}
		last := &events[len(events)-1]
		last.Items = append(last.Items, it)
	}

	return events, nil
}

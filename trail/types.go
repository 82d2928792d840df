package trail

import (
	"github.com/charsyam/traildb/endian"
	"github.com/charsyam/traildb/format"
)

// Event is one input event as produced by the event-graph loader.
//
// Events of different actors may interleave in the input array; each actor's
// trail is the back-linked chain anchored at its cookie pointer.
type Event struct {
	// Timestamp is the raw event time.
	Timestamp uint32
	// ItemZero indexes the first of the event's items in the items array.
	ItemZero uint64
	// NumItems is the number of items belonging to the event.
	NumItems uint32
	// PrevEventIdx is 0 for the first event of an actor, otherwise 1 plus
	// the index of the actor's previous event.
	PrevEventIdx uint64
}

// Input is the packed event graph handed to Encode.
type Input struct {
	// CookiePointers[c] is the index of the last event of actor c.
	CookiePointers []uint64
	// Events is consumed by the encoder: it is released as soon as the
	// grouping pass has spilled it to disk.
	Events []Event
	// Items is the shared item array indexed by Event.ItemZero.
	Items []format.Item
	// NumFields is the number of fields including the timestamp field 0.
	NumFields uint32
	// FieldCardinalities[f] is the maximum value id used in field f.
	FieldCardinalities []uint64
}

// NumCookies returns the number of actors.
func (in *Input) NumCookies() uint64 {
	return uint64(len(in.CookiePointers))
}

// GroupedRecord is one spilled event: grouped per actor, sorted by time and
// delta-encoded.
//
// The low byte of EncodedTimestamp discriminates validity: 0 means valid
// with the delta in the bits above, 1 marks a record whose delta exceeded
// the 24-bit budget. Downstream passes skip invalid records with a single
// mask but the records still consume their slot in the counts.
type GroupedRecord struct {
	CookieID         uint32
	ItemZero         uint64
	NumItems         uint32
	EncodedTimestamp uint32
}

// RecordSize is the on-disk size of one grouped record.
const RecordSize = 4 + 8 + 4 + 4

const invalidMarker = 1

// Valid reports whether the record carries a usable delta.
func (r GroupedRecord) Valid() bool {
	return r.EncodedTimestamp&0xFF == 0
}

// Delta returns the encoded timestamp delta of a valid record.
func (r GroupedRecord) Delta() uint32 {
	return r.EncodedTimestamp >> 8
}

// appendRecord serializes a record in the spill layout.
func appendRecord(engine endian.EndianEngine, buf []byte, r GroupedRecord) []byte {
	buf = engine.AppendUint32(buf, r.CookieID)
	buf = engine.AppendUint64(buf, r.ItemZero)
	buf = engine.AppendUint32(buf, r.NumItems)
	buf = engine.AppendUint32(buf, r.EncodedTimestamp)

	return buf
}

// parseRecord deserializes one record from a RecordSize-byte slice.
func parseRecord(engine endian.EndianEngine, data []byte) GroupedRecord {
	return GroupedRecord{
		CookieID:         engine.Uint32(data[0:4]),
		ItemZero:         engine.Uint64(data[4:12]),
		NumItems:         engine.Uint32(data[12:16]),
		EncodedTimestamp: engine.Uint32(data[16:20]),
	}
}

// TimestampRange computes the minimum and maximum raw timestamp over the
// event array in one scan.
//
// An empty input yields (math.MaxUint32, 0); callers validate non-emptiness
// before encoding, so that shape is a documented precondition rather than an
// error.
func TimestampRange(events []Event) (minTs uint32, maxTs uint32) {
	minTs = ^uint32(0)
	maxTs = 0
	for i := range events {
		ts := events[i].Timestamp
		if ts < minTs {
			minTs = ts
		}
		if ts > maxTs {
			maxTs = ts
		}
	}

	return minTs, maxTs
}

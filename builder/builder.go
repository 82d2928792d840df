// Package builder constructs the packed event graph the trail encoder
// consumes.
//
// A Builder accepts (cookie, timestamp, values) rows in any order, interns
// cookie keys and field values, and maintains the per-actor back-links the
// grouper later walks. Cookies are identified by their xxHash64; two
// distinct keys hashing to the same identity abort the build rather than
// silently merging two trails.
package builder

import (
	"fmt"

	"github.com/charsyam/traildb/errs"
	"github.com/charsyam/traildb/format"
	"github.com/charsyam/traildb/internal/collision"
	"github.com/charsyam/traildb/internal/hash"
	"github.com/charsyam/traildb/trail"
)

// Builder accumulates events into a packed graph.
//
// Note: the Builder is NOT thread-safe and NOT reusable after Finish.
type Builder struct {
	fieldNames []string
	lexicons   []*lexicon // indexed by field-1; field 0 is the timestamp

	cookieIndex map[uint64]uint32 // cookie hash -> cookie id
	cookieOrder []uint64          // cookie id -> hash, first-seen order
	tracker     *collision.Tracker

	events         []trail.Event
	items          []format.Item
	cookiePointers []uint64

	finished bool
}

// NewBuilder creates a builder for the given value fields.
//
// fieldNames name fields 1..len(fieldNames); field 0 is always the
// timestamp. The field count must fit the item field budget.
func NewBuilder(fieldNames []string) (*Builder, error) {
	if len(fieldNames) >= format.MaxFields {
		return nil, fmt.Errorf("%w: %d value fields", errs.ErrFieldOverflow, len(fieldNames))
	}

	lexicons := make([]*lexicon, len(fieldNames))
	for i := range lexicons {
		lexicons[i] = newLexicon()
	}

	return &Builder{
		fieldNames:  fieldNames,
		lexicons:    lexicons,
		cookieIndex: make(map[uint64]uint32),
		tracker:     collision.NewTracker(),
	}, nil
}

// NumFields returns the field count including the timestamp field.
func (b *Builder) NumFields() uint32 {
	return uint32(len(b.fieldNames)) + 1
}

// AddEvent appends one event for a cookie.
//
// values holds one value per declared field, positionally; an empty string
// means the field is absent from this event and contributes no item.
func (b *Builder) AddEvent(cookie string, timestamp uint32, values []string) error {
	if b.finished {
		return errs.ErrBuilderFinished
	}
	if len(values) != len(b.fieldNames) {
		return fmt.Errorf("expected %d values, got %d", len(b.fieldNames), len(values))
	}

	cookieID, err := b.internCookie(cookie)
	if err != nil {
		return err
	}

	itemZero := uint64(len(b.items))
	var numItems uint32
	for i, v := range values {
		if v == "" {
			continue
		}
		field := uint32(i) + 1
		valueID, err := b.lexicons[i].intern(v)
		if err != nil {
			return fmt.Errorf("field %q: %w", b.fieldNames[i], err)
		}
		b.items = append(b.items, format.NewItem(field, valueID))
		numItems++
	}

	prev := b.cookiePointers[cookieID]
	b.events = append(b.events, trail.Event{
		Timestamp:    timestamp,
		ItemZero:     itemZero,
		NumItems:     numItems,
		PrevEventIdx: prev,
	})
	// Back-link bias: 0 means no predecessor, so pointers store 1+index.
	b.cookiePointers[cookieID] = uint64(len(b.events))

	return nil
}

// internCookie resolves a cookie key to its dense id, registering new
// cookies in first-seen order.
func (b *Builder) internCookie(cookie string) (uint32, error) {
	h := hash.ID(cookie)
	seen, err := b.tracker.Track(cookie, h)
	if err != nil {
		return 0, err
	}
	if seen {
		return b.cookieIndex[h], nil
	}

	id := uint32(len(b.cookieOrder))
	b.cookieIndex[h] = id
	b.cookieOrder = append(b.cookieOrder, h)
	b.cookiePointers = append(b.cookiePointers, 0)

	return id, nil
}

// NumEvents returns the number of events added so far.
func (b *Builder) NumEvents() uint64 {
	return uint64(len(b.events))
}

// NumCookies returns the number of distinct cookies seen so far.
func (b *Builder) NumCookies() uint64 {
	return uint64(len(b.cookieOrder))
}

// Finish packs the accumulated graph into an encoder input.
//
// The builder is unusable afterwards. Cookie pointers are rebased from the
// 1-biased form used during building to plain event indices.
func (b *Builder) Finish() (*trail.Input, error) {
	if b.finished {
		return nil, errs.ErrBuilderFinished
	}
	if len(b.events) == 0 {
		return nil, errs.ErrNoEvents
	}
	b.finished = true

	pointers := make([]uint64, len(b.cookiePointers))
	for i, p := range b.cookiePointers {
		pointers[i] = p - 1
	}

	cards := make([]uint64, b.NumFields())
	for i, lex := range b.lexicons {
		cards[i+1] = uint64(lex.maxID())
	}

	return &trail.Input{
		CookiePointers:     pointers,
		Events:             b.events,
		Items:              b.items,
		NumFields:          b.NumFields(),
		FieldCardinalities: cards,
	}, nil
}

package builder

import (
	"github.com/charsyam/traildb/errs"
	"github.com/charsyam/traildb/format"
)

// lexicon interns one field's values into dense ids.
//
// Ids start at 1; 0 is reserved for "absent", matching the zeroed previous
// vector the edge encoder diffs against.
type lexicon struct {
	ids  map[string]uint32
	next uint32
}

func newLexicon() *lexicon {
	return &lexicon{
		ids:  make(map[string]uint32),
		next: 1,
	}
}

// intern returns the id for a value, assigning the next id on first sight.
func (l *lexicon) intern(value string) (uint32, error) {
	if id, ok := l.ids[value]; ok {
		return id, nil
	}

	if l.next > format.MaxValue {
		return 0, errs.ErrValueOverflow
	}

	id := l.next
	l.ids[value] = id
	l.next++

	return id, nil
}

// maxID returns the highest id assigned, 0 when the lexicon is empty.
func (l *lexicon) maxID() uint32 {
	return l.next - 1
}

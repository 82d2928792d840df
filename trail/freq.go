package trail

import (
	"errors"
	"io"

	"github.com/charsyam/traildb/encoding"
	"github.com/charsyam/traildb/format"
)

// forEachRecord streams one full spill pass, tracking actor boundaries: the
// edge encoder is reset whenever the cookie id changes.
func forEachRecord(r *spillReader, edge *EdgeEncoder, items []format.Item,
	fn func(rec GroupedRecord, emitted []format.Item),
) error {
	first := true
	var curCookie uint32

	for {
		rec, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return err
		}

		if first || rec.CookieID != curCookie {
			edge.Reset()
			curCookie = rec.CookieID
			first = false
		}

		fn(rec, edge.Encode(items, rec))
	}
}

// collectUnigrams runs the first frequency pass: every edge-emitted item,
// including the per-event delta item, is tallied.
func collectUnigrams(r *spillReader, items []format.Item, numFields uint32) (encoding.UnigramFreqs, error) {
	freqs := make(encoding.UnigramFreqs)
	edge := NewEdgeEncoder(numFields)

	err := forEachRecord(r, edge, items, func(_ GroupedRecord, emitted []format.Item) {
		for _, it := range emitted {
			freqs.Add(it)
		}
	})
	if err != nil {
		return nil, err
	}

	return freqs, nil
}

// countBigramCandidates runs the builder's candidate pass over the spill.
func countBigramCandidates(r *spillReader, items []format.Item, numFields uint32, gb *encoding.GramBuilder) error {
	edge := NewEdgeEncoder(numFields)

	return forEachRecord(r, edge, items, func(_ GroupedRecord, emitted []format.Item) {
		gb.CountEvent(emitted)
	})
}

// tallyGrams runs the final frequency pass: each event's deterministic gram
// covering is tallied, producing the frequencies the codebook is built from.
func tallyGrams(r *spillReader, items []format.Item, numFields uint32, gb *encoding.GramBuilder) (map[format.Gram]uint64, error) {
	gramFreqs := make(map[format.Gram]uint64)
	edge := NewEdgeEncoder(numFields)
	var grams []format.Gram

	err := forEachRecord(r, edge, items, func(_ GroupedRecord, emitted []format.Item) {
		grams = gb.ChooseGrams(emitted, grams)
		for _, g := range grams {
			gramFreqs[g]++
		}
	})
	if err != nil {
		return nil, err
	}

	return gramFreqs, nil
}

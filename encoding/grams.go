package encoding

import (
	"sort"

	"github.com/charsyam/traildb/format"
)

const (
	// CandidateUnigrams is how many of the most frequent unigrams are
	// considered as bigram halves. Pair counting is quadratic per event, so
	// the candidate set stays small.
	CandidateUnigrams = 128

	// MinBigramFreq drops bigram candidates too rare to earn a codeword.
	MinBigramFreq = 2
)

// UnigramFreqs tallies how often each edge-encoded item occurs, including
// the per-event timestamp delta item.
type UnigramFreqs map[format.Item]uint64

// Add tallies one emitted item.
func (u UnigramFreqs) Add(it format.Item) {
	u[it]++
}

// Total returns the sum of all unigram frequencies.
func (u UnigramFreqs) Total() uint64 {
	var total uint64
	for _, f := range u {
		total += f
	}

	return total
}

// topItems returns the k most frequent items, frequency descending with item
// value ascending as the tiebreak.
func (u UnigramFreqs) topItems(k int) []format.Item {
	items := make([]format.Item, 0, len(u))
	for it := range u {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		fi, fj := u[items[i]], u[items[j]]
		if fi != fj {
			return fi > fj
		}

		return items[i] < items[j]
	})

	if len(items) > k {
		items = items[:k]
	}

	return items
}

// GramBuilder discovers high-value bigrams and produces per-event gram
// coverings.
//
// Usage is three-phased, mirroring the spill passes that feed it:
//
//  1. CountEvent per event to tally co-occurring candidate pairs.
//  2. SelectBigrams once to rank candidates and fix the bigram set.
//  3. ChooseGrams per event, in both the frequency-tally pass and the trail
//     write pass; the covering is deterministic, so both passes see identical
//     grams.
type GramBuilder struct {
	unigrams   UnigramFreqs
	candidates map[format.Gram]uint64
	inTop      map[format.Item]struct{}
	selected   map[format.Gram]struct{}

	// covered is the per-event scratch, reused across events.
	covered []bool
}

// NewGramBuilder creates a builder seeded with the unigram frequencies of a
// completed first pass.
func NewGramBuilder(unigrams UnigramFreqs) *GramBuilder {
	top := unigrams.topItems(CandidateUnigrams)
	inTop := make(map[format.Item]struct{}, len(top))
	for _, it := range top {
		inTop[it] = struct{}{}
	}

	return &GramBuilder{
		unigrams:   unigrams,
		candidates: make(map[format.Gram]uint64),
		inTop:      inTop,
		selected:   make(map[format.Gram]struct{}),
	}
}

// CountEvent tallies every candidate pair in one event's edge-encoded item
// set. A pair is a candidate when both items rank in the top unigrams and
// their fields differ.
func (b *GramBuilder) CountEvent(items []format.Item) {
	for i := 0; i < len(items); i++ {
		if _, ok := b.inTop[items[i]]; !ok {
			continue
		}
		for j := i + 1; j < len(items); j++ {
			if items[j].Field() == items[i].Field() {
				continue
			}
			if _, ok := b.inTop[items[j]]; !ok {
				continue
			}
			b.candidates[format.Bigram(items[i], items[j])]++
		}
	}
}

// SelectBigrams ranks the counted candidates and fixes the bigram set.
//
// Candidates score by freq(bigram)/(freq(a)+freq(b)): a pair that almost
// always co-occurs with its halves is worth a merged codeword, a pair that
// rarely does is not. Ranking is deterministic (score descending, gram value
// ascending) and the set is capped at budget so the codebook never overflows.
func (b *GramBuilder) SelectBigrams(budget int) {
	if budget <= 0 || len(b.candidates) == 0 {
		return
	}

	type scored struct {
		gram  format.Gram
		score float64
	}
	ranked := make([]scored, 0, len(b.candidates))
	for g, f := range b.candidates {
		if f < MinBigramFreq {
			continue
		}
		fa := b.unigrams[g.First()]
		fb := b.unigrams[g.Second()]
		if fa+fb == 0 {
			continue
		}
		ranked = append(ranked, scored{gram: g, score: float64(f) / float64(fa+fb)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}

		return ranked[i].gram < ranked[j].gram
	})

	if len(ranked) > budget {
		ranked = ranked[:budget]
	}
	for _, s := range ranked {
		b.selected[s.gram] = struct{}{}
	}
}

// SelectedBigrams returns the size of the fixed bigram set.
func (b *GramBuilder) SelectedBigrams() int {
	return len(b.selected)
}

// ChooseGrams produces the gram covering for one event's edge-encoded item
// set, appending to out and returning it.
//
// Guarantees:
//   - every item is covered by exactly one gram;
//   - the gram covering items[0] (the timestamp delta item) comes first;
//   - bigrams only pair items whose fields differ.
//
// The covering is greedy in item order: each uncovered item pairs with the
// item right after it when that item has a higher field id and the pair is a
// selected bigram, else becomes a unigram. A bigram decodes lower-field half
// first, so decoding yields the items in their original order.
func (b *GramBuilder) ChooseGrams(items []format.Item, out []format.Gram) []format.Gram {
	out = out[:0]
	n := len(items)
	if n == 0 {
		return out
	}

	if cap(b.covered) < n {
		b.covered = make([]bool, n)
	}
	covered := b.covered[:n]
	for i := range covered {
		covered[i] = false
	}

	for i := 0; i < n; i++ {
		if covered[i] {
			continue
		}
		covered[i] = true

		paired := false
		if j := i + 1; j < n && items[j].Field() > items[i].Field() {
			bg := format.Bigram(items[i], items[j])
			if _, ok := b.selected[bg]; ok {
				out = append(out, bg)
				covered[j] = true
				paired = true
			}
		}
		if !paired {
			out = append(out, format.Unigram(items[i]))
		}
	}

	return out
}

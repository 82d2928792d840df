package encoding

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charsyam/traildb/format"
)

func item(field, value uint32) format.Item {
	return format.NewItem(field, value)
}

func TestUnigramFreqs_AddAndTotal(t *testing.T) {
	freqs := make(UnigramFreqs)
	freqs.Add(item(1, 1))
	freqs.Add(item(1, 1))
	freqs.Add(item(2, 5))

	require.Equal(t, uint64(2), freqs[item(1, 1)])
	require.Equal(t, uint64(1), freqs[item(2, 5)])
	require.Equal(t, uint64(3), freqs.Total())
}

func TestGramBuilder_NoBigramsWithoutCounting(t *testing.T) {
	freqs := UnigramFreqs{item(1, 1): 5, item(2, 2): 5}
	gb := NewGramBuilder(freqs)

	items := []format.Item{item(0, 3), item(1, 1), item(2, 2)}
	grams := gb.ChooseGrams(items, nil)

	require.Len(t, grams, 3)
	for i, g := range grams {
		require.False(t, g.IsBigram())
		require.Equal(t, items[i], g.First())
	}
}

func TestGramBuilder_SelectsCoOccurringPair(t *testing.T) {
	a, b := item(1, 1), item(2, 2)
	freqs := UnigramFreqs{a: 10, b: 10, item(0, 0): 10}
	gb := NewGramBuilder(freqs)

	ev := []format.Item{item(0, 0), a, b}
	for i := 0; i < 10; i++ {
		gb.CountEvent(ev)
	}
	gb.SelectBigrams(100)

	require.Positive(t, gb.SelectedBigrams())

	grams := gb.ChooseGrams(ev, nil)
	// The delta item pairs with a (first candidate in item order), or stays
	// a unigram; either way every item is covered exactly once.
	var covered []format.Item
	for _, g := range grams {
		covered = append(covered, g.First())
		if g.IsBigram() {
			covered = append(covered, g.Second())
		}
	}
	require.ElementsMatch(t, ev, covered)
}

func TestGramBuilder_FirstGramCoversTimestamp(t *testing.T) {
	a, b := item(1, 1), item(2, 2)
	ts := item(0, 7)
	freqs := UnigramFreqs{a: 10, b: 10, ts: 10}
	gb := NewGramBuilder(freqs)

	ev := []format.Item{ts, a, b}
	for i := 0; i < 5; i++ {
		gb.CountEvent(ev)
	}
	gb.SelectBigrams(100)

	grams := gb.ChooseGrams(ev, nil)
	require.NotEmpty(t, grams)
	require.Equal(t, ts, grams[0].First())
}

func TestGramBuilder_BigramsNeverShareField(t *testing.T) {
	a, b := item(1, 1), item(1, 2)
	freqs := UnigramFreqs{a: 10, b: 10}
	gb := NewGramBuilder(freqs)

	ev := []format.Item{a, b}
	for i := 0; i < 10; i++ {
		gb.CountEvent(ev)
	}
	gb.SelectBigrams(100)

	require.Zero(t, gb.SelectedBigrams())

	grams := gb.ChooseGrams(ev, nil)
	require.Len(t, grams, 2)
	require.False(t, grams[0].IsBigram())
	require.False(t, grams[1].IsBigram())
}

func TestGramBuilder_MinFrequencyGate(t *testing.T) {
	a, b := item(1, 1), item(2, 2)
	freqs := UnigramFreqs{a: 1, b: 1}
	gb := NewGramBuilder(freqs)

	// A single co-occurrence is below MinBigramFreq.
	gb.CountEvent([]format.Item{a, b})
	gb.SelectBigrams(100)

	require.Zero(t, gb.SelectedBigrams())
}

func TestGramBuilder_BudgetCapsSelection(t *testing.T) {
	freqs := make(UnigramFreqs)
	var events [][]format.Item
	for v := uint32(1); v <= 10; v++ {
		a, b := item(1, v), item(2, v)
		freqs[a] = 10
		freqs[b] = 10
		events = append(events, []format.Item{a, b})
	}

	gb := NewGramBuilder(freqs)
	for i := 0; i < 5; i++ {
		for _, ev := range events {
			gb.CountEvent(ev)
		}
	}
	gb.SelectBigrams(3)

	require.Equal(t, 3, gb.SelectedBigrams())
}

func TestGramBuilder_EmptyEvent(t *testing.T) {
	gb := NewGramBuilder(UnigramFreqs{})
	require.Empty(t, gb.ChooseGrams(nil, nil))
}

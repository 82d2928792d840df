package trail

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charsyam/traildb/encoding"
	"github.com/charsyam/traildb/errs"
	"github.com/charsyam/traildb/format"
	"github.com/charsyam/traildb/internal/options"
	"github.com/charsyam/traildb/section"
)

// Output file names under the encode root.
const (
	TrailsFileName   = "trails.data"
	CodebookFileName = "trails.codebook"
	InfoFileName     = "info"
)

// Encoder drives the full pipeline for one or more encode invocations.
//
// Note: the Encoder is NOT thread-safe. One encode runs to completion on the
// calling goroutine; the only blocking operations are file I/O.
type Encoder struct {
	cfg *EncoderConfig
}

// NewEncoder creates an encoder with the given options.
func NewEncoder(opts ...EncoderOption) (*Encoder, error) {
	cfg := NewEncoderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Encoder{cfg: cfg}, nil
}

// Encode transforms the event graph into trails.data, trails.codebook and
// info under root.
//
// The input's event array is consumed: it is released as soon as the
// grouping pass has spilled it, so callers must not touch input.Events after
// Encode returns. The temporary grouped file is removed on every exit path;
// partially written outputs are left behind on failure.
func (e *Encoder) Encode(input *Input, root string) error {
	if len(input.Events) == 0 || input.NumCookies() == 0 {
		return errs.ErrNoEvents
	}

	minTs, maxTs := TimestampRange(input.Events)

	spillPath := filepath.Join(root, fmt.Sprintf("tmp.grouped.%d", os.Getpid()))
	defer os.Remove(spillPath)

	maxDelta, numEvents, err := e.spillGrouped(input, minTs, spillPath)
	if err != nil {
		return err
	}

	// The grouped file now carries everything downstream passes need.
	input.Events = nil

	info := section.Info{
		NumCookies:        input.NumCookies(),
		NumEvents:         numEvents,
		MinTimestamp:      minTs,
		MaxTimestamp:      maxTs,
		MaxTimestampDelta: maxDelta,
	}
	if err := e.writeInfo(filepath.Join(root, InfoFileName), info); err != nil {
		return err
	}

	unigrams, err := e.unigramPass(spillPath, input)
	if err != nil {
		return err
	}

	gb, gramFreqs, err := e.gramPass(spillPath, input, unigrams)
	if err != nil {
		return err
	}

	cb, err := encoding.BuildCodebook(gramFreqs)
	if err != nil {
		return err
	}
	fstats := encoding.NewFieldStats(input.FieldCardinalities, input.NumFields, maxDelta)

	if err := e.trailPass(spillPath, filepath.Join(root, TrailsFileName), input, gb, cb, fstats); err != nil {
		return err
	}

	codebookPath := filepath.Join(root, CodebookFileName)
	if err := os.WriteFile(codebookPath, section.EncodeCodebook(cb, fstats), 0o644); err != nil {
		return fmt.Errorf("write codebook: %w", err)
	}

	return nil
}

// spillGrouped runs the grouping pass and returns the maximum delta and the
// number of spilled records.
func (e *Encoder) spillGrouped(input *Input, baseTimestamp uint32, spillPath string) (uint32, uint64, error) {
	sink, err := newSpillWriter(spillPath, e.cfg.spillCompression, e.cfg.spillChunkRecords)
	if err != nil {
		return 0, 0, err
	}

	grouper := NewGrouper()
	maxDelta, err := grouper.Group(input, baseTimestamp, sink)
	if err != nil {
		sink.Close()
		return 0, 0, err
	}

	if err := sink.Close(); err != nil {
		return 0, 0, err
	}

	return maxDelta, grouper.TotalRecords(), nil
}

func (e *Encoder) writeInfo(path string, info section.Info) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create info file: %w", err)
	}
	if err := section.WriteInfo(f, info); err != nil {
		f.Close()
		return fmt.Errorf("write info file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close info file: %w", err)
	}

	return nil
}

func (e *Encoder) unigramPass(spillPath string, input *Input) (encoding.UnigramFreqs, error) {
	r, err := newSpillReader(spillPath, e.cfg.spillCompression, e.cfg.readBufferSize)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return collectUnigrams(r, input.Items, input.NumFields)
}

// gramPass discovers bigrams and tallies the final gram frequencies. It
// makes two sequential scans of the spill: one to count candidate pairs, one
// to tally the fixed coverings.
func (e *Encoder) gramPass(spillPath string, input *Input, unigrams encoding.UnigramFreqs) (*encoding.GramBuilder, map[format.Gram]uint64, error) {
	gb := encoding.NewGramBuilder(unigrams)

	r, err := newSpillReader(spillPath, e.cfg.spillCompression, e.cfg.readBufferSize)
	if err != nil {
		return nil, nil, err
	}
	if err := countBigramCandidates(r, input.Items, input.NumFields, gb); err != nil {
		r.Close()
		return nil, nil, err
	}
	if err := r.Close(); err != nil {
		return nil, nil, err
	}

	// Budget the bigram set so distinct unigrams plus bigrams never
	// overflow the codebook: every gram the writer emits must have a
	// codeword, keeping the escape path out of the hot stream. A configured
	// budget can only tighten that bound.
	budget := encoding.MaxCodebookSize - 1 - len(unigrams)
	if e.cfg.bigramBudget > 0 && e.cfg.bigramBudget < budget {
		budget = e.cfg.bigramBudget
	}
	gb.SelectBigrams(budget)

	r, err = newSpillReader(spillPath, e.cfg.spillCompression, e.cfg.readBufferSize)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	gramFreqs, err := tallyGrams(r, input.Items, input.NumFields, gb)
	if err != nil {
		return nil, nil, err
	}

	return gb, gramFreqs, nil
}

func (e *Encoder) trailPass(spillPath string, trailsPath string, input *Input, gb *encoding.GramBuilder,
	cb *encoding.Codebook, fstats *encoding.FieldStats,
) error {
	r, err := newSpillReader(spillPath, e.cfg.spillCompression, e.cfg.readBufferSize)
	if err != nil {
		return err
	}
	defer r.Close()

	return writeTrails(trailsPath, r, input.NumCookies(), input.Items, input.NumFields, gb, cb, fstats)
}

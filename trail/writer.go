package trail

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charsyam/traildb/encoding"
	"github.com/charsyam/traildb/errs"
	"github.com/charsyam/traildb/format"
	"github.com/charsyam/traildb/section"
)

// trailResidualBits is the per-trail length residual header.
const trailResidualBits = 3

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}

// writeTrails runs the final spill pass, emitting trails.data: the TOC of
// per-actor byte offsets followed by each actor's bit-packed trail.
//
// Records arrive in cookie order, so trails are written strictly in actor-id
// order; the decode side recovers actor identity from TOC position alone.
func writeTrails(path string, r *spillReader, numCookies uint64, items []format.Item,
	numFields uint32, gb *encoding.GramBuilder, cb *encoding.Codebook, fstats *encoding.FieldStats,
) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trails file: %w", err)
	}
	defer f.Close()

	offsets := make([]uint32, numCookies+1)
	fileOffs := section.TOCSize(numCookies)
	bw := bufio.NewWriterSize(f, 1<<20)

	// TOC placeholder; the real table lands with WriteAt after the trails.
	if _, err := bw.Write(make([]byte, fileOffs)); err != nil {
		return fmt.Errorf("write TOC placeholder: %w", err)
	}

	bits := encoding.NewBitWriter(64 * 1024)
	defer bits.Finish()
	edge := NewEdgeEncoder(numFields)
	var grams []format.Gram

	// One trail per actor, consuming the record stream as we go. Actors are
	// contiguous in the spill; a record for a later cookie ends the current
	// trail.
	next, err := r.Next()
	more := true
	if err != nil {
		if !isEOF(err) {
			return err
		}
		more = false
	}

	for cookie := uint64(0); cookie < numCookies; cookie++ {
		offsets[cookie] = uint32(fileOffs)

		bits.Reset()
		bits.WriteBits(0, trailResidualBits)
		edge.Reset()

		for more && uint64(next.CookieID) == cookie {
			emitted := edge.Encode(items, next)
			if len(emitted) > 0 {
				grams = gb.ChooseGrams(emitted, grams)
				encoding.EncodeGrams(cb, grams, bits, fstats)
			}

			next, err = r.Next()
			if err != nil {
				if !isEOF(err) {
					return err
				}
				more = false
			}
		}

		offs := bits.BitLen()
		residual := uint64(0)
		if offs&7 != 0 {
			residual = 8 - offs&7
		}
		bits.PatchBits(0, residual, trailResidualBits)

		trailBytes := bits.Bytes()
		if _, err := bw.Write(trailBytes); err != nil {
			return fmt.Errorf("write trail %d: %w", cookie, err)
		}

		fileOffs += uint64(len(trailBytes))
		if fileOffs >= format.MaxTrailsSize {
			return fmt.Errorf("%w: offset %d", errs.ErrTrailsTooLarge, fileOffs)
		}
	}
	offsets[numCookies] = uint32(fileOffs)

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush trails file: %w", err)
	}
	if _, err := f.WriteAt(section.EncodeTOC(offsets), 0); err != nil {
		return fmt.Errorf("write TOC: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close trails file: %w", err)
	}

	return nil
}

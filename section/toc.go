package section

import (
	"fmt"

	"github.com/charsyam/traildb/endian"
	"github.com/charsyam/traildb/errs"
)

// TOCEntrySize is the size of one TOC slot.
const TOCEntrySize = 4

// TOCSize returns the byte size of the TOC for numCookies actors: one offset
// per actor plus the one-past-end slot.
func TOCSize(numCookies uint64) uint64 {
	return TOCEntrySize * (numCookies + 1)
}

// EncodeTOC serializes the offsets table. offsets holds numCookies+1 entries;
// the last is the total file size.
func EncodeTOC(offsets []uint32) []byte {
	engine := endian.GetLittleEndianEngine()
	buf := make([]byte, 0, len(offsets)*TOCEntrySize)
	for _, off := range offsets {
		buf = engine.AppendUint32(buf, off)
	}

	return buf
}

// ParseTOC reads and validates the TOC of a trails file.
//
// data is the full trails.data contents. Validation enforces the format
// invariants: the first offset equals the TOC size, offsets are
// non-decreasing, and the final offset equals the file size.
func ParseTOC(data []byte, numCookies uint64) ([]uint32, error) {
	tocSize := TOCSize(numCookies)
	if uint64(len(data)) < tocSize {
		return nil, fmt.Errorf("%w: file shorter than TOC (%d < %d)", errs.ErrInvalidTOC, len(data), tocSize)
	}

	engine := endian.GetLittleEndianEngine()
	offsets := make([]uint32, numCookies+1)
	for i := range offsets {
		offsets[i] = engine.Uint32(data[i*TOCEntrySize : i*TOCEntrySize+TOCEntrySize])
	}

	if uint64(offsets[0]) != tocSize {
		return nil, fmt.Errorf("%w: first offset %d, want %d", errs.ErrInvalidTOC, offsets[0], tocSize)
	}
	for i := 0; i < len(offsets)-1; i++ {
		if offsets[i] > offsets[i+1] {
			return nil, fmt.Errorf("%w: offsets decrease at slot %d", errs.ErrInvalidTOC, i)
		}
	}
	if uint64(offsets[numCookies]) != uint64(len(data)) {
		return nil, fmt.Errorf("%w: final offset %d, file size %d", errs.ErrInvalidTOC, offsets[numCookies], len(data))
	}

	return offsets, nil
}

// Trail returns the byte range of one actor's trail given a parsed TOC.
func Trail(data []byte, offsets []uint32, cookie uint64) ([]byte, error) {
	if cookie+1 >= uint64(len(offsets)) {
		return nil, fmt.Errorf("%w: cookie %d out of range", errs.ErrInvalidTOC, cookie)
	}

	return data[offsets[cookie]:offsets[cookie+1]], nil
}

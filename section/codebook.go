package section

import (
	"fmt"

	"github.com/charsyam/traildb/encoding"
	"github.com/charsyam/traildb/endian"
	"github.com/charsyam/traildb/errs"
	"github.com/charsyam/traildb/format"
)

const (
	// CodebookMagic identifies a serialized codebook ("TDBC").
	CodebookMagic = uint32(0x43424454)
	// CodebookVersion is the current serialization version.
	CodebookVersion = uint8(1)

	codebookHeaderSize = 4 + 1 + 4 + 1 + 4 // magic, version, escape code+len, field count
	codebookEntrySize  = 8 + 4 + 1         // gram, code, length
)

// EncodeCodebook serializes a codebook together with the field-stats table.
//
// Layout, little-endian:
//
//	u32 magic, u8 version
//	u32 escape code, u8 escape length
//	u32 numFields, then numFields u8 literal widths
//	u32 entry count, then per entry: u64 gram, u32 code, u8 length
//
// Entries are ordered by gram value, so serialization is deterministic for a
// deterministic codebook.
func EncodeCodebook(cb *encoding.Codebook, fstats *encoding.FieldStats) []byte {
	engine := endian.GetLittleEndianEngine()
	widths := fstats.Widths()
	entries := cb.Entries()

	buf := make([]byte, 0, codebookHeaderSize+len(widths)+len(entries)*codebookEntrySize)
	buf = engine.AppendUint32(buf, CodebookMagic)
	buf = append(buf, CodebookVersion)

	esc := cb.EscapeCode()
	buf = engine.AppendUint32(buf, esc.Bits)
	buf = append(buf, esc.Length)

	buf = engine.AppendUint32(buf, uint32(len(widths)))
	buf = append(buf, widths...)

	buf = engine.AppendUint32(buf, uint32(len(entries)))
	for _, e := range entries {
		buf = engine.AppendUint64(buf, uint64(e.Gram))
		buf = engine.AppendUint32(buf, e.Code.Bits)
		buf = append(buf, e.Code.Length)
	}

	return buf
}

// ParseCodebook deserializes a codebook and its field-stats table.
func ParseCodebook(data []byte) (*encoding.Codebook, *encoding.FieldStats, error) {
	engine := endian.GetLittleEndianEngine()

	if len(data) < codebookHeaderSize {
		return nil, nil, fmt.Errorf("%w: short header", errs.ErrInvalidCodebook)
	}
	if engine.Uint32(data[0:4]) != CodebookMagic {
		return nil, nil, fmt.Errorf("%w: bad magic", errs.ErrInvalidCodebook)
	}
	if data[4] != CodebookVersion {
		return nil, nil, fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidCodebook, data[4])
	}

	escape := encoding.Code{Bits: engine.Uint32(data[5:9]), Length: data[9]}
	numFields := engine.Uint32(data[10:14])
	pos := codebookHeaderSize

	if len(data) < pos+int(numFields) {
		return nil, nil, fmt.Errorf("%w: truncated field widths", errs.ErrInvalidCodebook)
	}
	widths := make([]uint8, numFields)
	copy(widths, data[pos:pos+int(numFields)])
	pos += int(numFields)

	if len(data) < pos+4 {
		return nil, nil, fmt.Errorf("%w: truncated entry count", errs.ErrInvalidCodebook)
	}
	count := engine.Uint32(data[pos : pos+4])
	pos += 4

	if len(data) < pos+int(count)*codebookEntrySize {
		return nil, nil, fmt.Errorf("%w: truncated entries", errs.ErrInvalidCodebook)
	}
	entries := make([]encoding.Entry, count)
	for i := range entries {
		entries[i] = encoding.Entry{
			Gram: format.Gram(engine.Uint64(data[pos : pos+8])),
			Code: encoding.Code{
				Bits:   engine.Uint32(data[pos+8 : pos+12]),
				Length: data[pos+12],
			},
		}
		pos += codebookEntrySize
	}

	cb, err := encoding.NewCodebook(entries, escape)
	if err != nil {
		return nil, nil, err
	}

	return cb, encoding.NewFieldStatsFromWidths(widths), nil
}

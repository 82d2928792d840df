package trail

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/charsyam/traildb/compress"
	"github.com/charsyam/traildb/endian"
	"github.com/charsyam/traildb/errs"
	"github.com/charsyam/traildb/format"
	"github.com/charsyam/traildb/internal/pool"
)

const (
	// DefaultSpillChunkRecords is how many grouped records share one spill
	// chunk. 32768 records is 640KiB raw, a comfortable codec block.
	DefaultSpillChunkRecords = 32768

	// DefaultReadBufferSize is the read-ahead buffer on spill streams. The
	// spill is re-read four times sequentially (unigram, bigram candidate,
	// gram tally and trail passes), so a large buffer keeps the passes in
	// streaming reads.
	DefaultReadBufferSize = 8 * 1024 * 1024

	// spillFrameHeaderSize prefixes each chunk: raw length then stored
	// length, both u32.
	spillFrameHeaderSize = 8
)

// spillWriter streams grouped records into the temporary spill file as
// codec-compressed chunks.
type spillWriter struct {
	f      *os.File
	bw     *bufio.Writer
	engine endian.EndianEngine
	codec  compress.Codec

	chunk        *pool.ByteBuffer
	chunkRecords int
	maxRecords   int
}

// newSpillWriter creates the spill file with exclusive-write semantics.
func newSpillWriter(path string, compression format.CompressionType, chunkRecords int) (*spillWriter, error) {
	codec, err := compress.CreateCodec(compression, "spill")
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create spill file: %w", err)
	}

	if chunkRecords <= 0 {
		chunkRecords = DefaultSpillChunkRecords
	}

	return &spillWriter{
		f:          f,
		bw:         bufio.NewWriterSize(f, 1<<20),
		engine:     endian.GetLittleEndianEngine(),
		codec:      codec,
		chunk:      pool.GetSpillBuffer(),
		maxRecords: chunkRecords,
	}, nil
}

// Append adds one record to the current chunk, flushing it when full.
func (w *spillWriter) Append(rec GroupedRecord) error {
	w.chunk.B = appendRecord(w.engine, w.chunk.B, rec)
	w.chunkRecords++
	if w.chunkRecords >= w.maxRecords {
		return w.flushChunk()
	}

	return nil
}

func (w *spillWriter) flushChunk() error {
	if w.chunk.Len() == 0 {
		return nil
	}

	stored, err := w.codec.Compress(w.chunk.Bytes())
	if err != nil {
		return fmt.Errorf("compress spill chunk: %w", err)
	}

	var hdr [spillFrameHeaderSize]byte
	w.engine.PutUint32(hdr[0:4], uint32(w.chunk.Len()))
	w.engine.PutUint32(hdr[4:8], uint32(len(stored)))
	if _, err := w.bw.Write(hdr[:]); err != nil {
		return fmt.Errorf("write spill frame header: %w", err)
	}
	if _, err := w.bw.Write(stored); err != nil {
		return fmt.Errorf("write spill frame: %w", err)
	}

	w.chunk.Reset()
	w.chunkRecords = 0

	return nil
}

// Close flushes the trailing chunk and closes the file.
func (w *spillWriter) Close() error {
	defer func() {
		pool.PutSpillBuffer(w.chunk)
		w.chunk = nil
	}()

	if err := w.flushChunk(); err != nil {
		w.f.Close()
		return err
	}
	if err := w.bw.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("flush spill file: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("close spill file: %w", err)
	}

	return nil
}

// spillReader replays a spill file sequentially, one pass per instance.
type spillReader struct {
	f      *os.File
	br     *bufio.Reader
	engine endian.EndianEngine
	codec  compress.Codec

	chunk []byte
	pos   int
}

// newSpillReader opens the spill file for one sequential pass with the given
// read-ahead buffer size.
func newSpillReader(path string, compression format.CompressionType, readBufferSize int) (*spillReader, error) {
	codec, err := compress.CreateCodec(compression, "spill")
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open spill file: %w", err)
	}

	if readBufferSize <= 0 {
		readBufferSize = DefaultReadBufferSize
	}

	return &spillReader{
		f:      f,
		br:     bufio.NewReaderSize(f, readBufferSize),
		engine: endian.GetLittleEndianEngine(),
		codec:  codec,
	}, nil
}

// Next returns the next grouped record. io.EOF signals a clean end of the
// stream.
func (r *spillReader) Next() (GroupedRecord, error) {
	if r.pos >= len(r.chunk) {
		if err := r.readChunk(); err != nil {
			return GroupedRecord{}, err
		}
	}

	rec := parseRecord(r.engine, r.chunk[r.pos:r.pos+RecordSize])
	r.pos += RecordSize

	return rec, nil
}

func (r *spillReader) readChunk() error {
	var hdr [spillFrameHeaderSize]byte
	if _, err := io.ReadFull(r.br, hdr[:]); err != nil {
		if err == io.EOF {
			return io.EOF
		}

		return fmt.Errorf("read spill frame header: %w", err)
	}

	rawLen := r.engine.Uint32(hdr[0:4])
	storedLen := r.engine.Uint32(hdr[4:8])
	if rawLen%RecordSize != 0 {
		return fmt.Errorf("%w: chunk raw length %d", errs.ErrInvalidRecord, rawLen)
	}

	stored := make([]byte, storedLen)
	if _, err := io.ReadFull(r.br, stored); err != nil {
		return fmt.Errorf("read spill frame: %w", err)
	}

	raw, err := r.codec.Decompress(stored)
	if err != nil {
		return fmt.Errorf("decompress spill chunk: %w", err)
	}
	if uint32(len(raw)) != rawLen {
		return fmt.Errorf("%w: chunk decompressed to %d bytes, want %d", errs.ErrInvalidRecord, len(raw), rawLen)
	}

	r.chunk = raw
	r.pos = 0

	return nil
}

// Close closes the underlying file.
func (r *spillReader) Close() error {
	return r.f.Close()
}

// Package compress provides the chunk codecs used for the temporary grouped
// spill file.
//
// The spill file is private to one encode invocation, so its chunks may be
// compressed without affecting the published trail format. Grouped records
// compress well: cookie ids are monotone and encoded deltas are small.
package compress

import (
	"fmt"

	"github.com/charsyam/traildb/format"
)

// Compressor compresses one spill chunk.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// The input slice is not modified. The returned slice is owned by the
	// caller; it is newly allocated except for NoOpCompressor, which returns
	// the input slice itself. Internal buffers may be reused.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores one spill chunk.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original chunk.
	//
	// The input must have been produced by the matching Compressor. The
	// returned slice is owned by the caller; it is newly allocated except for
	// NoOpCompressor, which returns the input slice itself.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions; the spill sink and stream share one.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec is a factory that creates a Codec for the given compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, or LZ4)
//   - target: Description of target usage (for error messages)
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}

package compress

// ZstdCompressor compresses spill chunks with Zstandard.
//
// Zstd trades compression speed for ratio; pick it when the spill file lands
// on slow or remote storage and chunk size dominates.
//
// The implementation is selected at build time: the pure-Go path
// (klauspost/compress/zstd) is the default, and a cgo path backed by
// valyala/gozstd can be enabled for libzstd parity.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

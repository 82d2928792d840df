//go:build nobuild

package compress

import (
	"github.com/valyala/gozstd"
)

// libzstd-backed spill codec. Swapped in for the pure-Go path when cgo
// output parity with other libzstd producers matters more than build
// simplicity.

// Compress compresses one spill chunk through libzstd at level 3, the same
// speed/ratio point the pure-Go path targets.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

// Decompress restores one libzstd-compressed spill chunk. The chunk frame
// carries the raw length, so the caller verifies the size after the call.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}

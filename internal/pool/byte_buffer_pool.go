// Package pool provides reusable byte buffers for trail bit packing and
// spill-chunk staging.
package pool

import (
	"io"
	"sync"
)

const (
	// TrailBufferDefaultSize is the initial capacity of pooled trail buffers.
	TrailBufferDefaultSize = 1024 * 16 // 16KiB
	// TrailBufferMaxThreshold caps what the trail pool retains; one actor's
	// bit buffer is bounded by the 32-bit bit-offset cap, but buffers past
	// this size are cheaper to reallocate than to pin.
	TrailBufferMaxThreshold = 1024 * 1024 * 8 // 8MiB
	// SpillBufferDefaultSize is the initial capacity of pooled spill chunk buffers.
	SpillBufferDefaultSize = 1024 * 64 // 64KiB
	// SpillBufferMaxThreshold caps what the spill pool retains.
	SpillBufferMaxThreshold = 1024 * 1024 * 16 // 16MiB
)

// ByteBuffer is a growable byte slice with explicit length control.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified initial capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, retaining the allocated memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// SetLength sets the length of the buffer to n.
// Panics if n is negative or greater than the capacity.
func (bb *ByteBuffer) SetLength(n int) {
	if n < 0 || n > cap(bb.B) {
		panic("SetLength: invalid length")
	}
	bb.B = bb.B[:n]
}

// Extend extends the buffer by n bytes if there is sufficient capacity.
func (bb *ByteBuffer) Extend(n int) bool {
	curLen := len(bb.B)
	if cap(bb.B)-curLen < n {
		return false
	}

	bb.B = bb.B[:curLen+n]

	return true
}

// ExtendOrGrow extends the buffer by n bytes, growing it if necessary.
func (bb *ByteBuffer) ExtendOrGrow(n int) {
	if bb.Extend(n) {
		return
	}

	start := len(bb.B)
	bb.Grow(n)
	bb.B = bb.B[:start+n]
}

// Grow ensures the buffer can hold requiredBytes more bytes without
// reallocating. Small buffers grow by TrailBufferDefaultSize; larger ones by
// 25% of capacity to balance memory use against reallocation cost.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := TrailBufferDefaultSize
	if cap(bb.B) > 4*TrailBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}

	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends the contents of data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a pool of ByteBuffers to minimize allocations.
//
// A maximum size threshold avoids retaining overly large buffers.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool handing out buffers of the given default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		// Discard overly large buffers to prevent memory bloat
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	trailDefaultPool = NewByteBufferPool(TrailBufferDefaultSize, TrailBufferMaxThreshold)
	spillDefaultPool = NewByteBufferPool(SpillBufferDefaultSize, SpillBufferMaxThreshold)
)

// GetTrailBuffer retrieves a ByteBuffer from the trail bit-buffer pool.
func GetTrailBuffer() *ByteBuffer {
	return trailDefaultPool.Get()
}

// PutTrailBuffer returns a ByteBuffer to the trail bit-buffer pool.
func PutTrailBuffer(bb *ByteBuffer) {
	trailDefaultPool.Put(bb)
}

// GetSpillBuffer retrieves a ByteBuffer from the spill chunk pool.
func GetSpillBuffer() *ByteBuffer {
	return spillDefaultPool.Get()
}

// PutSpillBuffer returns a ByteBuffer to the spill chunk pool.
func PutSpillBuffer(bb *ByteBuffer) {
	spillDefaultPool.Put(bb)
}

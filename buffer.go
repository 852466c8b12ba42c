package avcodec

// DefaultOutputBufferSize is the capacity of the encoder output buffer.
const DefaultOutputBufferSize = 256 * 1024

// outputBuffer is the encoder output buffer owned by one CodecContext. Packets
// produced by an encode call borrow it until the next encode call.
type outputBuffer struct {
	alloc Allocator
	size  int // capacity used for every allocation
	buf   []byte

	allocations uint64
}

func newOutputBuffer(alloc Allocator, size int) outputBuffer {
	if size <= 0 {
		size = DefaultOutputBufferSize
	}
	return outputBuffer{alloc: alloc, size: size}
}

// ensure allocates the buffer at full capacity if it is not allocated yet.
func (b *outputBuffer) ensure(op string) ([]byte, error) {
	if b.buf == nil {
		b.buf = b.alloc.Malloc(b.size)
		if b.buf == nil {
			return nil, &ResourceExhaustionError{Op: op, Size: b.size}
		}
		b.allocations++
	}
	return b.buf, nil
}

// reserve makes sure a buffer exists for a call that needs required bytes.
//
// A requirement above the capacity drops the current buffer and allocates a
// new one at the same capacity. The buffer never grows to fit.
func (b *outputBuffer) reserve(op string, required int) ([]byte, error) {
	if required > b.size && b.buf != nil {
		b.release()
	}
	return b.ensure(op)
}

// release frees the buffer. Safe to call when nothing is allocated.
func (b *outputBuffer) release() {
	if b.buf != nil {
		b.alloc.Free(b.buf)
		b.buf = nil
	}
}

func (b *outputBuffer) allocated() bool { return b.buf != nil }

// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

// BytePool hands out buffers of one fixed size.
type BytePool struct {
	size int
	pool ObjectPool[*[]byte]
}

// NewBytePool returns a pool of size-byte buffers.
func NewBytePool(size int) *BytePool {
	return &BytePool{
		size: size,
		pool: NewSyncPool(func() *[]byte {
			b := make([]byte, size)
			return &b
		}),
	}
}

// Size is the length of every buffer returned by Get.
func (b *BytePool) Size() int { return b.size }

// Get returns a buffer of length Size. Its contents are undefined.
func (b *BytePool) Get() []byte {
	return (*b.pool.Get())[:b.size]
}

// Put recycles buf. Buffers that did not come from this pool are dropped.
func (b *BytePool) Put(buf []byte) {
	if cap(buf) != b.size {
		return
	}
	buf = buf[:b.size]
	b.pool.Put(&buf)
}

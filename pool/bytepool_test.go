package pool

import "testing"

func TestBytePoolSize(t *testing.T) {
	p := NewBytePool(64)
	b := p.Get()
	if len(b) != 64 || p.Size() != 64 {
		t.Fatalf("len = %d, Size = %d", len(b), p.Size())
	}
	p.Put(b[:3])
	if got := p.Get(); len(got) != 64 {
		t.Errorf("recycled len = %d, want 64", len(got))
	}
}

func TestBytePoolDropsForeignBuffers(t *testing.T) {
	p := NewBytePool(16)
	p.Put(make([]byte, 32))
	for i := 0; i < 4; i++ {
		if b := p.Get(); cap(b) != 16 {
			t.Fatalf("cap = %d, want 16", cap(b))
		}
	}
}

func TestSyncPoolCreates(t *testing.T) {
	n := 0
	sp := NewSyncPool(func() int { n++; return n })
	if v := sp.Get(); v != 1 {
		t.Errorf("Get = %d, want 1", v)
	}
}

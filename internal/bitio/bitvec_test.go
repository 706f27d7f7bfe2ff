package bitio

import "testing"

func TestBitVectorLSBFirst(t *testing.T) {
	v := NewBitVector(1, 1000)
	pattern := []bool{true, false, true, true, false, false, true, false}
	for k, b := range pattern {
		v.Set(k, b)
	}
	if got := v.Bytes(8)[0]; got != 0x4d {
		t.Errorf("packed byte = 0x%02x, want 0x4d", got)
	}
	for k, b := range pattern {
		bit, ok := v.Get(k)
		if !ok {
			t.Fatalf("Get(%d) out of range", k)
		}
		if (bit == 1) != b {
			t.Errorf("Get(%d) = %d, want %v", k, bit, b)
		}
	}
}

func TestBitVectorGrowth(t *testing.T) {
	v := NewBitVector(1000, 1000)
	const n = 1000001
	for k := 0; k < n; k++ {
		v.Set(k, k%3 == 0)
	}
	if v.Len() < (n+7)/8 || v.Len()%1000 != 0 {
		t.Errorf("Len() = %d", v.Len())
	}
	for _, k := range []int{0, 7999, 8000, 999999, n - 1} {
		bit, ok := v.Get(k)
		if !ok || (bit == 1) != (k%3 == 0) {
			t.Errorf("Get(%d) = %d, %v", k, bit, ok)
		}
	}
}

func TestBitVectorSparseGrowth(t *testing.T) {
	v := NewBitVector(0, 10)
	v.Set(0, true)
	if v.Len() != 10 {
		t.Errorf("Len() after first write = %d, want 10", v.Len())
	}
	v.Set(8*25, true)
	if v.Len() != 30 {
		t.Errorf("Len() after sparse write = %d, want 30", v.Len())
	}
	for k := 1; k < 8*25; k++ {
		if bit, _ := v.Get(k); bit != 0 {
			t.Fatalf("bit %d set by growth", k)
		}
	}
	v.Set(0, false)
	if bit, _ := v.Get(0); bit != 0 {
		t.Error("Set(0, false) did not clear")
	}
}

func TestBitVectorOutOfRange(t *testing.T) {
	v := NewBitVector(2, 1)
	if _, ok := v.Get(15); !ok {
		t.Error("Get(15) rejected inside a 2-byte buffer")
	}
	if _, ok := v.Get(16); ok {
		t.Error("Get(16) accepted past a 2-byte buffer")
	}
	if _, ok := v.Get(-1); ok {
		t.Error("Get(-1) accepted")
	}
}

func TestBitVectorClearAndLoad(t *testing.T) {
	v := NewBitVector(4, 4)
	v.Set(3, true)
	v.Set(31, true)
	v.Clear()
	if v.Len() != 4 {
		t.Errorf("Clear changed Len to %d", v.Len())
	}
	for k := 0; k < 32; k++ {
		if bit, _ := v.Get(k); bit != 0 {
			t.Fatalf("bit %d survives Clear", k)
		}
	}
	v.Load([]byte{0x80})
	if bit, ok := v.Get(7); !ok || bit != 1 {
		t.Errorf("Get(7) after Load = %d, %v", bit, ok)
	}
	if _, ok := v.Get(8); ok {
		t.Error("Load did not shrink the buffer")
	}
}

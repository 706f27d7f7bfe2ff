package dsp

import (
	"errors"
	"testing"
)

func TestKernelsSumTo128(t *testing.T) {
	for name, k := range map[string]*Kernels{"regular": &RegularKernels, "bilinear": &BilinearKernels} {
		for phase, f := range k {
			sum := 0
			for _, tap := range f {
				sum += int(tap)
			}
			if sum != 1<<FilterBits {
				t.Errorf("%s phase %d: taps sum to %d", name, phase, sum)
			}
		}
	}
}

func TestClip(t *testing.T) {
	for v := -255; v <= 511; v++ {
		want := v
		if want < 0 {
			want = 0
		} else if want > 255 {
			want = 255
		}
		if got := Kclip1(v); int(got) != want {
			t.Fatalf("Kclip1(%d) = %d, want %d", v, got, want)
		}
		if got := Clip8b(v); int(got) != want {
			t.Fatalf("Clip8b(%d) = %d, want %d", v, got, want)
		}
	}
	if Clip8b(-1<<20) != 0 || Clip8b(1<<20) != 255 {
		t.Error("Clip8b out of table range")
	}
}

// plane returns a stride x rows buffer filled with a deterministic pattern.
func plane(stride, rows int) []byte {
	buf := make([]byte, stride*rows)
	for i := range buf {
		buf[i] = byte((i*37 + i/stride*11) & 0xff)
	}
	return buf
}

func TestConvolveZeroPhaseIsCopy(t *testing.T) {
	const stride = 48
	src := plane(stride, 48)
	off := 8*stride + 8
	s := NewScratch()

	want := make([]byte, 16*16)
	Copy(src, off, stride, want, 0, 16, 16, 16)

	check := func(name string, got []byte) {
		t.Helper()
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: pixel %d = %d, want %d", name, i, got[i], want[i])
			}
		}
	}

	got := make([]byte, 16*16)
	ConvolveHoriz(src, off, stride, got, 0, 16, &RegularKernels, 0, 16, 16, 16)
	check("horiz", got)

	got = make([]byte, 16*16)
	ConvolveVert(src, off, stride, got, 0, 16, &RegularKernels, 0, 16, 16, 16)
	check("vert", got)

	got = make([]byte, 16*16)
	if err := Convolve2D(src, off, stride, got, 0, 16, &RegularKernels, 0, 16, 0, 16, 16, 16, s); err != nil {
		t.Fatal(err)
	}
	check("2d", got)
}

func TestConvolveHorizHalfPel(t *testing.T) {
	src := []byte{0, 0, 0, 10, 20, 30, 40, 50, 60, 70, 80, 0, 0, 0}
	dst := make([]byte, 4)
	ConvolveHoriz(src, 3, len(src), dst, 0, 4, &RegularKernels, 8, 16, 4, 1)
	for x := range dst {
		sum := 0
		for k := 0; k < SubpelTaps; k++ {
			sum += int(src[x+k]) * int(RegularKernels[8][k])
		}
		if want := Kclip1(RoundPow2(sum, FilterBits)); dst[x] != want {
			t.Errorf("dst[%d] = %d, want %d", x, dst[x], want)
		}
	}
}

func TestConvolveFlatIsFlat(t *testing.T) {
	const stride = 160
	src := make([]byte, stride*160)
	fill(src, 90)
	s := NewScratch()
	for _, step := range []int{16, 24, 32} {
		for _, phase := range []int{0, 3, 8, 15} {
			dst := make([]byte, 64*64)
			if err := Convolve2D(src, 8*stride+8, stride, dst, 0, 64, &RegularKernels,
				phase, step, phase, step, 64, 64, s); err != nil {
				t.Fatal(err)
			}
			for i, v := range dst {
				if v != 90 {
					t.Fatalf("step %d phase %d: dst[%d] = %d", step, phase, i, v)
				}
			}
		}
	}
}

func TestConvolveAverage(t *testing.T) {
	const stride = 32
	src := make([]byte, stride*32)
	fill(src, 101)
	dst := make([]byte, 8*8)
	fill(dst, 50)
	s := NewScratch()
	if err := ConvolveAvg2D(src, 8*stride+8, stride, dst, 0, 8, &RegularKernels, 4, 16, 4, 16, 8, 8, s); err != nil {
		t.Fatal(err)
	}
	for i, v := range dst {
		if v != 76 {
			t.Fatalf("dst[%d] = %d, want 76", i, v)
		}
	}
	fill(dst, 50)
	ConvolveAvgHoriz(src, 8*stride+8, stride, dst, 0, 8, &RegularKernels, 4, 16, 8, 8)
	ConvolveAvgVert(src, 8*stride+8, stride, dst, 0, 8, &RegularKernels, 4, 16, 8, 8)
	for i, v := range dst {
		if v != 89 {
			t.Fatalf("avg horiz+vert: dst[%d] = %d, want 89", i, v)
		}
	}
}

func TestCheckConvolve(t *testing.T) {
	tests := []struct {
		w, h, xs, ys int
		want         error
	}{
		{64, 64, 16, 16, nil},
		{64, 64, 32, 32, nil},
		{64, 32, 64, 64, nil},
		{64, 64, 16, 64, ErrInvalidStep},
		{64, 64, 80, 16, ErrInvalidStep},
		{65, 8, 16, 16, ErrInvalidExtent},
		{8, 0, 16, 16, ErrInvalidExtent},
	}
	for _, tt := range tests {
		if err := CheckConvolve(tt.w, tt.h, tt.xs, tt.ys); !errors.Is(err, tt.want) {
			t.Errorf("CheckConvolve(%d, %d, %d, %d) = %v, want %v", tt.w, tt.h, tt.xs, tt.ys, err, tt.want)
		}
	}
}

func TestConvolve2DAccumulate(t *testing.T) {
	const stride = 96
	res := make([]int16, stride*96)
	for i := range res {
		res[i] = -7
	}
	dst := make([]byte, 32*32)
	fill(dst, 40)
	dst[5] = 3
	s := NewScratch()
	if err := Convolve2DAccumulate(res, 8*stride+8, stride, dst, 0, 32, &RegularKernels,
		5, 32, 9, 32, 32, 32, s); err != nil {
		t.Fatal(err)
	}
	for i, v := range dst {
		want := byte(33)
		if i == 5 {
			want = 0
		}
		if v != want {
			t.Fatalf("dst[%d] = %d, want %d", i, v, want)
		}
	}
}

func TestCopyAddAndSumAbs(t *testing.T) {
	res := []int16{-300, -1, 0, 1, 300, 5}
	dst := []byte{100, 100, 100, 100, 100, 250}
	CopyAdd(res, 0, 6, dst, 0, 6, 6, 1)
	want := []byte{0, 99, 100, 101, 255, 255}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], want[i])
		}
	}
	if got := SumAbs16(res, 0, 3, 3, 2); got != 607 {
		t.Errorf("SumAbs16 = %d, want 607", got)
	}
}

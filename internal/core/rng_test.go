package core

import "testing"

func TestRNGDeterminism(t *testing.T) {
	a := NewRNG(12345)
	b := NewRNG(12345)

	for i := 0; i < 1000; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("sequences diverged at draw %d", i)
		}
	}
}

func TestRNGZeroSeed(t *testing.T) {
	r := NewRNG(0)
	if r.State() != 1 {
		t.Errorf("State() = %d, expected 1 for zero seed", r.State())
	}
}

func TestRNGRanges(t *testing.T) {
	r := NewRNG(42)

	for i := 0; i < 10000; i++ {
		if f := r.Float64(); f < 0 || f >= 1 {
			t.Fatalf("Float64() = %v, outside [0, 1)", f)
		}
		if n := r.Intn(7); n < 0 || n >= 7 {
			t.Fatalf("Intn(7) = %d, outside [0, 7)", n)
		}
		if u := r.Uniform(-2, 3); u < -2 || u >= 3 {
			t.Fatalf("Uniform(-2, 3) = %v, outside [-2, 3)", u)
		}
	}

	if r.Intn(0) != 0 || r.Intn(-5) != 0 {
		t.Error("Intn with non-positive n should return 0")
	}
}

func TestRNGRestore(t *testing.T) {
	r := NewRNG(99)
	r.Next()
	saved := r.State()
	want := []uint64{r.Next(), r.Next(), r.Next()}

	r.Restore(saved)
	for i, w := range want {
		if got := r.Next(); got != w {
			t.Errorf("draw %d after Restore = %d, expected %d", i, got, w)
		}
	}
}

package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestRandomSampler_Deterministic(t *testing.T) {
	a := NewRandomSampler(rand.New(rand.NewSource(42)))
	b := NewSeededSampler(42)

	for i := 0; i < 10; i++ {
		if a.Get1D() != b.Get1D() {
			t.Fatal("Samplers with the same seed should produce identical sequences")
		}
	}
}

func TestRandomSampler_Range(t *testing.T) {
	sampler := NewSeededSampler(1)
	for i := 0; i < 1000; i++ {
		v := sampler.Get3D()
		for _, c := range []float64{v.X, v.Y, v.Z} {
			if c < 0 || c >= 1 {
				t.Fatalf("Sample %f outside [0, 1)", c)
			}
		}
	}
}

func TestRandomVec3Range(t *testing.T) {
	sampler := NewSeededSampler(2)
	for i := 0; i < 1000; i++ {
		v := RandomVec3Range(sampler, 0.5, 1.0)
		for _, c := range []float64{v.X, v.Y, v.Z} {
			if c < 0.5 || c >= 1.0 {
				t.Fatalf("Component %f outside [0.5, 1.0)", c)
			}
		}
	}

	f := RandomFloat(sampler, -2, -1)
	if f < -2 || f >= -1 {
		t.Errorf("RandomFloat %f outside [-2, -1)", f)
	}
}

func TestRandomInUnitSphere(t *testing.T) {
	sampler := NewSeededSampler(3)
	var sum Vec3
	const n = 20000
	for i := 0; i < n; i++ {
		p := RandomInUnitSphere(sampler)
		if p.LengthSquared() >= 1 {
			t.Fatalf("Point %v is outside the unit sphere", p)
		}
		sum = sum.Add(p)
	}

	// Uniform ball sampling should be centered on the origin
	mean := sum.Multiply(1.0 / n)
	if mean.Length() > 0.02 {
		t.Errorf("Expected mean near origin, got %v", mean)
	}
}

func TestRandomInUnitDisk(t *testing.T) {
	sampler := NewSeededSampler(4)
	for i := 0; i < 5000; i++ {
		p := RandomInUnitDisk(sampler)
		if p.Z != 0 {
			t.Fatalf("Disk sample should lie in z=0, got %v", p)
		}
		if p.LengthSquared() >= 1 {
			t.Fatalf("Point %v is outside the unit disk", p)
		}
	}
}

func TestRandomUnitVector(t *testing.T) {
	sampler := NewSeededSampler(5)
	for i := 0; i < 5000; i++ {
		v := RandomUnitVector(sampler)
		if math.Abs(v.Length()-1) > 1e-9 {
			t.Fatalf("Expected unit length, got %f", v.Length())
		}
	}
}

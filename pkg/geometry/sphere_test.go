package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

var testMaterial = material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

// vecApprox compares component-wise with an absolute tolerance, so targets at the origin work
func vecApprox(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance &&
		math.Abs(a.Y-b.Y) <= tolerance &&
		math.Abs(a.Z-b.Z) <= tolerance
}

func TestVecApprox(t *testing.T) {
	tests := []struct {
		name     string
		a, b     core.Vec3
		expected bool
	}{
		{"rounding residual at origin", core.NewVec3(0, 0, -8.881784197001252e-16), core.NewVec3(0, 0, 0), true},
		{"equal", core.NewVec3(1, 2, 3), core.NewVec3(1, 2, 3), true},
		{"outside tolerance", core.NewVec3(0, 0, 1e-6), core.NewVec3(0, 0, 0), false},
		{"large values", core.NewVec3(13, 2, 3), core.NewVec3(13+1e-12, 2, 3), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vecApprox(tt.a, tt.b, 1e-9); got != tt.expected {
				t.Errorf("vecApprox(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, testMaterial)

	tests := []struct {
		name string
		ray  core.Ray
	}{
		{"parallel offset beyond radius", core.NewRay(core.NewVec3(1.5, 0, 5), core.NewVec3(0, 0, -1))},
		{"pointing away", core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))},
		{"diagonal offset", core.NewRay(core.NewVec3(0, 1.01, 3), core.NewVec3(0, 0, -2))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if hit, isHit := sphere.Hit(tt.ray, 0.001, math.Inf(1)); isHit {
				t.Errorf("Expected miss, but got hit at t=%f", hit.T)
			}
		})
	}
}

func TestSphere_Hit_AimedAtCenter(t *testing.T) {
	tests := []struct {
		name   string
		center core.Vec3
		radius float64
		origin core.Vec3
	}{
		{"unit sphere from +Z", core.NewVec3(0, 0, 0), 1, core.NewVec3(0, 0, 5)},
		{"offset sphere diagonal", core.NewVec3(1, -2, 3), 0.5, core.NewVec3(4, 2, -1)},
		{"large sphere", core.NewVec3(0, -1000, 0), 1000, core.NewVec3(3, 2, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sphere := NewSphere(tt.center, tt.radius, testMaterial)
			direction := tt.center.Subtract(tt.origin).Normalize()
			ray := core.NewRay(tt.origin, direction)

			hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}

			expectedT := tt.center.Subtract(tt.origin).Length() - tt.radius
			if math.Abs(hit.T-expectedT) > 1e-6 {
				t.Errorf("Expected t=%f, got t=%f", expectedT, hit.T)
			}
			if !vecApprox(hit.Normal, direction.Negate(), 1e-9) {
				t.Errorf("Expected normal %v, got %v", direction.Negate(), hit.Normal)
			}
			if !hit.FrontFace {
				t.Error("Expected front face hit from outside")
			}
			if hit.Material != testMaterial {
				t.Error("Hit record should carry the sphere's material")
			}
		})
	}
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, testMaterial)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "back face hit",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, 0.001, 1000.0)

			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}
			if !vecApprox(hit.Normal, tt.expectedNormal, 1e-9) {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
		})
	}
}

func TestSphere_Hit_Bounds(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, testMaterial)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	if hit, isHit := sphere.Hit(ray, 0.001, 0.5); isHit {
		t.Errorf("Expected miss due to tMax bound, but got hit at t=%f", hit.T)
	}

	if hit, isHit := sphere.Hit(ray, 3.5, 1000.0); isHit {
		t.Errorf("Expected miss due to tMin bound, but got hit at t=%f", hit.T)
	}

	// Near root excluded, far root accepted
	hit, isHit := sphere.Hit(ray, 1.5, 1000.0)
	if !isHit {
		t.Fatal("Expected far-root hit")
	}
	if math.Abs(hit.T-3.0) > 1e-9 {
		t.Errorf("Expected far root t=3, got %f", hit.T)
	}
	if hit.FrontFace {
		t.Error("Far root is an exit hit and should be a back face")
	}
}

func TestSphere_Hit_UnnormalizedDirection(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, testMaterial)
	ray := core.NewRay(core.NewVec3(0, 0, 4), core.NewVec3(0, 0, -3))

	hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
	if !isHit {
		t.Fatal("Expected hit")
	}
	if math.Abs(hit.T-1.0) > 1e-9 {
		t.Errorf("Expected t=1 for direction length 3, got %f", hit.T)
	}
	if !vecApprox(hit.Point, core.NewVec3(0, 0, 1), 1e-9) {
		t.Errorf("Expected hit point (0,0,1), got %v", hit.Point)
	}
}

func TestSphere_Hit_ZeroDirection(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, testMaterial)

	for _, origin := range []core.Vec3{core.NewVec3(0, 0, 5), core.NewVec3(0, 0, 0)} {
		ray := core.NewRay(origin, core.NewVec3(0, 0, 0))
		if _, isHit := sphere.Hit(ray, 0.001, math.Inf(1)); isHit {
			t.Errorf("Zero-length direction from %v should never hit", origin)
		}
	}
}

func TestSphere_Validate(t *testing.T) {
	tests := []struct {
		name    string
		sphere  *Sphere
		wantErr error
	}{
		{"valid", NewSphere(core.NewVec3(0, 0, 0), 1, testMaterial), nil},
		{"zero radius", NewSphere(core.NewVec3(0, 0, 0), 0, testMaterial), ErrInvalidRadius},
		{"negative radius", NewSphere(core.NewVec3(0, 0, 0), -0.5, testMaterial), ErrInvalidRadius},
		{"infinite center", NewSphere(core.NewVec3(math.Inf(1), 0, 0), 1, testMaterial), ErrNonFinite},
		{"NaN radius", NewSphere(core.NewVec3(0, 0, 0), math.NaN(), testMaterial), ErrNonFinite},
		{"nil material", NewSphere(core.NewVec3(0, 0, 0), 1, nil), ErrNilMaterial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sphere.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

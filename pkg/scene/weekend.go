package scene

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// WeekendCameraConfig is the classic cover shot: low and to the side, looking at the origin
func WeekendCameraConfig() geometry.CameraConfig {
	return geometry.CameraConfig{
		LookFrom:      core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20,
		AspectRatio:   3.0 / 2.0,
		Aperture:      0.1,
		FocusDistance: 10,
	}
}

// NewWeekendScene creates the random sphere field: a huge ground sphere, up to
// 22x22 small jittered spheres and three large feature spheres. The layout is a
// pure function of seed.
func NewWeekendScene(seed int64) *Scene {
	s, err := New(WeekendCameraConfig(), SamplingConfig{
		Width:           1200,
		SamplesPerPixel: 30,
		MaxDepth:        50,
	})
	if err != nil {
		panic(err) // fixed camera config is always valid
	}

	sampler := core.NewSeededSampler(seed)
	groundMaterial := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	s.mustAdd(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, groundMaterial))

	// Keep the small spheres clear of the metal feature sphere
	clearing := core.NewVec3(4, 0.2, 0)

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := sampler.Get1D()
			center := core.NewVec3(float64(a)+0.9*sampler.Get1D(), 0.2, float64(b)+0.9*sampler.Get1D())

			if center.Subtract(clearing).Length() <= 0.9 {
				continue
			}

			var sphereMaterial material.Material
			switch {
			case chooseMat < 0.8:
				albedo := core.RandomVec3(sampler).MultiplyVec(core.RandomVec3(sampler))
				sphereMaterial = material.NewLambertian(albedo)
			case chooseMat < 0.95:
				albedo := core.RandomVec3Range(sampler, 0.5, 1)
				fuzz := core.RandomFloat(sampler, 0, 0.5)
				sphereMaterial = material.NewMetal(albedo, fuzz)
			default:
				sphereMaterial = material.NewDielectric(1.5)
			}
			s.mustAdd(geometry.NewSphere(center, 0.2, sphereMaterial))
		}
	}

	s.mustAdd(geometry.NewSphere(core.NewVec3(0, 1, 0), 1, material.NewDielectric(1.5)))
	s.mustAdd(geometry.NewSphere(core.NewVec3(-4, 1, 0), 1, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))))
	s.mustAdd(geometry.NewSphere(core.NewVec3(4, 1, 0), 1, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0)))

	return s
}

// NewThreeSpheresScene creates a glass, a diffuse and a fuzzy metal sphere on a green ground
func NewThreeSpheresScene() *Scene {
	s, err := New(geometry.CameraConfig{
		LookFrom:    core.NewVec3(-2, 2, 1),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        30,
		AspectRatio: 16.0 / 9.0,
		Aperture:    0.2,
	}, SamplingConfig{
		Width:           400,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	})
	if err != nil {
		panic(err)
	}

	ground := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	left := material.NewDielectric(1.5)
	right := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)

	s.mustAdd(geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, ground))
	s.mustAdd(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, center))
	s.mustAdd(geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, left))
	s.mustAdd(geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, right))

	return s
}

// NewSingleSphereScene creates a unit grey sphere at the origin seen from +Z
func NewSingleSphereScene() *Scene {
	s, err := New(geometry.CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 5),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40,
		AspectRatio: 1,
	}, SamplingConfig{
		Width:           200,
		SamplesPerPixel: 50,
		MaxDepth:        50,
	})
	if err != nil {
		panic(err)
	}

	s.mustAdd(geometry.NewSphere(core.NewVec3(0, 0, 0), 1, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))))
	return s
}

// mustAdd is for built-in scenes whose shapes are known to be valid
func (s *Scene) mustAdd(shape geometry.Shape) {
	if err := s.Add(shape); err != nil {
		panic(err)
	}
}
